// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// AnsweredQuestion pairs a recorded response with its resolved question. The
// orchestrator resolves question references before calling Diagnose; an
// unresolvable reference is passed with a zero Question and contributes
// nothing to scoring.
type AnsweredQuestion struct {
	// Question is the resolved question bank entry.
	Question models.Question `json:"question"`

	// SelectedOption is the text of the chosen option.
	SelectedOption string `json:"selected_option"`
}

// MediaBehavior summarizes self-reported watch telemetry for one stage.
type MediaBehavior struct {
	// WatchedDuration is the summed watch time in seconds.
	WatchedDuration int `json:"watched_duration"`

	// TotalDuration is the summed content duration in seconds.
	TotalDuration int `json:"total_duration"`

	// MediaCount is the number of media items watched.
	MediaCount int `json:"media_count"`
}

// DiagnosisResult is the output of Diagnose. It is a pure value: the full
// score map is always included for explainability and testing.
type DiagnosisResult struct {
	// Emotion is the primary diagnosed emotion.
	Emotion emotion.Emotion `json:"emotion"`

	// Confidence is primaryScore / sum(all scores), clamped to [0, 1].
	Confidence float64 `json:"confidence"`

	// Intensity is the 1-5 intensity, from the profile or derived from the
	// score distribution when the profile lacks one.
	Intensity int `json:"intensity"`

	// Symptoms, PhysicalSigns and MentalSigns come from the winning profile.
	Symptoms      []string `json:"symptoms,omitempty"`
	PhysicalSigns []string `json:"physical_signs,omitempty"`
	MentalSigns   []string `json:"mental_signs,omitempty"`

	// AllScores is the full per-emotion accumulated score map.
	AllScores map[emotion.Emotion]float64 `json:"all_scores"`
}

// ToAssessedEmotion converts the diagnosis into its persisted session form.
func (d DiagnosisResult) ToAssessedEmotion() *models.AssessedEmotion {
	return &models.AssessedEmotion{
		Overall:       d.Emotion,
		Confidence:    d.Confidence,
		Intensity:     d.Intensity,
		Symptoms:      d.Symptoms,
		PhysicalSigns: d.PhysicalSigns,
		MentalSigns:   d.MentalSigns,
		AllScores:     d.AllScores,
	}
}

// ScoredMedia is a catalog item with its recommendation score.
type ScoredMedia struct {
	// Item is the catalog entry.
	Item models.MediaItem `json:"item"`

	// Score is the combined content-based score (higher is better).
	Score float64 `json:"score"`

	// Reason is an interpretable explanation for the selection.
	Reason string `json:"reason,omitempty"`
}

// Improvement is the classified pre-to-post transition.
type Improvement struct {
	// Type is improved or same.
	Type models.ImprovementType `json:"type"`

	// Score is the confidence-weighted base score, rounded to nearest int.
	Score int `json:"score"`
}

// GenuinenessResult is the output of AssessGenuineness.
type GenuinenessResult struct {
	// Score is the overall genuineness score in [0, 1].
	Score float64 `json:"score"`

	// IsGenuine is true when Score meets the configured threshold.
	IsGenuine bool `json:"is_genuine"`

	// Confidence is |score - 0.5| * 2: distance from the neutral score.
	Confidence float64 `json:"confidence"`

	// Factors is the ordered factor breakdown, each with its own normalized
	// sub-score. Never empty for a completed session.
	Factors []models.GenuinenessFactor `json:"factors"`
}

// ToBlock converts the result into its persisted session form.
func (g GenuinenessResult) ToBlock() *models.GenuinenessBlock {
	return &models.GenuinenessBlock{
		Score:      g.Score,
		IsGenuine:  g.IsGenuine,
		Confidence: g.Confidence,
		Factors:    g.Factors,
	}
}

// PatientProfile is the emotional fingerprint used by collaborative
// filtering: the most common pre-assessment emotions and the ordered
// improvement sequence across a patient's sessions.
type PatientProfile struct {
	// TopEmotions are the most frequent diagnosed emotions, most common first.
	TopEmotions []emotion.Emotion `json:"top_emotions"`

	// ImprovementSequence is the per-session improvement classification in
	// session order.
	ImprovementSequence []models.ImprovementType `json:"improvement_sequence"`
}
