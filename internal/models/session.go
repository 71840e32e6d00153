// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package models

import (
	"time"

	"github.com/careloop/emotive/internal/emotion"
)

// SessionType labels why a session was started.
type SessionType string

// Session types.
const (
	SessionDailyCheck SessionType = "daily_check"
	SessionScheduled  SessionType = "scheduled"
	SessionOnDemand   SessionType = "on_demand"
)

// SessionStage is the current position in the five-stage protocol. Stages
// advance strictly forward; a session never rewinds.
type SessionStage string

// Protocol stages, in order.
const (
	StageInitialMedia     SessionStage = "initial_media"
	StagePreAssessment    SessionStage = "pre_assessment"
	StageTherapeuticMedia SessionStage = "therapeutic_media"
	StagePostAssessment   SessionStage = "post_assessment"
	StageGenuineness      SessionStage = "genuineness_assessment"
	StageCompleted        SessionStage = "completed"
)

// stageOrder maps each stage to its position in the forward sequence.
var stageOrder = map[SessionStage]int{
	StageInitialMedia:     0,
	StagePreAssessment:    1,
	StageTherapeuticMedia: 2,
	StagePostAssessment:   3,
	StageGenuineness:      4,
	StageCompleted:        5,
}

// Next returns the stage that follows s, or StageCompleted if s is terminal.
func (s SessionStage) Next() SessionStage {
	switch s {
	case StageInitialMedia:
		return StagePreAssessment
	case StagePreAssessment:
		return StageTherapeuticMedia
	case StageTherapeuticMedia:
		return StagePostAssessment
	case StagePostAssessment:
		return StageGenuineness
	case StageGenuineness:
		return StageCompleted
	default:
		return StageCompleted
	}
}

// Before reports whether s precedes other in the protocol order.
func (s SessionStage) Before(other SessionStage) bool {
	return stageOrder[s] < stageOrder[other]
}

// SessionStatus is the overall lifecycle state.
type SessionStatus string

// Lifecycle states. Sessions are never deleted, only marked completed or
// abandoned; the record is the durable audit trail.
const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// AssessedEmotion is the persisted form of a diagnosis.
type AssessedEmotion struct {
	// Overall is the primary diagnosed emotion.
	Overall emotion.Emotion `json:"overall"`

	// Confidence is the diagnosis confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Intensity is the 1-5 intensity for the diagnosed emotion.
	Intensity int `json:"intensity,omitempty"`

	// Symptoms, PhysicalSigns and MentalSigns come from the emotion profile.
	Symptoms      []string `json:"symptoms,omitempty"`
	PhysicalSigns []string `json:"physical_signs,omitempty"`
	MentalSigns   []string `json:"mental_signs,omitempty"`

	// AllScores is the full per-emotion score map, kept for explainability.
	AllScores map[emotion.Emotion]float64 `json:"all_scores,omitempty"`
}

// ImprovementType classifies the pre-to-post emotional transition.
type ImprovementType string

// Improvement classifications.
const (
	ImprovementImproved ImprovementType = "improved"
	ImprovementSame     ImprovementType = "same"
	ImprovementUnclear  ImprovementType = "unclear"
)

// AssessmentBlock is one completed questionnaire pass within a session.
type AssessmentBlock struct {
	// Responses are the recorded answers.
	Responses []Response `json:"responses"`

	// CompletedAt is set when the block is scored.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// AssessedEmotion is the diagnosis produced from the responses.
	AssessedEmotion *AssessedEmotion `json:"assessed_emotion,omitempty"`

	// Improvement fields are populated on the post-assessment block only,
	// once both diagnoses exist.
	Improvement      ImprovementType `json:"improvement,omitempty"`
	ImprovementScore int             `json:"improvement_score,omitempty"`
}

// GenuinenessFactor is one named contributor to the genuineness score.
type GenuinenessFactor struct {
	// Name identifies the factor (e.g. "response_consistency").
	Name string `json:"name"`

	// Score is the factor's normalized sub-score in [0, 1].
	Score float64 `json:"score"`
}

// GenuinenessBlock is the persisted genuineness assessment. It is populated
// only after the post-assessment block is completed.
type GenuinenessBlock struct {
	// Score is the overall genuineness score in [0, 1].
	Score float64 `json:"score"`

	// IsGenuine is true when Score meets the configured threshold.
	IsGenuine bool `json:"is_genuine"`

	// Confidence is the distance from the neutral score, scaled to [0, 1].
	Confidence float64 `json:"confidence"`

	// Factors is the ordered, auditable factor breakdown.
	Factors []GenuinenessFactor `json:"factors"`
}

// Session is the append-only record of one patient's assessment run. It is
// mutated exclusively by the orchestrator as stages complete, guarded by the
// optimistic Version field.
type Session struct {
	// ID is the session identifier.
	ID string `json:"id"`

	// PatientID references the patient the session belongs to.
	PatientID string `json:"patient_id"`

	// SessionType labels why the session was started.
	SessionType SessionType `json:"session_type"`

	// Stage is the current protocol stage.
	Stage SessionStage `json:"stage"`

	// Status is the lifecycle state.
	Status SessionStatus `json:"status"`

	// Version is the optimistic concurrency token. Every store write must
	// present the version it read; mismatches are rejected.
	Version uint64 `json:"version"`

	// InitialMedia records watches of the initial media batch.
	InitialMedia []MediaWatch `json:"initial_media,omitempty"`

	// OfferedInitialMedia lists the media IDs offered at session start. The
	// pre-assessment stage cannot begin until each has a recorded watch.
	OfferedInitialMedia []string `json:"offered_initial_media,omitempty"`

	// PreAssessment is the pre-therapeutic questionnaire block.
	PreAssessment *AssessmentBlock `json:"pre_assessment,omitempty"`

	// TherapeuticMedia records watches of recommended therapeutic content.
	TherapeuticMedia []MediaWatch `json:"therapeutic_media,omitempty"`

	// RecommendedMedia lists the therapeutic media IDs selected after the
	// pre-assessment.
	RecommendedMedia []string `json:"recommended_media,omitempty"`

	// PostAssessment is the post-therapeutic questionnaire block.
	PostAssessment *AssessmentBlock `json:"post_assessment,omitempty"`

	// Genuineness is populated at session completion.
	Genuineness *GenuinenessBlock `json:"genuineness,omitempty"`

	// StartedAt is the session creation time.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is set when the session reaches a terminal status.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationSeconds is the total session duration, set at completion.
	DurationSeconds int `json:"duration_seconds,omitempty"`
}

// IsTerminal reports whether the session has reached a terminal status.
func (s *Session) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}

// InitialWatchComplete reports whether every offered initial media item has a
// recorded watch. Vacuously true for an empty offered batch.
func (s *Session) InitialWatchComplete() bool {
	for _, id := range s.OfferedInitialMedia {
		watched := false
		for _, w := range s.InitialMedia {
			if w.MediaID == id {
				watched = true
				break
			}
		}
		if !watched {
			return false
		}
	}
	return true
}

// AllWatches returns initial and therapeutic watches combined.
func (s *Session) AllWatches() []MediaWatch {
	out := make([]MediaWatch, 0, len(s.InitialMedia)+len(s.TherapeuticMedia))
	out = append(out, s.InitialMedia...)
	out = append(out, s.TherapeuticMedia...)
	return out
}
