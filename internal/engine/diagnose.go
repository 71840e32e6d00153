// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"math"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// Diagnose infers the primary emotion from questionnaire responses and
// media-watch telemetry. It is a total function: responses that reference
// unknown options or carry no emotion mapping contribute zero, and an input
// with no scoring signal yields a neutral diagnosis with default confidence
// rather than an error.
func (e *Engine) Diagnose(responses []AnsweredQuestion, behavior MediaBehavior) DiagnosisResult {
	scores := make(map[emotion.Emotion]float64)

	for _, resp := range responses {
		opt, ok := findOption(resp.Question.Options, resp.SelectedOption)
		if !ok {
			continue
		}
		if opt.EmotionMapping == "" || !opt.EmotionMapping.IsValid() {
			// Unmapped options are skipped, never an error.
			continue
		}

		score := opt.Score
		if score == 0 {
			score = 1
		}
		weight := resp.Question.Weight
		if weight == 0 {
			weight = 1
		}
		scores[opt.EmotionMapping] += score * weight
	}

	// Longer engagement with initial media correlates with seeking relief
	// from negative states.
	if behavior.MediaCount > 0 && behavior.WatchedDuration > 0 {
		avg := float64(behavior.WatchedDuration) / float64(behavior.MediaCount)
		if avg > e.config.Diagnosis.EngagementThreshold {
			for em := range scores {
				if em.IsNegative() {
					scores[em] *= e.config.Diagnosis.NegativeBoost
				}
			}
		}
	}

	if len(scores) == 0 {
		neutral := e.profiles.Lookup(emotion.Neutral)
		return DiagnosisResult{
			Emotion:       emotion.Neutral,
			Confidence:    e.config.Diagnosis.DefaultConfidence,
			Intensity:     neutral.Intensity,
			Symptoms:      neutral.Symptoms,
			PhysicalSigns: neutral.PhysicalSigns,
			MentalSigns:   neutral.MentalSigns,
			AllScores:     scores,
		}
	}

	primary, primaryScore := maxEmotion(scores)
	var total float64
	for _, s := range scores {
		total += s
	}

	confidence := e.config.Diagnosis.DefaultConfidence
	if total > 0 {
		confidence = clamp01(primaryScore / total)
	}

	profile := e.profiles.Lookup(primary)
	intensity := profile.Intensity
	if intensity == 0 && total > 0 {
		// Derived intensity: score concentration normalized to the 1-5 scale.
		intensity = int(math.Round(primaryScore / total * 5))
	}

	return DiagnosisResult{
		Emotion:       primary,
		Confidence:    confidence,
		Intensity:     intensity,
		Symptoms:      profile.Symptoms,
		PhysicalSigns: profile.PhysicalSigns,
		MentalSigns:   profile.MentalSigns,
		AllScores:     scores,
	}
}

// findOption resolves the selected option by display text.
func findOption(options []models.Option, selected string) (models.Option, bool) {
	for _, opt := range options {
		if opt.Text == selected {
			return opt, true
		}
	}
	return models.Option{}, false
}

// maxEmotion returns the highest-scoring emotion. Ties break by the stable
// emotion enumeration order so diagnosis is deterministic.
func maxEmotion(scores map[emotion.Emotion]float64) (emotion.Emotion, float64) {
	best := emotion.Neutral
	bestScore := math.Inf(-1)
	for _, em := range emotion.All {
		if s, ok := scores[em]; ok && s > bestScore {
			best, bestScore = em, s
		}
	}
	// Scores for emotions outside the enumerated set cannot occur: mappings
	// are validated on accumulation.
	return best, bestScore
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
