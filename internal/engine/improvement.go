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

// Improvement base scores by transition class. A negative-to-positive swing
// is the strongest signal; leaving a negative state for any different state
// still counts; entering a positive state from neutral counts least.
const (
	baseNegativeToPositive = 8
	baseNegativeShift      = 4
	baseToPositive         = 3
)

// EvaluateImprovement classifies the pre-to-post emotional transition and
// weights the base score by the average diagnosis confidence: a confidently
// measured transition counts more than a marginal one. Missing confidences
// default to 0.5.
func (e *Engine) EvaluateImprovement(pre, post *models.AssessedEmotion) Improvement {
	preEmotion, preConfidence := assessedOrDefault(pre, e.config.Diagnosis.DefaultConfidence)
	postEmotion, postConfidence := assessedOrDefault(post, e.config.Diagnosis.DefaultConfidence)

	preNegative := preEmotion.IsNegative()
	postPositive := postEmotion.IsPositive()

	improvementType := models.ImprovementSame
	base := 0

	switch {
	case preNegative && postPositive:
		improvementType = models.ImprovementImproved
		base = baseNegativeToPositive
	case preNegative && preEmotion != postEmotion:
		improvementType = models.ImprovementImproved
		base = baseNegativeShift
	case preNegative: // unchanged negative state
		improvementType = models.ImprovementSame
	case postPositive:
		improvementType = models.ImprovementImproved
		base = baseToPositive
	}

	score := float64(base) * (preConfidence + postConfidence) / 2

	return Improvement{
		Type:  improvementType,
		Score: int(math.Round(score)),
	}
}

// assessedOrDefault extracts the emotion and confidence from an assessment
// block, defaulting to neutral / 0.5 when absent.
func assessedOrDefault(a *models.AssessedEmotion, defaultConfidence float64) (emotion.Emotion, float64) {
	if a == nil || a.Overall == "" {
		return emotion.Neutral, defaultConfidence
	}
	confidence := a.Confidence
	if confidence == 0 {
		confidence = defaultConfidence
	}
	return a.Overall, confidence
}
