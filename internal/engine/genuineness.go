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

// Genuineness factor names, stable for auditing and tests.
const (
	FactorResponseConsistency   = "response_consistency"
	FactorImprovementAlignment  = "improvement_alignment"
	FactorMediaEngagement       = "media_engagement"
	FactorSessionDuration       = "session_duration"
	FactorTherapeuticEngagement = "therapeutic_engagement"
)

// AssessGenuineness scores whether a completed session's self-reported
// improvement looks authentic. The score starts at the neutral baseline; the
// consistency, alignment and engagement factors contribute their deviation
// from 0.5 scaled by twice their weight (suspicious factors subtract), and
// the duration and therapeutic factors add fixed credits. The full factor
// breakdown is returned for auditability; this is not a black box.
func (e *Engine) AssessGenuineness(session *models.Session) GenuinenessResult {
	cfg := e.config.Genuineness

	score := cfg.BaseScore
	factors := make([]models.GenuinenessFactor, 0, 5)

	// Factor 1: response consistency across matched pre/post questions.
	consistency := e.responseConsistency(session)
	score += (consistency - 0.5) * 2 * cfg.ConsistencyWeight
	factors = append(factors, models.GenuinenessFactor{Name: FactorResponseConsistency, Score: consistency})

	// Factor 2: does the classified improvement align with expectations for
	// the pre-assessment emotion.
	alignment := e.improvementAlignment(session)
	score += (alignment - 0.5) * 2 * cfg.AlignmentWeight
	factors = append(factors, models.GenuinenessFactor{Name: FactorImprovementAlignment, Score: alignment})

	// Factor 3: media engagement across initial and therapeutic watches.
	engagement := e.mediaEngagement(session.AllWatches())
	score += (engagement - 0.5) * 2 * cfg.EngagementWeight
	factors = append(factors, models.GenuinenessFactor{Name: FactorMediaEngagement, Score: engagement})

	// Factor 4: session duration reasonableness. Implausibly short or long
	// sessions are lower trust.
	durationScore := 0.5
	if session.DurationSeconds >= cfg.MinReasonableDuration && session.DurationSeconds <= cfg.MaxReasonableDuration {
		durationScore = 0.8
		score += cfg.DurationBonus
	}
	factors = append(factors, models.GenuinenessFactor{Name: FactorSessionDuration, Score: durationScore})

	// Factor 5: therapeutic engagement specifically.
	if len(session.TherapeuticMedia) > 0 {
		avgCompletion := averageCompletion(session.TherapeuticMedia)
		if avgCompletion > cfg.HighCompletionRate {
			score += cfg.TherapeuticBonus
			factors = append(factors, models.GenuinenessFactor{Name: FactorTherapeuticEngagement, Score: 0.9})
		} else {
			factors = append(factors, models.GenuinenessFactor{Name: FactorTherapeuticEngagement, Score: avgCompletion / 100})
		}
	}

	score = clamp01(score)

	return GenuinenessResult{
		Score:      score,
		IsGenuine:  score >= cfg.GenuineThreshold,
		Confidence: math.Abs(score-0.5) * 2,
		Factors:    factors,
	}
}

// responseConsistency awards the changed-option credit for each matched
// question answered differently post-exposure (change is expected after
// therapeutic media) and the same-option credit otherwise, averaged across
// matched pairs. Returns 0.5 when no questions overlap.
func (e *Engine) responseConsistency(session *models.Session) float64 {
	cfg := e.config.Genuineness

	if session.PreAssessment == nil || session.PostAssessment == nil {
		return 0.5
	}

	post := make(map[string]string, len(session.PostAssessment.Responses))
	for _, r := range session.PostAssessment.Responses {
		post[r.QuestionID] = r.SelectedOption
	}

	var total float64
	matched := 0
	for _, pre := range session.PreAssessment.Responses {
		selected, ok := post[pre.QuestionID]
		if !ok {
			continue
		}
		matched++
		if selected == pre.SelectedOption {
			total += cfg.SameOptionCredit
		} else {
			total += cfg.ChangedOptionCredit
		}
	}

	if matched == 0 {
		return 0.5
	}
	return total / float64(matched)
}

// improvementAlignment credits sessions whose classified improvement matches
// what the pre-assessment emotion predicts: negative states are expected to
// improve, neutral states to stay level.
func (e *Engine) improvementAlignment(session *models.Session) float64 {
	preEmotion := emotion.Neutral
	if session.PreAssessment != nil && session.PreAssessment.AssessedEmotion != nil {
		preEmotion = session.PreAssessment.AssessedEmotion.Overall
	}

	improvement := models.ImprovementSame
	if session.PostAssessment != nil && session.PostAssessment.Improvement != "" {
		improvement = session.PostAssessment.Improvement
	}

	switch {
	case preEmotion.IsNegative() && improvement == models.ImprovementImproved:
		return 0.9
	case preEmotion == emotion.Neutral && improvement == models.ImprovementSame:
		return 0.7
	default:
		return 0.5
	}
}

// mediaEngagement scores watch behavior: 0.3 when nothing was watched at
// all, otherwise 0.5 plus completion and plausible-duration bonuses, capped
// at 1.
func (e *Engine) mediaEngagement(watches []models.MediaWatch) float64 {
	cfg := e.config.Genuineness

	if len(watches) == 0 {
		return 0.3
	}

	avgCompletion := averageCompletion(watches)
	var totalDuration float64
	for _, w := range watches {
		totalDuration += float64(w.WatchedDuration)
	}
	avgDuration := totalDuration / float64(len(watches))

	score := 0.5
	switch {
	case avgCompletion > cfg.HighCompletionRate:
		score += 0.3
	case avgCompletion > cfg.ModerateCompletionRate:
		score += 0.15
	}
	if avgDuration >= cfg.MinEngagedDuration && avgDuration <= cfg.MaxEngagedDuration {
		score += 0.2
	}

	return clamp01(score)
}

// averageCompletion returns the mean completion rate across watches.
func averageCompletion(watches []models.MediaWatch) float64 {
	if len(watches) == 0 {
		return 0
	}
	var sum float64
	for _, w := range watches {
		sum += w.CompletionRate
	}
	return sum / float64(len(watches))
}
