// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"fmt"
)

// Config contains every tunable constant of the scoring pipeline. Weights are
// heuristics, not validated thresholds; they are configurable so they can be
// tuned and tested independently.
type Config struct {
	// Diagnosis contains parameters for emotion diagnosis.
	Diagnosis DiagnosisConfig `json:"diagnosis" koanf:"diagnosis"`

	// Content contains parameters for content-based recommendation.
	Content ContentConfig `json:"content" koanf:"content"`

	// Collaborative contains parameters for collaborative filtering.
	Collaborative CollaborativeConfig `json:"collaborative" koanf:"collaborative"`

	// Genuineness contains parameters for genuineness assessment.
	Genuineness GenuinenessConfig `json:"genuineness" koanf:"genuineness"`
}

// DiagnosisConfig contains parameters for the diagnosis engine.
type DiagnosisConfig struct {
	// EngagementThreshold is the average watched duration (seconds per media
	// item) above which negative-emotion scores are boosted.
	EngagementThreshold float64 `json:"engagement_threshold" koanf:"engagement_threshold"`

	// NegativeBoost multiplies negative-emotion scores when the engagement
	// threshold is exceeded.
	NegativeBoost float64 `json:"negative_boost" koanf:"negative_boost"`

	// DefaultConfidence is returned when no response carries a mapped emotion.
	DefaultConfidence float64 `json:"default_confidence" koanf:"default_confidence"`
}

// ContentConfig contains the content-based scoring constants.
type ContentConfig struct {
	// TargetEmotionBonus is awarded when an item's target emotion exactly
	// equals the opposite emotion. The dominant signal.
	TargetEmotionBonus float64 `json:"target_emotion_bonus" koanf:"target_emotion_bonus"`

	// TagMatchBonus is awarded per recommended-content tag match.
	TagMatchBonus float64 `json:"tag_match_bonus" koanf:"tag_match_bonus"`

	// CategoryMatchBonus is awarded when the item's category matches the
	// emotion profile's category.
	CategoryMatchBonus float64 `json:"category_match_bonus" koanf:"category_match_bonus"`

	// EffectivenessMultiplier scales the item's effectiveness score.
	EffectivenessMultiplier float64 `json:"effectiveness_multiplier" koanf:"effectiveness_multiplier"`

	// NoveltyFactor scales the (ceiling - usage) novelty bonus that decays
	// usage concentration.
	NoveltyFactor float64 `json:"novelty_factor" koanf:"novelty_factor"`

	// NoveltyCeiling caps the usage count considered by the novelty bonus.
	NoveltyCeiling int `json:"novelty_ceiling" koanf:"novelty_ceiling"`

	// ShortDurationBonus is awarded to items at most ShortDurationMax seconds
	// long, biasing toward content likely to be completed.
	ShortDurationBonus float64 `json:"short_duration_bonus" koanf:"short_duration_bonus"`

	// ShortDurationMax is the duration cutoff for the short-content bonus.
	ShortDurationMax int `json:"short_duration_max" koanf:"short_duration_max"`

	// ShortlistSize is the number of items returned by Recommend.
	ShortlistSize int `json:"shortlist_size" koanf:"shortlist_size"`
}

// CollaborativeConfig contains the collaborative-filtering constants.
type CollaborativeConfig struct {
	// EmotionWeight scales the Jaccard similarity of top-emotion sets.
	EmotionWeight float64 `json:"emotion_weight" koanf:"emotion_weight"`

	// ImprovementWeight scales the improvement-sequence match rate.
	ImprovementWeight float64 `json:"improvement_weight" koanf:"improvement_weight"`

	// SimilarityCutoff is the minimum combined similarity for a patient to
	// count as similar.
	SimilarityCutoff float64 `json:"similarity_cutoff" koanf:"similarity_cutoff"`

	// TopEmotions is the number of most-common emotions kept per profile.
	TopEmotions int `json:"top_emotions" koanf:"top_emotions"`

	// MaxResults caps the returned media IDs.
	MaxResults int `json:"max_results" koanf:"max_results"`

	// MaxSimilarPatients caps the similar patients considered.
	MaxSimilarPatients int `json:"max_similar_patients" koanf:"max_similar_patients"`
}

// GenuinenessConfig contains the genuineness-assessment constants. The three
// weighted factors contribute their deviation from the 0.5 neutral baseline
// scaled by 2 x weight, so a factor at its weight's name value is the maximum
// positive contribution and a suspicious factor subtracts.
type GenuinenessConfig struct {
	// BaseScore is the starting score before contributions.
	BaseScore float64 `json:"base_score" koanf:"base_score"`

	// ConsistencyWeight scales the response-consistency factor.
	ConsistencyWeight float64 `json:"consistency_weight" koanf:"consistency_weight"`

	// AlignmentWeight scales the improvement-alignment factor.
	AlignmentWeight float64 `json:"alignment_weight" koanf:"alignment_weight"`

	// EngagementWeight scales the media-engagement factor.
	EngagementWeight float64 `json:"engagement_weight" koanf:"engagement_weight"`

	// DurationBonus is the fixed credit for a session duration within
	// [MinReasonableDuration, MaxReasonableDuration].
	DurationBonus float64 `json:"duration_bonus" koanf:"duration_bonus"`

	// TherapeuticBonus is the fixed credit for therapeutic completion above
	// HighCompletionRate.
	TherapeuticBonus float64 `json:"therapeutic_bonus" koanf:"therapeutic_bonus"`

	// GenuineThreshold is the score at or above which a session is genuine.
	GenuineThreshold float64 `json:"genuine_threshold" koanf:"genuine_threshold"`

	// SameOptionCredit / ChangedOptionCredit are the per-question consistency
	// credits. Some change is expected after therapeutic exposure.
	SameOptionCredit    float64 `json:"same_option_credit" koanf:"same_option_credit"`
	ChangedOptionCredit float64 `json:"changed_option_credit" koanf:"changed_option_credit"`

	// HighCompletionRate / ModerateCompletionRate are the average completion
	// percentages for the engagement bonuses.
	HighCompletionRate     float64 `json:"high_completion_rate" koanf:"high_completion_rate"`
	ModerateCompletionRate float64 `json:"moderate_completion_rate" koanf:"moderate_completion_rate"`

	// MinEngagedDuration / MaxEngagedDuration bound the plausible average
	// watch duration in seconds.
	MinEngagedDuration float64 `json:"min_engaged_duration" koanf:"min_engaged_duration"`
	MaxEngagedDuration float64 `json:"max_engaged_duration" koanf:"max_engaged_duration"`

	// MinReasonableDuration / MaxReasonableDuration bound a plausible total
	// session duration in seconds.
	MinReasonableDuration int `json:"min_reasonable_duration" koanf:"min_reasonable_duration"`
	MaxReasonableDuration int `json:"max_reasonable_duration" koanf:"max_reasonable_duration"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() *Config {
	return &Config{
		Diagnosis: DiagnosisConfig{
			EngagementThreshold: 120,
			NegativeBoost:       1.2,
			DefaultConfidence:   0.5,
		},
		Content: ContentConfig{
			TargetEmotionBonus:      50,
			TagMatchBonus:           10,
			CategoryMatchBonus:      15,
			EffectivenessMultiplier: 2,
			NoveltyFactor:           0.1,
			NoveltyCeiling:          100,
			ShortDurationBonus:      5,
			ShortDurationMax:        180,
			ShortlistSize:           3,
		},
		Collaborative: CollaborativeConfig{
			EmotionWeight:      0.6,
			ImprovementWeight:  0.4,
			SimilarityCutoff:   0.5,
			TopEmotions:        3,
			MaxResults:         5,
			MaxSimilarPatients: 10,
		},
		Genuineness: GenuinenessConfig{
			BaseScore:              0.5,
			ConsistencyWeight:      0.2,
			AlignmentWeight:        0.2,
			EngagementWeight:       0.15,
			DurationBonus:          0.1,
			TherapeuticBonus:       0.1,
			GenuineThreshold:       0.6,
			SameOptionCredit:       0.3,
			ChangedOptionCredit:    0.7,
			HighCompletionRate:     80,
			ModerateCompletionRate: 50,
			MinEngagedDuration:     30,
			MaxEngagedDuration:     600,
			MinReasonableDuration:  300,
			MaxReasonableDuration:  1800,
		},
	}
}

// Validate checks the configuration for values that would break scoring.
func (c *Config) Validate() error {
	if c.Diagnosis.NegativeBoost <= 0 {
		return fmt.Errorf("diagnosis.negative_boost must be positive, got %f", c.Diagnosis.NegativeBoost)
	}
	if c.Diagnosis.DefaultConfidence < 0 || c.Diagnosis.DefaultConfidence > 1 {
		return fmt.Errorf("diagnosis.default_confidence must be in [0,1], got %f", c.Diagnosis.DefaultConfidence)
	}
	if c.Content.ShortlistSize <= 0 {
		return fmt.Errorf("content.shortlist_size must be positive, got %d", c.Content.ShortlistSize)
	}
	if c.Collaborative.SimilarityCutoff < 0 || c.Collaborative.SimilarityCutoff > 1 {
		return fmt.Errorf("collaborative.similarity_cutoff must be in [0,1], got %f", c.Collaborative.SimilarityCutoff)
	}
	if c.Collaborative.TopEmotions <= 0 {
		return fmt.Errorf("collaborative.top_emotions must be positive, got %d", c.Collaborative.TopEmotions)
	}
	if c.Genuineness.GenuineThreshold < 0 || c.Genuineness.GenuineThreshold > 1 {
		return fmt.Errorf("genuineness.genuine_threshold must be in [0,1], got %f", c.Genuineness.GenuineThreshold)
	}
	sum := c.Genuineness.ConsistencyWeight + c.Genuineness.AlignmentWeight +
		c.Genuineness.EngagementWeight + c.Genuineness.DurationBonus + c.Genuineness.TherapeuticBonus
	if sum <= 0 {
		return fmt.Errorf("genuineness weights must sum to a positive value, got %f", sum)
	}
	return nil
}
