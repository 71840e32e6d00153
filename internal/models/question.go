// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package models

import (
	"time"

	"github.com/careloop/emotive/internal/emotion"
)

// QuestionStage distinguishes pre- and post-assessment questionnaires.
type QuestionStage string

// Questionnaire stages.
const (
	StagePre  QuestionStage = "pre"
	StagePost QuestionStage = "post"
)

// Question is one multiple-choice questionnaire item.
type Question struct {
	// ID is the question bank identifier.
	ID string `json:"id"`

	// Text is the question prompt.
	Text string `json:"text"`

	// Stage is pre or post.
	Stage QuestionStage `json:"stage"`

	// Category groups questions (mood, energy, stress, sleep, ...).
	Category string `json:"category,omitempty"`

	// Options are the selectable answers.
	Options []Option `json:"options"`

	// Weight multiplies option scores during diagnosis. Zero means the
	// default weight of 1.
	Weight float64 `json:"weight,omitempty"`

	// Order controls questionnaire display ordering.
	Order int `json:"order"`

	// IsActive gates whether the question is served.
	IsActive bool `json:"is_active"`
}

// Option is one selectable answer. An option without an EmotionMapping never
// contributes to diagnosis scoring; it is skipped, not an error.
type Option struct {
	// Text is the display text and the value recorded in responses.
	Text string `json:"text"`

	// EmotionMapping tags the option with the emotion it signals. Empty means
	// unmapped: the option is ignored by the diagnosis engine.
	EmotionMapping emotion.Emotion `json:"emotion_mapping,omitempty"`

	// Score is the diagnostic strength of selecting this option. Zero means
	// the default score of 1.
	Score float64 `json:"score,omitempty"`
}

// Response records one answered question within a session. Responses are
// immutable once recorded; a session's response list is replace-by-question-id.
type Response struct {
	// QuestionID references the answered question.
	QuestionID string `json:"question_id"`

	// SelectedOption is the text of the chosen option.
	SelectedOption string `json:"selected_option"`

	// Answer is a free-form answer echo.
	Answer string `json:"answer,omitempty"`

	// Timestamp is when the response was recorded.
	Timestamp time.Time `json:"timestamp"`
}
