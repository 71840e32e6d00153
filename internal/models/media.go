// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package models

import (
	"time"

	"github.com/careloop/emotive/internal/emotion"
)

// MediaType is the physical media kind.
type MediaType string

// Media kinds.
const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// ContentType distinguishes the protocol stage a media item serves.
type ContentType string

// Content stages.
const (
	// ContentInitial items are shown at session start, before assessment.
	ContentInitial ContentType = "initial"

	// ContentTherapeutic items are selected to counter a diagnosed emotion.
	ContentTherapeutic ContentType = "therapeutic"
)

// MediaItem is one catalog entry. Only active items are eligible for
// recommendation.
type MediaItem struct {
	// ID is the catalog identifier.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Description is an optional display description.
	Description string `json:"description,omitempty"`

	// MediaType is video or audio.
	MediaType MediaType `json:"media_type"`

	// FileURL is the playback location.
	FileURL string `json:"file_url,omitempty"`

	// ThumbnailURL is an optional preview image.
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// Duration is the content length in seconds.
	Duration int `json:"duration"`

	// TargetEmotion is the emotion the content is designed to evoke.
	TargetEmotion emotion.Emotion `json:"target_emotion"`

	// EmotionCategory is the valence category of the content.
	EmotionCategory emotion.Category `json:"emotion_category"`

	// ContentType is the protocol stage the item serves.
	ContentType ContentType `json:"content_type"`

	// Tags lists free-form content tags matched against profile
	// recommended-content tags.
	Tags []string `json:"tags,omitempty"`

	// UsageCount is incremented each time the item is selected for a session.
	UsageCount int `json:"usage_count"`

	// EffectivenessScore is the accumulated effectiveness rating (0-10).
	EffectivenessScore float64 `json:"effectiveness_score"`

	// IsActive gates recommendation eligibility.
	IsActive bool `json:"is_active"`

	// CreatedAt is when the item entered the catalog.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// MediaWatch records one self-reported viewing of a media item within a
// session stage.
type MediaWatch struct {
	// MediaID references the catalog item.
	MediaID string `json:"media_id"`

	// RecommendedReason explains why the item was selected (therapeutic stage).
	RecommendedReason string `json:"recommended_reason,omitempty"`

	// WatchedAt is when the watch was recorded.
	WatchedAt time.Time `json:"watched_at"`

	// WatchedDuration is the self-reported watch time in seconds.
	WatchedDuration int `json:"watched_duration"`

	// CompletionRate is the self-reported completion percentage (0-100).
	CompletionRate float64 `json:"completion_rate"`
}
