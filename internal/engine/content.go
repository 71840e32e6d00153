// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// Recommend returns the top therapeutic media for the diagnosed emotion,
// scored against the opposite emotion's profile. Items in excluded are never
// returned. A sparse or empty catalog degrades to a shorter or empty list
// rather than failing.
func (e *Engine) Recommend(diagnosed emotion.Emotion, excluded []string) []ScoredMedia {
	profile := e.profiles.Lookup(diagnosed)
	target := profile.Opposite
	if !target.IsValid() {
		target = emotion.StaticOpposite(diagnosed)
	}

	reason := fmt.Sprintf("recommended to counter %s (targets %s)", diagnosed, target)
	return e.scoreCatalog(e.catalogSnapshot(), target, profile, excluded, reason)
}

// RecommendInitial returns initial-stage media using the neutral profile as
// base, for the session's opening batch.
func (e *Engine) RecommendInitial(excluded []string) []ScoredMedia {
	profile := e.profiles.Lookup(emotion.Neutral)

	items := make([]models.MediaItem, 0)
	for _, item := range e.catalogSnapshot() {
		if item.ContentType == models.ContentInitial {
			items = append(items, item)
		}
	}

	return e.scoreCatalog(items, profile.Opposite, profile, excluded, "initial media selection")
}

// scoreCatalog applies the content-based scoring heuristics to every active,
// non-excluded item and returns the ranked shortlist.
func (e *Engine) scoreCatalog(items []models.MediaItem, target emotion.Emotion, profile emotion.Profile, excluded []string, reason string) []ScoredMedia {
	cfg := e.config.Content

	excludeSet := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		excludeSet[id] = struct{}{}
	}

	scored := make([]ScoredMedia, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if _, skip := excludeSet[item.ID]; skip {
			continue
		}

		var score float64

		// Correctness of the emotional match beats everything else.
		if item.TargetEmotion == target {
			score += cfg.TargetEmotionBonus
		}

		score += float64(countTagMatches(item.Tags, profile.RecommendedContent)) * cfg.TagMatchBonus

		if item.EmotionCategory == profile.Category {
			score += cfg.CategoryMatchBonus
		}

		score += item.EffectivenessScore * cfg.EffectivenessMultiplier

		// Novelty bonus decays usage concentration across the catalog.
		usage := item.UsageCount
		if usage > cfg.NoveltyCeiling {
			usage = cfg.NoveltyCeiling
		}
		score += float64(cfg.NoveltyCeiling-usage) * cfg.NoveltyFactor

		if item.Duration <= cfg.ShortDurationMax {
			score += cfg.ShortDurationBonus
		}

		scored = append(scored, ScoredMedia{Item: item, Score: score, Reason: reason})
	}

	// Ties break by item ID so ranking is deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item.ID < scored[j].Item.ID
	})

	if len(scored) > cfg.ShortlistSize {
		scored = scored[:cfg.ShortlistSize]
	}
	return scored
}

// countTagMatches counts item tags that fuzzy-match any recommended-content
// tag (case-insensitive substring).
func countTagMatches(tags, recommended []string) int {
	if len(tags) == 0 || len(recommended) == 0 {
		return 0
	}
	matches := 0
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, rec := range recommended {
			if strings.Contains(lower, strings.ToLower(rec)) {
				matches++
				break
			}
		}
	}
	return matches
}
