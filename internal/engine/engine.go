// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// Engine is the dependency-injected scoring pipeline. It is constructed once
// at startup with an emotion profile table and refreshed with catalog
// snapshots via Reload; it holds no other mutable state and is safe for
// concurrent use.
type Engine struct {
	config   *Config
	profiles *emotion.Table
	logger   zerolog.Logger

	// catalog is the immutable media snapshot, replaced wholesale by Reload.
	catalogMu sync.RWMutex
	catalog   []models.MediaItem
}

// NewEngine creates a scoring engine. A nil config uses defaults; a nil
// profile table uses the built-in default table.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewEngine(cfg *Config, profiles *emotion.Table, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if profiles == nil {
		profiles = emotion.DefaultTable()
	}

	return &Engine{
		config:   cfg,
		profiles: profiles,
		logger:   logger.With().Str("component", "engine").Logger(),
	}, nil
}

// Reload replaces the engine's media catalog snapshot. Callers pass a
// snapshot they no longer mutate.
func (e *Engine) Reload(catalog []models.MediaItem) {
	e.catalogMu.Lock()
	e.catalog = catalog
	e.catalogMu.Unlock()

	e.logger.Debug().Int("items", len(catalog)).Msg("catalog snapshot reloaded")
}

// catalogSnapshot returns the current catalog snapshot.
func (e *Engine) catalogSnapshot() []models.MediaItem {
	e.catalogMu.RLock()
	defer e.catalogMu.RUnlock()
	return e.catalog
}

// CatalogSize returns the number of items in the current snapshot.
func (e *Engine) CatalogSize() int {
	e.catalogMu.RLock()
	defer e.catalogMu.RUnlock()
	return len(e.catalog)
}

// Profiles exposes the emotion profile table the engine scores against.
func (e *Engine) Profiles() *emotion.Table {
	return e.profiles
}

// Config returns the engine's scoring configuration.
func (e *Engine) Config() *Config {
	return e.config
}
