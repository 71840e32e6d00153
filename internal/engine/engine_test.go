// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package engine

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/careloop/emotive/internal/models"
)

func TestNewEngineDefaults(t *testing.T) {
	e, err := NewEngine(nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if e.Config() == nil {
		t.Error("Config() = nil, want defaults")
	}
	if e.Profiles() == nil || e.Profiles().Len() == 0 {
		t.Error("Profiles() empty, want default table")
	}
	if e.CatalogSize() != 0 {
		t.Errorf("CatalogSize() = %d, want 0 before Reload", e.CatalogSize())
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero negative boost",
			mutate:  func(c *Config) { c.Diagnosis.NegativeBoost = 0 },
			wantErr: "negative_boost",
		},
		{
			name:    "confidence out of range",
			mutate:  func(c *Config) { c.Diagnosis.DefaultConfidence = 1.5 },
			wantErr: "default_confidence",
		},
		{
			name:    "zero shortlist",
			mutate:  func(c *Config) { c.Content.ShortlistSize = 0 },
			wantErr: "shortlist_size",
		},
		{
			name:    "cutoff out of range",
			mutate:  func(c *Config) { c.Collaborative.SimilarityCutoff = 2 },
			wantErr: "similarity_cutoff",
		},
		{
			name:    "zero top emotions",
			mutate:  func(c *Config) { c.Collaborative.TopEmotions = 0 },
			wantErr: "top_emotions",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.Genuineness.GenuineThreshold = -0.1 },
			wantErr: "genuine_threshold",
		},
		{
			name: "all genuineness weights zero",
			mutate: func(c *Config) {
				c.Genuineness.ConsistencyWeight = 0
				c.Genuineness.AlignmentWeight = 0
				c.Genuineness.EngagementWeight = 0
				c.Genuineness.DurationBonus = 0
				c.Genuineness.TherapeuticBonus = 0
			},
			wantErr: "weights",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			_, err := NewEngine(cfg, nil, zerolog.Nop())
			if err == nil {
				t.Fatal("NewEngine() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestReloadReplacesSnapshot(t *testing.T) {
	e := newTestEngine(t)

	e.Reload([]models.MediaItem{{ID: "media-1", IsActive: true}})
	if e.CatalogSize() != 1 {
		t.Fatalf("CatalogSize() = %d, want 1", e.CatalogSize())
	}

	e.Reload([]models.MediaItem{
		{ID: "media-2", IsActive: true},
		{ID: "media-3", IsActive: true},
	})
	if e.CatalogSize() != 2 {
		t.Errorf("CatalogSize() = %d, want 2 after second Reload", e.CatalogSize())
	}

	// The old snapshot is fully replaced, never merged.
	for _, sm := range e.Recommend("sad", nil) {
		if sm.Item.ID == "media-1" {
			t.Error("Recommend() returned an item from the replaced snapshot")
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}
