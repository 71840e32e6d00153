// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package store provides persistence for sessions, the media catalog and the
// question bank. Two implementations exist: a BadgerDB-backed store for
// production and an in-memory store for tests and ephemeral deployments.
//
// Session writes use optimistic versioning: every update presents the version
// it read and fails with ErrVersionConflict on mismatch. Stage transitions
// for one session are thereby strictly serialized; the caller decides whether
// to retry.
package store

import (
	"context"
	"errors"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// Sentinel errors surfaced to the orchestrator and API layer.
var (
	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrVersionConflict indicates a concurrent modification: the stored
	// session version no longer matches the version the caller read.
	// Retryable by the caller.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrActiveSessionExists indicates the patient already has an
	// in-progress session. Create enforces this inside its own write
	// transaction so concurrent session starts cannot both succeed.
	ErrActiveSessionExists = errors.New("patient already has an active session")

	// ErrMediaNotFound indicates the media item does not exist.
	ErrMediaNotFound = errors.New("media item not found")

	// ErrQuestionNotFound indicates the question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
)

// SessionFilter narrows session listings. Zero-valued fields match
// everything.
type SessionFilter struct {
	// Status matches the lifecycle state.
	Status models.SessionStatus

	// Stage matches the protocol stage.
	Stage models.SessionStage

	// Emotion matches the pre-assessment diagnosed emotion.
	Emotion emotion.Emotion
}

// Matches reports whether the session satisfies every set field.
func (f SessionFilter) Matches(s *models.Session) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.Stage != "" && s.Stage != f.Stage {
		return false
	}
	if f.Emotion != "" {
		if s.PreAssessment == nil || s.PreAssessment.AssessedEmotion == nil {
			return false
		}
		if s.PreAssessment.AssessedEmotion.Overall != f.Emotion {
			return false
		}
	}
	return true
}

// SessionStore persists assessment sessions.
type SessionStore interface {
	// Create stores a new session. The session's Version is set to 1.
	// Creating an in-progress session fails with ErrActiveSessionExists
	// when the patient already has one.
	Create(ctx context.Context, session *models.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Update writes the session if the stored version equals
	// expectedVersion, then increments session.Version. Returns
	// ErrVersionConflict on mismatch.
	Update(ctx context.Context, session *models.Session, expectedVersion uint64) error

	// ActiveSession returns the patient's in-progress session, or
	// ErrSessionNotFound if none exists.
	ActiveSession(ctx context.Context, patientID string) (*models.Session, error)

	// ListByPatient returns the patient's sessions matching the filter,
	// newest first, paginated. The second return is the total match count.
	ListByPatient(ctx context.Context, patientID string, filter SessionFilter, page, limit int) ([]models.Session, int, error)

	// ListCompleted returns every completed session across patients, for
	// collaborative filtering.
	ListCompleted(ctx context.Context) ([]models.Session, error)
}

// MediaCatalog persists media items.
type MediaCatalog interface {
	// Put inserts or replaces a media item.
	Put(ctx context.Context, item *models.MediaItem) error

	// Get retrieves a media item by ID.
	Get(ctx context.Context, id string) (*models.MediaItem, error)

	// Active returns all active items.
	Active(ctx context.Context) ([]models.MediaItem, error)

	// ActiveByType returns active items of the given content type.
	ActiveByType(ctx context.Context, contentType models.ContentType) ([]models.MediaItem, error)

	// IncrementUsage bumps the usage count of the given items. Missing IDs
	// are skipped.
	IncrementUsage(ctx context.Context, ids []string) error
}

// QuestionBank persists questionnaire items.
type QuestionBank interface {
	// Put inserts or replaces a question.
	Put(ctx context.Context, q *models.Question) error

	// Get retrieves a question by ID.
	Get(ctx context.Context, id string) (*models.Question, error)

	// ByStage returns active questions for the stage, in display order.
	ByStage(ctx context.Context, stage models.QuestionStage) ([]models.Question, error)
}

// Store groups the three persistence surfaces.
type Store interface {
	Sessions() SessionStore
	Catalog() MediaCatalog
	Questions() QuestionBank

	// Close releases underlying resources.
	Close() error
}
