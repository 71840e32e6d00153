// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/careloop/emotive/internal/models"
)

// MemoryStore implements Store with in-process maps. Suitable for tests and
// ephemeral deployments; data does not survive restarts.
type MemoryStore struct {
	sessions  *memorySessionStore
	catalog   *memoryCatalog
	questions *memoryQuestionBank
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  &memorySessionStore{sessions: make(map[string]models.Session)},
		catalog:   &memoryCatalog{items: make(map[string]models.MediaItem)},
		questions: &memoryQuestionBank{questions: make(map[string]models.Question)},
	}
}

// Sessions returns the session store.
func (s *MemoryStore) Sessions() SessionStore { return s.sessions }

// Catalog returns the media catalog.
func (s *MemoryStore) Catalog() MediaCatalog { return s.catalog }

// Questions returns the question bank.
func (s *MemoryStore) Questions() QuestionBank { return s.questions }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func (s *memorySessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness check and write happen under one lock so concurrent
	// session starts cannot both succeed.
	if session.Status == models.StatusInProgress {
		for _, existing := range s.sessions {
			if existing.PatientID == session.PatientID && existing.Status == models.StatusInProgress {
				return fmt.Errorf("patient %s: %w", session.PatientID, ErrActiveSessionExists)
			}
		}
	}

	session.Version = 1
	s.sessions[session.ID] = *session
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *memorySessionStore) Update(ctx context.Context, session *models.Session, expectedVersion uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("session %s: stored version %d, expected %d: %w",
			session.ID, stored.Version, expectedVersion, ErrVersionConflict)
	}

	session.Version = expectedVersion + 1
	s.sessions[session.ID] = *session
	return nil
}

func (s *memorySessionStore) ActiveSession(ctx context.Context, patientID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.PatientID == patientID && session.Status == models.StatusInProgress {
			found := session
			return &found, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *memorySessionStore) ListByPatient(ctx context.Context, patientID string, filter SessionFilter, page, limit int) ([]models.Session, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Session
	for _, session := range s.sessions {
		if session.PatientID != patientID {
			continue
		}
		if !filter.Matches(&session) {
			continue
		}
		matched = append(matched, session)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	return paginate(matched, page, limit), len(matched), nil
}

func (s *memorySessionStore) ListCompleted(ctx context.Context) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []models.Session
	for _, session := range s.sessions {
		if session.Status == models.StatusCompleted {
			sessions = append(sessions, session)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions, nil
}

type memoryCatalog struct {
	mu    sync.RWMutex
	items map[string]models.MediaItem
}

func (c *memoryCatalog) Put(ctx context.Context, item *models.MediaItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[item.ID] = *item
	return nil
}

func (c *memoryCatalog) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	return &item, nil
}

func (c *memoryCatalog) Active(ctx context.Context) ([]models.MediaItem, error) {
	return c.scan(func(item *models.MediaItem) bool {
		return item.IsActive
	})
}

func (c *memoryCatalog) ActiveByType(ctx context.Context, contentType models.ContentType) ([]models.MediaItem, error) {
	return c.scan(func(item *models.MediaItem) bool {
		return item.IsActive && item.ContentType == contentType
	})
}

func (c *memoryCatalog) scan(keep func(*models.MediaItem) bool) ([]models.MediaItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var items []models.MediaItem
	for _, item := range c.items {
		if keep(&item) {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (c *memoryCatalog) IncrementUsage(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		item, ok := c.items[id]
		if !ok {
			continue
		}
		item.UsageCount++
		c.items[id] = item
	}
	return nil
}

type memoryQuestionBank struct {
	mu        sync.RWMutex
	questions map[string]models.Question
}

func (b *memoryQuestionBank) Put(ctx context.Context, q *models.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.questions[q.ID] = *q
	return nil
}

func (b *memoryQuestionBank) Get(ctx context.Context, id string) (*models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	q, ok := b.questions[id]
	if !ok {
		return nil, ErrQuestionNotFound
	}
	return &q, nil
}

func (b *memoryQuestionBank) ByStage(ctx context.Context, stage models.QuestionStage) ([]models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var questions []models.Question
	for _, q := range b.questions {
		if q.IsActive && q.Stage == stage {
			questions = append(questions, q)
		}
	}

	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}
