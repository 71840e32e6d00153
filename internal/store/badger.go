// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/careloop/emotive/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	sessionKeyPrefix        = "session:"
	sessionPatientKeyPrefix = "session_patient:"
	activeSessionKeyPrefix  = "session_active:"
	mediaKeyPrefix          = "media:"
	questionKeyPrefix       = "question:"
)

// BadgerStore implements Store using BadgerDB for durable storage. All three
// persistence surfaces share one database; key prefixes keep them apart.
type BadgerStore struct {
	db        *badger.DB
	sessions  *badgerSessionStore
	catalog   *badgerCatalog
	questions *badgerQuestionBank
}

// OpenBadger opens (or creates) a BadgerDB database at path and returns a
// store backed by it. An empty path opens an in-memory database.
func OpenBadger(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{
		db:        db,
		sessions:  &badgerSessionStore{db: db},
		catalog:   &badgerCatalog{db: db},
		questions: &badgerQuestionBank{db: db},
	}, nil
}

// Sessions returns the session store.
func (s *BadgerStore) Sessions() SessionStore { return s.sessions }

// Catalog returns the media catalog.
func (s *BadgerStore) Catalog() MediaCatalog { return s.catalog }

// Questions returns the question bank.
func (s *BadgerStore) Questions() QuestionBank { return s.questions }

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerSessionStore implements SessionStore on BadgerDB.
//
// The version check and the write happen inside one transaction, so two
// concurrent updates of the same session cannot both succeed.
type badgerSessionStore struct {
	db *badger.DB
}

func (s *badgerSessionStore) Create(ctx context.Context, session *models.Session) error {
	session.Version = 1

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		activeKey := []byte(activeSessionKeyPrefix + session.PatientID)

		// The uniqueness check and the write share one transaction so
		// concurrent session starts cannot both succeed.
		if session.Status == models.StatusInProgress {
			switch _, err := txn.Get(activeKey); {
			case err == nil:
				return fmt.Errorf("patient %s: %w", session.PatientID, ErrActiveSessionExists)
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("check active mapping: %w", err)
			}
		}

		sessionKey := []byte(sessionKeyPrefix + session.ID)
		if err := txn.Set(sessionKey, data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}

		// Patient-to-session mapping for efficient history lookup
		patientKey := []byte(sessionPatientKeyPrefix + session.PatientID + ":" + session.ID)
		if err := txn.Set(patientKey, []byte(session.ID)); err != nil {
			return fmt.Errorf("set patient mapping: %w", err)
		}

		if session.Status == models.StatusInProgress {
			if err := txn.Set(activeKey, []byte(session.ID)); err != nil {
				return fmt.Errorf("set active mapping: %w", err)
			}
		}

		return nil
	})
	// A transaction conflict on the active mapping means a racing create
	// committed first.
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("patient %s: %w", session.PatientID, ErrActiveSessionExists)
	}
	return err
}

func (s *badgerSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session

	err := s.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, sessionKeyPrefix+id, &session, ErrSessionNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *badgerSessionStore) Update(ctx context.Context, session *models.Session, expectedVersion uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var stored models.Session
		if err := readJSON(txn, sessionKeyPrefix+session.ID, &stored, ErrSessionNotFound); err != nil {
			return err
		}

		if stored.Version != expectedVersion {
			return fmt.Errorf("session %s: stored version %d, expected %d: %w",
				session.ID, stored.Version, expectedVersion, ErrVersionConflict)
		}

		session.Version = expectedVersion + 1
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set([]byte(sessionKeyPrefix+session.ID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}

		// Maintain the active-session mapping on terminal transitions.
		activeKey := []byte(activeSessionKeyPrefix + session.PatientID)
		if session.IsTerminal() {
			if err := txn.Delete(activeKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete active mapping: %w", err)
			}
		}

		return nil
	})
}

func (s *badgerSessionStore) ActiveSession(ctx context.Context, patientID string) (*models.Session, error) {
	var sessionID string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(activeSessionKeyPrefix + patientID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get active mapping: %w", err)
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// The mapping can lag a terminal transition made by an older release;
	// treat a terminal session as no active session.
	if session.IsTerminal() {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (s *badgerSessionStore) ListByPatient(ctx context.Context, patientID string, filter SessionFilter, page, limit int) ([]models.Session, int, error) {
	var matched []models.Session

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionPatientKeyPrefix + patientID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var sessionID string
			err := it.Item().Value(func(val []byte) error {
				sessionID = string(val)
				return nil
			})
			if err != nil {
				continue
			}

			var session models.Session
			if err := readJSON(txn, sessionKeyPrefix+sessionID, &session, ErrSessionNotFound); err != nil {
				continue // session may have been removed
			}

			if filter.Matches(&session) {
				matched = append(matched, session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list patient sessions: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	total := len(matched)
	pageItems := paginate(matched, page, limit)
	return pageItems, total, nil
}

func (s *badgerSessionStore) ListCompleted(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session models.Session
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				continue
			}
			if session.Status == models.StatusCompleted {
				sessions = append(sessions, session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	return sessions, nil
}

// badgerCatalog implements MediaCatalog on BadgerDB.
type badgerCatalog struct {
	db *badger.DB
}

func (c *badgerCatalog) Put(ctx context.Context, item *models.MediaItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal media item: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(mediaKeyPrefix+item.ID), data)
	})
}

func (c *badgerCatalog) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	var item models.MediaItem

	err := c.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, mediaKeyPrefix+id, &item, ErrMediaNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (c *badgerCatalog) Active(ctx context.Context) ([]models.MediaItem, error) {
	return c.scan(func(item *models.MediaItem) bool {
		return item.IsActive
	})
}

func (c *badgerCatalog) ActiveByType(ctx context.Context, contentType models.ContentType) ([]models.MediaItem, error) {
	return c.scan(func(item *models.MediaItem) bool {
		return item.IsActive && item.ContentType == contentType
	})
}

func (c *badgerCatalog) scan(keep func(*models.MediaItem) bool) ([]models.MediaItem, error) {
	var items []models.MediaItem

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(mediaKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var item models.MediaItem
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			if err != nil {
				continue
			}
			if keep(&item) {
				items = append(items, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan media catalog: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (c *badgerCatalog) IncrementUsage(ctx context.Context, ids []string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			var item models.MediaItem
			err := readJSON(txn, mediaKeyPrefix+id, &item, ErrMediaNotFound)
			if errors.Is(err, ErrMediaNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			item.UsageCount++
			data, err := json.Marshal(&item)
			if err != nil {
				return fmt.Errorf("marshal media item: %w", err)
			}
			if err := txn.Set([]byte(mediaKeyPrefix+id), data); err != nil {
				return fmt.Errorf("set media item: %w", err)
			}
		}
		return nil
	})
}

// badgerQuestionBank implements QuestionBank on BadgerDB.
type badgerQuestionBank struct {
	db *badger.DB
}

func (b *badgerQuestionBank) Put(ctx context.Context, q *models.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(questionKeyPrefix+q.ID), data)
	})
}

func (b *badgerQuestionBank) Get(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question

	err := b.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, questionKeyPrefix+id, &q, ErrQuestionNotFound)
	})
	if err != nil {
		return nil, err
	}

	return &q, nil
}

func (b *badgerQuestionBank) ByStage(ctx context.Context, stage models.QuestionStage) ([]models.Question, error) {
	var questions []models.Question

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(questionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var q models.Question
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &q)
			})
			if err != nil {
				continue
			}
			if q.IsActive && q.Stage == stage {
				questions = append(questions, q)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan questions: %w", err)
	}

	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

// readJSON loads and unmarshals the value at key within txn, mapping a
// missing key to notFound.
func readJSON(txn *badger.Txn, key string, out any, notFound error) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", keyKind(key), err)
	}

	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, out); err != nil {
			return fmt.Errorf("unmarshal %s: %w", keyKind(key), err)
		}
		return nil
	})
}

// keyKind strips the record ID from a storage key for error messages.
func keyKind(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return key
}

// paginate returns the requested page. Page numbers start at 1; a limit of
// zero or less returns everything.
func paginate(sessions []models.Session, page, limit int) []models.Session {
	if limit <= 0 {
		return sessions
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(sessions) {
		return nil
	}
	end := start + limit
	if end > len(sessions) {
		end = len(sessions)
	}
	return sessions[start:end]
}
