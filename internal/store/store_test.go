// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/models"
)

// openStores returns both store implementations so every test runs against
// each backend.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() {
		if err := badgerStore.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
	}
}

func newTestSession(id, patientID string, status models.SessionStatus, startedAt time.Time) *models.Session {
	return &models.Session{
		ID:          id,
		PatientID:   patientID,
		SessionType: models.SessionDailyCheck,
		Stage:       models.StageInitialMedia,
		Status:      status,
		StartedAt:   startedAt,
	}
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			session := newTestSession("sess-1", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if session.Version != 1 {
				t.Errorf("Version after Create = %d, want 1", session.Version)
			}

			got, err := sessions.Get(ctx, "sess-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.PatientID != "patient-1" {
				t.Errorf("PatientID = %q, want %q", got.PatientID, "patient-1")
			}
			if got.Version != 1 {
				t.Errorf("Version = %d, want 1", got.Version)
			}

			if _, err := sessions.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionStoreOptimisticVersioning(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			session := newTestSession("sess-1", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			// First writer succeeds and bumps the version.
			session.Stage = models.StagePreAssessment
			if err := sessions.Update(ctx, session, 1); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if session.Version != 2 {
				t.Errorf("Version after Update = %d, want 2", session.Version)
			}

			// A second writer still holding version 1 must fail.
			stale := newTestSession("sess-1", "patient-1", models.StatusInProgress, time.Now())
			stale.Stage = models.StageTherapeuticMedia
			if err := sessions.Update(ctx, stale, 1); !errors.Is(err, ErrVersionConflict) {
				t.Errorf("stale Update() error = %v, want ErrVersionConflict", err)
			}

			// Stored state reflects only the first write.
			got, err := sessions.Get(ctx, "sess-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Stage != models.StagePreAssessment {
				t.Errorf("Stage = %q, want %q", got.Stage, models.StagePreAssessment)
			}
		})
	}
}

func TestSessionStoreUpdateMissing(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			session := newTestSession("ghost", "patient-1", models.StatusInProgress, time.Now())
			if err := st.Sessions().Update(ctx, session, 1); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Update(missing) error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionStoreActiveSession(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			if _, err := sessions.ActiveSession(ctx, "patient-1"); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("ActiveSession(empty) error = %v, want ErrSessionNotFound", err)
			}

			session := newTestSession("sess-1", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			active, err := sessions.ActiveSession(ctx, "patient-1")
			if err != nil {
				t.Fatalf("ActiveSession() error = %v", err)
			}
			if active.ID != "sess-1" {
				t.Errorf("ActiveSession().ID = %q, want %q", active.ID, "sess-1")
			}

			// Completing the session clears the active mapping.
			session.Status = models.StatusCompleted
			session.Stage = models.StageCompleted
			if err := sessions.Update(ctx, session, 1); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			if _, err := sessions.ActiveSession(ctx, "patient-1"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("ActiveSession(completed) error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionStoreListByPatient(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			// Five completed sessions plus one abandoned for patient-1, and
			// one for another patient that must never appear.
			for i := 0; i < 5; i++ {
				s := newTestSession(fmt.Sprintf("sess-%d", i), "patient-1", models.StatusCompleted, base.Add(time.Duration(i)*time.Hour))
				if err := sessions.Create(ctx, s); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
			}
			abandoned := newTestSession("sess-x", "patient-1", models.StatusAbandoned, base.Add(10*time.Hour))
			if err := sessions.Create(ctx, abandoned); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			other := newTestSession("sess-other", "patient-2", models.StatusCompleted, base)
			if err := sessions.Create(ctx, other); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			// Status filter plus pagination, newest first.
			page, total, err := sessions.ListByPatient(ctx, "patient-1", SessionFilter{Status: models.StatusCompleted}, 1, 2)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
			if len(page) != 2 {
				t.Fatalf("page length = %d, want 2", len(page))
			}
			if page[0].ID != "sess-4" || page[1].ID != "sess-3" {
				t.Errorf("page IDs = %q, %q, want sess-4, sess-3", page[0].ID, page[1].ID)
			}

			// Last partial page.
			page, _, err = sessions.ListByPatient(ctx, "patient-1", SessionFilter{Status: models.StatusCompleted}, 3, 2)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if len(page) != 1 || page[0].ID != "sess-0" {
				t.Errorf("last page = %v, want [sess-0]", page)
			}

			// Empty status returns every session.
			_, total, err = sessions.ListByPatient(ctx, "patient-1", SessionFilter{}, 1, 10)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if total != 6 {
				t.Errorf("unfiltered total = %d, want 6", total)
			}

			// Page beyond the end is empty, not an error.
			page, _, err = sessions.ListByPatient(ctx, "patient-1", SessionFilter{Status: models.StatusCompleted}, 9, 2)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if len(page) != 0 {
				t.Errorf("overflow page length = %d, want 0", len(page))
			}
		})
	}
}

func TestSessionStoreListCompleted(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			completed := newTestSession("sess-1", "patient-1", models.StatusCompleted, base)
			inProgress := newTestSession("sess-2", "patient-2", models.StatusInProgress, base)
			for _, s := range []*models.Session{completed, inProgress} {
				if err := sessions.Create(ctx, s); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
			}

			got, err := sessions.ListCompleted(ctx)
			if err != nil {
				t.Fatalf("ListCompleted() error = %v", err)
			}
			if len(got) != 1 || got[0].ID != "sess-1" {
				t.Errorf("ListCompleted() = %v, want [sess-1]", got)
			}
		})
	}
}

func TestMediaCatalog(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			catalog := st.Catalog()

			items := []models.MediaItem{
				{ID: "media-1", Title: "Ocean Waves", ContentType: models.ContentTherapeutic, IsActive: true},
				{ID: "media-2", Title: "Welcome", ContentType: models.ContentInitial, IsActive: true},
				{ID: "media-3", Title: "Retired", ContentType: models.ContentTherapeutic, IsActive: false},
			}
			for i := range items {
				if err := catalog.Put(ctx, &items[i]); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			active, err := catalog.Active(ctx)
			if err != nil {
				t.Fatalf("Active() error = %v", err)
			}
			if len(active) != 2 {
				t.Errorf("Active() length = %d, want 2", len(active))
			}

			initial, err := catalog.ActiveByType(ctx, models.ContentInitial)
			if err != nil {
				t.Fatalf("ActiveByType() error = %v", err)
			}
			if len(initial) != 1 || initial[0].ID != "media-2" {
				t.Errorf("ActiveByType(initial) = %v, want [media-2]", initial)
			}

			if _, err := catalog.Get(ctx, "missing"); !errors.Is(err, ErrMediaNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrMediaNotFound", err)
			}
		})
	}
}

func TestMediaCatalogIncrementUsage(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			catalog := st.Catalog()

			item := models.MediaItem{ID: "media-1", Title: "Ocean Waves", IsActive: true, UsageCount: 3}
			if err := catalog.Put(ctx, &item); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			// Missing IDs are skipped, existing ones are bumped.
			if err := catalog.IncrementUsage(ctx, []string{"media-1", "missing"}); err != nil {
				t.Fatalf("IncrementUsage() error = %v", err)
			}

			got, err := catalog.Get(ctx, "media-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.UsageCount != 4 {
				t.Errorf("UsageCount = %d, want 4", got.UsageCount)
			}
		})
	}
}

func TestQuestionBankByStage(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			bank := st.Questions()

			questions := []models.Question{
				{ID: "q-2", Text: "How intense is the feeling?", Stage: models.StagePre, Order: 2, IsActive: true},
				{ID: "q-1", Text: "How do you feel right now?", Stage: models.StagePre, Order: 1, IsActive: true},
				{ID: "q-3", Text: "How do you feel after watching?", Stage: models.StagePost, Order: 1, IsActive: true},
				{ID: "q-4", Text: "Retired question", Stage: models.StagePre, Order: 0, IsActive: false},
			}
			for i := range questions {
				if err := bank.Put(ctx, &questions[i]); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			pre, err := bank.ByStage(ctx, models.StagePre)
			if err != nil {
				t.Fatalf("ByStage() error = %v", err)
			}
			if len(pre) != 2 {
				t.Fatalf("ByStage(pre) length = %d, want 2", len(pre))
			}
			if pre[0].ID != "q-1" || pre[1].ID != "q-2" {
				t.Errorf("ByStage(pre) order = %q, %q, want q-1, q-2", pre[0].ID, pre[1].ID)
			}

			if _, err := bank.Get(ctx, "missing"); !errors.Is(err, ErrQuestionNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrQuestionNotFound", err)
			}
		})
	}
}

func TestSessionStoreCreateEnforcesSingleActive(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			first := newTestSession("sess-1", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, first); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			second := newTestSession("sess-2", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, second); !errors.Is(err, ErrActiveSessionExists) {
				t.Errorf("second Create() error = %v, want ErrActiveSessionExists", err)
			}

			// Another patient is unaffected.
			other := newTestSession("sess-3", "patient-2", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, other); err != nil {
				t.Errorf("other patient Create() error = %v", err)
			}

			// A terminal write frees the slot.
			first.Status = models.StatusCompleted
			first.Stage = models.StageCompleted
			if err := sessions.Update(ctx, first, 1); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
			next := newTestSession("sess-4", "patient-1", models.StatusInProgress, time.Now())
			if err := sessions.Create(ctx, next); err != nil {
				t.Errorf("Create() after completion error = %v", err)
			}
		})
	}
}

func TestSessionStoreCreateConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	const attempts = 8

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			start := make(chan struct{})
			errs := make([]error, attempts)
			var wg sync.WaitGroup
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					s := newTestSession(fmt.Sprintf("race-%d", i), "patient-1", models.StatusInProgress, time.Now())
					errs[i] = sessions.Create(ctx, s)
				}(i)
			}
			close(start)
			wg.Wait()

			succeeded := 0
			for i, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case !errors.Is(err, ErrActiveSessionExists):
					t.Fatalf("Create()[%d] error = %v, want ErrActiveSessionExists", i, err)
				}
			}
			if succeeded != 1 {
				t.Errorf("%d concurrent creates succeeded, want exactly 1", succeeded)
			}
		})
	}
}

func TestSessionStoreFilterByStageAndEmotion(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			sessions := st.Sessions()

			sad := newTestSession("sess-sad", "patient-1", models.StatusCompleted, base)
			sad.Stage = models.StageCompleted
			sad.PreAssessment = &models.AssessmentBlock{
				AssessedEmotion: &models.AssessedEmotion{Overall: emotion.Sad, Confidence: 0.9},
			}
			anxious := newTestSession("sess-anx", "patient-1", models.StatusCompleted, base.Add(time.Hour))
			anxious.Stage = models.StageCompleted
			anxious.PreAssessment = &models.AssessmentBlock{
				AssessedEmotion: &models.AssessedEmotion{Overall: emotion.Anxious, Confidence: 0.8},
			}
			undiagnosed := newTestSession("sess-raw", "patient-1", models.StatusAbandoned, base.Add(2*time.Hour))
			for _, s := range []*models.Session{sad, anxious, undiagnosed} {
				if err := sessions.Create(ctx, s); err != nil {
					t.Fatalf("Create(%s) error = %v", s.ID, err)
				}
			}

			got, total, err := sessions.ListByPatient(ctx, "patient-1", SessionFilter{Emotion: emotion.Sad}, 1, 10)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if total != 1 || got[0].ID != "sess-sad" {
				t.Errorf("emotion filter = %v (total %d), want [sess-sad]", got, total)
			}

			_, total, err = sessions.ListByPatient(ctx, "patient-1", SessionFilter{Stage: models.StageCompleted}, 1, 10)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if total != 2 {
				t.Errorf("stage filter total = %d, want 2", total)
			}

			// Combined filters intersect.
			_, total, err = sessions.ListByPatient(ctx, "patient-1",
				SessionFilter{Status: models.StatusCompleted, Emotion: emotion.Anxious}, 1, 10)
			if err != nil {
				t.Fatalf("ListByPatient() error = %v", err)
			}
			if total != 1 {
				t.Errorf("combined filter total = %d, want 1", total)
			}
		})
	}
}
