// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package orchestrator drives the assessment session state machine. It is the
// only component that mutates and persists sessions: the scoring engine stays
// pure, the store stays dumb, and every stage transition funnels through here.
//
// Transitions are strictly forward. A submit against the wrong stage is
// rejected with ErrStageOutOfOrder; a concurrent write loses with the store's
// version conflict. Neither is retried internally.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/engine"
	"github.com/careloop/emotive/internal/logging"
	"github.com/careloop/emotive/internal/metrics"
	"github.com/careloop/emotive/internal/models"
	"github.com/careloop/emotive/internal/store"
)

// Sentinel errors for rejected transitions.
var (
	// ErrStageOutOfOrder indicates the operation does not apply to the
	// session's current stage. The transition is rejected, not retried.
	ErrStageOutOfOrder = errors.New("session stage out of order")

	// ErrActiveSessionExists indicates the patient already has an
	// in-progress session. At most one session advances at a time.
	ErrActiveSessionExists = errors.New("patient already has a session in progress")

	// ErrInitialWatchIncomplete indicates the pre-assessment was submitted
	// before every offered initial media item had a recorded watch.
	ErrInitialWatchIncomplete = errors.New("initial media batch not fully watched")
)

// History listing bounds.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Orchestrator coordinates the store and the scoring engine through the
// session lifecycle.
type Orchestrator struct {
	store  store.Store
	engine *engine.Engine
	logger zerolog.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// New creates an orchestrator over the given store and engine.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func New(st store.Store, eng *engine.Engine, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  st,
		engine: eng,
		logger: logger.With().Str("component", "orchestrator").Logger(),
		now:    time.Now,
		newID:  logging.GenerateRequestID,
	}
}

// PreAssessmentResult is returned by SubmitPreAssessment: the updated session
// plus the diagnosis and both recommendation sources.
type PreAssessmentResult struct {
	Session       *models.Session
	Diagnosis     engine.DiagnosisResult
	Recommended   []engine.ScoredMedia
	Collaborative []string
}

// PostAssessmentResult is returned by SubmitPostAssessment: the completed
// session plus the post-stage scoring outputs.
type PostAssessmentResult struct {
	Session     *models.Session
	Diagnosis   engine.DiagnosisResult
	Improvement engine.Improvement
	Genuineness engine.GenuinenessResult
}

// StartSession creates a new in-progress session for the patient and selects
// its initial media batch. Fails with ErrActiveSessionExists when the patient
// already has an in-progress session.
func (o *Orchestrator) StartSession(ctx context.Context, patientID string, sessionType models.SessionType) (*models.Session, error) {
	offered := o.engine.RecommendInitial(nil)
	offeredIDs := make([]string, 0, len(offered))
	for _, sm := range offered {
		offeredIDs = append(offeredIDs, sm.Item.ID)
	}
	metrics.RecordRecommendations("initial", len(offeredIDs))

	session := &models.Session{
		ID:                  o.newID(),
		PatientID:           patientID,
		SessionType:         sessionType,
		Stage:               models.StageInitialMedia,
		Status:              models.StatusInProgress,
		OfferedInitialMedia: offeredIDs,
		StartedAt:           o.now().UTC(),
	}

	// Create enforces the single-active-session invariant inside its own
	// transaction, so a racing start cannot slip past a read-then-write.
	if err := o.store.Sessions().Create(ctx, session); err != nil {
		if errors.Is(err, store.ErrActiveSessionExists) {
			return nil, fmt.Errorf("patient %s: %w", patientID, ErrActiveSessionExists)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStarted.WithLabelValues(string(sessionType)).Inc()
	logging.Ctx(ctx).Info().
		Str("session_id", session.ID).
		Str("session_type", string(sessionType)).
		Int("initial_media", len(offeredIDs)).
		Msg("session started")

	return session, nil
}

// GetSession loads a session, verifying patient ownership. A session owned by
// another patient reads as not found.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID, patientID string) (*models.Session, error) {
	session, err := o.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PatientID != patientID {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

// ListHistory returns the patient's sessions matching the filter, newest
// first. A zero limit defaults to 20; limits are capped at 100.
func (o *Orchestrator) ListHistory(ctx context.Context, patientID string, filter store.SessionFilter, page, limit int) ([]models.Session, int, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if page < 1 {
		page = 1
	}
	return o.store.Sessions().ListByPatient(ctx, patientID, filter, page, limit)
}

// RecordInitialWatch records a watch of initial-stage media. A repeat watch
// of the same item replaces the earlier record rather than double-counting
// it. Once every offered item has a watch, the session moves to the
// pre-assessment stage.
func (o *Orchestrator) RecordInitialWatch(ctx context.Context, sessionID, patientID string, watch models.MediaWatch) (*models.Session, error) {
	session, err := o.GetSession(ctx, sessionID, patientID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, models.StageInitialMedia, models.StagePreAssessment); err != nil {
		return nil, err
	}

	if watch.WatchedAt.IsZero() {
		watch.WatchedAt = o.now().UTC()
	}
	session.InitialMedia = upsertWatch(session.InitialMedia, watch)
	if session.InitialWatchComplete() {
		session.Stage = models.StagePreAssessment
	}

	if err := o.update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// upsertWatch replaces the watch of the same media item, or appends.
func upsertWatch(watches []models.MediaWatch, watch models.MediaWatch) []models.MediaWatch {
	for i := range watches {
		if watches[i].MediaID == watch.MediaID {
			watches[i] = watch
			return watches
		}
	}
	return append(watches, watch)
}

// RecordTherapeuticWatch appends a watch of recommended therapeutic media.
// The session stays in the therapeutic stage; multiple watches accumulate.
func (o *Orchestrator) RecordTherapeuticWatch(ctx context.Context, sessionID, patientID string, watch models.MediaWatch) (*models.Session, error) {
	session, err := o.GetSession(ctx, sessionID, patientID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, models.StageTherapeuticMedia); err != nil {
		return nil, err
	}

	if watch.WatchedAt.IsZero() {
		watch.WatchedAt = o.now().UTC()
	}
	if watch.RecommendedReason == "" {
		watch.RecommendedReason = o.recommendedReason(session, watch.MediaID)
	}
	session.TherapeuticMedia = append(session.TherapeuticMedia, watch)

	if err := o.update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitPreAssessment records the pre-assessment responses, diagnoses the
// patient's emotional state and selects therapeutic media. The session moves
// to the therapeutic stage.
func (o *Orchestrator) SubmitPreAssessment(ctx context.Context, sessionID, patientID string, responses []models.Response) (*PreAssessmentResult, error) {
	session, err := o.GetSession(ctx, sessionID, patientID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, models.StageInitialMedia, models.StagePreAssessment); err != nil {
		return nil, err
	}
	// Scoring cannot begin until the whole offered batch has recorded
	// watches. An empty batch satisfies this vacuously.
	if !session.InitialWatchComplete() {
		return nil, fmt.Errorf("session %s: %d of %d offered items watched: %w",
			session.ID, len(session.InitialMedia), len(session.OfferedInitialMedia), ErrInitialWatchIncomplete)
	}

	now := o.now().UTC()
	stampResponses(responses, now)

	answered := o.resolveResponses(ctx, models.StagePre, responses)
	diagnosis := o.engine.Diagnose(answered, behaviorFromWatches(session.InitialMedia))
	metrics.RecordDiagnosis("pre", diagnosis.Emotion.String())

	// Never re-recommend what this session already showed.
	excluded := make([]string, 0, len(session.OfferedInitialMedia)+len(session.InitialMedia))
	excluded = append(excluded, session.OfferedInitialMedia...)
	for _, w := range session.InitialMedia {
		excluded = append(excluded, w.MediaID)
	}
	recommended := o.engine.Recommend(diagnosis.Emotion, excluded)
	metrics.RecordRecommendations("content", len(recommended))

	collaborative := o.collaborative(ctx, patientID)

	recommendedIDs := make([]string, 0, len(recommended))
	for _, sm := range recommended {
		recommendedIDs = append(recommendedIDs, sm.Item.ID)
	}

	session.PreAssessment = &models.AssessmentBlock{
		Responses:       responses,
		CompletedAt:     &now,
		AssessedEmotion: diagnosis.ToAssessedEmotion(),
	}
	session.RecommendedMedia = recommendedIDs
	session.Stage = models.StageTherapeuticMedia

	if err := o.update(ctx, session); err != nil {
		return nil, err
	}

	// Usage accounting is best effort: a failed increment never blocks the
	// clinical workflow.
	if err := o.store.Catalog().IncrementUsage(ctx, recommendedIDs); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("media usage increment failed")
	}

	logging.Ctx(ctx).Info().
		Str("session_id", session.ID).
		Str("emotion", diagnosis.Emotion.String()).
		Float64("confidence", diagnosis.Confidence).
		Int("recommended", len(recommendedIDs)).
		Int("collaborative", len(collaborative)).
		Msg("pre-assessment submitted")

	return &PreAssessmentResult{
		Session:       session,
		Diagnosis:     diagnosis,
		Recommended:   recommended,
		Collaborative: collaborative,
	}, nil
}

// SubmitPostAssessment records the post-assessment responses, evaluates
// improvement, assesses genuineness and completes the session.
func (o *Orchestrator) SubmitPostAssessment(ctx context.Context, sessionID, patientID string, responses []models.Response) (*PostAssessmentResult, error) {
	session, err := o.GetSession(ctx, sessionID, patientID)
	if err != nil {
		return nil, err
	}
	if err := requireStage(session, models.StageTherapeuticMedia, models.StagePostAssessment); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	stampResponses(responses, now)

	answered := o.resolveResponses(ctx, models.StagePost, responses)
	diagnosis := o.engine.Diagnose(answered, behaviorFromWatches(session.TherapeuticMedia))
	metrics.RecordDiagnosis("post", diagnosis.Emotion.String())

	var pre *models.AssessedEmotion
	if session.PreAssessment != nil {
		pre = session.PreAssessment.AssessedEmotion
	}
	improvement := o.engine.EvaluateImprovement(pre, diagnosis.ToAssessedEmotion())
	metrics.ImprovementScore.Observe(float64(improvement.Score))

	session.PostAssessment = &models.AssessmentBlock{
		Responses:        responses,
		CompletedAt:      &now,
		AssessedEmotion:  diagnosis.ToAssessedEmotion(),
		Improvement:      improvement.Type,
		ImprovementScore: improvement.Score,
	}
	session.DurationSeconds = int(now.Sub(session.StartedAt).Seconds())

	genuineness := o.engine.AssessGenuineness(session)
	metrics.RecordGenuineness(genuineness.IsGenuine, genuineness.Score)

	session.Genuineness = genuineness.ToBlock()
	session.Stage = models.StageCompleted
	session.Status = models.StatusCompleted
	session.CompletedAt = &now

	if err := o.update(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsCompleted.Inc()
	logging.Ctx(ctx).Info().
		Str("session_id", session.ID).
		Str("emotion", diagnosis.Emotion.String()).
		Str("improvement", string(improvement.Type)).
		Int("improvement_score", improvement.Score).
		Float64("genuineness", genuineness.Score).
		Bool("genuine", genuineness.IsGenuine).
		Msg("session completed")

	return &PostAssessmentResult{
		Session:     session,
		Diagnosis:   diagnosis,
		Improvement: improvement,
		Genuineness: genuineness,
	}, nil
}

// AbandonSession marks an in-progress session abandoned. Terminal, no
// rollback; an abandoned session simply stops being advanced.
func (o *Orchestrator) AbandonSession(ctx context.Context, sessionID, patientID string) (*models.Session, error) {
	session, err := o.GetSession(ctx, sessionID, patientID)
	if err != nil {
		return nil, err
	}
	if session.IsTerminal() {
		return nil, fmt.Errorf("session %s already %s: %w", session.ID, session.Status, ErrStageOutOfOrder)
	}

	now := o.now().UTC()
	session.Status = models.StatusAbandoned
	session.CompletedAt = &now
	session.DurationSeconds = int(now.Sub(session.StartedAt).Seconds())

	if err := o.update(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsAbandoned.Inc()
	logging.Ctx(ctx).Info().Str("session_id", session.ID).Msg("session abandoned")
	return session, nil
}

// RefreshCatalog loads the active catalog from the store and swaps it into
// the engine. Called at startup and after catalog writes.
func (o *Orchestrator) RefreshCatalog(ctx context.Context) error {
	items, err := o.store.Catalog().Active(ctx)
	if err != nil {
		return fmt.Errorf("load active catalog: %w", err)
	}
	o.engine.Reload(items)
	metrics.CatalogSize.Set(float64(len(items)))
	return nil
}

// update persists the session with its optimistic version check, counting
// conflicts.
func (o *Orchestrator) update(ctx context.Context, session *models.Session) error {
	err := o.store.Sessions().Update(ctx, session, session.Version)
	if errors.Is(err, store.ErrVersionConflict) {
		metrics.SessionStageConflicts.Inc()
		return err
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// resolveResponses pairs each response with its question bank entry. A
// response referencing an unknown question keeps a zero Question and
// contributes nothing to diagnosis.
func (o *Orchestrator) resolveResponses(ctx context.Context, stage models.QuestionStage, responses []models.Response) []engine.AnsweredQuestion {
	questions, err := o.store.Questions().ByStage(ctx, stage)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("stage", string(stage)).Msg("question bank read failed")
	}
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	answered := make([]engine.AnsweredQuestion, 0, len(responses))
	for _, r := range responses {
		answered = append(answered, engine.AnsweredQuestion{
			Question:       byID[r.QuestionID],
			SelectedOption: r.SelectedOption,
		})
	}
	return answered
}

// collaborative gathers the patient's completed history and the global pool
// and asks the engine for peer-proven media. Sparse data degrades to nil.
func (o *Orchestrator) collaborative(ctx context.Context, patientID string) []string {
	history, _, err := o.store.Sessions().ListByPatient(ctx, patientID, store.SessionFilter{Status: models.StatusCompleted}, 1, maxHistoryLimit)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("history read failed, skipping collaborative filtering")
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	all, err := o.store.Sessions().ListCompleted(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("session pool read failed, skipping collaborative filtering")
		return nil
	}

	ids := o.engine.CollaborativeRecommend(patientID, history, all)
	metrics.RecordRecommendations("collaborative", len(ids))
	return ids
}

// recommendedReason reconstructs the selection reason for a watched media
// item that was part of the session's recommendation set.
func (o *Orchestrator) recommendedReason(session *models.Session, mediaID string) string {
	recommended := false
	for _, id := range session.RecommendedMedia {
		if id == mediaID {
			recommended = true
			break
		}
	}
	if !recommended || session.PreAssessment == nil || session.PreAssessment.AssessedEmotion == nil {
		return ""
	}

	diagnosed := session.PreAssessment.AssessedEmotion.Overall
	target := o.engine.Profiles().Opposite(diagnosed)
	if !target.IsValid() {
		target = emotion.StaticOpposite(diagnosed)
	}
	return fmt.Sprintf("recommended to counter %s (targets %s)", diagnosed, target)
}

// requireStage rejects operations against sessions outside the allowed
// stages or already terminal.
func requireStage(session *models.Session, allowed ...models.SessionStage) error {
	if session.IsTerminal() {
		return fmt.Errorf("session %s is %s: %w", session.ID, session.Status, ErrStageOutOfOrder)
	}
	for _, stage := range allowed {
		if session.Stage == stage {
			return nil
		}
	}
	return fmt.Errorf("session %s is in stage %s: %w", session.ID, session.Stage, ErrStageOutOfOrder)
}

// stampResponses fills missing response timestamps.
func stampResponses(responses []models.Response, now time.Time) {
	for i := range responses {
		if responses[i].Timestamp.IsZero() {
			responses[i].Timestamp = now
		}
	}
}

// behaviorFromWatches reduces a watch list to the telemetry shape the
// diagnosis engine consumes.
func behaviorFromWatches(watches []models.MediaWatch) engine.MediaBehavior {
	b := engine.MediaBehavior{MediaCount: len(watches)}
	for _, w := range watches {
		b.WatchedDuration += w.WatchedDuration
		if w.CompletionRate > 0 {
			// Back out the content length from the self-reported completion.
			b.TotalDuration += int(float64(w.WatchedDuration) / (w.CompletionRate / 100))
		}
	}
	return b
}
