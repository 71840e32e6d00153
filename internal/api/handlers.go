// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

// Package api exposes the Emotive session protocol over HTTP. All endpoints
// speak the models.APIResponse envelope; session endpoints derive the patient
// identity from the authentication middleware, never from the request body.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/emotive/internal/auth"
	"github.com/careloop/emotive/internal/config"
	"github.com/careloop/emotive/internal/emotion"
	"github.com/careloop/emotive/internal/engine"
	"github.com/careloop/emotive/internal/models"
	"github.com/careloop/emotive/internal/orchestrator"
	"github.com/careloop/emotive/internal/store"
)

// Handler carries the dependencies of every endpoint.
type Handler struct {
	orch      *orchestrator.Orchestrator
	store     store.Store
	cfg       *config.Config
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(orch *orchestrator.Orchestrator, st store.Store, cfg *config.Config) *Handler {
	return &Handler{
		orch:      orch,
		store:     st,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

type startSessionRequest struct {
	SessionType string `json:"session_type" validate:"omitempty,oneof=daily_check scheduled on_demand"`
}

// StartSession creates a new session for the authenticated patient.
//
// POST /api/v1/sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
			return
		}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	sessionType := models.SessionType(req.SessionType)
	if sessionType == "" {
		sessionType = models.SessionOnDemand
	}

	session, err := h.orch.StartSession(r.Context(), auth.PatientIDFromContext(r.Context()), sessionType)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, session)
}

// GetSession returns one of the patient's sessions.
//
// GET /api/v1/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.GetSession(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

// sessionHistory is the ListSessions response payload.
type sessionHistory struct {
	Sessions   []models.Session  `json:"sessions"`
	Pagination models.Pagination `json:"pagination"`
}

// listSessionsQuery carries the history filter query parameters.
type listSessionsQuery struct {
	Status  string `validate:"omitempty,oneof=in_progress completed abandoned"`
	Stage   string `validate:"omitempty,session_stage"`
	Emotion string `validate:"omitempty,emotion"`
}

// ListSessions returns the authenticated patient's session history, newest
// first. Supports status, stage, emotion, page, and limit query parameters.
//
// GET /api/v1/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	query := listSessionsQuery{
		Status:  r.URL.Query().Get("status"),
		Stage:   r.URL.Query().Get("stage"),
		Emotion: r.URL.Query().Get("emotion"),
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	filter := store.SessionFilter{
		Status:  models.SessionStatus(query.Status),
		Stage:   models.SessionStage(query.Stage),
		Emotion: emotion.Emotion(query.Emotion),
	}

	page := getIntParam(r, "page", 1)
	limit := getIntParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	sessions, total, err := h.orch.ListHistory(r.Context(), auth.PatientIDFromContext(r.Context()), filter, page, limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	respondJSON(w, r, http.StatusOK, sessionHistory{
		Sessions: sessions,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}

// AbandonSession marks a session abandoned.
//
// POST /api/v1/sessions/{sessionID}/abandon
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.orch.AbandonSession(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

type watchRequest struct {
	MediaID         string  `json:"media_id" validate:"required"`
	WatchedDuration int     `json:"watched_duration" validate:"gte=0"`
	CompletionRate  float64 `json:"completion_rate" validate:"gte=0,lte=100"`
}

func (h *Handler) decodeWatch(w http.ResponseWriter, r *http.Request) (models.MediaWatch, bool) {
	var req watchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
		return models.MediaWatch{}, false
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return models.MediaWatch{}, false
	}

	return models.MediaWatch{
		MediaID:         req.MediaID,
		WatchedDuration: req.WatchedDuration,
		CompletionRate:  req.CompletionRate,
	}, true
}

// RecordInitialWatch records a watch of initial-stage media.
//
// POST /api/v1/sessions/{sessionID}/initial-watch
func (h *Handler) RecordInitialWatch(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.decodeWatch(w, r)
	if !ok {
		return
	}

	session, err := h.orch.RecordInitialWatch(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()), watch)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

// RecordTherapeuticWatch records a watch of recommended therapeutic media.
//
// POST /api/v1/sessions/{sessionID}/therapeutic-watch
func (h *Handler) RecordTherapeuticWatch(w http.ResponseWriter, r *http.Request) {
	watch, ok := h.decodeWatch(w, r)
	if !ok {
		return
	}

	session, err := h.orch.RecordTherapeuticWatch(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()), watch)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}

type responseItem struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedOption string `json:"selected_option" validate:"required"`
	Answer         string `json:"answer"`
}

type assessmentRequest struct {
	Responses []responseItem `json:"responses" validate:"required,min=1,dive"`
}

func (h *Handler) decodeAssessment(w http.ResponseWriter, r *http.Request) ([]models.Response, bool) {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON", nil)
		return nil, false
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return nil, false
	}

	now := time.Now().UTC()
	responses := make([]models.Response, len(req.Responses))
	for i, item := range req.Responses {
		responses[i] = models.Response{
			QuestionID:     item.QuestionID,
			SelectedOption: item.SelectedOption,
			Answer:         item.Answer,
			Timestamp:      now,
		}
	}
	return responses, true
}

// preAssessmentResponse is the SubmitPreAssessment payload: the diagnosis
// plus the recommended therapeutic shortlist.
type preAssessmentResponse struct {
	Session       *models.Session        `json:"session"`
	Diagnosis     engine.DiagnosisResult `json:"diagnosis"`
	Recommended   []engine.ScoredMedia   `json:"recommended"`
	Collaborative []string               `json:"collaborative,omitempty"`
}

// SubmitPreAssessment submits pre-assessment responses and returns the
// diagnosis with therapeutic recommendations.
//
// POST /api/v1/sessions/{sessionID}/pre-assessment
func (h *Handler) SubmitPreAssessment(w http.ResponseWriter, r *http.Request) {
	responses, ok := h.decodeAssessment(w, r)
	if !ok {
		return
	}

	result, err := h.orch.SubmitPreAssessment(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()), responses)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, preAssessmentResponse{
		Session:       result.Session,
		Diagnosis:     result.Diagnosis,
		Recommended:   result.Recommended,
		Collaborative: result.Collaborative,
	})
}

// postAssessmentResponse is the SubmitPostAssessment payload: the post
// diagnosis, improvement classification, and genuineness verdict.
type postAssessmentResponse struct {
	Session     *models.Session          `json:"session"`
	Diagnosis   engine.DiagnosisResult   `json:"diagnosis"`
	Improvement engine.Improvement       `json:"improvement"`
	Genuineness engine.GenuinenessResult `json:"genuineness"`
}

// SubmitPostAssessment submits post-assessment responses and completes the
// session.
//
// POST /api/v1/sessions/{sessionID}/post-assessment
func (h *Handler) SubmitPostAssessment(w http.ResponseWriter, r *http.Request) {
	responses, ok := h.decodeAssessment(w, r)
	if !ok {
		return
	}

	result, err := h.orch.SubmitPostAssessment(r.Context(),
		chi.URLParam(r, "sessionID"), auth.PatientIDFromContext(r.Context()), responses)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, postAssessmentResponse{
		Session:     result.Session,
		Diagnosis:   result.Diagnosis,
		Improvement: result.Improvement,
		Genuineness: result.Genuineness,
	})
}
