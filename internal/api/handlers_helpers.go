// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/careloop/emotive/internal/logging"
	"github.com/careloop/emotive/internal/models"
	"github.com/careloop/emotive/internal/orchestrator"
	"github.com/careloop/emotive/internal/store"
	"github.com/careloop/emotive/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log
// injection attacks via forged log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response in the standard envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}
	writeJSON(w, status, resp)
}

// respondError sends an error response in the standard envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]string) {
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Str("code", sanitizeLogValue(code)).Msg("api error")
	}

	resp := &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondDomainError maps store and orchestrator errors to HTTP responses.
// Not-found covers cross-patient access: the API never reveals whether a
// session exists under another patient.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		respondError(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found", nil)
	case errors.Is(err, store.ErrMediaNotFound):
		respondError(w, r, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media item not found", nil)
	case errors.Is(err, store.ErrQuestionNotFound):
		respondError(w, r, http.StatusNotFound, "QUESTION_NOT_FOUND", "Question not found", nil)
	case errors.Is(err, orchestrator.ErrActiveSessionExists):
		respondError(w, r, http.StatusConflict, "ACTIVE_SESSION_EXISTS",
			"An in-progress session already exists for this patient", nil)
	case errors.Is(err, orchestrator.ErrStageOutOfOrder):
		respondError(w, r, http.StatusConflict, "STAGE_OUT_OF_ORDER",
			"Operation is not valid for the session's current stage", nil)
	case errors.Is(err, orchestrator.ErrInitialWatchIncomplete):
		respondError(w, r, http.StatusConflict, "INITIAL_WATCH_INCOMPLETE",
			"All offered initial media must be watched before the pre-assessment", nil)
	case errors.Is(err, store.ErrVersionConflict):
		respondError(w, r, http.StatusConflict, "VERSION_CONFLICT",
			"Session was modified concurrently, retry the request", map[string]string{"retryable": "true"})
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("unhandled domain error")
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// validateRequest validates a struct and converts failures into the API
// error shape.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}

	apiErr := verr.ToAPIError()
	details := make(map[string]string, len(apiErr.Details))
	for k, val := range apiErr.Details {
		details[k] = fmt.Sprintf("%v", val)
	}
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: details,
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
