// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/careloop/emotive/internal/logging"
	"github.com/careloop/emotive/internal/models"
)

type contextKey string

// patientIDKey is the context key for the authenticated patient identity.
const patientIDKey contextKey = "patient_id"

// headerPatientID is the trusted-gateway identity header used when JWT
// verification is disabled.
const headerPatientID = "X-Patient-ID"

// ContextWithPatientID stores the authenticated patient ID in the context.
func ContextWithPatientID(ctx context.Context, patientID string) context.Context {
	return context.WithValue(ctx, patientIDKey, patientID)
}

// PatientIDFromContext returns the authenticated patient ID, or "" when the
// request was not authenticated.
func PatientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(patientIDKey).(string); ok {
		return id
	}
	return ""
}

// Middleware authenticates API requests and injects the patient identity
// into the request context.
type Middleware struct {
	manager *Manager
}

// NewMiddleware creates authentication middleware. A nil manager disables
// JWT verification and falls back to the X-Patient-ID header, which is only
// acceptable behind a trusted gateway that sets it.
func NewMiddleware(manager *Manager) *Middleware {
	return &Middleware{manager: manager}
}

// Authenticate wraps a handler, rejecting requests without a valid identity.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		patientID, err := m.identify(r)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("authentication failed")
			unauthorized(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPatientID(r.Context(), patientID)))
	})
}

// identify resolves the patient identity from the request.
func (m *Middleware) identify(r *http.Request) (string, error) {
	if m.manager == nil {
		if id := r.Header.Get(headerPatientID); id != "" {
			return id, nil
		}
		return "", ErrNoCredentials
	}

	tokenStr := extractBearer(r)
	if tokenStr == "" {
		return "", ErrNoCredentials
	}

	claims, err := m.manager.ValidateToken(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.PatientID(), nil
}

// extractBearer returns the bearer token from the Authorization header, or
// "" when absent.
func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// unauthorized writes a 401 in the standard API envelope.
func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	code := "UNAUTHORIZED"
	if errors.Is(err, ErrExpiredCredentials) {
		code = "TOKEN_EXPIRED"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="emotive"`)
	w.WriteHeader(http.StatusUnauthorized)

	resp := models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{
			Code:    code,
			Message: "Authentication required",
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}
