// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careloop/emotive/internal/auth"
	"github.com/careloop/emotive/internal/config"
	"github.com/careloop/emotive/internal/middleware"
)

// NewRouter wires the full HTTP surface: health, metrics, and the
// authenticated session API. Session mutations carry a stricter rate limit
// than reads because each one writes a session version.
func NewRouter(h *Handler, authMW *auth.Middleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Compress(5, "application/json"))

	if len(cfg.API.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.API.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Patient-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints stay unauthenticated and generously rate limited so
	// orchestration probes never starve.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, cfg.API.RateWindow))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.API.RateLimit > 0 {
			r.Use(httprate.Limit(cfg.API.RateLimit, cfg.API.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Use(middleware.PrometheusMetrics)
		r.Use(authMW.Authenticate)

		r.Get("/questions", h.Questions)
		r.Get("/media/initial", h.InitialMedia)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.StartSession)
			r.Get("/", h.ListSessions)
			r.Get("/{sessionID}", h.GetSession)
			r.Post("/{sessionID}/abandon", h.AbandonSession)
			r.Post("/{sessionID}/initial-watch", h.RecordInitialWatch)
			r.Post("/{sessionID}/therapeutic-watch", h.RecordTherapeuticWatch)
			r.Post("/{sessionID}/pre-assessment", h.SubmitPreAssessment)
			r.Post("/{sessionID}/post-assessment", h.SubmitPostAssessment)
		})
	})

	return r
}
