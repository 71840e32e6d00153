// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package api

import (
	"net/http"
	"time"
)

// healthStatus is the health endpoint payload.
type healthStatus struct {
	Status        string  `json:"status"`
	StoreReady    bool    `json:"store_ready"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// HealthLive reports process liveness. It always succeeds while the process
// can serve requests.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, healthStatus{
		Status:        "alive",
		StoreReady:    true,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports readiness: the store must answer a catalog read.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.Catalog().Active(r.Context())
	status := healthStatus{
		Status:        "ready",
		StoreReady:    err == nil,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if err != nil {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, status)
}
