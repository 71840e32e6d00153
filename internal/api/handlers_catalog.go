// Emotive - Emotion-Adaptive Media Recommendation and Assessment Engine
// Copyright 2026 Careloop Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/careloop/emotive

package api

import (
	"net/http"

	"github.com/careloop/emotive/internal/models"
)

// Questions returns the active questionnaire for a stage, in display order.
//
// GET /api/v1/questions?stage=pre|post
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	stage := models.QuestionStage(r.URL.Query().Get("stage"))
	switch stage {
	case models.StagePre, models.StagePost:
	default:
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"stage must be pre or post", nil)
		return
	}

	questions, err := h.store.Questions().ByStage(r.Context(), stage)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, questions)
}

// InitialMedia returns the active initial-stage catalog.
//
// GET /api/v1/media/initial
func (h *Handler) InitialMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.Catalog().ActiveByType(r.Context(), models.ContentInitial)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, items)
}
