// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/recommend"
	"github.com/resonata-fm/resonata/internal/taste"
)

const defaultComputeTimeout = 15 * time.Second

// RecommendService is the engine surface the handlers depend on. Satisfied
// by *recommend.Service; narrowed to an interface for handler tests.
type RecommendService interface {
	Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error)
	TasteProfile(ctx context.Context, userID string) (*taste.UserTasteProfile, error)
}

// Handler holds the endpoint implementations.
type Handler struct {
	service RecommendService
	timeout time.Duration
	version string
}

// NewHandler creates the API handler. A non-positive timeout falls back to
// the default per-computation deadline.
func NewHandler(service RecommendService, timeout time.Duration, version string) *Handler {
	if timeout <= 0 {
		timeout = defaultComputeTimeout
	}
	return &Handler{service: service, timeout: timeout, version: version}
}

// recommendationsPayload is the data shape of the recommendations endpoint.
type recommendationsPayload struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	}, start)
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "User ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	recs, err := h.service.Recommendations(ctx, userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("recommendation computation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute recommendations")
		return
	}
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	respondJSON(w, r, http.StatusOK, &recommendationsPayload{
		Recommendations: recs,
		Count:           len(recs),
	}, start)
}

// TasteProfile handles GET /api/v1/users/{userID}/taste-profile.
func (h *Handler) TasteProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "User ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	profile, err := h.service.TasteProfile(ctx, userID)
	if err != nil {
		// No credentials means the catalog is unconfigured, not that the
		// user lacks history; 404 would misreport the condition.
		if errors.Is(err, catalog.ErrMissingCredentials) {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "Catalog provider is not configured")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("taste profile computation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to compute taste profile")
		return
	}
	if profile == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNoSignals, "User has no listening history to profile")
		return
	}

	respondJSON(w, r, http.StatusOK, profile, start)
}
