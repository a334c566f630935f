// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package api provides the HTTP surface of the recommendation engine: Chi
// routing, standardized JSON responses, and the small middleware stack the
// endpoints share.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/resonata-fm/resonata/internal/logging"
)

// APIResponse is the response wrapper all endpoints use.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable code alongside the human message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta is per-response metadata for tracing.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}

// Error codes returned by the API.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNoSignals          = "NO_SIGNALS"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeTooManyRequest     = "TOO_MANY_REQUESTS"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time) {
	requestID := logging.RequestIDFromContext(r.Context())
	response := APIResponse{
		Success: status < http.StatusBadRequest,
		Data:    data,
		Meta: &APIMeta{
			RequestID:  requestID,
			Timestamp:  time.Now().UTC(),
			DurationMs: time.Since(start).Milliseconds(),
		},
	}

	writeJSON(w, r, status, &response)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := logging.RequestIDFromContext(r.Context())
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
		Meta: &APIMeta{
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	}

	writeJSON(w, r, status, &response)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
