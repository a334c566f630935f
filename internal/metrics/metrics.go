// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package metrics exposes Prometheus instrumentation for the recommendation
// service: catalog client traffic, circuit breaker state, enrichment
// degradation, and recommendation strategy selection.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog client metrics

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CatalogRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_request_errors_total",
			Help: "Total number of failed catalog provider API calls",
		},
		[]string{"endpoint", "reason"}, // reason: http_error, not_found, decode, auth
	)

	CatalogTokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_token_refreshes_total",
			Help: "Total number of access token refreshes against the auth endpoint",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by outcome",
		},
		[]string{"name", "outcome"}, // outcome: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Enrichment metrics

	EnrichmentLookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_lookup_failures_total",
			Help: "Individual catalog lookup failures absorbed during enrichment",
		},
		[]string{"stage"}, // stage: album, artists, audio_features
	)

	// Recommendation metrics

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total recommendation computations by chosen strategy",
		},
		[]string{"strategy"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Wall-clock duration of recommendation computations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"strategy"},
	)

	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
