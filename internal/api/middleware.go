// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/metrics"
)

// healthRateLimit is the permissive per-minute budget for health checks.
const healthRateLimit = 1000

// Middleware builds the shared middleware stack from configuration.
type Middleware struct {
	cfg  *config.APIConfig
	cors func(http.Handler) http.Handler
}

// NewMiddleware creates the middleware factory.
func NewMiddleware(cfg *config.APIConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &Middleware{cfg: cfg, cors: corsHandler}
}

// CORS returns the go-chi/cors handler; must be global so OPTIONS preflight
// requests reach it.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter for the data endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}
	return httprate.Limit(
		m.cfg.RateLimitRequests,
		m.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

// RateLimitHealth returns a permissive limiter for health endpoints so
// monitoring can poll frequently without consuming the data budget.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return passthrough
	}
	return httprate.Limit(
		healthRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rateLimited),
	)
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequest, "Rate limit exceeded")
}

// RequestIDWithLogging attaches a request ID to the context and the logging
// context, honoring a caller-supplied X-Request-ID.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SecurityHeaders adds the standard API security headers. CSP is omitted:
// these endpoints never serve HTML.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestMetrics records per-route duration and status. Uses the Chi route
// pattern rather than the raw path to keep label cardinality bounded.
func RequestMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(pattern, r.Method, strconv.Itoa(ww.Status())).
				Observe(time.Since(start).Seconds())
		})
	}
}
