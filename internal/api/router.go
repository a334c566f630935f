// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resonata-fm/resonata/internal/config"
)

// Router assembles the HTTP routes.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates the router from the API config and the engine service.
func NewRouter(service RecommendService, cfg *config.Config, version string) *Router {
	return &Router{
		handler:    NewHandler(service, cfg.Recommend.Timeout, version),
		middleware: NewMiddleware(&cfg.API),
	}
}

// Setup wires the route tree and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health gets a permissive rate limit so monitoring can poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(SecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	// Engine endpoints.
	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(RequestMetrics())
		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/taste-profile", router.handler.TasteProfile)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
