// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package main is the entry point for the Resonata recommendation server.
//
// The server computes per-user taste profiles and album recommendations from
// the review app's stored activity (saved albums and written reviews),
// enriched with metadata from the external music catalog.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Store: read-only DuckDB connection to the app database, or the
//     in-memory mock store when no database path is configured
//  3. Catalog client: rate-limited HTTP client with client-credentials
//     token caching, wrapped in a circuit breaker
//  4. HTTP server: Chi-routed REST API plus Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (e.g. CATALOG_CLIENT_ID, DUCKDB_PATH, HTTP_PORT)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Catalog credentials are optional: without them the profile endpoint
// reports no signals and the recommendation endpoint returns an empty list,
// so the server stays usable in development.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops accepting
// new connections and waits for in-flight requests up to the configured
// shutdown timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resonata-fm/resonata/internal/api"
	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/recommend"
	"github.com/resonata-fm/resonata/internal/store"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Resonata recommendation server")
	logging.Info().
		Bool("catalog_configured", cfg.Catalog.Credentialed()).
		Str("db_path", cfg.Database.Path).
		Msg("Configuration loaded")

	reader, cleanup, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer cleanup()

	catalogClient := catalog.NewClient(&cfg.Catalog)
	breaker := catalog.NewBreaker(catalogClient)

	service := recommend.NewService(reader, breaker, cfg)
	router := api.NewRouter(service, cfg, version)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openStore selects the read store: DuckDB when a database path is
// configured, otherwise the in-memory store (optionally seeded with demo
// data for local development).
func openStore(cfg *config.Config) (store.Reader, func(), error) {
	if cfg.Database.Path != "" {
		db, err := store.OpenDuckDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("path", cfg.Database.Path).Msg("DuckDB store opened read-only")
		return db, func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing database")
			}
		}, nil
	}

	mem := store.NewMemory()
	if cfg.Database.MockData {
		seedMockData(mem)
		logging.Info().Msg("In-memory store seeded with demo data (DATABASE_MOCK_DATA=true)")
	} else {
		logging.Info().Msg("No database path configured, using empty in-memory store")
	}
	return mem, func() {}, nil
}

// seedMockData loads a small demo history so the endpoints return something
// meaningful without the app database. Album IDs are real catalog IDs.
func seedMockData(mem *store.Memory) {
	mem.AddSaved("demo",
		"4LH4d3cOWNNsVw41Gqt2kv", // The Dark Side of the Moon
		"2guirTSEqLizK7j9i1MTTZ", // Nevermind
	)
	mem.AddReview("demo", "6dVIqQ8qmQ5GBnJ9shOYGE", 5) // OK Computer
	mem.AddReview("demo", "2fenSS68JI1h4Fo296JfGr", 4) // In Rainbows
}
