// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package config provides centralized configuration for Resonata's
// recommendation service.
//
// Configuration is layered (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//	client := catalog.NewClient(&cfg.Catalog)
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CatalogConfig holds settings for the external music catalog provider.
// ClientID and ClientSecret are the client-credentials pair used for token
// acquisition. Leaving them empty disables catalog access: profile and
// recommendation endpoints then degrade as described in the recommend package.
type CatalogConfig struct {
	BaseURL      string        `koanf:"base_url"`
	AuthURL      string        `koanf:"auth_url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	Country      string        `koanf:"country"`
	Timeout      time.Duration `koanf:"timeout"`

	// RatePerSecond / RateBurst bound outbound request rate to respect the
	// provider's limits. Zero disables client-side limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	RateBurst     int     `koanf:"rate_burst"`
}

// Credentialed reports whether a usable credential pair is configured.
func (c *CatalogConfig) Credentialed() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DatabaseConfig holds DuckDB settings for the review/library read store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty selects the in-memory mock
	// store, useful for local development without app data.
	Path     string `koanf:"path"`
	MockData bool   `koanf:"mock_data"`
}

// RecommendConfig tunes the taste-profile and recommendation engine.
type RecommendConfig struct {
	// MaxAlbums caps how many albums are enriched per profile computation.
	MaxAlbums int `koanf:"max_albums"`

	// MaxResults caps the recommendation list length.
	MaxResults int `koanf:"max_results"`

	// EnrichWorkers bounds concurrent catalog lookups during enrichment.
	EnrichWorkers int `koanf:"enrich_workers"`

	// SeedLimit caps seed artists taken from a profile.
	SeedLimit int `koanf:"seed_limit"`

	// RelatedPerSeed caps related artists fetched per seed artist.
	RelatedPerSeed int `koanf:"related_per_seed"`

	// AlbumsPerRelated caps recent albums fetched per related artist.
	AlbumsPerRelated int `koanf:"albums_per_related"`

	// NewReleaseLimit is the size of the cold-start new-releases fetch.
	NewReleaseLimit int `koanf:"new_release_limit"`

	// Timeout is the per-request deadline for a full computation.
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values. It returns the first
// problem found. Missing catalog credentials are not an error here: that
// condition is handled at the engine boundary so the service can still start
// and serve degraded responses.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must not be empty")
	}
	if c.Catalog.AuthURL == "" {
		return fmt.Errorf("catalog.auth_url must not be empty")
	}
	if (c.Catalog.ClientID == "") != (c.Catalog.ClientSecret == "") {
		return fmt.Errorf("catalog.client_id and catalog.client_secret must be set together")
	}
	if len(c.Catalog.Country) != 0 && len(c.Catalog.Country) != 2 {
		return fmt.Errorf("catalog.country must be a 2-letter ISO code, got %q", c.Catalog.Country)
	}
	if c.Recommend.MaxAlbums < 1 {
		return fmt.Errorf("recommend.max_albums must be >= 1, got %d", c.Recommend.MaxAlbums)
	}
	if c.Recommend.MaxResults < 1 {
		return fmt.Errorf("recommend.max_results must be >= 1, got %d", c.Recommend.MaxResults)
	}
	if c.Recommend.EnrichWorkers < 1 {
		return fmt.Errorf("recommend.enrich_workers must be >= 1, got %d", c.Recommend.EnrichWorkers)
	}
	if c.Recommend.Timeout <= 0 {
		return fmt.Errorf("recommend.timeout must be positive, got %s", c.Recommend.Timeout)
	}
	if c.API.RateLimitRequests < 0 {
		return fmt.Errorf("api.rate_limit_requests must be >= 0, got %d", c.API.RateLimitRequests)
	}
	return nil
}
