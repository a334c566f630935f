// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/resonata/config.yaml",
	"/etc/resonata/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:       "https://api.spotify.com/v1",
			AuthURL:       "https://accounts.spotify.com/api/token",
			ClientID:      "",
			ClientSecret:  "",
			Country:       "US",
			Timeout:       10 * time.Second,
			RatePerSecond: 8,
			RateBurst:     8,
		},
		Database: DatabaseConfig{
			Path:     "",
			MockData: false,
		},
		Recommend: RecommendConfig{
			MaxAlbums:        25,
			MaxResults:       12,
			EnrichWorkers:    6,
			SeedLimit:        10,
			RelatedPerSeed:   3,
			AlbumsPerRelated: 5,
			NewReleaseLimit:  20,
			Timeout:          15 * time.Second,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; split known slice fields on commas.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values into slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		if !k.Exists(path) {
			continue
		}
		raw := k.Get(path)
		s, ok := raw.(string)
		if !ok {
			continue // already a slice (file/defaults)
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - CATALOG_CLIENT_ID     -> catalog.client_id
//   - CATALOG_CLIENT_SECRET -> catalog.client_secret
//   - DUCKDB_PATH           -> database.path
//   - HTTP_PORT             -> server.port
//   - LOG_LEVEL             -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"catalog_base_url":        "catalog.base_url",
		"catalog_auth_url":        "catalog.auth_url",
		"catalog_client_id":       "catalog.client_id",
		"catalog_client_secret":   "catalog.client_secret",
		"catalog_country":         "catalog.country",
		"catalog_timeout":         "catalog.timeout",
		"catalog_rate_per_second": "catalog.rate_per_second",
		"catalog_rate_burst":      "catalog.rate_burst",

		"duckdb_path":        "database.path",
		"database_mock_data": "database.mock_data",

		"http_host":               "server.host",
		"http_port":               "server.port",
		"server_read_timeout":     "server.read_timeout",
		"server_write_timeout":    "server.write_timeout",
		"server_shutdown_timeout": "server.shutdown_timeout",

		"recommend_max_albums":         "recommend.max_albums",
		"recommend_max_results":        "recommend.max_results",
		"recommend_enrich_workers":     "recommend.enrich_workers",
		"recommend_seed_limit":         "recommend.seed_limit",
		"recommend_related_per_seed":   "recommend.related_per_seed",
		"recommend_albums_per_related": "recommend.albums_per_related",
		"recommend_new_release_limit":  "recommend.new_release_limit",
		"recommend_timeout":            "recommend.timeout",

		"api_cors_origins":        "api.cors_origins",
		"api_rate_limit_requests": "api.rate_limit_requests",
		"api_rate_limit_window":   "api.rate_limit_window",
		"api_rate_limit_disabled": "api.rate_limit_disabled",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// Unknown env vars are dropped rather than guessed at, so unrelated
	// process environment never leaks into configuration.
	return ""
}
