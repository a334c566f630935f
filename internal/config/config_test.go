// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Catalog.BaseURL = "" },
			wantErr: "catalog.base_url",
		},
		{
			name:    "client ID without secret",
			mutate:  func(c *Config) { c.Catalog.ClientID = "abc" },
			wantErr: "must be set together",
		},
		{
			name:    "bad country code",
			mutate:  func(c *Config) { c.Catalog.Country = "USA" },
			wantErr: "catalog.country",
		},
		{
			name:    "zero max albums",
			mutate:  func(c *Config) { c.Recommend.MaxAlbums = 0 },
			wantErr: "recommend.max_albums",
		},
		{
			name:    "zero enrich workers",
			mutate:  func(c *Config) { c.Recommend.EnrichWorkers = 0 },
			wantErr: "recommend.enrich_workers",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Recommend.Timeout = -time.Second },
			wantErr: "recommend.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialed(t *testing.T) {
	c := CatalogConfig{}
	if c.Credentialed() {
		t.Error("empty credentials should not be credentialed")
	}
	c.ClientID = "id"
	c.ClientSecret = "secret"
	if !c.Credentialed() {
		t.Error("full credential pair should be credentialed")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"CATALOG_CLIENT_ID", "catalog.client_id"},
		{"CATALOG_CLIENT_SECRET", "catalog.client_secret"},
		{"DUCKDB_PATH", "database.path"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"RECOMMEND_MAX_ALBUMS", "recommend.max_albums"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 9090\ncatalog:\n  country: DE\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("CATALOG_COUNTRY", "SE") // env beats file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("file value not applied: port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Catalog.Country != "SE" {
		t.Errorf("env override not applied: country = %q, want SE", cfg.Catalog.Country)
	}
	// Untouched defaults survive layering.
	if cfg.Recommend.MaxAlbums != 25 {
		t.Errorf("default not preserved: max_albums = %d, want 25", cfg.Recommend.MaxAlbums)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got := cfg.API.CORSOrigins
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("cors_origins = %v, want two trimmed origins", got)
	}
}
