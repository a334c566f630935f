// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver

	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
)

// DuckDB reads library saves and reviews from the application's DuckDB file.
// The engine only ever reads, so the connection is opened read-only and no
// schema management happens here.
type DuckDB struct {
	db *sql.DB
}

var _ Reader = (*DuckDB)(nil)

// OpenDuckDB opens the database at cfg.Path for reading.
func OpenDuckDB(cfg *config.DatabaseConfig) (*DuckDB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if _, err := os.Stat(filepath.Clean(cfg.Path)); err != nil {
		return nil, fmt.Errorf("database file not accessible: %w", err)
	}

	connStr := fmt.Sprintf("%s?access_mode=read_only&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("opened review/library store")
	return &DuckDB{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *DuckDB) Close() error {
	return s.db.Close()
}

// Ping verifies the connection.
func (s *DuckDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SavedAlbumIDs implements Reader.
func (s *DuckDB) SavedAlbumIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT album_id FROM library_albums WHERE user_id = ? ORDER BY saved_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query library albums: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan library album: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library album iteration failed: %w", err)
	}
	return ids, nil
}

// Reviews implements Reader.
func (s *DuckDB) Reviews(ctx context.Context, userID string) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT album_id, rating FROM reviews WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		var rating sql.NullInt64
		if err := rows.Scan(&r.AlbumID, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			r.Rating = &v
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("review iteration failed: %w", err)
	}
	return reviews, nil
}
