// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package store

import (
	"context"
	"sync"
)

// Memory is an in-memory Reader used in tests and in mock-data mode.
type Memory struct {
	mu      sync.RWMutex
	saved   map[string][]string
	reviews map[string][]Review
}

var _ Reader = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		saved:   make(map[string][]string),
		reviews: make(map[string][]Review),
	}
}

// AddSaved appends album IDs to a user's library.
func (m *Memory) AddSaved(userID string, albumIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[userID] = append(m.saved[userID], albumIDs...)
}

// AddReview appends a review for a user. rating < 1 stores an unrated review.
func (m *Memory) AddReview(userID, albumID string, rating int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := Review{AlbumID: albumID}
	if rating >= 1 {
		r.Rating = &rating
	}
	m.reviews[userID] = append(m.reviews[userID], r)
}

// SavedAlbumIDs implements Reader.
func (m *Memory) SavedAlbumIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.saved[userID]))
	copy(out, m.saved[userID])
	return out, nil
}

// Reviews implements Reader.
func (m *Memory) Reviews(_ context.Context, userID string) ([]Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Review, len(m.reviews[userID]))
	copy(out, m.reviews[userID])
	return out, nil
}
