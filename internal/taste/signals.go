// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import (
	"context"
	"fmt"

	"github.com/resonata-fm/resonata/internal/store"
)

// Signal weights. Reviews outweigh plain saves because writing a review is a
// stronger engagement signal than clicking save.
const (
	libraryWeight    = 1.0
	reviewBaseWeight = 1.5
	ratingBonusMax   = 1.0
	ratingScale      = 5.0
)

// Collector turns a user's stored history into weighted album signals.
type Collector struct {
	store store.Reader
}

// NewCollector creates a signal collector over the given store.
func NewCollector(r store.Reader) *Collector {
	return &Collector{store: r}
}

// Collect reads the user's saved albums and reviews and returns one signal
// per record plus a provenance record. A user with no activity yields empty
// signals and no error; only storage failures are returned.
func (c *Collector) Collect(ctx context.Context, userID string) ([]AlbumSignal, SignalSources, error) {
	sources := NewSignalSources()

	saved, err := c.store.SavedAlbumIDs(ctx, userID)
	if err != nil {
		return nil, sources, fmt.Errorf("failed to read library: %w", err)
	}
	reviews, err := c.store.Reviews(ctx, userID)
	if err != nil {
		return nil, sources, fmt.Errorf("failed to read reviews: %w", err)
	}

	signals := make([]AlbumSignal, 0, len(saved)+len(reviews))
	for _, albumID := range saved {
		signals = append(signals, AlbumSignal{AlbumID: albumID, Weight: libraryWeight})
		sources.FromLibrary[albumID] = struct{}{}
	}
	for _, review := range reviews {
		signals = append(signals, AlbumSignal{AlbumID: review.AlbumID, Weight: ReviewWeight(review.Rating)})
		sources.FromReviews[review.AlbumID] = struct{}{}
	}

	return signals, sources, nil
}

// ReviewWeight computes the signal weight of a review: the base weight plus
// a rating bonus of (rating/5)*1.0 when a rating in [1,5] is present. An
// unrated or out-of-range rating contributes the base weight alone.
func ReviewWeight(rating *int) float64 {
	if rating == nil || *rating < 1 || *rating > int(ratingScale) {
		return reviewBaseWeight
	}
	return reviewBaseWeight + (float64(*rating)/ratingScale)*ratingBonusMax
}

// MergeSignals collapses signals into one additive weight per album while
// preserving first-seen order. An album saved and reviewed accumulates
// weight from both entries. The returned order is what downstream caps and
// stable sorts key off, so it must stay deterministic.
func MergeSignals(signals []AlbumSignal) ([]string, map[string]float64) {
	order := make([]string, 0, len(signals))
	weights := make(map[string]float64, len(signals))

	for _, s := range signals {
		if _, seen := weights[s.AlbumID]; !seen {
			order = append(order, s.AlbumID)
		}
		weights[s.AlbumID] += s.Weight
	}
	return order, weights
}
