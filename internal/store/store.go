// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package store provides read-only access to a user's listening history: the
// albums saved to their library and the reviews they have written. The
// recommendation engine consumes this data through the Reader interface;
// durability belongs to the wider review/library application, not here.
package store

import "context"

// Review is a user's review of an album. Rating is 1-5 when present; nil
// means the review carried no numeric rating.
type Review struct {
	AlbumID string
	Rating  *int
}

// Reader is the storage read interface the engine depends on. Both methods
// are idempotent and side-effect free. An unknown user yields empty slices,
// not an error.
type Reader interface {
	// SavedAlbumIDs returns the album IDs in the user's library, in save
	// order.
	SavedAlbumIDs(ctx context.Context, userID string) ([]string, error)

	// Reviews returns the user's reviews, in creation order.
	Reviews(ctx context.Context, userID string) ([]Review, error)
}
