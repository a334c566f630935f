// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package recommend produces ranked, deduplicated album recommendations from
// a user's taste profile, with explicit fallback strategies for users with
// thin or missing history.
//
// Strategy selection is a pure function (ChooseStrategy) over the shape of
// the available data, so the decision logic is unit-testable without any
// fetching:
//
//   - Direct: rank the user's own albums by aggregated signal weight.
//   - Related: expand the user's seed artists through related artists and
//     their recent releases.
//   - ColdStart: serve the catalog's new-release listing.
//
// Every strategy deduplicates by album ID with first-write-wins reasons and
// caps its output; missing catalog credentials degrade to an empty list
// instead of an error.
package recommend

import "github.com/resonata-fm/resonata/internal/taste"

// Recommendation is one entry of the final recommendation list. Reason is a
// short explanation tied to whichever source contributed the album.
type Recommendation struct {
	AlbumID    string         `json:"albumId"`
	Name       string         `json:"name"`
	Artists    []taste.Artist `json:"artists"`
	ImageURL   string         `json:"imageUrl,omitempty"`
	SpotifyURL string         `json:"spotifyUrl,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

// Recommendation reasons. Kept as constants so tests and handlers never
// drift from the user-facing copy.
const (
	ReasonReviewed  = "Based on your review of this album"
	ReasonSaved     = "Because you saved this to your library"
	ReasonActivity  = "Based on your past activity"
	ReasonColdStart = "Starter picks based on what's new right now"
)

// dedupList accumulates recommendations keyed by album ID, preserving
// first-seen order and first-written reason. Dedup by map rather than slice
// scan keeps merging O(n) across seeds.
type dedupList struct {
	order []string
	byID  map[string]Recommendation
}

func newDedupList(capacity int) *dedupList {
	return &dedupList{
		order: make([]string, 0, capacity),
		byID:  make(map[string]Recommendation, capacity),
	}
}

// add inserts rec unless its album ID was already seen; the first write wins.
func (d *dedupList) add(rec Recommendation) {
	if rec.AlbumID == "" {
		return
	}
	if _, seen := d.byID[rec.AlbumID]; seen {
		return
	}
	d.byID[rec.AlbumID] = rec
	d.order = append(d.order, rec.AlbumID)
}

func (d *dedupList) len() int {
	return len(d.order)
}

// items returns up to limit recommendations in first-seen order.
func (d *dedupList) items(limit int) []Recommendation {
	n := len(d.order)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]Recommendation, 0, n)
	for _, id := range d.order[:n] {
		out = append(out, d.byID[id])
	}
	return out
}
