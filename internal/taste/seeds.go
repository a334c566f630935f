// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import "fmt"

// SeedArtists returns up to limit seed artist IDs from a profile, in score
// order. Artists without a known provider ID are skipped: they cannot seed
// related-artist expansion.
func SeedArtists(p *UserTasteProfile, limit int) []string {
	if p == nil || limit < 1 {
		return nil
	}
	seeds := make([]string, 0, limit)
	for _, artist := range p.TopArtists {
		if artist.ID == "" {
			continue
		}
		seeds = append(seeds, artist.ID)
		if len(seeds) == limit {
			break
		}
	}
	return seeds
}

// Rationale builds the human-readable explanation for a profile's
// recommendations: "Based on your love for jazz music and artists like John
// Coltrane". Returns "" when the profile has neither genres nor artists.
func Rationale(p *UserTasteProfile) string {
	if p == nil {
		return ""
	}

	var clauses []string
	if len(p.TopGenres) > 0 {
		clauses = append(clauses, fmt.Sprintf("your love for %s music", p.TopGenres[0].Name))
	}
	if len(p.TopArtists) > 0 {
		clauses = append(clauses, fmt.Sprintf("artists like %s", p.TopArtists[0].Name))
	}
	if len(clauses) == 0 {
		return ""
	}

	rationale := "Based on " + clauses[0]
	for _, clause := range clauses[1:] {
		rationale += " and " + clause
	}
	return rationale
}
