// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import "sort"

// topEntryLimit caps the ranked genre and artist lists in a profile.
const topEntryLimit = 10

// BuildProfile combines enriched albums with their aggregated weights into a
// single taste profile.
//
// Scoring: an album contributes its full weight to every one of its genres
// and every one of its artists; multi-genre albums are not down-weighted per
// genre. Artists are keyed by ID when present, by name otherwise. The audio
// profile is a weighted average restricted to albums that had audio data.
//
// Ranked lists are sorted descending by score with ties broken by insertion
// order (stable sort), then truncated to 10 entries.
func BuildProfile(userID string, albums []AlbumWithFeatures, weights map[string]float64, counts SourceCounts) *UserTasteProfile {
	genreScores := make(map[string]float64)
	var genreOrder []string

	type artistEntry struct {
		id    string
		name  string
		score float64
	}
	artistScores := make(map[string]*artistEntry)
	var artistOrder []string

	var (
		featureSums [7]float64
		audioWeight float64
	)

	for i := range albums {
		album := &albums[i]
		weight := weights[album.AlbumID]

		for _, genre := range album.Genres {
			if _, seen := genreScores[genre]; !seen {
				genreOrder = append(genreOrder, genre)
			}
			genreScores[genre] += weight
		}

		for _, artist := range album.Artists {
			key := artist.ID
			if key == "" {
				key = artist.Name
			}
			if key == "" {
				continue
			}
			entry, seen := artistScores[key]
			if !seen {
				entry = &artistEntry{id: artist.ID, name: artist.Name}
				artistScores[key] = entry
				artistOrder = append(artistOrder, key)
			}
			entry.score += weight
		}

		if f := album.AudioFeatures; f != nil {
			featureSums[0] += f.Danceability * weight
			featureSums[1] += f.Energy * weight
			featureSums[2] += f.Valence * weight
			featureSums[3] += f.Tempo * weight
			featureSums[4] += f.Acousticness * weight
			featureSums[5] += f.Instrumentalness * weight
			featureSums[6] += f.Speechiness * weight
			audioWeight += weight
		}
	}

	topGenres := make([]GenreScore, 0, len(genreOrder))
	for _, name := range genreOrder {
		topGenres = append(topGenres, GenreScore{Name: name, Score: genreScores[name]})
	}
	sort.SliceStable(topGenres, func(i, j int) bool {
		return topGenres[i].Score > topGenres[j].Score
	})
	if len(topGenres) > topEntryLimit {
		topGenres = topGenres[:topEntryLimit]
	}

	topArtists := make([]ArtistScore, 0, len(artistOrder))
	for _, key := range artistOrder {
		entry := artistScores[key]
		topArtists = append(topArtists, ArtistScore{ID: entry.id, Name: entry.name, Score: entry.score})
	}
	sort.SliceStable(topArtists, func(i, j int) bool {
		return topArtists[i].Score > topArtists[j].Score
	})
	if len(topArtists) > topEntryLimit {
		topArtists = topArtists[:topEntryLimit]
	}

	var audio AudioProfile
	if audioWeight > 0 {
		avg := func(sum float64) *float64 {
			v := sum / audioWeight
			return &v
		}
		audio = AudioProfile{
			Danceability:     avg(featureSums[0]),
			Energy:           avg(featureSums[1]),
			Valence:          avg(featureSums[2]),
			Tempo:            avg(featureSums[3]),
			Acousticness:     avg(featureSums[4]),
			Instrumentalness: avg(featureSums[5]),
			Speechiness:      avg(featureSums[6]),
		}
	}

	profile := &UserTasteProfile{
		UserID:       userID,
		TopGenres:    topGenres,
		TopArtists:   topArtists,
		AudioProfile: audio,
		SourceCounts: counts,
	}
	profile.Rationale = Rationale(profile)
	return profile
}
