// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package taste converts a user's raw interaction history (saved albums and
// written reviews) into a weighted preference profile: ranked genres, ranked
// artists, and an averaged audio-characteristic vector.
//
// All types here are request-scoped value objects. They are created at the
// start of a profile computation and discarded at the end; nothing in this
// package persists or caches anything.
package taste

import "github.com/resonata-fm/resonata/internal/catalog"

// AlbumSignal is a weighted indication that a user engaged with an album.
// Weight encodes source strength: a plain library save weighs 1.0, a review
// weighs 1.5 plus up to 1.0 of rating bonus.
type AlbumSignal struct {
	AlbumID string
	Weight  float64
}

// SignalSources records which albums came from which source. Used only for
// recommendation rationales, never for scoring.
type SignalSources struct {
	FromLibrary map[string]struct{}
	FromReviews map[string]struct{}
}

// NewSignalSources returns an empty provenance record.
func NewSignalSources() SignalSources {
	return SignalSources{
		FromLibrary: make(map[string]struct{}),
		FromReviews: make(map[string]struct{}),
	}
}

// Artist identifies an artist on an enriched album. ID may be empty for
// artists the provider exposes by name only.
type Artist struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// AudioFeatures is the seven-characteristic audio vector for an album,
// sourced from its first track.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
}

// AlbumWithFeatures is an album with the metadata the aggregator scores on.
// Genres holds lower-cased, deduplicated genre tags in first-seen order.
// AudioFeatures is nil when the per-track lookup failed, so downstream
// averaging can exclude the album rather than counting zeroes.
type AlbumWithFeatures struct {
	AlbumID       string
	AlbumName     string
	Artists       []Artist
	Genres        []string
	ImageURL      string
	ExternalURL   string
	AudioFeatures *AudioFeatures
}

// GenreScore is a scored genre entry in a profile.
type GenreScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ArtistScore is a scored artist entry in a profile.
type ArtistScore struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// AudioProfile is the weighted average of each audio characteristic across
// the albums that had audio data. A nil field means no album contributed.
type AudioProfile struct {
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Valence          *float64 `json:"valence"`
	Tempo            *float64 `json:"tempo"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Speechiness      *float64 `json:"speechiness"`
}

// SourceCounts summarizes how many albums fed a profile and where they came
// from.
type SourceCounts struct {
	TotalAlbumsConsidered int `json:"totalAlbumsConsidered"`
	FromLibrary           int `json:"fromLibrary"`
	FromReviews           int `json:"fromReviews"`
}

// UserTasteProfile is the aggregated, scored summary of a user's taste.
// Immutable once returned; computed fresh per request. Rationale is the
// human-readable summary built from the top genre and artist; empty when the
// profile has neither, and omitted from JSON in that case.
type UserTasteProfile struct {
	UserID       string        `json:"userId"`
	TopGenres    []GenreScore  `json:"topGenres"`
	TopArtists   []ArtistScore `json:"topArtists"`
	AudioProfile AudioProfile  `json:"audioProfile"`
	SourceCounts SourceCounts  `json:"sourceCounts"`
	Rationale    string        `json:"rationale,omitempty"`
}

// featuresFromCatalog converts the provider's wire type into the domain type.
func featuresFromCatalog(f *catalog.AudioFeatures) *AudioFeatures {
	if f == nil {
		return nil
	}
	return &AudioFeatures{
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Speechiness:      f.Speechiness,
	}
}
