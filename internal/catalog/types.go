// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package catalog

// Wire types for the catalog provider's JSON API. Field names follow the
// provider's response shapes; only the fields the engine consumes are mapped.

// ArtistRef is the compact artist reference embedded in album objects.
// ID may be empty for provider-local or compilation artists.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a cover art variant.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ExternalURLs holds provider-facing links for an entity.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// TrackRef is the compact track reference embedded in album objects.
type TrackRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TrackPage is the paged track listing inside a full album object.
type TrackPage struct {
	Items []TrackRef `json:"items"`
}

// Album is a full album object as returned by the albums endpoint. Listing
// endpoints (new releases, artist albums) return the same shape without the
// track page.
type Album struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []ArtistRef  `json:"artists"`
	Images       []Image      `json:"images"`
	ExternalURLs ExternalURLs `json:"external_urls"`
	ReleaseDate  string       `json:"release_date"`
	AlbumType    string       `json:"album_type"`
	Tracks       TrackPage    `json:"tracks"`
}

// ImageURL returns the first cover art URL, or "" when the album has none.
func (a *Album) ImageURL() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0].URL
}

// URL returns the provider-facing album link, or "".
func (a *Album) URL() string {
	return a.ExternalURLs.Spotify
}

// FirstTrackID returns the ID of the album's first track, or "" when the
// track listing is absent (listing endpoints) or empty.
func (a *Album) FirstTrackID() string {
	if len(a.Tracks.Items) == 0 {
		return ""
	}
	return a.Tracks.Items[0].ID
}

// Artist is a full artist object, including the genre tags the profile
// aggregator consumes.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// AudioFeatures are the per-track audio characteristics.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Speechiness      float64 `json:"speechiness"`
}

// Response envelopes for listing endpoints.

type artistsResponse struct {
	Artists []Artist `json:"artists"`
}

type albumListResponse struct {
	Items []Album `json:"items"`
}

type newReleasesResponse struct {
	Albums albumListResponse `json:"albums"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
