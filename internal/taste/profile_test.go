// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import (
	"fmt"
	"testing"
)

func TestBuildProfileGenreScoring(t *testing.T) {
	albums := []AlbumWithFeatures{
		{AlbumID: "a", Genres: []string{"jazz", "hard bop"}},
		{AlbumID: "b", Genres: []string{"jazz"}},
	}
	weights := map[string]float64{"a": 2.5, "b": 1.0}

	p := BuildProfile("u1", albums, weights, SourceCounts{TotalAlbumsConsidered: 2})

	if len(p.TopGenres) != 2 {
		t.Fatalf("got %d genres, want 2", len(p.TopGenres))
	}
	// jazz: 2.5 + 1.0 = 3.5; an album contributes its full weight to each
	// of its genres.
	if p.TopGenres[0].Name != "jazz" || !almostEqual(p.TopGenres[0].Score, 3.5) {
		t.Errorf("TopGenres[0] = %+v, want jazz at 3.5", p.TopGenres[0])
	}
	if p.TopGenres[1].Name != "hard bop" || !almostEqual(p.TopGenres[1].Score, 2.5) {
		t.Errorf("TopGenres[1] = %+v, want hard bop at 2.5", p.TopGenres[1])
	}
}

func TestBuildProfileArtistKeying(t *testing.T) {
	albums := []AlbumWithFeatures{
		{AlbumID: "a", Artists: []Artist{{ID: "art1", Name: "Coltrane"}}},
		{AlbumID: "b", Artists: []Artist{{ID: "art1", Name: "Coltrane"}}},
		{AlbumID: "c", Artists: []Artist{{Name: "Unknown Ensemble"}}}, // no ID: keyed by name
		{AlbumID: "d", Artists: []Artist{{Name: "Unknown Ensemble"}}},
	}
	weights := map[string]float64{"a": 1.0, "b": 1.0, "c": 1.0, "d": 2.0}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	if len(p.TopArtists) != 2 {
		t.Fatalf("got %d artists, want 2", len(p.TopArtists))
	}
	// Name-keyed artist accumulated 3.0, outranking the ID-keyed 2.0.
	if p.TopArtists[0].Name != "Unknown Ensemble" || !almostEqual(p.TopArtists[0].Score, 3.0) {
		t.Errorf("TopArtists[0] = %+v, want Unknown Ensemble at 3.0", p.TopArtists[0])
	}
	if p.TopArtists[0].ID != "" {
		t.Errorf("name-keyed artist should have no ID, got %q", p.TopArtists[0].ID)
	}
	if p.TopArtists[1].ID != "art1" || !almostEqual(p.TopArtists[1].Score, 2.0) {
		t.Errorf("TopArtists[1] = %+v, want art1 at 2.0", p.TopArtists[1])
	}
}

func TestBuildProfileTruncatesToTen(t *testing.T) {
	albums := make([]AlbumWithFeatures, 0, 15)
	weights := make(map[string]float64, 15)
	for i := range 15 {
		id := fmt.Sprintf("alb%02d", i)
		albums = append(albums, AlbumWithFeatures{
			AlbumID: id,
			Genres:  []string{fmt.Sprintf("genre%02d", i)},
			Artists: []Artist{{ID: fmt.Sprintf("art%02d", i), Name: fmt.Sprintf("Artist %d", i)}},
		})
		// Later albums weigh more so order is easy to assert.
		weights[id] = float64(i + 1)
	}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	if len(p.TopGenres) != 10 {
		t.Errorf("TopGenres length = %d, want 10", len(p.TopGenres))
	}
	if len(p.TopArtists) != 10 {
		t.Errorf("TopArtists length = %d, want 10", len(p.TopArtists))
	}
	if p.TopGenres[0].Name != "genre14" {
		t.Errorf("TopGenres[0] = %+v, want highest-weighted genre14", p.TopGenres[0])
	}
	for i := 1; i < len(p.TopGenres); i++ {
		if p.TopGenres[i].Score > p.TopGenres[i-1].Score {
			t.Errorf("TopGenres not sorted descending at %d", i)
		}
	}
}

func TestBuildProfileStableTieBreak(t *testing.T) {
	// Equal scores keep insertion order.
	albums := []AlbumWithFeatures{
		{AlbumID: "a", Genres: []string{"ambient", "drone", "lowercase"}},
	}
	weights := map[string]float64{"a": 1.5}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	want := []string{"ambient", "drone", "lowercase"}
	for i, name := range want {
		if p.TopGenres[i].Name != name {
			t.Errorf("TopGenres[%d] = %q, want %q (insertion order on ties)", i, p.TopGenres[i].Name, name)
		}
	}
}

func TestBuildProfileAudioWeightedAverage(t *testing.T) {
	albums := []AlbumWithFeatures{
		{AlbumID: "a", AudioFeatures: &AudioFeatures{Danceability: 0.4, Tempo: 120}},
		{AlbumID: "b", AudioFeatures: &AudioFeatures{Danceability: 0.7, Tempo: 90}},
		{AlbumID: "c"}, // no audio data: excluded from the average
	}
	weights := map[string]float64{"a": 1.0, "b": 2.0, "c": 10.0}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	if p.AudioProfile.Danceability == nil {
		t.Fatal("Danceability should not be nil")
	}
	// (0.4*1.0 + 0.7*2.0) / 3.0 = 0.6
	if !almostEqual(*p.AudioProfile.Danceability, 0.6) {
		t.Errorf("Danceability = %v, want 0.6", *p.AudioProfile.Danceability)
	}
	// (120*1.0 + 90*2.0) / 3.0 = 100
	if !almostEqual(*p.AudioProfile.Tempo, 100) {
		t.Errorf("Tempo = %v, want 100", *p.AudioProfile.Tempo)
	}
}

func TestBuildProfileAudioNilWhenNoFeatures(t *testing.T) {
	albums := []AlbumWithFeatures{
		{AlbumID: "a", Genres: []string{"jazz"}},
		{AlbumID: "b"},
	}
	weights := map[string]float64{"a": 1.0, "b": 1.0}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	if p.AudioProfile.Danceability != nil || p.AudioProfile.Tempo != nil || p.AudioProfile.Speechiness != nil {
		t.Errorf("AudioProfile = %+v, want all fields nil when no album contributed audio data", p.AudioProfile)
	}
}

func TestBuildProfileSetsRationale(t *testing.T) {
	albums := []AlbumWithFeatures{
		{
			AlbumID: "a",
			Genres:  []string{"jazz"},
			Artists: []Artist{{ID: "art1", Name: "Coltrane"}},
		},
	}
	weights := map[string]float64{"a": 2.5}

	p := BuildProfile("u1", albums, weights, SourceCounts{})

	want := "Based on your love for jazz music and artists like Coltrane"
	if p.Rationale != want {
		t.Errorf("Rationale = %q, want %q", p.Rationale, want)
	}
}

func TestBuildProfileEmptyInput(t *testing.T) {
	p := BuildProfile("u1", nil, map[string]float64{}, SourceCounts{})
	if p.UserID != "u1" {
		t.Errorf("UserID = %q", p.UserID)
	}
	if len(p.TopGenres) != 0 || len(p.TopArtists) != 0 {
		t.Errorf("expected empty rankings, got %+v", p)
	}
	if p.Rationale != "" {
		t.Errorf("Rationale = %q, want empty for a profile with no genres or artists", p.Rationale)
	}
}

func TestBuildProfileCountsPassThrough(t *testing.T) {
	counts := SourceCounts{TotalAlbumsConsidered: 7, FromLibrary: 3, FromReviews: 5}
	p := BuildProfile("u1", nil, nil, counts)
	if p.SourceCounts != counts {
		t.Errorf("SourceCounts = %+v, want %+v", p.SourceCounts, counts)
	}
}
