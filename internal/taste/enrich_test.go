// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/config"
)

// fakeCatalog is an in-memory catalog.API for enrichment tests.
type fakeCatalog struct {
	mu       sync.Mutex
	albums   map[string]*catalog.Album
	artists  map[string]catalog.Artist
	features map[string]*catalog.AudioFeatures

	failAlbums   map[string]error
	failArtists  bool
	failFeatures bool
	noCreds      bool

	albumCalls atomic.Int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		albums:     make(map[string]*catalog.Album),
		artists:    make(map[string]catalog.Artist),
		features:   make(map[string]*catalog.AudioFeatures),
		failAlbums: make(map[string]error),
	}
}

// addAlbum registers an album with one artist and one track.
func (f *fakeCatalog) addAlbum(albumID, name, artistID, artistName string, genres ...string) {
	trackID := "trk-" + albumID
	f.albums[albumID] = &catalog.Album{
		ID:      albumID,
		Name:    name,
		Artists: []catalog.ArtistRef{{ID: artistID, Name: artistName}},
		Tracks:  catalog.TrackPage{Items: []catalog.TrackRef{{ID: trackID, Name: name}}},
	}
	if artistID != "" {
		f.artists[artistID] = catalog.Artist{ID: artistID, Name: artistName, Genres: genres}
	}
}

func (f *fakeCatalog) Album(_ context.Context, id string) (*catalog.Album, error) {
	f.albumCalls.Add(1)
	if f.noCreds {
		return nil, catalog.ErrMissingCredentials
	}
	if err, ok := f.failAlbums[id]; ok {
		return nil, err
	}
	album, ok := f.albums[id]
	if !ok {
		return nil, fmt.Errorf("album %s: %w", id, catalog.ErrNotFound)
	}
	return album, nil
}

func (f *fakeCatalog) Artists(_ context.Context, ids []string) ([]catalog.Artist, error) {
	if f.failArtists {
		return nil, errors.New("artist backend down")
	}
	out := make([]catalog.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := f.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCatalog) RelatedArtists(_ context.Context, _ string) ([]catalog.Artist, error) {
	return nil, nil
}

func (f *fakeCatalog) ArtistAlbums(_ context.Context, _ string, _ int, _ string) ([]catalog.Album, error) {
	return nil, nil
}

func (f *fakeCatalog) AudioFeatures(_ context.Context, trackID string) (*catalog.AudioFeatures, error) {
	if f.failFeatures {
		return nil, errors.New("features backend down")
	}
	feat, ok := f.features[trackID]
	if !ok {
		return nil, fmt.Errorf("track %s: %w", trackID, catalog.ErrNotFound)
	}
	return feat, nil
}

func (f *fakeCatalog) NewReleases(_ context.Context, _ int, _ string) ([]catalog.Album, error) {
	return nil, nil
}

var _ catalog.API = (*fakeCatalog)(nil)

func testEnrichConfig() *config.RecommendConfig {
	return &config.RecommendConfig{MaxAlbums: 25, EnrichWorkers: 4}
}

func TestEnrichHappyPath(t *testing.T) {
	fake := newFakeCatalog()
	fake.addAlbum("alb1", "Blue Train", "art1", "John Coltrane", "Jazz", " hard bop ")
	fake.features["trk-alb1"] = &catalog.AudioFeatures{Danceability: 0.4, Energy: 0.6}

	e := NewEnricher(fake, testEnrichConfig())
	albums, err := e.Enrich(context.Background(), []string{"alb1"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if len(albums) != 1 {
		t.Fatalf("got %d albums, want 1", len(albums))
	}

	album := albums[0]
	if album.AlbumName != "Blue Train" {
		t.Errorf("AlbumName = %q", album.AlbumName)
	}
	// Genres are lower-cased, trimmed, in first-seen order.
	if len(album.Genres) != 2 || album.Genres[0] != "jazz" || album.Genres[1] != "hard bop" {
		t.Errorf("Genres = %v, want [jazz, hard bop]", album.Genres)
	}
	if album.AudioFeatures == nil || album.AudioFeatures.Danceability != 0.4 {
		t.Errorf("AudioFeatures = %+v, want danceability 0.4", album.AudioFeatures)
	}
}

func TestEnrichCapsAtFirst25UniqueIDs(t *testing.T) {
	fake := newFakeCatalog()
	ids := make([]string, 0, 40)
	for i := range 30 {
		id := fmt.Sprintf("alb%02d", i)
		fake.addAlbum(id, "Album "+id, "", "Unknown")
		ids = append(ids, id)
	}
	// Duplicates past the cap must not displace earlier ids.
	ids = append(ids, "alb00", "alb01")

	e := NewEnricher(fake, testEnrichConfig())
	albums, err := e.Enrich(context.Background(), ids)
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if len(albums) != 25 {
		t.Fatalf("got %d albums, want 25", len(albums))
	}
	if got := fake.albumCalls.Load(); got != 25 {
		t.Errorf("album lookups = %d, want 25 (cap applied before fetching)", got)
	}
	// Output order is input order.
	for i, album := range albums {
		want := fmt.Sprintf("alb%02d", i)
		if album.AlbumID != want {
			t.Errorf("albums[%d].AlbumID = %q, want %q", i, album.AlbumID, want)
		}
	}
}

func TestEnrichSkipsFailedAlbums(t *testing.T) {
	fake := newFakeCatalog()
	fake.addAlbum("alb1", "One", "art1", "A", "rock")
	fake.addAlbum("alb3", "Three", "art3", "C", "pop")
	fake.failAlbums["alb2"] = errors.New("upstream 500")

	e := NewEnricher(fake, testEnrichConfig())
	albums, err := e.Enrich(context.Background(), []string{"alb1", "alb2", "alb3"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("got %d albums, want 2 (failed album skipped)", len(albums))
	}
	if albums[0].AlbumID != "alb1" || albums[1].AlbumID != "alb3" {
		t.Errorf("albums = %v %v, want alb1 then alb3", albums[0].AlbumID, albums[1].AlbumID)
	}
}

func TestEnrichArtistFailureDegradesGenres(t *testing.T) {
	fake := newFakeCatalog()
	fake.addAlbum("alb1", "One", "art1", "A", "rock")
	fake.failArtists = true

	e := NewEnricher(fake, testEnrichConfig())
	albums, err := e.Enrich(context.Background(), []string{"alb1"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if len(albums) != 1 {
		t.Fatal("album should be kept despite artist failure")
	}
	if len(albums[0].Genres) != 0 {
		t.Errorf("Genres = %v, want empty after artist failure", albums[0].Genres)
	}
	if len(albums[0].Artists) != 1 || albums[0].Artists[0].Name != "A" {
		t.Errorf("Artists = %+v, artist refs should survive from the album object", albums[0].Artists)
	}
}

func TestEnrichAudioFailureLeavesNilFeatures(t *testing.T) {
	fake := newFakeCatalog()
	fake.addAlbum("alb1", "One", "art1", "A", "rock")
	fake.failFeatures = true

	e := NewEnricher(fake, testEnrichConfig())
	albums, err := e.Enrich(context.Background(), []string{"alb1"})
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if albums[0].AudioFeatures != nil {
		t.Errorf("AudioFeatures = %+v, want nil (omitted, not zeroed)", albums[0].AudioFeatures)
	}
}

func TestEnrichMissingCredentialsIsFatal(t *testing.T) {
	fake := newFakeCatalog()
	fake.noCreds = true

	e := NewEnricher(fake, testEnrichConfig())
	_, err := e.Enrich(context.Background(), []string{"alb1", "alb2"})
	if !errors.Is(err, catalog.ErrMissingCredentials) {
		t.Errorf("error = %v, want ErrMissingCredentials", err)
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	e := NewEnricher(newFakeCatalog(), testEnrichConfig())
	albums, err := e.Enrich(context.Background(), nil)
	if err != nil {
		t.Fatalf("Enrich() error: %v", err)
	}
	if albums != nil {
		t.Errorf("Enrich(nil) = %v, want nil", albums)
	}
}

func TestPartition(t *testing.T) {
	outcomes := []Outcome{
		{AlbumID: "a", Album: &AlbumWithFeatures{AlbumID: "a"}},
		{AlbumID: "b", Err: errors.New("boom"), Stage: "album"},
		{AlbumID: "c", Album: &AlbumWithFeatures{AlbumID: "c"}},
	}
	albums, failed := Partition(outcomes)
	if len(albums) != 2 || albums[0].AlbumID != "a" || albums[1].AlbumID != "c" {
		t.Errorf("albums = %+v", albums)
	}
	if len(failed) != 1 || failed[0].AlbumID != "b" {
		t.Errorf("failed = %+v", failed)
	}
}
