// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package taste

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/metrics"
)

// Enricher resolves album IDs into AlbumWithFeatures through the catalog
// provider, tolerating individual lookup failures.
//
// Failure policy: a failed album lookup drops that album; a failed artist
// batch degrades the album to an empty genre set; a failed audio-feature
// lookup leaves AudioFeatures nil. Only a missing credential configuration
// aborts the batch, because no lookup can ever succeed without it.
type Enricher struct {
	api       catalog.API
	workers   int
	maxAlbums int
}

// NewEnricher creates an enricher bounded by the configured worker count and
// per-request album cap.
func NewEnricher(api catalog.API, cfg *config.RecommendConfig) *Enricher {
	workers := cfg.EnrichWorkers
	if workers < 1 {
		workers = 1
	}
	maxAlbums := cfg.MaxAlbums
	if maxAlbums < 1 {
		maxAlbums = 25
	}
	return &Enricher{api: api, workers: workers, maxAlbums: maxAlbums}
}

// Outcome is the per-album result of an enrichment attempt. Failed outcomes
// carry the error and the stage it occurred in for observability; the public
// Enrich contract still skips them silently.
type Outcome struct {
	AlbumID string
	Album   *AlbumWithFeatures
	Err     error
	Stage   string // album, artists, audio_features
}

// Enrich resolves up to the first maxAlbums unique ids into enriched albums,
// in input order, skipping ids that fail to resolve. Lookups run on a
// bounded worker pool; results are compacted after all workers return so the
// output order never depends on completion timing.
func (e *Enricher) Enrich(ctx context.Context, albumIDs []string) ([]AlbumWithFeatures, error) {
	ids := capUnique(albumIDs, e.maxAlbums)
	if len(ids) == 0 {
		return nil, nil
	}

	outcomes := make([]Outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = e.enrichOne(gctx, id)
			// Credential errors are fatal for the whole batch; abort the
			// remaining lookups instead of failing 25 times.
			if errors.Is(outcomes[i].Err, catalog.ErrMissingCredentials) {
				return outcomes[i].Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	albums, failed := Partition(outcomes)
	for _, f := range failed {
		metrics.EnrichmentLookupFailures.WithLabelValues(f.Stage).Inc()
		logging.Ctx(ctx).Warn().
			Err(f.Err).
			Str("album_id", f.AlbumID).
			Str("stage", f.Stage).
			Msg("skipping album after failed lookup")
	}

	return albums, nil
}

// enrichOne builds one AlbumWithFeatures, degrading per the failure policy.
func (e *Enricher) enrichOne(ctx context.Context, albumID string) Outcome {
	album, err := e.api.Album(ctx, albumID)
	if err != nil {
		return Outcome{AlbumID: albumID, Err: err, Stage: "album"}
	}

	enriched := &AlbumWithFeatures{
		AlbumID:     album.ID,
		AlbumName:   album.Name,
		ImageURL:    album.ImageURL(),
		ExternalURL: album.URL(),
		Artists:     make([]Artist, 0, len(album.Artists)),
	}
	artistIDs := make([]string, 0, len(album.Artists))
	for _, ref := range album.Artists {
		enriched.Artists = append(enriched.Artists, Artist{ID: ref.ID, Name: ref.Name})
		if ref.ID != "" {
			artistIDs = append(artistIDs, ref.ID)
		}
	}

	enriched.Genres = e.collectGenres(ctx, albumID, artistIDs)
	enriched.AudioFeatures = e.collectAudioFeatures(ctx, album)

	return Outcome{AlbumID: albumID, Album: enriched}
}

// collectGenres unions the genre tags of the album's artists: lower-cased,
// trimmed, de-duplicated, first-seen order. A failed artist batch degrades
// to no genres rather than dropping the album.
func (e *Enricher) collectGenres(ctx context.Context, albumID string, artistIDs []string) []string {
	if len(artistIDs) == 0 {
		return nil
	}

	artists, err := e.api.Artists(ctx, artistIDs)
	if err != nil {
		if errors.Is(err, catalog.ErrMissingCredentials) {
			// Cannot happen after a successful album fetch, but keep the
			// degradation path total.
			return nil
		}
		metrics.EnrichmentLookupFailures.WithLabelValues("artists").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("album_id", albumID).Msg("artist lookup failed, keeping album without genres")
		return nil
	}

	var genres []string
	seen := make(map[string]struct{})
	for _, artist := range artists {
		for _, g := range artist.Genres {
			g = strings.ToLower(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	return genres
}

// collectAudioFeatures fetches audio characteristics from the album's first
// track only. Albums without a resolvable first track keep a nil vector so
// profile averaging excludes them instead of averaging in zeroes.
func (e *Enricher) collectAudioFeatures(ctx context.Context, album *catalog.Album) *AudioFeatures {
	trackID := album.FirstTrackID()
	if trackID == "" {
		return nil
	}

	features, err := e.api.AudioFeatures(ctx, trackID)
	if err != nil {
		metrics.EnrichmentLookupFailures.WithLabelValues("audio_features").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("album_id", album.ID).Msg("audio feature lookup failed, keeping album without audio data")
		return nil
	}
	return featuresFromCatalog(features)
}

// Partition splits outcomes into enriched albums (input order) and failures.
func Partition(outcomes []Outcome) ([]AlbumWithFeatures, []Outcome) {
	albums := make([]AlbumWithFeatures, 0, len(outcomes))
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
			continue
		}
		albums = append(albums, *o.Album)
	}
	return albums, failed
}

// capUnique returns the first max unique ids in input order.
func capUnique(ids []string, max int) []string {
	out := make([]string, 0, min(len(ids), max))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == max {
			break
		}
	}
	return out
}
