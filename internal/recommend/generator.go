// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/taste"
)

// Generator implements the three ranking strategies over the catalog
// provider. It holds no per-request state; every method is safe for
// concurrent use.
type Generator struct {
	api     catalog.API
	country string

	maxResults       int
	relatedPerSeed   int
	albumsPerRelated int
	newReleaseLimit  int
}

// NewGenerator creates a generator bounded by the configured caps.
func NewGenerator(api catalog.API, cfg *config.RecommendConfig, country string) *Generator {
	return &Generator{
		api:              api,
		country:          country,
		maxResults:       defaultIfZero(cfg.MaxResults, 12),
		relatedPerSeed:   defaultIfZero(cfg.RelatedPerSeed, 3),
		albumsPerRelated: defaultIfZero(cfg.AlbumsPerRelated, 5),
		newReleaseLimit:  defaultIfZero(cfg.NewReleaseLimit, 20),
	}
}

func defaultIfZero(v, def int) int {
	if v < 1 {
		return def
	}
	return v
}

// Direct ranks the user's own enriched albums by aggregated signal weight,
// descending, ties broken by enrichment order. Reasons reflect signal
// provenance: a review outranks a plain save for the same album.
func (g *Generator) Direct(enriched []taste.AlbumWithFeatures, weights map[string]float64, sources taste.SignalSources) []Recommendation {
	ranked := make([]taste.AlbumWithFeatures, len(enriched))
	copy(ranked, enriched)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weights[ranked[i].AlbumID] > weights[ranked[j].AlbumID]
	})

	list := newDedupList(g.maxResults)
	for _, album := range ranked {
		list.add(Recommendation{
			AlbumID:    album.AlbumID,
			Name:       album.AlbumName,
			Artists:    album.Artists,
			ImageURL:   album.ImageURL,
			SpotifyURL: album.ExternalURL,
			Reason:     directReason(album.AlbumID, sources),
		})
		if list.len() == g.maxResults {
			break
		}
	}
	return list.items(g.maxResults)
}

func directReason(albumID string, sources taste.SignalSources) string {
	if _, ok := sources.FromReviews[albumID]; ok {
		return ReasonReviewed
	}
	if _, ok := sources.FromLibrary[albumID]; ok {
		return ReasonSaved
	}
	return ReasonActivity
}

// Related expands seed artists into recommendations: for each seed, up to
// relatedPerSeed related artists, and for each of those up to
// albumsPerRelated recent releases. Duplicate albums across seeds collapse
// to the first-seen entry. Individual lookup failures skip that branch;
// only a credential error aborts.
func (g *Generator) Related(ctx context.Context, seeds []string, seedNames map[string]string) ([]Recommendation, error) {
	list := newDedupList(g.maxResults)

	for _, seedID := range seeds {
		if list.len() >= g.maxResults {
			break
		}

		related, err := g.api.RelatedArtists(ctx, seedID)
		if err != nil {
			if errors.Is(err, catalog.ErrMissingCredentials) {
				return nil, err
			}
			logging.Ctx(ctx).Warn().Err(err).Str("seed_artist_id", seedID).Msg("related artist lookup failed, skipping seed")
			continue
		}
		if len(related) > g.relatedPerSeed {
			related = related[:g.relatedPerSeed]
		}

		reason := relatedReason(seedNames[seedID])
		for _, artist := range related {
			if list.len() >= g.maxResults {
				break
			}
			albums, err := g.api.ArtistAlbums(ctx, artist.ID, g.albumsPerRelated, g.country)
			if err != nil {
				if errors.Is(err, catalog.ErrMissingCredentials) {
					return nil, err
				}
				logging.Ctx(ctx).Warn().Err(err).Str("artist_id", artist.ID).Msg("artist album lookup failed, skipping artist")
				continue
			}
			for i := range albums {
				list.add(recommendationFromAlbum(&albums[i], reason))
			}
		}
	}

	return list.items(g.maxResults), nil
}

func relatedReason(seedName string) string {
	if seedName == "" {
		return ReasonActivity
	}
	return fmt.Sprintf("Because you listen to %s", seedName)
}

// ColdStart maps the catalog's new-release listing straight to
// recommendations with a generic reason.
func (g *Generator) ColdStart(ctx context.Context) ([]Recommendation, error) {
	albums, err := g.api.NewReleases(ctx, g.newReleaseLimit, g.country)
	if err != nil {
		return nil, err
	}

	list := newDedupList(g.maxResults)
	for i := range albums {
		list.add(recommendationFromAlbum(&albums[i], ReasonColdStart))
		if list.len() == g.maxResults {
			break
		}
	}
	return list.items(g.maxResults), nil
}

func recommendationFromAlbum(album *catalog.Album, reason string) Recommendation {
	artists := make([]taste.Artist, 0, len(album.Artists))
	for _, ref := range album.Artists {
		artists = append(artists, taste.Artist{ID: ref.ID, Name: ref.Name})
	}
	return Recommendation{
		AlbumID:    album.ID,
		Name:       album.Name,
		Artists:    artists,
		ImageURL:   album.ImageURL(),
		SpotifyURL: album.URL(),
		Reason:     reason,
	}
}
