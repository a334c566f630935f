// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resonata-fm/resonata/internal/catalog"
	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/metrics"
	"github.com/resonata-fm/resonata/internal/store"
	"github.com/resonata-fm/resonata/internal/taste"
)

// Service is the engine's entry point: it runs the full pipeline from stored
// signals to a capped recommendation list, choosing and falling back between
// strategies.
type Service struct {
	collector *taste.Collector
	enricher  *taste.Enricher
	generator *Generator
	seedLimit int
}

// NewService wires the pipeline over a store reader and a catalog provider.
func NewService(reader store.Reader, api catalog.API, cfg *config.Config) *Service {
	return &Service{
		collector: taste.NewCollector(reader),
		enricher:  taste.NewEnricher(api, &cfg.Recommend),
		generator: NewGenerator(api, &cfg.Recommend, cfg.Catalog.Country),
		seedLimit: defaultIfZero(cfg.Recommend.SeedLimit, 10),
	}
}

// TasteProfile computes the user's aggregated taste profile. Returns
// (nil, nil) when the user has no signals. A missing catalog configuration
// is an error here, wrapping catalog.ErrMissingCredentials: the user may
// well have history, and reporting "no signals" would be wrong.
func (s *Service) TasteProfile(ctx context.Context, userID string) (*taste.UserTasteProfile, error) {
	profile, _, _, err := s.buildProfile(ctx, userID)
	return profile, err
}

// Recommendations computes up to the configured maximum of recommendations
// for the user. A user without usable history gets cold-start picks; a
// missing catalog configuration yields an empty list rather than an error.
func (s *Service) Recommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	start := time.Now()

	profile, enriched, collected, err := s.buildProfile(ctx, userID)
	if err != nil {
		// Recommendations degrade to an empty list without credentials;
		// only the profile endpoint reports the condition.
		if errors.Is(err, catalog.ErrMissingCredentials) {
			logging.Ctx(ctx).Warn().Str("user_id", userID).Msg("catalog credentials not configured, returning no recommendations")
			return []Recommendation{}, nil
		}
		return nil, err
	}

	seeds := taste.SeedArtists(profile, s.seedLimit)
	strategy := ChooseStrategy(collected.signalCount, len(enriched), len(seeds))

	recs, strategy, err := s.generate(ctx, strategy, seeds, profile, enriched, collected)
	if err != nil {
		if errors.Is(err, catalog.ErrMissingCredentials) {
			logging.Ctx(ctx).Warn().Str("user_id", userID).Msg("catalog credentials not configured, returning no recommendations")
			return []Recommendation{}, nil
		}
		return nil, err
	}

	metrics.RecommendationRequests.WithLabelValues(strategy.String()).Inc()
	metrics.RecommendationDuration.WithLabelValues(strategy.String()).Observe(time.Since(start).Seconds())
	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("strategy", strategy.String()).
		Int("count", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("recommendations computed")

	return recs, nil
}

// generate runs the chosen strategy. A related expansion that produces
// nothing falls back to direct ranking: the user has real signals, so their
// own albums beat generic new releases. The returned strategy is the one
// that actually served the list.
func (s *Service) generate(ctx context.Context, strategy Strategy, seeds []string, profile *taste.UserTasteProfile, enriched []taste.AlbumWithFeatures, collected collectResult) ([]Recommendation, Strategy, error) {
	switch strategy {
	case StrategyRelated:
		recs, err := s.generator.Related(ctx, seeds, seedNameIndex(profile))
		if err != nil {
			return nil, strategy, err
		}
		if len(recs) > 0 {
			return recs, StrategyRelated, nil
		}
		fallthrough
	case StrategyDirect:
		return s.generator.Direct(enriched, collected.weights, collected.sources), StrategyDirect, nil
	case StrategyColdStart:
		recs, err := s.generator.ColdStart(ctx)
		return recs, StrategyColdStart, err
	default:
		return nil, strategy, fmt.Errorf("unknown strategy %q", strategy)
	}
}

// collectResult carries the intermediate signal state between pipeline
// stages so provenance survives into reason assignment.
type collectResult struct {
	signalCount int
	weights     map[string]float64
	sources     taste.SignalSources
}

// buildProfile runs collection, enrichment, and aggregation once; both
// public operations share it. A credential error during enrichment
// propagates: callers decide whether to degrade or report it.
func (s *Service) buildProfile(ctx context.Context, userID string) (*taste.UserTasteProfile, []taste.AlbumWithFeatures, collectResult, error) {
	signals, sources, err := s.collector.Collect(ctx, userID)
	if err != nil {
		return nil, nil, collectResult{}, fmt.Errorf("failed to collect signals: %w", err)
	}

	collected := collectResult{signalCount: len(signals), sources: sources}
	if len(signals) == 0 {
		return nil, nil, collected, nil
	}

	order, weights := taste.MergeSignals(signals)
	collected.weights = weights

	enriched, err := s.enricher.Enrich(ctx, order)
	if err != nil {
		return nil, nil, collected, fmt.Errorf("failed to enrich albums: %w", err)
	}
	if len(enriched) == 0 {
		return nil, nil, collected, nil
	}

	counts := taste.SourceCounts{
		TotalAlbumsConsidered: len(order),
		FromLibrary:           len(sources.FromLibrary),
		FromReviews:           len(sources.FromReviews),
	}
	profile := taste.BuildProfile(userID, enriched, weights, counts)
	return profile, enriched, collected, nil
}

// seedNameIndex maps seed artist ids to display names for reason strings.
func seedNameIndex(p *taste.UserTasteProfile) map[string]string {
	if p == nil {
		return nil
	}
	names := make(map[string]string, len(p.TopArtists))
	for _, artist := range p.TopArtists {
		if artist.ID != "" {
			names[artist.ID] = artist.Name
		}
	}
	return names
}
