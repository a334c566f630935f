// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package catalog

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/metrics"
)

// Breaker wraps an API with a circuit breaker so a degraded catalog provider
// cannot stall every recommendation request.
//
// The breaker uses real time for its interval and timeout calculations. The
// timing governs recovery, not data integrity; unit tests should exercise the
// wrapped client directly.
type Breaker struct {
	api  API
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ API = (*Breaker)(nil)

// NewBreaker wraps api with a circuit breaker. The breaker opens after a 60%
// failure rate over at least 10 requests in a 1-minute window, waits 2
// minutes before probing, and allows 3 concurrent probes when half-open.
func NewBreaker(api API) *Breaker {
	const cbName = "catalog-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := failureRatio >= 0.6
			if trip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening catalog circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("catalog circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// Expected lookup misses and configuration problems are not
		// provider health signals; they must not trip the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingCredentials)
		},
	})

	return &Breaker{api: api, cb: cb, name: cbName}
}

// execute runs fn through the circuit breaker and records outcome metrics.
func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("catalog request rejected by circuit breaker")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// Album implements API.
func (b *Breaker) Album(ctx context.Context, id string) (*Album, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.Album(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Album), nil
}

// Artists implements API.
func (b *Breaker) Artists(ctx context.Context, ids []string) ([]Artist, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.Artists(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Artist), nil
}

// RelatedArtists implements API.
func (b *Breaker) RelatedArtists(ctx context.Context, artistID string) ([]Artist, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.RelatedArtists(ctx, artistID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Artist), nil
}

// ArtistAlbums implements API.
func (b *Breaker) ArtistAlbums(ctx context.Context, artistID string, limit int, country string) ([]Album, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.ArtistAlbums(ctx, artistID, limit, country)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Album), nil
}

// AudioFeatures implements API.
func (b *Breaker) AudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.AudioFeatures(ctx, trackID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*AudioFeatures), nil
}

// NewReleases implements API.
func (b *Breaker) NewReleases(ctx context.Context, limit int, country string) ([]Album, error) {
	result, err := b.execute(func() (any, error) {
		return b.api.NewReleases(ctx, limit, country)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Album), nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
