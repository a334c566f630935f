// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

// Package catalog implements the client for the external music metadata
// provider (album, artist, related-artist, audio-feature, and new-release
// lookups) behind a client-credentials token flow.
//
// Resilience:
//   - Access tokens are cached on the client and refreshed through a
//     single-flight group so concurrent callers share one refresh.
//   - HTTP 429 responses are retried with exponential backoff honoring
//     Retry-After (1s, 2s, 4s, 8s, 16s by default).
//   - HTTP 401 invalidates the cached token and retries once.
//   - An optional client-side rate limiter bounds outbound request rate.
//   - Breaker (breaker.go) adds circuit-breaking on top of this client.
//
// All methods accept a context for cancellation and deadlines and are safe
// for concurrent use.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/resonata-fm/resonata/internal/config"
	"github.com/resonata-fm/resonata/internal/logging"
	"github.com/resonata-fm/resonata/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024 // 64KB

// maxArtistBatch is the provider's cap on ids per batch artist lookup.
const maxArtistBatch = 50

// tokenExpirySlack is subtracted from the provider-reported token lifetime
// so a token is refreshed before it actually expires mid-request.
const tokenExpirySlack = 30 * time.Second

// API is the catalog operation set the engine consumes. Implemented by
// Client and Breaker; test fakes implement it in-memory.
type API interface {
	Album(ctx context.Context, id string) (*Album, error)
	Artists(ctx context.Context, ids []string) ([]Artist, error)
	RelatedArtists(ctx context.Context, artistID string) ([]Artist, error)
	ArtistAlbums(ctx context.Context, artistID string, limit int, country string) ([]Album, error)
	AudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error)
	NewReleases(ctx context.Context, limit int, country string) ([]Album, error)
}

// Client talks to the catalog provider over HTTP.
type Client struct {
	baseURL      string
	authURL      string
	clientID     string
	clientSecret string

	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration

	// Token cache. refresh collapses concurrent refreshes into one call.
	tokenMu     sync.RWMutex
	token       string
	tokenExpiry time.Time
	refresh     singleflight.Group
}

var _ API = (*Client)(nil)

// NewClient creates a catalog client from configuration. Credentials are not
// checked here: a client without credentials fails with ErrMissingCredentials
// on first use, which callers treat as "catalog unavailable".
func NewClient(cfg *config.CatalogConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		authURL:        cfg.AuthURL,
		clientID:       cfg.ClientID,
		clientSecret:   cfg.ClientSecret,
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        limiter,
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// Album fetches a full album object, including its track listing.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	var album Album
	if err := c.get(ctx, "album", fmt.Sprintf("%s/albums/%s", c.baseURL, url.PathEscape(id)), &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// Artists batch-fetches artist objects. Requests are chunked to the
// provider's 50-id limit; ids that do not resolve are dropped by the
// provider, so the result may be shorter than the input.
func (c *Client) Artists(ctx context.Context, ids []string) ([]Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]Artist, 0, len(ids))
	for start := 0; start < len(ids); start += maxArtistBatch {
		end := start + maxArtistBatch
		if end > len(ids) {
			end = len(ids)
		}

		reqURL := fmt.Sprintf("%s/artists?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids[start:end], ",")))
		var page artistsResponse
		if err := c.get(ctx, "artists", reqURL, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Artists...)
	}
	return out, nil
}

// RelatedArtists fetches artists similar to the given artist.
func (c *Client) RelatedArtists(ctx context.Context, artistID string) ([]Artist, error) {
	reqURL := fmt.Sprintf("%s/artists/%s/related-artists", c.baseURL, url.PathEscape(artistID))
	var page artistsResponse
	if err := c.get(ctx, "related_artists", reqURL, &page); err != nil {
		return nil, err
	}
	return page.Artists, nil
}

// ArtistAlbums fetches an artist's recent albums and singles, country
// filtered when country is non-empty.
func (c *Client) ArtistAlbums(ctx context.Context, artistID string, limit int, country string) ([]Album, error) {
	params := url.Values{}
	params.Set("include_groups", "album,single")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if country != "" {
		params.Set("market", country)
	}

	reqURL := fmt.Sprintf("%s/artists/%s/albums?%s", c.baseURL, url.PathEscape(artistID), params.Encode())
	var page albumListResponse
	if err := c.get(ctx, "artist_albums", reqURL, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// AudioFeatures fetches the audio characteristics of a single track.
func (c *Client) AudioFeatures(ctx context.Context, trackID string) (*AudioFeatures, error) {
	var features AudioFeatures
	reqURL := fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(trackID))
	if err := c.get(ctx, "audio_features", reqURL, &features); err != nil {
		return nil, err
	}
	return &features, nil
}

// NewReleases fetches the provider's current new-release listing.
func (c *Client) NewReleases(ctx context.Context, limit int, country string) ([]Album, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if country != "" {
		params.Set("country", country)
	}

	reqURL := fmt.Sprintf("%s/browse/new-releases?%s", c.baseURL, params.Encode())
	var page newReleasesResponse
	if err := c.get(ctx, "new_releases", reqURL, &page); err != nil {
		return nil, err
	}
	return page.Albums.Items, nil
}

// get performs an authenticated GET, decoding the JSON response into result.
// It retries once on 401 after forcing a token refresh, and retries 429s
// with exponential backoff.
func (c *Client) get(ctx context.Context, endpoint, reqURL string, result any) error {
	start := time.Now()
	err := c.doGet(ctx, endpoint, reqURL, result)
	metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return err
}

func (c *Client) doGet(ctx context.Context, endpoint, reqURL string, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		metrics.CatalogRequestErrors.WithLabelValues(endpoint, "auth").Inc()
		return err
	}

	resp, err := c.doRequestWithRateLimit(ctx, reqURL, token)
	if err != nil {
		metrics.CatalogRequestErrors.WithLabelValues(endpoint, "http_error").Inc()
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}

	// A 401 means the cached token went stale; refresh once and retry.
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.invalidateToken(token)

		token, err = c.accessToken(ctx)
		if err != nil {
			metrics.CatalogRequestErrors.WithLabelValues(endpoint, "auth").Inc()
			return err
		}
		resp, err = c.doRequestWithRateLimit(ctx, reqURL, token)
		if err != nil {
			metrics.CatalogRequestErrors.WithLabelValues(endpoint, "http_error").Inc()
			return fmt.Errorf("%s request failed after token refresh: %w", endpoint, err)
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.CatalogRequestErrors.WithLabelValues(endpoint, "not_found").Inc()
		return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		metrics.CatalogRequestErrors.WithLabelValues(endpoint, "http_error").Inc()
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%s returned HTTP %d: %s", endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		metrics.CatalogRequestErrors.WithLabelValues(endpoint, "decode").Inc()
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit performs a bearer-authenticated GET with automatic
// HTTP 429 handling. Backoff doubles each attempt (1s, 2s, 4s, 8s, 16s) and
// a Retry-After header overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL, token string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// accessToken returns a valid access token, refreshing through a
// single-flight group so concurrent callers never issue redundant refreshes.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	c.tokenMu.RLock()
	token, expiry := c.token, c.tokenExpiry
	c.tokenMu.RUnlock()
	if token != "" && time.Now().Before(expiry) {
		return token, nil
	}

	result, err, _ := c.refresh.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		c.tokenMu.RLock()
		cached, cachedExpiry := c.token, c.tokenExpiry
		c.tokenMu.RUnlock()
		if cached != "" && time.Now().Before(cachedExpiry) {
			return cached, nil
		}
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// fetchToken performs the client-credentials token exchange.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return "", fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access token")
	}

	expiry := time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySlack)

	c.tokenMu.Lock()
	c.token = tr.AccessToken
	c.tokenExpiry = expiry
	c.tokenMu.Unlock()

	metrics.CatalogTokenRefreshes.Inc()
	logging.Debug().Time("expiry", expiry).Msg("catalog access token refreshed")

	return tr.AccessToken, nil
}

// invalidateToken clears the cached token, but only if it is still the one
// the failing request used. A concurrent refresh must not be wiped out.
func (c *Client) invalidateToken(stale string) {
	c.tokenMu.Lock()
	if c.token == stale {
		c.token = ""
		c.tokenExpiry = time.Time{}
	}
	c.tokenMu.Unlock()
}

// readBodyForError reads at most maxErrorBodySize of a response body for
// error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
