// Package client provides the catalog HTTP client with rate limiting,
// optional revalidation caching, retry and error handling.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/cache"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public upstream catalog API.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// Client is the catalog data access client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API, without trailing slash.
	BaseURL string

	// User-Agent header sent with every request.
	// Format: "AppName/Version (contact)"
	UserAgent string

	// Redis client for the revalidation store and the shared back-off
	// window. Optional.
	Redis *redis.Client

	// Rate Limiting
	RequestsPerSecond float64 // Zero disables the token bucket
	Burst             int

	// FailFastOnBackoff makes requests fail with ratelimit.ErrBlocked, without
	// reaching the upstream, while a 429 Retry-After window is open. Off by
	// default: the window is then only logged and counted.
	FailFastOnBackoff bool

	// Timeout per HTTP attempt. Zero means no timeout.
	Timeout time.Duration

	// Retry policy for single-resource fetches.
	Retry RetryPolicy
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         userAgent,
		RequestsPerSecond: 10,
		Burst:             10,
		Retry:             DefaultRetryPolicy(),
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	rateLimiter := ratelimit.NewTracker(cfg.Redis, ratelimit.Config{
		RequestsPerSecond:  cfg.RequestsPerSecond,
		Burst:              cfg.Burst,
		BlockDuringBackoff: cfg.FailFastOnBackoff,
	}, logger)

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     baseURL,
		rateLimiter: rateLimiter,
		cache:       cacheManager,
		config:      cfg,
		logger:      logger,
	}, nil
}

// response is a fully read upstream answer.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// do performs exactly one GET against the upstream. Non-2xx statuses are not
// errors at this level; callers decide how to treat them.
func (c *Client) do(ctx context.Context, endpoint string, query url.Values) (*response, error) {
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		if errors.Is(err, ratelimit.ErrBlocked) {
			catalogRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			catalogErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, err
		}
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	cacheKey := cache.CacheKey{Endpoint: endpoint, QueryParams: query}
	var cachedEntry *cache.CacheEntry
	if c.cache != nil {
		cachedEntry, err = c.cache.Revalidate(ctx, cacheKey, req)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		} else if cachedEntry != nil {
			c.logger.Debug().
				Str("endpoint", endpoint).
				Str("etag", cachedEntry.ETag).
				Msg("Making conditional request")
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("query", query.Encode()).
		Msg("Executing catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	catalogRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if err := c.rateLimiter.UpdateFromResponse(ctx, resp.StatusCode, resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update rate limit state")
	}

	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - reusing stored body")
		if err := c.cache.Refresh(ctx, cacheKey, cachedEntry, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
		}

		return &response{
			StatusCode: http.StatusOK,
			Header:     resp.Header,
			Body:       cachedEntry.Data,
		}, nil
	}

	if resp.StatusCode >= 400 {
		catalogErrorsTotal.WithLabelValues(string(classifyStatus(resp.StatusCode))).Inc()
	}

	if resp.StatusCode == http.StatusOK && c.cache != nil {
		if err := c.cache.Store(ctx, cacheKey, resp.Header, body); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to store response")
		}
	}

	return &response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func apiError(endpoint string, resp *response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorClass: classifyStatus(resp.StatusCode),
		Endpoint:   endpoint,
		Message:    http.StatusText(resp.StatusCode),
	}
}

// listPage runs a single list query. 404 means "no matches" and yields an
// empty page; every other non-2xx is an APIError. There is no retry.
func listPage[T any](ctx context.Context, c *Client, kind catalog.Kind, page int, name string) (*catalog.Page[T], error) {
	endpoint := kind.Path()

	query := url.Values{}
	query.Set("page", strconv.Itoa(catalog.NormalizePage(page)))
	if name != "" {
		query.Set("name", name)
	}

	resp, err := c.do(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return catalog.EmptyPage[T](), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(endpoint, resp)
	}

	var result catalog.Page[T]
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, fmt.Errorf("decode %s: %w: %v", endpoint, errDecode, err)
	}
	if result.Results == nil {
		result.Results = []T{}
	}

	return &result, nil
}

// ListCharacters returns one page of characters, optionally filtered by name.
func (c *Client) ListCharacters(ctx context.Context, page int, name string) (*catalog.Page[catalog.Character], error) {
	return listPage[catalog.Character](ctx, c, catalog.KindCharacter, page, name)
}

// ListLocations returns one page of locations, optionally filtered by name.
func (c *Client) ListLocations(ctx context.Context, page int, name string) (*catalog.Page[catalog.Location], error) {
	return listPage[catalog.Location](ctx, c, catalog.KindLocation, page, name)
}

// ListEpisodes returns one page of episodes, optionally filtered by name.
func (c *Client) ListEpisodes(ctx context.Context, page int, name string) (*catalog.Page[catalog.Episode], error) {
	return listPage[catalog.Episode](ctx, c, catalog.KindEpisode, page, name)
}

// Get fetches a single record of the given kind into out, retrying under the
// configured policy. Every failure counts as a failed attempt, including 404.
func (c *Client) Get(ctx context.Context, kind catalog.Kind, id int, out any) error {
	endpoint := kind.ResourcePath(id)

	return c.config.Retry.Do(ctx, endpoint, func(ctx context.Context) error {
		resp, err := c.do(ctx, endpoint, nil)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return apiError(endpoint, resp)
		}
		if err := json.Unmarshal(resp.Body, out); err != nil {
			catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
			return fmt.Errorf("decode %s: %w: %v", endpoint, errDecode, err)
		}
		return nil
	})
}

// GetCharacter fetches one character by id.
func (c *Client) GetCharacter(ctx context.Context, id int) (*catalog.Character, error) {
	var character catalog.Character
	if err := c.Get(ctx, catalog.KindCharacter, id, &character); err != nil {
		return nil, err
	}
	return &character, nil
}

// GetLocation fetches one location by id.
func (c *Client) GetLocation(ctx context.Context, id int) (*catalog.Location, error) {
	var location catalog.Location
	if err := c.Get(ctx, catalog.KindLocation, id, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

// GetEpisode fetches one episode by id.
func (c *Client) GetEpisode(ctx context.Context, id int) (*catalog.Episode, error) {
	var episode catalog.Episode
	if err := c.Get(ctx, catalog.KindEpisode, id, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// Close releases idle connections. The Redis client is owned by the caller.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the revalidation store, or nil when Redis is not configured.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
