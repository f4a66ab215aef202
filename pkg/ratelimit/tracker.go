package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrBlocked is returned while an upstream back-off window is open.
var ErrBlocked = errors.New("request blocked: upstream back-off active")

// Prometheus metrics for rate limit tracking.
var (
	catalogRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_blocks_total",
		Help: "Total number of requests blocked during an upstream back-off window",
	})

	catalogRateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_throttles_total",
		Help: "Total number of requests delayed by the client-side token bucket",
	})

	catalogRateLimitBackoffsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_backoffs_total",
		Help: "Total number of 429 responses that opened a back-off window",
	})
)

// Config holds the client-side token bucket settings.
type Config struct {
	// RequestsPerSecond is the sustained request rate. Zero or less disables
	// the token bucket.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// BlockDuringBackoff makes Wait return ErrBlocked while a 429 window is
	// open. When false the window is only recorded.
	BlockDuringBackoff bool
}

// Tracker gates requests with a token bucket and an upstream back-off window.
type Tracker struct {
	config  Config
	limiter *rate.Limiter
	redis   *redis.Client
	logger  zerolog.Logger

	mu    sync.Mutex
	local RateLimitState
}

// NewTracker creates a new rate limit tracker. redisClient may be nil, in
// which case the back-off window is kept in process.
func NewTracker(redisClient *redis.Client, cfg Config, logger zerolog.Logger) *Tracker {
	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &Tracker{
		config:  cfg,
		limiter: rate.NewLimiter(limit, burst),
		redis:   redisClient,
		logger:  logger,
	}
}

// GetState returns the current back-off state.
func (t *Tracker) GetState(ctx context.Context) (*RateLimitState, error) {
	if t.redis == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		state := t.local
		return &state, nil
	}

	blockedUntil, err := t.redis.Get(ctx, RedisKeyBlockedUntil).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get blocked until: %w", err)
	}
	if err == redis.Nil {
		return &RateLimitState{}, nil
	}

	lastUpdate, err := t.redis.Get(ctx, RedisKeyLastUpdate).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	return &RateLimitState{
		BlockedUntil: time.UnixMilli(blockedUntil),
		LastUpdate:   time.UnixMilli(lastUpdate),
	}, nil
}

// Wait blocks until the token bucket admits a request. With
// BlockDuringBackoff set it returns ErrBlocked without waiting while a
// back-off window is open.
func (t *Tracker) Wait(ctx context.Context) error {
	if t.config.BlockDuringBackoff {
		if err := t.checkBackoff(ctx); err != nil {
			return err
		}
	}

	if t.limiter.Allow() {
		return nil
	}

	catalogRateLimitThrottlesTotal.Inc()
	t.logger.Debug().Msg("Token bucket empty - throttling request")
	return t.limiter.Wait(ctx)
}

func (t *Tracker) checkBackoff(ctx context.Context) error {
	state, err := t.GetState(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Rate limit state unavailable, continuing")
	} else if state.IsBlocked() {
		wait := state.TimeUntilReset()
		t.logger.Warn().
			Dur("wait_duration", wait).
			Msg("Upstream back-off active - blocking request")
		catalogRateLimitBlocksTotal.Inc()
		return fmt.Errorf("%w for %s", ErrBlocked, wait.Round(time.Millisecond))
	}
	return nil
}

// UpdateFromResponse opens a back-off window when the upstream answers 429.
// Other statuses are ignored.
func (t *Tracker) UpdateFromResponse(ctx context.Context, statusCode int, headers http.Header) error {
	if statusCode != http.StatusTooManyRequests {
		return nil
	}

	now := time.Now()
	retryAfter := parseRetryAfter(headers.Get("Retry-After"), now)
	state := RateLimitState{
		BlockedUntil: now.Add(retryAfter),
		LastUpdate:   now,
	}

	catalogRateLimitBackoffsTotal.Inc()
	t.logger.Warn().
		Dur("retry_after", retryAfter).
		Time("blocked_until", state.BlockedUntil).
		Msg("Upstream rate limit hit - opening back-off window")

	if t.redis == nil {
		t.mu.Lock()
		t.local = state
		t.mu.Unlock()
		return nil
	}

	// Keys expire with the window so a stale block never outlives it.
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyBlockedUntil, state.BlockedUntil.UnixMilli(), retryAfter)
	pipe.Set(ctx, RedisKeyLastUpdate, state.LastUpdate.UnixMilli(), retryAfter)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	return nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return DefaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return DefaultRetryAfter
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return DefaultRetryAfter
}
