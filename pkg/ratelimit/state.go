// Package ratelimit bounds the request rate sent to the upstream catalog API
// and honours 429 back-off windows. The window can be shared across
// processes through Redis.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyBlockedUntil = "catalog:rate_limit:blocked_until"
	RedisKeyLastUpdate   = "catalog:rate_limit:last_update"
)

// DefaultRetryAfter is the back-off window used when a 429 carries no
// usable Retry-After header.
const DefaultRetryAfter = 10 * time.Second

// RateLimitState represents the current upstream back-off state.
type RateLimitState struct {
	// BlockedUntil is when the upstream allows requests again.
	// Zero when no 429 has been seen.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// IsBlocked returns true while the back-off window is open.
func (s *RateLimitState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the duration until the back-off window closes.
// Returns 0 if the window has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}
