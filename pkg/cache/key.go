package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a stored upstream response.
type CacheKey struct {
	// Endpoint is the upstream path (e.g., "/character" or "/episode/28")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"page": "2", "name": "rick"})
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: catalog:endpoint:query1=val1:query2=val2
//
// Example:
//
//	catalog:character:name=rick:page=2
func (k CacheKey) String() string {
	parts := []string{"catalog"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params are sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
