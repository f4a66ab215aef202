// Package cache provides an optional Redis-backed revalidation store for
// upstream catalog responses.
//
// The store never answers a request on its own: every call still reaches
// the upstream. It only keeps the last body together with its validators
// (ETag, Last-Modified) so the client can send a conditional request and
// reuse the stored body when the upstream answers 304 Not Modified.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Endpoint:    "/character",
//		QueryParams: url.Values{"page": []string{"1"}, "name": []string{"rick"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Plain request
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// The upstream returns 304 if the body is unchanged
//	}
//
// # Metrics
//
//   - catalog_cache_hits_total{layer="redis"} - Stored entries found
//   - catalog_cache_misses_total - Lookups without a stored entry
//   - catalog_cache_size_bytes{layer="redis"} - Bytes written and read
//   - catalog_conditional_requests_total - Conditional requests sent
//   - catalog_304_responses_total - Bodies reused after 304
//   - catalog_cache_errors_total{operation} - Store operation errors
package cache
