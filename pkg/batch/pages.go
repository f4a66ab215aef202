package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/rs/zerolog/log"
)

// PagerConfig holds configuration for FetchAllPages.
type PagerConfig struct {
	// MaxConcurrency is the maximum number of pages in flight.
	MaxConcurrency int

	// Timeout per page fetch. Zero means none.
	Timeout time.Duration
}

// DefaultPagerConfig returns 4 workers and no per-page timeout.
func DefaultPagerConfig() PagerConfig {
	return PagerConfig{
		MaxConcurrency: 4,
	}
}

// PageFunc fetches one page of a list query.
type PageFunc[T any] func(ctx context.Context, page int) (*catalog.Page[T], error)

type pageResult[T any] struct {
	page    int
	results []T
	err     error
}

// FetchAllPages fetches page 1 to learn the page count, then the remaining
// pages with a worker pool. Results are concatenated in page order. The first
// failed page aborts the walk and its error is returned.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T], config PagerConfig) ([]T, error) {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	start := time.Now()

	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch first page: %w", err)
	}

	totalPages := first.Info.Pages
	if totalPages <= 1 {
		return first.Results, nil
	}

	log.Debug().
		Int("total_pages", totalPages).
		Int("count", first.Info.Count).
		Msg("Starting parallel page fetch")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pageQueue := make(chan int, totalPages-1)
	for page := 2; page <= totalPages; page++ {
		pageQueue <- page
	}
	close(pageQueue)

	results := make(chan pageResult[T], totalPages-1)

	var wg sync.WaitGroup
	for i := 0; i < config.MaxConcurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for page := range pageQueue {
				if ctx.Err() != nil {
					log.Debug().Int("worker_id", workerID).Msg("Worker stopping (context cancelled)")
					return
				}

				pageCtx, pageCancel := ctx, context.CancelFunc(func() {})
				if config.Timeout > 0 {
					pageCtx, pageCancel = context.WithTimeout(ctx, config.Timeout)
				}
				p, err := fetch(pageCtx, page)
				pageCancel()

				if err != nil {
					results <- pageResult[T]{page: page, err: err}
					return
				}
				results <- pageResult[T]{page: page, results: p.Results}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	pages := make([][]T, totalPages+1)
	pages[1] = first.Results
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch page %d: %w", result.page, result.err)
				cancel()
			}
			continue
		}
		pages[result.page] = result.results
	}
	if firstErr != nil {
		return nil, firstErr
	}

	all := make([]T, 0, first.Info.Count)
	for _, p := range pages[1:] {
		all = append(all, p...)
	}

	log.Debug().
		Int("pages", totalPages).
		Int("records", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all, nil
}
