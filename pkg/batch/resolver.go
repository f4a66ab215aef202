package batch

import (
	"context"
	"fmt"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var batchDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_batch_dropped_total",
	Help: "Total number of references dropped during isolated resolution by kind",
}, []string{"kind"})

// Config holds resolver configuration.
type Config struct {
	// ChunkSize is how many ids are in flight at once during ResolveAll.
	ChunkSize int

	// PreviewLimit is how many leading ids ResolvePreview fetches.
	PreviewLimit int
}

// DefaultConfig returns chunks of 10 and a preview of 5.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    10,
		PreviewLimit: 5,
	}
}

// FetchFunc fetches a single record by id.
type FetchFunc[T any] func(ctx context.Context, id int) (*T, error)

// Resolver turns reference locators into records.
type Resolver[T any] struct {
	kind   catalog.Kind
	fetch  FetchFunc[T]
	config Config
}

// NewResolver creates a resolver for records of the given kind.
func NewResolver[T any](kind catalog.Kind, fetch FetchFunc[T], config Config) *Resolver[T] {
	if config.ChunkSize <= 0 {
		config.ChunkSize = 10
	}
	if config.PreviewLimit <= 0 {
		config.PreviewLimit = 5
	}

	return &Resolver[T]{
		kind:   kind,
		fetch:  fetch,
		config: config,
	}
}

func (r *Resolver[T]) tasks(ids []int) []Task[*T] {
	tasks := make([]Task[*T], len(ids))
	for i, id := range ids {
		tasks[i] = func(ctx context.Context) (*T, error) {
			return r.fetch(ctx, id)
		}
	}
	return tasks
}

// ResolveAll resolves every locator chunk by chunk. A chunk starts only
// after the previous one has settled. Failed fetches and unparsable
// locators are logged and dropped; the rest keep input order.
func (r *Resolver[T]) ResolveAll(ctx context.Context, locators []string) []T {
	ids, invalid := catalog.LocatorIDs(locators)
	for _, locator := range invalid {
		log.Warn().
			Str("kind", string(r.kind)).
			Str("locator", locator).
			Msg("Dropping unparsable reference")
		batchDroppedTotal.WithLabelValues(string(r.kind)).Inc()
	}

	results := make([]T, 0, len(ids))
	for start := 0; start < len(ids); start += r.config.ChunkSize {
		end := start + r.config.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		for i, outcome := range Settle(ctx, r.tasks(chunk)...) {
			if outcome.Err != nil {
				log.Warn().
					Err(outcome.Err).
					Str("kind", string(r.kind)).
					Int("id", chunk[i]).
					Msg("Dropping unresolved reference")
				batchDroppedTotal.WithLabelValues(string(r.kind)).Inc()
				continue
			}
			results = append(results, *outcome.Value)
		}
	}

	log.Debug().
		Str("kind", string(r.kind)).
		Int("requested", len(locators)).
		Int("resolved", len(results)).
		Msg("Reference resolution complete")

	return results
}

// ResolvePreview resolves only the first PreviewLimit locators, all at once.
// Any failure fails the whole call. Locators past the limit are never
// fetched.
func (r *Resolver[T]) ResolvePreview(ctx context.Context, locators []string) ([]T, error) {
	if len(locators) > r.config.PreviewLimit {
		locators = locators[:r.config.PreviewLimit]
	}

	ids := make([]int, len(locators))
	for i, locator := range locators {
		id, err := catalog.LocatorID(locator)
		if err != nil {
			return nil, fmt.Errorf("resolve %s preview: %w", r.kind, err)
		}
		ids[i] = id
	}

	outcomes := Settle(ctx, r.tasks(ids)...)

	results := make([]T, 0, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			return nil, fmt.Errorf("resolve %s %d: %w", r.kind, ids[i], outcome.Err)
		}
		results = append(results, *outcome.Value)
	}

	return results, nil
}
