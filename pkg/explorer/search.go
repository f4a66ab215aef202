package explorer

import (
	"context"
	"strings"

	"github.com/Sternrassler/catalog-explorer/pkg/batch"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// SearchResults holds one page of matches per kind, kept as separate
// sections.
type SearchResults struct {
	Query      string
	Page       int
	Characters *catalog.Page[catalog.Character]
	Locations  *catalog.Page[catalog.Location]
	Episodes   *catalog.Page[catalog.Episode]

	// Failed lists the kinds whose query failed and was replaced by an
	// empty page.
	Failed []catalog.Kind
}

// TotalCount is the sum of the three branch counts.
func (r *SearchResults) TotalCount() int {
	return r.Characters.Info.Count + r.Locations.Info.Count + r.Episodes.Info.Count
}

// TotalPages is the largest page count among the branches.
func (r *SearchResults) TotalPages() int {
	return max(r.Characters.Info.Pages, r.Locations.Info.Pages, r.Episodes.Info.Pages)
}

// Empty reports whether no branch matched anything.
func (r *SearchResults) Empty() bool {
	return r.TotalCount() == 0
}

// Search runs the three list queries for query concurrently against the
// same page. A failed branch is logged and replaced by an empty page, so
// Search always returns a result. A blank query matches nothing and sends
// no requests.
func (e *Explorer) Search(ctx context.Context, query string, page int) *SearchResults {
	results := &SearchResults{
		Query:      strings.TrimSpace(query),
		Page:       catalog.NormalizePage(page),
		Characters: catalog.EmptyPage[catalog.Character](),
		Locations:  catalog.EmptyPage[catalog.Location](),
		Episodes:   catalog.EmptyPage[catalog.Episode](),
	}
	if results.Query == "" {
		return results
	}

	// Each branch assigns only its own section.
	branch := func(kind catalog.Kind, run func(ctx context.Context) error) batch.Task[catalog.Kind] {
		return func(ctx context.Context) (catalog.Kind, error) {
			return kind, run(ctx)
		}
	}

	outcomes := batch.Settle(ctx,
		branch(catalog.KindCharacter, func(ctx context.Context) error {
			p, err := e.src.ListCharacters(ctx, results.Page, results.Query)
			if err == nil {
				results.Characters = p
			}
			return err
		}),
		branch(catalog.KindLocation, func(ctx context.Context) error {
			p, err := e.src.ListLocations(ctx, results.Page, results.Query)
			if err == nil {
				results.Locations = p
			}
			return err
		}),
		branch(catalog.KindEpisode, func(ctx context.Context) error {
			p, err := e.src.ListEpisodes(ctx, results.Page, results.Query)
			if err == nil {
				results.Episodes = p
			}
			return err
		}),
	)

	for _, outcome := range outcomes {
		if outcome.Err == nil {
			continue
		}
		results.Failed = append(results.Failed, outcome.Value)
		searchBranchFailuresTotal.WithLabelValues(string(outcome.Value)).Inc()
		e.logger.Warn().
			Err(outcome.Err).
			Str("kind", string(outcome.Value)).
			Str("query", results.Query).
			Int("page", results.Page).
			Msg("Search branch failed, showing no results for it")
	}

	e.logger.Debug().
		Str("query", results.Query).
		Int("page", results.Page).
		Int("total_count", results.TotalCount()).
		Int("total_pages", results.TotalPages()).
		Msg("Search complete")

	return results
}
