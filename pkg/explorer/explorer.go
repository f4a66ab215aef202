// Package explorer composes the catalog client into the operations a view
// layer needs: aggregated search and record detail views with their related
// records resolved.
package explorer

import (
	"context"

	"github.com/Sternrassler/catalog-explorer/pkg/batch"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var searchBranchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_search_branch_failures_total",
	Help: "Total number of aggregated search branches that failed by kind",
}, []string{"kind"})

// Source is the data access surface the explorer depends on.
// *client.Client satisfies it.
type Source interface {
	ListCharacters(ctx context.Context, page int, name string) (*catalog.Page[catalog.Character], error)
	ListLocations(ctx context.Context, page int, name string) (*catalog.Page[catalog.Location], error)
	ListEpisodes(ctx context.Context, page int, name string) (*catalog.Page[catalog.Episode], error)
	GetCharacter(ctx context.Context, id int) (*catalog.Character, error)
	GetLocation(ctx context.Context, id int) (*catalog.Location, error)
	GetEpisode(ctx context.Context, id int) (*catalog.Episode, error)
}

// Explorer answers view-level queries. It holds no state between calls.
type Explorer struct {
	src        Source
	characters *batch.Resolver[catalog.Character]
	episodes   *batch.Resolver[catalog.Episode]
	config     batch.Config
	logger     zerolog.Logger
}

// New creates an explorer over src.
func New(src Source, config batch.Config) *Explorer {
	return &Explorer{
		src:        src,
		characters: batch.NewResolver[catalog.Character](catalog.KindCharacter, src.GetCharacter, config),
		episodes:   batch.NewResolver[catalog.Episode](catalog.KindEpisode, src.GetEpisode, config),
		config:     config,
		logger:     logging.NewLogger("explorer"),
	}
}
