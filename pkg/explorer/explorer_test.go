package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/catalog-explorer/internal/testutil"
	"github.com/Sternrassler/catalog-explorer/pkg/batch"
	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
)

var errUpstream = errors.New("upstream unavailable")

// fakeSource is an in-memory Source with per-kind failure switches.
type fakeSource struct {
	failCharacters bool
	failLocations  bool
	failEpisodes   bool
	failEpisodeIDs map[int]bool

	listCalls    atomic.Int32
	episodeCalls atomic.Int32
}

func page[T any](count, pages int, results ...T) *catalog.Page[T] {
	return &catalog.Page[T]{Info: catalog.Info{Count: count, Pages: pages}, Results: results}
}

func (f *fakeSource) ListCharacters(ctx context.Context, p int, name string) (*catalog.Page[catalog.Character], error) {
	f.listCalls.Add(1)
	if f.failCharacters {
		return nil, errUpstream
	}
	return page(25, 2, catalog.Character{ID: 1, Name: "Rick Sanchez"}), nil
}

func (f *fakeSource) ListLocations(ctx context.Context, p int, name string) (*catalog.Page[catalog.Location], error) {
	f.listCalls.Add(1)
	if f.failLocations {
		return nil, &client.APIError{StatusCode: http.StatusInternalServerError}
	}
	return page(3, 1, catalog.Location{ID: 1}), nil
}

func (f *fakeSource) ListEpisodes(ctx context.Context, p int, name string) (*catalog.Page[catalog.Episode], error) {
	f.listCalls.Add(1)
	if f.failEpisodes {
		return nil, errUpstream
	}
	return page(61, 4, catalog.Episode{ID: 1}), nil
}

func (f *fakeSource) GetCharacter(ctx context.Context, id int) (*catalog.Character, error) {
	episodes := make([]string, 8)
	for i := range episodes {
		episodes[i] = fmt.Sprintf("https://rickandmortyapi.com/api/episode/%d", i+1)
	}
	return &catalog.Character{ID: id, Episode: episodes}, nil
}

func (f *fakeSource) GetLocation(ctx context.Context, id int) (*catalog.Location, error) {
	return nil, errUpstream
}

func (f *fakeSource) GetEpisode(ctx context.Context, id int) (*catalog.Episode, error) {
	f.episodeCalls.Add(1)
	if f.failEpisodeIDs[id] {
		return nil, errUpstream
	}
	return &catalog.Episode{ID: id, Code: fmt.Sprintf("S01E%02d", id)}, nil
}

func TestSearch_AllBranchesSucceed(t *testing.T) {
	src := &fakeSource{}
	results := New(src, batch.DefaultConfig()).Search(context.Background(), "rick", 1)

	if results.TotalCount() != 25+3+61 {
		t.Errorf("TotalCount() = %d, want 89", results.TotalCount())
	}
	if results.TotalPages() != 4 {
		t.Errorf("TotalPages() = %d, want 4", results.TotalPages())
	}
	if len(results.Failed) != 0 {
		t.Errorf("Failed = %v, want none", results.Failed)
	}
	if src.listCalls.Load() != 3 {
		t.Errorf("list calls = %d, want 3", src.listCalls.Load())
	}
}

func TestSearch_FailedBranchIsEmpty(t *testing.T) {
	src := &fakeSource{failLocations: true}
	results := New(src, batch.DefaultConfig()).Search(context.Background(), "rick", 1)

	if results.Locations.Info.Count != 0 || results.Locations.Info.Pages != 0 || len(results.Locations.Results) != 0 {
		t.Errorf("Locations = %+v, want empty page", results.Locations)
	}
	if len(results.Characters.Results) != 1 || len(results.Episodes.Results) != 1 {
		t.Error("surviving branches should keep their results")
	}
	if results.TotalPages() != 4 {
		t.Errorf("TotalPages() = %d, want max of surviving branches (4)", results.TotalPages())
	}
	if results.TotalCount() != 25+61 {
		t.Errorf("TotalCount() = %d, want 86", results.TotalCount())
	}
	if len(results.Failed) != 1 || results.Failed[0] != catalog.KindLocation {
		t.Errorf("Failed = %v, want [location]", results.Failed)
	}
}

func TestSearch_AllBranchesFail(t *testing.T) {
	src := &fakeSource{failCharacters: true, failLocations: true, failEpisodes: true}
	results := New(src, batch.DefaultConfig()).Search(context.Background(), "rick", 2)

	if !results.Empty() || results.TotalPages() != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
	if len(results.Failed) != 3 {
		t.Errorf("Failed = %v, want all three kinds", results.Failed)
	}
	if results.Page != 2 {
		t.Errorf("Page = %d, want 2", results.Page)
	}
}

func TestSearch_BlankQuerySendsNothing(t *testing.T) {
	src := &fakeSource{}
	results := New(src, batch.DefaultConfig()).Search(context.Background(), "   ", 1)

	if !results.Empty() {
		t.Error("blank query should match nothing")
	}
	if src.listCalls.Load() != 0 {
		t.Errorf("list calls = %d, want 0", src.listCalls.Load())
	}
}

func TestCharacterDetail_Preview(t *testing.T) {
	src := &fakeSource{}
	detail, err := New(src, batch.DefaultConfig()).CharacterDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("CharacterDetail() error = %v", err)
	}

	if len(detail.Episodes) != 5 {
		t.Errorf("len(Episodes) = %d, want 5", len(detail.Episodes))
	}
	if detail.TotalEpisodes != 8 || !detail.HasMore {
		t.Errorf("TotalEpisodes = %d HasMore = %v, want 8 true", detail.TotalEpisodes, detail.HasMore)
	}
	if src.episodeCalls.Load() != 5 {
		t.Errorf("episode calls = %d, want 5", src.episodeCalls.Load())
	}
}

func TestCharacterDetail_PreviewFailureShowsNothing(t *testing.T) {
	src := &fakeSource{failEpisodeIDs: map[int]bool{3: true}}
	detail, err := New(src, batch.DefaultConfig()).CharacterDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("CharacterDetail() error = %v", err)
	}

	if detail.EpisodesErr == nil {
		t.Error("EpisodesErr should be set")
	}
	if len(detail.Episodes) != 0 {
		t.Errorf("Episodes = %v, want none on preview failure", detail.Episodes)
	}
	if src.episodeCalls.Load() != 5 {
		t.Errorf("episode calls = %d, want exactly 5", src.episodeCalls.Load())
	}
}

func TestLocationDetail_PrimaryFailure(t *testing.T) {
	_, err := New(&fakeSource{}, batch.DefaultConfig()).LocationDetail(context.Background(), 1)
	if !errors.Is(err, errUpstream) {
		t.Errorf("error = %v, want upstream failure", err)
	}
}

func TestCharacterEpisodes_DropsFailures(t *testing.T) {
	src := &fakeSource{failEpisodeIDs: map[int]bool{2: true}}
	_, episodes, err := New(src, batch.DefaultConfig()).CharacterEpisodes(context.Background(), 1)
	if err != nil {
		t.Fatalf("CharacterEpisodes() error = %v", err)
	}
	if len(episodes) != 7 {
		t.Errorf("len(episodes) = %d, want 7", len(episodes))
	}
}

// newMockExplorer wires a real client to the fake upstream.
func newMockExplorer(t *testing.T) (*Explorer, *testutil.MockAPI) {
	t.Helper()

	mock := testutil.NewMockAPI()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig("CatalogExplorerTest/1.0")
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerSecond = 0
	cfg.Retry.Sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return New(c, batch.DefaultConfig()), mock
}

func TestLocationDetail_ResidentsOverMockAPI(t *testing.T) {
	e, mock := newMockExplorer(t)
	mock.Fail("/character/15", http.StatusInternalServerError, -1)

	detail, err := e.LocationDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("LocationDetail() error = %v", err)
	}
	if len(detail.Residents) != 22 {
		t.Errorf("len(Residents) = %d, want 22", len(detail.Residents))
	}
	if got := mock.Requests("/character/15"); got != 3 {
		t.Errorf("requests for failing resident = %d, want 3 attempts", got)
	}
}

func TestEpisodeDetail_OverMockAPI(t *testing.T) {
	e, _ := newMockExplorer(t)

	detail, err := e.EpisodeDetail(context.Background(), 1)
	if err != nil {
		t.Fatalf("EpisodeDetail() error = %v", err)
	}
	if len(detail.Characters) != 12 {
		t.Errorf("len(Characters) = %d, want 12", len(detail.Characters))
	}
	if !detail.HasNumber || detail.Number.Season != 1 || detail.Number.Episode != 1 {
		t.Errorf("Number = %+v HasNumber = %v", detail.Number, detail.HasNumber)
	}
}

func TestSearch_OverMockAPI(t *testing.T) {
	e, mock := newMockExplorer(t)
	mock.Fail("/location", http.StatusInternalServerError, -1)

	results := e.Search(context.Background(), "rick", 1)

	if len(results.Characters.Results) == 0 {
		t.Error("expected character matches for rick")
	}
	if len(results.Locations.Results) != 0 {
		t.Error("failed location branch should be empty")
	}
	if results.TotalPages() != 1 {
		t.Errorf("TotalPages() = %d, want 1", results.TotalPages())
	}
}
