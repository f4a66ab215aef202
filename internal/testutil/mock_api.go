// Package testutil provides a fake upstream catalog API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is an httptest server serving a small fixture dataset with the
// upstream's paging, filtering and 404 conventions. Responses can be
// overridden per path and failures injected.
type MockAPI struct {
	server *httptest.Server

	mu         sync.RWMutex
	handlers   map[string]http.HandlerFunc
	failures   map[string]*failure
	requests   map[string]int
	total      int
	etags      bool
	conditions int
	lastHeader http.Header

	Characters map[int]catalog.Character
	Locations  map[int]catalog.Location
	Episodes   map[int]catalog.Episode
}

type failure struct {
	status    int
	remaining int // negative means forever
}

// NewMockAPI starts a fake upstream populated with the default fixtures:
//   - 30 characters; character 1 appears in episodes 1..8
//   - 3 locations; location 1 has residents 1..23
//   - 10 episodes; episode 1 features characters 1..12
func NewMockAPI() *MockAPI {
	m := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		failures: make(map[string]*failure),
		requests: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	m.seed()
	return m
}

// URL returns the base URL of the fake upstream.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Locator returns the reference locator for a record.
func (m *MockAPI) Locator(kind catalog.Kind, id int) string {
	return m.server.URL + kind.ResourcePath(id)
}

// Locators returns locators for ids first..last inclusive.
func (m *MockAPI) Locators(kind catalog.Kind, first, last int) []string {
	out := make([]string, 0, last-first+1)
	for id := first; id <= last; id++ {
		out = append(out, m.Locator(kind, id))
	}
	return out
}

// Reset clears tracking counters and injected failures.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[string]*failure)
	m.requests = make(map[string]int)
	m.total = 0
	m.conditions = 0
	m.lastHeader = nil
}

// SetHandler overrides the handler for an exact path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for an exact path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Fail makes the next n requests to path answer with status. A negative n
// fails every request.
func (m *MockAPI) Fail(path string, status, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[path] = &failure{status: status, remaining: n}
}

// EnableETags turns on ETag validators and 304 answers for single records.
func (m *MockAPI) EnableETags() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etags = true
}

// Requests returns how many requests hit path.
func (m *MockAPI) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockAPI) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditions
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

func (m *MockAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	m.mu.Lock()
	m.total++
	m.requests[path]++
	m.lastHeader = r.Header.Clone()
	if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
		m.conditions++
	}
	handler, custom := m.handlers[path]
	var failStatus int
	if f, ok := m.failures[path]; ok && f.remaining != 0 {
		failStatus = f.status
		if f.remaining > 0 {
			f.remaining--
		}
	}
	m.mu.Unlock()

	if failStatus != 0 {
		writeJSON(w, failStatus, map[string]string{"error": http.StatusText(failStatus)})
		return
	}
	if custom {
		handler(w, r)
		return
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	kind := catalog.Kind(segments[0])
	switch {
	case len(segments) == 1 && isKind(kind):
		m.serveList(w, r, kind)
	case len(segments) == 2 && isKind(kind):
		m.serveOne(w, r, kind, segments[1])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "There is nothing here"})
	}
}

func isKind(k catalog.Kind) bool {
	for _, known := range catalog.Kinds {
		if k == known {
			return true
		}
	}
	return false
}

type named struct {
	id   int
	name string
	rec  any
}

func (m *MockAPI) records(kind catalog.Kind) []named {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []named
	switch kind {
	case catalog.KindCharacter:
		for id, c := range m.Characters {
			out = append(out, named{id, c.Name, c})
		}
	case catalog.KindLocation:
		for id, l := range m.Locations {
			out = append(out, named{id, l.Name, l})
		}
	case catalog.KindEpisode:
		for id, e := range m.Episodes {
			out = append(out, named{id, e.Name, e})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (m *MockAPI) serveList(w http.ResponseWriter, r *http.Request, kind catalog.Kind) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "There is nothing here"})
			return
		}
		page = p
	}

	var matches []any
	for _, rec := range m.records(kind) {
		if name == "" || strings.Contains(strings.ToLower(rec.name), name) {
			matches = append(matches, rec.rec)
		}
	}

	pages := catalog.ExpectedPages(len(matches))
	if len(matches) == 0 || page > pages {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "There is nothing here"})
		return
	}

	start := (page - 1) * catalog.PageSize
	end := start + catalog.PageSize
	if end > len(matches) {
		end = len(matches)
	}

	info := catalog.Info{Count: len(matches), Pages: pages}
	if page < pages {
		next := m.pageURL(kind, page+1, name)
		info.Next = &next
	}
	if page > 1 {
		prev := m.pageURL(kind, page-1, name)
		info.Prev = &prev
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"info":    info,
		"results": matches[start:end],
	})
}

func (m *MockAPI) pageURL(kind catalog.Kind, page int, name string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if name != "" {
		q.Set("name", name)
	}
	return m.server.URL + kind.Path() + "?" + q.Encode()
}

func (m *MockAPI) serveOne(w http.ResponseWriter, r *http.Request, kind catalog.Kind, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Hey! you must provide an id"})
		return
	}

	var rec any
	for _, candidate := range m.records(kind) {
		if candidate.id == id {
			rec = candidate.rec
			break
		}
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("%s not found", kind)})
		return
	}

	m.mu.RLock()
	etags := m.etags
	m.mu.RUnlock()

	if etags {
		etag := fmt.Sprintf(`W/"%s-%d"`, kind, id)
		w.Header().Set("ETag", etag)
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).Format(http.TimeFormat))
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var characterNames = []string{
	"Rick Sanchez", "Morty Smith", "Summer Smith", "Beth Smith", "Jerry Smith",
	"Abadango Cluster Princess", "Abradolf Lincler", "Adjudicator Rick", "Agency Director", "Alan Rails",
	"Albert Einstein", "Alexander", "Alien Googah", "Alien Morty", "Alien Rick",
	"Amish Cyborg", "Annie", "Antenna Morty", "Antenna Rick", "Ants in my Eyes Johnson",
	"Aqua Morty", "Aqua Rick", "Arcade Alien", "Armagheadon", "Armothy",
	"Arthricia", "Artist Morty", "Attila Starwar", "Baby Legs", "Baby Poopybutthole",
}

var episodeNames = []string{
	"Pilot", "Lawnmower Dog", "Anatomy Park", "M. Night Shaym-Aliens!", "Meeseeks and Destroy",
	"Rick Potion #9", "Raising Gazorpazorp", "Rixty Minutes", "Something Ricked This Way Comes", "Close Rick-counters of the Rick Kind",
}

// seed builds the default fixtures. Locators point back at the server.
func (m *MockAPI) seed() {
	m.Characters = make(map[int]catalog.Character)
	m.Locations = make(map[int]catalog.Location)
	m.Episodes = make(map[int]catalog.Episode)

	earth := catalog.Ref{Name: "Earth (C-137)", URL: m.Locator(catalog.KindLocation, 1)}
	for i, name := range characterNames {
		id := i + 1
		status := catalog.StatusAlive
		switch {
		case id%7 == 0:
			status = catalog.StatusDead
		case id%5 == 0:
			status = catalog.StatusUnknown
		}
		episodes := []string{m.Locator(catalog.KindEpisode, 1)}
		if id == 1 {
			episodes = m.Locators(catalog.KindEpisode, 1, 8)
		}
		m.Characters[id] = catalog.Character{
			ID:       id,
			Name:     name,
			Status:   status,
			Species:  "Human",
			Gender:   "Male",
			Origin:   earth,
			Location: earth,
			Image:    fmt.Sprintf("%s/character/avatar/%d.jpeg", m.server.URL, id),
			Episode:  episodes,
			URL:      m.Locator(catalog.KindCharacter, id),
			Created:  "2017-11-04T18:48:46.250Z",
		}
	}

	m.Locations[1] = catalog.Location{
		ID: 1, Name: "Earth (C-137)", Type: "Planet", Dimension: "Dimension C-137",
		Residents: m.Locators(catalog.KindCharacter, 1, 23),
		URL:       m.Locator(catalog.KindLocation, 1),
		Created:   "2017-11-10T12:42:04.162Z",
	}
	m.Locations[2] = catalog.Location{
		ID: 2, Name: "Abadango", Type: "Cluster", Dimension: "unknown",
		Residents: m.Locators(catalog.KindCharacter, 6, 6),
		URL:       m.Locator(catalog.KindLocation, 2),
		Created:   "2017-11-10T13:06:38.182Z",
	}
	m.Locations[3] = catalog.Location{
		ID: 3, Name: "Citadel of Ricks", Type: "Space station", Dimension: "unknown",
		Residents: []string{},
		URL:       m.Locator(catalog.KindLocation, 3),
		Created:   "2017-11-10T13:08:13.191Z",
	}

	for i, name := range episodeNames {
		id := i + 1
		characters := m.Locators(catalog.KindCharacter, 1, 2)
		if id == 1 {
			characters = m.Locators(catalog.KindCharacter, 1, 12)
		}
		m.Episodes[id] = catalog.Episode{
			ID:         id,
			Name:       name,
			AirDate:    "December 2, 2013",
			Code:       fmt.Sprintf("S01E%02d", id),
			Characters: characters,
			URL:        m.Locator(catalog.KindEpisode, id),
			Created:    "2017-11-10T12:56:33.798Z",
		}
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"Too many requests"}`,
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfter),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
