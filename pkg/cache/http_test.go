package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	lastMod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	header := http.Header{}
	header.Set("ETag", `W/"1a2b"`)
	header.Set("Last-Modified", lastMod.Format(http.TimeFormat))

	entry := NewEntry(http.StatusOK, header, []byte(`{"id":1}`))

	if entry.ETag != `W/"1a2b"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", entry.StatusCode)
	}
	if string(entry.Data) != `{"id":1}` {
		t.Errorf("Data = %s", entry.Data)
	}

	// No Expires header: DefaultTTL applies
	if ttl := entry.TTL(); ttl < DefaultTTL-time.Second || ttl > DefaultTTL {
		t.Errorf("TTL() = %v, want ~%v", ttl, DefaultTTL)
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		header http.Header
		want   time.Time
	}{
		{
			name:   "valid expires header",
			header: http.Header{"Expires": []string{now.Add(10 * time.Minute).Format(http.TimeFormat)}},
			want:   now.Add(10 * time.Minute),
		},
		{
			name:   "no expires header",
			header: http.Header{},
			want:   now.Add(DefaultTTL),
		},
		{
			name:   "invalid expires header",
			header: http.Header{"Expires": []string{"not a date"}},
			want:   now.Add(DefaultTTL),
		},
		{
			name:   "expires in the past",
			header: http.Header{"Expires": []string{now.Add(-time.Hour).Format(http.TimeFormat)}},
			want:   now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExpires(tt.header)
			if diff := got.Sub(tt.want); diff < -2*time.Second || diff > 2*time.Second {
				t.Errorf("parseExpires() = %v, want approximately %v", got, tt.want)
			}
		})
	}
}

func TestShouldMakeConditionalRequest(t *testing.T) {
	tests := []struct {
		name  string
		entry *CacheEntry
		want  bool
	}{
		{"nil entry", nil, false},
		{"entry with ETag", &CacheEntry{ETag: `"abc"`}, true},
		{"entry with Last-Modified", &CacheEntry{LastModified: time.Now()}, true},
		{"entry without validators", &CacheEntry{Data: []byte("x")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldMakeConditionalRequest(tt.entry); got != tt.want {
				t.Errorf("ShouldMakeConditionalRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddConditionalHeaders(t *testing.T) {
	tests := []struct {
		name       string
		entry      *CacheEntry
		wantHeader string
		wantValue  string
	}{
		{
			name:       "If-None-Match from ETag",
			entry:      &CacheEntry{ETag: `"abc123"`},
			wantHeader: "If-None-Match",
			wantValue:  `"abc123"`,
		},
		{
			name:       "If-Modified-Since from Last-Modified",
			entry:      &CacheEntry{LastModified: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)},
			wantHeader: "If-Modified-Since",
			wantValue:  "Sun, 01 Jan 2023 12:00:00 GMT",
		},
		{
			name: "ETag wins",
			entry: &CacheEntry{
				ETag:         `"abc123"`,
				LastModified: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
			},
			wantHeader: "If-None-Match",
			wantValue:  `"abc123"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "https://example.com/character", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("Header %s = %v, want %v", tt.wantHeader, got, tt.wantValue)
			}
		})
	}
}

func TestAddConditionalHeaders_NilInputs(t *testing.T) {
	// Should not panic with nil inputs
	AddConditionalHeaders(nil, &CacheEntry{ETag: "test"})
	AddConditionalHeaders(&http.Request{Header: http.Header{}}, nil)
}
