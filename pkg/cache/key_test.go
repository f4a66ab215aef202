package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "list endpoint no params",
			key: CacheKey{
				Endpoint: "/character",
			},
			want: "catalog:character",
		},
		{
			name: "single resource",
			key: CacheKey{
				Endpoint: "/episode/28",
			},
			want: "catalog:episode/28",
		},
		{
			name: "list with page",
			key: CacheKey{
				Endpoint:    "/location",
				QueryParams: url.Values{"page": []string{"3"}},
			},
			want: "catalog:location:page=3",
		},
		{
			name: "list with page and name (sorted)",
			key: CacheKey{
				Endpoint: "/character/",
				QueryParams: url.Values{
					"page": []string{"2"},
					"name": []string{"rick"},
				},
			},
			want: "catalog:character:name=rick:page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Determinism(t *testing.T) {
	key := CacheKey{
		Endpoint: "/episode",
		QueryParams: url.Values{
			"page": []string{"1"},
			"name": []string{"pilot"},
			"zzz":  []string{"last"},
		},
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Errorf("iteration %d = %v, want %v (not deterministic)", i, got, first)
		}
	}
}
