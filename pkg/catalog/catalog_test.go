package catalog

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestLocatorID(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    int
		wantErr bool
	}{
		{"episode url", "https://rickandmortyapi.com/api/episode/28", 28, false},
		{"trailing slash", "https://rickandmortyapi.com/api/character/1/", 1, false},
		{"bare id", "42", 42, false},
		{"empty", "", 0, true},
		{"non numeric", "https://rickandmortyapi.com/api/location/", 0, true},
		{"zero id", "https://rickandmortyapi.com/api/location/0", 0, true},
		{"negative id", "https://rickandmortyapi.com/api/location/-3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocatorID(tt.locator)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LocatorID(%q) error = %v, wantErr %v", tt.locator, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidLocator) {
				t.Errorf("error = %v, want ErrInvalidLocator", err)
			}
			if got != tt.want {
				t.Errorf("LocatorID(%q) = %d, want %d", tt.locator, got, tt.want)
			}
		})
	}
}

func TestLocatorIDs_KeepsOrderAndReportsInvalid(t *testing.T) {
	ids, invalid := LocatorIDs([]string{
		"https://rickandmortyapi.com/api/character/3",
		"garbage",
		"https://rickandmortyapi.com/api/character/1",
	})

	if len(ids) != 2 || ids[0] != 3 || ids[1] != 1 {
		t.Errorf("ids = %v, want [3 1]", ids)
	}
	if len(invalid) != 1 || invalid[0] != "garbage" {
		t.Errorf("invalid = %v, want [garbage]", invalid)
	}
}

func TestParseEpisodeCode(t *testing.T) {
	tests := []struct {
		code   string
		want   EpisodeNumber
		wantOK bool
	}{
		{"S03E07", EpisodeNumber{Season: 3, Episode: 7}, true},
		{"S01E01", EpisodeNumber{Season: 1, Episode: 1}, true},
		{"S10E11", EpisodeNumber{Season: 10, Episode: 11}, true},
		{"Special", EpisodeNumber{}, false},
		{"", EpisodeNumber{}, false},
		{"s01e01", EpisodeNumber{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := ParseEpisodeCode(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("ParseEpisodeCode(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseEpisodeCode(%q) = %+v, want %+v", tt.code, got, tt.want)
			}
		})
	}
}

func TestEpisode_SeasonEpisode(t *testing.T) {
	ep := Episode{Code: "S02E04"}
	n, ok := ep.SeasonEpisode()
	if !ok || n.Season != 2 || n.Episode != 4 {
		t.Errorf("SeasonEpisode() = %+v, %v; want {2 4}, true", n, ok)
	}
}

func TestExpectedPages(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{20, 1},
		{21, 2},
		{826, 42},
		{-5, 0},
	}

	for _, tt := range tests {
		if got := ExpectedPages(tt.count); got != tt.want {
			t.Errorf("ExpectedPages(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestInfo_Consistent(t *testing.T) {
	if !(Info{Count: 826, Pages: 42}).Consistent() {
		t.Error("826/42 should be consistent")
	}
	if (Info{Count: 826, Pages: 41}).Consistent() {
		t.Error("826/41 should not be consistent")
	}
	if !(Info{}).Consistent() {
		t.Error("empty info should be consistent")
	}
}

func TestEmptyPage(t *testing.T) {
	p := EmptyPage[Character]()
	if p.Info.Count != 0 || p.Info.Pages != 0 {
		t.Errorf("Info = %+v, want zero", p.Info)
	}
	if p.Results == nil || len(p.Results) != 0 {
		t.Errorf("Results = %v, want empty non-nil slice", p.Results)
	}
}

func TestNormalizePage(t *testing.T) {
	if got := NormalizePage(0); got != 1 {
		t.Errorf("NormalizePage(0) = %d, want 1", got)
	}
	if got := NormalizePage(-4); got != 1 {
		t.Errorf("NormalizePage(-4) = %d, want 1", got)
	}
	if got := NormalizePage(7); got != 7 {
		t.Errorf("NormalizePage(7) = %d, want 7", got)
	}
}

func TestKind_Paths(t *testing.T) {
	if got := KindLocation.Path(); got != "/location" {
		t.Errorf("Path() = %q, want /location", got)
	}
	if got := KindEpisode.ResourcePath(28); got != "/episode/28" {
		t.Errorf("ResourcePath(28) = %q, want /episode/28", got)
	}
	if got := KindCharacter.Plural(); got != "characters" {
		t.Errorf("Plural() = %q, want characters", got)
	}
}

func TestDecodeCharacterPage(t *testing.T) {
	body := `{
		"info": {"count": 1, "pages": 1, "next": null, "prev": null},
		"results": [{
			"id": 1,
			"name": "Rick Sanchez",
			"status": "Alive",
			"species": "Human",
			"type": "",
			"gender": "Male",
			"origin": {"name": "Earth (C-137)", "url": "https://rickandmortyapi.com/api/location/1"},
			"location": {"name": "Citadel of Ricks", "url": "https://rickandmortyapi.com/api/location/3"},
			"image": "https://rickandmortyapi.com/api/character/avatar/1.jpeg",
			"episode": ["https://rickandmortyapi.com/api/episode/1"],
			"url": "https://rickandmortyapi.com/api/character/1",
			"created": "2017-11-04T18:48:46.250Z"
		}]
	}`

	var page Page[Character]
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if page.Info.Next != nil {
		t.Errorf("Next = %v, want nil", *page.Info.Next)
	}
	c := page.Results[0]
	if c.Status != StatusAlive {
		t.Errorf("Status = %q, want %q", c.Status, StatusAlive)
	}
	if c.Location.Name != "Citadel of Ricks" {
		t.Errorf("Location.Name = %q", c.Location.Name)
	}
	if id, err := LocatorID(c.Origin.URL); err != nil || id != 1 {
		t.Errorf("origin locator id = %d, %v; want 1", id, err)
	}
}
