package catalog

// Status is the life status of a character. The upstream uses the three
// values below but the field is an open string.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Ref is a named link to another record (a character's origin or last
// known location). URL is a reference locator and may be empty when the
// upstream has no record for it.
type Ref struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a single character record.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   Ref      `json:"origin"`
	Location Ref      `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

// Location is a single location record.
type Location struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Dimension string   `json:"dimension"`
	Residents []string `json:"residents"`
	URL       string   `json:"url"`
	Created   string   `json:"created"`
}

// Episode is a single episode record. Code holds the "SxxEyy" string the
// upstream sends as "episode".
type Episode struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	AirDate    string   `json:"air_date"`
	Code       string   `json:"episode"`
	Characters []string `json:"characters"`
	URL        string   `json:"url"`
	Created    string   `json:"created"`
}

// SeasonEpisode parses the episode code.
func (e *Episode) SeasonEpisode() (EpisodeNumber, bool) {
	return ParseEpisodeCode(e.Code)
}
