package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidLocator is returned when a reference locator has no positive
// integer id in its last path segment.
var ErrInvalidLocator = errors.New("invalid reference locator")

// LocatorID extracts the trailing integer id of a reference locator.
func LocatorID(locator string) (int, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(locator), "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}

	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}
	return id, nil
}

// LocatorIDs extracts ids from locators, keeping input order. Locators that
// cannot be parsed are returned separately.
func LocatorIDs(locators []string) (ids []int, invalid []string) {
	ids = make([]int, 0, len(locators))
	for _, l := range locators {
		id, err := LocatorID(l)
		if err != nil {
			invalid = append(invalid, l)
			continue
		}
		ids = append(ids, id)
	}
	return ids, invalid
}

var episodeCodePattern = regexp.MustCompile(`S(\d+)E(\d+)`)

// EpisodeNumber is the parsed form of an episode code.
type EpisodeNumber struct {
	Season  int
	Episode int
}

// ParseEpisodeCode parses codes such as "S03E07". ok is false when the code
// does not match.
func ParseEpisodeCode(code string) (n EpisodeNumber, ok bool) {
	m := episodeCodePattern.FindStringSubmatch(code)
	if m == nil {
		return EpisodeNumber{}, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeNumber{}, false
	}
	episode, err := strconv.Atoi(m[2])
	if err != nil {
		return EpisodeNumber{}, false
	}
	return EpisodeNumber{Season: season, Episode: episode}, true
}
