package catalog

import "fmt"

// Kind identifies one of the three record kinds.
type Kind string

const (
	KindCharacter Kind = "character"
	KindLocation  Kind = "location"
	KindEpisode   Kind = "episode"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindCharacter, KindLocation, KindEpisode}

// Path returns the list endpoint path of the kind.
func (k Kind) Path() string {
	return "/" + string(k)
}

// ResourcePath returns the single-resource endpoint path for id.
func (k Kind) ResourcePath(id int) string {
	return fmt.Sprintf("/%s/%d", k, id)
}

// Plural returns the plural noun for the kind, e.g. "characters".
func (k Kind) Plural() string {
	return string(k) + "s"
}
