// Package catalog defines the read-only records served by the upstream
// catalog API (characters, locations and episodes) and the small helpers
// needed to work with them: the paginated list envelope, reference
// locators and episode codes.
//
// Records are immutable snapshots. Nothing in this package performs I/O.
//
// # Reference Locators
//
// Cross-entity links are URLs whose last path segment is the target id:
//
//	id, err := catalog.LocatorID("https://rickandmortyapi.com/api/episode/28")
//	// id == 28
//
// # Episode Codes
//
//	n, ok := catalog.ParseEpisodeCode("S03E07")
//	// n.Season == 3, n.Episode == 7, ok == true
//
// A code that does not match yields ok == false; callers simply omit the
// season/episode numbers.
package catalog
