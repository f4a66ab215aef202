// Package batch provides the concurrent fan-out primitives used to resolve
// cross-references between catalog records.
//
// Settle runs independent tasks concurrently and keeps every outcome, so one
// failure never discards its siblings.
//
// Resolver applies one of two policies to a list of reference locators:
//   - ResolveAll walks the ids in chunks of ChunkSize, drops failures and
//     returns whatever resolved
//   - ResolvePreview fetches only the first PreviewLimit ids and fails as a
//     whole if any of them fails
//
// FetchAllPages walks every page of a list query with a worker pool.
//
// Example usage:
//
//	resolver := batch.NewResolver[catalog.Character](catalog.KindCharacter, api.GetCharacter, batch.DefaultConfig())
//	residents := resolver.ResolveAll(ctx, location.Residents)
package batch
