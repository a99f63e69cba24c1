// Package store provides the in-memory document store used in place of the
// production document database for local runs and tests.
//
// A Store maps collection names to Collections. Collections are created
// lazily on first access, read or write, and live as long as the Store.
// Each Collection keeps its records in insertion order and exposes the
// driver-shaped operations the application uses:
//
//   - FindOne, Find (with a Cursor), CountDocuments, Distinct
//   - InsertOne, InsertMany, UpdateOne (with Upsert), DeleteOne
//   - Aggregate
//
// # Semantics
//
//   - Filters are parsed by package query; pipelines by package pipeline
//   - Cursor modifiers always apply as sort, then skip, then limit,
//     whatever order they were called in
//   - Records are copied on the way in and on the way out
//   - "_id" is unique within a collection and never changes
//
// # Concurrency
//
// The store performs no locking. Callers that share a Store between
// goroutines must serialize access. Every operation takes a context for
// parity with the database driver; it is checked once on entry.
package store
