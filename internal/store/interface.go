package store

import (
	"context"
	"iter"

	"github.com/roach88/sweatz/internal/document"
)

// Database is the store surface application code is written against.
// *Store implements it.
type Database interface {
	// Collection returns the named record set, creating it if needed.
	Collection(name string) RecordSet

	// ListCollectionNames returns every known collection name, sorted.
	ListCollectionNames() []string

	// ServerVersion returns the synthetic server version string.
	ServerVersion() string

	// Command runs an administrative command by name.
	Command(ctx context.Context, name string) (document.Object, error)
}

// RecordSet is the per-collection operation surface. *Collection
// implements it.
type RecordSet interface {
	Name() string
	FindOne(ctx context.Context, filter document.Object) (document.Object, error)
	Find(ctx context.Context, filter document.Object) (Cursor, error)
	CountDocuments(ctx context.Context, filter document.Object) (int64, error)
	Distinct(ctx context.Context, field string, filter document.Object) ([]document.Value, error)
	InsertOne(ctx context.Context, record document.Object) (*InsertOneResult, error)
	InsertMany(ctx context.Context, records []document.Object) (*InsertManyResult, error)
	UpdateOne(ctx context.Context, filter, update document.Object, opts ...UpdateOption) (*UpdateResult, error)
	DeleteOne(ctx context.Context, filter document.Object) (*DeleteResult, error)
	Aggregate(ctx context.Context, pipeline []document.Object) ([]document.Object, error)
}

// Cursor is a lazy, restartable result of Find. Modifiers return the
// cursor for chaining and may be called in any order; they always apply
// as sort, then skip, then limit. Each call to All re-runs the query
// against the current contents of the collection.
type Cursor interface {
	// Sort orders results by field: dir > 0 ascending, dir < 0 descending.
	// A later call replaces an earlier one.
	Sort(field string, dir int) Cursor

	// Skip drops the first n results.
	Skip(n int64) Cursor

	// Limit caps the number of results. Zero means no limit.
	Limit(n int64) Cursor

	// All returns every result.
	All(ctx context.Context) ([]document.Object, error)

	// Seq ranges over the results.
	Seq(ctx context.Context) iter.Seq2[document.Object, error]
}

var (
	_ Database  = (*Store)(nil)
	_ RecordSet = (*Collection)(nil)
	_ Cursor    = (*cursor)(nil)
)
