package store

import "github.com/roach88/sweatz/internal/document"

// InsertOneResult reports the identity of an inserted record.
type InsertOneResult struct {
	InsertedID document.Value
}

// InsertManyResult reports inserted identities in input order.
type InsertManyResult struct {
	InsertedIDs []document.Value
}

// UpdateResult reports the outcome of UpdateOne.
//
// A matched record reports MatchedCount 1 and ModifiedCount 1, even when
// the update leaves it unchanged. An upsert reports zero for both and sets
// UpsertedID.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
	UpsertedID    document.Value
}

// DeleteResult reports how many records DeleteOne removed (0 or 1).
type DeleteResult struct {
	DeletedCount int64
}

// UpdateOptions configures UpdateOne.
type UpdateOptions struct {
	Upsert bool
}

// UpdateOption sets a field of UpdateOptions.
type UpdateOption func(*UpdateOptions)

// Upsert makes UpdateOne insert a record when nothing matches.
func Upsert(upsert bool) UpdateOption {
	return func(o *UpdateOptions) {
		o.Upsert = upsert
	}
}
