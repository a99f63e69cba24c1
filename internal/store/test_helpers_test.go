package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
)

// createTestCollection returns a named collection in a fresh store.
func createTestCollection(t *testing.T, name string, opts ...Option) (*Store, RecordSet) {
	t.Helper()
	s := New(opts...)
	return s, s.Collection(name)
}

// insertAll inserts plain-Go records in order and returns their ids.
func insertAll(t *testing.T, c RecordSet, records ...map[string]any) []document.Value {
	t.Helper()
	ids := make([]document.Value, 0, len(records))
	for _, r := range records {
		res, err := c.InsertOne(context.Background(), document.MustObject(r))
		require.NoError(t, err)
		ids = append(ids, res.InsertedID)
	}
	return ids
}

func filter(m map[string]any) document.Object {
	return document.MustObject(m)
}

func names(records []document.Object) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.StringOr("name", "")
	}
	return out
}
