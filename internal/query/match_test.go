package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sweatz/internal/document"
)

func rec(m map[string]any) document.Object {
	return document.MustObject(m)
}

func matches(t *testing.T, filter map[string]any, record document.Object) bool {
	t.Helper()
	return Match(MustParse(document.MustObject(filter)), record)
}

func TestMatchEquality(t *testing.T) {
	r := rec(map[string]any{"name": "A", "score": 3, "tags": []any{"a", "b"}})

	assert.True(t, matches(t, map[string]any{"name": "A"}, r))
	assert.False(t, matches(t, map[string]any{"name": "B"}, r))
	assert.True(t, matches(t, map[string]any{"score": 3.0}, r))
	assert.True(t, matches(t, map[string]any{"tags": "b"}, r))
	assert.True(t, matches(t, map[string]any{"tags": []any{"a", "b"}}, r))
	assert.False(t, matches(t, map[string]any{"tags": []any{"b", "a"}}, r))
}

func TestMatchMissingField(t *testing.T) {
	r := rec(map[string]any{"name": "A"})

	assert.False(t, matches(t, map[string]any{"flag": true}, r))
	assert.False(t, matches(t, map[string]any{"flag": nil}, r))
	assert.False(t, matches(t, map[string]any{"flag": map[string]any{"$gte": 0}}, r))
	assert.True(t, matches(t, map[string]any{"flag": map[string]any{"$ne": true}}, r))
	assert.True(t, matches(t, map[string]any{"flag": map[string]any{"$nin": []any{true}}}, r))
	assert.True(t, matches(t, map[string]any{"flag": map[string]any{"$exists": false}}, r))
	assert.False(t, matches(t, map[string]any{"flag": map[string]any{"$exists": true}}, r))
}

func TestMatchRangeInclusive(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }
	r := rec(map[string]any{"time": day(10), "weight": 72.5})

	assert.True(t, matches(t, map[string]any{"time": map[string]any{"$gte": day(10), "$lte": day(10)}}, r))
	assert.True(t, matches(t, map[string]any{"time": map[string]any{"$gte": day(1), "$lt": day(11)}}, r))
	assert.False(t, matches(t, map[string]any{"time": map[string]any{"$gt": day(10)}}, r))
	assert.True(t, matches(t, map[string]any{"weight": map[string]any{"$gt": 72}}, r))
}

func TestMatchRangeTypeBracketing(t *testing.T) {
	r := rec(map[string]any{"v": "10"})

	// A string never satisfies a numeric range
	assert.False(t, matches(t, map[string]any{"v": map[string]any{"$gte": 0}}, r))
	assert.False(t, matches(t, map[string]any{"v": map[string]any{"$lte": 100}}, r))
	assert.True(t, matches(t, map[string]any{"v": map[string]any{"$gte": "0"}}, r))
}

func TestMatchRangeOnArrayElements(t *testing.T) {
	r := rec(map[string]any{"scores": []any{1, 8}})

	assert.True(t, matches(t, map[string]any{"scores": map[string]any{"$gt": 5}}, r))
	assert.False(t, matches(t, map[string]any{"scores": map[string]any{"$gt": 9}}, r))
}

func TestMatchIdentityCoercion(t *testing.T) {
	hex := "6123456789abcdef01234567"
	byOID := document.Object{"_id": document.MustObjectID(hex)}
	byString := document.Object{"_id": document.String("app_settings")}

	assert.True(t, matches(t, map[string]any{"_id": hex}, byOID))
	assert.True(t, matches(t, map[string]any{"_id": document.MustObjectID(hex)}, byOID))
	assert.False(t, matches(t, map[string]any{"_id": "7123456789abcdef01234567"}, byOID))
	assert.True(t, matches(t, map[string]any{"_id": "app_settings"}, byString))
	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$in": []any{"x", hex}}}, byOID))
	assert.False(t, matches(t, map[string]any{"_id": map[string]any{"$ne": hex}}, byOID))

	// A malformed id string cannot denote an ObjectID, so it finds nothing
	assert.False(t, matches(t, map[string]any{"_id": "not-an-id"}, byOID))
}

func TestMatchIdentityRange(t *testing.T) {
	hex := "6123456789abcdef01234567"
	byOID := document.Object{"_id": document.MustObjectID(hex)}
	byString := document.Object{"_id": document.String("m")}

	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$gte": hex}}, byOID))
	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$lte": hex}}, byOID))
	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$gte": hex, "$lte": hex}}, byOID))
	assert.False(t, matches(t, map[string]any{"_id": map[string]any{"$gt": hex}}, byOID))
	assert.False(t, matches(t, map[string]any{"_id": map[string]any{"$lt": "5123456789abcdef01234567"}}, byOID))
	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$gt": "5123456789abcdef01234567"}}, byOID))

	// Non-hex bounds compare as plain strings
	assert.True(t, matches(t, map[string]any{"_id": map[string]any{"$gt": "a"}}, byString))
	assert.False(t, matches(t, map[string]any{"_id": map[string]any{"$gt": "a"}}, byOID))
}

func TestMatchRegex(t *testing.T) {
	r := rec(map[string]any{"name": "Sample Exercise 12", "equipment": []any{"Barbell"}})

	assert.True(t, matches(t, map[string]any{"name": map[string]any{"$regex": "exercise 1", "$options": "i"}}, r))
	assert.False(t, matches(t, map[string]any{"name": map[string]any{"$regex": "exercise 1"}}, r))
	assert.True(t, matches(t, map[string]any{"equipment": map[string]any{"$regex": "^bar", "$options": "i"}}, r))
	assert.False(t, matches(t, map[string]any{"missing": map[string]any{"$regex": ".*"}}, r))
}

func TestMatchLogical(t *testing.T) {
	r := rec(map[string]any{"a": 1, "b": 2})

	assert.True(t, matches(t, map[string]any{"$or": []any{
		map[string]any{"a": 5},
		map[string]any{"b": 2},
	}}, r))
	assert.False(t, matches(t, map[string]any{"$and": []any{
		map[string]any{"a": 1},
		map[string]any{"b": 5},
	}}, r))
	assert.False(t, Match(Or{}, r))
	assert.True(t, Match(And{}, r))
	assert.True(t, Match(nil, r))
}

func TestMatchDottedPath(t *testing.T) {
	r := rec(map[string]any{"goal": map[string]any{"calories": 2000}})

	assert.True(t, matches(t, map[string]any{"goal.calories": 2000}, r))
	assert.True(t, matches(t, map[string]any{"goal.calories": map[string]any{"$gte": 1500}}, r))
}

func TestEqualities(t *testing.T) {
	hex := "7123456789abcdef01234567"
	p := MustParse(document.MustObject(map[string]any{
		"user_id": document.MustObjectID(hex),
		"_id":     hex,
		"kind":    map[string]any{"$eq": "daily"},
		"score":   map[string]any{"$gt": 3},
		"goal.x":  1,
		"$and": []any{
			map[string]any{"nested": true},
		},
	}))

	got := Equalities(p)

	assert.Equal(t, document.Object{
		"user_id": document.MustObjectID(hex),
		"_id":     document.String(hex),
		"kind":    document.String("daily"),
		"nested":  document.Bool(true),
	}, got)
}
