package pipeline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
)

func objs(ms ...map[string]any) []document.Object {
	out := make([]document.Object, len(ms))
	for i, m := range ms {
		out[i] = document.MustObject(m)
	}
	return out
}

func run(t *testing.T, raw []map[string]any, in []document.Object) []document.Object {
	t.Helper()
	out, err := Aggregate(objs(raw...), in)
	require.NoError(t, err)
	return out
}

func TestAggregateMatchGroupTotal(t *testing.T) {
	in := objs(
		map[string]any{"active": true, "amount": 10},
		map[string]any{"active": true, "amount": 5},
		map[string]any{"active": false, "amount": 100},
	)

	out := run(t, []map[string]any{
		{"$match": map[string]any{"active": true}},
		{"$group": map[string]any{"_id": nil, "total": map[string]any{"$sum": "$amount"}}},
	}, in)

	want := []document.Object{{"_id": document.Null{}, "total": document.Int(15)}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateGroupByFieldSortDesc(t *testing.T) {
	in := objs(
		map[string]any{"subscription_tier": "free"},
		map[string]any{"subscription_tier": "premium"},
		map[string]any{"subscription_tier": "free"},
		map[string]any{"subscription_tier": "admin"},
		map[string]any{"subscription_tier": "free"},
		map[string]any{"subscription_tier": "premium"},
	)

	out := run(t, []map[string]any{
		{"$group": map[string]any{"_id": "$subscription_tier", "count": map[string]any{"$sum": 1}}},
		{"$sort": map[string]any{"count": -1}},
	}, in)

	assert.Equal(t, objs(
		map[string]any{"_id": "free", "count": 3},
		map[string]any{"_id": "premium", "count": 2},
		map[string]any{"_id": "admin", "count": 1},
	), out)
}

func TestAggregateGroupByDate(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2025, 5, d, h, 0, 0, 0, time.UTC) }
	in := objs(
		map[string]any{"created_at": day(1, 9)},
		map[string]any{"created_at": day(1, 18)},
		map[string]any{"created_at": day(3, 7)},
	)

	out := run(t, []map[string]any{
		{"$group": map[string]any{
			"_id": map[string]any{"$dateToString": map[string]any{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"count": map[string]any{"$sum": 1},
		}},
		{"$sort": map[string]any{"_id": 1}},
	}, in)

	assert.Equal(t, objs(
		map[string]any{"_id": "2025-05-01", "count": 2},
		map[string]any{"_id": "2025-05-03", "count": 1},
	), out)
}

func TestAggregateAccumulators(t *testing.T) {
	in := objs(
		map[string]any{"g": "a", "v": 4, "tag": "x"},
		map[string]any{"g": "a", "v": 2.5, "tag": "y"},
		map[string]any{"g": "a", "tag": "x"},
		map[string]any{"g": "b", "v": 7},
	)

	out := run(t, []map[string]any{
		{"$group": map[string]any{
			"_id":   "$g",
			"sum":   map[string]any{"$sum": "$v"},
			"avg":   map[string]any{"$avg": "$v"},
			"min":   map[string]any{"$min": "$v"},
			"max":   map[string]any{"$max": "$v"},
			"first": map[string]any{"$first": "$tag"},
			"last":  map[string]any{"$last": "$tag"},
			"push":  map[string]any{"$push": "$tag"},
			"set":   map[string]any{"$addToSet": "$tag"},
		}},
	}, in)

	require.Len(t, out, 2)
	a := out[0]
	assert.Equal(t, document.String("a"), a["_id"])
	assert.Equal(t, document.Float(6.5), a["sum"])
	assert.Equal(t, document.Float(3.25), a["avg"])
	assert.Equal(t, document.Float(2.5), a["min"])
	assert.Equal(t, document.Int(4), a["max"])
	assert.Equal(t, document.String("x"), a["first"])
	assert.Equal(t, document.String("x"), a["last"])
	assert.Equal(t, document.Array{document.String("x"), document.String("y"), document.String("x")}, a["push"])
	assert.Equal(t, document.Array{document.String("x"), document.String("y")}, a["set"])

	b := out[1]
	assert.Equal(t, document.Int(7), b["sum"])
	assert.Equal(t, document.Null{}, b["first"])
	assert.Equal(t, document.Array{}, b["push"])
}

func TestAggregateUnwindGroupEquipment(t *testing.T) {
	in := objs(
		map[string]any{"name": "e1", "equipment": []any{"barbell", "dumbbell"}},
		map[string]any{"name": "e2", "equipment": []any{"bodyweight"}},
		map[string]any{"name": "e3", "equipment": []any{"barbell"}},
		map[string]any{"name": "e4", "equipment": []any{}},
		map[string]any{"name": "e5"},
	)

	out := run(t, []map[string]any{
		{"$unwind": "$equipment"},
		{"$group": map[string]any{"_id": "$equipment", "count": map[string]any{"$sum": 1}}},
		{"$sort": map[string]any{"count": -1}},
		{"$limit": 2},
	}, in)

	assert.Equal(t, objs(
		map[string]any{"_id": "barbell", "count": 2},
		map[string]any{"_id": "dumbbell", "count": 1},
	), out)
}

func TestAggregateUnwindPreserve(t *testing.T) {
	in := objs(
		map[string]any{"n": 1, "tags": []any{"a", "b"}},
		map[string]any{"n": 2, "tags": []any{}},
		map[string]any{"n": 3, "tags": nil},
		map[string]any{"n": 4},
		map[string]any{"n": 5, "tags": "solo"},
	)

	out := run(t, []map[string]any{
		{"$unwind": map[string]any{"path": "$tags", "preserveNullAndEmptyArrays": true}},
	}, in)

	assert.Equal(t, objs(
		map[string]any{"n": 1, "tags": "a"},
		map[string]any{"n": 1, "tags": "b"},
		map[string]any{"n": 2},
		map[string]any{"n": 3, "tags": nil},
		map[string]any{"n": 4},
		map[string]any{"n": 5, "tags": "solo"},
	), out)

	// Input records are left untouched
	assert.Equal(t, document.Array{}, in[1]["tags"])
}

func TestAggregateSkipLimitCount(t *testing.T) {
	in := objs(
		map[string]any{"i": 1},
		map[string]any{"i": 2},
		map[string]any{"i": 3},
		map[string]any{"i": 4},
	)

	out := run(t, []map[string]any{{"$skip": 1}, {"$limit": 2}}, in)
	assert.Equal(t, objs(map[string]any{"i": 2}, map[string]any{"i": 3}), out)

	out = run(t, []map[string]any{{"$skip": 10}}, in)
	assert.Empty(t, out)

	out = run(t, []map[string]any{{"$match": map[string]any{"i": map[string]any{"$gt": 1}}}, {"$count": "n"}}, in)
	assert.Equal(t, objs(map[string]any{"n": 3}), out)

	out = run(t, []map[string]any{{"$match": map[string]any{"i": 99}}, {"$count": "n"}}, in)
	assert.Empty(t, out)
}

func TestAggregateEmptyPipelineReturnsInput(t *testing.T) {
	in := objs(map[string]any{"a": 1})

	out := run(t, nil, in)

	assert.Equal(t, in, out)
}

func TestSortRecordsStableWithMissing(t *testing.T) {
	records := objs(
		map[string]any{"name": "A", "score": 3},
		map[string]any{"name": "B", "score": 5},
		map[string]any{"name": "N"},
		map[string]any{"name": "C", "score": 5},
	)

	SortRecords(records, []SortKey{{Field: "score", Desc: true}})

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.StringOr("name", "")
	}
	assert.Equal(t, []string{"B", "C", "A", "N"}, names)
}

func TestFormatDate(t *testing.T) {
	ts := document.NewTime(time.Date(2025, 2, 3, 4, 5, 6, 7_000_000, time.UTC))

	assert.Equal(t, "2025-02-03", FormatDate("%Y-%m-%d", ts))
	assert.Equal(t, "04:05:06.007 034 100%", FormatDate("%H:%M:%S.%L %j 100%%", ts))
}
