package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

func TestMatchSubset(t *testing.T) {
	day := document.NewTime(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	got := document.Object{
		"name":     document.String("Oats"),
		"calories": document.Int(300),
		"foods":    document.Array{document.String("oats"), document.String("milk")},
		"time":     day,
		"macros":   document.Object{"protein": document.Float(12.5), "fat": document.Int(6)},
	}

	tests := []struct {
		name    string
		want    map[string]any
		wantErr string
	}{
		{"empty", map[string]any{}, ""},
		{"subset", map[string]any{"name": "Oats"}, ""},
		{"numeric kinds", map[string]any{"calories": 300.0}, ""},
		{"nested subset", map[string]any{"macros": map[string]any{"protein": 12.5}}, ""},
		{"array", map[string]any{"foods": []any{"oats", "milk"}}, ""},
		{"date", map[string]any{"time": map[string]any{"$date": "2025-05-01T00:00:00Z"}}, ""},
		{"missing field", map[string]any{"fiber": 3}, "x.fiber: missing"},
		{"wrong value", map[string]any{"name": "Eggs"}, `x.name: expected "Eggs", got "Oats"`},
		{"array length", map[string]any{"foods": []any{"oats"}}, "x.foods: expected 1 elements, got 2"},
		{"array element", map[string]any{"foods": []any{"oats", "rice"}}, `x.foods[1]: expected "rice", got "milk"`},
		{"not an object", map[string]any{"name": map[string]any{"first": "O"}}, `x.name: expected an object, got "Oats"`},
		{"not an array", map[string]any{"calories": []any{300}}, "x.calories: expected an array, got 300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := toObject(tt.want)
			require.NoError(t, err)
			err = matchSubset("x", want, got)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func seededDatabase(t *testing.T) store.Database {
	t.Helper()
	s := store.New()
	_, err := s.Collection("meals").InsertMany(context.Background(), []document.Object{
		document.MustObject(map[string]any{"_id": "m1", "name": "Oats", "user_id": "u1"}),
		document.MustObject(map[string]any{"_id": "m2", "name": "Eggs", "user_id": "u1"}),
		document.MustObject(map[string]any{"_id": "m3", "name": "Toast", "user_id": "u2"}),
	})
	require.NoError(t, err)
	return s
}

func TestEvaluateAssertions(t *testing.T) {
	ctx := context.Background()
	db := seededDatabase(t)

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"count all", Assertion{Type: AssertCount, Collection: "meals", Count: 3}, ""},
		{"count filtered", Assertion{Type: AssertCount, Collection: "meals", Filter: map[string]any{"user_id": "u1"}, Count: 2}, ""},
		{"count empty collection", Assertion{Type: AssertCount, Collection: "reminders", Count: 0}, ""},
		{"count mismatch", Assertion{Type: AssertCount, Collection: "meals", Count: 5}, "Actual: 3 records"},
		{"exists", Assertion{Type: AssertExists, Collection: "meals", Filter: map[string]any{"_id": "m3"}, Expect: map[string]any{"user_id": "u2"}}, ""},
		{"exists without expect", Assertion{Type: AssertExists, Collection: "meals", Filter: map[string]any{"name": "Oats"}}, ""},
		{"not found", Assertion{Type: AssertExists, Collection: "meals", Filter: map[string]any{"name": "Rice"}}, "record not found"},
		{"ambiguous", Assertion{Type: AssertExists, Collection: "meals", Filter: map[string]any{"user_id": "u1"}}, "2 records matched (assertion is ambiguous)"},
		{"field mismatch", Assertion{Type: AssertExists, Collection: "meals", Filter: map[string]any{"_id": "m1"}, Expect: map[string]any{"name": "Eggs"}}, `record.name: expected "Eggs", got "Oats"`},
		{"bad filter", Assertion{Type: AssertCount, Collection: "meals", Filter: map[string]any{"$where": "1"}}, "count meals"},
		{"unknown type", Assertion{Type: "final_state", Collection: "meals"}, `unknown assertion type "final_state"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(ctx, db, []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertExists,
		Expected: "exactly one record",
		Actual:   "2 records matched",
		Records: []document.Object{
			{"_id": document.String("m1")},
			{"_id": document.String("m2")},
		},
	}

	want := "Assertion failed: exists\n" +
		"  Expected: exactly one record\n" +
		"  Actual: 2 records matched\n" +
		"\nMatching records:\n" +
		"  [1] {\"_id\":\"m1\"}\n" +
		"  [2] {\"_id\":\"m2\"}\n"
	assert.Equal(t, want, err.Error())
}
