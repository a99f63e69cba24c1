package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Records  []document.Object // Matching records, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\nMatching records:\n")
		for i, rec := range e.Records {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, document.Canonical(rec))
		}
	}

	return buf.String()
}

// assertCount checks how many records of a collection match a filter.
func assertCount(ctx context.Context, db store.Database, a Assertion, filter document.Object) error {
	n, err := db.Collection(a.Collection).CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("count %s: %w", a.Collection, err)
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d records in %s where %s", a.Count, a.Collection, document.Canonical(filter)),
			Actual:   fmt.Sprintf("%d records", n),
		}
	}
	return nil
}

// assertExists checks that exactly one record matches and that it holds
// the expected fields (subset semantics).
func assertExists(ctx context.Context, db store.Database, a Assertion, filter document.Object) error {
	cur, err := db.Collection(a.Collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find %s: %w", a.Collection, err)
	}
	records, err := cur.All(ctx)
	if err != nil {
		return fmt.Errorf("find %s: %w", a.Collection, err)
	}

	where := document.Canonical(filter)
	switch len(records) {
	case 0:
		return &AssertionError{
			Type:     AssertExists,
			Expected: fmt.Sprintf("record in %s where %s", a.Collection, where),
			Actual:   "record not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertExists,
			Expected: fmt.Sprintf("exactly one record in %s where %s", a.Collection, where),
			Actual:   fmt.Sprintf("%d records matched (assertion is ambiguous)", len(records)),
			Records:  records,
		}
	}

	if a.Expect == nil {
		return nil
	}
	want, err := toObject(a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	if err := matchSubset("record", want, records[0]); err != nil {
		return &AssertionError{
			Type:     AssertExists,
			Expected: fmt.Sprintf("record in %s where %s to contain %s", a.Collection, where, document.Canonical(want)),
			Actual:   err.Error(),
			Records:  records,
		}
	}
	return nil
}

// matchSubset reports the first difference between want and got. Objects
// match when every field of want matches the same field of got; extra
// fields in got are ignored. Arrays match element by element and must be
// the same length. Scalars compare with document.Equal.
func matchSubset(path string, want, got document.Value) error {
	switch w := want.(type) {
	case document.Object:
		g, ok := got.(document.Object)
		if !ok {
			return fmt.Errorf("%s: expected an object, got %s", path, describe(got))
		}
		for _, key := range w.SortedKeys() {
			gv, present := g[key]
			if !present {
				return fmt.Errorf("%s.%s: missing", path, key)
			}
			if err := matchSubset(path+"."+key, w[key], gv); err != nil {
				return err
			}
		}
		return nil
	case document.Array:
		g, ok := got.(document.Array)
		if !ok {
			return fmt.Errorf("%s: expected an array, got %s", path, describe(got))
		}
		if len(w) != len(g) {
			return fmt.Errorf("%s: expected %d elements, got %d", path, len(w), len(g))
		}
		for i := range w {
			if err := matchSubset(fmt.Sprintf("%s[%d]", path, i), w[i], g[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if !document.Equal(want, got) {
			return fmt.Errorf("%s: expected %s, got %s", path, document.Canonical(want), describe(got))
		}
		return nil
	}
}

func describe(v document.Value) string {
	if v == nil {
		return "nothing"
	}
	return string(document.Canonical(v))
}

// EvaluateAssertions evaluates all assertions against db.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, db store.Database, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		filter, err := toObject(assertion.Filter)
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: filter: %v", i, err))
			continue
		}

		switch assertion.Type {
		case AssertCount:
			err = assertCount(ctx, db, assertion, filter)
		case AssertExists:
			err = assertExists(ctx, db, assertion, filter)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}
