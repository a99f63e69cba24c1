package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sweatz/internal/document"
)

func TestParseEmpty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, All, p)

	p, err = Parse(document.Object{})
	require.NoError(t, err)
	assert.Equal(t, All, p)
}

func TestParseLiteral(t *testing.T) {
	p, err := Parse(document.Object{"name": document.String("A")})
	require.NoError(t, err)

	assert.Equal(t, Compare{Field: "name", Op: OpEq, Value: document.String("A")}, p)
}

func TestParseEmbeddedObjectIsLiteral(t *testing.T) {
	goal := document.Object{"calories": document.Int(2000)}

	p, err := Parse(document.Object{"goal": goal})
	require.NoError(t, err)

	assert.Equal(t, Compare{Field: "goal", Op: OpEq, Value: goal}, p)
}

func TestParseIdentityExpandsHexString(t *testing.T) {
	hex := "6123456789abcdef01234567"

	p, err := Parse(document.Object{"_id": document.String(hex)})
	require.NoError(t, err)

	in, ok := p.(In)
	require.True(t, ok, "expected In, got %T", p)
	assert.Equal(t, []document.Value{document.String(hex), document.MustObjectID(hex)}, in.Values)
	assert.Equal(t, document.String(hex), in.Literal)
	assert.False(t, in.Negate)
}

func TestParseIdentityKeepsPlainString(t *testing.T) {
	p, err := Parse(document.Object{"_id": document.String("app_settings")})
	require.NoError(t, err)

	in := p.(In)
	assert.Equal(t, []document.Value{document.String("app_settings")}, in.Values)
}

func TestParseRangeOperators(t *testing.T) {
	filter := document.Object{
		"time": document.Object{
			"$gte": document.Int(1),
			"$lte": document.Int(9),
		},
	}

	p, err := Parse(filter)
	require.NoError(t, err)

	and, ok := p.(And)
	require.True(t, ok)
	assert.ElementsMatch(t, []Predicate{
		Compare{Field: "time", Op: OpGte, Value: document.Int(1)},
		Compare{Field: "time", Op: OpLte, Value: document.Int(9)},
	}, and.Predicates)
}

func TestParseInAndNin(t *testing.T) {
	p, err := Parse(document.MustObject(map[string]any{
		"equipment": map[string]any{"$in": []any{"barbell"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, In{
		Field:   "equipment",
		Values:  []document.Value{document.String("barbell")},
		Literal: document.String("barbell"),
	}, p)

	p, err = Parse(document.MustObject(map[string]any{
		"tier": map[string]any{"$nin": []any{"free", "premium"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, In{
		Field:  "tier",
		Values: []document.Value{document.String("free"), document.String("premium")},
		Negate: true,
	}, p)
}

func TestParseRegexOptions(t *testing.T) {
	p, err := Parse(document.MustObject(map[string]any{
		"name": map[string]any{"$regex": "^sample", "$options": "i"},
	}))
	require.NoError(t, err)

	re, ok := p.(Regex)
	require.True(t, ok)
	assert.Equal(t, "^sample", re.Source)
	assert.Equal(t, "i", re.Options)
	assert.True(t, re.Pattern.MatchString("Sample Exercise 1"))
}

func TestParseLogical(t *testing.T) {
	p, err := Parse(document.MustObject(map[string]any{
		"$or": []any{
			map[string]any{"a": 1},
			map[string]any{"b": 2},
		},
	}))
	require.NoError(t, err)

	or, ok := p.(Or)
	require.True(t, ok)
	assert.Len(t, or.Predicates, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		filter map[string]any
		want   error
	}{
		{"unknown top-level", map[string]any{"$where": "1"}, ErrUnsupportedOperation},
		{"unknown field operator", map[string]any{"a": map[string]any{"$size": 2}}, ErrUnsupportedOperation},
		{"regex option x", map[string]any{"a": map[string]any{"$regex": "a", "$options": "x"}}, ErrUnsupportedOperation},
		{"in without array", map[string]any{"a": map[string]any{"$in": 1}}, ErrInvalidFilter},
		{"exists string", map[string]any{"a": map[string]any{"$exists": "yes"}}, ErrInvalidFilter},
		{"mixed object", map[string]any{"a": map[string]any{"$gt": 1, "b": 2}}, ErrInvalidFilter},
		{"or not array", map[string]any{"$or": map[string]any{"a": 1}}, ErrInvalidFilter},
		{"options alone", map[string]any{"a": map[string]any{"$options": "i"}}, ErrInvalidFilter},
		{"bad pattern", map[string]any{"a": map[string]any{"$regex": "("}}, ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(document.MustObject(tt.filter))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnsupportedWrapsShared(t *testing.T) {
	_, err := Parse(document.Object{"$nor": document.Array{}})

	assert.True(t, errors.Is(err, document.ErrUnsupportedOperation))
}
