package query

import (
	"strings"

	"github.com/roach88/sweatz/internal/document"
)

// Match reports whether record satisfies p. A nil predicate matches.
func Match(p Predicate, record document.Object) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case Compare:
		return matchCompare(pred, record)
	case *Compare:
		return matchCompare(*pred, record)
	case In:
		return matchIn(pred, record)
	case *In:
		return matchIn(*pred, record)
	case Exists:
		return record.Has(pred.Field) == pred.Want
	case *Exists:
		return record.Has(pred.Field) == pred.Want
	case Regex:
		return matchRegex(pred, record)
	case *Regex:
		return matchRegex(*pred, record)
	case And:
		return matchAll(pred.Predicates, record)
	case *And:
		return matchAll(pred.Predicates, record)
	case Or:
		return matchAny(pred.Predicates, record)
	case *Or:
		return matchAny(pred.Predicates, record)
	default:
		return false
	}
}

func matchAll(preds []Predicate, record document.Object) bool {
	for _, p := range preds {
		if !Match(p, record) {
			return false
		}
	}
	return true
}

func matchAny(preds []Predicate, record document.Object) bool {
	for _, p := range preds {
		if Match(p, record) {
			return true
		}
	}
	return false
}

// candidates returns the values a field contributes to a comparison: the
// value itself and, for arrays, each element.
func candidates(v document.Value) []document.Value {
	arr, ok := v.(document.Array)
	if !ok {
		return []document.Value{v}
	}
	out := make([]document.Value, 0, len(arr)+1)
	out = append(out, v)
	out = append(out, arr...)
	return out
}

func equalsAny(v document.Value, want document.Value) bool {
	for _, c := range candidates(v) {
		if document.Equal(c, want) {
			return true
		}
	}
	return false
}

func matchCompare(c Compare, record document.Object) bool {
	v, ok := record.Get(c.Field)
	if !ok {
		return c.Op == OpNe
	}

	switch c.Op {
	case OpEq:
		return equalsAny(v, c.Value)
	case OpNe:
		return !equalsAny(v, c.Value)
	}

	for _, cand := range candidates(v) {
		if !sameKind(cand, c.Value) {
			continue
		}
		cmp := document.Compare(cand, c.Value)
		var hit bool
		switch c.Op {
		case OpGt:
			hit = cmp > 0
		case OpGte:
			hit = cmp >= 0
		case OpLt:
			hit = cmp < 0
		case OpLte:
			hit = cmp <= 0
		}
		if hit {
			return true
		}
	}
	return false
}

// sameKind applies type bracketing: range operators only relate values
// of the same kind.
func sameKind(a, b document.Value) bool {
	return document.KindOf(a) == document.KindOf(b)
}

func matchIn(in In, record document.Object) bool {
	v, ok := record.Get(in.Field)
	if !ok {
		return in.Negate
	}
	for _, want := range in.Values {
		if equalsAny(v, want) {
			return !in.Negate
		}
	}
	return in.Negate
}

func matchRegex(r Regex, record document.Object) bool {
	v, ok := record.Get(r.Field)
	if !ok {
		return false
	}
	for _, cand := range candidates(v) {
		if s, ok := cand.(document.String); ok && r.Pattern.MatchString(string(s)) {
			return true
		}
	}
	return false
}

// Equalities returns the fields an upsert seeds a new record with: every
// top-level equality of p, including equalities nested in $and. Dotted
// paths are skipped.
func Equalities(p Predicate) document.Object {
	out := document.Object{}
	collectEqualities(p, out)
	return out
}

func collectEqualities(p Predicate, out document.Object) {
	switch pred := p.(type) {
	case Compare:
		if pred.Op == OpEq && !strings.Contains(pred.Field, ".") {
			out[pred.Field] = document.Clone(pred.Value)
		}
	case In:
		if !pred.Negate && pred.Literal != nil && !strings.Contains(pred.Field, ".") {
			out[pred.Field] = document.Clone(pred.Literal)
		}
	case And:
		for _, sub := range pred.Predicates {
			collectEqualities(sub, out)
		}
	}
}
