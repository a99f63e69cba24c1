package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/sweatz/internal/document"
)

// Parse converts a filter document into a Predicate.
//
// A nil or empty filter parses to All. Top-level keys are processed in
// canonical key order so the resulting tree is deterministic. A field whose
// value is an object of $-prefixed keys is an operator object; any other
// value is an equality literal.
//
// Errors wrap ErrUnsupportedOperation for operators outside the emulated
// subset and ErrInvalidFilter for malformed arguments.
func Parse(filter document.Object) (Predicate, error) {
	if len(filter) == 0 {
		return All, nil
	}

	preds := make([]Predicate, 0, len(filter))
	for _, key := range filter.SortedKeys() {
		p, err := parseClause(key, filter[key])
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return And{Predicates: preds}, nil
}

// MustParse is Parse that panics on error. Intended for tests.
func MustParse(filter document.Object) Predicate {
	p, err := Parse(filter)
	if err != nil {
		panic(err)
	}
	return p
}

func parseClause(key string, val document.Value) (Predicate, error) {
	if strings.HasPrefix(key, "$") {
		switch key {
		case "$and", "$or":
			return parseLogical(key, val)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, key)
		}
	}

	ops, isOps, err := operatorObject(key, val)
	if err != nil {
		return nil, err
	}
	if !isOps {
		return equality(key, val), nil
	}
	return parseOperators(key, ops)
}

func parseLogical(key string, val document.Value) (Predicate, error) {
	arr, ok := val.(document.Array)
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("%w: %s requires a non-empty array", ErrInvalidFilter, key)
	}

	preds := make([]Predicate, 0, len(arr))
	for i, elem := range arr {
		sub, ok := elem.(document.Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrInvalidFilter, key, i)
		}
		p, err := Parse(sub)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		preds = append(preds, p)
	}

	if key == "$or" {
		return Or{Predicates: preds}, nil
	}
	return And{Predicates: preds}, nil
}

// operatorObject reports whether val is an operator object. Objects that
// mix operator and plain keys are rejected.
func operatorObject(field string, val document.Value) (document.Object, bool, error) {
	obj, ok := val.(document.Object)
	if !ok || len(obj) == 0 {
		return nil, false, nil
	}

	dollar := 0
	for k := range obj {
		if strings.HasPrefix(k, "$") {
			dollar++
		}
	}
	switch dollar {
	case 0:
		return nil, false, nil
	case len(obj):
		return obj, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %q mixes operators and fields", ErrInvalidFilter, field)
	}
}

func parseOperators(field string, ops document.Object) (Predicate, error) {
	preds := make([]Predicate, 0, len(ops))
	for _, op := range ops.SortedKeys() {
		arg := ops[op]
		var (
			p   Predicate
			err error
		)
		switch op {
		case "$eq":
			p = equality(field, arg)
		case "$ne":
			p = inequality(field, arg)
		case "$gt":
			p = comparison(field, OpGt, arg)
		case "$gte":
			p = comparison(field, OpGte, arg)
		case "$lt":
			p = comparison(field, OpLt, arg)
		case "$lte":
			p = comparison(field, OpLte, arg)
		case "$in", "$nin":
			p, err = parseIn(field, op, arg)
		case "$exists":
			p, err = parseExists(field, arg)
		case "$regex":
			p, err = parseRegex(field, arg, ops["$options"])
		case "$options":
			if _, ok := ops["$regex"]; !ok {
				return nil, fmt.Errorf("%w: $options without $regex on %q", ErrInvalidFilter, field)
			}
			continue
		default:
			err = fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
		}
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	if len(preds) == 1 {
		return preds[0], nil
	}
	return And{Predicates: preds}, nil
}

// equality builds the predicate for <field> == v. On the identity field a
// string argument also matches the ObjectID it parses to.
func equality(field string, v document.Value) Predicate {
	if field == document.IDField {
		return In{Field: field, Values: document.IdentityAlternatives(v), Literal: v}
	}
	return Compare{Field: field, Op: OpEq, Value: v}
}

func inequality(field string, v document.Value) Predicate {
	if field == document.IDField {
		return In{Field: field, Values: document.IdentityAlternatives(v), Negate: true}
	}
	return Compare{Field: field, Op: OpNe, Value: v}
}

// comparison builds a range predicate. On the identity field a hex string
// also bounds ObjectIDs.
func comparison(field string, op Op, v document.Value) Predicate {
	if field != document.IDField {
		return Compare{Field: field, Op: op, Value: v}
	}
	alts := document.IdentityAlternatives(v)
	if len(alts) == 1 {
		return Compare{Field: field, Op: op, Value: v}
	}
	preds := make([]Predicate, len(alts))
	for i, alt := range alts {
		preds[i] = Compare{Field: field, Op: op, Value: alt}
	}
	return Or{Predicates: preds}
}

func parseIn(field, op string, arg document.Value) (Predicate, error) {
	arr, ok := arg.(document.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %q requires an array", ErrInvalidFilter, op, field)
	}

	values := make([]document.Value, 0, len(arr))
	for _, v := range arr {
		if field == document.IDField {
			values = append(values, document.IdentityAlternatives(v)...)
		} else {
			values = append(values, v)
		}
	}

	in := In{Field: field, Values: values, Negate: op == "$nin"}
	if !in.Negate && len(arr) == 1 {
		in.Literal = arr[0]
	}
	return in, nil
}

func parseExists(field string, arg document.Value) (Predicate, error) {
	switch v := arg.(type) {
	case document.Bool:
		return Exists{Field: field, Want: bool(v)}, nil
	case document.Int, document.Float:
		f, _ := document.AsFloat(v)
		return Exists{Field: field, Want: f != 0}, nil
	default:
		return nil, fmt.Errorf("%w: $exists on %q requires a boolean", ErrInvalidFilter, field)
	}
}

func parseRegex(field string, arg, opts document.Value) (Predicate, error) {
	src, ok := arg.(document.String)
	if !ok {
		return nil, fmt.Errorf("%w: $regex on %q requires a string", ErrInvalidFilter, field)
	}

	var options string
	if opts != nil {
		s, ok := opts.(document.String)
		if !ok {
			return nil, fmt.Errorf("%w: $options on %q requires a string", ErrInvalidFilter, field)
		}
		options = string(s)
	}

	var flags strings.Builder
	for _, r := range options {
		switch r {
		case 'i', 'm', 's':
			flags.WriteRune(r)
		default:
			return nil, fmt.Errorf("%w: regex option %q", ErrUnsupportedOperation, r)
		}
	}

	expr := string(src)
	if flags.Len() > 0 {
		expr = "(?" + flags.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: $regex on %q: %v", ErrInvalidFilter, field, err)
	}
	return Regex{Field: field, Pattern: re, Source: string(src), Options: options}, nil
}
