package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/query"
)

// Parse converts raw stage documents into Stages. Each stage document must
// have exactly one key naming the stage.
//
// A $sort document may name only one field, since Object does not retain
// key order. Build a Sort directly to sort on several keys.
func Parse(raw []document.Object) ([]Stage, error) {
	stages := make([]Stage, 0, len(raw))
	for i, doc := range raw {
		if len(doc) != 1 {
			return nil, fmt.Errorf("%w: stage %d must have exactly one key, has %d", ErrInvalidPipeline, i, len(doc))
		}
		var name string
		for k := range doc {
			name = k
		}
		stage, err := parseStage(name, doc[name])
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, name, err)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func parseStage(name string, arg document.Value) (Stage, error) {
	switch name {
	case "$match":
		filter, ok := arg.(document.Object)
		if !ok {
			return nil, fmt.Errorf("%w: $match requires an object", ErrInvalidPipeline)
		}
		p, err := query.Parse(filter)
		if err != nil {
			return nil, err
		}
		return Match{Predicate: p}, nil
	case "$group":
		return parseGroup(arg)
	case "$sort":
		return parseSort(arg)
	case "$unwind":
		return parseUnwind(arg)
	case "$limit":
		n, err := positiveInt(name, arg)
		if err != nil {
			return nil, err
		}
		return Limit{N: n}, nil
	case "$skip":
		n, err := nonNegativeInt(name, arg)
		if err != nil {
			return nil, err
		}
		return Skip{N: n}, nil
	case "$count":
		field, ok := arg.(document.String)
		if !ok || field == "" || strings.HasPrefix(string(field), "$") || strings.Contains(string(field), ".") {
			return nil, fmt.Errorf("%w: $count requires a plain field name", ErrInvalidPipeline)
		}
		return Count{Field: string(field)}, nil
	default:
		return nil, fmt.Errorf("%w: stage %s", ErrUnsupportedOperation, name)
	}
}

func parseGroup(arg document.Value) (Stage, error) {
	spec, ok := arg.(document.Object)
	if !ok {
		return nil, fmt.Errorf("%w: $group requires an object", ErrInvalidPipeline)
	}
	rawKey, ok := spec[document.IDField]
	if !ok {
		return nil, fmt.Errorf("%w: $group requires an _id", ErrInvalidPipeline)
	}
	key, err := ParseExpr(rawKey)
	if err != nil {
		return nil, fmt.Errorf("_id: %w", err)
	}

	group := Group{Key: key}
	for _, name := range spec.SortedKeys() {
		if name == document.IDField {
			continue
		}
		acc, err := parseAccumulator(name, spec[name])
		if err != nil {
			return nil, err
		}
		group.Fields = append(group.Fields, acc)
	}
	return group, nil
}

func parseAccumulator(name string, v document.Value) (Accumulator, error) {
	obj, ok := v.(document.Object)
	if !ok || len(obj) != 1 {
		return Accumulator{}, fmt.Errorf("%w: %q must be a single-operator object", ErrInvalidPipeline, name)
	}
	var (
		op     string
		rawArg document.Value
	)
	for k, a := range obj {
		op, rawArg = k, a
	}

	switch AccOp(op) {
	case AccSum, AccAvg, AccMin, AccMax, AccFirst, AccLast, AccPush, AccAddToSet:
	default:
		return Accumulator{}, fmt.Errorf("%w: accumulator %s", ErrUnsupportedOperation, op)
	}
	arg, err := ParseExpr(rawArg)
	if err != nil {
		return Accumulator{}, fmt.Errorf("%s: %w", name, err)
	}
	return Accumulator{Name: name, Op: AccOp(op), Arg: arg}, nil
}

// ParseExpr converts an expression value: "$path" strings are field
// references, {"$dateToString": {...}} formats dates, other objects are
// composite expressions and everything else is a literal.
func ParseExpr(v document.Value) (Expr, error) {
	switch val := v.(type) {
	case document.String:
		s := string(val)
		if strings.HasPrefix(s, "$$") {
			return nil, fmt.Errorf("%w: variable %s", ErrUnsupportedOperation, s)
		}
		if strings.HasPrefix(s, "$") {
			if len(s) == 1 {
				return nil, fmt.Errorf("%w: empty field path", ErrInvalidPipeline)
			}
			return FieldRef{Path: s[1:]}, nil
		}
		return Literal{Value: val}, nil
	case document.Object:
		if len(val) == 1 {
			for k, arg := range val {
				if k == "$dateToString" {
					return parseDateToString(arg)
				}
				if strings.HasPrefix(k, "$") {
					return nil, fmt.Errorf("%w: expression %s", ErrUnsupportedOperation, k)
				}
			}
		}
		fields := make(map[string]Expr, len(val))
		for k, sub := range val {
			if strings.HasPrefix(k, "$") {
				return nil, fmt.Errorf("%w: expression %s", ErrUnsupportedOperation, k)
			}
			e, err := ParseExpr(sub)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = e
		}
		return ObjectExpr{Fields: fields}, nil
	case nil:
		return Literal{Value: document.Null{}}, nil
	default:
		return Literal{Value: v}, nil
	}
}

func parseDateToString(arg document.Value) (Expr, error) {
	spec, ok := arg.(document.Object)
	if !ok {
		return nil, fmt.Errorf("%w: $dateToString requires an object", ErrInvalidPipeline)
	}
	for k := range spec {
		if k != "format" && k != "date" {
			return nil, fmt.Errorf("%w: $dateToString option %q", ErrUnsupportedOperation, k)
		}
	}

	format := "%Y-%m-%dT%H:%M:%S.%LZ"
	if f, ok := spec["format"]; ok {
		s, ok := f.(document.String)
		if !ok {
			return nil, fmt.Errorf("%w: $dateToString format must be a string", ErrInvalidPipeline)
		}
		format = string(s)
	}
	if err := checkDateFormat(format); err != nil {
		return nil, err
	}

	rawDate, ok := spec["date"]
	if !ok {
		return nil, fmt.Errorf("%w: $dateToString requires a date", ErrInvalidPipeline)
	}
	date, err := ParseExpr(rawDate)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	return DateToString{Format: format, Date: date}, nil
}

func parseSort(arg document.Value) (Stage, error) {
	spec, ok := arg.(document.Object)
	if !ok || len(spec) == 0 {
		return nil, fmt.Errorf("%w: $sort requires a non-empty object", ErrInvalidPipeline)
	}
	if len(spec) > 1 {
		return nil, fmt.Errorf("%w: $sort on %d keys", ErrUnsupportedOperation, len(spec))
	}
	var field string
	for k := range spec {
		field = k
	}
	dir, ok := direction(spec[field])
	if !ok {
		return nil, fmt.Errorf("%w: $sort direction for %q must be 1 or -1", ErrInvalidPipeline, field)
	}
	return Sort{Keys: []SortKey{{Field: field, Desc: dir < 0}}}, nil
}

func direction(v document.Value) (int, bool) {
	f, ok := document.AsFloat(v)
	if !ok {
		return 0, false
	}
	switch f {
	case 1:
		return 1, true
	case -1:
		return -1, true
	}
	return 0, false
}

func parseUnwind(arg document.Value) (Stage, error) {
	var (
		path     document.Value
		preserve bool
	)
	switch val := arg.(type) {
	case document.String:
		path = val
	case document.Object:
		for k := range val {
			if k != "path" && k != "preserveNullAndEmptyArrays" {
				return nil, fmt.Errorf("%w: $unwind option %q", ErrUnsupportedOperation, k)
			}
		}
		path = val["path"]
		if p, ok := val["preserveNullAndEmptyArrays"]; ok {
			b, ok := p.(document.Bool)
			if !ok {
				return nil, fmt.Errorf("%w: preserveNullAndEmptyArrays must be a boolean", ErrInvalidPipeline)
			}
			preserve = bool(b)
		}
	default:
		return nil, fmt.Errorf("%w: $unwind requires a path", ErrInvalidPipeline)
	}

	s, ok := path.(document.String)
	if !ok || len(s) < 2 || !strings.HasPrefix(string(s), "$") {
		return nil, fmt.Errorf("%w: $unwind path must be a \"$field\" string", ErrInvalidPipeline)
	}
	return Unwind{Path: string(s[1:]), PreserveNullAndEmptyArrays: preserve}, nil
}

func nonNegativeInt(stage string, v document.Value) (int64, error) {
	f, ok := document.AsFloat(v)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s requires a non-negative integer", ErrInvalidPipeline, stage)
	}
	return int64(f), nil
}

func positiveInt(stage string, v document.Value) (int64, error) {
	n, err := nonNegativeInt(stage, v)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s requires a positive integer", ErrInvalidPipeline, stage)
	}
	return n, nil
}
