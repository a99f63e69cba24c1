package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/query"
)

// Aggregate parses raw and runs it over records.
func Aggregate(raw []document.Object, records []document.Object) ([]document.Object, error) {
	stages, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Run(stages, records)
}

// Run evaluates stages in order over records. The input slice is not
// modified; records produced by $unwind are copies.
func Run(stages []Stage, records []document.Object) ([]document.Object, error) {
	current := slices.Clone(records)
	for i, stage := range stages {
		next, err := runStage(stage, current)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		current = next
	}
	return current, nil
}

func runStage(stage Stage, in []document.Object) ([]document.Object, error) {
	switch s := stage.(type) {
	case Match:
		out := make([]document.Object, 0, len(in))
		for _, r := range in {
			if query.Match(s.Predicate, r) {
				out = append(out, r)
			}
		}
		return out, nil
	case Group:
		return runGroup(s, in)
	case Sort:
		SortRecords(in, s.Keys)
		return in, nil
	case Unwind:
		return runUnwind(s, in), nil
	case Limit:
		if int64(len(in)) > s.N {
			return in[:s.N], nil
		}
		return in, nil
	case Skip:
		if int64(len(in)) <= s.N {
			return []document.Object{}, nil
		}
		return in[s.N:], nil
	case Count:
		if len(in) == 0 {
			return []document.Object{}, nil
		}
		return []document.Object{{s.Field: document.Int(len(in))}}, nil
	default:
		return nil, fmt.Errorf("%w: stage %T", ErrUnsupportedOperation, stage)
	}
}

type partition struct {
	key  document.Value
	accs []accumulator
}

func runGroup(g Group, in []document.Object) ([]document.Object, error) {
	var (
		order  []*partition
		byKey  = make(map[string]*partition)
		values = make([]document.Value, len(g.Fields))
	)

	for _, r := range in {
		key, err := Eval(g.Key, r)
		if err != nil {
			return nil, fmt.Errorf("$group _id: %w", err)
		}
		// Missing and null keys share one partition.
		key = nullIfMissing(key)

		for i, f := range g.Fields {
			v, err := Eval(f.Arg, r)
			if err != nil {
				return nil, fmt.Errorf("$group %s: %w", f.Name, err)
			}
			values[i] = v
		}

		k := document.Key(key)
		p, ok := byKey[k]
		if !ok {
			p = &partition{key: key, accs: make([]accumulator, len(g.Fields))}
			for i, f := range g.Fields {
				p.accs[i] = newAccumulator(f.Op)
			}
			byKey[k] = p
			order = append(order, p)
		}
		for i, acc := range p.accs {
			acc.add(values[i])
		}
	}

	out := make([]document.Object, 0, len(order))
	for _, p := range order {
		rec := document.Object{document.IDField: p.key}
		for i, f := range g.Fields {
			rec[f.Name] = p.accs[i].result()
		}
		out = append(out, rec)
	}
	return out, nil
}

func runUnwind(u Unwind, in []document.Object) []document.Object {
	out := make([]document.Object, 0, len(in))
	for _, r := range in {
		v, _ := r.Get(u.Path)
		arr, isArray := v.(document.Array)
		switch {
		case isNullish(v):
			if u.PreserveNullAndEmptyArrays {
				out = append(out, r)
			}
		case !isArray:
			out = append(out, r)
		case len(arr) == 0:
			if u.PreserveNullAndEmptyArrays {
				cp := r.Clone()
				deletePath(cp, u.Path)
				out = append(out, cp)
			}
		default:
			for _, elem := range arr {
				cp := r.Clone()
				setPath(cp, u.Path, document.Clone(elem))
				out = append(out, cp)
			}
		}
	}
	return out
}

func isNullish(v document.Value) bool {
	switch v.(type) {
	case nil, document.Null:
		return true
	}
	return false
}

// setPath replaces the value at a path known to exist.
func setPath(obj document.Object, path string, v document.Value) {
	if _, ok := obj[path]; ok {
		obj[path] = v
		return
	}
	head, rest, _ := strings.Cut(path, ".")
	if inner, ok := obj[head].(document.Object); ok {
		setPath(inner, rest, v)
	}
}

func deletePath(obj document.Object, path string) {
	if _, ok := obj[path]; ok {
		delete(obj, path)
		return
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return
	}
	if inner, ok := obj[head].(document.Object); ok {
		deletePath(inner, rest)
	}
}
