package pipeline

import "github.com/roach88/sweatz/internal/document"

// accumulator folds the values of one output field over a partition.
type accumulator interface {
	add(v document.Value)
	result() document.Value
}

func newAccumulator(op AccOp) accumulator {
	switch op {
	case AccSum:
		return &sumAcc{}
	case AccAvg:
		return &avgAcc{}
	case AccMin:
		return &extremeAcc{sign: -1}
	case AccMax:
		return &extremeAcc{sign: 1}
	case AccFirst:
		return &firstAcc{}
	case AccLast:
		return &lastAcc{}
	case AccPush:
		return &pushAcc{}
	case AccAddToSet:
		return &setAcc{seen: make(map[string]bool)}
	}
	return nil
}

// sumAcc adds numeric values and ignores everything else. The result stays
// an Int while every addend is an Int and the total fits in int64.
type sumAcc struct {
	i       int64
	f       float64
	isFloat bool
}

func (a *sumAcc) add(v document.Value) {
	switch n := v.(type) {
	case document.Int:
		if !a.isFloat {
			sum := a.i + int64(n)
			if (int64(n) > 0 && sum < a.i) || (int64(n) < 0 && sum > a.i) {
				a.toFloat()
				a.f += float64(n)
				return
			}
			a.i = sum
			return
		}
		a.f += float64(n)
	case document.Float:
		if !a.isFloat {
			a.toFloat()
		}
		a.f += float64(n)
	}
}

func (a *sumAcc) toFloat() {
	a.isFloat = true
	a.f = float64(a.i)
}

func (a *sumAcc) result() document.Value {
	if a.isFloat {
		return document.Float(a.f)
	}
	return document.Int(a.i)
}

// avgAcc averages numeric values; a partition without any is null.
type avgAcc struct {
	sum float64
	n   int
}

func (a *avgAcc) add(v document.Value) {
	if f, ok := document.AsFloat(v); ok {
		a.sum += f
		a.n++
	}
}

func (a *avgAcc) result() document.Value {
	if a.n == 0 {
		return document.Null{}
	}
	return document.Float(a.sum / float64(a.n))
}

// extremeAcc keeps the smallest (sign -1) or largest (sign 1) value under
// document.Compare, ignoring missing and null values.
type extremeAcc struct {
	sign int
	best document.Value
}

func (a *extremeAcc) add(v document.Value) {
	switch v.(type) {
	case nil, document.Null:
		return
	}
	if a.best == nil || document.Compare(v, a.best)*a.sign > 0 {
		a.best = v
	}
}

func (a *extremeAcc) result() document.Value {
	if a.best == nil {
		return document.Null{}
	}
	return a.best
}

type firstAcc struct {
	v    document.Value
	seen bool
}

func (a *firstAcc) add(v document.Value) {
	if !a.seen {
		a.v, a.seen = v, true
	}
}

func (a *firstAcc) result() document.Value {
	return nullIfMissing(a.v)
}

type lastAcc struct {
	v document.Value
}

func (a *lastAcc) add(v document.Value) {
	a.v = v
}

func (a *lastAcc) result() document.Value {
	return nullIfMissing(a.v)
}

// pushAcc collects values in input order, skipping missing ones.
type pushAcc struct {
	values document.Array
}

func (a *pushAcc) add(v document.Value) {
	if v != nil {
		a.values = append(a.values, v)
	}
}

func (a *pushAcc) result() document.Value {
	if a.values == nil {
		return document.Array{}
	}
	return a.values
}

// setAcc collects distinct values in first-seen order.
type setAcc struct {
	values document.Array
	seen   map[string]bool
}

func (a *setAcc) add(v document.Value) {
	if v == nil {
		return
	}
	k := document.Key(v)
	if a.seen[k] {
		return
	}
	a.seen[k] = true
	a.values = append(a.values, v)
}

func (a *setAcc) result() document.Value {
	if a.values == nil {
		return document.Array{}
	}
	return a.values
}

func nullIfMissing(v document.Value) document.Value {
	if v == nil {
		return document.Null{}
	}
	return v
}
