package pipeline

import (
	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/query"
)

// Stage is one step of an aggregation pipeline.
//
// This is a sealed interface - only types in this package implement it.
// Stages compose strictly in order: each stage's output is the next stage's
// input.
type Stage interface {
	stageNode() // Marker method - seals interface to this package
}

// Match keeps the records satisfying Predicate ($match).
type Match struct {
	Predicate query.Predicate
}

func (Match) stageNode() {}

// Group partitions records by Key and reduces each partition with the
// accumulators in Fields ($group). Output records carry the key under "_id"
// and appear in the order their key was first seen.
type Group struct {
	Key    Expr
	Fields []Accumulator
}

func (Group) stageNode() {}

// Sort orders records by Keys, earlier keys taking precedence ($sort).
// The sort is stable.
type Sort struct {
	Keys []SortKey
}

func (Sort) stageNode() {}

// SortKey is one field of a sort specification.
type SortKey struct {
	Field string
	Desc  bool
}

// Unwind emits one record per element of the array at Path ($unwind).
type Unwind struct {
	Path                       string
	PreserveNullAndEmptyArrays bool
}

func (Unwind) stageNode() {}

// Limit keeps the first N records ($limit).
type Limit struct {
	N int64
}

func (Limit) stageNode() {}

// Skip drops the first N records ($skip).
type Skip struct {
	N int64
}

func (Skip) stageNode() {}

// Count replaces its input with a single record {Field: n} ($count).
// An empty input produces no record.
type Count struct {
	Field string
}

func (Count) stageNode() {}

// AccOp identifies a group accumulator.
type AccOp string

const (
	AccSum      AccOp = "$sum"
	AccAvg      AccOp = "$avg"
	AccMin      AccOp = "$min"
	AccMax      AccOp = "$max"
	AccFirst    AccOp = "$first"
	AccLast     AccOp = "$last"
	AccPush     AccOp = "$push"
	AccAddToSet AccOp = "$addToSet"
)

// Accumulator computes output field Name from Arg over a partition.
type Accumulator struct {
	Name string
	Op   AccOp
	Arg  Expr
}

// Expr is a value computed from a record.
//
// Expression types:
//   - Literal: a constant
//   - FieldRef: "$field" or "$a.b"
//   - DateToString: {"$dateToString": {"format": ..., "date": ...}}
//   - ObjectExpr: an object whose values are expressions (composite keys)
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Literal is a constant expression.
type Literal struct {
	Value document.Value
}

func (Literal) exprNode() {}

// FieldRef reads Path from the record. A missing field evaluates to nil.
type FieldRef struct {
	Path string
}

func (FieldRef) exprNode() {}

// DateToString formats the timestamp Date evaluates to with a strftime-like
// Format. Supported verbs: %Y %m %d %H %M %S %L %j %%.
type DateToString struct {
	Format string
	Date   Expr
}

func (DateToString) exprNode() {}

// ObjectExpr builds an object from named sub-expressions.
type ObjectExpr struct {
	Fields map[string]Expr
}

func (ObjectExpr) exprNode() {}
