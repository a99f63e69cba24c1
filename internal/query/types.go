package query

import (
	"regexp"

	"github.com/roach88/sweatz/internal/document"
)

// Predicate represents a filter condition over one record.
//
// This is a sealed interface - only types in this package implement it.
// The marker method keeps type switches in Match and in the SQL compiler of
// the snapshot package exhaustive.
//
// Predicate types:
//   - Compare: field <op> literal ($eq, $ne, $gt, $gte, $lt, $lte)
//   - In: field equals one of a set ($in, $nin, and _id equality)
//   - Exists: field presence ($exists)
//   - Regex: string field matches a pattern ($regex)
//   - And: all predicates must be true
//   - Or: at least one predicate must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
)

var opNames = [...]string{
	OpEq:  "$eq",
	OpNe:  "$ne",
	OpGt:  "$gt",
	OpGte: "$gte",
	OpLt:  "$lt",
	OpLte: "$lte",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "$unknown"
}

// Compare represents a field-vs-literal comparison.
//
// Semantics:
//
//	<field> <op> <value>
//
// An array-valued field satisfies Compare when the array itself or any of
// its elements does. Range operators only compare values of the same kind
// (numbers with numbers, strings with strings, and so on). A missing field
// satisfies only OpNe.
type Compare struct {
	Field string
	Op    Op
	Value document.Value
}

func (Compare) predicateNode() {}

// In represents set membership.
//
// Semantics:
//
//	<field> IN (<values>)         Negate == false
//	<field> NOT IN (<values>)     Negate == true
//
// Equality on the identity field parses into In so that a hex string
// argument matches both the stored string and the ObjectID it denotes. In
// that case Literal keeps the argument as written, which is what an upsert
// stores.
type In struct {
	Field   string
	Values  []document.Value
	Negate  bool
	Literal document.Value // set when In stands for a single equality
}

func (In) predicateNode() {}

// Exists represents a field presence test. Explicit nulls are present.
type Exists struct {
	Field string
	Want  bool
}

func (Exists) predicateNode() {}

// Regex matches string fields (or string elements of array fields).
type Regex struct {
	Field   string
	Pattern *regexp.Regexp
	Source  string // pattern as written
	Options string // i, m, s
}

func (Regex) predicateNode() {}

// And represents a conjunction. Empty Predicates is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction. Empty Predicates is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// All is the predicate that matches every record.
var All Predicate = And{}
