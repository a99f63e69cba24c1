package document

import (
	"slices"
	"strings"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface over the value kinds a record can hold.
// Only Null, String, Int, Float, Bool, Time, Array, Object and ObjectID
// implement it.
type Value interface {
	docValue() // Sealed - only these types implement it
}

// Null represents an explicit null field value.
type Null struct{}

func (Null) docValue() {}

// String is a UTF-8 string value.
type String string

func (String) docValue() {}

// Int is a 64-bit integer value.
type Int int64

func (Int) docValue() {}

// Float is a 64-bit floating point value.
// Int and Float compare and group numerically: Int(5) equals Float(5).
type Float float64

func (Float) docValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) docValue() {}

// Time is a UTC timestamp with millisecond precision, matching the
// resolution the document database stores. Construct it with NewTime.
type Time time.Time

func (Time) docValue() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) docValue() {}

// Object maps field names to values. A record is an Object.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) docValue() {}

// NewTime truncates t to milliseconds and converts it to UTC.
func NewTime(t time.Time) Time {
	return Time(t.UTC().Truncate(time.Millisecond))
}

// Std returns the value as a time.Time.
func (t Time) Std() time.Time {
	return time.Time(t)
}

// Equal reports whether t and u are the same instant.
func (t Time) Equal(u Time) bool {
	return time.Time(t).Equal(time.Time(u))
}

// Kind identifies the variant of a Value. The numeric order of kinds is the
// cross-type sort order used by Compare.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindNumber
	KindString
	KindObject
	KindArray
	KindObjectID
	KindBool
	KindTime
)

var kindNames = map[Kind]string{
	KindMissing:  "missing",
	KindNull:     "null",
	KindNumber:   "number",
	KindString:   "string",
	KindObject:   "object",
	KindArray:    "array",
	KindObjectID: "objectId",
	KindBool:     "bool",
	KindTime:     "date",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindOf returns the kind of v. A nil Value is KindMissing.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindMissing
	case Null:
		return KindNull
	case Int, Float:
		return KindNumber
	case String:
		return KindString
	case Object:
		return KindObject
	case Array:
		return KindArray
	case ObjectID:
		return KindObjectID
	case Bool:
		return KindBool
	case Time:
		return KindTime
	default:
		return KindMissing
	}
}

// SortedKeys returns keys in UTF-16 code unit order, the order canonical
// encoding uses.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code units.
// Go's default string comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Get returns the value stored at field. Dotted paths ("goal.calories")
// descend into embedded objects; they do not descend into arrays.
func (obj Object) Get(field string) (Value, bool) {
	if v, ok := obj[field]; ok {
		return v, true
	}
	head, rest, found := strings.Cut(field, ".")
	if !found {
		return nil, false
	}
	inner, ok := obj[head].(Object)
	if !ok {
		return nil, false
	}
	return inner.Get(rest)
}

// Has reports whether field is present (explicit nulls count as present).
func (obj Object) Has(field string) bool {
	_, ok := obj.Get(field)
	return ok
}

// StringOr returns the string at field, or def when missing or not a string.
func (obj Object) StringOr(field, def string) string {
	if v, ok := obj.Get(field); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return def
}

// IntOr returns the integer at field, or def. Integral floats are accepted.
func (obj Object) IntOr(field string, def int64) int64 {
	v, ok := obj.Get(field)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case Int:
		return int64(n)
	case Float:
		if float64(n) == float64(int64(n)) {
			return int64(n)
		}
	}
	return def
}

// FloatOr returns the number at field as float64, or def.
func (obj Object) FloatOr(field string, def float64) float64 {
	if v, ok := obj.Get(field); ok {
		if f, ok := AsFloat(v); ok {
			return f
		}
	}
	return def
}

// BoolOr returns the boolean at field, or def.
func (obj Object) BoolOr(field string, def bool) bool {
	if v, ok := obj.Get(field); ok {
		if b, ok := v.(Bool); ok {
			return bool(b)
		}
	}
	return def
}

// TimeOr returns the timestamp at field, or def.
func (obj Object) TimeOr(field string, def time.Time) time.Time {
	if v, ok := obj.Get(field); ok {
		if t, ok := v.(Time); ok {
			return t.Std()
		}
	}
	return def
}

// ID returns the identity field value.
func (obj Object) ID() (Value, bool) {
	v, ok := obj[IDField]
	return v, ok
}

// Clone returns a deep copy of obj.
func (obj Object) Clone() Object {
	if obj == nil {
		return nil
	}
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Object:
		return val.Clone()
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	default:
		return v
	}
}

// AsFloat returns the numeric value of an Int or Float.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}
