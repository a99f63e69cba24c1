package document

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// FromGo converts a plain Go value into a Value.
//
// Accepted: nil, Value, string, bool, every int and uint width (uints above
// math.MaxInt64 are rejected), float32/float64, json.Number, time.Time,
// []any, []string, []map[string]any, map[string]any.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Object:
		return val, nil
	case Array:
		return val, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrUnsupportedType, val)
		}
		return Float(f), nil
	case time.Time:
		return NewTime(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case []string:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = String(elem)
		}
		return arr, nil
	case []map[string]any:
		arr := make(Array, len(val))
		for i, elem := range val {
			obj, err := ObjectFromMap(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = obj
		}
		return arr, nil
	case map[string]any:
		return ObjectFromMap(val)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedType, u)
	}
	return Int(int64(u)), nil
}

// ObjectFromMap converts a map of plain Go values into an Object.
func ObjectFromMap(m map[string]any) (Object, error) {
	if m == nil {
		return nil, nil
	}
	obj := make(Object, len(m))
	for k, elem := range m {
		conv, err := FromGo(elem)
		if err != nil {
			return nil, fmt.Errorf("[%q]: %w", k, err)
		}
		obj[k] = conv
	}
	return obj, nil
}

// MustObject is ObjectFromMap that panics on error. Intended for literals
// in fixtures and tests.
func MustObject(m map[string]any) Object {
	obj, err := ObjectFromMap(m)
	if err != nil {
		panic(err)
	}
	return obj
}

// ToGo converts a Value back into plain Go values: nil, string, int64,
// float64, bool, time.Time, ObjectID, []any and map[string]any.
func ToGo(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Time:
		return val.Std()
	case ObjectID:
		return val
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	}
	return nil
}
