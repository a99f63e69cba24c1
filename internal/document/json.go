package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (obj Object) MarshalJSON() ([]byte, error) {
	return Canonical(obj), nil
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (arr Array) MarshalJSON() ([]byte, error) {
	return Canonical(arr), nil
}

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON encodes the identifier as {"$oid": "<hex>"}.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return Canonical(id), nil
}

// MarshalJSON encodes the timestamp as {"$date": "<rfc3339 millis>"}.
func (t Time) MarshalJSON() ([]byte, error) {
	return Canonical(t), nil
}

// UnmarshalJSON implements json.Unmarshaler, decoding extended JSON
// wrappers ($oid, $date, $numberDouble) into typed values.
func (obj *Object) UnmarshalJSON(data []byte) error {
	parsed, err := ParseObject(data)
	if err != nil {
		return err
	}
	*obj = parsed
	return nil
}

// ParseJSON decodes extended JSON into a Value. Integral number literals
// become Int; everything else numeric becomes Float.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return FromExtended(raw)
}

// ParseObject decodes an extended-JSON object.
func ParseObject(data []byte) (Object, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	switch obj := v.(type) {
	case Object:
		return obj, nil
	case Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a JSON object, got %s", KindOf(v))
	}
}

// ParseArray decodes an extended-JSON array of objects, the shape of an
// aggregation pipeline.
func ParseArray(data []byte) ([]Object, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %s", KindOf(v))
	}
	out := make([]Object, len(arr))
	for i, elem := range arr {
		obj, ok := elem.(Object)
		if !ok {
			return nil, fmt.Errorf("array[%d]: expected an object, got %s", i, KindOf(elem))
		}
		out[i] = obj
	}
	return out, nil
}

// FromExtended converts decoded JSON/YAML/CUE data into a Value, turning
// single-key {"$oid": ...}, {"$date": ...} and {"$numberDouble": ...}
// maps into ObjectID, Time and Float.
func FromExtended(v any) (Value, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if wrapped, ok, err := fromWrapper(val); ok || err != nil {
				return wrapped, err
			}
		}
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := FromExtended(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := FromExtended(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	default:
		return FromGo(v)
	}
}

func fromWrapper(m map[string]any) (Value, bool, error) {
	if raw, ok := m["$oid"]; ok {
		s, isString := raw.(string)
		if !isString {
			return nil, true, fmt.Errorf("%w: $oid must be a string", ErrInvalidIdentity)
		}
		id, err := ObjectIDFromHex(s)
		return id, true, err
	}
	if raw, ok := m["$date"]; ok {
		switch d := raw.(type) {
		case string:
			t, err := time.Parse(time.RFC3339Nano, d)
			if err != nil {
				return nil, true, fmt.Errorf("$date: %w", err)
			}
			return NewTime(t), true, nil
		case time.Time:
			return NewTime(d), true, nil
		default:
			return nil, true, fmt.Errorf("$date must be an RFC 3339 string, got %T", raw)
		}
	}
	if raw, ok := m["$numberDouble"]; ok {
		switch raw {
		case "NaN":
			return Float(math.NaN()), true, nil
		case "Infinity":
			return Float(math.Inf(1)), true, nil
		case "-Infinity":
			return Float(math.Inf(-1)), true, nil
		}
		return nil, true, fmt.Errorf("$numberDouble: unsupported value %v", raw)
	}
	return nil, false, nil
}
