package document

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// TimeLayout is the textual form of Time in extended JSON.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Canonical produces the canonical extended-JSON encoding of v.
//
// Differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping (< > & are kept)
//  3. Strings and keys are NFC normalized
//  4. Integral floats print without a fraction, so Int(5) and Float(5)
//     encode identically
//  5. ObjectID, Time and non-finite floats use the $oid, $date and
//     $numberDouble wrappers
//
// A nil Value (missing field) encodes as null.
func Canonical(v Value) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.Bytes()
}

// Key returns the canonical encoding of v as a string, for use as a map key.
// Values that are Equal under Compare have the same Key, except strings that
// differ only in Unicode normalization, which share a Key as well.
func Key(v Value) string {
	return string(Canonical(v))
}

func writeCanonical(buf *bytes.Buffer, v Value) {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		writeCanonicalString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		writeCanonicalFloat(buf, float64(val))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Time:
		buf.WriteString(`{"$date":`)
		writeCanonicalString(buf, val.Std().UTC().Format(TimeLayout))
		buf.WriteByte('}')
	case ObjectID:
		buf.WriteString(`{"$oid":"`)
		buf.WriteString(val.Hex())
		buf.WriteString(`"}`)
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	}
}

// writeCanonicalString writes a JSON string with NFC normalization and
// HTML escaping disabled.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}

func writeCanonicalFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString(`{"$numberDouble":"NaN"}`)
		return
	case math.IsInf(f, 1):
		buf.WriteString(`{"$numberDouble":"Infinity"}`)
		return
	case math.IsInf(f, -1):
		buf.WriteString(`{"$numberDouble":"-Infinity"}`)
		return
	}

	if f == 0 {
		buf.WriteByte('0')
		return
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
}
