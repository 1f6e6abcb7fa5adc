// Package value implements the tagged JSON value used for vertex and edge
// properties, with a total order suitable for index keys (spec §3).
package value

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
)

// Tag identifies the kind of JSON value a Value holds, and also gives the
// total order's primary sort key: null < bool < number < string < array <
// object.
type Tag int

const (
	TagNull Tag = iota
	TagBool
	TagNumber
	TagString
	TagArray
	TagObject
)

// Value is an arbitrary JSON value: null, bool, number, string, array, or
// object. It wraps Go's natural json.Unmarshal(any) shape (nil, bool,
// float64, string, []any, map[string]any) so callers can build one directly
// from decoded JSON without an intermediate conversion step.
type Value struct {
	raw any
}

// Null is the JSON null value.
var Null = Value{raw: nil}

// FromAny wraps a decoded-JSON Go value (as produced by json.Unmarshal into
// an `any`) as a Value. It does not itself validate that raw is one of the
// six permitted JSON shapes; use FromJSON to parse and validate untrusted
// bytes instead.
func FromAny(raw any) Value { return Value{raw: raw} }

// FromJSON parses JSON bytes into a Value.
func FromJSON(b []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Value{}, err
	}
	return Value{raw: raw}, nil
}

// Bool wraps a bool.
func Bool(b bool) Value { return Value{raw: b} }

// Number wraps a float64.
func Number(f float64) Value { return Value{raw: f} }

// String wraps a string.
func String(s string) Value { return Value{raw: s} }

// Raw returns the underlying decoded-JSON Go value.
func (v Value) Raw() any { return v.raw }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.raw == nil }

// Tag classifies v for ordering purposes.
func (v Value) Tag() Tag {
	switch v.raw.(type) {
	case nil:
		return TagNull
	case bool:
		return TagBool
	case float64, int, int64:
		return TagNumber
	case string:
		return TagString
	case []any:
		return TagArray
	case map[string]any:
		return TagObject
	default:
		return TagNull
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(v.raw) }

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &v.raw)
}

// GobEncode implements gob.GobEncoder. Value's only field is unexported, so
// gob would otherwise encode it as an empty struct; this routes the
// snapshot codec (package graphstore/memory) through the same JSON
// representation already used on the wire. A Value wrapping NaN or an
// infinity has no JSON form, so MarshalJSON, and with it GobEncode, returns
// an error for it.
func (v Value) GobEncode() ([]byte, error) { return v.MarshalJSON() }

// GobDecode implements gob.GobDecoder.
func (v *Value) GobDecode(b []byte) error { return v.UnmarshalJSON(b) }

// Equal reports JSON-equality between two values: same tag and equal
// canonical encoding, recursively for arrays/objects (key order does not
// matter for objects).
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// Compare implements the total order of spec §3: tag order
// null < bool < number < string < array < object, lexicographic within each
// tag; numbers compare by IEEE-754 value with NaN equal to itself and
// ordered last among numbers. The order is deterministic and stable across
// runs: it never depends on map iteration order or pointer identity.
func Compare(a, b Value) int {
	ta, tb := a.Tag(), b.Tag()
	if ta != tb {
		if ta < tb {
			return -1
		}
		return 1
	}
	switch ta {
	case TagNull:
		return 0
	case TagBool:
		av, bv := toBool(a), toBool(b)
		if av == bv {
			return 0
		}
		if !av && bv {
			return -1
		}
		return 1
	case TagNumber:
		return compareFloat(toFloat(a), toFloat(b))
	case TagString:
		return bytes.Compare([]byte(toString(a)), []byte(toString(b)))
	case TagArray:
		return compareArrays(toArray(a), toArray(b))
	case TagObject:
		return compareObjects(toObject(a), toObject(b))
	default:
		return 0
	}
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Value) bool { return Compare(a, b) < 0 }

func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1 // NaN sorts last among numbers
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareArrays(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(FromAny(a[i]), FromAny(b[i])); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareObjects(a, b map[string]any) int {
	ak := sortedKeys(a)
	bk := sortedKeys(b)
	n := len(ak)
	if len(bk) < n {
		n = len(bk)
	}
	for i := 0; i < n; i++ {
		if c := bytes.Compare([]byte(ak[i]), []byte(bk[i])); c != 0 {
			return c
		}
		if c := Compare(FromAny(a[ak[i]]), FromAny(b[bk[i]])); c != 0 {
			return c
		}
	}
	switch {
	case len(ak) < len(bk):
		return -1
	case len(ak) > len(bk):
		return 1
	default:
		return 0
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toBool(v Value) bool {
	b, _ := v.raw.(bool)
	return b
}

func toFloat(v Value) float64 {
	switch n := v.raw.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toString(v Value) string {
	s, _ := v.raw.(string)
	return s
}

func toArray(v Value) []any {
	a, _ := v.raw.([]any)
	return a
}

func toObject(v Value) map[string]any {
	m, _ := v.raw.(map[string]any)
	return m
}

// CanonicalBytes returns a byte encoding of v such that two values are
// JSON-equal (Equal/Compare==0) iff their CanonicalBytes are identical. It
// is used as a grouping key for the secondary property index (spec §3) —
// both as an in-memory map key and as the input to the KV backend's stable
// value hash (package enckey) — and, unlike encoding/json, it never fails
// on values this package can itself construct (e.g. Value wrapping NaN),
// since every property value that actually round-trips through JSON can
// never contain NaN in the first place.
func CanonicalBytes(v Value) []byte {
	var buf []byte
	return appendCanonical(buf, v)
}

func appendCanonical(buf []byte, v Value) []byte {
	tag := v.Tag()
	buf = append(buf, byte(tag))
	switch tag {
	case TagNull:
	case TagBool:
		if toBool(v) {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case TagNumber:
		bits := math.Float64bits(toFloat(v))
		if math.IsNaN(toFloat(v)) {
			bits = math.Float64bits(math.NaN())
		} else if toFloat(v) == 0 {
			bits = 0 // -0 and +0 compare equal, so they share one encoding
		}
		for i := 7; i >= 0; i-- {
			buf = append(buf, byte(bits>>(8*i)))
		}
	case TagString:
		s := toString(v)
		buf = appendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	case TagArray:
		a := toArray(v)
		buf = appendUvarint(buf, uint64(len(a)))
		for _, el := range a {
			buf = appendCanonical(buf, FromAny(el))
		}
	case TagObject:
		m := toObject(v)
		keys := sortedKeys(m)
		buf = appendUvarint(buf, uint64(len(keys)))
		for _, k := range keys {
			buf = appendUvarint(buf, uint64(len(k)))
			buf = append(buf, k...)
			buf = appendCanonical(buf, FromAny(m[k]))
		}
	}
	return buf
}

func appendUvarint(buf []byte, n uint64) []byte {
	var tmp [10]byte
	i := 0
	for n >= 0x80 {
		tmp[i] = byte(n) | 0x80
		n >>= 7
		i++
	}
	tmp[i] = byte(n)
	return append(buf, tmp[:i+1]...)
}
