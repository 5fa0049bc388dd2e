// Package record defines the dynamic, artifact-agnostic row representation
// that flows out of a feather: a Record is a mapping from field name to a
// tagged Value, since the core treats artifact rows as opaque except for a
// handful of identity- and timestamp-bearing fields.
package record

import (
	"fmt"
	"math"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a tagged union over the scalar types a feather field may hold.
// Zero value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// NewString wraps a string.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewInt wraps an integer.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat wraps a floating-point number.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewBool wraps a boolean.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports which variant is populated.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string form of the value. Non-string scalars are
// formatted; null returns ("", false).
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindInt:
		return fmt.Sprintf("%d", v.i), true
	case KindFloat:
		return fmt.Sprintf("%g", v.f), true
	case KindBool:
		if v.b {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// AsInt returns the integer form of the value, converting from float when exact.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f != math.Trunc(v.f) {
			return 0, false
		}
		return int64(v.f), true
	default:
		return 0, false
	}
}

// AsFloat returns the floating-point form of the value.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean form of the value.
func (v Value) AsBool() (bool, bool) {
	if v.kind == KindBool {
		return v.b, true
	}
	return false, false
}

// Any returns the value boxed as interface{}, for interop with generic
// comparison code (e.g. the semantic mapper's operator evaluation).
func (v Value) Any() interface{} {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// FromAny boxes a generic Go value (as decoded from JSON/YAML/driver rows)
// into a Value.
func FromAny(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case string:
		return NewString(val)
	case int:
		return NewInt(int64(val))
	case int32:
		return NewInt(int64(val))
	case int64:
		return NewInt(val)
	case float32:
		return NewFloat(float64(val))
	case float64:
		return NewFloat(val)
	case bool:
		return NewBool(val)
	default:
		return NewString(fmt.Sprintf("%v", val))
	}
}
