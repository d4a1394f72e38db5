package constant

import (
	"fmt"
	"strconv"
)

// Value is a resolved constant. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	s    string // String, DocComment, UntypedNumeric source text
	i    int64  // signed kinds
	u    uint64 // unsigned kinds
	f    float64
}

func MakeBool(b bool) Value {
	return Value{kind: Bool, b: b}
}

func MakeString(s string) Value {
	return Value{kind: String, s: s}
}

func MakeDocComment(s string) Value {
	return Value{kind: DocComment, s: s}
}

// MakeUntypedNumeric wraps a numeric literal's source text. The text is
// parsed on conversion, directly into the requested kind.
func MakeUntypedNumeric(text string) Value {
	return Value{kind: UntypedNumeric, s: text}
}

// MakeInt builds a signed value of the given kind. The kind must be signed
// and the value must fit; violations are programmer errors.
func MakeInt(kind Kind, x int64) Value {
	if !kind.IsSigned() {
		panic(fmt.Errorf("constant: MakeInt with kind %v", kind))
	}
	return Value{kind: kind, i: x}
}

// MakeUint builds an unsigned value of the given kind.
func MakeUint(kind Kind, x uint64) Value {
	if !kind.IsUnsigned() {
		panic(fmt.Errorf("constant: MakeUint with kind %v", kind))
	}
	return Value{kind: kind, u: x}
}

// MakeFloat builds a float value of the given kind.
func MakeFloat(kind Kind, x float64) Value {
	if !kind.IsFloat() {
		panic(fmt.Errorf("constant: MakeFloat with kind %v", kind))
	}
	return Value{kind: kind, f: x}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsValid() bool {
	return v.kind != Invalid
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.b, true
}

// AsString returns the text payload of String and DocComment values.
func (v Value) AsString() (string, bool) {
	if v.kind != String && v.kind != DocComment {
		return "", false
	}
	return v.s, true
}

func (v Value) AsInt64() (int64, bool) {
	switch {
	case v.kind.IsSigned():
		return v.i, true
	case v.kind.IsUnsigned():
		if v.u > uint64(1<<63-1) {
			return 0, false
		}
		return int64(v.u), true
	}
	return 0, false
}

func (v Value) AsFloat64() (float64, bool) {
	if !v.kind.IsFloat() {
		return 0, false
	}
	return v.f, true
}

// AsUint64 returns the canonical wide bit pattern of an integer value:
// unsigned values as-is, signed values sign-extended two's complement.
// Untyped numerics are parsed on the spot. This is the representation used
// by bitwise OR and by member-value uniqueness scopes.
func (v Value) AsUint64() (uint64, bool) {
	switch {
	case v.kind.IsUnsigned():
		return v.u, true
	case v.kind.IsSigned():
		return uint64(v.i), true
	case v.kind == UntypedNumeric:
		if n, err := strconv.ParseUint(v.s, 0, 64); err == nil {
			return n, true
		}
		if n, err := strconv.ParseInt(v.s, 0, 64); err == nil {
			return uint64(n), true
		}
		return 0, false
	}
	return 0, false
}

// Format renders the value for diagnostics and artifacts. String payloads
// come back verbatim, numbers in decimal.
func (v Value) Format() string {
	switch {
	case v.kind == Bool:
		if v.b {
			return "true"
		}
		return "false"
	case v.kind == String, v.kind == DocComment:
		return v.s
	case v.kind == UntypedNumeric:
		return v.s
	case v.kind.IsSigned():
		return strconv.FormatInt(v.i, 10)
	case v.kind.IsUnsigned():
		return strconv.FormatUint(v.u, 10)
	case v.kind.IsFloat():
		return strconv.FormatFloat(v.f, 'g', -1, v.kind.Bits())
	}
	return "<invalid>"
}
