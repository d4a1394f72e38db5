// Package constant models compile-time constant values.
//
// A Value carries the result of resolving a constant expression: a bool, a
// string, or a number typed by one of the primitive kinds. Numeric literals
// start out as UntypedNumeric carrying their source text and take on a
// concrete kind on first conversion, so the text is parsed directly into
// the requested representation instead of through an intermediate width.
package constant

type Kind uint8

const (
	Invalid Kind = iota
	Bool
	String
	DocComment
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	UntypedNumeric
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case String:
		return "string"
	case DocComment:
		return "doc comment"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case UntypedNumeric:
		return "untyped numeric"
	}
	return "invalid"
}

func (k Kind) IsSigned() bool {
	return k >= Int8 && k <= Int64
}

func (k Kind) IsUnsigned() bool {
	return k >= Uint8 && k <= Uint64
}

func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat() || k == UntypedNumeric
}

// Bits returns the representation width of a numeric kind.
func (k Kind) Bits() int {
	switch k {
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	}
	return 0
}
