package types

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/constant"
)

// TypeID identifies an interned type descriptor. Equal IDs mean equal types.
type TypeID uint32

// NoTypeID marks a type that failed to resolve.
const NoTypeID TypeID = 0

// IsValid reports whether the id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind discriminates the shape of a resolved type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindString
	KindArray
	KindVector
	KindIdentifier
	KindHandle
	KindTransportSide
	KindUntypedNumeric
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindVector:
		return "vector"
	case KindIdentifier:
		return "identifier"
	case KindHandle:
		return "handle"
	case KindTransportSide:
		return "transport side"
	case KindUntypedNumeric:
		return "untyped numeric"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// PrimitiveSubtype names one of the fixed-width scalar types.
type PrimitiveSubtype uint8

const (
	SubtypeInvalid PrimitiveSubtype = iota
	SubtypeBool
	SubtypeInt8
	SubtypeInt16
	SubtypeInt32
	SubtypeInt64
	SubtypeUint8
	SubtypeUint16
	SubtypeUint32
	SubtypeUint64
	SubtypeFloat32
	SubtypeFloat64
)

func (s PrimitiveSubtype) String() string {
	switch s {
	case SubtypeBool:
		return "bool"
	case SubtypeInt8:
		return "int8"
	case SubtypeInt16:
		return "int16"
	case SubtypeInt32:
		return "int32"
	case SubtypeInt64:
		return "int64"
	case SubtypeUint8:
		return "uint8"
	case SubtypeUint16:
		return "uint16"
	case SubtypeUint32:
		return "uint32"
	case SubtypeUint64:
		return "uint64"
	case SubtypeFloat32:
		return "float32"
	case SubtypeFloat64:
		return "float64"
	default:
		return fmt.Sprintf("subtype(%d)", uint8(s))
	}
}

// IsSignedInteger reports whether s is one of the int8..int64 subtypes.
func (s PrimitiveSubtype) IsSignedInteger() bool {
	return s >= SubtypeInt8 && s <= SubtypeInt64
}

// IsUnsignedInteger reports whether s is one of the uint8..uint64 subtypes.
func (s PrimitiveSubtype) IsUnsignedInteger() bool {
	return s >= SubtypeUint8 && s <= SubtypeUint64
}

// IsInteger reports whether s is any integer subtype.
func (s PrimitiveSubtype) IsInteger() bool {
	return s.IsSignedInteger() || s.IsUnsignedInteger()
}

// IsFloat reports whether s is float32 or float64.
func (s PrimitiveSubtype) IsFloat() bool {
	return s == SubtypeFloat32 || s == SubtypeFloat64
}

// ConstantKind maps the subtype to its value-domain kind.
func (s PrimitiveSubtype) ConstantKind() constant.Kind {
	switch s {
	case SubtypeBool:
		return constant.Bool
	case SubtypeInt8:
		return constant.Int8
	case SubtypeInt16:
		return constant.Int16
	case SubtypeInt32:
		return constant.Int32
	case SubtypeInt64:
		return constant.Int64
	case SubtypeUint8:
		return constant.Uint8
	case SubtypeUint16:
		return constant.Uint16
	case SubtypeUint32:
		return constant.Uint32
	case SubtypeUint64:
		return constant.Uint64
	case SubtypeFloat32:
		return constant.Float32
	case SubtypeFloat64:
		return constant.Float64
	default:
		return constant.Invalid
	}
}

// SubtypeFromBuiltin maps a primitive builtin declaration to its subtype.
func SubtypeFromBuiltin(b ast.BuiltinKind) (PrimitiveSubtype, bool) {
	switch b {
	case ast.BuiltinBool:
		return SubtypeBool, true
	case ast.BuiltinInt8:
		return SubtypeInt8, true
	case ast.BuiltinInt16:
		return SubtypeInt16, true
	case ast.BuiltinInt32:
		return SubtypeInt32, true
	case ast.BuiltinInt64:
		return SubtypeInt64, true
	case ast.BuiltinUint8, ast.BuiltinByte:
		return SubtypeUint8, true
	case ast.BuiltinUint16:
		return SubtypeUint16, true
	case ast.BuiltinUint32:
		return SubtypeUint32, true
	case ast.BuiltinUint64:
		return SubtypeUint64, true
	case ast.BuiltinFloat32:
		return SubtypeFloat32, true
	case ast.BuiltinFloat64:
		return SubtypeFloat64, true
	default:
		return SubtypeInvalid, false
	}
}

// TransportSide distinguishes the two ends of a protocol channel.
type TransportSide uint8

const (
	SideClient TransportSide = iota
	SideServer
)

func (s TransportSide) String() string {
	if s == SideServer {
		return "server"
	}
	return "client"
}

// BoundMax is the size bound meaning "no limit". Strings and vectors
// without an explicit bound, and those bounded by MAX, carry it.
const BoundMax uint32 = 1<<32 - 1

// Type is the compact, comparable descriptor interned by a Space.
// Which fields are meaningful depends on Kind:
//
//	Primitive      Subtype
//	String         Bound, Nullable
//	Array          Elem, Count
//	Vector         Elem, Bound, Nullable
//	Identifier     Lib, Decl, Nullable
//	Handle         Lib, Decl, HandleSubtype, Nullable
//	TransportSide  Lib, Decl, Side, Nullable
type Type struct {
	Kind          Kind
	Subtype       PrimitiveSubtype
	Elem          TypeID
	Count         uint32
	Bound         uint32
	Nullable      bool
	Lib           *ast.Library
	Decl          ast.DeclID
	Side          TransportSide
	HandleSubtype uint32
}
