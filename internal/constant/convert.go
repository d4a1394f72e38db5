package constant

import (
	"math"
	"strconv"

	"fortio.org/safecast"
)

// Convert attempts a directed conversion of v into the target kind.
// Overflow, sign loss and malformed untyped text all return ok=false;
// Convert never panics on schema-level problems.
//
// The table: bool and string kinds convert only to themselves, a doc
// comment additionally to string; integers convert to any numeric kind
// that can represent the value; floats convert to floats only; untyped
// numerics parse their text directly into the target representation.
func (v Value) Convert(to Kind) (Value, bool) {
	if to == v.kind {
		return v, true
	}

	switch v.kind {
	case Bool, String:
		return Value{}, false
	case DocComment:
		if to == String {
			return MakeString(v.s), true
		}
		return Value{}, false
	case UntypedNumeric:
		return parseNumeric(v.s, to)
	}

	if !v.kind.IsNumeric() || !to.IsNumeric() || to == UntypedNumeric {
		return Value{}, false
	}

	if to.IsFloat() {
		var f float64
		switch {
		case v.kind.IsSigned():
			f = float64(v.i)
		case v.kind.IsUnsigned():
			f = float64(v.u)
		default:
			f = v.f
		}
		if to == Float32 && math.Abs(f) > math.MaxFloat32 {
			return Value{}, false
		}
		return MakeFloat(to, f), true
	}

	// Floats never narrow into integers.
	if v.kind.IsFloat() {
		return Value{}, false
	}

	if v.kind.IsSigned() {
		return intToKind(v.i, to)
	}
	return uintToKind(v.u, to)
}

func intToKind(x int64, to Kind) (Value, bool) {
	if to == Int64 {
		return MakeInt(to, x), true
	}
	if to.IsSigned() {
		var err error
		switch to {
		case Int8:
			_, err = safecast.Conv[int8](x)
		case Int16:
			_, err = safecast.Conv[int16](x)
		case Int32:
			_, err = safecast.Conv[int32](x)
		}
		if err != nil {
			return Value{}, false
		}
		return MakeInt(to, x), true
	}

	u, err := safecast.Conv[uint64](x)
	if err != nil {
		return Value{}, false
	}
	return uintToKind(u, to)
}

func uintToKind(x uint64, to Kind) (Value, bool) {
	if to == Uint64 {
		return MakeUint(to, x), true
	}

	var err error
	switch to {
	case Int8:
		_, err = safecast.Conv[int8](x)
	case Int16:
		_, err = safecast.Conv[int16](x)
	case Int32:
		_, err = safecast.Conv[int32](x)
	case Int64:
		_, err = safecast.Conv[int64](x)
	case Uint8:
		_, err = safecast.Conv[uint8](x)
	case Uint16:
		_, err = safecast.Conv[uint16](x)
	case Uint32:
		_, err = safecast.Conv[uint32](x)
	default:
		return Value{}, false
	}
	if err != nil {
		return Value{}, false
	}

	if to.IsSigned() {
		return MakeInt(to, int64(x)), true
	}
	return MakeUint(to, x), true
}

func parseNumeric(text string, to Kind) (Value, bool) {
	switch {
	case to.IsSigned():
		n, err := strconv.ParseInt(text, 0, to.Bits())
		if err != nil {
			return Value{}, false
		}
		return MakeInt(to, n), true
	case to.IsUnsigned():
		n, err := strconv.ParseUint(text, 0, to.Bits())
		if err != nil {
			return Value{}, false
		}
		return MakeUint(to, n), true
	case to.IsFloat():
		f, err := strconv.ParseFloat(text, to.Bits())
		if err != nil {
			return Value{}, false
		}
		return MakeFloat(to, f), true
	}
	return Value{}, false
}

// MaxFor returns the largest representable value of an integer kind. It is
// the reserved unknown sentinel for flexible enums without a tagged member.
func MaxFor(kind Kind) (Value, bool) {
	switch kind {
	case Int8:
		return MakeInt(kind, math.MaxInt8), true
	case Int16:
		return MakeInt(kind, math.MaxInt16), true
	case Int32:
		return MakeInt(kind, math.MaxInt32), true
	case Int64:
		return MakeInt(kind, math.MaxInt64), true
	case Uint8:
		return MakeUint(kind, math.MaxUint8), true
	case Uint16:
		return MakeUint(kind, math.MaxUint16), true
	case Uint32:
		return MakeUint(kind, math.MaxUint32), true
	case Uint64:
		return MakeUint(kind, math.MaxUint64), true
	}
	return Value{}, false
}
