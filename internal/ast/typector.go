package ast

import (
	"weft/internal/source"
)

// LayoutParam is one parameter of a parameterized layout. Exactly one of
// Type and Value is set; the frontend disambiguates identifier parameters
// before the graph reaches the compiler.
type LayoutParam struct {
	Type  TypeCtorID
	Value ConstantID
	Span  source.Span
}

func (p LayoutParam) IsType() bool {
	return p.Type.IsValid()
}

// TypeCtor is an applied type: a layout reference plus parameters and
// constraints. Its resolved form is memoized in the type space, keyed by
// (library, id).
type TypeCtor struct {
	Layout      Reference
	Params      []LayoutParam
	Constraints []ConstantID
	Span        source.Span
}
