package ast

import (
	"fmt"

	"weft/internal/constant"
	"weft/internal/source"
)

type ConstantKind uint8

const (
	ConstantInvalid ConstantKind = iota
	ConstantLiteral
	ConstantIdentifier
	ConstantBinaryOr
)

type LiteralKind uint8

const (
	LiteralBool LiteralKind = iota
	LiteralNumeric
	LiteralString
	LiteralDocComment
)

// Literal keeps the frontend's text: numeric literals stay unparsed until
// a conversion target is known.
type Literal struct {
	Kind LiteralKind
	Bool bool
	Text string
	Span source.Span
}

// Constant is a constant expression node. Resolution happens at most once;
// the outcome lives in an internal write-once cell.
type Constant struct {
	Kind    ConstantKind
	Span    source.Span
	Literal Literal
	Ref     Reference
	Left    ConstantID
	Right   ConstantID

	resolved bool
	ok       bool
	value    constant.Value
}

// Resolved reports whether resolution ran, successfully or not.
func (c *Constant) Resolved() bool {
	return c.resolved
}

// ResolvedOK reports whether resolution ran and produced a value.
func (c *Constant) ResolvedOK() bool {
	return c.resolved && c.ok
}

// Value returns the resolved value. Only meaningful when ResolvedOK.
func (c *Constant) Value() constant.Value {
	return c.value
}

// ResolveTo records a successful resolution. Writing the cell twice is a
// compiler bug.
func (c *Constant) ResolveTo(v constant.Value) {
	if c.resolved {
		panic(fmt.Errorf("constant at %v resolved twice", c.Span))
	}
	c.resolved = true
	c.ok = true
	c.value = v
}

// MarkFailed records a failed resolution.
func (c *Constant) MarkFailed() {
	if c.resolved {
		panic(fmt.Errorf("constant at %v resolved twice", c.Span))
	}
	c.resolved = true
	c.ok = false
}
