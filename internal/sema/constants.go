package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/constant"
	"weft/internal/diag"
	"weft/internal/names"
	"weft/internal/source"
	"weft/internal/types"
)

// expectation is the value-domain view of an expected type: the kind that
// values must convert to, plus the declaration when the expected type is an
// enum or bits, since member references must then belong to it.
type expectation struct {
	tid  types.TypeID
	kind constant.Kind
	lib  *ast.Library
	decl ast.DeclID
}

func (e expectation) isIdentifier() bool { return e.lib != nil }

// expectationFor derives the expectation for a const-able expected type.
// It returns false when the expected type's own compilation failed, in
// which case the mistake was already reported at its declaration.
func (c *compiler) expectationFor(expected types.TypeID) (expectation, bool) {
	t := c.space.Get(expected)
	if t == nil {
		panic(fmt.Errorf("sema: expectation for missing type"))
	}
	switch t.Kind {
	case types.KindPrimitive:
		return expectation{tid: expected, kind: t.Subtype.ConstantKind()}, true
	case types.KindString:
		return expectation{tid: expected, kind: constant.String}, true
	case types.KindIdentifier:
		decl := t.Lib.Decls.Get(t.Decl)
		var under ast.TypeCtorID
		switch decl.Kind {
		case ast.DeclEnum:
			ed, _ := t.Lib.Decls.EnumAt(t.Decl)
			under = ed.Subtype
		case ast.DeclBits:
			bd, _ := t.Lib.Decls.BitsAt(t.Decl)
			under = bd.Subtype
		default:
			panic(fmt.Errorf("sema: expected type '%s' cannot hold constants", decl.Name.Raw))
		}
		kind, ok := c.underlyingKind(t.Lib, under)
		if !ok {
			return expectation{}, false
		}
		return expectation{tid: expected, kind: kind, lib: t.Lib, decl: t.Decl}, true
	default:
		panic(fmt.Errorf("sema: expected type %s cannot hold constants", c.space.Format(expected)))
	}
}

// underlyingKind reads the resolved primitive kind of an enum or bits
// subtype constructor. False means the subtype did not resolve.
func (c *compiler) underlyingKind(lib *ast.Library, ctor ast.TypeCtorID) (constant.Kind, bool) {
	tid, ok := c.space.Lookup(lib, ctor)
	if !ok || !tid.IsValid() {
		return constant.Invalid, false
	}
	t := c.space.Get(tid)
	if t.Kind != types.KindPrimitive {
		return constant.Invalid, false
	}
	return t.Subtype.ConstantKind(), true
}

// resolveConstant resolves a constant expression against an expected type
// and records the outcome in the constant's write-once cell. Re-entry
// replays the recorded outcome without reporting again. NoTypeID as the
// expected type accepts the value at face value.
func (c *compiler) resolveConstant(id ast.ConstantID, expected types.TypeID) bool {
	con := c.lib.Decls.ConstantAt(id)
	if con == nil {
		panic(fmt.Errorf("sema: resolve of missing constant"))
	}
	if con.Resolved() {
		return con.ResolvedOK()
	}
	v, ok := c.evalConstant(con, expected)
	if !ok {
		con.MarkFailed()
		return false
	}
	con.ResolveTo(v)
	return true
}

func (c *compiler) evalConstant(con *ast.Constant, expected types.TypeID) (constant.Value, bool) {
	switch con.Kind {
	case ast.ConstantLiteral:
		return c.evalLiteral(con, expected)
	case ast.ConstantIdentifier:
		return c.evalIdentifier(con, expected)
	case ast.ConstantBinaryOr:
		return c.evalBinaryOr(con, expected)
	default:
		panic(fmt.Errorf("sema: constant at %v has kind %d", con.Span, con.Kind))
	}
}

func literalValue(lit ast.Literal) constant.Value {
	switch lit.Kind {
	case ast.LiteralBool:
		return constant.MakeBool(lit.Bool)
	case ast.LiteralString:
		return constant.MakeString(lit.Text)
	case ast.LiteralDocComment:
		return constant.MakeDocComment(lit.Text)
	case ast.LiteralNumeric:
		return constant.MakeUntypedNumeric(lit.Text)
	default:
		panic(fmt.Errorf("sema: literal at %v has kind %d", lit.Span, lit.Kind))
	}
}

func (c *compiler) evalLiteral(con *ast.Constant, expected types.TypeID) (constant.Value, bool) {
	raw := literalValue(con.Literal)
	if !expected.IsValid() {
		return raw, true
	}
	exp, ok := c.expectationFor(expected)
	if !ok {
		return constant.Value{}, false
	}
	out, ok := raw.Convert(exp.kind)
	if !ok {
		c.reportBadConversion(con.Span, raw, expected, exp)
		return constant.Value{}, false
	}
	return out, true
}

func (c *compiler) evalIdentifier(con *ast.Constant, expected types.TypeID) (constant.Value, bool) {
	ref := con.Ref
	target := ref.Resolve()
	if target == nil {
		panic(fmt.Errorf("sema: unlinked constant reference at %v", con.Span))
	}
	c.EnsureCompiled(ref)

	display := target.Name.Raw
	if ref.HasMember() {
		display += "." + ref.Member
	}

	var src *ast.Constant
	var refType types.TypeID
	switch {
	case target.Kind == ast.DeclConst && !ref.HasMember():
		cd, _ := ref.Target.Decls.ConstAt(ref.Decl)
		src = ref.Target.Decls.ConstantAt(cd.Value)
		refType, _ = c.space.Lookup(ref.Target, cd.Type)
	case target.Kind == ast.DeclEnum && ref.HasMember():
		ed, _ := ref.Target.Decls.EnumAt(ref.Decl)
		mem, ok := ed.FindMember(names.Canonical(ref.Member))
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUnknownMember, ref.Span,
				fmt.Sprintf("'%s' has no member '%s'", target.Name.Raw, ref.Member)).Emit()
			return constant.Value{}, false
		}
		src = ref.Target.Decls.ConstantAt(mem.Value)
		refType = c.space.Intern(types.Type{Kind: types.KindIdentifier, Lib: ref.Target, Decl: ref.Decl})
	case target.Kind == ast.DeclBits && ref.HasMember():
		bd, _ := ref.Target.Decls.BitsAt(ref.Decl)
		mem, ok := bd.FindMember(names.Canonical(ref.Member))
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUnknownMember, ref.Span,
				fmt.Sprintf("'%s' has no member '%s'", target.Name.Raw, ref.Member)).Emit()
			return constant.Value{}, false
		}
		src = ref.Target.Decls.ConstantAt(mem.Value)
		refType = c.space.Intern(types.Type{Kind: types.KindIdentifier, Lib: ref.Target, Decl: ref.Decl})
	default:
		diag.ReportError(c.reporter, diag.SemaCannotResolveConstant, ref.Span,
			fmt.Sprintf("'%s' cannot be used as a constant", display)).Emit()
		return constant.Value{}, false
	}

	if src == nil || !src.ResolvedOK() {
		// The referent failed at its own definition; reported there.
		return constant.Value{}, false
	}
	if !expected.IsValid() {
		return src.Value(), true
	}
	exp, ok := c.expectationFor(expected)
	if !ok {
		return constant.Value{}, false
	}
	// An expected enum or bits type admits only its own members and
	// constants declared with exactly that type.
	if exp.isIdentifier() && refType != exp.tid {
		diag.ReportError(c.reporter, diag.SemaConstTypeMismatch, ref.Span,
			fmt.Sprintf("cannot convert '%s' to %s", display, c.space.Format(expected))).Emit()
		return constant.Value{}, false
	}
	out, ok := src.Value().Convert(exp.kind)
	if !ok {
		c.reportBadConversion(ref.Span, src.Value(), expected, exp)
		return constant.Value{}, false
	}
	return out, true
}

// evalBinaryOr resolves both operands against the expected type and combines
// their canonical bit patterns. The expected type must be integral; for bits
// types that is the underlying subtype.
func (c *compiler) evalBinaryOr(con *ast.Constant, expected types.TypeID) (constant.Value, bool) {
	kind := constant.Uint64
	if expected.IsValid() {
		exp, ok := c.expectationFor(expected)
		if !ok {
			return constant.Value{}, false
		}
		if !exp.kind.IsInteger() {
			diag.ReportError(c.reporter, diag.SemaInvalidOrOperand, con.Span,
				fmt.Sprintf("'|' requires an integer type, not %s", c.space.Format(expected))).Emit()
			return constant.Value{}, false
		}
		kind = exp.kind
	}
	lok := c.resolveConstant(con.Left, expected)
	rok := c.resolveConstant(con.Right, expected)
	if !lok || !rok {
		return constant.Value{}, false
	}
	l, lu := c.lib.Decls.ConstantAt(con.Left).Value().AsUint64()
	r, ru := c.lib.Decls.ConstantAt(con.Right).Value().AsUint64()
	if !lu || !ru {
		diag.ReportError(c.reporter, diag.SemaInvalidOrOperand, con.Span,
			"'|' operands must be integers").Emit()
		return constant.Value{}, false
	}
	v := l | r
	if kind.IsSigned() {
		// OR of two sign-extended patterns of the same width is itself a
		// sign-extended pattern of that width.
		return constant.MakeInt(kind, int64(v)), true
	}
	return constant.MakeUint(kind, v), true
}

func (c *compiler) reportBadConversion(span source.Span, v constant.Value, expected types.TypeID, exp expectation) {
	want := c.space.Format(expected)
	// Numeric-to-numeric failures are range problems, except floats into
	// integers, which are never allowed regardless of the value.
	overflow := v.Kind().IsNumeric() && exp.kind.IsNumeric() &&
		!(v.Kind().IsFloat() && exp.kind.IsInteger())
	if overflow {
		diag.ReportError(c.reporter, diag.SemaConstOverflow, span,
			fmt.Sprintf("value %s does not fit in %s", v.Format(), want)).Emit()
		return
	}
	diag.ReportError(c.reporter, diag.SemaConstTypeMismatch, span,
		fmt.Sprintf("cannot convert %s to %s", v.Format(), want)).Emit()
}
