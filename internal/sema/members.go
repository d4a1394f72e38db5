package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/constant"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// memberValue pairs a validated member with the canonical bit pattern of
// its value.
type memberValue struct {
	member *ast.ValueMember
	value  uint64
}

// validateValueMembers runs the checks shared by bits and enums: member
// names must be unique, every value must resolve against the underlying
// type, and resolved values must be unique. check vets each resolved value;
// only members it accepts appear in the returned slice.
func (c *compiler) validateValueMembers(members []ast.ValueMember, underlying types.TypeID, check func(m *ast.ValueMember, v uint64) bool) []memberValue {
	nameScope := NewScope[string, source.Span]()
	valueScope := NewScope[uint64, source.Span]()
	out := make([]memberValue, 0, len(members))
	for i := range members {
		m := &members[i]
		c.compileAttrList(m.Attrs)
		if prev, ok := nameScope.Insert(m.Name.Canonical, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaNameCollision, m.Name.Span,
				fmt.Sprintf("duplicate member name '%s'", m.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
			continue
		}
		if !underlying.IsValid() {
			continue
		}
		if !c.resolveConstant(m.Value, underlying) {
			continue
		}
		v, ok := c.lib.Decls.ConstantAt(m.Value).Value().AsUint64()
		if !ok {
			panic(fmt.Errorf("sema: member '%s' resolved to a non-integer", m.Name.Raw))
		}
		if prev, ok := valueScope.Insert(v, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateMemberValue, m.Name.Span,
				fmt.Sprintf("member '%s' reuses an already assigned value", m.Name.Raw)).
				WithNote(prev, "value first assigned here").Emit()
			continue
		}
		if check != nil && !check(m, v) {
			continue
		}
		out = append(out, memberValue{member: m, value: v})
	}
	return out
}

// memberNamesOnly runs just the name and attribute checks, used when the
// underlying type did not resolve and values cannot be interpreted.
func (c *compiler) memberNamesOnly(members []ast.ValueMember) {
	c.validateValueMembers(members, types.NoTypeID, nil)
}

func (c *compiler) compileBits(id ast.DeclID, decl *ast.Decl) {
	bd, ok := c.lib.Decls.BitsAt(id)
	if !ok {
		panic(fmt.Errorf("sema: bits declaration without payload"))
	}
	under, uok := c.resolveType(bd.Subtype)
	if uok {
		t := c.space.Get(under)
		if t.Kind != types.KindPrimitive || !t.Subtype.IsUnsignedInteger() {
			diag.ReportError(c.reporter, diag.SemaBitsUnderlyingNotUnsigned,
				c.lib.Decls.TypeCtorAt(bd.Subtype).Span,
				fmt.Sprintf("bits '%s' must use an unsigned integer, not %s",
					decl.Name.Raw, c.space.Format(under))).Emit()
			uok = false
		}
	}
	if !uok {
		c.memberNamesOnly(bd.Members)
		return
	}
	valid := c.validateValueMembers(bd.Members, under, func(m *ast.ValueMember, v uint64) bool {
		if v != 0 && v&(v-1) == 0 {
			return true
		}
		diag.ReportError(c.reporter, diag.SemaBitsMemberNotPowerOfTwo, m.Name.Span,
			fmt.Sprintf("bits member '%s' must have a single bit set", m.Name.Raw)).Emit()
		return false
	})
	var mask uint64
	for _, mv := range valid {
		mask |= mv.value
	}
	bd.Mask = mask
}

func (c *compiler) compileEnum(id ast.DeclID, decl *ast.Decl) {
	ed, ok := c.lib.Decls.EnumAt(id)
	if !ok {
		panic(fmt.Errorf("sema: enum declaration without payload"))
	}
	under, uok := c.resolveType(ed.Subtype)
	var kind constant.Kind
	if uok {
		t := c.space.Get(under)
		if t.Kind != types.KindPrimitive || !t.Subtype.IsInteger() {
			diag.ReportError(c.reporter, diag.SemaEnumUnderlyingNotIntegral,
				c.lib.Decls.TypeCtorAt(ed.Subtype).Span,
				fmt.Sprintf("enum '%s' must use an integer type, not %s",
					decl.Name.Raw, c.space.Format(under))).Emit()
			uok = false
		} else {
			kind = t.Subtype.ConstantKind()
		}
	}
	if !uok {
		c.memberNamesOnly(ed.Members)
		return
	}
	// At most one member may carry @unknown, and only on flexible enums.
	// The scan covers every member, valid value or not.
	var taggedName string
	var taggedSpan source.Span
	haveTag := false
	for i := range ed.Members {
		m := &ed.Members[i]
		list := c.lib.Decls.AttrListAt(m.Attrs)
		attr, ok := list.FindAttr("unknown")
		if !ok {
			continue
		}
		if ed.Strictness == ast.StrictnessStrict {
			diag.ReportError(c.reporter, diag.SemaStrictEnumUnknown, attr.Span,
				fmt.Sprintf("strict enum '%s' cannot have an @unknown member", decl.Name.Raw)).Emit()
			continue
		}
		if haveTag {
			diag.ReportError(c.reporter, diag.SemaMultipleUnknownMembers, attr.Span,
				fmt.Sprintf("enum '%s' has more than one @unknown member", decl.Name.Raw)).
				WithNote(taggedSpan, "first tagged here").Emit()
			continue
		}
		haveTag = true
		taggedName = m.Name.Canonical
		taggedSpan = attr.Span
	}

	valid := c.validateValueMembers(ed.Members, under, nil)
	if ed.Strictness == ast.StrictnessStrict {
		return
	}

	// Flexible enums reserve a value for unknown data: the @unknown member
	// when present, otherwise the maximum the underlying type can hold.
	if haveTag {
		for i := range valid {
			if valid[i].member.Name.Canonical == taggedName {
				ed.UnknownValue = valid[i].value
				ed.HasUnknown = true
				break
			}
		}
		return
	}
	maxVal, ok := constant.MaxFor(kind)
	if !ok {
		panic(fmt.Errorf("sema: no maximum for kind %v", kind))
	}
	sentinel, ok := maxVal.AsUint64()
	if !ok {
		panic(fmt.Errorf("sema: maximum of %v has no canonical pattern", kind))
	}
	for i := range valid {
		mv := &valid[i]
		if mv.value == sentinel {
			diag.ReportError(c.reporter, diag.SemaUnknownValueCollision, mv.member.Name.Span,
				fmt.Sprintf("member '%s' takes the value reserved for unknown data; tag it with @unknown",
					mv.member.Name.Raw)).Emit()
		}
	}
	ed.UnknownValue = sentinel
	ed.HasUnknown = true
}
