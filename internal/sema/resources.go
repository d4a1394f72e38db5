package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/constant"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// compileResource checks the declaration of a handle kind: the wire
// representation must be uint32, the mandatory subtype property must be a
// uint32-backed enum, and the optional rights property a uint32-backed bits.
func (c *compiler) compileResource(id ast.DeclID, decl *ast.Decl) {
	rd, ok := c.lib.Decls.ResourceAt(id)
	if !ok {
		panic(fmt.Errorf("sema: resource declaration without payload"))
	}
	if rd.Subtype.IsValid() {
		if tid, ok := c.resolveType(rd.Subtype); ok {
			t := c.space.Get(tid)
			if t.Kind != types.KindPrimitive || t.Subtype != types.SubtypeUint32 {
				diag.ReportError(c.reporter, diag.SemaResourceUnderlying,
					c.lib.Decls.TypeCtorAt(rd.Subtype).Span,
					fmt.Sprintf("resource '%s' must be backed by uint32, not %s",
						decl.Name.Raw, c.space.Format(tid))).Emit()
			}
		}
	}

	nameScope := NewScope[string, source.Span]()
	hasSubtype := false
	for i := range rd.Properties {
		p := &rd.Properties[i]
		c.compileAttrList(p.Attrs)
		if prev, ok := nameScope.Insert(p.Name.Canonical, p.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaNameCollision, p.Name.Span,
				fmt.Sprintf("duplicate property name '%s'", p.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
			continue
		}
		tid, ok := c.resolveType(p.Type)
		switch p.Name.Canonical {
		case "subtype":
			hasSubtype = true
			if ok && !c.isEnumBackedBy(tid, constant.Uint32) {
				diag.ReportError(c.reporter, diag.SemaResourceSubtypeNotEnum, p.Span,
					"the 'subtype' property must be an enum backed by uint32").Emit()
			}
		case "rights":
			if ok && !c.isBitsBackedBy(tid, constant.Uint32) {
				diag.ReportError(c.reporter, diag.SemaResourceInvalidRights, p.Span,
					"the 'rights' property must be a bits backed by uint32").Emit()
			}
		}
	}
	if !hasSubtype {
		diag.ReportError(c.reporter, diag.SemaResourceMissingSubtype, decl.Name.Span,
			fmt.Sprintf("resource '%s' must declare a 'subtype' property", decl.Name.Raw)).Emit()
	}
}

func (c *compiler) isEnumBackedBy(tid types.TypeID, kind constant.Kind) bool {
	t := c.space.Get(tid)
	if t == nil || t.Kind != types.KindIdentifier || t.Nullable {
		return false
	}
	decl := t.Lib.Decls.Get(t.Decl)
	if decl == nil || decl.Kind != ast.DeclEnum {
		return false
	}
	ed, _ := t.Lib.Decls.EnumAt(t.Decl)
	under, ok := c.underlyingKind(t.Lib, ed.Subtype)
	return ok && under == kind
}

func (c *compiler) isBitsBackedBy(tid types.TypeID, kind constant.Kind) bool {
	t := c.space.Get(tid)
	if t == nil || t.Kind != types.KindIdentifier || t.Nullable {
		return false
	}
	decl := t.Lib.Decls.Get(t.Decl)
	if decl == nil || decl.Kind != ast.DeclBits {
		return false
	}
	bd, _ := t.Lib.Decls.BitsAt(t.Decl)
	under, ok := c.underlyingKind(t.Lib, bd.Subtype)
	return ok && under == kind
}
