package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

func (c *compiler) compileStruct(id ast.DeclID, decl *ast.Decl) {
	sd, ok := c.lib.Decls.StructAt(id)
	if !ok {
		panic(fmt.Errorf("sema: struct declaration without payload"))
	}
	nameScope := NewScope[string, source.Span]()
	res := ast.ResourcenessValue
	for i := range sd.Members {
		m := &sd.Members[i]
		c.compileAttrList(m.Attrs)
		if prev, ok := nameScope.Insert(m.Name.Canonical, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaNameCollision, m.Name.Span,
				fmt.Sprintf("duplicate member name '%s'", m.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
		}
		tid, ok := c.resolveType(m.Type)
		if !ok {
			continue
		}
		if c.space.Resourceness(tid) == ast.ResourcenessResource {
			res = ast.ResourcenessResource
		}
		if !m.Default.IsValid() {
			continue
		}
		if !c.constableType(tid) {
			diag.ReportError(c.reporter, diag.SemaInvalidDefault,
				c.lib.Decls.ConstantAt(m.Default).Span,
				fmt.Sprintf("member '%s' of type %s cannot have a default value",
					m.Name.Raw, c.space.Format(tid))).Emit()
			continue
		}
		c.resolveConstant(m.Default, tid)
	}
	if sd.Resourceness == ast.ResourcenessUnspecified {
		sd.Resourceness = res
	}
}

// constableType reports whether a type can hold a compile-time constant:
// primitives, non-optional strings, enums and bits.
func (c *compiler) constableType(tid types.TypeID) bool {
	t := c.space.Get(tid)
	if t == nil {
		return false
	}
	switch t.Kind {
	case types.KindPrimitive:
		return true
	case types.KindString:
		return !t.Nullable
	case types.KindIdentifier:
		decl := t.Lib.Decls.Get(t.Decl)
		return decl.Kind == ast.DeclEnum || decl.Kind == ast.DeclBits
	default:
		return false
	}
}
