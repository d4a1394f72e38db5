package sema

import (
	"fmt"
	"sort"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// maxOrdinal caps table and union ordinals. The envelope header reserves
// six bits for them on the wire.
const maxOrdinal = 64

func (c *compiler) compileTable(id ast.DeclID, decl *ast.Decl) {
	td, ok := c.lib.Decls.TableAt(id)
	if !ok {
		panic(fmt.Errorf("sema: table declaration without payload"))
	}
	derived := c.compileOrdinalMembers("table", td.Members, true)
	if td.Resourceness == ast.ResourcenessUnspecified {
		td.Resourceness = derived
	}
}

func (c *compiler) compileUnion(id ast.DeclID, decl *ast.Decl) {
	ud, ok := c.lib.Decls.UnionAt(id)
	if !ok {
		panic(fmt.Errorf("sema: union declaration without payload"))
	}
	derived := c.compileOrdinalMembers("union", ud.Members, false)
	if ud.Resourceness == ast.ResourcenessUnspecified {
		ud.Resourceness = derived
	}
	if ud.Strictness != ast.StrictnessStrict {
		return
	}
	for i := range ud.Members {
		if ud.Members[i].Used != nil {
			return
		}
	}
	diag.ReportError(c.reporter, diag.SemaStrictUnionEmpty, decl.Name.Span,
		fmt.Sprintf("strict union '%s' must have at least one non-reserved member", decl.Name.Raw)).Emit()
}

// compileOrdinalMembers runs the checks shared by tables and unions:
// ordinals must be unique, within [1, 64] and dense from 1; member names
// must be unique; member types must not be optional. Reserved slots claim
// an ordinal but carry no name or type. The derived resourceness of the
// member types is returned.
func (c *compiler) compileOrdinalMembers(what string, members []ast.OrdinalMember, maxMustBeTable bool) ast.Resourceness {
	nameScope := NewScope[string, source.Span]()
	ordScope := NewScope[uint64, source.Span]()
	res := ast.ResourcenessValue

	type slot struct {
		ord  uint64
		span source.Span
	}
	present := make([]slot, 0, len(members))

	for i := range members {
		m := &members[i]
		c.compileAttrList(m.Attrs)

		ord := m.Ordinal.Value
		ordOK := true
		switch {
		case ord == 0:
			diag.ReportError(c.reporter, diag.SemaOrdinalOutOfRange, m.Ordinal.Span,
				fmt.Sprintf("%s ordinals start at 1", what)).Emit()
			ordOK = false
		case ord > maxOrdinal:
			diag.ReportError(c.reporter, diag.SemaOrdinalOutOfRange, m.Ordinal.Span,
				fmt.Sprintf("ordinal %d exceeds the maximum of %d", ord, maxOrdinal)).Emit()
			ordOK = false
		}
		if ordOK {
			if prev, ok := ordScope.Insert(ord, m.Ordinal.Span); !ok {
				diag.ReportError(c.reporter, diag.SemaDuplicateOrdinal, m.Ordinal.Span,
					fmt.Sprintf("ordinal %d is already used", ord)).
					WithNote(prev, "first used here").Emit()
				ordOK = false
			}
		}
		if ordOK {
			present = append(present, slot{ord: ord, span: m.Span})
		}

		if m.Used == nil {
			continue
		}
		if prev, ok := nameScope.Insert(m.Used.Name.Canonical, m.Used.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaNameCollision, m.Used.Name.Span,
				fmt.Sprintf("duplicate member name '%s'", m.Used.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
		}
		tid, ok := c.resolveType(m.Used.Type)
		if !ok {
			continue
		}
		t := c.space.Get(tid)
		if t.Nullable {
			diag.ReportError(c.reporter, diag.SemaNullableMember, m.Span,
				fmt.Sprintf("optional types cannot be %s members; absence is expressed by omitting the member", what)).Emit()
		}
		if c.space.Resourceness(tid) == ast.ResourcenessResource {
			res = ast.ResourcenessResource
		}
		if maxMustBeTable && ordOK && ord == maxOrdinal && !c.isTableType(tid) {
			diag.ReportError(c.reporter, diag.SemaMaxOrdinalNotTable, m.Span,
				fmt.Sprintf("the member at ordinal %d must be a table so the %s can keep growing", maxOrdinal, what)).Emit()
		}
	}

	// Ordinals must be dense from 1; report the first gap at the member
	// that jumps past it.
	sort.Slice(present, func(i, j int) bool { return present[i].ord < present[j].ord })
	expect := uint64(1)
	for _, s := range present {
		if s.ord != expect {
			diag.ReportError(c.reporter, diag.SemaNonDenseOrdinals, s.span,
				fmt.Sprintf("missing ordinal %d; %s ordinals must be dense", expect, what)).Emit()
			break
		}
		expect++
	}
	return res
}

func (c *compiler) isTableType(tid types.TypeID) bool {
	t := c.space.Get(tid)
	if t == nil || t.Kind != types.KindIdentifier {
		return false
	}
	decl := t.Lib.Decls.Get(t.Decl)
	return decl != nil && decl.Kind == ast.DeclTable
}
