package sema

import (
	"strings"
	"testing"

	"weft/internal/ast"
	"weft/internal/diag"
)

func (f *fixture) used(name string, typ ast.TypeCtorID) *ast.UsedMember {
	return &ast.UsedMember{Name: f.name(name), Type: typ}
}

func (f *fixture) slot(ordinal uint64, used *ast.UsedMember) ast.OrdinalMember {
	return ast.OrdinalMember{
		Ordinal: ast.Ordinal{Value: ordinal, Span: f.span()},
		Used:    used,
		Span:    f.span(),
	}
}

func (f *fixture) newTable(name string, members ...ast.OrdinalMember) ast.DeclID {
	return f.lib.Decls.NewTable(f.name(name), ast.NoAttrListID, f.span(), ast.TableDecl{
		Members: members,
	})
}

func (f *fixture) newUnion(name string, strictness ast.Strictness, members ...ast.OrdinalMember) ast.DeclID {
	return f.lib.Decls.NewUnion(f.name(name), ast.NoAttrListID, f.span(), ast.UnionDecl{
		Members:    members,
		Strictness: strictness,
	})
}

func TestTableOrdinals(t *testing.T) {
	f := newFixture()
	f.newTable("Sample",
		f.slot(1, f.used("when", f.primCtor("int64"))),
		f.slot(2, f.used("reading", f.primCtor("float64"))),
		f.slot(3, f.used("unit", f.primCtor("string"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

// Reserved slots have no name or type but still claim their ordinal.
func TestTableReservedSlots(t *testing.T) {
	f := newFixture()
	f.newTable("Sample",
		f.slot(1, f.used("when", f.primCtor("int64"))),
		f.slot(2, nil),
		f.slot(3, f.used("unit", f.primCtor("string"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestTableOrdinalGap(t *testing.T) {
	f := newFixture()
	sample := f.newTable("Sample",
		f.slot(1, f.used("a", f.primCtor("int64"))),
		f.slot(2, f.used("b", f.primCtor("int64"))),
		f.slot(4, f.used("c", f.primCtor("int64"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaNonDenseOrdinals)

	got := f.bag.Items()[0]
	if !strings.Contains(got.Message, "missing ordinal 3") {
		t.Errorf("message %q should name the missing ordinal", got.Message)
	}
	td, _ := f.lib.Decls.TableAt(sample)
	if got.Primary != td.Members[2].Span {
		t.Errorf("gap reported at %v, want the member that jumps past it at %v", got.Primary, td.Members[2].Span)
	}
}

func TestTableDuplicateOrdinal(t *testing.T) {
	f := newFixture()
	f.newTable("Sample",
		f.slot(1, f.used("a", f.primCtor("int64"))),
		f.slot(1, f.used("b", f.primCtor("int64"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateOrdinal)
}

func TestTableOrdinalRange(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		f := newFixture()
		f.newTable("Sample",
			f.slot(0, f.used("a", f.primCtor("int64"))),
		)
		f.compile(t)
		wantOnlyCodes(t, f.bag, diag.SemaOrdinalOutOfRange)
	})
	t.Run("above the cap", func(t *testing.T) {
		f := newFixture()
		f.newTable("Sample",
			f.slot(65, f.used("a", f.primCtor("int64"))),
		)
		f.compile(t)
		wantOnlyCodes(t, f.bag, diag.SemaOrdinalOutOfRange)
	})
}

// Optional member types are rejected: a table or union member is absent by
// omission, not by a null payload.
func TestTableRejectsOptionalMember(t *testing.T) {
	f := newFixture()
	f.newTable("Sample",
		f.slot(1, f.used("label", f.paramCtor("string", nil,
			f.identConst(f.builtin("optional"))))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaNullableMember)
}

// fullTable builds dense ordinals 1..64 with the given type in slot 64.
func (f *fixture) fullTable(t *testing.T, last ast.TypeCtorID) ast.DeclID {
	t.Helper()
	members := make([]ast.OrdinalMember, 0, maxOrdinal)
	for ord := uint64(1); ord < maxOrdinal; ord++ {
		members = append(members, f.slot(ord, nil))
	}
	members = append(members, f.slot(maxOrdinal, f.used("tail", last)))
	return f.newTable("Grown", members...)
}

func TestTableLastOrdinalMustBeTable(t *testing.T) {
	t.Run("plain type rejected", func(t *testing.T) {
		f := newFixture()
		f.fullTable(t, f.primCtor("uint8"))
		f.compile(t)
		wantOnlyCodes(t, f.bag, diag.SemaMaxOrdinalNotTable)
	})
	t.Run("table accepted", func(t *testing.T) {
		f := newFixture()
		next := f.newTable("Next")
		f.fullTable(t, f.declCtor(next))
		f.compile(t)
		wantOnlyCodes(t, f.bag)
	})
}

func TestUnionMembers(t *testing.T) {
	f := newFixture()
	f.newUnion("Event", ast.StrictnessStrict,
		f.slot(1, f.used("pressed", f.primCtor("uint32"))),
		f.slot(2, f.used("released", f.primCtor("uint32"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

// A union, unlike a table, may put any type at ordinal 64.
func TestUnionLastOrdinalUnrestricted(t *testing.T) {
	f := newFixture()
	members := make([]ast.OrdinalMember, 0, maxOrdinal)
	for ord := uint64(1); ord < maxOrdinal; ord++ {
		members = append(members, f.slot(ord, nil))
	}
	members = append(members, f.slot(maxOrdinal, f.used("tail", f.primCtor("uint8"))))
	f.newUnion("Event", ast.StrictnessFlexible, members...)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestStrictUnionNeedsMember(t *testing.T) {
	t.Run("all reserved rejected", func(t *testing.T) {
		f := newFixture()
		f.newUnion("Event", ast.StrictnessStrict,
			f.slot(1, nil),
		)
		f.compile(t)
		wantOnlyCodes(t, f.bag, diag.SemaStrictUnionEmpty)
	})
	t.Run("flexible may be all reserved", func(t *testing.T) {
		f := newFixture()
		f.newUnion("Event", ast.StrictnessFlexible,
			f.slot(1, nil),
		)
		f.compile(t)
		wantOnlyCodes(t, f.bag)
	})
}

func TestUnionResourceness(t *testing.T) {
	f := newFixture()
	device := f.lib.Decls.NewProtocol(f.name("Device"), ast.NoAttrListID, f.span(), ast.ProtocolDecl{})
	event := f.newUnion("Event", ast.StrictnessStrict,
		f.slot(1, f.used("opened", f.paramCtor("client_end", nil, f.identConst(f.ref(device))))),
		f.slot(2, f.used("closed", f.primCtor("uint32"))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)

	ud, _ := f.lib.Decls.UnionAt(event)
	if ud.Resourceness != ast.ResourcenessResource {
		t.Errorf("resourceness = %v, want resource", ud.Resourceness)
	}
}
