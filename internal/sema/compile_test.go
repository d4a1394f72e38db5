package sema

import (
	"testing"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// fixture assembles declaration graphs the way the loader would, against a
// fresh root library.
type fixture struct {
	strings *source.Interner
	root    *ast.Library
	lib     *ast.Library
	bag     *diag.Bag
	next    uint32
}

func newFixture() *fixture {
	strings := source.NewInterner()
	root := ast.NewRootLibrary(strings)
	lib := ast.NewLibrary("acme.device", source.Span{})
	lib.Deps = []*ast.Library{root}
	return &fixture{
		strings: strings,
		root:    root,
		lib:     lib,
		bag:     diag.NewBag(128),
	}
}

// span hands out distinct spans so note positions stay tellable apart.
func (f *fixture) span() source.Span {
	f.next += 4
	return source.Span{File: 1, Start: f.next, End: f.next + 2}
}

func (f *fixture) name(raw string) ast.Name {
	return ast.MakeName(f.strings, raw, f.span())
}

func (f *fixture) builtin(canonical string) ast.Reference {
	id, ok := f.root.Decls.Lookup(canonical)
	if !ok {
		panic("unknown builtin " + canonical)
	}
	return ast.Reference{Target: f.root, Decl: id, Span: f.span()}
}

func (f *fixture) ref(id ast.DeclID) ast.Reference {
	return ast.Reference{Target: f.lib, Decl: id, Span: f.span()}
}

func (f *fixture) memberRef(id ast.DeclID, member string) ast.Reference {
	return ast.Reference{Target: f.lib, Decl: id, Member: member, Span: f.span()}
}

// primCtor builds a constructor for a builtin layout, e.g. uint8.
func (f *fixture) primCtor(canonical string) ast.TypeCtorID {
	return f.lib.Decls.NewTypeCtor(ast.TypeCtor{Layout: f.builtin(canonical), Span: f.span()})
}

func (f *fixture) declCtor(id ast.DeclID, constraints ...ast.ConstantID) ast.TypeCtorID {
	return f.lib.Decls.NewTypeCtor(ast.TypeCtor{
		Layout:      f.ref(id),
		Constraints: constraints,
		Span:        f.span(),
	})
}

func (f *fixture) num(text string) ast.ConstantID {
	return f.lib.Decls.NewConstant(ast.Constant{
		Kind:    ast.ConstantLiteral,
		Span:    f.span(),
		Literal: ast.Literal{Kind: ast.LiteralNumeric, Text: text, Span: f.span()},
	})
}

func (f *fixture) str(text string) ast.ConstantID {
	return f.lib.Decls.NewConstant(ast.Constant{
		Kind:    ast.ConstantLiteral,
		Span:    f.span(),
		Literal: ast.Literal{Kind: ast.LiteralString, Text: text, Span: f.span()},
	})
}

func (f *fixture) boolean(b bool) ast.ConstantID {
	return f.lib.Decls.NewConstant(ast.Constant{
		Kind:    ast.ConstantLiteral,
		Span:    f.span(),
		Literal: ast.Literal{Kind: ast.LiteralBool, Bool: b, Span: f.span()},
	})
}

func (f *fixture) identConst(ref ast.Reference) ast.ConstantID {
	return f.lib.Decls.NewConstant(ast.Constant{
		Kind: ast.ConstantIdentifier,
		Span: ref.Span,
		Ref:  ref,
	})
}

func (f *fixture) orOf(left, right ast.ConstantID) ast.ConstantID {
	return f.lib.Decls.NewConstant(ast.Constant{
		Kind:  ast.ConstantBinaryOr,
		Span:  f.span(),
		Left:  left,
		Right: right,
	})
}

func (f *fixture) attr(name string, args ...ast.AttrArg) ast.Attr {
	return ast.Attr{Name: f.name(name), Args: args, Span: f.span()}
}

func (f *fixture) strArg(name, value string) ast.AttrArg {
	return ast.AttrArg{Name: f.name(name), Value: f.str(value), Span: f.span()}
}

func (f *fixture) attrs(attrs ...ast.Attr) ast.AttrListID {
	return f.lib.Decls.NewAttrList(attrs)
}

func (f *fixture) valueMember(name string, value ast.ConstantID, attrs ast.AttrListID) ast.ValueMember {
	return ast.ValueMember{Name: f.name(name), Value: value, Attrs: attrs, Span: f.span()}
}

func (f *fixture) compile(t *testing.T) Result {
	t.Helper()
	f.register(t)
	return Compile(f.lib, Options{Reporter: diag.BagReporter{Bag: f.bag}})
}

// register claims every declaration name, as the loader does after building.
func (f *fixture) register(t *testing.T) {
	t.Helper()
	for id := ast.DeclID(1); uint32(id) <= f.lib.Decls.Len(); id++ {
		if prev, ok := f.lib.Decls.Register(id); !ok && prev != id {
			t.Fatalf("declaration %q registered twice", f.lib.Decls.Get(id).Name.Raw)
		}
	}
}

func collectCodes(bag *diag.Bag) []diag.Code {
	items := bag.Items()
	codes := make([]diag.Code, 0, len(items))
	for _, it := range items {
		codes = append(codes, it.Code)
	}
	return codes
}

func containsCode(codes []diag.Code, want diag.Code) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}

func wantOnlyCodes(t *testing.T, bag *diag.Bag, want ...diag.Code) {
	t.Helper()
	got := collectCodes(bag)
	if len(got) != len(want) {
		t.Fatalf("got %d diagnostics %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diagnostic %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCompileEmptyLibrary(t *testing.T) {
	f := newFixture()
	res := f.compile(t)
	if res.Library != f.lib {
		t.Fatalf("result library mismatch")
	}
	wantOnlyCodes(t, f.bag)
}

func TestCompileIsLazyAndIdempotent(t *testing.T) {
	f := newFixture()
	inner := f.lib.Decls.NewStruct(f.name("Inner"), ast.NoAttrListID, f.span(), ast.StructDecl{
		Members: []ast.StructMember{
			{Name: f.name("x"), Type: f.primCtor("uint8"), Span: f.span()},
		},
	})
	// Two users force Inner twice; the second visit must be free.
	f.lib.Decls.NewStruct(f.name("UserA"), ast.NoAttrListID, f.span(), ast.StructDecl{
		Members: []ast.StructMember{
			{Name: f.name("i"), Type: f.declCtor(inner), Span: f.span()},
		},
	})
	f.lib.Decls.NewStruct(f.name("UserB"), ast.NoAttrListID, f.span(), ast.StructDecl{
		Members: []ast.StructMember{
			{Name: f.name("i"), Type: f.declCtor(inner), Span: f.span()},
		},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestCompileReportsInclusionCycle(t *testing.T) {
	f := newFixture()
	// A contains B, B contains A. One cycle diagnostic, and both still
	// finish compilation.
	a := f.lib.Decls.NewStruct(f.name("A"), ast.NoAttrListID, f.span(), ast.StructDecl{})
	b := f.lib.Decls.NewStruct(f.name("B"), ast.NoAttrListID, f.span(), ast.StructDecl{})
	sa, _ := f.lib.Decls.StructAt(a)
	sa.Members = []ast.StructMember{{Name: f.name("b"), Type: f.declCtor(b), Span: f.span()}}
	sb, _ := f.lib.Decls.StructAt(b)
	sb.Members = []ast.StructMember{{Name: f.name("a"), Type: f.declCtor(a), Span: f.span()}}

	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaIncludeCycle)
}

func TestCompileSelfCycle(t *testing.T) {
	f := newFixture()
	a := f.lib.Decls.NewStruct(f.name("Node"), ast.NoAttrListID, f.span(), ast.StructDecl{})
	sa, _ := f.lib.Decls.StructAt(a)
	sa.Members = []ast.StructMember{{Name: f.name("next"), Type: f.declCtor(a), Span: f.span()}}

	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaIncludeCycle)
}

func TestCompileSharesSpaceAcrossLibraries(t *testing.T) {
	dep := newFixture()
	depEnum := dep.lib.Decls.NewEnum(dep.name("Kind"), ast.NoAttrListID, dep.span(), ast.EnumDecl{
		Subtype: dep.primCtor("uint32"),
		Members: []ast.ValueMember{
			dep.valueMember("a", dep.num("1"), ast.NoAttrListID),
		},
		Strictness: ast.StrictnessStrict,
	})
	dep.register(t)
	space := types.NewSpace()
	Compile(dep.lib, Options{Reporter: diag.BagReporter{Bag: dep.bag}, Space: space})
	wantOnlyCodes(t, dep.bag)

	f := newFixture()
	f.lib.Deps = append(f.lib.Deps, dep.lib)
	f.lib.Decls.NewStruct(f.name("Holder"), ast.NoAttrListID, f.span(), ast.StructDecl{
		Members: []ast.StructMember{
			{
				Name: f.name("kind"),
				Type: f.lib.Decls.NewTypeCtor(ast.TypeCtor{
					Layout: ast.Reference{Target: dep.lib, Decl: depEnum, Span: f.span()},
					Span:   f.span(),
				}),
				Span: f.span(),
			},
		},
	})
	f.register(t)
	Compile(f.lib, Options{Reporter: diag.BagReporter{Bag: f.bag}, Space: space})
	wantOnlyCodes(t, f.bag)
}
