package sema

import (
	"testing"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/ordinals"
)

func (f *fixture) newProtocol(name string, p ast.ProtocolDecl) ast.DeclID {
	return f.lib.Decls.NewProtocol(f.name(name), ast.NoAttrListID, f.span(), p)
}

func (f *fixture) oneWay(name string, req ast.TypeCtorID) ast.ProtocolMethod {
	return ast.ProtocolMethod{Name: f.name(name), HasRequest: true, Request: req, Span: f.span()}
}

func (f *fixture) twoWay(name string, req, resp ast.TypeCtorID) ast.ProtocolMethod {
	return ast.ProtocolMethod{
		Name: f.name(name), HasRequest: true, Request: req,
		HasResponse: true, Response: resp, Span: f.span(),
	}
}

func (f *fixture) compose(id ast.DeclID) ast.ComposeRef {
	return ast.ComposeRef{Ref: f.ref(id), Span: f.span()}
}

// fixedHasher sends every method to the same ordinal, forcing collisions.
type fixedHasher struct{ ordinal uint64 }

func (h fixedHasher) MethodOrdinal(library, protocol, selector string) uint64 {
	return h.ordinal
}

func (f *fixture) compileWith(t *testing.T, opts Options) Result {
	t.Helper()
	f.register(t)
	opts.Reporter = diag.BagReporter{Bag: f.bag}
	return Compile(f.lib, opts)
}

func TestProtocolMethods(t *testing.T) {
	f := newFixture()
	args := f.newStruct("QueryArgs",
		f.structMember("key", f.primCtor("string")),
	)
	result := f.newStruct("QueryResult",
		f.structMember("value", f.primCtor("string")),
	)
	device := f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{
			f.oneWay("Ping", ast.NoTypeCtorID),
			f.twoWay("Query", f.declCtor(args), f.declCtor(result)),
		},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)

	pd, _ := f.lib.Decls.ProtocolAt(device)
	ping, query := pd.Methods[0], pd.Methods[1]
	if ping.Ordinal == 0 || query.Ordinal == 0 {
		t.Fatal("ordinals must be derived during compilation")
	}
	if ping.Ordinal == query.Ordinal {
		t.Error("distinct methods hashed to the same ordinal")
	}
	if ping.Ordinal>>63 != 0 || query.Ordinal>>63 != 0 {
		t.Error("ordinals must fit in 63 bits")
	}
	if ping.Selector != "Ping" {
		t.Errorf("selector = %q, want the method name", ping.Selector)
	}
}

// The ordinal is a pure function of library, protocol and selector, so a
// recompilation yields the same value.
func TestMethodOrdinalsDeterministic(t *testing.T) {
	build := func() uint64 {
		f := newFixture()
		device := f.newProtocol("Device", ast.ProtocolDecl{
			Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
		})
		f.compile(t)
		wantOnlyCodes(t, f.bag)
		pd, _ := f.lib.Decls.ProtocolAt(device)
		return pd.Methods[0].Ordinal
	}
	first, second := build(), build()
	if first != second {
		t.Errorf("ordinal changed across compilations: %#x then %#x", first, second)
	}
}

// @selector replaces the method name in the hash input, which is how a
// method can be renamed without breaking its wire identity.
func TestSelectorOverridesOrdinal(t *testing.T) {
	f := newFixture()
	get := f.oneWay("Get", ast.NoTypeCtorID)
	get.Attrs = f.attrs(f.attr("selector", f.strArg("value", "Fetch")))
	device := f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{get},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)

	pd, _ := f.lib.Decls.ProtocolAt(device)
	if pd.Methods[0].Selector != "Fetch" {
		t.Errorf("selector = %q, want %q", pd.Methods[0].Selector, "Fetch")
	}
	want := ordinals.SHA256Hasher{}.MethodOrdinal("acme.device", "Device", "Fetch")
	if pd.Methods[0].Ordinal != want {
		t.Errorf("ordinal = %#x, want the hash of the selector %#x", pd.Methods[0].Ordinal, want)
	}
}

// Two methods whose selectors coincide collide even though their names
// differ.
func TestSelectorCollision(t *testing.T) {
	f := newFixture()
	get := f.oneWay("Get", ast.NoTypeCtorID)
	get.Attrs = f.attrs(f.attr("selector", f.strArg("value", "Fetch")))
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{
			get,
			f.oneWay("Fetch", ast.NoTypeCtorID),
		},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateMethodOrdinal)
}

func TestDuplicateMethodName(t *testing.T) {
	f := newFixture()
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{
			f.oneWay("Get", ast.NoTypeCtorID),
			f.oneWay("GET", ast.NoTypeCtorID),
		},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateMethodName)
}

func TestForcedOrdinalCollision(t *testing.T) {
	f := newFixture()
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{
			f.oneWay("Ping", ast.NoTypeCtorID),
			f.oneWay("Pong", ast.NoTypeCtorID),
		},
	})
	f.compileWith(t, Options{Hasher: fixedHasher{ordinal: 7}})
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateMethodOrdinal)
}

func TestComposeInheritsMethods(t *testing.T) {
	f := newFixture()
	base := f.newProtocol("Base", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
	})
	f.newProtocol("Derived", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(base)},
		Methods:  []ast.ProtocolMethod{f.oneWay("Pong", ast.NoTypeCtorID)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestComposeRejectsShadowing(t *testing.T) {
	f := newFixture()
	base := f.newProtocol("Base", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
	})
	f.newProtocol("Derived", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(base)},
		Methods:  []ast.ProtocolMethod{f.oneWay("ping", ast.NoTypeCtorID)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateMethodName)
}

// A diamond brings the shared base in once; composing the same protocol
// twice directly is an error.
func TestDiamondCompose(t *testing.T) {
	f := newFixture()
	base := f.newProtocol("Base", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
	})
	left := f.newProtocol("Left", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(base)},
	})
	right := f.newProtocol("Right", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(base)},
	})
	f.newProtocol("Top", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(left), f.compose(right)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestDirectDuplicateCompose(t *testing.T) {
	f := newFixture()
	base := f.newProtocol("Base", ast.ProtocolDecl{})
	f.newProtocol("Top", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(base), f.compose(base)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateCompose)
}

// Two composed protocols that each define the same method name clash at
// the composing protocol.
func TestComposeConflict(t *testing.T) {
	f := newFixture()
	left := f.newProtocol("Left", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
	})
	right := f.newProtocol("Right", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Ping", ast.NoTypeCtorID)},
	})
	f.newProtocol("Top", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(left), f.compose(right)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaDuplicateMethodName)
}

func TestComposeNotProtocol(t *testing.T) {
	f := newFixture()
	point := f.newStruct("Point")
	f.newProtocol("Device", ast.ProtocolDecl{
		Composed: []ast.ComposeRef{f.compose(point)},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaComposeNotProtocol)
}

func TestPayloadMustBeLayout(t *testing.T) {
	f := newFixture()
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Set", f.primCtor("uint32"))},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaInvalidPayloadType)
}

func TestPayloadNotOptional(t *testing.T) {
	f := newFixture()
	args := f.newStruct("Args", f.structMember("n", f.primCtor("uint32")))
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{
			f.oneWay("Set", f.declCtor(args, f.identConst(f.builtin("optional")))),
		},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaInvalidPayloadType)
}

func TestEmptyStructPayload(t *testing.T) {
	t.Run("plain empty rejected", func(t *testing.T) {
		f := newFixture()
		empty := f.newStruct("Empty")
		f.newProtocol("Device", ast.ProtocolDecl{
			Methods: []ast.ProtocolMethod{f.oneWay("Set", f.declCtor(empty))},
		})
		f.compile(t)
		wantOnlyCodes(t, f.bag, diag.SemaEmptyPayload)
	})
	t.Run("success payload allowed", func(t *testing.T) {
		f := newFixture()
		ok := f.lib.Decls.NewStruct(f.name("DeviceSetResult"), ast.NoAttrListID, f.span(), ast.StructDecl{
			EmptySuccess: true,
		})
		f.newProtocol("Device", ast.ProtocolDecl{
			Methods: []ast.ProtocolMethod{f.twoWay("Set", ast.NoTypeCtorID, f.declCtor(ok))},
		})
		f.compile(t)
		wantOnlyCodes(t, f.bag)
	})
}

func TestPayloadMemberDefault(t *testing.T) {
	f := newFixture()
	args := f.newStruct("Args",
		f.defaulted("retries", f.primCtor("uint8"), f.num("3")),
	)
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Set", f.declCtor(args))},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaPayloadMemberDefault)
}

func TestTablePayload(t *testing.T) {
	f := newFixture()
	args := f.newTable("Args",
		f.slot(1, f.used("key", f.primCtor("string"))),
	)
	f.newProtocol("Device", ast.ProtocolDecl{
		Methods: []ast.ProtocolMethod{f.oneWay("Set", f.declCtor(args))},
	})
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}
