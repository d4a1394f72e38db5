package sema

import (
	"testing"

	"weft/internal/ast"
	"weft/internal/diag"
)

func (f *fixture) serviceMember(name string, typ ast.TypeCtorID) ast.ServiceMember {
	return ast.ServiceMember{Name: f.name(name), Type: typ, Span: f.span()}
}

func (f *fixture) newService(name string, members ...ast.ServiceMember) ast.DeclID {
	return f.lib.Decls.NewService(f.name(name), ast.NoAttrListID, f.span(), ast.ServiceDecl{
		Members: members,
	})
}

func (f *fixture) clientEnd(proto ast.DeclID, constraints ...ast.ConstantID) ast.TypeCtorID {
	all := append([]ast.ConstantID{f.identConst(f.ref(proto))}, constraints...)
	return f.paramCtor("client_end", nil, all...)
}

func TestServiceMembers(t *testing.T) {
	f := newFixture()
	device := f.newProtocol("Device", ast.ProtocolDecl{})
	monitor := f.newProtocol("Monitor", ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("device", f.clientEnd(device)),
		f.serviceMember("monitor", f.clientEnd(monitor)),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}

func TestServiceMemberMustBeClientEnd(t *testing.T) {
	f := newFixture()
	device := f.newProtocol("Device", ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("reading", f.primCtor("uint32")),
		f.serviceMember("server", f.paramCtor("server_end", nil, f.identConst(f.ref(device)))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag,
		diag.SemaServiceMemberNotClientEnd,
		diag.SemaServiceMemberNotClientEnd,
	)
}

func TestServiceMemberNotOptional(t *testing.T) {
	f := newFixture()
	device := f.newProtocol("Device", ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("device", f.clientEnd(device, f.identConst(f.builtin("optional")))),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaServiceMemberNullable)
}

func TestServiceDuplicateMember(t *testing.T) {
	f := newFixture()
	device := f.newProtocol("Device", ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("device", f.clientEnd(device)),
		f.serviceMember("DEVICE", f.clientEnd(device)),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaNameCollision)
}

// Every member's protocol must ride the same transport; the first member
// establishes it.
func TestServiceTransportMismatch(t *testing.T) {
	f := newFixture()
	channel := f.newProtocol("OverChannel", ast.ProtocolDecl{})
	driver := f.lib.Decls.NewProtocol(f.name("OverDriver"),
		f.attrs(f.attr("transport", f.strArg("value", "driver"))),
		f.span(), ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("a", f.clientEnd(channel)),
		f.serviceMember("b", f.clientEnd(driver)),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag, diag.SemaServiceTransportMismatch)
}

func TestServiceSharedTransport(t *testing.T) {
	f := newFixture()
	a := f.lib.Decls.NewProtocol(f.name("A"),
		f.attrs(f.attr("transport", f.strArg("value", "driver"))),
		f.span(), ast.ProtocolDecl{})
	b := f.lib.Decls.NewProtocol(f.name("B"),
		f.attrs(f.attr("transport", f.strArg("value", "driver"))),
		f.span(), ast.ProtocolDecl{})
	f.newService("Station",
		f.serviceMember("a", f.clientEnd(a)),
		f.serviceMember("b", f.clientEnd(b)),
	)
	f.compile(t)
	wantOnlyCodes(t, f.bag)
}
