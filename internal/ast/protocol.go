package ast

import (
	"weft/internal/source"
)

// ComposeRef names a protocol whose methods are folded into the composing
// protocol.
type ComposeRef struct {
	Ref  Reference
	Span source.Span
}

// ProtocolMethod. Request and Response may be NoTypeCtorID even when the
// corresponding direction exists (a method with no payload). Ordinal and
// Selector are derived during compilation.
type ProtocolMethod struct {
	Name        Name
	Attrs       AttrListID
	HasRequest  bool
	Request     TypeCtorID
	HasResponse bool
	Response    TypeCtorID
	Ordinal     uint64
	Selector    string
	Span        source.Span
}

type ProtocolDecl struct {
	Composed []ComposeRef
	Methods  []ProtocolMethod
}

func (d *Decls) ProtocolAt(id DeclID) (*ProtocolDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclProtocol {
		return nil, false
	}
	return d.Protocols.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewProtocol(name Name, attrs AttrListID, span source.Span, p ProtocolDecl) DeclID {
	payload := PayloadID(d.Protocols.Allocate(p))
	return d.New(DeclProtocol, name, attrs, span, payload)
}
