package ast

import (
	"weft/internal/source"
)

type ServiceMember struct {
	Name  Name
	Type  TypeCtorID
	Attrs AttrListID
	Span  source.Span
}

type ServiceDecl struct {
	Members []ServiceMember
}

func (d *Decls) ServiceAt(id DeclID) (*ServiceDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclService {
		return nil, false
	}
	return d.Services.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewService(name Name, attrs AttrListID, span source.Span, s ServiceDecl) DeclID {
	payload := PayloadID(d.Services.Allocate(s))
	return d.New(DeclService, name, attrs, span, payload)
}
