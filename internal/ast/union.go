package ast

import (
	"weft/internal/source"
)

type UnionDecl struct {
	Members      []OrdinalMember
	Strictness   Strictness
	Resourceness Resourceness
}

func (d *Decls) UnionAt(id DeclID) (*UnionDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclUnion {
		return nil, false
	}
	return d.Unions.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewUnion(name Name, attrs AttrListID, span source.Span, u UnionDecl) DeclID {
	payload := PayloadID(d.Unions.Allocate(u))
	return d.New(DeclUnion, name, attrs, span, payload)
}
