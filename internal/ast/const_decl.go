package ast

import (
	"weft/internal/source"
)

type ConstDecl struct {
	Type  TypeCtorID
	Value ConstantID
}

func (d *Decls) ConstAt(id DeclID) (*ConstDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclConst {
		return nil, false
	}
	return d.Consts.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewConst(name Name, attrs AttrListID, span source.Span, c ConstDecl) DeclID {
	payload := PayloadID(d.Consts.Allocate(c))
	return d.New(DeclConst, name, attrs, span, payload)
}
