package ast

import (
	"weft/internal/source"
)

type AliasDecl struct {
	Target TypeCtorID
}

// NewTypeDecl wraps an existing type in a distinct named type.
type NewTypeDecl struct {
	Target TypeCtorID
}

func (d *Decls) AliasAt(id DeclID) (*AliasDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclAlias {
		return nil, false
	}
	return d.Aliases.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewAlias(name Name, attrs AttrListID, span source.Span, a AliasDecl) DeclID {
	payload := PayloadID(d.Aliases.Allocate(a))
	return d.New(DeclAlias, name, attrs, span, payload)
}

func (d *Decls) NewTypeAt(id DeclID) (*NewTypeDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclNewType {
		return nil, false
	}
	return d.NewTypes.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewNewType(name Name, attrs AttrListID, span source.Span, n NewTypeDecl) DeclID {
	payload := PayloadID(d.NewTypes.Allocate(n))
	return d.New(DeclNewType, name, attrs, span, payload)
}
