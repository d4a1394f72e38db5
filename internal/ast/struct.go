package ast

import (
	"weft/internal/source"
)

// StructMember has an optional default value (NoConstantID when absent).
type StructMember struct {
	Name    Name
	Type    TypeCtorID
	Default ConstantID
	Attrs   AttrListID
	Span    source.Span
}

// StructDecl. EmptySuccess marks the synthesized empty result payload that
// two-way methods use; it is the one struct allowed to stay empty in a
// method payload position.
type StructDecl struct {
	Members      []StructMember
	Resourceness Resourceness
	EmptySuccess bool
}

func (d *Decls) StructAt(id DeclID) (*StructDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclStruct {
		return nil, false
	}
	return d.Structs.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewStruct(name Name, attrs AttrListID, span source.Span, s StructDecl) DeclID {
	payload := PayloadID(d.Structs.Allocate(s))
	return d.New(DeclStruct, name, attrs, span, payload)
}
