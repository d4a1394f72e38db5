package ast

import (
	"weft/internal/source"
)

// ValueMember is a named constant member of a bits or enum declaration.
type ValueMember struct {
	Name  Name
	Value ConstantID
	Attrs AttrListID
	Span  source.Span
}

// BitsDecl is a flag set over an unsigned integer. Mask is derived during
// compilation as the OR of the valid member values.
type BitsDecl struct {
	Subtype    TypeCtorID
	Members    []ValueMember
	Strictness Strictness
	Mask       uint64
}

func (d *Decls) BitsAt(id DeclID) (*BitsDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclBits {
		return nil, false
	}
	return d.Bits.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewBits(name Name, attrs AttrListID, span source.Span, bits BitsDecl) DeclID {
	payload := PayloadID(d.Bits.Allocate(bits))
	return d.New(DeclBits, name, attrs, span, payload)
}
