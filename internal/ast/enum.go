package ast

import (
	"weft/internal/source"
)

// EnumDecl is an enumeration over an integral type. UnknownValue holds the
// canonical bit pattern reserved for unknown data in flexible enums;
// HasUnknown is set once it is derived.
type EnumDecl struct {
	Subtype      TypeCtorID
	Members      []ValueMember
	Strictness   Strictness
	UnknownValue uint64
	HasUnknown   bool
}

// FindMember returns the member with the given canonical name.
func (e *EnumDecl) FindMember(canonical string) (*ValueMember, bool) {
	return findValueMember(e.Members, canonical)
}

// FindMember on bits declarations mirrors the enum helper.
func (b *BitsDecl) FindMember(canonical string) (*ValueMember, bool) {
	return findValueMember(b.Members, canonical)
}

func findValueMember(members []ValueMember, canonical string) (*ValueMember, bool) {
	for i := range members {
		if members[i].Name.Canonical == canonical {
			return &members[i], true
		}
	}
	return nil, false
}

func (d *Decls) EnumAt(id DeclID) (*EnumDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclEnum {
		return nil, false
	}
	return d.Enums.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewEnum(name Name, attrs AttrListID, span source.Span, enum EnumDecl) DeclID {
	payload := PayloadID(d.Enums.Allocate(enum))
	return d.New(DeclEnum, name, attrs, span, payload)
}
