package ast

import (
	"weft/internal/source"
)

// Ordinal is a 1-based wire slot. Values beyond the valid range survive
// loading so the compiler can point a diagnostic at them.
type Ordinal struct {
	Value uint64
	Span  source.Span
}

// UsedMember is the named part of an ordinaled member. Reserved members
// have none.
type UsedMember struct {
	Name Name
	Type TypeCtorID
}

// OrdinalMember is a slot in a table or union. Used == nil means the slot
// is reserved: it takes part in ordinal accounting only.
type OrdinalMember struct {
	Ordinal Ordinal
	Used    *UsedMember
	Attrs   AttrListID
	Span    source.Span
}

type TableDecl struct {
	Members      []OrdinalMember
	Resourceness Resourceness
}

func (d *Decls) TableAt(id DeclID) (*TableDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclTable {
		return nil, false
	}
	return d.Tables.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewTable(name Name, attrs AttrListID, span source.Span, t TableDecl) DeclID {
	payload := PayloadID(d.Tables.Allocate(t))
	return d.New(DeclTable, name, attrs, span, payload)
}
