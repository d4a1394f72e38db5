package ast

import (
	"weft/internal/source"
)

type ResourceProperty struct {
	Name  Name
	Type  TypeCtorID
	Attrs AttrListID
	Span  source.Span
}

// ResourceDecl describes a handle kind: its underlying wire representation
// and the properties (subtype, rights) that uses of it may constrain.
type ResourceDecl struct {
	Subtype    TypeCtorID
	Properties []ResourceProperty
}

// FindProperty returns the property with the given canonical name.
func (r *ResourceDecl) FindProperty(canonical string) (*ResourceProperty, bool) {
	for i := range r.Properties {
		if r.Properties[i].Name.Canonical == canonical {
			return &r.Properties[i], true
		}
	}
	return nil, false
}

func (d *Decls) ResourceAt(id DeclID) (*ResourceDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclResource {
		return nil, false
	}
	return d.Resources.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewResource(name Name, attrs AttrListID, span source.Span, r ResourceDecl) DeclID {
	payload := PayloadID(d.Resources.Allocate(r))
	return d.New(DeclResource, name, attrs, span, payload)
}
