package ast

import (
	"weft/internal/source"
)

// Library is one compiled unit: a named bag of declarations plus the
// libraries it depends on. Dependencies are compiled before dependents.
type Library struct {
	Name  string
	Span  source.Span
	Attrs AttrListID
	Decls *Decls
	Deps  []*Library
}

func NewLibrary(name string, span source.Span) *Library {
	return &Library{
		Name:  name,
		Span:  span,
		Decls: NewDecls(),
	}
}

// Dep returns the dependency with the given library name.
func (l *Library) Dep(name string) (*Library, bool) {
	for _, dep := range l.Deps {
		if dep.Name == name {
			return dep, true
		}
	}
	return nil, false
}

// Decls owns every arena of a library: declaration headers, per-kind
// payloads, type constructors, constants and attribute lists.
type Decls struct {
	Arena *Arena[Decl]

	Aliases   *Arena[AliasDecl]
	Bits      *Arena[BitsDecl]
	Builtins  *Arena[BuiltinDecl]
	Consts    *Arena[ConstDecl]
	Enums     *Arena[EnumDecl]
	NewTypes  *Arena[NewTypeDecl]
	Protocols *Arena[ProtocolDecl]
	Resources *Arena[ResourceDecl]
	Services  *Arena[ServiceDecl]
	Structs   *Arena[StructDecl]
	Tables    *Arena[TableDecl]
	Unions    *Arena[UnionDecl]

	TypeCtors *Arena[TypeCtor]
	Constants *Arena[Constant]
	AttrLists *Arena[AttrList]

	byName map[string]DeclID // canonical name -> decl
}

func NewDecls() *Decls {
	return &Decls{
		Arena:     NewArena[Decl](0),
		Aliases:   NewArena[AliasDecl](0),
		Bits:      NewArena[BitsDecl](0),
		Builtins:  NewArena[BuiltinDecl](0),
		Consts:    NewArena[ConstDecl](0),
		Enums:     NewArena[EnumDecl](0),
		NewTypes:  NewArena[NewTypeDecl](0),
		Protocols: NewArena[ProtocolDecl](0),
		Resources: NewArena[ResourceDecl](0),
		Services:  NewArena[ServiceDecl](0),
		Structs:   NewArena[StructDecl](0),
		Tables:    NewArena[TableDecl](0),
		Unions:    NewArena[UnionDecl](0),
		TypeCtors: NewArena[TypeCtor](0),
		Constants: NewArena[Constant](0),
		AttrLists: NewArena[AttrList](0),
		byName:    make(map[string]DeclID),
	}
}

// New allocates a declaration header. Name registration is a separate step
// so the loader can report duplicates with both spans in hand.
func (d *Decls) New(kind DeclKind, name Name, attrs AttrListID, span source.Span, payload PayloadID) DeclID {
	return DeclID(d.Arena.Allocate(Decl{
		Kind:    kind,
		Name:    name,
		Attrs:   attrs,
		Span:    span,
		Payload: payload,
	}))
}

// Register claims the declaration's canonical name. When the name is taken
// the previous holder is returned and the mapping is left untouched.
func (d *Decls) Register(id DeclID) (prev DeclID, ok bool) {
	decl := d.Arena.Get(uint32(id))
	key := decl.Name.Canonical
	if existing, taken := d.byName[key]; taken {
		return existing, false
	}
	d.byName[key] = id
	return NoDeclID, true
}

// Lookup finds a declaration by canonical name.
func (d *Decls) Lookup(canonical string) (DeclID, bool) {
	id, ok := d.byName[canonical]
	return id, ok
}

// Get returns the declaration header for id.
func (d *Decls) Get(id DeclID) *Decl {
	return d.Arena.Get(uint32(id))
}

// Len counts declarations.
func (d *Decls) Len() uint32 {
	return d.Arena.Len()
}

// NewTypeCtor allocates a type constructor node.
func (d *Decls) NewTypeCtor(ctor TypeCtor) TypeCtorID {
	return TypeCtorID(d.TypeCtors.Allocate(ctor))
}

// TypeCtorAt returns the type constructor for id.
func (d *Decls) TypeCtorAt(id TypeCtorID) *TypeCtor {
	return d.TypeCtors.Get(uint32(id))
}

// NewConstant allocates a constant expression node.
func (d *Decls) NewConstant(c Constant) ConstantID {
	return ConstantID(d.Constants.Allocate(c))
}

// ConstantAt returns the constant node for id.
func (d *Decls) ConstantAt(id ConstantID) *Constant {
	return d.Constants.Get(uint32(id))
}

// NewAttrList allocates an attribute list; empty lists collapse to
// NoAttrListID.
func (d *Decls) NewAttrList(attrs []Attr) AttrListID {
	if len(attrs) == 0 {
		return NoAttrListID
	}
	return AttrListID(d.AttrLists.Allocate(AttrList{Attrs: attrs}))
}

// AttrListAt returns the attribute list for id, nil for NoAttrListID.
func (d *Decls) AttrListAt(id AttrListID) *AttrList {
	return d.AttrLists.Get(uint32(id))
}
