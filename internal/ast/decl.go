package ast

import (
	"weft/internal/names"
	"weft/internal/source"
)

// DeclKind discriminates the payload of a Decl.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclAlias
	DeclBits
	DeclBuiltin
	DeclConst
	DeclEnum
	DeclNewType
	DeclProtocol
	DeclResource
	DeclService
	DeclStruct
	DeclTable
	DeclUnion
)

func (k DeclKind) String() string {
	switch k {
	case DeclAlias:
		return "alias"
	case DeclBits:
		return "bits"
	case DeclBuiltin:
		return "builtin"
	case DeclConst:
		return "const"
	case DeclEnum:
		return "enum"
	case DeclNewType:
		return "new type"
	case DeclProtocol:
		return "protocol"
	case DeclResource:
		return "resource"
	case DeclService:
		return "service"
	case DeclStruct:
		return "struct"
	case DeclTable:
		return "table"
	case DeclUnion:
		return "union"
	}
	return "invalid"
}

// Strictness selects how unknown data is treated at decode time.
type Strictness uint8

const (
	StrictnessFlexible Strictness = iota
	StrictnessStrict
)

func (s Strictness) String() string {
	if s == StrictnessStrict {
		return "strict"
	}
	return "flexible"
}

// Resourceness tells whether values of a type may carry handles.
// Unspecified means the declaration did not say and the compiler derives
// it from the member types.
type Resourceness uint8

const (
	ResourcenessUnspecified Resourceness = iota
	ResourcenessValue
	ResourcenessResource
)

func (r Resourceness) String() string {
	switch r {
	case ResourcenessValue:
		return "value"
	case ResourcenessResource:
		return "resource"
	}
	return "unspecified"
}

// Name pairs a spelling with the canonical form used as the key of every
// uniqueness scope. Raw keeps the author's spelling for diagnostics.
type Name struct {
	Text      source.StringID
	Raw       string
	Canonical string
	Span      source.Span
}

// MakeName interns raw and computes its canonical form.
func MakeName(strings *source.Interner, raw string, span source.Span) Name {
	return Name{
		Text:      strings.Intern(raw),
		Raw:       raw,
		Canonical: names.Canonical(raw),
		Span:      span,
	}
}

// Decl is the header shared by every declaration; the kind selects which
// payload arena holds the body.
type Decl struct {
	Kind    DeclKind
	Name    Name
	Attrs   AttrListID
	Span    source.Span
	Payload PayloadID
}

// Reference points at a declaration, pre-resolved by the loader. Member
// keeps the spelling of a member selector; the compiler resolves it against
// the target's members because only it knows which declarations have any.
type Reference struct {
	Target *Library
	Decl   DeclID
	Member string
	Span   source.Span
}

func (r Reference) IsValid() bool {
	return r.Target != nil && r.Decl.IsValid()
}

// HasMember reports whether the reference selects a member of the target.
func (r Reference) HasMember() bool {
	return r.Member != ""
}

// Resolve returns the referenced declaration header.
func (r Reference) Resolve() *Decl {
	if !r.IsValid() {
		return nil
	}
	return r.Target.Decls.Arena.Get(uint32(r.Decl))
}
