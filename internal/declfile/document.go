package declfile

import (
	"weft/internal/source"
)

// loc is a [start, end) byte range into the graph file. The frontend
// records where each node sits in its own serialization so diagnostics
// can point at it.
type loc [2]uint32

func (l loc) span(file source.FileID) source.Span {
	return source.Span{File: file, Start: l[0], End: l[1]}
}

// document is the top-level shape of a *.weft.json declaration graph.
type document struct {
	Format  int        `json:"format"`
	Library string     `json:"library"`
	At      loc        `json:"at"`
	Attrs   []attrNode `json:"attributes,omitempty"`
	Decls   []declNode `json:"declarations"`
}

// declNode is one top-level declaration. Kind selects which of the
// optional fields apply; the builder reports fields that a kind requires
// but the node lacks.
type declNode struct {
	Kind  string     `json:"kind"`
	Name  string     `json:"name"`
	At    loc        `json:"at"`
	Attrs []attrNode `json:"attributes,omitempty"`

	// bits, enum, union
	Strict bool `json:"strict,omitempty"`

	// struct, table, union; absent means the compiler derives it
	Resource bool `json:"resource,omitempty"`

	// const
	Type  *typeNode  `json:"type,omitempty"`
	Value *constNode `json:"value,omitempty"`

	// bits, enum (defaults to uint32), resource (required)
	Subtype *typeNode `json:"subtype,omitempty"`

	// struct, table, union, bits, enum, service
	Members []memberNode `json:"members,omitempty"`

	// resource
	Properties []memberNode `json:"properties,omitempty"`

	// protocol
	Compose []composeNode `json:"compose,omitempty"`
	Methods []methodNode  `json:"methods,omitempty"`

	// alias, new_type
	Target *typeNode `json:"target,omitempty"`
}

// memberNode is shared by every member-bearing kind. Which fields matter
// depends on the owner: bits and enums read Value, structs read Default,
// tables and unions read Ordinal and Reserved.
type memberNode struct {
	Name     string     `json:"name,omitempty"`
	At       loc        `json:"at"`
	Attrs    []attrNode `json:"attributes,omitempty"`
	Type     *typeNode  `json:"type,omitempty"`
	Value    *constNode `json:"value,omitempty"`
	Default  *constNode `json:"default,omitempty"`
	Ordinal  uint64     `json:"ordinal,omitempty"`
	Reserved bool       `json:"reserved,omitempty"`
}

type composeNode struct {
	Ref string `json:"ref"`
	At  loc    `json:"at"`
}

// methodNode keeps direction flags separate from payloads: a direction may
// exist with no payload at all.
type methodNode struct {
	Name        string     `json:"name"`
	At          loc        `json:"at"`
	Attrs       []attrNode `json:"attributes,omitempty"`
	HasRequest  bool       `json:"has_request,omitempty"`
	Request     *typeNode  `json:"request,omitempty"`
	HasResponse bool       `json:"has_response,omitempty"`
	Response    *typeNode  `json:"response,omitempty"`
}

// typeNode is an applied type: a textual layout reference plus parameters
// and constraints. The linker resolves Layout in the second pass.
type typeNode struct {
	Layout      string      `json:"layout"`
	At          loc         `json:"at"`
	Params      []paramNode `json:"params,omitempty"`
	Constraints []constNode `json:"constraints,omitempty"`
}

// paramNode carries exactly one of Type and Value; the frontend
// disambiguates identifier parameters before writing the graph.
type paramNode struct {
	Type  *typeNode  `json:"type,omitempty"`
	Value *constNode `json:"value,omitempty"`
	At    loc        `json:"at"`
}

// constNode carries exactly one of Literal, Ref and Or.
type constNode struct {
	At      loc          `json:"at"`
	Literal *literalNode `json:"literal,omitempty"`
	Ref     string       `json:"ref,omitempty"`
	Or      *orNode      `json:"or,omitempty"`
}

// literalNode. Kind is one of "bool", "number", "string" and "doc";
// numeric text stays unparsed until the compiler knows the target type.
type literalNode struct {
	Kind string `json:"kind"`
	Bool bool   `json:"bool,omitempty"`
	Text string `json:"text,omitempty"`
}

type orNode struct {
	Left  constNode `json:"left"`
	Right constNode `json:"right"`
}

type attrNode struct {
	Name string        `json:"name"`
	At   loc           `json:"at"`
	Args []attrArgNode `json:"args,omitempty"`
}

// attrArgNode. An empty Name marks an anonymous argument; the attribute
// schema supplies the default name during compilation.
type attrArgNode struct {
	Name  string     `json:"name,omitempty"`
	At    loc        `json:"at"`
	Value *constNode `json:"value"`
}
