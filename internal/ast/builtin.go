package ast

import (
	"weft/internal/source"
)

// BuiltinKind identifies the pseudo-declarations of the root library.
type BuiltinKind uint8

const (
	BuiltinBool BuiltinKind = iota
	BuiltinInt8
	BuiltinInt16
	BuiltinInt32
	BuiltinInt64
	BuiltinUint8
	BuiltinUint16
	BuiltinUint32
	BuiltinUint64
	BuiltinFloat32
	BuiltinFloat64
	BuiltinString
	BuiltinArray
	BuiltinVector
	BuiltinByte
	BuiltinClientEnd
	BuiltinServerEnd
	BuiltinOptional
	BuiltinMax
)

func (k BuiltinKind) String() string {
	if int(k) < len(builtinNames) {
		return builtinNames[k].name
	}
	return "invalid"
}

// IsPrimitive reports whether the builtin is a primitive layout.
func (k BuiltinKind) IsPrimitive() bool {
	return k <= BuiltinFloat64 || k == BuiltinByte
}

var builtinNames = []struct {
	kind BuiltinKind
	name string
}{
	{BuiltinBool, "bool"},
	{BuiltinInt8, "int8"},
	{BuiltinInt16, "int16"},
	{BuiltinInt32, "int32"},
	{BuiltinInt64, "int64"},
	{BuiltinUint8, "uint8"},
	{BuiltinUint16, "uint16"},
	{BuiltinUint32, "uint32"},
	{BuiltinUint64, "uint64"},
	{BuiltinFloat32, "float32"},
	{BuiltinFloat64, "float64"},
	{BuiltinString, "string"},
	{BuiltinArray, "array"},
	{BuiltinVector, "vector"},
	{BuiltinByte, "byte"},
	{BuiltinClientEnd, "client_end"},
	{BuiltinServerEnd, "server_end"},
	{BuiltinOptional, "optional"},
	{BuiltinMax, "MAX"},
}

func (d *Decls) BuiltinAt(id DeclID) (*BuiltinDecl, bool) {
	decl := d.Arena.Get(uint32(id))
	if decl == nil || decl.Kind != DeclBuiltin {
		return nil, false
	}
	return d.Builtins.Get(uint32(decl.Payload)), true
}

func (d *Decls) NewBuiltin(name Name, which BuiltinKind) DeclID {
	payload := PayloadID(d.Builtins.Allocate(BuiltinDecl{Which: which}))
	return d.New(DeclBuiltin, name, NoAttrListID, source.Span{}, payload)
}

type BuiltinDecl struct {
	Which BuiltinKind
}

// RootLibraryName is the name every graph resolves builtins against.
const RootLibraryName = "weft"

// NewRootLibrary builds the builtin pseudo-library. Every compilation
// links layout references like uint32 or vector against it.
func NewRootLibrary(strings *source.Interner) *Library {
	lib := NewLibrary(RootLibraryName, source.Span{})
	for _, b := range builtinNames {
		id := lib.Decls.NewBuiltin(MakeName(strings, b.name, source.Span{}), b.kind)
		if _, ok := lib.Decls.Register(id); !ok {
			panic("duplicate builtin " + b.name)
		}
	}
	return lib
}
