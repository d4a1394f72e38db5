package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/constant"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// AttrArgSchema describes one argument of a known attribute. Kind Invalid
// accepts any literal at face value.
type AttrArgSchema struct {
	Name     string
	Kind     constant.Kind
	Optional bool
}

// AttrSchema describes a known attribute by canonical name.
type AttrSchema struct {
	Name string
	Args []AttrArgSchema
}

func (s AttrSchema) findArg(canonical string) (AttrArgSchema, bool) {
	for _, a := range s.Args {
		if a.Name == canonical {
			return a, true
		}
	}
	return AttrArgSchema{}, false
}

// AttrSchemas is the registry of known attributes. Unknown attributes are
// permitted; their arguments resolve at face value.
type AttrSchemas struct {
	byName map[string]AttrSchema
}

func NewAttrSchemas() *AttrSchemas {
	return &AttrSchemas{byName: make(map[string]AttrSchema)}
}

// Register adds a schema. Registering a name twice is a programmer error.
func (s *AttrSchemas) Register(schema AttrSchema) *AttrSchemas {
	if _, ok := s.byName[schema.Name]; ok {
		panic(fmt.Errorf("sema: attribute schema '%s' registered twice", schema.Name))
	}
	s.byName[schema.Name] = schema
	return s
}

func (s *AttrSchemas) Lookup(canonical string) (AttrSchema, bool) {
	schema, ok := s.byName[canonical]
	return schema, ok
}

// BuiltinSchemas returns the attributes the compiler itself consumes.
func BuiltinSchemas() *AttrSchemas {
	return NewAttrSchemas().
		Register(AttrSchema{Name: "doc", Args: []AttrArgSchema{
			{Name: "value", Kind: constant.String},
		}}).
		Register(AttrSchema{Name: "selector", Args: []AttrArgSchema{
			{Name: "value", Kind: constant.String},
		}}).
		Register(AttrSchema{Name: "transport", Args: []AttrArgSchema{
			{Name: "value", Kind: constant.String},
		}}).
		Register(AttrSchema{Name: "generated_name", Args: []AttrArgSchema{
			{Name: "value", Kind: constant.String},
		}}).
		Register(AttrSchema{Name: "discoverable", Args: []AttrArgSchema{
			{Name: "name", Kind: constant.String, Optional: true},
		}}).
		Register(AttrSchema{Name: "unknown"})
}

// compileAttrList validates one attribute list: attribute names must be
// unique, arguments must match the schema when one is registered, and every
// argument value must resolve.
func (c *compiler) compileAttrList(id ast.AttrListID) {
	list := c.lib.Decls.AttrListAt(id)
	if list == nil {
		return
	}
	seen := NewScope[string, source.Span]()
	for i := range list.Attrs {
		attr := &list.Attrs[i]
		if prev, ok := seen.Insert(attr.Name.Canonical, attr.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateAttribute, attr.Span,
				fmt.Sprintf("duplicate attribute '%s'", attr.Name.Raw)).
				WithNote(prev, "previously used here").Emit()
			continue
		}
		c.compileAttr(attr)
	}
}

func (c *compiler) compileAttr(attr *ast.Attr) {
	schema, known := c.schemas.Lookup(attr.Name.Canonical)
	argSeen := NewScope[string, source.Span]()
	for i := range attr.Args {
		arg := &attr.Args[i]
		if arg.Name.Canonical == "" {
			if !c.nameAnonymousArg(attr, arg, schema, known) {
				continue
			}
		}
		if prev, ok := argSeen.Insert(arg.Name.Canonical, arg.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateAttributeArg, arg.Span,
				fmt.Sprintf("duplicate argument '%s' on attribute '%s'", arg.Name.Canonical, attr.Name.Raw)).
				WithNote(prev, "previously given here").Emit()
			continue
		}
		if !known {
			c.resolveConstant(arg.Value, types.NoTypeID)
			continue
		}
		as, ok := schema.findArg(arg.Name.Canonical)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUnknownAttributeArg, arg.Span,
				fmt.Sprintf("attribute '%s' has no argument '%s'", attr.Name.Raw, arg.Name.Raw)).Emit()
			continue
		}
		c.resolveConstant(arg.Value, c.typeForValueKind(as.Kind))
	}
	if !known {
		return
	}
	for _, as := range schema.Args {
		if as.Optional {
			continue
		}
		if _, ok := argSeen.Lookup(as.Name); !ok {
			diag.ReportError(c.reporter, diag.SemaMissingAttributeArg, attr.Span,
				fmt.Sprintf("attribute '%s' requires argument '%s'", attr.Name.Raw, as.Name)).Emit()
		}
	}
}

// nameAnonymousArg gives an unnamed argument its schema name. Unknown
// attributes default to "value"; known attributes must take exactly one
// argument for the anonymous form.
func (c *compiler) nameAnonymousArg(attr *ast.Attr, arg *ast.AttrArg, schema AttrSchema, known bool) bool {
	if !known {
		arg.Name.Canonical = "value"
		return true
	}
	if len(schema.Args) != 1 {
		diag.ReportError(c.reporter, diag.SemaUnknownAttributeArg, arg.Span,
			fmt.Sprintf("attribute '%s' requires named arguments", attr.Name.Raw)).Emit()
		return false
	}
	arg.Name.Canonical = schema.Args[0].Name
	return true
}

func (c *compiler) typeForValueKind(kind constant.Kind) types.TypeID {
	switch kind {
	case constant.Invalid:
		return types.NoTypeID
	case constant.Bool:
		return c.space.Primitive(types.SubtypeBool)
	case constant.String:
		return c.space.Intern(types.Type{Kind: types.KindString, Bound: types.BoundMax})
	case constant.Int8:
		return c.space.Primitive(types.SubtypeInt8)
	case constant.Int16:
		return c.space.Primitive(types.SubtypeInt16)
	case constant.Int32:
		return c.space.Primitive(types.SubtypeInt32)
	case constant.Int64:
		return c.space.Primitive(types.SubtypeInt64)
	case constant.Uint8:
		return c.space.Primitive(types.SubtypeUint8)
	case constant.Uint16:
		return c.space.Primitive(types.SubtypeUint16)
	case constant.Uint32:
		return c.space.Primitive(types.SubtypeUint32)
	case constant.Uint64:
		return c.space.Primitive(types.SubtypeUint64)
	case constant.Float32:
		return c.space.Primitive(types.SubtypeFloat32)
	case constant.Float64:
		return c.space.Primitive(types.SubtypeFloat64)
	default:
		panic(fmt.Errorf("sema: attribute argument kind %v has no type", kind))
	}
}

// stringAttrArg reads the resolved string value of an attribute argument,
// e.g. the selector override on a method.
func stringAttrArg(lib *ast.Library, attrs ast.AttrListID, attr, arg string) (string, bool) {
	list := lib.Decls.AttrListAt(attrs)
	if list == nil {
		return "", false
	}
	a, ok := list.FindAttr(attr)
	if !ok {
		return "", false
	}
	ar, ok := a.FindArg(arg)
	if !ok {
		return "", false
	}
	con := lib.Decls.ConstantAt(ar.Value)
	if con == nil || !con.ResolvedOK() {
		return "", false
	}
	s, ok := con.Value().AsString()
	return s, ok
}
