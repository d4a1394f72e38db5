package types

import (
	"fmt"

	"weft/internal/ast"
)

type ctorKey struct {
	lib *ast.Library
	id  ast.TypeCtorID
}

// Space interns type descriptors and memoizes type-constructor resolution.
// A single Space spans a whole compilation, so types from dependency
// libraries compare equal by TypeID.
type Space struct {
	all   []Type
	index map[Type]TypeID
	memo  map[ctorKey]TypeID

	prims   [SubtypeFloat64 + 1]TypeID
	untyped TypeID
}

// NewSpace returns a Space with the primitive types pre-interned.
func NewSpace() *Space {
	s := &Space{
		all:   make([]Type, 1),
		index: make(map[Type]TypeID),
		memo:  make(map[ctorKey]TypeID),
	}
	for sub := SubtypeBool; sub <= SubtypeFloat64; sub++ {
		s.prims[sub] = s.Intern(Type{Kind: KindPrimitive, Subtype: sub})
	}
	s.untyped = s.Intern(Type{Kind: KindUntypedNumeric})
	return s
}

// Intern returns the id for t, allocating one on first sight.
func (s *Space) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		panic(fmt.Errorf("types: intern of invalid type"))
	}
	if id, ok := s.index[t]; ok {
		return id
	}
	s.all = append(s.all, t)
	id := TypeID(len(s.all) - 1)
	s.index[t] = id
	return id
}

// Get returns the descriptor for id, or nil for NoTypeID.
func (s *Space) Get(id TypeID) *Type {
	if id == NoTypeID || int(id) >= len(s.all) {
		return nil
	}
	return &s.all[id]
}

// Primitive returns the pre-interned id for a scalar subtype.
func (s *Space) Primitive(sub PrimitiveSubtype) TypeID {
	if sub == SubtypeInvalid || sub > SubtypeFloat64 {
		panic(fmt.Errorf("types: no primitive type for %v", sub))
	}
	return s.prims[sub]
}

// UntypedNumeric returns the id of the type given to numeric literals
// before a context assigns them a concrete one.
func (s *Space) UntypedNumeric() TypeID { return s.untyped }

// Lookup returns the memoized resolution for a constructor, if any.
func (s *Space) Lookup(lib *ast.Library, id ast.TypeCtorID) (TypeID, bool) {
	tid, ok := s.memo[ctorKey{lib, id}]
	return tid, ok
}

func (s *Space) remember(lib *ast.Library, id ast.TypeCtorID, tid TypeID) {
	key := ctorKey{lib, id}
	if prev, ok := s.memo[key]; ok && prev != tid {
		panic(fmt.Errorf("types: constructor %d resolved twice (%d then %d)", id, prev, tid))
	}
	s.memo[key] = tid
}

// Resourceness reports whether values of the type may carry handles.
// Failed types count as value types so one error does not cascade.
func (s *Space) Resourceness(id TypeID) ast.Resourceness {
	t := s.Get(id)
	if t == nil {
		return ast.ResourcenessValue
	}
	switch t.Kind {
	case KindHandle, KindTransportSide:
		return ast.ResourcenessResource
	case KindArray, KindVector:
		return s.Resourceness(t.Elem)
	case KindIdentifier:
		return s.declResourceness(t.Lib, t.Decl)
	default:
		return ast.ResourcenessValue
	}
}

func (s *Space) declResourceness(lib *ast.Library, id ast.DeclID) ast.Resourceness {
	decl := lib.Decls.Get(id)
	if decl == nil {
		return ast.ResourcenessValue
	}
	switch decl.Kind {
	case ast.DeclStruct:
		if sd, ok := lib.Decls.StructAt(id); ok && sd.Resourceness == ast.ResourcenessResource {
			return ast.ResourcenessResource
		}
	case ast.DeclTable:
		if td, ok := lib.Decls.TableAt(id); ok && td.Resourceness == ast.ResourcenessResource {
			return ast.ResourcenessResource
		}
	case ast.DeclUnion:
		if ud, ok := lib.Decls.UnionAt(id); ok && ud.Resourceness == ast.ResourcenessResource {
			return ast.ResourcenessResource
		}
	case ast.DeclNewType:
		if nd, ok := lib.Decls.NewTypeAt(id); ok {
			if tid, ok := s.Lookup(lib, nd.Target); ok {
				return s.Resourceness(tid)
			}
		}
	}
	return ast.ResourcenessValue
}

// Format renders a type for diagnostics, declaration names unqualified.
func (s *Space) Format(id TypeID) string {
	return s.format(id, false)
}

// FormatQualified renders a type with library-qualified declaration
// names ("acme.geom/Point"), the form artifacts record.
func (s *Space) FormatQualified(id TypeID) string {
	return s.format(id, true)
}

func (s *Space) format(id TypeID, qualified bool) string {
	t := s.Get(id)
	if t == nil {
		return "<error>"
	}
	opt := ""
	if t.Nullable {
		opt = "?"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Subtype.String()
	case KindString:
		if t.Bound != BoundMax {
			return fmt.Sprintf("string:%d%s", t.Bound, opt)
		}
		return "string" + opt
	case KindArray:
		return fmt.Sprintf("array<%s,%d>", s.format(t.Elem, qualified), t.Count)
	case KindVector:
		if t.Bound != BoundMax {
			return fmt.Sprintf("vector<%s>:%d%s", s.format(t.Elem, qualified), t.Bound, opt)
		}
		return fmt.Sprintf("vector<%s>%s", s.format(t.Elem, qualified), opt)
	case KindIdentifier, KindHandle:
		return s.declName(t.Lib, t.Decl, qualified) + opt
	case KindTransportSide:
		return fmt.Sprintf("%s_end:%s%s", t.Side, s.declName(t.Lib, t.Decl, qualified), opt)
	case KindUntypedNumeric:
		return "untyped numeric"
	default:
		return t.Kind.String()
	}
}

func (s *Space) declName(lib *ast.Library, id ast.DeclID, qualified bool) string {
	decl := lib.Decls.Get(id)
	if decl == nil {
		return "<unknown>"
	}
	if qualified {
		return lib.Name + "/" + decl.Name.Raw
	}
	return decl.Name.Raw
}
