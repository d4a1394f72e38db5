package types

import (
	"fmt"

	"fortio.org/safecast"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
)

// Env supplies the compilation context the resolver needs: forcing referenced
// declarations through compilation, resolving constraint constants against an
// expected type, and a sink for diagnostics.
type Env interface {
	EnsureCompiled(ref ast.Reference)
	ResolveConstant(lib *ast.Library, id ast.ConstantID, expected TypeID) bool
	Reporter() diag.Reporter
}

// ResolveTypeCtor resolves a type constructor to an interned type. The result
// is memoized per (library, constructor); replays are free and report nothing.
// NoTypeID means the constructor was rejected and a diagnostic was emitted on
// the first attempt.
func (s *Space) ResolveTypeCtor(lib *ast.Library, id ast.TypeCtorID, env Env) (TypeID, bool) {
	if !id.IsValid() {
		panic(fmt.Errorf("types: resolve of missing type constructor"))
	}
	if tid, ok := s.Lookup(lib, id); ok {
		return tid, tid.IsValid()
	}
	r := &resolver{space: s, lib: lib, env: env}
	tid := r.resolve(lib.Decls.TypeCtorAt(id))
	s.remember(lib, id, tid)
	return tid, tid.IsValid()
}

type resolver struct {
	space *Space
	lib   *ast.Library
	env   Env
}

func (r *resolver) resolve(ctor *ast.TypeCtor) TypeID {
	// Unresolved layouts were already reported when the graph was linked.
	if !ctor.Layout.IsValid() {
		return NoTypeID
	}
	target := ctor.Layout.Resolve()
	switch target.Kind {
	case ast.DeclBuiltin:
		b, ok := ctor.Layout.Target.Decls.BuiltinAt(ctor.Layout.Decl)
		if !ok {
			panic(fmt.Errorf("types: builtin declaration without payload"))
		}
		return r.builtin(ctor, target, b.Which)
	case ast.DeclEnum, ast.DeclBits, ast.DeclStruct, ast.DeclTable, ast.DeclUnion, ast.DeclNewType:
		return r.identifier(ctor, target)
	case ast.DeclAlias:
		return r.alias(ctor, target)
	case ast.DeclResource:
		return r.handle(ctor, target)
	case ast.DeclProtocol:
		diag.ReportError(r.env.Reporter(), diag.SemaNotAType, ctor.Layout.Span,
			fmt.Sprintf("'%s' is a protocol, not a type; use client_end or server_end", target.Name.Raw)).Emit()
		return NoTypeID
	case ast.DeclConst:
		diag.ReportError(r.env.Reporter(), diag.SemaNotAType, ctor.Layout.Span,
			fmt.Sprintf("'%s' is a constant, not a type", target.Name.Raw)).Emit()
		return NoTypeID
	case ast.DeclService:
		diag.ReportError(r.env.Reporter(), diag.SemaNotAType, ctor.Layout.Span,
			fmt.Sprintf("'%s' is a service, not a type", target.Name.Raw)).Emit()
		return NoTypeID
	default:
		panic(fmt.Errorf("types: unexpected layout declaration kind %v", target.Kind))
	}
}

func (r *resolver) builtin(ctor *ast.TypeCtor, target *ast.Decl, which ast.BuiltinKind) TypeID {
	name := target.Name.Raw
	if which.IsPrimitive() {
		sub, ok := SubtypeFromBuiltin(which)
		if !ok {
			panic(fmt.Errorf("types: primitive builtin %v has no subtype", which))
		}
		r.noParams(ctor, name)
		r.noConstraints(ctor, name)
		return r.space.Primitive(sub)
	}
	switch which {
	case ast.BuiltinString:
		r.noParams(ctor, name)
		bound, nullable, ok := r.sized(ctor)
		if !ok {
			return NoTypeID
		}
		return r.space.Intern(Type{Kind: KindString, Bound: bound, Nullable: nullable})
	case ast.BuiltinArray:
		if len(ctor.Params) != 2 {
			diag.ReportError(r.env.Reporter(), diag.SemaWrongLayoutParams, ctor.Span,
				fmt.Sprintf("array expects 2 layout parameters, got %d", len(ctor.Params))).Emit()
			return NoTypeID
		}
		elem, eok := r.typeParam(ctor.Params[0])
		count, cok := r.countParam(ctor.Params[1])
		r.noConstraints(ctor, name)
		if !eok || !cok {
			return NoTypeID
		}
		return r.space.Intern(Type{Kind: KindArray, Elem: elem, Count: count})
	case ast.BuiltinVector:
		if len(ctor.Params) != 1 {
			diag.ReportError(r.env.Reporter(), diag.SemaWrongLayoutParams, ctor.Span,
				fmt.Sprintf("vector expects 1 layout parameter, got %d", len(ctor.Params))).Emit()
			return NoTypeID
		}
		elem, eok := r.typeParam(ctor.Params[0])
		bound, nullable, cok := r.sized(ctor)
		if !eok || !cok {
			return NoTypeID
		}
		return r.space.Intern(Type{Kind: KindVector, Elem: elem, Bound: bound, Nullable: nullable})
	case ast.BuiltinClientEnd, ast.BuiltinServerEnd:
		side := SideClient
		if which == ast.BuiltinServerEnd {
			side = SideServer
		}
		r.noParams(ctor, name)
		proto, nullable, ok := r.protocolEnd(ctor, name)
		if !ok {
			return NoTypeID
		}
		return r.space.Intern(Type{
			Kind:     KindTransportSide,
			Side:     side,
			Lib:      proto.Target,
			Decl:     proto.Decl,
			Nullable: nullable,
		})
	case ast.BuiltinOptional:
		diag.ReportError(r.env.Reporter(), diag.SemaNotAType, ctor.Layout.Span,
			"'optional' is a constraint, not a type").Emit()
		return NoTypeID
	case ast.BuiltinMax:
		diag.ReportError(r.env.Reporter(), diag.SemaNotAType, ctor.Layout.Span,
			"'MAX' is a size bound, not a type").Emit()
		return NoTypeID
	default:
		panic(fmt.Errorf("types: unexpected builtin %v as layout", which))
	}
}

func (r *resolver) identifier(ctor *ast.TypeCtor, target *ast.Decl) TypeID {
	r.env.EnsureCompiled(ctor.Layout)
	r.noParams(ctor, target.Name.Raw)
	nullable := r.optionalOnly(ctor, target.Name.Raw)
	return r.space.Intern(Type{
		Kind:     KindIdentifier,
		Lib:      ctor.Layout.Target,
		Decl:     ctor.Layout.Decl,
		Nullable: nullable,
	})
}

// alias splices in the aliased type. The only constraint an alias use may add
// is optional, and only when the underlying type admits it.
func (r *resolver) alias(ctor *ast.TypeCtor, target *ast.Decl) TypeID {
	r.env.EnsureCompiled(ctor.Layout)
	aliasLib := ctor.Layout.Target
	ad, ok := aliasLib.Decls.AliasAt(ctor.Layout.Decl)
	if !ok {
		panic(fmt.Errorf("types: alias declaration without payload"))
	}
	r.noParams(ctor, target.Name.Raw)
	nullable := r.optionalOnly(ctor, target.Name.Raw)
	under, resolved := r.space.Lookup(aliasLib, ad.Target)
	if !resolved || !under.IsValid() {
		// The alias itself failed to compile; that is already reported.
		return NoTypeID
	}
	if !nullable {
		return under
	}
	return r.makeNullable(under, ctor.Span)
}

// makeNullable returns the optional variant of id, or NoTypeID when the
// underlying type has no such variant.
func (r *resolver) makeNullable(id TypeID, span source.Span) TypeID {
	t := *r.space.Get(id)
	switch t.Kind {
	case KindString, KindVector, KindIdentifier, KindHandle, KindTransportSide:
		t.Nullable = true
		return r.space.Intern(t)
	default:
		diag.ReportError(r.env.Reporter(), diag.SemaInvalidConstraint, span,
			fmt.Sprintf("type '%s' cannot be optional", r.space.Format(id))).Emit()
		return NoTypeID
	}
}

// handle resolves a use of a resource declaration. Constraints may pick a
// subtype member of the resource's subtype enum and may add optional.
func (r *resolver) handle(ctor *ast.TypeCtor, target *ast.Decl) TypeID {
	r.env.EnsureCompiled(ctor.Layout)
	resLib := ctor.Layout.Target
	rd, ok := resLib.Decls.ResourceAt(ctor.Layout.Decl)
	if !ok {
		panic(fmt.Errorf("types: resource declaration without payload"))
	}
	r.noParams(ctor, target.Name.Raw)

	subtypeEnum := r.subtypeEnumOf(resLib, rd)
	var (
		subtype    uint32
		hasSubtype bool
		nullable   bool
	)
	for _, cid := range ctor.Constraints {
		c := r.lib.Decls.ConstantAt(cid)
		switch {
		case r.isBuiltinRef(c, ast.BuiltinOptional):
			if nullable {
				r.duplicateConstraint(c.Span, "optional")
				continue
			}
			nullable = true
		case c.Kind == ast.ConstantIdentifier:
			if hasSubtype {
				r.duplicateConstraint(c.Span, "subtype")
				continue
			}
			hasSubtype = true
			if !subtypeEnum.IsValid() {
				// The resource failed to compile; that is already reported.
				continue
			}
			if !r.env.ResolveConstant(r.lib, cid, subtypeEnum) {
				continue
			}
			raw, ok := c.Value().AsUint64()
			if !ok {
				continue
			}
			if v, err := safecast.Conv[uint32](raw); err == nil {
				subtype = v
			}
		default:
			diag.ReportError(r.env.Reporter(), diag.SemaInvalidConstraint, c.Span,
				fmt.Sprintf("invalid constraint on '%s'", target.Name.Raw)).Emit()
		}
	}
	return r.space.Intern(Type{
		Kind:          KindHandle,
		Lib:           resLib,
		Decl:          ctor.Layout.Decl,
		HandleSubtype: subtype,
		Nullable:      nullable,
	})
}

// subtypeEnumOf returns the identifier type of the resource's subtype enum,
// used as the expected type when resolving a subtype constraint. NoTypeID
// when the resource declaration did not compile cleanly.
func (r *resolver) subtypeEnumOf(resLib *ast.Library, rd *ast.ResourceDecl) TypeID {
	prop, ok := rd.FindProperty("subtype")
	if !ok {
		return NoTypeID
	}
	tid, ok := r.space.Lookup(resLib, prop.Type)
	if !ok || !tid.IsValid() {
		return NoTypeID
	}
	t := r.space.Get(tid)
	if t.Kind != KindIdentifier {
		return NoTypeID
	}
	if decl := t.Lib.Decls.Get(t.Decl); decl == nil || decl.Kind != ast.DeclEnum {
		return NoTypeID
	}
	return tid
}

// protocolEnd extracts the protocol constraint of a client_end or server_end.
func (r *resolver) protocolEnd(ctor *ast.TypeCtor, name string) (proto ast.Reference, nullable, ok bool) {
	for _, cid := range ctor.Constraints {
		c := r.lib.Decls.ConstantAt(cid)
		switch {
		case r.isBuiltinRef(c, ast.BuiltinOptional):
			if nullable {
				r.duplicateConstraint(c.Span, "optional")
				continue
			}
			nullable = true
		case r.refDeclKind(c) == ast.DeclProtocol && !c.Ref.HasMember():
			if proto.IsValid() {
				r.duplicateConstraint(c.Span, "protocol")
				continue
			}
			proto = c.Ref
			r.env.EnsureCompiled(c.Ref)
		default:
			diag.ReportError(r.env.Reporter(), diag.SemaInvalidConstraint, c.Span,
				fmt.Sprintf("invalid constraint on '%s'", name)).Emit()
		}
	}
	if !proto.IsValid() {
		diag.ReportError(r.env.Reporter(), diag.SemaExpectedProtocol, ctor.Span,
			fmt.Sprintf("'%s' requires a protocol constraint", name)).Emit()
		return proto, nullable, false
	}
	return proto, nullable, true
}

// sized parses the constraints of string and vector: an optional size bound
// plus optional. Failing to resolve a bound fails the whole constructor.
func (r *resolver) sized(ctor *ast.TypeCtor) (bound uint32, nullable, ok bool) {
	bound = BoundMax
	ok = true
	hasBound := false
	for _, cid := range ctor.Constraints {
		c := r.lib.Decls.ConstantAt(cid)
		switch {
		case r.isBuiltinRef(c, ast.BuiltinOptional):
			if nullable {
				r.duplicateConstraint(c.Span, "optional")
				continue
			}
			nullable = true
		case r.isBuiltinRef(c, ast.BuiltinMax):
			if hasBound {
				r.duplicateConstraint(c.Span, "size bound")
				continue
			}
			hasBound = true
		default:
			if hasBound {
				r.duplicateConstraint(c.Span, "size bound")
				continue
			}
			hasBound = true
			b, bok := r.bound(cid, true)
			if !bok {
				ok = false
				continue
			}
			bound = b
		}
	}
	return bound, nullable, ok
}

// bound resolves a size bound to a positive uint32. allowMax permits the MAX
// sentinel; array counts must be concrete.
func (r *resolver) bound(cid ast.ConstantID, allowMax bool) (uint32, bool) {
	c := r.lib.Decls.ConstantAt(cid)
	if r.isBuiltinRef(c, ast.BuiltinMax) {
		if !allowMax {
			diag.ReportError(r.env.Reporter(), diag.SemaInvalidBound, c.Span,
				"array bound must be a concrete value").Emit()
			return 0, false
		}
		return BoundMax, true
	}
	if !r.env.ResolveConstant(r.lib, cid, r.space.Primitive(SubtypeUint32)) {
		return 0, false
	}
	raw, rok := c.Value().AsUint64()
	if !rok {
		panic(fmt.Errorf("types: bound resolved to a non-integer at %v", c.Span))
	}
	v, err := safecast.Conv[uint32](raw)
	if err != nil {
		panic(fmt.Errorf("types: uint32 bound out of range: %w", err))
	}
	if v == 0 {
		diag.ReportError(r.env.Reporter(), diag.SemaInvalidBound, c.Span,
			"size bound must be greater than zero").Emit()
		return 0, false
	}
	return v, true
}

func (r *resolver) typeParam(p ast.LayoutParam) (TypeID, bool) {
	if !p.IsType() {
		diag.ReportError(r.env.Reporter(), diag.SemaExpectedTypeParam, p.Span,
			"layout parameter must be a type").Emit()
		return NoTypeID, false
	}
	return r.space.ResolveTypeCtor(r.lib, p.Type, r.env)
}

func (r *resolver) countParam(p ast.LayoutParam) (uint32, bool) {
	if p.IsType() {
		diag.ReportError(r.env.Reporter(), diag.SemaExpectedValueParam, p.Span,
			"layout parameter must be a value").Emit()
		return 0, false
	}
	return r.bound(p.Value, false)
}

func (r *resolver) noParams(ctor *ast.TypeCtor, name string) {
	if len(ctor.Params) == 0 {
		return
	}
	diag.ReportError(r.env.Reporter(), diag.SemaWrongLayoutParams, ctor.Span,
		fmt.Sprintf("'%s' takes no layout parameters", name)).Emit()
}

func (r *resolver) noConstraints(ctor *ast.TypeCtor, name string) {
	for _, cid := range ctor.Constraints {
		c := r.lib.Decls.ConstantAt(cid)
		diag.ReportError(r.env.Reporter(), diag.SemaInvalidConstraint, c.Span,
			fmt.Sprintf("'%s' cannot carry constraints", name)).Emit()
	}
}

// optionalOnly admits optional as the single legal constraint.
func (r *resolver) optionalOnly(ctor *ast.TypeCtor, name string) (nullable bool) {
	for _, cid := range ctor.Constraints {
		c := r.lib.Decls.ConstantAt(cid)
		if !r.isBuiltinRef(c, ast.BuiltinOptional) {
			diag.ReportError(r.env.Reporter(), diag.SemaInvalidConstraint, c.Span,
				fmt.Sprintf("only 'optional' may constrain '%s'", name)).Emit()
			continue
		}
		if nullable {
			r.duplicateConstraint(c.Span, "optional")
			continue
		}
		nullable = true
	}
	return nullable
}

func (r *resolver) duplicateConstraint(span source.Span, what string) {
	diag.ReportError(r.env.Reporter(), diag.SemaDuplicateConstraint, span,
		fmt.Sprintf("duplicate '%s' constraint", what)).Emit()
}

// isBuiltinRef reports whether c is a bare reference to the given builtin.
func (r *resolver) isBuiltinRef(c *ast.Constant, which ast.BuiltinKind) bool {
	if c.Kind != ast.ConstantIdentifier || c.Ref.HasMember() {
		return false
	}
	target := c.Ref.Resolve()
	if target == nil || target.Kind != ast.DeclBuiltin {
		return false
	}
	b, ok := c.Ref.Target.Decls.BuiltinAt(c.Ref.Decl)
	return ok && b.Which == which
}

func (r *resolver) refDeclKind(c *ast.Constant) ast.DeclKind {
	if c.Kind != ast.ConstantIdentifier {
		return ast.DeclInvalid
	}
	target := c.Ref.Resolve()
	if target == nil {
		return ast.DeclInvalid
	}
	return target.Kind
}
