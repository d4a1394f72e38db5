package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

type protocolKey struct {
	lib *ast.Library
	id  ast.DeclID
}

// closureMethod is one method visible on a protocol, own or inherited
// through compose.
type closureMethod struct {
	name    string // canonical
	raw     string
	ordinal uint64
	span    source.Span
}

func (c *compiler) compileProtocol(id ast.DeclID, decl *ast.Decl) {
	pd, ok := c.lib.Decls.ProtocolAt(id)
	if !ok {
		panic(fmt.Errorf("sema: protocol declaration without payload"))
	}

	// Compose references must name protocols and may appear once each.
	// Composing through a chain twice (a diamond) is fine; the closure walk
	// below deduplicates it.
	composed := NewScope[protocolKey, source.Span]()
	for i := range pd.Composed {
		cr := &pd.Composed[i]
		target := cr.Ref.Resolve()
		if target == nil {
			// Reported when the graph was linked.
			continue
		}
		if target.Kind != ast.DeclProtocol {
			diag.ReportError(c.reporter, diag.SemaComposeNotProtocol, cr.Span,
				fmt.Sprintf("cannot compose '%s': it is a %s, not a protocol",
					target.Name.Raw, target.Kind)).Emit()
			continue
		}
		key := protocolKey{lib: cr.Ref.Target, id: cr.Ref.Decl}
		if prev, ok := composed.Insert(key, cr.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateCompose, cr.Span,
				fmt.Sprintf("'%s' is already composed", target.Name.Raw)).
				WithNote(prev, "first composed here").Emit()
			continue
		}
		c.EnsureCompiled(cr.Ref)
	}

	// Seed the scopes with the inherited closure, then add own methods.
	nameScope := NewScope[string, source.Span]()
	ordScope := NewScope[uint64, source.Span]()
	visited := map[protocolKey]bool{{lib: c.lib, id: id}: true}
	var inherited []closureMethod
	c.collectComposed(c.lib, pd, visited, &inherited)
	for _, m := range inherited {
		if prev, ok := nameScope.Insert(m.name, m.span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateMethodName, decl.Name.Span,
				fmt.Sprintf("protocol '%s' composes two methods named '%s'", decl.Name.Raw, m.raw)).
				WithNote(prev, "first brought in here").
				WithNote(m.span, "second brought in here").Emit()
		}
		if m.ordinal != 0 {
			ordScope.Insert(m.ordinal, m.span)
		}
	}

	for i := range pd.Methods {
		m := &pd.Methods[i]
		c.compileAttrList(m.Attrs)

		selector := m.Name.Raw
		if s, ok := stringAttrArg(c.lib, m.Attrs, "selector", "value"); ok {
			selector = s
		}
		m.Selector = selector
		m.Ordinal = c.hasher.MethodOrdinal(c.lib.Name, decl.Name.Raw, selector)
		if m.Ordinal == 0 {
			panic(fmt.Errorf("sema: hasher produced a zero ordinal for '%s.%s'", decl.Name.Raw, m.Name.Raw))
		}

		if prev, ok := nameScope.Insert(m.Name.Canonical, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateMethodName, m.Name.Span,
				fmt.Sprintf("duplicate method name '%s'", m.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
		}
		if prev, ok := ordScope.Insert(m.Ordinal, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaDuplicateMethodOrdinal, m.Name.Span,
				fmt.Sprintf("method '%s' hashes to an ordinal already in use; change its selector",
					m.Name.Raw)).
				WithNote(prev, "colliding method here").Emit()
		}

		if m.HasRequest && m.Request.IsValid() {
			c.checkPayload(m.Request)
		}
		if m.HasResponse && m.Response.IsValid() {
			c.checkPayload(m.Response)
		}
	}
}

// collectComposed appends every method reachable through compose, protocols
// already visited skipped so diamonds contribute once.
func (c *compiler) collectComposed(lib *ast.Library, pd *ast.ProtocolDecl, visited map[protocolKey]bool, out *[]closureMethod) {
	for i := range pd.Composed {
		ref := pd.Composed[i].Ref
		target := ref.Resolve()
		if target == nil || target.Kind != ast.DeclProtocol {
			continue
		}
		key := protocolKey{lib: ref.Target, id: ref.Decl}
		if visited[key] {
			continue
		}
		visited[key] = true
		sub, _ := ref.Target.Decls.ProtocolAt(ref.Decl)
		c.collectComposed(ref.Target, sub, visited, out)
		for j := range sub.Methods {
			m := &sub.Methods[j]
			*out = append(*out, closureMethod{
				name:    m.Name.Canonical,
				raw:     m.Name.Raw,
				ordinal: m.Ordinal,
				span:    m.Name.Span,
			})
		}
	}
}

// checkPayload enforces the shape of a method payload: a non-optional
// struct, table or union; struct payloads must not be empty and their
// members must not carry defaults. Error-syntax success payloads are built
// as empty structs by the frontend and marked so they pass.
func (c *compiler) checkPayload(ctor ast.TypeCtorID) {
	tid, ok := c.resolveType(ctor)
	if !ok {
		return
	}
	span := c.lib.Decls.TypeCtorAt(ctor).Span
	t := c.space.Get(tid)
	if t.Kind != types.KindIdentifier {
		diag.ReportError(c.reporter, diag.SemaInvalidPayloadType, span,
			fmt.Sprintf("method payloads must be structs, tables or unions, not %s",
				c.space.Format(tid))).Emit()
		return
	}
	target := t.Lib.Decls.Get(t.Decl)
	switch target.Kind {
	case ast.DeclStruct, ast.DeclTable, ast.DeclUnion:
	default:
		diag.ReportError(c.reporter, diag.SemaInvalidPayloadType, span,
			fmt.Sprintf("method payloads must be structs, tables or unions, not %s",
				c.space.Format(tid))).Emit()
		return
	}
	if t.Nullable {
		diag.ReportError(c.reporter, diag.SemaInvalidPayloadType, span,
			"method payloads cannot be optional").Emit()
		return
	}
	if target.Kind != ast.DeclStruct {
		return
	}
	sd, _ := t.Lib.Decls.StructAt(t.Decl)
	if len(sd.Members) == 0 && !sd.EmptySuccess {
		diag.ReportError(c.reporter, diag.SemaEmptyPayload, span,
			"empty struct payloads are not allowed; omit the payload instead").Emit()
	}
	for i := range sd.Members {
		m := &sd.Members[i]
		if m.Default.IsValid() {
			diag.ReportError(c.reporter, diag.SemaPayloadMemberDefault, m.Span,
				fmt.Sprintf("payload member '%s' cannot have a default value", m.Name.Raw)).Emit()
		}
	}
}
