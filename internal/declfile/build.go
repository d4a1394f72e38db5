package declfile

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
)

// pendingRef is a textual reference waiting for the link pass. assign
// writes the resolved reference back into the node that owns it.
type pendingRef struct {
	text   string
	span   source.Span
	assign func(ast.Reference)
}

// builder runs the first pass: document nodes become ast nodes, top-level
// names get claimed, and every textual reference is queued for linking.
type builder struct {
	strings  *source.Interner
	reporter diag.Reporter
	file     source.FileID
	lib      *ast.Library
	pending  []pendingRef
}

func (b *builder) document(doc *document) {
	// Library attributes may live in any one of the library's graph files.
	if attrs := b.attrList(doc.Attrs); attrs != ast.NoAttrListID {
		b.lib.Attrs = attrs
	}
	for i := range doc.Decls {
		b.decl(&doc.Decls[i])
	}
}

func (b *builder) decl(n *declNode) {
	span := n.At.span(b.file)
	if n.Name == "" {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			fmt.Sprintf("%s declaration has no name", kindLabel(n.Kind))).Emit()
		return
	}
	name := b.name(n.Name, n.At)
	attrs := b.attrList(n.Attrs)

	var id ast.DeclID
	switch n.Kind {
	case "alias":
		id = b.alias(n, name, attrs, span)
	case "bits":
		id = b.bits(n, name, attrs, span)
	case "const":
		id = b.constDecl(n, name, attrs, span)
	case "enum":
		id = b.enum(n, name, attrs, span)
	case "new_type":
		id = b.newType(n, name, attrs, span)
	case "protocol":
		id = b.protocol(n, name, attrs, span)
	case "resource":
		id = b.resource(n, name, attrs, span)
	case "service":
		id = b.service(n, name, attrs, span)
	case "struct":
		id = b.structDecl(n, name, attrs, span)
	case "table":
		id = b.table(n, name, attrs, span)
	case "union":
		id = b.union(n, name, attrs, span)
	default:
		diag.ReportError(b.reporter, diag.LoadBadKind, span,
			fmt.Sprintf("unknown declaration kind '%s'", n.Kind)).Emit()
		return
	}
	if !id.IsValid() {
		return
	}
	if prev, ok := b.lib.Decls.Register(id); !ok {
		diag.ReportError(b.reporter, diag.LinkDuplicateDecl, name.Span,
			fmt.Sprintf("the name '%s' is already taken", n.Name)).
			WithNote(b.lib.Decls.Get(prev).Name.Span, "previously declared here").Emit()
	}
}

func (b *builder) alias(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	target, ok := b.requiredType(n.Target, "alias", "target", span)
	if !ok {
		return ast.NoDeclID
	}
	return b.lib.Decls.NewAlias(name, attrs, span, ast.AliasDecl{Target: target})
}

func (b *builder) newType(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	target, ok := b.requiredType(n.Target, "new_type", "target", span)
	if !ok {
		return ast.NoDeclID
	}
	return b.lib.Decls.NewNewType(name, attrs, span, ast.NewTypeDecl{Target: target})
}

func (b *builder) constDecl(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	typ, tok := b.requiredType(n.Type, "const", "type", span)
	if !tok {
		return ast.NoDeclID
	}
	if n.Value == nil {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			fmt.Sprintf("const '%s' has no value", name.Raw)).Emit()
		return ast.NoDeclID
	}
	value, vok := b.constant(n.Value)
	if !vok {
		return ast.NoDeclID
	}
	return b.lib.Decls.NewConst(name, attrs, span, ast.ConstDecl{Type: typ, Value: value})
}

func (b *builder) bits(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	return b.lib.Decls.NewBits(name, attrs, span, ast.BitsDecl{
		Subtype:    b.subtype(n, span),
		Members:    b.valueMembers(n.Members, "bits"),
		Strictness: strictness(n.Strict),
	})
}

func (b *builder) enum(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	return b.lib.Decls.NewEnum(name, attrs, span, ast.EnumDecl{
		Subtype:    b.subtype(n, span),
		Members:    b.valueMembers(n.Members, "enum"),
		Strictness: strictness(n.Strict),
	})
}

// subtype returns the declared underlying type of a bits or enum, or a
// synthesized uint32 when the document omits it. A broken declared subtype
// becomes an unlinked constructor so member names still get checked.
func (b *builder) subtype(n *declNode, span source.Span) ast.TypeCtorID {
	if n.Subtype == nil {
		id := b.lib.Decls.NewTypeCtor(ast.TypeCtor{Span: span})
		b.linkLater("uint32", span, b.ctorSlot(id))
		return id
	}
	if id, ok := b.typeCtor(n.Subtype); ok {
		return id
	}
	return b.lib.Decls.NewTypeCtor(ast.TypeCtor{Span: span})
}

func (b *builder) valueMembers(members []memberNode, what string) []ast.ValueMember {
	out := make([]ast.ValueMember, 0, len(members))
	for i := range members {
		m := &members[i]
		span := m.At.span(b.file)
		if m.Name == "" {
			diag.ReportError(b.reporter, diag.LoadBadField, span,
				fmt.Sprintf("%s member has no name", what)).Emit()
			continue
		}
		if m.Value == nil {
			diag.ReportError(b.reporter, diag.LoadBadField, span,
				fmt.Sprintf("%s member '%s' has no value", what, m.Name)).Emit()
			continue
		}
		value, ok := b.constant(m.Value)
		if !ok {
			continue
		}
		out = append(out, ast.ValueMember{
			Name:  b.name(m.Name, m.At),
			Value: value,
			Attrs: b.attrList(m.Attrs),
			Span:  span,
		})
	}
	return out
}

func (b *builder) structDecl(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	members := make([]ast.StructMember, 0, len(n.Members))
	for i := range n.Members {
		m := &n.Members[i]
		mspan := m.At.span(b.file)
		typ, ok := b.memberType(m, "struct")
		if !ok {
			continue
		}
		def := ast.NoConstantID
		if m.Default != nil {
			if id, ok := b.constant(m.Default); ok {
				def = id
			}
		}
		members = append(members, ast.StructMember{
			Name:    b.name(m.Name, m.At),
			Type:    typ,
			Default: def,
			Attrs:   b.attrList(m.Attrs),
			Span:    mspan,
		})
	}
	return b.lib.Decls.NewStruct(name, attrs, span, ast.StructDecl{
		Members:      members,
		Resourceness: resourceness(n.Resource),
	})
}

func (b *builder) table(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	return b.lib.Decls.NewTable(name, attrs, span, ast.TableDecl{
		Members:      b.ordinalMembers(n.Members, "table"),
		Resourceness: resourceness(n.Resource),
	})
}

func (b *builder) union(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	return b.lib.Decls.NewUnion(name, attrs, span, ast.UnionDecl{
		Members:      b.ordinalMembers(n.Members, "union"),
		Strictness:   strictness(n.Strict),
		Resourceness: resourceness(n.Resource),
	})
}

func (b *builder) ordinalMembers(members []memberNode, what string) []ast.OrdinalMember {
	out := make([]ast.OrdinalMember, 0, len(members))
	for i := range members {
		m := &members[i]
		span := m.At.span(b.file)
		om := ast.OrdinalMember{
			Ordinal: ast.Ordinal{Value: m.Ordinal, Span: span},
			Attrs:   b.attrList(m.Attrs),
			Span:    span,
		}
		if !m.Reserved {
			typ, ok := b.memberType(m, what)
			if !ok {
				continue
			}
			om.Used = &ast.UsedMember{
				Name: b.name(m.Name, m.At),
				Type: typ,
			}
		}
		out = append(out, om)
	}
	return out
}

func (b *builder) service(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	members := make([]ast.ServiceMember, 0, len(n.Members))
	for i := range n.Members {
		m := &n.Members[i]
		typ, ok := b.memberType(m, "service")
		if !ok {
			continue
		}
		members = append(members, ast.ServiceMember{
			Name:  b.name(m.Name, m.At),
			Type:  typ,
			Attrs: b.attrList(m.Attrs),
			Span:  m.At.span(b.file),
		})
	}
	return b.lib.Decls.NewService(name, attrs, span, ast.ServiceDecl{Members: members})
}

func (b *builder) resource(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	subtype := ast.NoTypeCtorID
	if n.Subtype != nil {
		if id, ok := b.typeCtor(n.Subtype); ok {
			subtype = id
		}
	}
	props := make([]ast.ResourceProperty, 0, len(n.Properties))
	for i := range n.Properties {
		p := &n.Properties[i]
		typ, ok := b.memberType(p, "resource")
		if !ok {
			continue
		}
		props = append(props, ast.ResourceProperty{
			Name:  b.name(p.Name, p.At),
			Type:  typ,
			Attrs: b.attrList(p.Attrs),
			Span:  p.At.span(b.file),
		})
	}
	return b.lib.Decls.NewResource(name, attrs, span, ast.ResourceDecl{
		Subtype:    subtype,
		Properties: props,
	})
}

func (b *builder) protocol(n *declNode, name ast.Name, attrs ast.AttrListID, span source.Span) ast.DeclID {
	composed := make([]ast.ComposeRef, 0, len(n.Compose))
	for i := range n.Compose {
		cn := &n.Compose[i]
		cspan := cn.At.span(b.file)
		if cn.Ref == "" {
			diag.ReportError(b.reporter, diag.LoadBadField, cspan,
				"compose entry has no reference").Emit()
			continue
		}
		composed = append(composed, ast.ComposeRef{Span: cspan})
		idx := len(composed) - 1
		b.linkLater(cn.Ref, cspan, func(r ast.Reference) {
			composed[idx].Ref = r
		})
	}

	methods := make([]ast.ProtocolMethod, 0, len(n.Methods))
	for i := range n.Methods {
		m := &n.Methods[i]
		mspan := m.At.span(b.file)
		if m.Name == "" {
			diag.ReportError(b.reporter, diag.LoadBadField, mspan,
				"protocol method has no name").Emit()
			continue
		}
		// A payload implies the direction even when the flag is absent.
		hasReq := m.HasRequest || m.Request != nil
		hasResp := m.HasResponse || m.Response != nil
		if !hasReq && !hasResp {
			diag.ReportError(b.reporter, diag.LoadBadField, mspan,
				fmt.Sprintf("method '%s' has neither a request nor a response", m.Name)).Emit()
			continue
		}
		pm := ast.ProtocolMethod{
			Name:        b.name(m.Name, m.At),
			Attrs:       b.attrList(m.Attrs),
			HasRequest:  hasReq,
			HasResponse: hasResp,
			Span:        mspan,
		}
		if m.Request != nil {
			if id, ok := b.typeCtor(m.Request); ok {
				pm.Request = id
			}
		}
		if m.Response != nil {
			if id, ok := b.typeCtor(m.Response); ok {
				pm.Response = id
			}
		}
		methods = append(methods, pm)
	}

	return b.lib.Decls.NewProtocol(name, attrs, span, ast.ProtocolDecl{
		Composed: composed,
		Methods:  methods,
	})
}

// memberType vets the name and type every named member needs.
func (b *builder) memberType(m *memberNode, what string) (ast.TypeCtorID, bool) {
	span := m.At.span(b.file)
	if m.Name == "" {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			fmt.Sprintf("%s member has no name", what)).Emit()
		return ast.NoTypeCtorID, false
	}
	if m.Type == nil {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			fmt.Sprintf("%s member '%s' has no type", what, m.Name)).Emit()
		return ast.NoTypeCtorID, false
	}
	return b.typeCtor(m.Type)
}

func (b *builder) requiredType(n *typeNode, kind, field string, span source.Span) (ast.TypeCtorID, bool) {
	if n == nil {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			fmt.Sprintf("%s declaration has no %s", kindLabel(kind), field)).Emit()
		return ast.NoTypeCtorID, false
	}
	return b.typeCtor(n)
}

func (b *builder) typeCtor(n *typeNode) (ast.TypeCtorID, bool) {
	span := n.At.span(b.file)
	if n.Layout == "" {
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			"type has no layout reference").Emit()
		return ast.NoTypeCtorID, false
	}

	params := make([]ast.LayoutParam, 0, len(n.Params))
	for i := range n.Params {
		p := &n.Params[i]
		pspan := p.At.span(b.file)
		switch {
		case p.Type != nil && p.Value == nil:
			if id, ok := b.typeCtor(p.Type); ok {
				params = append(params, ast.LayoutParam{Type: id, Span: pspan})
			}
		case p.Value != nil && p.Type == nil:
			if id, ok := b.constant(p.Value); ok {
				params = append(params, ast.LayoutParam{Value: id, Span: pspan})
			}
		default:
			diag.ReportError(b.reporter, diag.LoadBadField, pspan,
				"layout parameter must carry exactly one of type and value").Emit()
		}
	}

	constraints := make([]ast.ConstantID, 0, len(n.Constraints))
	for i := range n.Constraints {
		if id, ok := b.constant(&n.Constraints[i]); ok {
			constraints = append(constraints, id)
		}
	}

	id := b.lib.Decls.NewTypeCtor(ast.TypeCtor{
		Params:      params,
		Constraints: constraints,
		Span:        span,
	})
	b.linkLater(n.Layout, span, b.ctorSlot(id))
	return id, true
}

func (b *builder) constant(n *constNode) (ast.ConstantID, bool) {
	span := n.At.span(b.file)
	switch {
	case n.Literal != nil && n.Ref == "" && n.Or == nil:
		return b.literal(n.Literal, span)
	case n.Ref != "" && n.Literal == nil && n.Or == nil:
		id := b.lib.Decls.NewConstant(ast.Constant{
			Kind: ast.ConstantIdentifier,
			Span: span,
		})
		b.linkLater(n.Ref, span, b.constantSlot(id))
		return id, true
	case n.Or != nil && n.Literal == nil && n.Ref == "":
		left, lok := b.constant(&n.Or.Left)
		right, rok := b.constant(&n.Or.Right)
		if !lok || !rok {
			return ast.NoConstantID, false
		}
		return b.lib.Decls.NewConstant(ast.Constant{
			Kind:  ast.ConstantBinaryOr,
			Span:  span,
			Left:  left,
			Right: right,
		}), true
	default:
		diag.ReportError(b.reporter, diag.LoadBadField, span,
			"constant must carry exactly one of literal, ref and or").Emit()
		return ast.NoConstantID, false
	}
}

func (b *builder) literal(n *literalNode, span source.Span) (ast.ConstantID, bool) {
	lit := ast.Literal{Span: span}
	switch n.Kind {
	case "bool":
		lit.Kind = ast.LiteralBool
		lit.Bool = n.Bool
	case "number":
		lit.Kind = ast.LiteralNumeric
		lit.Text = n.Text
	case "string":
		lit.Kind = ast.LiteralString
		lit.Text = n.Text
	case "doc":
		lit.Kind = ast.LiteralDocComment
		lit.Text = n.Text
	default:
		diag.ReportError(b.reporter, diag.LoadBadLiteral, span,
			fmt.Sprintf("unknown literal kind '%s'", n.Kind)).Emit()
		return ast.NoConstantID, false
	}
	if lit.Kind == ast.LiteralNumeric && lit.Text == "" {
		diag.ReportError(b.reporter, diag.LoadBadLiteral, span,
			"numeric literal has no text").Emit()
		return ast.NoConstantID, false
	}
	return b.lib.Decls.NewConstant(ast.Constant{
		Kind:    ast.ConstantLiteral,
		Span:    span,
		Literal: lit,
	}), true
}

func (b *builder) attrList(attrs []attrNode) ast.AttrListID {
	if len(attrs) == 0 {
		return ast.NoAttrListID
	}
	out := make([]ast.Attr, 0, len(attrs))
	for i := range attrs {
		a := &attrs[i]
		span := a.At.span(b.file)
		if a.Name == "" {
			diag.ReportError(b.reporter, diag.LoadBadField, span,
				"attribute has no name").Emit()
			continue
		}
		args := make([]ast.AttrArg, 0, len(a.Args))
		for j := range a.Args {
			arg := &a.Args[j]
			aspan := arg.At.span(b.file)
			if arg.Value == nil {
				diag.ReportError(b.reporter, diag.LoadBadField, aspan,
					fmt.Sprintf("argument of '@%s' has no value", a.Name)).Emit()
				continue
			}
			value, ok := b.constant(arg.Value)
			if !ok {
				continue
			}
			var name ast.Name
			if arg.Name != "" {
				name = b.name(arg.Name, arg.At)
			}
			args = append(args, ast.AttrArg{Name: name, Value: value, Span: aspan})
		}
		out = append(out, ast.Attr{
			Name: b.name(a.Name, a.At),
			Args: args,
			Span: span,
		})
	}
	return b.lib.Decls.NewAttrList(out)
}

func (b *builder) name(raw string, at loc) ast.Name {
	return ast.MakeName(b.strings, raw, at.span(b.file))
}

func (b *builder) linkLater(text string, span source.Span, assign func(ast.Reference)) {
	b.pending = append(b.pending, pendingRef{text: text, span: span, assign: assign})
}

// ctorSlot returns an assigner for a type constructor's layout reference.
// The arena is looked up at assignment time so growth cannot invalidate it.
func (b *builder) ctorSlot(id ast.TypeCtorID) func(ast.Reference) {
	return func(r ast.Reference) {
		b.lib.Decls.TypeCtorAt(id).Layout = r
	}
}

func (b *builder) constantSlot(id ast.ConstantID) func(ast.Reference) {
	return func(r ast.Reference) {
		b.lib.Decls.ConstantAt(id).Ref = r
	}
}

func strictness(strict bool) ast.Strictness {
	if strict {
		return ast.StrictnessStrict
	}
	return ast.StrictnessFlexible
}

func resourceness(resource bool) ast.Resourceness {
	if resource {
		return ast.ResourcenessResource
	}
	return ast.ResourcenessUnspecified
}

func kindLabel(kind string) string {
	if kind == "" {
		return "unnamed"
	}
	return kind
}
