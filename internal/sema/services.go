package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
	"weft/internal/types"
)

// compileService checks that every member is a non-optional client end and
// that all members ride the same transport.
func (c *compiler) compileService(id ast.DeclID, decl *ast.Decl) {
	svc, ok := c.lib.Decls.ServiceAt(id)
	if !ok {
		panic(fmt.Errorf("sema: service declaration without payload"))
	}
	nameScope := NewScope[string, source.Span]()
	transport := ""
	var transportSpan source.Span
	for i := range svc.Members {
		m := &svc.Members[i]
		c.compileAttrList(m.Attrs)
		if prev, ok := nameScope.Insert(m.Name.Canonical, m.Name.Span); !ok {
			diag.ReportError(c.reporter, diag.SemaNameCollision, m.Name.Span,
				fmt.Sprintf("duplicate member name '%s'", m.Name.Raw)).
				WithNote(prev, "previously defined here").Emit()
		}
		tid, ok := c.resolveType(m.Type)
		if !ok {
			continue
		}
		t := c.space.Get(tid)
		if t.Kind != types.KindTransportSide || t.Side != types.SideClient {
			diag.ReportError(c.reporter, diag.SemaServiceMemberNotClientEnd, m.Span,
				fmt.Sprintf("service members must be client ends, not %s", c.space.Format(tid))).Emit()
			continue
		}
		if t.Nullable {
			diag.ReportError(c.reporter, diag.SemaServiceMemberNullable, m.Span,
				fmt.Sprintf("service member '%s' cannot be optional", m.Name.Raw)).Emit()
			continue
		}
		tr := protocolTransport(t.Lib, t.Decl)
		if transport == "" {
			transport = tr
			transportSpan = m.Span
			continue
		}
		if tr != transport {
			diag.ReportError(c.reporter, diag.SemaServiceTransportMismatch, m.Span,
				fmt.Sprintf("member '%s' uses transport '%s' but the service uses '%s'",
					m.Name.Raw, tr, transport)).
				WithNote(transportSpan, "transport established here").Emit()
		}
	}
}

// protocolTransport reads a protocol's @transport attribute, defaulting to
// the channel transport.
func protocolTransport(lib *ast.Library, id ast.DeclID) string {
	decl := lib.Decls.Get(id)
	if s, ok := stringAttrArg(lib, decl.Attrs, "transport", "value"); ok {
		return s
	}
	return "channel"
}
