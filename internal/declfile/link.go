package declfile

import (
	"fmt"
	"strings"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/names"
	"weft/internal/source"
)

// linker runs the second pass: every textual reference recorded by the
// builder resolves against the library, its dependencies and the builtin
// root. Failures leave the reference invalid; later phases skip those
// silently because the report already happened here.
type linker struct {
	reporter diag.Reporter
	lib      *ast.Library
	root     *ast.Library
}

func (l *linker) run(pending []pendingRef) {
	for i := range pending {
		p := &pending[i]
		if ref, ok := l.resolve(p.text, p.span); ok {
			p.assign(ref)
		}
	}
}

// resolve maps a dotted path onto a declaration. Resolution order: a bare
// name is a local declaration, then a builtin; a dotted path belongs to
// the longest dependency prefix that matches, and failing any, a local
// Decl.Member pair.
func (l *linker) resolve(text string, span source.Span) (ast.Reference, bool) {
	parts := strings.Split(text, ".")
	for _, part := range parts {
		if part == "" {
			diag.ReportError(l.reporter, diag.LoadBadField, span,
				fmt.Sprintf("malformed reference '%s'", text)).Emit()
			return ast.Reference{}, false
		}
	}

	if len(parts) == 1 {
		if id, ok := l.lib.Decls.Lookup(names.Canonical(text)); ok {
			return ast.Reference{Target: l.lib, Decl: id, Span: span}, true
		}
		if id, ok := l.root.Decls.Lookup(names.Canonical(text)); ok {
			return ast.Reference{Target: l.root, Decl: id, Span: span}, true
		}
		diag.ReportError(l.reporter, diag.LinkUnknownName, span,
			fmt.Sprintf("unknown name '%s'", text)).Emit()
		return ast.Reference{}, false
	}

	for i := len(parts) - 1; i >= 1; i-- {
		dep, ok := l.library(strings.Join(parts[:i], "."))
		if !ok {
			continue
		}
		return l.inLibrary(dep, parts[i:], span)
	}

	if len(parts) == 2 {
		if id, ok := l.lib.Decls.Lookup(names.Canonical(parts[0])); ok {
			return ast.Reference{Target: l.lib, Decl: id, Member: parts[1], Span: span}, true
		}
		diag.ReportError(l.reporter, diag.LinkUnknownName, span,
			fmt.Sprintf("unknown name '%s'", text)).Emit()
		return ast.Reference{}, false
	}

	diag.ReportError(l.reporter, diag.LinkUnknownLibrary, span,
		fmt.Sprintf("'%s' does not name a dependency of '%s'",
			strings.Join(parts[:len(parts)-1], "."), l.lib.Name)).Emit()
	return ast.Reference{}, false
}

// library finds a dependency by name; the library's own name also counts
// so fully qualified self references work.
func (l *linker) library(name string) (*ast.Library, bool) {
	if name == l.lib.Name {
		return l.lib, true
	}
	return l.lib.Dep(name)
}

func (l *linker) inLibrary(dep *ast.Library, rest []string, span source.Span) (ast.Reference, bool) {
	if len(rest) > 2 {
		diag.ReportError(l.reporter, diag.LinkUnknownName, span,
			fmt.Sprintf("'%s' does not name a declaration in library '%s'",
				strings.Join(rest, "."), dep.Name)).Emit()
		return ast.Reference{}, false
	}
	id, ok := dep.Decls.Lookup(names.Canonical(rest[0]))
	if !ok {
		diag.ReportError(l.reporter, diag.LinkUnknownName, span,
			fmt.Sprintf("library '%s' has no declaration '%s'", dep.Name, rest[0])).Emit()
		return ast.Reference{}, false
	}
	ref := ast.Reference{Target: dep, Decl: id, Span: span}
	if len(rest) == 2 {
		ref.Member = rest[1]
	}
	return ref, true
}
