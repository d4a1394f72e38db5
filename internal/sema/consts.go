package sema

import (
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
)

func (c *compiler) compileConst(id ast.DeclID, decl *ast.Decl) {
	cd, ok := c.lib.Decls.ConstAt(id)
	if !ok {
		panic(fmt.Errorf("sema: const declaration without payload"))
	}
	tid, ok := c.resolveType(cd.Type)
	if !ok {
		// The value cannot be interpreted without a type; seal the cell so
		// references to this const fail without re-reporting.
		c.lib.Decls.ConstantAt(cd.Value).MarkFailed()
		return
	}
	if !c.constableType(tid) {
		diag.ReportError(c.reporter, diag.SemaConstInvalidType,
			c.lib.Decls.TypeCtorAt(cd.Type).Span,
			fmt.Sprintf("%s cannot be the type of a constant", c.space.Format(tid))).Emit()
		c.lib.Decls.ConstantAt(cd.Value).MarkFailed()
		return
	}
	c.resolveConstant(cd.Value, tid)
}

func (c *compiler) compileAlias(id ast.DeclID, decl *ast.Decl) {
	ad, ok := c.lib.Decls.AliasAt(id)
	if !ok {
		panic(fmt.Errorf("sema: alias declaration without payload"))
	}
	c.resolveType(ad.Target)
}

func (c *compiler) compileNewType(id ast.DeclID, decl *ast.Decl) {
	nd, ok := c.lib.Decls.NewTypeAt(id)
	if !ok {
		panic(fmt.Errorf("sema: new type declaration without payload"))
	}
	tid, ok := c.resolveType(nd.Target)
	if !ok {
		return
	}
	if c.space.Get(tid).Nullable {
		diag.ReportError(c.reporter, diag.SemaNewTypeNullable,
			c.lib.Decls.TypeCtorAt(nd.Target).Span,
			fmt.Sprintf("new type '%s' cannot wrap an optional type", decl.Name.Raw)).Emit()
	}
}
