package sema

import (
	"fmt"
	"strings"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/ordinals"
	"weft/internal/trace"
	"weft/internal/types"
)

// MethodHasher derives protocol method ordinals from the fully qualified
// selector of a method.
type MethodHasher interface {
	MethodOrdinal(library, protocol, selector string) uint64
}

// Options configure a compilation pass over one library.
type Options struct {
	Reporter diag.Reporter
	Space    *types.Space
	Hasher   MethodHasher
	Schemas  *AttrSchemas
	// Tracer records per-declaration spans at debug level. Nil disables
	// tracing.
	Tracer trace.Tracer
}

// Result carries the artefacts of a pass. The library's declarations are
// mutated in place; Space holds every type the pass resolved.
type Result struct {
	Library *ast.Library
	Space   *types.Space
}

// Compile runs declaration compilation over lib. Dependencies must already
// be compiled; the driver orders libraries so that holds. Schema errors go
// to the reporter and never stop the pass, so one broken declaration still
// lets the rest of the library compile.
func Compile(lib *ast.Library, opts Options) Result {
	if lib == nil {
		panic(fmt.Errorf("sema: compile of nil library"))
	}
	space := opts.Space
	if space == nil {
		space = types.NewSpace()
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = ordinals.SHA256Hasher{}
	}
	schemas := opts.Schemas
	if schemas == nil {
		schemas = BuiltinSchemas()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}

	c := &compiler{
		lib:      lib,
		reporter: reporter,
		space:    space,
		hasher:   hasher,
		schemas:  schemas,
		tracer:   opts.Tracer,
		state:    make([]declState, lib.Decls.Len()+1),
	}
	c.compileAttrList(lib.Attrs)
	for id := ast.DeclID(1); uint32(id) <= lib.Decls.Len(); id++ {
		c.compileDecl(id)
	}
	return Result{Library: lib, Space: space}
}

type declState uint8

const (
	declUnvisited declState = iota
	declCompiling
	declDone
)

type compiler struct {
	lib      *ast.Library
	reporter diag.Reporter
	space    *types.Space
	hasher   MethodHasher
	schemas  *AttrSchemas
	tracer   trace.Tracer
	state    []declState
	stack    []ast.DeclID
}

// compileDecl compiles one declaration at most once. Hitting a declaration
// already on the stack means the definitions include each other; the cycle
// is reported once and every participant still ends up Done.
func (c *compiler) compileDecl(id ast.DeclID) {
	if !id.IsValid() {
		panic(fmt.Errorf("sema: compile of missing declaration"))
	}
	switch c.state[id] {
	case declDone:
		return
	case declCompiling:
		c.reportCycle(id)
		return
	}
	c.state[id] = declCompiling
	c.stack = append(c.stack, id)
	defer func() {
		c.stack = c.stack[:len(c.stack)-1]
		c.state[id] = declDone
	}()

	decl := c.lib.Decls.Get(id)
	if c.tracer != nil && c.tracer.Enabled() {
		span := trace.Begin(c.tracer, trace.ScopeDecl, "decl:"+decl.Name.Raw, 0)
		defer func() { span.End(decl.Kind.String()) }()
	}
	c.compileAttrList(decl.Attrs)
	switch decl.Kind {
	case ast.DeclBuiltin:
		// Builtins carry no body.
	case ast.DeclAlias:
		c.compileAlias(id, decl)
	case ast.DeclBits:
		c.compileBits(id, decl)
	case ast.DeclConst:
		c.compileConst(id, decl)
	case ast.DeclEnum:
		c.compileEnum(id, decl)
	case ast.DeclNewType:
		c.compileNewType(id, decl)
	case ast.DeclProtocol:
		c.compileProtocol(id, decl)
	case ast.DeclResource:
		c.compileResource(id, decl)
	case ast.DeclService:
		c.compileService(id, decl)
	case ast.DeclStruct:
		c.compileStruct(id, decl)
	case ast.DeclTable:
		c.compileTable(id, decl)
	case ast.DeclUnion:
		c.compileUnion(id, decl)
	default:
		panic(fmt.Errorf("sema: declaration %d has kind %v", id, decl.Kind))
	}
}

// reportCycle emits one diagnostic for the cycle ending at id. The chain is
// printed from the cycling declaration around to itself.
func (c *compiler) reportCycle(id ast.DeclID) {
	start := -1
	for i, on := range c.stack {
		if on == id {
			start = i
			break
		}
	}
	if start < 0 {
		panic(fmt.Errorf("sema: cycle reported for declaration %d not on the stack", id))
	}
	cycle := append(append([]ast.DeclID{}, c.stack[start:]...), id)
	parts := make([]string, len(cycle))
	for i, did := range cycle {
		parts[i] = c.lib.Decls.Get(did).Name.Raw
	}
	decl := c.lib.Decls.Get(id)
	diag.ReportError(c.reporter, diag.SemaIncludeCycle, decl.Name.Span,
		fmt.Sprintf("'%s' includes itself: %s", decl.Name.Raw, strings.Join(parts, " -> "))).Emit()
}

// EnsureCompiled forces the referenced declaration through compilation.
// References into dependencies are already compiled by pass ordering.
func (c *compiler) EnsureCompiled(ref ast.Reference) {
	if ref.Target != c.lib {
		return
	}
	c.compileDecl(ref.Decl)
}

// ResolveConstant resolves a constant against an expected type, recording
// the outcome in the constant's cell. Replays return the recorded outcome.
func (c *compiler) ResolveConstant(lib *ast.Library, id ast.ConstantID, expected types.TypeID) bool {
	if lib != c.lib {
		panic(fmt.Errorf("sema: constant resolution outside the current library"))
	}
	return c.resolveConstant(id, expected)
}

// Reporter exposes the diagnostic sink to the type resolver.
func (c *compiler) Reporter() diag.Reporter { return c.reporter }

// resolveType resolves a type constructor owned by the current library.
func (c *compiler) resolveType(id ast.TypeCtorID) (types.TypeID, bool) {
	return c.space.ResolveTypeCtor(c.lib, id, c)
}
