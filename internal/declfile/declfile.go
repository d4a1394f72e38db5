// Package declfile loads *.weft.json declaration graph files, the hand-off
// format between the frontend and declaration compilation.
// Invariants:
//   - Loading is two passes: build declarations and claim top-level names,
//     then link every textual reference against the library, its
//     dependencies and the builtin root.
//   - Every span in a diagnostic is a byte range the frontend recorded
//     into the graph file itself.
//   - A malformed document yields no library; a document with bad names
//     still yields one, with the broken references left unresolved.
package declfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"weft/internal/ast"
	"weft/internal/diag"
	"weft/internal/source"
)

// Options configure building a library from graph documents.
type Options struct {
	Reporter diag.Reporter
	Strings  *source.Interner
	// Root is the builtin library unqualified names fall back to. Nil
	// creates a fresh one, which suits single-library loads only: the
	// driver shares one root across every library it compiles.
	Root *ast.Library
	// Deps are the compiled libraries qualified references may name.
	Deps []*ast.Library
}

// Result of loading a library. Library is nil when every document was
// too broken to build. File is the first graph file, which single-file
// loads can use to resolve spans.
type Result struct {
	Library *ast.Library
	File    source.FileID
}

// Graph is one decoded graph document, ready to be built into a library.
// A graph whose document failed to decode builds to nothing.
type Graph struct {
	File source.FileID

	doc *document
}

// Decode parses one graph file already registered in fs. Decoding only
// reads from fs, so distinct files may decode concurrently.
func Decode(fs *source.FileSet, file source.FileID, reporter diag.Reporter) Graph {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	doc, ok := decode(reporter, fs.Get(file).Content, file)
	if !ok {
		return Graph{File: file}
	}
	return Graph{File: file, doc: doc}
}

// Load reads a graph file from disk and builds its library.
func Load(fs *source.FileSet, path string, opts Options) Result {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	file, err := fs.Load(path)
	if err != nil {
		diag.ReportError(reporter, diag.LoadRead, source.Span{},
			fmt.Sprintf("cannot read '%s': %v", path, err)).Emit()
		return Result{}
	}
	return Build([]Graph{Decode(fs, file, reporter)}, opts)
}

// LoadBytes builds a library from in-memory graph content, registered in
// fs under name so diagnostics resolve to real positions.
func LoadBytes(fs *source.FileSet, name string, content []byte, opts Options) Result {
	file := fs.AddVirtual(name, content)
	return Build([]Graph{Decode(fs, file, opts.Reporter)}, opts)
}

// Build assembles one library from decoded graphs. The first usable
// document names the library and later documents must agree; documents
// naming a different library are dropped with a diagnostic. References
// are linked once across all documents, so declarations may refer to
// names from sibling graph files.
func Build(graphs []Graph, opts Options) Result {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	strings := opts.Strings
	if strings == nil {
		strings = source.NewInterner()
	}
	root := opts.Root
	if root == nil {
		root = ast.NewRootLibrary(strings)
	}

	res := Result{}
	if len(graphs) > 0 {
		res.File = graphs[0].File
	}

	var b *builder
	for _, g := range graphs {
		if g.doc == nil {
			continue
		}
		if g.doc.Library == "" {
			diag.ReportError(reporter, diag.LoadBadField, g.doc.At.span(g.File),
				"graph document has no library name").Emit()
			continue
		}
		if b == nil {
			lib := ast.NewLibrary(g.doc.Library, g.doc.At.span(g.File))
			lib.Deps = append([]*ast.Library{root}, opts.Deps...)
			b = &builder{strings: strings, reporter: reporter, lib: lib}
		} else if g.doc.Library != b.lib.Name {
			diag.ReportError(reporter, diag.LoadBadField, g.doc.At.span(g.File),
				fmt.Sprintf("graph declares library '%s', want '%s'", g.doc.Library, b.lib.Name)).Emit()
			continue
		}
		b.file = g.File
		b.document(g.doc)
	}
	if b == nil {
		return res
	}

	l := &linker{
		reporter: reporter,
		lib:      b.lib,
		root:     root,
	}
	l.run(b.pending)

	res.Library = b.lib
	return res
}

// decode unmarshals the document, rejecting keys the format does not
// define so frontend drift surfaces as a diagnostic instead of silence.
func decode(reporter diag.Reporter, content []byte, file source.FileID) (*document, bool) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		span := source.Span{File: file}
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syn):
			span = offsetSpan(file, syn.Offset, len(content))
		case errors.As(err, &typ):
			span = offsetSpan(file, typ.Offset, len(content))
		}
		diag.ReportError(reporter, diag.LoadDecode, span,
			fmt.Sprintf("malformed graph document: %v", err)).Emit()
		return nil, false
	}
	if doc.Format != FormatVersion {
		diag.ReportError(reporter, diag.LoadDecode, doc.At.span(file),
			fmt.Sprintf("graph format %d is not supported, want %d", doc.Format, FormatVersion)).Emit()
		return nil, false
	}
	return &doc, true
}

// FormatVersion is the graph document revision this loader understands.
const FormatVersion = 1

func offsetSpan(file source.FileID, offset int64, size int) source.Span {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(size) {
		offset = int64(size)
	}
	start := uint32(offset)
	end := start
	if int(start) < size {
		end = start + 1
	}
	return source.Span{File: file, Start: start, End: end}
}
