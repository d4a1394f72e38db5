// Package testkit carries shared helpers for compiler tests: one-call
// graph compilation, diagnostic code extraction and golden comparison.
package testkit

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"weft/internal/ast"
	"weft/internal/declfile"
	"weft/internal/diag"
	"weft/internal/sema"
	"weft/internal/source"
	"weft/internal/types"
)

// Fixture is one compiled graph snippet with everything a test may want
// to poke at.
type Fixture struct {
	FileSet *source.FileSet
	File    source.FileID
	Library *ast.Library
	Bag     *diag.Bag
	Space   *types.Space
}

// CompileGraph loads a graph document from source text and compiles it.
// The snippet must at least build a library; tests exercising load
// failures call declfile directly.
func CompileGraph(t *testing.T, snippet string) *Fixture {
	t.Helper()

	fs := source.NewFileSet()
	bag := diag.NewBag(64)
	res := declfile.LoadBytes(fs, "snippet.weft.json", []byte(snippet), declfile.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if res.Library == nil {
		t.Fatalf("graph snippet did not load: %v", bag.Items())
	}
	sr := sema.Compile(res.Library, sema.Options{Reporter: diag.BagReporter{Bag: bag}})
	return &Fixture{
		FileSet: fs,
		File:    res.File,
		Library: res.Library,
		Bag:     bag,
		Space:   sr.Space,
	}
}

// Codes lists the diagnostic codes in bag order.
func Codes(bag *diag.Bag) []diag.Code {
	items := bag.Items()
	codes := make([]diag.Code, 0, len(items))
	for i := range items {
		codes = append(codes, items[i].Code)
	}
	return codes
}

// AssertGolden compares got against want line by line and reports a
// unified diff on mismatch.
func AssertGolden(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("golden mismatch:\n%s", diff)
}
