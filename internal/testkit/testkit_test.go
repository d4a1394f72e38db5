package testkit

import (
	"testing"

	"weft/internal/diag"
)

func TestCompileGraphRoundTrip(t *testing.T) {
	fx := CompileGraph(t, `{
		"format": 1,
		"library": "acme.test",
		"at": [0, 1],
		"declarations": [
			{"kind": "struct", "name": "Point", "at": [10, 15], "members": [
				{"name": "x", "at": [20, 21], "type": {"layout": "int32", "at": [23, 28]}}
			]}
		]
	}`)

	if fx.Library.Name != "acme.test" {
		t.Errorf("library = %q, want acme.test", fx.Library.Name)
	}
	if fx.Bag.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", fx.Bag.Items())
	}
	if fx.Space == nil {
		t.Error("expected a type space")
	}
}

func TestCodesExtraction(t *testing.T) {
	fx := CompileGraph(t, `{
		"format": 1,
		"library": "acme.test",
		"at": [0, 1],
		"declarations": [
			{"kind": "struct", "name": "Point", "at": [10, 15], "members": [
				{"name": "x", "at": [20, 21], "type": {"layout": "Missing", "at": [23, 30]}}
			]}
		]
	}`)

	codes := Codes(fx.Bag)
	if len(codes) == 0 {
		t.Fatal("expected diagnostics")
	}
	found := false
	for _, c := range codes {
		if c == diag.LinkUnknownName {
			found = true
		}
	}
	if !found {
		t.Errorf("codes = %v, want LinkUnknownName among them", codes)
	}
}

func TestAssertGoldenAcceptsEqual(t *testing.T) {
	AssertGolden(t, "a\nb\n", "a\nb\n")
}
