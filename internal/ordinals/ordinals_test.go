package ordinals

import "testing"

func TestMethodOrdinalStable(t *testing.T) {
	h := SHA256Hasher{}
	a := h.MethodOrdinal("acme.device", "Controller", "Start")
	b := h.MethodOrdinal("acme.device", "Controller", "Start")
	if a != b {
		t.Fatalf("ordinal not deterministic: %#x vs %#x", a, b)
	}
}

func TestMethodOrdinalProperties(t *testing.T) {
	h := SHA256Hasher{}
	inputs := []struct{ lib, proto, sel string }{
		{"acme.device", "Controller", "Start"},
		{"acme.device", "Controller", "Stop"},
		{"acme.device", "Monitor", "Start"},
		{"acme.net", "Controller", "Start"},
		{"a", "b", "c"},
	}
	seen := make(map[uint64]string, len(inputs))
	for _, in := range inputs {
		ord := h.MethodOrdinal(in.lib, in.proto, in.sel)
		if ord == 0 {
			t.Errorf("%s/%s.%s hashed to zero", in.lib, in.proto, in.sel)
		}
		if ord >= 1<<63 {
			t.Errorf("%s/%s.%s exceeds 63 bits: %#x", in.lib, in.proto, in.sel, ord)
		}
		if prev, dup := seen[ord]; dup {
			t.Errorf("ordinal %#x shared by %s and %s/%s.%s", ord, prev, in.lib, in.proto, in.sel)
		}
		seen[ord] = in.lib + "/" + in.proto + "." + in.sel
	}
}

// Changing only the selector must change the ordinal; that is what makes
// selector overrides preserve wire compatibility for renamed methods.
func TestMethodOrdinalFollowsSelector(t *testing.T) {
	h := SHA256Hasher{}
	renamed := h.MethodOrdinal("acme.device", "Controller", "Start")
	override := h.MethodOrdinal("acme.device", "Controller", "Boot")
	if renamed == override {
		t.Fatalf("distinct selectors produced one ordinal %#x", renamed)
	}
}
