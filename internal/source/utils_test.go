package source

import (
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		out     string
		changed bool
	}{
		{"no carriage returns", "a\nb", "a\nb", false},
		{"crlf pairs replaced", "a\r\nb\r\n", "a\nb\n", true},
		{"lone cr preserved", "a\rb", "a\rb", false},
		{"mixed", "a\r\nb\rc\r\n", "a\nb\rc\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.out || changed != tt.changed {
				t.Errorf("normalizeCRLF(%q) = %q, %v; want %q, %v", tt.in, got, changed, tt.out, tt.changed)
			}
		})
	}
}

func TestToLineCol(t *testing.T) {
	// Content "ab\ncde\nf": newlines at offsets 2 and 6.
	idx := []uint32{2, 6}

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{7, LineCol{3, 1}},
	}
	for _, c := range cases {
		if got := toLineCol(idx, c.off); got != c.want {
			t.Errorf("toLineCol(%d) = %v, want %v", c.off, got, c.want)
		}
	}

	if got := toLineCol(nil, 4); got != (LineCol{1, 5}) {
		t.Errorf("single-line file: got %v", got)
	}
}

func TestPathHelpers(t *testing.T) {
	if got := BaseName("a/b/c.weft.json"); got != "c.weft.json" {
		t.Errorf("BaseName = %q", got)
	}

	rel, err := RelativePath("/proj/lib/demo.weft.json", "/proj")
	if err != nil {
		t.Fatalf("RelativePath: %v", err)
	}
	if rel != "lib/demo.weft.json" {
		t.Errorf("RelativePath = %q", rel)
	}
}
