package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  Level
	}{
		{"off", LevelOff},
		{"error", LevelError},
		{"phase", LevelPhase},
		{"DETAIL", LevelDetail},
		{"debug", LevelDebug},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopeDriver) || !LevelPhase.ShouldEmit(ScopeLibrary) {
		t.Fatalf("phase level must emit driver and library scopes")
	}
	if LevelPhase.ShouldEmit(ScopeStage) {
		t.Fatalf("phase level must not emit stage scope")
	}
	if !LevelDetail.ShouldEmit(ScopeStage) || LevelDetail.ShouldEmit(ScopeDecl) {
		t.Fatalf("detail level must emit stages but not decls")
	}
	if !LevelDebug.ShouldEmit(ScopeDecl) {
		t.Fatalf("debug level must emit everything")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	span := Begin(st, ScopeLibrary, "library:acme.geom", 0)
	span.End("ok")

	out := buf.String()
	if !strings.Contains(out, `"kind":"begin"`) || !strings.Contains(out, `"kind":"end"`) {
		t.Fatalf("missing span events:\n%s", out)
	}
	if !strings.Contains(out, `"name":"library:acme.geom"`) {
		t.Fatalf("missing span name:\n%s", out)
	}
	if !strings.Contains(out, `"detail":"ok"`) {
		t.Fatalf("missing end detail:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Fatalf("line count = %d, want 2:\n%s", lines, out)
	}
}

func TestStreamTracerGatesByScope(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)

	span := Begin(st, ScopeStage, "load", 0)
	span.End("")

	if buf.Len() != 0 {
		t.Fatalf("stage span must not emit at phase level:\n%s", buf.String())
	}
}

func TestRingTracerWrap(t *testing.T) {
	ring := NewRingTracer(4, LevelDetail)
	for _, name := range []string{"e1", "e2", "e3", "e4", "e5", "e6"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopeStage, Name: name})
	}

	snap := ring.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("snapshot length = %d, want 4", len(snap))
	}
	if snap[0].Name != "e3" || snap[3].Name != "e6" {
		t.Fatalf("snapshot order = [%s .. %s], want [e3 .. e6]", snap[0].Name, snap[3].Name)
	}
}

func TestRingRecordsAtErrorLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)

	span := Begin(ring, ScopeLibrary, "library:acme.geom", 0)
	span.End("failed")

	snap := ring.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("error-level ring recorded %d events, want 2", len(snap))
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(buf.String(), "library:acme.geom") {
		t.Fatalf("dump missing span name:\n%s", buf.String())
	}
}

func TestFindRing(t *testing.T) {
	ring := NewRingTracer(8, LevelDetail)
	var buf bytes.Buffer
	multi := NewMultiTracer(LevelDetail, NewStreamTracer(&buf, LevelDetail, FormatText), ring)

	if FindRing(multi) != ring {
		t.Fatalf("FindRing must descend into the fan-out")
	}
	if FindRing(Nop) != nil {
		t.Fatalf("FindRing(Nop) must be nil")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
}
