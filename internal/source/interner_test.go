package source

import (
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID is reserved for the empty string.
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID should resolve to the empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("subtype")
	if id1 == NoStringID {
		t.Error("Intern must not return NoStringID for a non-empty string")
	}

	id2 := interner.Intern("subtype")
	if id1 != id2 {
		t.Errorf("Intern of the same string must return the same ID: %d != %d", id1, id2)
	}

	if s, ok := interner.Lookup(id1); !ok || s != "subtype" {
		t.Errorf("Lookup returned %q, ok=%v", s, ok)
	}

	id3 := interner.Intern("rights")
	if id3 == id1 {
		t.Error("different strings must get different IDs")
	}

	if interner.Len() != 3 { // "", "subtype", "rights"
		t.Errorf("Len = %d, want 3", interner.Len())
	}
}

func TestInternerBytes(t *testing.T) {
	interner := NewInterner()

	buf := []byte("channel")
	id := interner.InternBytes(buf)

	// Mutating the caller's buffer must not affect the interned string.
	buf[0] = 'X'
	if s := interner.MustLookup(id); s != "channel" {
		t.Errorf("interned string aliased the input buffer: %q", s)
	}
}

func TestInternerSnapshot(t *testing.T) {
	interner := NewInterner()
	interner.Intern("a")
	interner.Intern("b")

	snap := interner.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	if snap[1] != "a" || snap[2] != "b" {
		t.Errorf("snapshot order wrong: %v", snap)
	}

	// Snapshot is a copy.
	snap[1] = "mutated"
	if interner.MustLookup(1) != "a" {
		t.Error("mutating the snapshot leaked into the interner")
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	interner := NewInterner()

	defer func() {
		if recover() == nil {
			t.Error("MustLookup of an unknown ID must panic")
		}
	}()
	interner.MustLookup(StringID(99))
}
