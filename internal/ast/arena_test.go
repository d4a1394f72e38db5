package ast

import (
	"testing"
)

func TestArenaAllocateIsOneBased(t *testing.T) {
	arena := NewArena[int](4)

	first := arena.Allocate(10)
	second := arena.Allocate(20)

	if first != 1 || second != 2 {
		t.Fatalf("allocate returned %d, %d; want 1, 2", first, second)
	}
	if got := arena.Get(first); got == nil || *got != 10 {
		t.Errorf("Get(1) = %v", got)
	}
	if got := arena.Get(0); got != nil {
		t.Error("Get(0) must return nil")
	}
	if arena.Len() != 2 {
		t.Errorf("Len = %d, want 2", arena.Len())
	}
}

func TestArenaGetReturnsStablePointer(t *testing.T) {
	arena := NewArena[Decl](0)
	id := arena.Allocate(Decl{Kind: DeclStruct})

	arena.Get(id).Kind = DeclTable
	if arena.Get(id).Kind != DeclTable {
		t.Error("mutation through Get must stick")
	}
}
