package diag

import (
	"testing"

	"weft/internal/source"
)

func TestBagLimitAndTruncation(t *testing.T) {
	bag := NewBag(2)

	span := source.Span{File: 1, Start: 0, End: 1}
	if !bag.Add(NewError(SemaNameCollision, span, "one")) {
		t.Fatal("first add must succeed")
	}
	if !bag.Add(NewError(SemaNameCollision, span, "two")) {
		t.Fatal("second add must succeed")
	}
	if bag.Add(NewError(SemaNameCollision, span, "three")) {
		t.Fatal("third add must be dropped at the cap")
	}

	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
	if bag.Truncated() != 1 {
		t.Errorf("Truncated = %d, want 1", bag.Truncated())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(8)
	span := source.Span{File: 1, Start: 0, End: 1}

	bag.Add(New(SevInfo, SemaInfo, span, "info"))
	if bag.HasErrors() {
		t.Error("info-only bag must not report errors")
	}
	bag.Add(New(SevWarning, SemaInfo, span, "warn"))
	if bag.HasErrors() {
		t.Error("warnings are not errors")
	}
	if !bag.HasWarnings() {
		t.Error("HasWarnings must see the warning")
	}
	bag.Add(NewError(SemaNameCollision, span, "err"))
	if !bag.HasErrors() {
		t.Error("HasErrors must see the error")
	}
	if bag.CountBySeverity(SevError) != 1 {
		t.Errorf("CountBySeverity(SevError) = %d, want 1", bag.CountBySeverity(SevError))
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(8)

	bag.Add(NewError(SemaDuplicateOrdinal, source.Span{File: 2, Start: 5, End: 6}, "b"))
	bag.Add(NewError(SemaNameCollision, source.Span{File: 1, Start: 9, End: 10}, "c"))
	bag.Add(NewError(SemaNameCollision, source.Span{File: 1, Start: 2, End: 3}, "a"))

	bag.Sort()
	items := bag.Items()
	if items[0].Message != "a" || items[1].Message != "c" || items[2].Message != "b" {
		t.Errorf("sort order wrong: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	span := source.Span{File: 1, Start: 0, End: 4}

	bag.Add(NewError(SemaNameCollision, span, "same"))
	bag.Add(NewError(SemaNameCollision, span, "same"))
	bag.Add(NewError(SemaDuplicateOrdinal, span, "other"))

	bag.Dedup()
	if bag.Len() != 2 {
		t.Errorf("Dedup left %d items, want 2", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	rep := NewDedupReporter(BagReporter{Bag: bag})

	span := source.Span{File: 1, Start: 0, End: 1}
	rep.Report(SemaNameCollision, SevError, span, "dup", nil)
	rep.Report(SemaNameCollision, SevError, span, "dup", nil)
	rep.Report(SemaNameCollision, SevError, span, "not dup", nil)

	if bag.Len() != 2 {
		t.Errorf("dedup reporter passed %d items, want 2", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	bag := NewBag(8)
	rep := BagReporter{Bag: bag}

	b := ReportError(rep, SemaNameCollision, source.Span{File: 1, Start: 0, End: 1}, "collision").
		WithNote(source.Span{File: 1, Start: 4, End: 5}, "previously declared here")
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("builder emitted %d diagnostics, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || d.Notes[0].Msg != "previously declared here" {
		t.Errorf("note not carried: %+v", d.Notes)
	}
}

func TestCodeIDRanges(t *testing.T) {
	cases := []struct {
		code Code
		id   string
	}{
		{LoadDecode, "LOD1002"},
		{LinkDuplicateDecl, "LNK2001"},
		{SemaIncludeCycle, "SEM3007"},
		{IOWrite, "IO4001"},
		{ProjectManifest, "PRJ5001"},
	}
	for _, c := range cases {
		if got := c.code.ID(); got != c.id {
			t.Errorf("Code(%d).ID() = %q, want %q", c.code, got, c.id)
		}
	}
}
