package diag

import (
	"testing"

	"github.com/FuelLabs/sway-sub019/internal/source"
)

func sp(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(TypeMismatch, sp(1, 0, 1), "a")) {
		t.Fatal("first add rejected")
	}
	if !bag.Add(NewError(TypeMismatch, sp(1, 1, 2), "b")) {
		t.Fatal("second add rejected")
	}
	if bag.Add(NewError(TypeMismatch, sp(1, 2, 3), "c")) {
		t.Fatal("add above limit accepted")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewWarning(NameUnusedImport, sp(1, 0, 1), "unused"))
	if bag.HasErrors() {
		t.Fatal("warning counted as error")
	}
	bag.Add(NewError(NameNotFound, sp(1, 3, 4), "unknown symbol"))
	if !bag.HasErrors() {
		t.Fatal("error not detected")
	}
	if bag.ErrorCount() != 1 {
		t.Fatalf("ErrorCount = %d, want 1", bag.ErrorCount())
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewError(TypeMismatch, sp(2, 5, 6), "later file"))
	bag.Add(NewWarning(NameUnusedImport, sp(1, 10, 12), "warn"))
	bag.Add(NewError(NameNotFound, sp(1, 10, 12), "err"))
	bag.Add(NewError(TypeMismatch, sp(1, 0, 4), "first"))
	bag.Sort()

	items := bag.Items()
	if items[0].Message != "first" {
		t.Fatalf("items[0] = %q", items[0].Message)
	}
	// Same span: error sorts before warning.
	if items[1].Message != "err" || items[2].Message != "warn" {
		t.Fatalf("severity tie-break wrong: %q, %q", items[1].Message, items[2].Message)
	}
	if items[3].Message != "later file" {
		t.Fatalf("items[3] = %q", items[3].Message)
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(TypeMismatch, sp(1, 0, 1), "a"))
	b := NewBag(1)
	b.Add(NewError(TypeMismatch, sp(1, 1, 2), "b"))
	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("merged Len = %d, want 2", a.Len())
	}
}

func TestInternalCodes(t *testing.T) {
	if !InternalUntypedNode.IsInternal() {
		t.Fatal("InternalUntypedNode not internal")
	}
	if TypeMismatch.IsInternal() {
		t.Fatal("TypeMismatch flagged internal")
	}
	bag := NewBag(4)
	bag.Add(NewError(InternalUntypedNode, sp(1, 0, 0), "node left untyped"))
	if !bag.HasInternal() {
		t.Fatal("HasInternal = false")
	}
}
