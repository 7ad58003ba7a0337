package diag

import (
	"testing"

	"sable/internal/source"
)

func sp(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewError(RewriteForeignLambda, sp(0, uint32(i), uint32(i+1)), "x"))
	}
	if b.Len() != 2 {
		t.Errorf("Bag должен уважать лимит: %d", b.Len())
	}
}

func TestBagSortOrder(t *testing.T) {
	b := NewBag(10)
	b.Add(New(SevWarning, RewriteForeignLambda, sp(0, 10, 12), "later"))
	b.Add(NewError(RewriteComputedBySymbol, sp(0, 2, 4), "earlier"))
	b.Add(NewError(RewriteComputedBySymbol, sp(0, 10, 12), "same-span-error"))
	b.Sort()

	items := b.Items()
	if items[0].Message != "earlier" {
		t.Errorf("первым должен идти более ранний span: %q", items[0].Message)
	}
	// при равных span — сначала большая severity
	if items[1].Severity != SevError {
		t.Errorf("при равных span сначала error, получили %v", items[1].Severity)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	d := NewError(RewriteForeignLambda, sp(0, 1, 5), "dup")
	b.Add(d)
	b.Add(d)
	b.Dedup()
	if b.Len() != 1 {
		t.Errorf("Dedup должен схлопнуть одинаковые диагностики: %d", b.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	b := NewBag(10)
	rb := ReportError(BagReporter{Bag: b}, RewriteComputedBySymbol, sp(0, 0, 3), "msg").
		WithNote(sp(0, 4, 5), "note").
		WithFix("Convert to lambda", FixEdit{Span: sp(0, 0, 3), NewText: "-> {x}"})
	rb.Emit()
	rb.Emit()

	if b.Len() != 1 {
		t.Fatalf("Emit должен сработать ровно один раз: %d", b.Len())
	}
	d := b.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Errorf("диагностика должна нести note и fix: %+v", d)
	}
	if d.Fixes[0].Edits[0].NewText != "-> {x}" {
		t.Errorf("fix edit потерян: %+v", d.Fixes[0])
	}
}
