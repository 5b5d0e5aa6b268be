package diag

import (
	"errors"
	"strings"
	"testing"

	"bitcat/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 3; i++ {
		bag.Add(NewError(CatConflict, source.Span{}, "conflict"))
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", bag.Dropped())
	}
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	late := source.Span{File: 1, Start: 20, End: 22}
	early := source.Span{File: 1, Start: 3, End: 5}
	bag.Add(NewError(ResUnknownReference, late, "unknown flag \"F\""))
	bag.Add(New(SevWarning, ResZeroFlag, early, "zero"))
	bag.Add(NewError(ResCyclicDefinition, early, "cycle"))
	bag.Add(NewError(ResUnknownReference, late, "unknown flag \"F\""))

	bag.Dedup()
	bag.Sort()

	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("Len after dedup = %d, want 3", len(items))
	}
	want := []Code{ResCyclicDefinition, ResZeroFlag, ResUnknownReference}
	for i, code := range want {
		if items[i].Code != code {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Code.ID(), code.ID())
		}
	}
}

func TestBagErrAggregates(t *testing.T) {
	bag := NewBag(0)
	if bag.Err() != nil {
		t.Fatal("empty bag must not fail")
	}
	bag.Add(New(SevWarning, ResNonOrOperator, source.Span{}, "uses &"))
	if bag.Err() != nil {
		t.Fatal("warnings alone must not fail")
	}
	bag.Add(NewError(ResCyclicDefinition, source.Span{}, "cyclic definition of \"D\""))
	bag.Add(NewError(ResUnknownReference, source.Span{}, "unknown flag \"F\""))

	err := bag.Err()
	var agg *Error
	if !errors.As(err, &agg) {
		t.Fatalf("Err() = %T, want *Error", err)
	}
	if len(agg.Diagnostics) != 2 {
		t.Fatalf("aggregate holds %d diagnostics, want 2", len(agg.Diagnostics))
	}
	msg := err.Error()
	if !strings.Contains(msg, "RES3002") || !strings.Contains(msg, "RES3001") {
		t.Errorf("aggregate message %q lacks codes", msg)
	}
}

func TestBagFilterTransform(t *testing.T) {
	bag := NewBag(0)
	bag.Add(New(SevWarning, ResZeroFlag, source.Span{}, "zero"))
	bag.Add(New(SevInfo, CatInfo, source.Span{}, "info"))

	bag.Transform(func(d Diagnostic) Diagnostic {
		if d.Severity == SevWarning {
			d.Severity = SevError
		}
		return d
	})
	if !bag.HasErrors() {
		t.Fatal("promoted warning should be an error")
	}
	bag.Filter(func(d Diagnostic) bool { return d.Severity != SevInfo })
	if bag.Len() != 1 {
		t.Fatalf("Len after filter = %d", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 1, Start: 1, End: 2}
	r.Report(ResUnknownReference, SevError, sp, "unknown flag \"F\"", nil)
	r.Report(ResUnknownReference, SevError, sp, "unknown flag \"F\"", nil)
	r.Report(ResUnknownReference, SevError, sp.ShiftRight(1), "unknown flag \"F\"", nil)
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	counter := &CountingReporter{Next: BagReporter{Bag: bag}}
	b := ReportError(counter, CatDuplicateFlag, source.Span{}, "duplicate flag \"A\"").
		WithNote(source.Span{File: 1}, "first declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 || counter.Errors != 1 {
		t.Fatalf("Len = %d, Errors = %d; want 1, 1", bag.Len(), counter.Errors)
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("note lost")
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("perm.toml", []byte("[[flag]]\nname = \"D\"\ncompound = \"D\"\n"))
	diags := []Diagnostic{
		NewError(ResCyclicDefinition, source.Span{File: id, Start: 16, End: 19}, "cyclic definition of \"D\": D -> D"),
		NewError(CatMissingRepresentation, source.Span{}, "catalog has no repr"),
	}
	got := FormatShortDiagnostics(diags, fs, false)
	want := "error CAT1001 :0:0 catalog has no repr\n" +
		"error RES3002 perm.toml:2:8 cyclic definition of \"D\": D -> D"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBagDroppedWarningsAreNotErrors(t *testing.T) {
	bag := NewBag(1)
	bag.Add(New(SevWarning, ResZeroFlag, source.Span{}, "zero"))
	bag.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	if bag.HasErrors() {
		t.Fatal("dropped info must not count as an error")
	}
	if bag.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", bag.Dropped())
	}
}

func TestSeverityLabelAndEscalate(t *testing.T) {
	tests := []struct {
		sev       Severity
		label     string
		escalated Severity
	}{
		{SevInfo, "info", SevInfo},
		{SevWarning, "warning", SevError},
		{SevError, "error", SevError},
	}
	for _, tt := range tests {
		if got := tt.sev.Label(); got != tt.label {
			t.Fatalf("%v.Label() = %q, want %q", tt.sev, got, tt.label)
		}
		if got := tt.sev.Escalate(); got != tt.escalated {
			t.Fatalf("%v.Escalate() = %v, want %v", tt.sev, got, tt.escalated)
		}
	}
}
