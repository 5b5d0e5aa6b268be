package resolve

import (
	"strings"
	"testing"

	"bitcat/internal/catalog"
	"bitcat/internal/classify"
	"bitcat/internal/diag"
	"bitcat/internal/source"
)

// run loads text, classifies it and resolves it. Header lines are added.
func run(t *testing.T, header, flags string) (*Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(50)
	rep := diag.BagReporter{Bag: bag}
	cat := catalog.Load(fs, fs.AddVirtual("c.toml", []byte("[catalog]\nname = \"Permissions\"\n"+header+flags)), rep)
	if cat == nil || bag.HasErrors() {
		t.Fatalf("load failed: %v", bag.Items())
	}
	repr, ok := classify.Check(cat, rep)
	if !ok {
		t.Fatalf("classify failed: %v", bag.Items())
	}
	if !classify.AutoAssign(cat, repr, rep) {
		t.Fatalf("auto assign failed: %v", bag.Items())
	}
	table, _ := Run(cat, repr, rep)
	return table, bag
}

func flagsText(defs ...string) string {
	var b strings.Builder
	for _, d := range defs {
		name, rest, _ := strings.Cut(d, "=")
		b.WriteString("[[flag]]\nname = \"" + name + "\"\n")
		switch {
		case rest == "":
		case strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' }) < 0:
			b.WriteString("value = " + rest + "\n")
		default:
			b.WriteString("compound = \"" + rest + "\"\n")
		}
	}
	return b.String()
}

func values(t *testing.T, table *Table) map[string]uint64 {
	t.Helper()
	out := make(map[string]uint64, table.Len())
	for _, e := range table.Entries {
		out[e.Name] = e.Value.Lo
	}
	return out
}

func onlyCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	var found []diag.Diagnostic
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			found = append(found, d)
		}
	}
	if len(found) != 1 || found[0].Code != code {
		t.Fatalf("want exactly one %s error, got %v", code.ID(), bag.Items())
	}
	return found[0]
}

func TestAutoAssignedValues(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\nauto_assign = true\n", flagsText("A", "B", "C"))
	if table == nil {
		t.Fatalf("resolve failed: %v", bag.Items())
	}
	got := values(t, table)
	if got["A"] != 1 || got["B"] != 2 || got["C"] != 4 {
		t.Fatalf("values = %v", got)
	}
}

func TestCompoundOfLiterals(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "B=2", "C=A | B"))
	if table == nil {
		t.Fatalf("resolve failed: %v", bag.Items())
	}
	if got := values(t, table); got["C"] != 3 {
		t.Fatalf("C = %d", got["C"])
	}
	if e, _ := table.Lookup("C"); e.Source != catalog.SourceCompound {
		t.Fatalf("C source = %s", e.Source)
	}
}

func TestForwardReferencesAndMixedSources(t *testing.T) {
	table, bag := run(t, "repr = \"u16\"\nauto_assign = true\n",
		flagsText("All=ReadWrite | Exec", "Read", "ReadWrite=Read | Write", "Write", "Exec"))
	if table == nil {
		t.Fatalf("resolve failed: %v", bag.Items())
	}
	got := values(t, table)
	if got["Read"] != 1 || got["Write"] != 2 || got["Exec"] != 4 || got["ReadWrite"] != 3 || got["All"] != 7 {
		t.Fatalf("values = %v", got)
	}
	// порядок объявления сохраняется
	if table.Entries[0].Name != "All" || table.Entries[4].Name != "Exec" {
		t.Fatalf("order = %v", table.Entries)
	}
}

func TestSharedDependencyIsNotACycle(t *testing.T) {
	tests := []struct {
		name string
		defs []string
	}{
		{"declared in order", []string{"A=1", "B=A", "C=A | B", "D=B | C | B"}},
		{"dependents first", []string{"D=B | C | B", "C=A | B", "B=A", "A=1"}},
		{"diamond", []string{"Top=Left | Right", "Left=Base", "Right=Base", "Base=4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, bag := run(t, "repr = \"u8\"\n", flagsText(tt.defs...))
			if table == nil {
				t.Fatalf("resolve failed: %v", bag.Items())
			}
			if bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", bag.Items())
			}
			for _, e := range table.Entries {
				if e.Value.IsZero() {
					t.Fatalf("%s resolved to zero: %v", e.Name, values(t, table))
				}
			}
			got := values(t, table)
			if _, ok := got["A"]; ok && (got["A"] != 1 || got["B"] != 1 || got["C"] != 1 || got["D"] != 1) {
				t.Fatalf("values = %v", got)
			}
			if _, ok := got["Top"]; ok && got["Top"] != 4 {
				t.Fatalf("values = %v", got)
			}
		})
	}
}

func TestSelfCycle(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\n", flagsText("D=D"))
	if table != nil {
		t.Fatalf("expected failure")
	}
	d := onlyCode(t, bag, diag.ResCyclicDefinition)
	if !strings.Contains(d.Message, `"D"`) || !strings.Contains(d.Message, "D -> D") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestLongCycleReportedOnce(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\n", flagsText("A=B", "B=C", "C=A", "X=1"))
	if table != nil {
		t.Fatalf("expected failure")
	}
	d := onlyCode(t, bag, diag.ResCyclicDefinition)
	if !strings.Contains(d.Message, "A -> B -> C -> A") {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestUnknownReference(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "E=F | A"))
	if table != nil {
		t.Fatalf("expected failure")
	}
	d := onlyCode(t, bag, diag.ResUnknownReference)
	if !strings.Contains(d.Message, `"F"`) {
		t.Fatalf("message = %q", d.Message)
	}
}

func TestSiblingErrorsAccumulate(t *testing.T) {
	_, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "Loop=Loop", "Bad=Missing", "Good=A", "Dep=Bad | A"))
	var cyc, unknown int
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.ResCyclicDefinition:
			cyc++
		case diag.ResUnknownReference:
			unknown++
		}
	}
	// Dep повторно проходит через Bad, но ошибка не дублируется
	if cyc != 1 || unknown != 1 {
		t.Fatalf("cycles=%d unknown=%d: %v", cyc, unknown, bag.Items())
	}
}

func TestZeroFlagWarning(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "None=A & 2"))
	if table == nil {
		t.Fatalf("zero value must not fail resolution: %v", bag.Items())
	}
	var zero, nonOr int
	for _, d := range bag.Items() {
		switch d.Code {
		case diag.ResZeroFlag:
			zero++
		case diag.ResNonOrOperator:
			nonOr++
		}
	}
	if zero != 1 || nonOr != 1 {
		t.Fatalf("zero=%d nonOr=%d: %v", zero, nonOr, bag.Items())
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		expr string
		want uint64
	}{
		{"A | B", 3},
		{"(A | B) & B", 2},
		{"All ^ A", 0xfe},
		{"All &^ B", 0xfd},
		{"A << 3", 8},
		{"All >> 4", 0x0f},
		{"!A", 0xfe},
		{"~All", 0},
		{"B + A", 3},
		{"B * 4", 8},
		{"0x10 | A", 0x11},
	}
	for _, tt := range tests {
		table, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "B=2", "All=255", "X="+tt.expr))
		if table == nil {
			t.Errorf("%q: %v", tt.expr, bag.Items())
			continue
		}
		if got := values(t, table)["X"]; got != tt.want {
			t.Errorf("%q = %#x, want %#x", tt.expr, got, tt.want)
		}
	}
}

func TestResolutionErrors(t *testing.T) {
	tests := []struct {
		expr string
		code diag.Code
	}{
		{"A << 8", diag.ResValueOverflow},
		{"All + A", diag.ResValueOverflow},
		{"A - B", diag.ResValueOverflow},
		{"0x100", diag.ResValueOverflow},
		{"-A", diag.ResUnsupportedExpression},
		{"f(A)", diag.ResUnsupportedExpression},
		{"Self.A", diag.ResUnsupportedExpression},
		{"'A'", diag.ResUnsupportedExpression},
	}
	for _, tt := range tests {
		table, bag := run(t, "repr = \"u8\"\n", flagsText("A=1", "B=2", "All=255", "X="+tt.expr))
		if table != nil {
			t.Errorf("%q: expected failure", tt.expr)
			continue
		}
		onlyCode(t, bag, tt.code)
	}
}

func TestStrictOperators(t *testing.T) {
	table, bag := run(t, "repr = \"u8\"\nstrict_operators = true\n", flagsText("A=3", "B=A & 1"))
	if table != nil {
		t.Fatalf("expected failure")
	}
	onlyCode(t, bag, diag.ResNonOrOperator)
}

func TestWideValues(t *testing.T) {
	table, bag := run(t, "repr = \"u128\"\nauto_assign = true\n", flagsText("A", "B", "Top=A << 127"))
	if table == nil {
		t.Fatalf("resolve failed: %v", bag.Items())
	}
	top, _ := table.Lookup("Top")
	if top.Value.Hi != 1<<63 || top.Value.Lo != 0 {
		t.Fatalf("Top = %v", top.Value)
	}
}

func TestResolveByName(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	cat := catalog.Load(fs, fs.AddVirtual("c.toml", []byte("[catalog]\nname = \"P\"\nrepr = \"u8\"\nauto_assign = true\n"+flagsText("A", "B", "AB=A | B"))), rep)
	repr, _ := classify.Check(cat, rep)
	classify.AutoAssign(cat, repr, rep)
	r := New(cat, repr, rep)
	if v, ok := r.Resolve("AB"); !ok || v.Lo != 3 {
		t.Fatalf("AB = %v %v (%v)", v, ok, bag.Items())
	}
	if _, ok := r.Resolve("Nope"); ok {
		t.Fatalf("unknown name must fail")
	}
	if !r.Failed() {
		t.Fatalf("unknown name must be reported")
	}
}
