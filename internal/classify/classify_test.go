package classify

import (
	"testing"

	"bitcat/internal/catalog"
	"bitcat/internal/diag"
	"bitcat/internal/source"
)

func loadCatalog(t *testing.T, text string) (*catalog.Catalog, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(50)
	cat := catalog.Load(fs, fs.AddVirtual("c.toml", []byte(text)), diag.BagReporter{Bag: bag})
	if cat == nil {
		t.Fatalf("catalog did not decode: %v", bag.Items())
	}
	if bag.HasErrors() {
		t.Fatalf("load errors: %v", bag.Items())
	}
	return cat, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckSources(t *testing.T) {
	cat, bag := loadCatalog(t, `[catalog]
name = "P"
repr = "u16"
[[flag]]
name = "A"
value = 1
[[flag]]
name = "B"
compound = "A"
`)
	repr, ok := Check(cat, diag.BagReporter{Bag: bag})
	if !ok || repr.Bits != 16 {
		t.Fatalf("check failed: %v", bag.Items())
	}
	if cat.Flags[0].Source != catalog.SourceLiteral || cat.Flags[1].Source != catalog.SourceCompound {
		t.Fatalf("sources = %s, %s", cat.Flags[0].Source, cat.Flags[1].Source)
	}
}

func TestCheckRepresentation(t *testing.T) {
	tests := []struct {
		name string
		repr string
		code diag.Code
	}{
		{"missing", "", diag.CatMissingRepresentation},
		{"signed", "repr = \"i32\"\n", diag.CatInvalidRepresentation},
		{"unknown", "repr = \"foo\"\n", diag.CatInvalidRepresentation},
		{"bad ptr bits", "repr = \"usize\"\nptr_bits = 16\n", diag.CatInvalidRepresentation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// флаг без источника не должен давать второй ошибки
			cat, bag := loadCatalog(t, "[catalog]\nname = \"P\"\n"+tt.repr+"[[flag]]\nname = \"A\"\n")
			if _, ok := Check(cat, diag.BagReporter{Bag: bag}); ok {
				t.Fatalf("expected failure")
			}
			got := codes(bag)
			if len(got) != 1 || got[0] != tt.code {
				t.Fatalf("codes = %v, want [%s]", got, tt.code.ID())
			}
		})
	}
}

func TestCheckReportsEveryFlag(t *testing.T) {
	cat, bag := loadCatalog(t, `[catalog]
name = "P"
repr = "u8"
[[flag]]
name = "Both"
value = 1
compound = "Both"
[[flag]]
name = "Nothing"
[[flag]]
name = "Big"
value = 256
[[flag]]
name = "Big"
value = 2
`)
	if _, ok := Check(cat, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("expected failure")
	}
	bag.Sort()
	want := map[diag.Code]int{
		diag.CatConflict:      1,
		diag.CatMissingSource: 1,
		diag.ResValueOverflow: 1,
		diag.CatDuplicateFlag: 1,
	}
	got := map[diag.Code]int{}
	for _, c := range codes(bag) {
		got[c]++
	}
	for c, n := range want {
		if got[c] != n {
			t.Errorf("%s: got %d diagnostics, want %d (all: %v)", c.ID(), got[c], n, bag.Items())
		}
	}
}

func TestCheckLiteralWithAutoAssign(t *testing.T) {
	cat, bag := loadCatalog(t, "[catalog]\nname = \"P\"\nrepr = \"u8\"\nauto_assign = true\n[[flag]]\nname = \"A\"\nvalue = 4\n")
	if _, ok := Check(cat, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("expected conflict")
	}
	if got := codes(bag); len(got) != 1 || got[0] != diag.CatConflict {
		t.Fatalf("codes = %v", got)
	}
}

func TestCheckEmptyCatalogWarns(t *testing.T) {
	cat, bag := loadCatalog(t, "[catalog]\nname = \"P\"\nrepr = \"u8\"\n")
	if _, ok := Check(cat, diag.BagReporter{Bag: bag}); !ok {
		t.Fatalf("empty catalog must not fail")
	}
	if !bag.HasWarnings() || codes(bag)[0] != diag.CatEmpty {
		t.Fatalf("expected %s warning, got %v", diag.CatEmpty.ID(), bag.Items())
	}
}

func TestAutoAssign(t *testing.T) {
	cat, bag := loadCatalog(t, `[catalog]
name = "P"
repr = "u8"
auto_assign = true
[[flag]]
name = "A"
[[flag]]
name = "AB"
compound = "A | B"
[[flag]]
name = "B"
[[flag]]
name = "C"
`)
	repr, ok := Check(cat, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("check failed: %v", bag.Items())
	}
	if !AutoAssign(cat, repr, diag.BagReporter{Bag: bag}) {
		t.Fatalf("auto assign failed: %v", bag.Items())
	}
	want := map[string]uint64{"A": 1, "B": 2, "C": 4}
	for _, fl := range cat.Flags {
		if fl.Source != catalog.SourceAuto {
			continue
		}
		if fl.Literal.Lo != want[fl.Name] {
			t.Errorf("%s = %d, want %d", fl.Name, fl.Literal.Lo, want[fl.Name])
		}
	}
}

func TestAutoAssignOverflow(t *testing.T) {
	text := "[catalog]\nname = \"P\"\nrepr = \"u8\"\nauto_assign = true\n"
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"} {
		text += "[[flag]]\nname = \"" + n + "\"\n"
	}
	cat, bag := loadCatalog(t, text)
	repr, _ := Check(cat, diag.BagReporter{Bag: bag})
	if AutoAssign(cat, repr, diag.BagReporter{Bag: bag}) {
		t.Fatalf("ninth flag must not fit in u8")
	}
	if got := codes(bag); len(got) != 1 || got[0] != diag.ResValueOverflow {
		t.Fatalf("codes = %v", got)
	}
	if cat.Flags[7].Literal.Lo != 0x80 {
		t.Fatalf("H = %d", cat.Flags[7].Literal.Lo)
	}
}
