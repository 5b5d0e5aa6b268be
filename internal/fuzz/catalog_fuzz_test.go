package fuzztests

import (
	"testing"

	"bitcat/internal/catalog"
	"bitcat/internal/classify"
	"bitcat/internal/diag"
	"bitcat/internal/resolve"
	"bitcat/internal/source"
)

// FuzzResolveCatalog runs decode, classification and resolution on arbitrary
// TOML. A successful resolution must only produce values that fit the
// representation.
func FuzzResolveCatalog(f *testing.F) {
	addCatalogSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		id := fs.AddVirtual("fuzz.toml", input)
		bag := diag.NewBag(128)
		reporter := diag.BagReporter{Bag: bag}

		cat := catalog.Load(fs, id, reporter)
		if cat == nil || bag.HasErrors() {
			return
		}
		repr, ok := classify.Check(cat, reporter)
		if !ok || !classify.AutoAssign(cat, repr, reporter) {
			return
		}
		table, ok := resolve.Run(cat, repr, reporter)
		if !ok {
			if !bag.HasErrors() {
				t.Fatalf("resolution failed without an error diagnostic")
			}
			return
		}
		if table.Len() != len(cat.Flags) {
			t.Fatalf("table has %d entries for %d flags", table.Len(), len(cat.Flags))
		}
		for _, e := range table.Entries {
			if !repr.Fits(e.Value) {
				t.Fatalf("%s = %v does not fit %s", e.Name, e.Value, repr)
			}
		}
	})
}
