// Package classify validates the structure of a decoded catalog and decides
// where every flag's value comes from. It runs before resolution: when it
// reports an error no value is computed.
package classify

import (
	"fmt"

	"lukechampine.com/uint128"

	"bitcat/internal/catalog"
	"bitcat/internal/diag"
	"bitcat/internal/word"
)

// Check validates the representation and the value source of every flag and
// sets Flag.Source. ok is false if any error was reported; all structural
// problems are reported, not only the first one.
func Check(cat *catalog.Catalog, reporter diag.Reporter) (repr word.Repr, ok bool) {
	counter := &diag.CountingReporter{Next: reporter}

	// ширина проверяется первой, без неё остальное не имеет смысла
	if !cat.HasRepr || cat.ReprName == "" {
		diag.ReportError(counter, diag.CatMissingRepresentation, cat.Span,
			fmt.Sprintf("catalog %q has no repr; set [catalog].repr to one of u8, u16, u32, u64, u128, usize", cat.Name)).Emit()
		return word.Repr{}, false
	}
	repr, err := word.ParseRepr(cat.ReprName, cat.PtrBits)
	if err != nil {
		diag.ReportError(counter, diag.CatInvalidRepresentation, cat.ReprSpan, err.Error()).Emit()
		return word.Repr{}, false
	}

	if len(cat.Flags) == 0 {
		diag.ReportWarning(counter, diag.CatEmpty, cat.Span,
			fmt.Sprintf("catalog %q declares no flags", cat.Name)).Emit()
	}

	first := make(map[string]int, len(cat.Flags))
	for i := range cat.Flags {
		fl := &cat.Flags[i]
		if fl.Name != "" {
			if prev, dup := first[fl.Name]; dup {
				diag.ReportError(counter, diag.CatDuplicateFlag, fl.Span,
					fmt.Sprintf("flag %q is declared more than once", fl.Name)).
					WithNote(cat.Flags[prev].Span, "first declared here").
					Emit()
			} else {
				first[fl.Name] = i
			}
		}
		fl.Source = sourceOf(cat, fl, counter)
		if fl.Source == catalog.SourceLiteral && !repr.Fits(fl.Literal) {
			diag.ReportError(counter, diag.ResValueOverflow, fl.LiteralSpan,
				fmt.Sprintf("value %s of flag %q does not fit in %s", word.Hex(fl.Literal), fl.Name, repr)).Emit()
		}
	}
	return repr, counter.Errors == 0
}

func sourceOf(cat *catalog.Catalog, fl *catalog.Flag, reporter diag.Reporter) catalog.Source {
	switch {
	case fl.HasLiteral && fl.HasCompound:
		diag.ReportError(reporter, diag.CatConflict, fl.Span,
			fmt.Sprintf("flag %q has both an explicit value and a compound expression", fl.Name)).
			WithNote(fl.CompoundSpan, "compound given here").
			Emit()
	case fl.HasLiteral && cat.AutoAssign:
		diag.ReportError(reporter, diag.CatConflict, fl.LiteralSpan,
			fmt.Sprintf("flag %q has an explicit value but the catalog auto-assigns values; remove auto_assign to assign values manually", fl.Name)).Emit()
	case fl.HasLiteral:
		return catalog.SourceLiteral
	case fl.HasCompound:
		return catalog.SourceCompound
	case cat.AutoAssign:
		return catalog.SourceAuto
	default:
		diag.ReportError(reporter, diag.CatMissingSource, fl.Span,
			fmt.Sprintf("flag %q needs a value, a compound expression, or auto_assign = true", fl.Name)).Emit()
	}
	return catalog.SourceUnknown
}

// AutoAssign gives the k-th auto flag the value 1 << k, storing it in
// Flag.Literal. Flags that do not fit the width are reported.
func AutoAssign(cat *catalog.Catalog, repr word.Repr, reporter diag.Reporter) bool {
	ok := true
	var k uint
	for i := range cat.Flags {
		fl := &cat.Flags[i]
		if fl.Source != catalog.SourceAuto {
			continue
		}
		if k >= repr.Bits {
			diag.ReportError(reporter, diag.ResValueOverflow, fl.Span,
				fmt.Sprintf("flag %q would get bit %d, but %s has only %d bits", fl.Name, k, repr, repr.Bits)).Emit()
			ok = false
			k++
			continue
		}
		fl.Literal = uint128.From64(1).Lsh(k)
		k++
	}
	return ok
}
