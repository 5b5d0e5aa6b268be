package codegen

import (
	"fmt"
	"go/token"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"bitcat/internal/diag"
	"bitcat/internal/resolve"
)

// names holds every identifier the generated file declares at package level.
type names struct {
	Flag      string // Permissions
	Bits      string // PermissionsBits
	FromRaw   string // PermissionsBitsFromRaw
	AllFlags  string // PermissionsFlags
	Raw       string // PermissionsRaw, только для u128
	mask      string // permissionsMask
	table     string // permissionsTable
	hexHelper string // permissionsHex
}

func newNames(typeName string) names {
	lower := lowerFirst(typeName)
	return names{
		Flag:      typeName,
		Bits:      typeName + "Bits",
		FromRaw:   typeName + "BitsFromRaw",
		AllFlags:  typeName + "Flags",
		Raw:       typeName + "Raw",
		mask:      lower + "Mask",
		table:     lower + "Table",
		hexHelper: lower + "Hex",
	}
}

func (n names) reserved(wide bool) map[string]string {
	out := map[string]string{
		n.Flag:      "the flag type",
		n.Bits:      "the set type",
		n.FromRaw:   "the raw constructor",
		n.AllFlags:  "the flag list function",
		n.mask:      "the width mask",
		n.table:     "the flag table",
		n.hexHelper: "the hex formatter",
	}
	if wide {
		out[n.Raw] = "the 128-bit raw type"
	}
	// импорты сгенерированного файла
	out["fmt"] = "an imported package"
	out["strings"] = "an imported package"
	return out
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// checkNames reports catalog and flag names that cannot be used as Go
// identifiers in the generated file.
func checkNames(t *resolve.Table, pkg string, n names, reporter diag.Reporter) bool {
	ok := true
	if !token.IsIdentifier(pkg) || pkg == "_" {
		diag.ReportError(reporter, diag.GenInvalidIdentifier, t.Span,
			fmt.Sprintf("package name %q is not a valid Go identifier", pkg)).Emit()
		ok = false
	}
	if !token.IsIdentifier(t.Name) || !token.IsExported(t.Name) {
		diag.ReportError(reporter, diag.GenInvalidIdentifier, t.Span,
			fmt.Sprintf("catalog name %q must be an exported Go identifier", t.Name)).Emit()
		return false
	}

	reserved := n.reserved(t.Repr.Wide())
	for _, e := range t.Entries {
		switch {
		case !token.IsIdentifier(e.Name) || e.Name == "_":
			msg := fmt.Sprintf("flag name %q is not a valid Go identifier", e.Name)
			if token.IsKeyword(e.Name) {
				msg = fmt.Sprintf("flag name %q is a Go keyword", e.Name)
			}
			diag.ReportError(reporter, diag.GenInvalidIdentifier, e.Span, msg).Emit()
			ok = false
		case reserved[e.Name] != "":
			diag.ReportError(reporter, diag.GenNameCollision, e.Span,
				fmt.Sprintf("flag name %q collides with %s of the generated code", e.Name, reserved[e.Name])).Emit()
			ok = false
		case isPredeclared(e.Name):
			diag.ReportError(reporter, diag.GenNameCollision, e.Span,
				fmt.Sprintf("flag name %q shadows a predeclared Go identifier", e.Name)).Emit()
			ok = false
		}
	}
	return ok
}

var predeclared = strings.Fields(`any bool byte comparable complex64 complex128 error float32 float64
	int int8 int16 int32 int64 rune string uint uint8 uint16 uint32 uint64 uintptr
	true false iota nil append cap clear close complex copy delete imag len make
	max min new panic print println real recover`)

func isPredeclared(name string) bool {
	return slices.Contains(predeclared, name)
}
