// Package codegen renders a resolved catalog as a self-contained Go file that
// implements the bitset contract: a flag type with one constant per flag, a
// set type with the full algebra, and the decomposition format.
package codegen

import (
	"errors"
	"fmt"
	"go/format"
	"strings"

	"lukechampine.com/uint128"

	"bitcat/internal/diag"
	"bitcat/internal/resolve"
	"bitcat/internal/word"
)

// ErrInvalidNames is returned when names were rejected; the reasons are
// reported as diagnostics.
var ErrInvalidNames = errors.New("catalog names cannot be used in Go code")

// Options controls the generated file.
type Options struct {
	// SourcePath is mentioned in the "Code generated" header.
	SourcePath string
	// Package overrides the package name of the table.
	Package string
}

type generator struct {
	t    *resolve.Table
	n    names
	pkg  string
	wide bool
	raw  string // Go type of raw values
	buf  strings.Builder
}

// Generate returns gofmt-formatted Go source for t.
func Generate(t *resolve.Table, opts Options, reporter diag.Reporter) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = t.Package
	}
	g := &generator{
		t:    t,
		n:    newNames(t.Name),
		pkg:  pkg,
		wide: t.Repr.Wide(),
	}
	if !checkNames(t, pkg, g.n, reporter) {
		return nil, ErrInvalidNames
	}
	g.raw = t.Repr.GoType()
	if g.wide {
		g.raw = g.n.Raw
	}

	g.header(opts.SourcePath)
	if g.wide {
		g.rawType()
	}
	g.flagType()
	g.setType()

	src, err := format.Source([]byte(g.buf.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return src, nil
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

// Выражения над raw-значениями: для u128 это методы PermissionsRaw.

func (g *generator) or(a, b string) string {
	if g.wide {
		return a + ".or(" + b + ")"
	}
	return a + " | " + b
}

func (g *generator) and(a, b string) string {
	if g.wide {
		return a + ".and(" + b + ")"
	}
	return a + " & " + b
}

func (g *generator) xor(a, b string) string {
	if g.wide {
		return a + ".xor(" + b + ")"
	}
	return a + " ^ " + b
}

func (g *generator) andNot(a, b string) string {
	if g.wide {
		return a + ".andNot(" + b + ")"
	}
	return a + " &^ " + b
}

func (g *generator) not(a string) string {
	if g.wide {
		return a + ".not()"
	}
	return "^" + a + " & " + g.n.mask
}

func (g *generator) isZero(a string) string {
	if g.wide {
		return a + " == (" + g.raw + "{})"
	}
	return a + " == 0"
}

func (g *generator) rawOf(flag string) string {
	return g.raw + "(" + flag + ")"
}

func (g *generator) literal(v uint128.Uint128) string {
	if g.wide {
		return fmt.Sprintf("%s{Lo: %#x, Hi: %#x}", g.n.Flag, v.Lo, v.Hi)
	}
	return word.Hex(v)
}

func (g *generator) header(sourcePath string) {
	if sourcePath != "" {
		g.p("// Code generated by bitcat from %s; DO NOT EDIT.", sourcePath)
	} else {
		g.p("// Code generated by bitcat; DO NOT EDIT.")
	}
	g.p("")
	g.p("package %s", g.pkg)
	g.p("")
	g.p("import (")
	g.p("\t%q", "fmt")
	g.p("\t%q", "strings")
	g.p(")")
	g.p("")

	if !g.wide {
		mask := word.Hex(g.t.Repr.Mask())
		if g.t.Repr.Kind == word.KindUsize && g.t.Repr.Bits == 64 {
			mask = "^uint(0)"
		}
		g.p("const %s %s = %s", g.n.mask, g.raw, mask)
		g.p("")
	}
	g.p("func %s(raw %s) string {", g.n.hexHelper, g.raw)
	if g.wide {
		g.p("if raw.Hi == 0 {")
		g.p("return fmt.Sprintf(\"%%#x\", raw.Lo)")
		g.p("}")
		g.p("return fmt.Sprintf(\"%%#x%%016x\", raw.Hi, raw.Lo)")
	} else {
		g.p("return fmt.Sprintf(\"%%#x\", raw)")
	}
	g.p("}")
	g.p("")
}

func (g *generator) rawType() {
	r := g.n.Raw
	g.p("// %s is a 128-bit raw value split into two 64-bit halves.", r)
	g.p("type %s struct {", r)
	g.p("Lo, Hi uint64")
	g.p("}")
	g.p("")
	for _, op := range []struct{ name, sym string }{{"or", "|"}, {"and", "&"}, {"xor", "^"}, {"andNot", "&^"}} {
		g.p("func (r %s) %s(o %s) %s { return %s{Lo: r.Lo %s o.Lo, Hi: r.Hi %s o.Hi} }", r, op.name, r, r, r, op.sym, op.sym)
	}
	g.p("func (r %s) not() %s { return %s{Lo: ^r.Lo, Hi: ^r.Hi} }", r, r, r)
	g.p("")
}

func (g *generator) flagType() {
	n := g.n
	g.p("// %s is a single flag of the %s catalog.", n.Flag, g.t.Name)
	if g.wide {
		g.p("type %s %s", n.Flag, n.Raw)
		g.p("")
		g.p("var (")
		for _, e := range g.t.Entries {
			g.p("%s = %s", e.Name, g.literal(e.Value))
		}
		g.p(")")
	} else {
		g.p("type %s %s", n.Flag, g.raw)
		g.p("")
		g.p("const (")
		for _, e := range g.t.Entries {
			g.p("%s %s = %s", e.Name, n.Flag, g.literal(e.Value))
		}
		g.p(")")
	}
	g.p("")

	g.p("var %s = [...]struct {", n.table)
	g.p("name string")
	g.p("flag %s", n.Flag)
	g.p("}{")
	for _, e := range g.t.Entries {
		g.p("{%q, %s},", e.Name, e.Name)
	}
	g.p("}")
	g.p("")

	g.p("// %s returns every declared flag in declaration order.", n.AllFlags)
	g.p("func %s() []%s {", n.AllFlags, n.Flag)
	g.p("out := make([]%s, len(%s))", n.Flag, n.table)
	g.p("for i, e := range %s {", n.table)
	g.p("out[i] = e.flag")
	g.p("}")
	g.p("return out")
	g.p("}")
	g.p("")

	g.p("// Raw returns the value of the flag.")
	g.p("func (f %s) Raw() %s { return %s }", n.Flag, g.raw, g.rawOf("f"))
	g.p("")
	g.p("// Set converts the flag into a set holding only it.")
	g.p("func (f %s) Set() %s { return %s{raw: %s} }", n.Flag, n.Bits, n.Bits, g.rawOf("f"))
	g.p("")
	for _, op := range []string{"Or", "And", "Xor", "Sub"} {
		g.p("func (f %s) %s(o %s) %s { return f.Set().%sFlag(o) }", n.Flag, op, n.Flag, n.Bits, op)
	}
	g.p("func (f %s) Not() %s { return f.Set().Not() }", n.Flag, n.Bits)
	g.p("")
	g.p("// EqualSet reports whether s holds exactly the bits of f.")
	g.p("func (f %s) EqualSet(s %s) bool { return %s == s.raw }", n.Flag, n.Bits, g.rawOf("f"))
	g.p("")
	g.p("func (f %s) String() string {", n.Flag)
	g.p("for _, e := range %s {", n.table)
	g.p("if e.flag == f {")
	g.p("return e.name")
	g.p("}")
	g.p("}")
	g.p("return %q + %s(%s) + \")\"", n.Flag+"(", n.hexHelper, g.rawOf("f"))
	g.p("}")
	g.p("")
}

func (g *generator) setType() {
	n := g.n
	g.p("// %s is an immutable combination of %s flags.", n.Bits, n.Flag)
	g.p("type %s struct {", n.Bits)
	g.p("raw %s", g.raw)
	g.p("}")
	g.p("")

	g.p("// %s wraps raw without checking it against the declared flags.", n.FromRaw)
	if g.wide {
		g.p("func %s(raw %s) %s { return %s{raw: raw} }", n.FromRaw, g.raw, n.Bits, n.Bits)
	} else {
		g.p("func %s(raw %s) %s { return %s{raw: %s} }", n.FromRaw, g.raw, n.Bits, n.Bits, g.and("raw", n.mask))
	}
	g.p("")
	g.p("func (s %s) Raw() %s { return s.raw }", n.Bits, g.raw)
	g.p("")
	g.p("func (s %s) IsEmpty() bool { return %s }", n.Bits, g.isZero("s.raw"))
	g.p("")

	g.p("func (s %s) Or(o %s) %s { return %s{raw: %s} }", n.Bits, n.Bits, n.Bits, n.Bits, g.or("s.raw", "o.raw"))
	g.p("func (s %s) And(o %s) %s { return %s{raw: %s} }", n.Bits, n.Bits, n.Bits, n.Bits, g.and("s.raw", "o.raw"))
	g.p("func (s %s) Xor(o %s) %s { return %s{raw: %s} }", n.Bits, n.Bits, n.Bits, n.Bits, g.xor("s.raw", "o.raw"))
	g.p("")
	g.p("// Sub removes the bits of o from s.")
	g.p("func (s %s) Sub(o %s) %s { return %s{raw: %s} }", n.Bits, n.Bits, n.Bits, n.Bits, g.andNot("s.raw", "o.raw"))
	g.p("")
	g.p("// Not complements s within the width of %s.", n.Flag)
	g.p("func (s %s) Not() %s { return %s{raw: %s} }", n.Bits, n.Bits, n.Bits, g.not("s.raw"))
	g.p("")
	for _, op := range []string{"Or", "And", "Xor", "Sub"} {
		g.p("func (s %s) %sFlag(f %s) %s { return s.%s(f.Set()) }", n.Bits, op, n.Flag, n.Bits, op)
	}
	g.p("")
	g.p("func (s %s) Equal(o %s) bool { return s.raw == o.raw }", n.Bits, n.Bits)
	g.p("func (s %s) EqualFlag(f %s) bool { return s.raw == %s }", n.Bits, n.Flag, g.rawOf("f"))
	g.p("")
	g.p("// Has reports whether every bit of f is set in s. Zero flags are never contained.")
	g.p("func (s %s) Has(f %s) bool {", n.Bits, n.Flag)
	g.p("v := %s", g.rawOf("f"))
	g.p("return !(%s) && %s == v", g.isZero("v"), "("+g.and("s.raw", "v")+")")
	g.p("}")
	g.p("")
	g.p("// String lists the contained flags in declaration order, or the raw")
	g.p("// value in hex when none is contained.")
	g.p("func (s %s) String() string {", n.Bits)
	g.p("var names []string")
	g.p("for _, e := range %s {", n.table)
	g.p("if s.Has(e.flag) {")
	g.p("names = append(names, e.name)")
	g.p("}")
	g.p("}")
	g.p("if len(names) == 0 {")
	g.p("return %q + %s(s.raw) + \")\"", n.Bits+"(", n.hexHelper)
	g.p("}")
	g.p("return %q + strings.Join(names, \" | \") + \")\"", n.Bits+"(")
	g.p("}")
}
