package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"bitcat/internal/diag"
	"bitcat/internal/expr"
	"bitcat/internal/source"
	"bitcat/internal/word"
)

type document struct {
	Catalog catalogTable `toml:"catalog"`
	Flags   []flagTable  `toml:"flag"`
}

type catalogTable struct {
	Name            string `toml:"name"`
	Package         string `toml:"package"`
	Repr            string `toml:"repr"`
	PtrBits         uint   `toml:"ptr_bits"`
	AutoAssign      bool   `toml:"auto_assign"`
	StrictOperators bool   `toml:"strict_operators"`
}

type flagTable struct {
	Name     string       `toml:"name"`
	Value    literalValue `toml:"value"`
	Compound *string      `toml:"compound"`
}

// literalValue accepts a TOML integer or a string, so that values beyond
// int64 can be written as "0xffff_ffff_ffff_ffff".
type literalValue struct {
	set  bool
	text string
	bad  string
}

func (l *literalValue) UnmarshalTOML(v any) error {
	l.set = true
	switch x := v.(type) {
	case int64:
		if x < 0 {
			l.bad = fmt.Sprintf("flag value %d is negative", x)
			return nil
		}
		l.text = strconv.FormatInt(x, 10)
	case string:
		l.text = strings.TrimSpace(x)
	default:
		l.bad = fmt.Sprintf("flag value must be an integer or a string, found %T", v)
	}
	return nil
}

// Load decodes the catalog stored in file id of fs. Problems with individual
// entries are reported and the catalog is still returned, so later phases can
// report theirs too. nil is returned only when the TOML cannot be decoded.
func Load(fs *source.FileSet, id source.FileID, reporter diag.Reporter) *Catalog {
	f := fs.Get(id)
	if f == nil {
		return nil
	}
	fileStart := source.Span{File: f.ID}

	var doc document
	meta, err := toml.Decode(string(f.Content), &doc)
	if err != nil {
		diag.ReportError(reporter, diag.CatDecode, decodeErrorSpan(f, err),
			fmt.Sprintf("cannot decode catalog: %s", decodeErrorMessage(err))).Emit()
		return nil
	}
	lay := locate(f)

	cat := &Catalog{
		File:            f.ID,
		Path:            f.Path,
		Name:            norm.NFC.String(strings.TrimSpace(doc.Catalog.Name)),
		Package:         strings.TrimSpace(doc.Catalog.Package),
		ReprName:        strings.TrimSpace(doc.Catalog.Repr),
		HasRepr:         meta.IsDefined("catalog", "repr"),
		PtrBits:         doc.Catalog.PtrBits,
		AutoAssign:      doc.Catalog.AutoAssign,
		StrictOperators: doc.Catalog.StrictOperators,
		Span:            fileStart,
		Exprs:           expr.NewExprs(uint(len(doc.Flags)) * 4),
	}
	if lay.Catalog != nil {
		cat.Span = lay.Catalog.Header
	}
	cat.ReprSpan = lay.Catalog.span("repr", cat.Span)
	if cat.Name == "" {
		diag.ReportError(reporter, diag.CatMissingName, lay.Catalog.span("name", cat.Span),
			"catalog has no name; set [catalog].name to the Go type name of the flags").Emit()
	}
	if cat.Package == "" {
		cat.Package = strings.ToLower(cat.Name)
	}

	for _, key := range meta.Undecoded() {
		diag.ReportWarning(reporter, diag.CatDecode, undecodedSpan(lay, key, cat.Span),
			fmt.Sprintf("unknown key %q is ignored", key.String())).Emit()
	}

	cat.Flags = make([]Flag, 0, len(doc.Flags))
	for i := range doc.Flags {
		var tbl *tableLoc
		if i < len(lay.Flags) {
			tbl = lay.Flags[i]
		}
		cat.Flags = append(cat.Flags, loadFlag(fs, f, cat, &doc.Flags[i], tbl, reporter))
	}
	return cat
}

func loadFlag(fs *source.FileSet, f *source.File, cat *Catalog, ft *flagTable, tbl *tableLoc, reporter diag.Reporter) Flag {
	fl := Flag{
		Name: norm.NFC.String(strings.TrimSpace(ft.Name)),
		Span: tbl.span("name", cat.Span),
	}
	if fl.Name == "" {
		diag.ReportError(reporter, diag.CatMissingName, fl.Span, "flag has no name").Emit()
	}

	if ft.Value.set {
		fl.HasLiteral = true
		fl.LiteralSpan = tbl.span("value", fl.Span)
		switch {
		case ft.Value.bad != "":
			diag.ReportError(reporter, diag.CatBadLiteral, fl.LiteralSpan, ft.Value.bad).Emit()
		default:
			v, err := word.ParseLiteral(ft.Value.text)
			if err != nil {
				diag.ReportError(reporter, diag.CatBadLiteral, fl.LiteralSpan,
					fmt.Sprintf("flag %q: %v", fl.Name, err)).Emit()
				break
			}
			fl.Literal = v
		}
	}

	if ft.Compound != nil {
		fl.HasCompound = true
		fl.CompoundSpan = tbl.span("compound", fl.Span)
		fl.Compound = parseCompound(fs, f, cat, fl.Name, *ft.Compound, tbl, reporter)
	}
	return fl
}

// parseCompound parses the expression in place when the TOML string holds it
// verbatim, so diagnostics point into the catalog file. Otherwise the decoded
// text is parsed from a virtual file.
func parseCompound(fs *source.FileSet, f *source.File, cat *Catalog, name, text string, tbl *tableLoc, reporter diag.Reporter) expr.ExprID {
	if k, ok := tbl.key("compound"); ok && k.Verbatim && string(f.Content[k.Inner.Start:k.Inner.End]) == text {
		return expr.Parse(f, k.Inner.Start, k.Inner.End, cat.Exprs, reporter)
	}
	virtual := fmt.Sprintf("%s#%s.compound", f.Path, name)
	return expr.ParseString(fs, virtual, text, cat.Exprs, reporter)
}

func decodeErrorSpan(f *source.File, err error) source.Span {
	var perr toml.ParseError
	if !errors.As(err, &perr) || perr.Position.Line <= 0 {
		return source.Span{File: f.ID}
	}
	line := perr.Position.Line
	var start int
	if line > 1 && line-2 < len(f.LineIdx) {
		start = int(f.LineIdx[line-2]) + 1
	}
	end := len(f.Content)
	if line-1 < len(f.LineIdx) {
		end = int(f.LineIdx[line-1])
	}
	return mkSpan(f, start, end)
}

func decodeErrorMessage(err error) string {
	var perr toml.ParseError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}

func undecodedSpan(lay layout, key toml.Key, fallback source.Span) source.Span {
	if len(key) < 2 {
		return fallback
	}
	switch key[0] {
	case "catalog":
		if k, ok := lay.Catalog.key(key[1]); ok {
			return k.Key
		}
		return lay.Catalog.span("", fallback)
	case "flag":
		for _, tbl := range lay.Flags {
			if k, ok := tbl.key(key[1]); ok {
				return k.Key
			}
		}
	}
	return fallback
}
