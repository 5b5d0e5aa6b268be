// Package tablefmt exports resolved tables: an aligned text table for people,
// JSON and MessagePack for tools.
package tablefmt

import (
	"fmt"

	"lukechampine.com/uint128"

	"bitcat/internal/catalog"
	"bitcat/internal/resolve"
	"bitcat/internal/word"
)

// Record is one exported flag. Value is the lowercase hex form; Lo and Hi are
// the 64-bit halves for consumers without 128-bit integers.
type Record struct {
	Name   string `json:"name" msgpack:"name"`
	Value  string `json:"value" msgpack:"value"`
	Lo     uint64 `json:"lo" msgpack:"lo"`
	Hi     uint64 `json:"hi" msgpack:"hi"`
	Source string `json:"source" msgpack:"source"`
}

// Document is the exported form of a resolved table.
type Document struct {
	Catalog string   `json:"catalog" msgpack:"catalog"`
	Package string   `json:"package" msgpack:"package"`
	Repr    string   `json:"repr" msgpack:"repr"`
	Bits    uint     `json:"bits" msgpack:"bits"`
	Flags   []Record `json:"flags" msgpack:"flags"`
}

// FromTable builds the export document of t.
func FromTable(t *resolve.Table) Document {
	doc := Document{
		Catalog: t.Name,
		Package: t.Package,
		Repr:    t.Repr.String(),
		Bits:    t.Repr.Bits,
		Flags:   make([]Record, 0, len(t.Entries)),
	}
	for _, e := range t.Entries {
		doc.Flags = append(doc.Flags, Record{
			Name:   e.Name,
			Value:  word.Hex(e.Value),
			Lo:     e.Value.Lo,
			Hi:     e.Value.Hi,
			Source: e.Source.String(),
		})
	}
	return doc
}

// Table rebuilds a resolved table from the document. Spans are not exported,
// so entries of the result carry none.
func (doc Document) Table() (*resolve.Table, error) {
	bits := doc.Bits
	if bits == 0 {
		bits = word.HostPtrBits
	}
	repr, err := word.ParseRepr(doc.Repr, bits)
	if err != nil {
		return nil, fmt.Errorf("document repr: %w", err)
	}
	entries := make([]resolve.Entry, 0, len(doc.Flags))
	for _, r := range doc.Flags {
		v := uint128.New(r.Lo, r.Hi)
		if !repr.Fits(v) {
			return nil, fmt.Errorf("flag %q: value %s does not fit %s", r.Name, word.Hex(v), repr)
		}
		entries = append(entries, resolve.Entry{Name: r.Name, Value: v, Source: parseSource(r.Source)})
	}
	return resolve.NewTable(doc.Catalog, doc.Package, repr, entries), nil
}

func parseSource(s string) catalog.Source {
	switch s {
	case "literal":
		return catalog.SourceLiteral
	case "compound":
		return catalog.SourceCompound
	case "auto":
		return catalog.SourceAuto
	}
	return catalog.SourceUnknown
}
