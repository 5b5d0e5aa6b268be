package resolve

import (
	"lukechampine.com/uint128"

	"bitcat/internal/catalog"
	"bitcat/internal/source"
	"bitcat/internal/word"
)

// Entry is one resolved flag.
type Entry struct {
	Name   string
	Value  uint128.Uint128
	Source catalog.Source
	Span   source.Span
}

// Table is the resolved catalog: every flag with its final value, in
// declaration order. It is built once and never modified.
type Table struct {
	Name    string
	Package string
	Repr    word.Repr
	Entries []Entry
	Span    source.Span // заголовок каталога

	index map[string]int
}

// NewTable builds a table from entries; later duplicates of a name are
// unreachable through Lookup.
func NewTable(name, pkg string, repr word.Repr, entries []Entry) *Table {
	t := &Table{Name: name, Package: pkg, Repr: repr, Entries: entries, index: make(map[string]int, len(entries))}
	for i := range entries {
		if _, dup := t.index[entries[i].Name]; !dup {
			t.index[entries[i].Name] = i
		}
	}
	return t
}

// Lookup returns the entry for name.
func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.index[name]
	if !ok {
		return Entry{}, false
	}
	return t.Entries[i], true
}

func (t *Table) Len() int { return len(t.Entries) }
