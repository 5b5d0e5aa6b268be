package catalog

import (
	"lukechampine.com/uint128"

	"bitcat/internal/expr"
	"bitcat/internal/source"
)

// Source says where a flag's value comes from. It is set by the classifier.
type Source uint8

const (
	SourceUnknown Source = iota
	SourceLiteral
	SourceCompound
	SourceAuto
)

func (s Source) String() string {
	switch s {
	case SourceLiteral:
		return "literal"
	case SourceCompound:
		return "compound"
	case SourceAuto:
		return "auto"
	}
	return "unknown"
}

// Flag is one [[flag]] entry in declaration order.
type Flag struct {
	Name string
	Span source.Span // значение ключа name, иначе заголовок [[flag]]

	HasLiteral  bool
	Literal     uint128.Uint128
	LiteralSpan source.Span

	HasCompound  bool
	Compound     expr.ExprID // NoExprID when the text failed to parse
	CompoundSpan source.Span

	Source Source
}

// Catalog is the decoded form of one catalog file. It carries no resolved
// values; see the classify and resolve packages.
type Catalog struct {
	File    source.FileID
	Path    string
	Name    string
	Package string

	ReprName string
	HasRepr  bool
	ReprSpan source.Span
	PtrBits  uint

	AutoAssign      bool
	StrictOperators bool

	Span  source.Span // заголовок [catalog]
	Flags []Flag
	Exprs *expr.Exprs
}

// Index maps flag names to their first declaration index.
func (c *Catalog) Index() map[string]int {
	idx := make(map[string]int, len(c.Flags))
	for i := range c.Flags {
		if _, dup := idx[c.Flags[i].Name]; !dup {
			idx[c.Flags[i].Name] = i
		}
	}
	return idx
}

// Names returns flag names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.Flags))
	for i := range c.Flags {
		out[i] = c.Flags[i].Name
	}
	return out
}
