// Package bitset is the in-process form of the bitset contract that the
// generated code implements: flags, sets of flags, their algebra and the
// decomposition format.
package bitset

import (
	"strings"

	"lukechampine.com/uint128"

	"bitcat/internal/resolve"
	"bitcat/internal/word"
)

// Contract binds a resolved table to its set type.
type Contract struct {
	name  string
	repr  word.Repr
	flags []Flag
	index map[string]int
}

// NewContract builds the contract of a resolved table.
func NewContract(t *resolve.Table) *Contract {
	c := &Contract{
		name:  t.Name,
		repr:  t.Repr,
		flags: make([]Flag, 0, len(t.Entries)),
		index: make(map[string]int, len(t.Entries)),
	}
	for _, e := range t.Entries {
		if _, dup := c.index[e.Name]; !dup {
			c.index[e.Name] = len(c.flags)
		}
		c.flags = append(c.flags, Flag{c: c, name: e.Name, raw: e.Value})
	}
	return c
}

func (c *Contract) Name() string    { return c.name }
// SetName is the set type name. A nil contract yields "Bits".
func (c *Contract) SetName() string {
	if c == nil {
		return "Bits"
	}
	return c.name + "Bits"
}
func (c *Contract) Repr() word.Repr { return c.repr }

// Flags returns the flags in declaration order.
func (c *Contract) Flags() []Flag {
	out := make([]Flag, len(c.flags))
	copy(out, c.flags)
	return out
}

// Flag returns the named flag.
func (c *Contract) Flag(name string) (Flag, bool) {
	i, ok := c.index[name]
	if !ok {
		return Flag{}, false
	}
	return c.flags[i], true
}

// Empty is the set with no bits.
func (c *Contract) Empty() Set { return Set{c: c} }

// FromRaw wraps raw without checking it against the declared flags; bits
// beyond the representation are dropped.
func (c *Contract) FromRaw(raw uint128.Uint128) Set {
	return Set{c: c, raw: raw.And(c.repr.Mask())}
}

// Decompose lists the names of the flags contained in raw, in declaration
// order. A flag is contained when all its bits are set; zero flags never are.
func (c *Contract) Decompose(raw uint128.Uint128) []string {
	if c == nil {
		return nil
	}
	var names []string
	for _, fl := range c.flags {
		if contains(raw, fl.raw) {
			names = append(names, fl.name)
		}
	}
	return names
}

// not complements v within the representation. The zero values of Set and
// Flag carry no contract; they are complemented over the full 128 bits.
func (c *Contract) not(v uint128.Uint128) uint128.Uint128 {
	if c == nil {
		return v.Xor(uint128.Max)
	}
	return c.repr.Not(v)
}

func contains(raw, v uint128.Uint128) bool {
	return !v.IsZero() && raw.And(v).Equals(v)
}

// Format renders raw as <Name>Bits(A | B), or with the hex value when no
// flag is contained.
func (c *Contract) Format(raw uint128.Uint128) string {
	var b strings.Builder
	b.WriteString(c.SetName())
	b.WriteByte('(')
	if names := c.Decompose(raw); len(names) > 0 {
		b.WriteString(strings.Join(names, " | "))
	} else {
		b.WriteString(word.Hex(raw))
	}
	b.WriteByte(')')
	return b.String()
}
