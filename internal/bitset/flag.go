package bitset

import (
	"lukechampine.com/uint128"

	"bitcat/internal/word"
)

// Flag is a single declared value.
type Flag struct {
	c    *Contract
	name string
	raw  uint128.Uint128
}

func (f Flag) Name() string { return f.name }

// Raw returns the flag's value.
func (f Flag) Raw() uint128.Uint128 { return f.raw }

// Set converts the flag into a one-flag set.
func (f Flag) Set() Set { return Set{c: f.c, raw: f.raw} }

func (f Flag) Or(o Flag) Set  { return f.Set().OrFlag(o) }
func (f Flag) And(o Flag) Set { return f.Set().AndFlag(o) }
func (f Flag) Xor(o Flag) Set { return f.Set().XorFlag(o) }
func (f Flag) Sub(o Flag) Set { return f.Set().SubFlag(o) }
func (f Flag) Not() Set       { return f.Set().Not() }

// EqualSet reports whether s holds exactly this flag's bits.
func (f Flag) EqualSet(s Set) bool { return f.raw.Equals(s.raw) }

// String returns the first declared name with this value, or the hex value
// wrapped in the type name.
func (f Flag) String() string {
	if f.c == nil {
		return f.name
	}
	for _, other := range f.c.flags {
		if other.raw.Equals(f.raw) {
			return other.name
		}
	}
	return f.c.name + "(" + word.Hex(f.raw) + ")"
}
