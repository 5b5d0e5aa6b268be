package bitset

import "lukechampine.com/uint128"

// Set is an immutable combination of flags. Every operation returns a new
// value.
type Set struct {
	c   *Contract
	raw uint128.Uint128
}

func (s Set) Raw() uint128.Uint128 { return s.raw }

func (s Set) with(raw uint128.Uint128) Set { return Set{c: s.c, raw: raw} }

func (s Set) Or(o Set) Set  { return s.with(s.raw.Or(o.raw)) }
func (s Set) And(o Set) Set { return s.with(s.raw.And(o.raw)) }
func (s Set) Xor(o Set) Set { return s.with(s.raw.Xor(o.raw)) }

// Sub removes o's bits: s & ^o.
func (s Set) Sub(o Set) Set { return s.with(s.raw.And(s.c.not(o.raw))) }

// Not complements s within the representation.
func (s Set) Not() Set { return s.with(s.c.not(s.raw)) }

func (s Set) OrFlag(f Flag) Set  { return s.Or(f.Set()) }
func (s Set) AndFlag(f Flag) Set { return s.And(f.Set()) }
func (s Set) XorFlag(f Flag) Set { return s.Xor(f.Set()) }
func (s Set) SubFlag(f Flag) Set { return s.Sub(f.Set()) }

func (s Set) Equal(o Set) bool      { return s.raw.Equals(o.raw) }
func (s Set) EqualFlag(f Flag) bool { return s.raw.Equals(f.raw) }

// Has reports whether every bit of f is set. Zero flags are never contained.
func (s Set) Has(f Flag) bool { return contains(s.raw, f.raw) }

// IsEmpty reports whether no bit is set.
func (s Set) IsEmpty() bool { return s.raw.IsZero() }

// Flags returns the contained flags in declaration order.
func (s Set) Flags() []Flag {
	if s.c == nil {
		return nil
	}
	var out []Flag
	for _, f := range s.c.flags {
		if contains(s.raw, f.raw) {
			out = append(out, f)
		}
	}
	return out
}

func (s Set) String() string { return s.c.Format(s.raw) }
