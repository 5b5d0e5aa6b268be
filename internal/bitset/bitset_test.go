package bitset

import (
	"testing"

	"lukechampine.com/uint128"

	"bitcat/internal/resolve"
	"bitcat/internal/word"
)

func permissions(t *testing.T, extra ...resolve.Entry) *Contract {
	t.Helper()
	repr, err := word.ParseRepr("u8", 0)
	if err != nil {
		t.Fatal(err)
	}
	entries := []resolve.Entry{
		{Name: "Read", Value: uint128.From64(1)},
		{Name: "Write", Value: uint128.From64(2)},
		{Name: "ReadWrite", Value: uint128.From64(3)},
	}
	entries = append(entries, extra...)
	return NewContract(resolve.NewTable("Permissions", "perm", repr, entries))
}

func mustFlag(t *testing.T, c *Contract, name string) Flag {
	t.Helper()
	f, ok := c.Flag(name)
	if !ok {
		t.Fatalf("no flag %q", name)
	}
	return f
}

func TestDecomposition(t *testing.T) {
	c := permissions(t)
	tests := []struct {
		raw  uint64
		want string
	}{
		{3, "PermissionsBits(Read | Write | ReadWrite)"},
		{0, "PermissionsBits(0x0)"},
		{8, "PermissionsBits(0x8)"},
		{1, "PermissionsBits(Read)"},
		{9, "PermissionsBits(Read)"},
	}
	for _, tt := range tests {
		if got := c.FromRaw(uint128.From64(tt.raw)).String(); got != tt.want {
			t.Errorf("%#x: got %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestZeroFlagNeverDecomposed(t *testing.T) {
	c := permissions(t, resolve.Entry{Name: "None", Value: uint128.Zero})
	none := mustFlag(t, c, "None")
	for _, raw := range []uint64{0, 1, 3, 0xff} {
		s := c.FromRaw(uint128.From64(raw))
		if s.Has(none) {
			t.Fatalf("%#x must not contain the zero flag", raw)
		}
		for _, name := range c.Decompose(s.Raw()) {
			if name == "None" {
				t.Fatalf("zero flag listed for %#x", raw)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	c := permissions(t)
	for _, f := range c.Flags() {
		if !f.Set().Raw().Equals(f.Raw()) {
			t.Errorf("%s: flag -> set -> raw changed the value", f.Name())
		}
		if !f.EqualSet(f.Set()) || !f.Set().EqualFlag(f) {
			t.Errorf("%s: cross-type equality failed", f.Name())
		}
	}
}

func TestSubIdempotent(t *testing.T) {
	c := permissions(t)
	write := mustFlag(t, c, "Write")
	for raw := uint64(0); raw < 256; raw++ {
		s := c.FromRaw(uint128.From64(raw))
		once := s.SubFlag(write)
		if !once.SubFlag(write).Equal(once) {
			t.Fatalf("%#x: (s - X) - X != s - X", raw)
		}
	}
}

func TestAlgebra(t *testing.T) {
	c := permissions(t)
	read, write, rw := mustFlag(t, c, "Read"), mustFlag(t, c, "Write"), mustFlag(t, c, "ReadWrite")

	if !read.Or(write).EqualFlag(rw) {
		t.Errorf("Read | Write != ReadWrite")
	}
	if !rw.And(read).EqualFlag(read) {
		t.Errorf("ReadWrite & Read != Read")
	}
	if !rw.Xor(read).EqualFlag(write) {
		t.Errorf("ReadWrite ^ Read != Write")
	}
	if !rw.Sub(write).EqualFlag(read) {
		t.Errorf("ReadWrite - Write != Read")
	}
	if got := read.Not().Raw().Lo; got != 0xfe {
		t.Errorf("!Read = %#x, want 0xfe", got)
	}
	if !c.Empty().IsEmpty() || read.Set().IsEmpty() {
		t.Errorf("IsEmpty is wrong")
	}
	if got := c.Empty().Not().Raw().Lo; got != 0xff {
		t.Errorf("!empty = %#x", got)
	}
	s := c.Empty().OrFlag(read).XorFlag(rw).AndFlag(write)
	if !s.EqualFlag(write) {
		t.Errorf("chained ops = %s", s)
	}
	if !s.Has(write) || s.Has(read) {
		t.Errorf("Has is wrong for %s", s)
	}
}

func TestFromRawMasks(t *testing.T) {
	c := permissions(t)
	if got := c.FromRaw(uint128.From64(0x1ff)).Raw().Lo; got != 0xff {
		t.Fatalf("FromRaw kept bits beyond u8: %#x", got)
	}
}

func TestFlagString(t *testing.T) {
	c := permissions(t, resolve.Entry{Name: "Both", Value: uint128.From64(3)})
	if got := mustFlag(t, c, "Both").String(); got != "ReadWrite" {
		t.Fatalf("alias should print first declared name, got %q", got)
	}
	if got := mustFlag(t, c, "Write").String(); got != "Write" {
		t.Fatalf("got %q", got)
	}
}

func TestZeroValues(t *testing.T) {
	var s Set
	if got := s.String(); got != "Bits(0x0)" {
		t.Errorf("Set{}.String() = %q", got)
	}
	if !s.IsEmpty() || s.Flags() != nil {
		t.Errorf("Set{} is not empty")
	}
	if got := s.Not().Raw(); !got.Equals(uint128.Max) {
		t.Errorf("Set{}.Not() = %s", got)
	}
	if got := s.Sub(Set{}); !got.IsEmpty() {
		t.Errorf("Set{}.Sub(Set{}) = %s", got)
	}
	var f Flag
	if got := f.Not().Raw(); !got.Equals(uint128.Max) {
		t.Errorf("Flag{}.Not() = %s", got)
	}
	if s.Has(f) {
		t.Errorf("Set{} contains the zero flag")
	}

	c := permissions(t)
	read := mustFlag(t, c, "Read")
	if got := read.Set().Sub(Set{}); !got.EqualFlag(read) {
		t.Errorf("Read - Set{} = %s", got)
	}
}
