package word

import (
	"errors"
	"testing"

	"lukechampine.com/uint128"
)

func mustRepr(t *testing.T, name string) Repr {
	t.Helper()
	r, err := ParseRepr(name, 64)
	if err != nil {
		t.Fatalf("ParseRepr(%q): %v", name, err)
	}
	return r
}

func TestParseRepr(t *testing.T) {
	tests := []struct {
		name    string
		ptr     uint
		bits    uint
		wantErr bool
	}{
		{"u8", 0, 8, false},
		{"u16", 0, 16, false},
		{"U32", 0, 32, false},
		{"uint64", 0, 64, false},
		{"u128", 0, 128, false},
		{"usize", 32, 32, false},
		{"usize", 0, HostPtrBits, false},
		{"usize", 16, 0, true},
		{"i32", 0, 0, true},
		{"float", 0, 0, true},
	}
	for _, tt := range tests {
		r, err := ParseRepr(tt.name, tt.ptr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepr(%q, %d) err = %v, wantErr %v", tt.name, tt.ptr, err, tt.wantErr)
			continue
		}
		if err == nil && r.Bits != tt.bits {
			t.Errorf("ParseRepr(%q).Bits = %d, want %d", tt.name, r.Bits, tt.bits)
		}
	}
}

func TestMaskAndFits(t *testing.T) {
	u8 := mustRepr(t, "u8")
	if !u8.Mask().Equals64(0xff) {
		t.Fatalf("u8 mask = %s", u8.Mask())
	}
	if !u8.Fits(uint128.From64(0xff)) || u8.Fits(uint128.From64(0x100)) {
		t.Fatal("u8 Fits is wrong")
	}
	u128 := mustRepr(t, "u128")
	if !u128.Mask().Equals(uint128.Max) || !u128.Fits(uint128.Max) {
		t.Fatal("u128 mask is wrong")
	}
}

func TestApply(t *testing.T) {
	u8 := mustRepr(t, "u8")
	v := uint128.From64
	tests := []struct {
		op      Op
		l, r    uint64
		want    uint64
		wantErr bool
	}{
		{OpOr, 0b01, 0b10, 0b11, false},
		{OpAnd, 0b11, 0b10, 0b10, false},
		{OpXor, 0b11, 0b10, 0b01, false},
		{OpAndNot, 0b11, 0b10, 0b01, false},
		{OpShl, 1, 7, 0x80, false},
		{OpShl, 1, 8, 0, true},
		{OpShl, 0x81, 1, 0x02, false},
		{OpShr, 0x80, 7, 1, false},
		{OpAdd, 0xfe, 1, 0xff, false},
		{OpAdd, 0xff, 1, 0, true},
		{OpSub, 1, 2, 0, true},
		{OpMul, 0x10, 0x10, 0, true},
		{OpMul, 0x10, 0x0f, 0xf0, false},
	}
	for _, tt := range tests {
		got, err := u8.Apply(tt.op, v(tt.l), v(tt.r))
		if tt.wantErr {
			if !errors.Is(err, ErrOverflow) {
				t.Errorf("%d %s %d: err = %v, want ErrOverflow", tt.l, tt.op, tt.r, err)
			}
			continue
		}
		if err != nil || !got.Equals64(tt.want) {
			t.Errorf("%d %s %d = %s, %v; want %d", tt.l, tt.op, tt.r, got, err, tt.want)
		}
	}
}

func TestNotStaysInWidth(t *testing.T) {
	u16 := mustRepr(t, "u16")
	if got := u16.Not(uint128.From64(1)); !got.Equals64(0xfffe) {
		t.Fatalf("!1 as u16 = %s", got)
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want uint128.Uint128
		ok   bool
	}{
		{"0", uint128.Zero, true},
		{"42", uint128.From64(42), true},
		{"0x1F", uint128.From64(31), true},
		{"0b0001_0000", uint128.From64(16), true},
		{"0o17", uint128.From64(15), true},
		{"0x8000_0000_0000_0000_0000_0000_0000_0000", uint128.New(0, 1<<63), true},
		{"0x1_0000_0000_0000_0000_0000_0000_0000_0000", uint128.Zero, false},
		{"-1", uint128.Zero, false},
		{"12ab", uint128.Zero, false},
		{"", uint128.Zero, false},
	}
	for _, tt := range tests {
		got, err := ParseLiteral(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseLiteral(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && !got.Equals(tt.want) {
			t.Errorf("ParseLiteral(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(uint128.Zero); got != "0x0" {
		t.Errorf("Hex(0) = %q", got)
	}
	if got := Hex(uint128.From64(0xAB)); got != "0xab" {
		t.Errorf("Hex(0xab) = %q", got)
	}
	if got := Hex(uint128.New(1, 1)); got != "0x10000000000000001" {
		t.Errorf("Hex(2^64+1) = %q", got)
	}
}
