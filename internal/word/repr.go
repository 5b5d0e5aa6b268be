// Package word models the unsigned integer representations a catalog can
// declare and the masked 128-bit arithmetic every resolved value goes through.
package word

import (
	"fmt"
	"math/bits"
	"strings"

	"lukechampine.com/uint128"
)

// Kind is one of the supported unsigned representations.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindUsize
)

// Repr is a declared representation with its resolved bit width.
type Repr struct {
	Kind Kind
	Bits uint // 8, 16, 32, 64 or 128
}

var reprNames = map[string]Kind{
	"u8":    KindU8,
	"u16":   KindU16,
	"u32":   KindU32,
	"u64":   KindU64,
	"u128":  KindU128,
	"usize": KindUsize,
	// Go spellings
	"uint8":  KindU8,
	"uint16": KindU16,
	"uint32": KindU32,
	"uint64": KindU64,
	"uint":   KindUsize,
}

// HostPtrBits is the word size of the machine running bitcat.
const HostPtrBits = bits.UintSize

// ParseRepr parses a representation name. ptrBits is the width used for
// usize; zero selects HostPtrBits. Signed types and unknown names fail.
func ParseRepr(name string, ptrBits uint) (Repr, error) {
	kind, ok := reprNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		if strings.HasPrefix(name, "i") || strings.HasPrefix(name, "int") {
			return Repr{}, fmt.Errorf("signed representation %q is not supported; use an unsigned one (u8, u16, u32, u64, u128, usize)", name)
		}
		return Repr{}, fmt.Errorf("unknown representation %q (want u8, u16, u32, u64, u128 or usize)", name)
	}
	r := Repr{Kind: kind}
	switch kind {
	case KindU8:
		r.Bits = 8
	case KindU16:
		r.Bits = 16
	case KindU32:
		r.Bits = 32
	case KindU64:
		r.Bits = 64
	case KindU128:
		r.Bits = 128
	case KindUsize:
		switch ptrBits {
		case 0:
			r.Bits = HostPtrBits
		case 32, 64:
			r.Bits = ptrBits
		default:
			return Repr{}, fmt.Errorf("ptr_bits must be 32 or 64, got %d", ptrBits)
		}
	}
	return r, nil
}

// IsValid reports whether r came from ParseRepr.
func (r Repr) IsValid() bool { return r.Kind != KindInvalid }

// String returns the catalog spelling of the representation.
func (r Repr) String() string {
	switch r.Kind {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindUsize:
		return "usize"
	}
	return "invalid"
}

// GoType is the Go type generated code stores raw values in.
func (r Repr) GoType() string {
	switch r.Kind {
	case KindU8:
		return "uint8"
	case KindU16:
		return "uint16"
	case KindU32:
		return "uint32"
	case KindU64:
		return "uint64"
	case KindU128:
		return "uint128.Uint128"
	case KindUsize:
		return "uint"
	}
	return ""
}

// Wide reports whether values do not fit a native Go integer.
func (r Repr) Wide() bool { return r.Bits > 64 }

// Mask is the all-ones value of the representation.
func (r Repr) Mask() uint128.Uint128 {
	if r.Bits >= 128 {
		return uint128.Max
	}
	return uint128.From64(1).Lsh(r.Bits).Sub64(1)
}

// Fits reports whether v is representable.
func (r Repr) Fits(v uint128.Uint128) bool {
	return v.And(r.Mask()).Equals(v)
}
