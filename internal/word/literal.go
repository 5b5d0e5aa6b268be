package word

import (
	"fmt"
	"math/big"
	"strings"

	"lukechampine.com/uint128"
)

// ParseLiteral parses an unsigned integer literal: decimal, 0x, 0o, 0b,
// with optional '_' digit separators. The result is only limited to 128
// bits; callers check it against their Repr.
func ParseLiteral(text string) (uint128.Uint128, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return uint128.Zero, fmt.Errorf("empty integer literal")
	}
	if s[0] == '-' || s[0] == '+' {
		return uint128.Zero, fmt.Errorf("integer literal %q must be unsigned", text)
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return uint128.Zero, fmt.Errorf("malformed integer literal %q", text)
	}
	if n.BitLen() > 128 {
		return uint128.Zero, fmt.Errorf("%w: integer literal %q exceeds 128 bits", ErrOverflow, text)
	}
	return uint128.FromBig(n), nil
}
