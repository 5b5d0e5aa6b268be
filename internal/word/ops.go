package word

import (
	"errors"
	"fmt"
	"math/big"

	"lukechampine.com/uint128"
)

// ErrOverflow is returned when a result does not fit the representation.
var ErrOverflow = errors.New("value overflow")

// Op is a binary operator of the compound expression language.
type Op uint8

const (
	OpOr Op = iota
	OpAnd
	OpXor
	OpAndNot
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
)

func (op Op) String() string {
	switch op {
	case OpOr:
		return "|"
	case OpAnd:
		return "&"
	case OpXor:
		return "^"
	case OpAndNot:
		return "&^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	}
	return "?"
}

// Not complements v within the representation.
func (r Repr) Not(v uint128.Uint128) uint128.Uint128 {
	return v.Xor(r.Mask())
}

// Apply evaluates l op r under the representation. Bitwise operators cannot
// overflow; shifts by the width or more and arithmetic that leaves the range
// return an error wrapping ErrOverflow.
func (r Repr) Apply(op Op, lhs, rhs uint128.Uint128) (uint128.Uint128, error) {
	switch op {
	case OpOr:
		return lhs.Or(rhs), nil
	case OpAnd:
		return lhs.And(rhs), nil
	case OpXor:
		return lhs.Xor(rhs), nil
	case OpAndNot:
		return lhs.And(r.Not(rhs)), nil
	case OpShl, OpShr:
		if rhs.Cmp64(uint64(r.Bits)) >= 0 {
			return uint128.Zero, fmt.Errorf("%w: shift by %s exceeds %d-bit width", ErrOverflow, rhs, r.Bits)
		}
		n := uint(rhs.Lo)
		if op == OpShr {
			return lhs.Rsh(n), nil
		}
		// bits shifted past the width are discarded
		return lhs.Lsh(n).And(r.Mask()), nil
	case OpAdd, OpSub, OpMul:
		return r.arith(op, lhs, rhs)
	}
	return uint128.Zero, fmt.Errorf("unknown operator %d", op)
}

func (r Repr) arith(op Op, lhs, rhs uint128.Uint128) (uint128.Uint128, error) {
	a, b := lhs.Big(), rhs.Big()
	out := new(big.Int)
	switch op {
	case OpAdd:
		out.Add(a, b)
	case OpSub:
		out.Sub(a, b)
	case OpMul:
		out.Mul(a, b)
	}
	if out.Sign() < 0 || out.Cmp(r.Mask().Big()) > 0 {
		return uint128.Zero, fmt.Errorf("%w: %s %s %s does not fit %s", ErrOverflow, lhs, op, rhs, r)
	}
	return uint128.FromBig(out), nil
}

// Hex formats v as 0x-prefixed lowercase hexadecimal.
func Hex(v uint128.Uint128) string {
	if v.Hi == 0 {
		return fmt.Sprintf("0x%x", v.Lo)
	}
	return fmt.Sprintf("0x%x%016x", v.Hi, v.Lo)
}
