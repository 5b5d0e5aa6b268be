package expr

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"lukechampine.com/uint128"

	"bitcat/internal/source"
	"bitcat/internal/word"
)

type ExprID uint32

const NoExprID ExprID = 0

func (id ExprID) IsValid() bool { return id != NoExprID }

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprIdent
	ExprBinary
	ExprUnary
	ExprGroup
	// Parsed so the resolver can point at them; never evaluated.
	ExprCall
	ExprMember
	ExprString
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "literal"
	case ExprIdent:
		return "reference"
	case ExprBinary:
		return "binary expression"
	case ExprUnary:
		return "unary expression"
	case ExprGroup:
		return "parenthesized expression"
	case ExprCall:
		return "call expression"
	case ExprMember:
		return "selector expression"
	case ExprString:
		return "string literal"
	}
	return fmt.Sprintf("expression kind %d", k)
}

type UnaryOp uint8

const (
	UnaryNot        UnaryOp = iota // !x
	UnaryComplement                // ^x, ~x
	UnaryNeg                       // -x
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "!"
	case UnaryComplement:
		return "^"
	case UnaryNeg:
		return "-"
	}
	return "?"
}

// Expr is one arena node. Which fields are meaningful depends on Kind:
// Lit uses Value, Ident uses Name, Binary uses BinOp/Left/Right, Unary uses
// UnOp/Left, Group uses Left, Call uses Left/Args, Member uses Left/Name.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Name  string
	Value uint128.Uint128
	BinOp word.Op
	UnOp  UnaryOp
	Left  ExprID
	Right ExprID
	Args  []ExprID
}

type Arena[T any] struct {
	data []T
}

// NewArena creates an arena with capHint preallocated slots.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate возвращает индекс нового элемента (1-based).
func (a *Arena[T]) Allocate(value T) uint32 {
	n, err := safecast.Conv[uint32](len(a.data) + 1)
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	a.data = append(a.data, value)
	return n
}

func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

func (a *Arena[T]) Len() uint32 {
	return uint32(len(a.data))
}

// Exprs owns every expression node of one catalog.
type Exprs struct {
	Arena *Arena[Expr]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Exprs{Arena: NewArena[Expr](capHint)}
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) add(x Expr) ExprID {
	return ExprID(e.Arena.Allocate(x))
}

func (e *Exprs) NewLit(span source.Span, v uint128.Uint128) ExprID {
	return e.add(Expr{Kind: ExprLit, Span: span, Value: v})
}

func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	return e.add(Expr{Kind: ExprIdent, Span: span, Name: name})
}

func (e *Exprs) NewBinary(span source.Span, op word.Op, left, right ExprID) ExprID {
	return e.add(Expr{Kind: ExprBinary, Span: span, BinOp: op, Left: left, Right: right})
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.add(Expr{Kind: ExprUnary, Span: span, UnOp: op, Left: operand})
}

func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	return e.add(Expr{Kind: ExprGroup, Span: span, Left: inner})
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	return e.add(Expr{Kind: ExprCall, Span: span, Left: callee, Args: args})
}

func (e *Exprs) NewMember(span source.Span, target ExprID, field string) ExprID {
	return e.add(Expr{Kind: ExprMember, Span: span, Left: target, Name: field})
}

func (e *Exprs) NewString(span source.Span, text string) ExprID {
	return e.add(Expr{Kind: ExprString, Span: span, Name: text})
}

// Format renders the expression in canonical form with explicit spacing.
func (e *Exprs) Format(id ExprID) string {
	var b strings.Builder
	e.format(&b, id)
	return b.String()
}

func (e *Exprs) format(b *strings.Builder, id ExprID) {
	x := e.Get(id)
	if x == nil {
		b.WriteString("<nil>")
		return
	}
	switch x.Kind {
	case ExprLit:
		b.WriteString(word.Hex(x.Value))
	case ExprIdent:
		b.WriteString(x.Name)
	case ExprString:
		b.WriteString(x.Name)
	case ExprBinary:
		e.format(b, x.Left)
		b.WriteString(" " + x.BinOp.String() + " ")
		e.format(b, x.Right)
	case ExprUnary:
		b.WriteString(x.UnOp.String())
		e.format(b, x.Left)
	case ExprGroup:
		b.WriteByte('(')
		e.format(b, x.Left)
		b.WriteByte(')')
	case ExprMember:
		e.format(b, x.Left)
		b.WriteString("." + x.Name)
	case ExprCall:
		e.format(b, x.Left)
		b.WriteByte('(')
		for i, arg := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			e.format(b, arg)
		}
		b.WriteByte(')')
	}
}
