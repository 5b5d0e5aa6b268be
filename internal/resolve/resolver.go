// Package resolve computes the value of every flag of a classified catalog.
// Compound expressions are evaluated by structural recursion with a memo and
// a visiting stack for cycle detection.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"lukechampine.com/uint128"

	"bitcat/internal/catalog"
	"bitcat/internal/diag"
	"bitcat/internal/expr"
	"bitcat/internal/word"
)

type memoState uint8

const (
	statePending memoState = iota
	stateDone
	stateFailed
)

type memoSlot struct {
	value uint128.Uint128
	state memoState
}

// Resolver owns the resolution state of one catalog. It is not safe for
// concurrent use.
type Resolver struct {
	cat      *catalog.Catalog
	repr     word.Repr
	reporter *diag.CountingReporter
	index    map[string]int

	memo    []memoSlot
	stack   []int  // порядок обхода, для сообщения о цикле
	onStack []bool // по индексу флага
}

// New prepares a resolver. Literal and auto-assigned flags are seeded into
// the memo; compound flags are resolved on demand.
func New(cat *catalog.Catalog, repr word.Repr, reporter diag.Reporter) *Resolver {
	r := &Resolver{
		cat:      cat,
		repr:     repr,
		reporter: &diag.CountingReporter{Next: diag.NewDedupReporter(reporter)},
		index:    cat.Index(),
		memo:     make([]memoSlot, len(cat.Flags)),
		onStack:  make([]bool, len(cat.Flags)),
	}
	for i := range cat.Flags {
		switch cat.Flags[i].Source {
		case catalog.SourceLiteral, catalog.SourceAuto:
			r.memo[i] = memoSlot{value: cat.Flags[i].Literal, state: stateDone}
		case catalog.SourceCompound:
		default:
			r.memo[i].state = stateFailed
		}
	}
	return r
}

// Resolve returns the value of the named flag, resolving its dependencies
// first. Unknown names are reported against the catalog header.
func (r *Resolver) Resolve(name string) (uint128.Uint128, bool) {
	i, ok := r.index[name]
	if !ok {
		diag.ReportError(r.reporter, diag.ResUnknownReference, r.cat.Span,
			fmt.Sprintf("unknown flag %q", name)).Emit()
		return uint128.Zero, false
	}
	r.stack = r.stack[:0]
	return r.resolveIndex(i)
}

// Failed reports whether any error was reported so far.
func (r *Resolver) Failed() bool { return r.reporter.Errors > 0 }

func (r *Resolver) resolveIndex(i int) (uint128.Uint128, bool) {
	slot := r.memo[i]
	switch slot.state {
	case stateDone:
		return slot.value, true
	case stateFailed:
		return uint128.Zero, false
	}

	fl := &r.cat.Flags[i]
	r.stack = append(r.stack, i)
	r.onStack[i] = true
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		r.onStack[i] = false
	}()

	v, ok := r.eval(i, fl.Compound)
	if !ok {
		r.memo[i].state = stateFailed
		return uint128.Zero, false
	}
	r.memo[i] = memoSlot{value: v, state: stateDone}
	return v, true
}

// eval evaluates node id of the compound of flag owner. Both operands of a
// binary node are evaluated so independent problems are all reported.
func (r *Resolver) eval(owner int, id expr.ExprID) (uint128.Uint128, bool) {
	node := r.cat.Exprs.Get(id)
	if node == nil {
		// синтаксическая ошибка уже сообщена при загрузке
		return uint128.Zero, false
	}

	switch node.Kind {
	case expr.ExprLit:
		if !r.repr.Fits(node.Value) {
			diag.ReportError(r.reporter, diag.ResValueOverflow, node.Span,
				fmt.Sprintf("literal %s does not fit in %s", word.Hex(node.Value), r.repr)).Emit()
			return uint128.Zero, false
		}
		return node.Value, true

	case expr.ExprIdent:
		return r.reference(owner, node)

	case expr.ExprGroup:
		return r.eval(owner, node.Left)

	case expr.ExprUnary:
		v, ok := r.eval(owner, node.Left)
		if node.UnOp == expr.UnaryNeg {
			diag.ReportError(r.reporter, diag.ResUnsupportedExpression, node.Span,
				"unary minus is not supported in compound expressions").Emit()
			return uint128.Zero, false
		}
		if !ok {
			return uint128.Zero, false
		}
		return r.repr.Not(v), true

	case expr.ExprBinary:
		lhs, okL := r.eval(owner, node.Left)
		rhs, okR := r.eval(owner, node.Right)
		if node.BinOp != word.OpOr && !r.checkOperator(owner, node) {
			return uint128.Zero, false
		}
		if !okL || !okR {
			return uint128.Zero, false
		}
		v, err := r.repr.Apply(node.BinOp, lhs, rhs)
		if err != nil {
			code := diag.ResValueOverflow
			if !errors.Is(err, word.ErrOverflow) {
				code = diag.ResUnsupportedExpression
			}
			diag.ReportError(r.reporter, code, node.Span, err.Error()).Emit()
			return uint128.Zero, false
		}
		return v, true
	}

	diag.ReportError(r.reporter, diag.ResUnsupportedExpression, node.Span,
		fmt.Sprintf("%s is not supported in compound expressions; combine flags with |", node.Kind)).Emit()
	return uint128.Zero, false
}

func (r *Resolver) reference(owner int, node *expr.Expr) (uint128.Uint128, bool) {
	target, ok := r.index[node.Name]
	if !ok {
		diag.ReportError(r.reporter, diag.ResUnknownReference, node.Span,
			fmt.Sprintf("unknown flag %q in compound of %q", node.Name, r.cat.Flags[owner].Name)).Emit()
		return uint128.Zero, false
	}
	if r.onStack[target] {
		diag.ReportError(r.reporter, diag.ResCyclicDefinition, node.Span,
			fmt.Sprintf("cyclic definition of flag %q: %s", node.Name, r.chain(target))).
			WithNote(r.cat.Flags[target].Span, "flag declared here").
			Emit()
		return uint128.Zero, false
	}
	return r.resolveIndex(target)
}

// chain renders the visiting stack from target to the top, closed by target.
func (r *Resolver) chain(target int) string {
	names := make([]string, 0, len(r.stack)+1)
	start := 0
	for i, idx := range r.stack {
		if idx == target {
			start = i
			break
		}
	}
	for _, idx := range r.stack[start:] {
		names = append(names, r.cat.Flags[idx].Name)
	}
	names = append(names, r.cat.Flags[target].Name)
	return strings.Join(names, " -> ")
}

func (r *Resolver) checkOperator(owner int, node *expr.Expr) bool {
	msg := fmt.Sprintf("operator %s in compound of %q; flags are normally combined with |", node.BinOp, r.cat.Flags[owner].Name)
	if r.cat.StrictOperators {
		diag.ReportError(r.reporter, diag.ResNonOrOperator, node.Span, msg+" (strict_operators is set)").Emit()
		return false
	}
	diag.ReportWarning(r.reporter, diag.ResNonOrOperator, node.Span, msg).Emit()
	return true
}

// Run resolves every compound flag. Each is resolved top-level with a fresh
// visiting stack; failures do not stop the remaining flags. The table is
// returned only when no error was reported.
func Run(cat *catalog.Catalog, repr word.Repr, reporter diag.Reporter) (*Table, bool) {
	r := New(cat, repr, reporter)
	return r.Table()
}

// Table resolves all flags of the resolver's catalog.
func (r *Resolver) Table() (*Table, bool) {
	entries := make([]Entry, 0, len(r.cat.Flags))
	for i := range r.cat.Flags {
		r.stack = r.stack[:0]
		v, ok := r.resolveIndex(i)
		fl := &r.cat.Flags[i]
		if ok && v.IsZero() {
			diag.ReportWarning(r.reporter, diag.ResZeroFlag, fl.Span,
				fmt.Sprintf("flag %q resolves to 0 and will never appear in a decomposition", fl.Name)).Emit()
		}
		entries = append(entries, Entry{Name: fl.Name, Value: v, Source: fl.Source, Span: fl.Span})
	}
	if r.Failed() {
		return nil, false
	}
	t := NewTable(r.cat.Name, r.cat.Package, r.repr, entries)
	t.Span = r.cat.Span
	return t, true
}
