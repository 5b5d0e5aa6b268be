// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bitcat/internal/expr"
	"bitcat/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed
// compound expression:
// 1) every node span is non-empty, belongs to sf and lies within its content
// 2) every child span is contained in its parent span
func CheckSpanInvariants(exprs *expr.Exprs, root expr.ExprID, sf *source.File) error {
	if exprs == nil || sf == nil {
		return fmt.Errorf("nil arena or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	return checkNode(exprs, root, source.Span{}, false, sf.ID, lenContent)
}

func checkNode(exprs *expr.Exprs, id expr.ExprID, parent source.Span, hasParent bool, file source.FileID, limit uint32) error {
	x := exprs.Get(id)
	if x == nil {
		return fmt.Errorf("nil node for id=%d", id)
	}
	sp := x.Span
	if sp.End <= sp.Start {
		return fmt.Errorf("empty %s span: %v", x.Kind, sp)
	}
	if sp.File != file {
		return fmt.Errorf("%s span file mismatch: got=%d want=%d", x.Kind, sp.File, file)
	}
	if sp.End > limit {
		return fmt.Errorf("%s span end beyond content: %d > %d", x.Kind, sp.End, limit)
	}
	if hasParent && (sp.Start < parent.Start || sp.End > parent.End) {
		return fmt.Errorf("%s span %v is outside parent span %v", x.Kind, sp, parent)
	}

	children := make([]expr.ExprID, 0, 2+len(x.Args))
	switch x.Kind {
	case expr.ExprBinary:
		children = append(children, x.Left, x.Right)
	case expr.ExprUnary, expr.ExprGroup, expr.ExprMember:
		children = append(children, x.Left)
	case expr.ExprCall:
		children = append(children, x.Left)
		children = append(children, x.Args...)
	}
	for _, child := range children {
		if err := checkNode(exprs, child, sp, true, file, limit); err != nil {
			return err
		}
	}
	return nil
}
