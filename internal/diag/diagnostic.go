package diag

import (
	"bitcat/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding: {location, kind, message} plus optional notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Error makes a Diagnostic usable as a plain error at API boundaries.
func (d Diagnostic) Error() string {
	return d.Code.ID() + ": " + d.Message
}
