package expr

import "bitcat/internal/source"

// Kind represents the category of a compound expression token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the expression text.
	EOF
	Ident
	IntLit
	StringLit
	Pipe     // |
	Amp      // &
	Caret    // ^
	AmpCaret // &^
	Shl      // <<
	Shr      // >>
	Plus     // +
	Minus    // -
	Star     // *
	Bang     // !
	Tilde    // ~
	LParen   // (
	RParen   // )
	Dot      // .
	Comma    // ,
)

var kindNames = [...]string{
	Invalid:   "invalid token",
	EOF:       "end of expression",
	Ident:     "identifier",
	IntLit:    "integer literal",
	StringLit: "string literal",
	Pipe:      "'|'",
	Amp:       "'&'",
	Caret:     "'^'",
	AmpCaret:  "'&^'",
	Shl:       "'<<'",
	Shr:       "'>>'",
	Plus:      "'+'",
	Minus:     "'-'",
	Star:      "'*'",
	Bang:      "'!'",
	Tilde:     "'~'",
	LParen:    "'('",
	RParen:    "')'",
	Dot:       "'.'",
	Comma:     "','",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown token"
}

// Token is a single lexeme with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}
