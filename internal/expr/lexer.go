package expr

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"bitcat/internal/diag"
	"bitcat/internal/source"
)

// Cursor is a byte position inside [Off, Limit) of a file. Compound
// expressions are lexed in place inside the catalog file, so the limit is
// usually the closing quote of the TOML string rather than the file end.
type Cursor struct {
	File  *source.File
	Off   uint32
	Limit uint32
}

func (c *Cursor) EOF() bool { return c.Off >= c.Limit }

func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.File.Content[c.Off]
}

func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.Limit {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Lexer turns expression text into tokens; it never fails, unknown bytes
// become Invalid tokens and are reported once.
type Lexer struct {
	cur      Cursor
	reporter diag.Reporter
	look     *Token
}

// NewLexer lexes file content in [start, end).
func NewLexer(file *source.File, start, end uint32, reporter diag.Reporter) *Lexer {
	lenContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	end = min(end, lenContent)
	return &Lexer{
		cur:      Cursor{File: file, Off: min(start, end), Limit: end},
		reporter: reporter,
	}
}

// Next возвращает следующий токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.skipSpace()
	if lx.cur.EOF() {
		return Token{Kind: EOF, Span: lx.span(lx.cur.Off)}
	}

	start := lx.cur.Off
	ch := lx.cur.Peek()
	switch {
	case ch == '_' || ch >= utf8.RuneSelf || isASCIILetter(ch):
		return lx.scanIdent(start)
	case ch >= '0' && ch <= '9':
		return lx.scanNumber(start)
	case ch == '\'' || ch == '"':
		return lx.scanString(start, ch)
	}
	return lx.scanOperator(start)
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) span(start uint32) source.Span {
	return source.Span{File: lx.cur.File.ID, Start: start, End: lx.cur.Off}
}

func (lx *Lexer) text(start uint32) string {
	return string(lx.cur.File.Content[start:lx.cur.Off])
}

func (lx *Lexer) skipSpace() {
	for !lx.cur.EOF() {
		switch lx.cur.Peek() {
		case ' ', '\t', '\n', '\r':
			lx.cur.Off++
		default:
			return
		}
	}
}

func (lx *Lexer) decodeRune() (rune, uint32) {
	r, size := utf8.DecodeRune(lx.cur.File.Content[lx.cur.Off:lx.cur.Limit])
	return r, uint32(size)
}

func (lx *Lexer) scanIdent(start uint32) Token {
	for !lx.cur.EOF() {
		ch := lx.cur.Peek()
		if ch < utf8.RuneSelf {
			if ch != '_' && !isASCIILetter(ch) && !(ch >= '0' && ch <= '9') {
				break
			}
			lx.cur.Off++
			continue
		}
		r, size := lx.decodeRune()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		lx.cur.Off += size
	}
	if lx.cur.Off == start {
		// одиночный не-буквенный unicode символ
		_, size := lx.decodeRune()
		lx.cur.Off += max(size, 1)
		return lx.invalid(start)
	}
	return Token{Kind: Ident, Span: lx.span(start), Text: lx.text(start)}
}

// scanNumber consumes a maximal run of alphanumerics and '_' so that
// malformed literals such as 12ab become one token that the parser rejects.
func (lx *Lexer) scanNumber(start uint32) Token {
	for !lx.cur.EOF() {
		ch := lx.cur.Peek()
		if ch != '_' && !isASCIILetter(ch) && !(ch >= '0' && ch <= '9') {
			break
		}
		lx.cur.Off++
	}
	return Token{Kind: IntLit, Span: lx.span(start), Text: lx.text(start)}
}

func (lx *Lexer) scanString(start uint32, quote byte) Token {
	lx.cur.Off++
	for !lx.cur.EOF() && lx.cur.Peek() != quote {
		lx.cur.Off++
	}
	if !lx.cur.EOF() {
		lx.cur.Off++
	}
	return Token{Kind: StringLit, Span: lx.span(start), Text: lx.text(start)}
}

func (lx *Lexer) scanOperator(start uint32) Token {
	ch := lx.cur.Peek()
	next := lx.cur.PeekAt(1)
	kind := Invalid
	width := uint32(1)
	switch ch {
	case '|':
		kind = Pipe
	case '&':
		kind = Amp
		if next == '^' {
			kind, width = AmpCaret, 2
		}
	case '^':
		kind = Caret
	case '<':
		if next == '<' {
			kind, width = Shl, 2
		}
	case '>':
		if next == '>' {
			kind, width = Shr, 2
		}
	case '+':
		kind = Plus
	case '-':
		kind = Minus
	case '*':
		kind = Star
	case '!':
		kind = Bang
	case '~':
		kind = Tilde
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '.':
		kind = Dot
	case ',':
		kind = Comma
	}
	lx.cur.Off += width
	if kind == Invalid {
		return lx.invalid(start)
	}
	return Token{Kind: kind, Span: lx.span(start), Text: lx.text(start)}
}

func (lx *Lexer) invalid(start uint32) Token {
	tok := Token{Kind: Invalid, Span: lx.span(start), Text: lx.text(start)}
	diag.ReportError(lx.reporter, diag.SynUnknownChar, tok.Span,
		fmt.Sprintf("unexpected character %q in compound expression", tok.Text)).Emit()
	return tok
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
