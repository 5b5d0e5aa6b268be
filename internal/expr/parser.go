package expr

import (
	"fmt"

	"fortio.org/safecast"
	"lukechampine.com/uint128"

	"bitcat/internal/diag"
	"bitcat/internal/source"
	"bitcat/internal/word"
)

// Таблица приоритетов для бинарных операторов.
// Чем больше число, тем выше приоритет.
const (
	precBitwiseOr      = 1 // |
	precBitwiseXor     = 2 // ^
	precBitwiseAnd     = 3 // & &^
	precShift          = 4 // << >>
	precAdditive       = 5 // + -
	precMultiplicative = 6 // *
)

func binaryPrec(kind Kind) (int, word.Op, bool) {
	switch kind {
	case Pipe:
		return precBitwiseOr, word.OpOr, true
	case Caret:
		return precBitwiseXor, word.OpXor, true
	case Amp:
		return precBitwiseAnd, word.OpAnd, true
	case AmpCaret:
		return precBitwiseAnd, word.OpAndNot, true
	case Shl:
		return precShift, word.OpShl, true
	case Shr:
		return precShift, word.OpShr, true
	case Plus:
		return precAdditive, word.OpAdd, true
	case Minus:
		return precAdditive, word.OpSub, true
	case Star:
		return precMultiplicative, word.OpMul, true
	}
	return -1, 0, false
}

// Parser хранит состояние парсера одного compound-выражения.
type Parser struct {
	lx       *Lexer
	exprs    *Exprs
	reporter diag.Reporter
	failed   bool
	lastSpan source.Span
}

// Parse parses the expression in file content [start, end) into exprs.
// Syntax errors are reported and the returned id is NoExprID.
func Parse(file *source.File, start, end uint32, exprs *Exprs, reporter diag.Reporter) ExprID {
	p := &Parser{
		lx:       NewLexer(file, start, end, reporter),
		exprs:    exprs,
		reporter: reporter,
		lastSpan: source.Span{File: file.ID, Start: start, End: start},
	}
	id, ok := p.parseBinaryExpr(precBitwiseOr)
	if !ok {
		return NoExprID
	}
	if tok := p.lx.Peek(); tok.Kind == Invalid {
		return NoExprID
	} else if tok.Kind != EOF {
		p.err(diag.SynUnexpectedToken, tok.Span, fmt.Sprintf("unexpected %s after expression", tok.Kind))
		return NoExprID
	}
	if p.failed {
		return NoExprID
	}
	return id
}

func (p *Parser) advance() Token {
	tok := p.lx.Next()
	if tok.Kind == Invalid {
		p.failed = true
	}
	p.lastSpan = tok.Span
	return tok
}

func (p *Parser) err(code diag.Code, span source.Span, msg string) {
	p.failed = true
	diag.ReportError(p.reporter, code, span, msg).Emit()
}

// parseBinaryExpr реализует Pratt parsing; все операторы левоассоциативны.
func (p *Parser) parseBinaryExpr(minPrec int) (ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return NoExprID, false
	}
	for {
		tok := p.lx.Peek()
		prec, op, isBinary := binaryPrec(tok.Kind)
		if !isBinary || prec < minPrec {
			break
		}
		p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return NoExprID, false
		}
		span := p.exprs.Get(left).Span.Cover(p.exprs.Get(right).Span)
		left = p.exprs.NewBinary(span, op, left, right)
	}
	return left, true
}

// parseUnaryExpr обрабатывает унарные префиксы, применяя их справа налево.
func (p *Parser) parseUnaryExpr() (ExprID, bool) {
	tok := p.lx.Peek()
	var op UnaryOp
	switch tok.Kind {
	case Bang:
		op = UnaryNot
	case Caret, Tilde:
		op = UnaryComplement
	case Minus:
		op = UnaryNeg
	default:
		return p.parsePostfixExpr()
	}
	opTok := p.advance()
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return NoExprID, false
	}
	span := opTok.Span.Cover(p.exprs.Get(operand).Span)
	return p.exprs.NewUnary(span, op, operand), true
}

func (p *Parser) parsePostfixExpr() (ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return NoExprID, false
	}
	for {
		switch p.lx.Peek().Kind {
		case Dot:
			p.advance()
			field := p.advance()
			if field.Kind != Ident {
				p.err(diag.SynUnexpectedToken, field.Span, fmt.Sprintf("expected identifier after '.', found %s", field.Kind))
				return NoExprID, false
			}
			span := p.exprs.Get(expr).Span.Cover(field.Span)
			expr = p.exprs.NewMember(span, expr, field.Text)
		case LParen:
			lparen := p.advance()
			args, rparen, ok := p.parseArgs(lparen)
			if !ok {
				return NoExprID, false
			}
			span := p.exprs.Get(expr).Span.Cover(rparen.Span)
			expr = p.exprs.NewCall(span, expr, args)
		default:
			return expr, true
		}
	}
}

func (p *Parser) parseArgs(lparen Token) ([]ExprID, Token, bool) {
	var args []ExprID
	if p.lx.Peek().Kind == RParen {
		return args, p.advance(), true
	}
	for {
		arg, ok := p.parseBinaryExpr(precBitwiseOr)
		if !ok {
			return nil, Token{}, false
		}
		args = append(args, arg)
		tok := p.advance()
		switch tok.Kind {
		case Comma:
			continue
		case RParen:
			return args, tok, true
		}
		p.err(diag.SynUnclosedParen, lparen.Span, "unclosed '(' in argument list")
		return nil, Token{}, false
	}
}

func (p *Parser) parsePrimaryExpr() (ExprID, bool) {
	tok := p.advance()
	switch tok.Kind {
	case Ident:
		return p.exprs.NewIdent(tok.Span, tok.Text), true
	case IntLit:
		v, err := word.ParseLiteral(tok.Text)
		if err != nil {
			p.err(diag.SynBadNumber, tok.Span, err.Error())
			return p.exprs.NewLit(tok.Span, uint128.Zero), true
		}
		return p.exprs.NewLit(tok.Span, v), true
	case StringLit:
		return p.exprs.NewString(tok.Span, tok.Text), true
	case LParen:
		inner, ok := p.parseBinaryExpr(precBitwiseOr)
		if !ok {
			return NoExprID, false
		}
		closing := p.advance()
		if closing.Kind != RParen {
			p.err(diag.SynUnclosedParen, tok.Span, "unclosed '('")
			return NoExprID, false
		}
		return p.exprs.NewGroup(tok.Span.Cover(closing.Span), inner), true
	case EOF:
		p.err(diag.SynExpectExpression, tok.Span, "expected expression")
		return NoExprID, false
	case Invalid:
		// уже сообщено лексером
		return NoExprID, false
	}
	p.err(diag.SynExpectExpression, tok.Span, fmt.Sprintf("expected expression, found %s", tok.Kind))
	return NoExprID, false
}

// ParseString parses text held in a new virtual file of fs.
func ParseString(fs *source.FileSet, name, text string, exprs *Exprs, reporter diag.Reporter) ExprID {
	id := fs.AddVirtual(name, []byte(text))
	f := fs.Get(id)
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("expression text too long: %w", err))
	}
	return Parse(f, 0, end, exprs, reporter)
}
