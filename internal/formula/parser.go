package formula

import (
	"strconv"

	"github.com/pagespace/sheetdoc/internal/sheet"
)

// Parser is a recursive-descent parser over a token list. The precedence
// ladder, lowest binding first: comparison, concatenation, additive,
// multiplicative, exponent, unary, range, primary. It performs no
// evaluation and no I/O.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse tokenizes and parses a formula body (leading '=' already
// stripped) into an AST.
func Parse(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token list into an AST. Tokens remaining after a
// complete top-level expression are an error.
func ParseTokens(tokens []Token) (Node, error) {
	p := &Parser{tokens: tokens}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		return nil, newParseError(ErrCodeTrailingTokens, tok.Pos, "unexpected %q after expression", tok.Value)
	}
	return node, nil
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseConcatenation()
	if err != nil {
		return nil, err
	}
	for p.matchOperator("=", "<>", "<", "<=", ">", ">=") {
		op := p.advance().Value
		right, err := p.parseConcatenation()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseConcatenation() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.matchOperator("&") {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.matchOperator("+", "-") {
		op := p.advance().Value
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	for p.matchOperator("*", "/") {
		op := p.advance().Value
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseExponent is right-associative: 2^3^2 parses as 2^(3^2).
func (p *Parser) parseExponent() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.matchOperator("^") {
		p.advance()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: "^", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.matchOperator("+", "-") {
		op := p.advance().Value
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parseRange()
}

// parseRange handles the ':' operator. A range is only legal between two
// cell references on the same document, or between an external cell
// reference and a plain cell on the same foreign page.
func (p *Parser) parseRange() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.match(TokenColon) {
		colon := p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		combined, ok := combineRange(left, right)
		if !ok {
			return nil, newParseError(ErrCodeInvalidRangeOperands, colon.Pos, "':' requires two cell references")
		}
		left = combined
	}
	return left, nil
}

func combineRange(left, right Node) (Node, bool) {
	end, ok := right.(*CellRef)
	if !ok {
		return nil, false
	}
	switch start := left.(type) {
	case *CellRef:
		return &RangeRef{Start: start, End: end}, true
	case *ExternalCellRef:
		return &ExternalRangeRef{Page: start.Page, Start: start.Ref, End: end}, true
	default:
		return nil, false
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	if p.pos >= len(p.tokens) {
		return nil, newParseError(ErrCodeUnexpectedEnd, p.endPos(), "unexpected end of formula")
	}
	tok := p.advance()

	switch tok.Type {
	case TokenNumber:
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, newParseError(ErrCodeInvalidNumberLiteral, tok.Pos, "invalid number literal %q", tok.Value)
		}
		return &NumberLiteral{Value: value}, nil

	case TokenString:
		return &StringLiteral{Value: tok.Value}, nil

	case TokenCell:
		addr, err := sheet.ParseAddress(tok.Value)
		if err != nil {
			return nil, newParseError(ErrCodeUnexpectedToken, tok.Pos, "invalid cell reference %q", tok.Value)
		}
		return &CellRef{Address: addr}, nil

	case TokenPage:
		return p.parseExternalRef(tok)

	case TokenIdentifier:
		if !p.match(TokenLeftParen) {
			return nil, newParseError(ErrCodeUnexpectedIdentifier, tok.Pos, "unexpected identifier %q", tok.Value)
		}
		return p.parseCallArgs(tok)

	case TokenLeftParen:
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if !p.match(TokenRightParen) {
			return nil, newParseError(ErrCodeUnclosedParen, tok.Pos, "missing closing parenthesis")
		}
		p.advance()
		return inner, nil
	}

	return nil, newParseError(ErrCodeUnexpectedToken, tok.Pos, "unexpected %q", tok.Value)
}

// parseExternalRef consumes the ":ADDRESS" that must follow a page mention.
// The optional second ":ADDRESS" (a foreign-page range) is folded in by
// parseRange via combineRange.
func (p *Parser) parseExternalRef(page Token) (Node, error) {
	if !p.match(TokenColon) {
		return nil, newParseError(ErrCodeInvalidPageMention, page.Pos, "page mention must be followed by ':' and a cell reference")
	}
	p.advance()
	if !p.match(TokenCell) {
		return nil, newParseError(ErrCodeInvalidPageMention, page.Pos, "page mention must reference a cell")
	}
	cellTok := p.advance()
	addr, err := sheet.ParseAddress(cellTok.Value)
	if err != nil {
		return nil, newParseError(ErrCodeUnexpectedToken, cellTok.Pos, "invalid cell reference %q", cellTok.Value)
	}
	return &ExternalCellRef{Page: page.Page, Ref: &CellRef{Address: addr}}, nil
}

func (p *Parser) parseCallArgs(name Token) (Node, error) {
	p.advance() // '('
	call := &FunctionCall{Name: name.Value}

	if p.match(TokenRightParen) {
		p.advance()
		return call, nil
	}

	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.match(TokenComma) {
			p.advance()
			continue
		}
		if p.match(TokenRightParen) {
			p.advance()
			return call, nil
		}
		if p.pos >= len(p.tokens) {
			return nil, newParseError(ErrCodeUnclosedParen, name.Pos, "missing closing parenthesis in %s(...)", name.Value)
		}
		tok := p.tokens[p.pos]
		return nil, newParseError(ErrCodeUnexpectedToken, tok.Pos, "expected ',' or ')' in %s(...), found %q", name.Value, tok.Value)
	}
}

func (p *Parser) match(t TokenType) bool {
	return p.pos < len(p.tokens) && p.tokens[p.pos].Type == t
}

func (p *Parser) matchOperator(ops ...string) bool {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Type != TokenOperator {
		return false
	}
	for _, op := range ops {
		if p.tokens[p.pos].Value == op {
			return true
		}
	}
	return false
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) endPos() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Pos + len(last.Value)
}
