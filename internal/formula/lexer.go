package formula

import "strings"

// Lexer tokenizes a formula body (the text after the leading '='). It scans
// left to right, skipping whitespace, and applies the rules in priority
// order: page mention, string literal, numeric literal, identifier/cell,
// operator, punctuation.
type Lexer struct {
	runes []rune
	pos   int
}

// NewLexer creates a lexer over the given formula body.
func NewLexer(input string) *Lexer {
	return &Lexer{runes: []rune(input)}
}

// Tokenize scans the whole input and returns the ordered token list.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize scans the remaining input and returns the ordered token list.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.runes) {
			return tokens, nil
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) next() (Token, error) {
	start := l.pos
	ch := l.current()

	switch {
	case ch == '@' && l.peek(1) == '[':
		return l.scanPageMention()
	case ch == '"':
		return l.scanString()
	case isDigit(ch):
		return l.scanNumber()
	case isAlpha(ch) || ch == '_':
		return l.scanIdentifierOrCell()
	}

	// Two-character operators before their single-character prefixes.
	if ch == '<' {
		if l.peek(1) == '=' {
			l.pos += 2
			return Token{Type: TokenOperator, Value: "<=", Pos: start}, nil
		}
		if l.peek(1) == '>' {
			l.pos += 2
			return Token{Type: TokenOperator, Value: "<>", Pos: start}, nil
		}
	}
	if ch == '>' && l.peek(1) == '=' {
		l.pos += 2
		return Token{Type: TokenOperator, Value: ">=", Pos: start}, nil
	}

	switch ch {
	case '+', '-', '*', '/', '^', '&', '=', '<', '>':
		l.pos++
		return Token{Type: TokenOperator, Value: string(ch), Pos: start}, nil
	case '(':
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: start}, nil
	case ')':
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: start}, nil
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Pos: start}, nil
	case ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Pos: start}, nil
	}

	return Token{}, newParseError(ErrCodeUnexpectedCharacter, start, "unexpected character %q", string(ch))
}

// scanString scans a double-quoted string literal. Quotes cannot be
// escaped inside the literal; the first closing quote ends it.
func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	begin := l.pos
	for l.pos < len(l.runes) {
		if l.current() == '"' {
			value := string(l.runes[begin:l.pos])
			l.pos++ // closing quote
			return Token{Type: TokenString, Value: value, Pos: start}, nil
		}
		l.pos++
	}
	return Token{}, newParseError(ErrCodeUnterminatedString, start, "unterminated string literal")
}

// scanNumber scans a numeric literal: digits with at most one decimal
// point. A malformed run such as "1.2.3" is rejected outright rather than
// split into several tokens.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.runes) && (isDigit(l.current()) || l.current() == '.') {
		l.pos++
	}
	value := string(l.runes[start:l.pos])
	if strings.Count(value, ".") > 1 || strings.HasSuffix(value, ".") {
		return Token{}, newParseError(ErrCodeInvalidNumberLiteral, start, "invalid number literal %q", value)
	}
	return Token{Type: TokenNumber, Value: value, Pos: start}, nil
}

// scanIdentifierOrCell scans a letters/digits/underscore run. The run is a
// cell token iff it is letters immediately followed by digits and nothing
// else; any other shape is an identifier (function name). Both are
// uppercased for case-insensitivity.
func (l *Lexer) scanIdentifierOrCell() (Token, error) {
	start := l.pos
	for l.pos < len(l.runes) && (isAlpha(l.current()) || isDigit(l.current()) || l.current() == '_') {
		l.pos++
	}
	value := strings.ToUpper(string(l.runes[start:l.pos]))
	if isCellName(value) {
		return Token{Type: TokenCell, Value: value, Pos: start}, nil
	}
	return Token{Type: TokenIdentifier, Value: value, Pos: start}, nil
}

// scanPageMention scans @[Label] with an optional (identifier[:mentionType])
// qualifier. The trailing :ADDRESS part is left to the parser; the mention
// token carries only the page metadata.
func (l *Lexer) scanPageMention() (Token, error) {
	start := l.pos
	l.pos += 2 // consume "@["

	labelStart := l.pos
	for l.pos < len(l.runes) && l.current() != ']' {
		l.pos++
	}
	if l.pos >= len(l.runes) {
		return Token{}, newParseError(ErrCodeInvalidPageMention, start, "unterminated page mention")
	}
	label := string(l.runes[labelStart:l.pos])
	l.pos++ // consume ']'

	var identifier, mentionType string
	if l.current() == '(' {
		l.pos++
		qualStart := l.pos
		for l.pos < len(l.runes) && l.current() != ')' {
			l.pos++
		}
		if l.pos >= len(l.runes) {
			return Token{}, newParseError(ErrCodeInvalidPageMention, start, "unterminated page mention qualifier")
		}
		qualifier := string(l.runes[qualStart:l.pos])
		l.pos++ // consume ')'

		identifier = qualifier
		if i := strings.Index(qualifier, ":"); i >= 0 {
			identifier = qualifier[:i]
			mentionType = qualifier[i+1:]
		}
	}

	raw := string(l.runes[start:l.pos])
	return Token{
		Type:  TokenPage,
		Value: raw,
		Pos:   start,
		Page: &PageReference{
			Raw:             raw,
			Label:           label,
			NormalizedLabel: NormalizeLabel(label),
			Identifier:      identifier,
			MentionType:     mentionType,
		},
	}, nil
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos]
}

func (l *Lexer) peek(offset int) rune {
	p := l.pos + offset
	if p < 0 || p >= len(l.runes) {
		return 0
	}
	return l.runes[p]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) {
		switch l.current() {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isCellName reports whether an uppercased run matches LETTERS DIGITS
// exactly, e.g. "A1" or "AB12".
func isCellName(s string) bool {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
