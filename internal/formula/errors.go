package formula

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes lexical and syntactic formula errors.
type ErrorCode string

const (
	// Lexical errors.

	// ErrCodeUnterminatedString indicates a string literal with no closing quote.
	ErrCodeUnterminatedString ErrorCode = "UNTERMINATED_STRING"

	// ErrCodeInvalidNumberLiteral indicates a malformed numeric literal such as "1.2.3".
	ErrCodeInvalidNumberLiteral ErrorCode = "INVALID_NUMBER_LITERAL"

	// ErrCodeUnexpectedCharacter indicates a character no tokenizer rule accepts.
	ErrCodeUnexpectedCharacter ErrorCode = "UNEXPECTED_CHARACTER"

	// ErrCodeInvalidPageMention indicates a malformed @[...] external reference.
	ErrCodeInvalidPageMention ErrorCode = "INVALID_PAGE_MENTION"

	// Syntactic errors.

	// ErrCodeTrailingTokens indicates tokens remain after a complete expression.
	ErrCodeTrailingTokens ErrorCode = "TRAILING_TOKENS"

	// ErrCodeInvalidRangeOperands indicates ':' between operands that are not
	// two cell references on the same page.
	ErrCodeInvalidRangeOperands ErrorCode = "INVALID_RANGE_OPERANDS"

	// ErrCodeUnexpectedIdentifier indicates a bare identifier that is not a
	// function call.
	ErrCodeUnexpectedIdentifier ErrorCode = "UNEXPECTED_IDENTIFIER"

	// ErrCodeUnexpectedEnd indicates the token stream ended mid-expression.
	ErrCodeUnexpectedEnd ErrorCode = "UNEXPECTED_END"

	// ErrCodeUnclosedParen indicates a missing closing parenthesis.
	ErrCodeUnclosedParen ErrorCode = "UNCLOSED_PAREN"

	// ErrCodeUnexpectedToken indicates a token that cannot start or continue
	// an expression at its position.
	ErrCodeUnexpectedToken ErrorCode = "UNEXPECTED_TOKEN"
)

// ParseError is a lexical or syntactic error in a single formula. It aborts
// parsing of that formula only; callers convert it into a cell-level error
// result rather than propagating it.
type ParseError struct {
	Code    ErrorCode
	Message string
	Pos     int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (position %d)", e.Code, e.Message, e.Pos)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(code ErrorCode, pos int, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}
