package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenize_Arithmetic(t *testing.T) {
	tokens, err := Tokenize("A1 + 2.5 * (B2 - 1)")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		TokenCell, TokenOperator, TokenNumber, TokenOperator,
		TokenLeftParen, TokenCell, TokenOperator, TokenNumber, TokenRightParen,
	}, tokenTypes(tokens))
	assert.Equal(t, "A1", tokens[0].Value)
	assert.Equal(t, "2.5", tokens[2].Value)
}

func TestTokenize_TwoCharOperators(t *testing.T) {
	tokens, err := Tokenize("A1<=B1<>C1>=D1")
	require.NoError(t, err)

	var ops []string
	for _, tok := range tokens {
		if tok.Type == TokenOperator {
			ops = append(ops, tok.Value)
		}
	}
	assert.Equal(t, []string{"<=", "<>", ">="}, ops)
}

func TestTokenize_CellVersusIdentifier(t *testing.T) {
	tokens, err := Tokenize("sum(a1, total, AB12, A1B2)")
	require.NoError(t, err)

	assert.Equal(t, TokenIdentifier, tokens[0].Type)
	assert.Equal(t, "SUM", tokens[0].Value)
	assert.Equal(t, TokenCell, tokens[2].Type)
	assert.Equal(t, "A1", tokens[2].Value)
	assert.Equal(t, TokenIdentifier, tokens[4].Type)
	assert.Equal(t, "TOTAL", tokens[4].Value)
	assert.Equal(t, TokenCell, tokens[6].Type)
	assert.Equal(t, "AB12", tokens[6].Value)
	// letters-digits-letters is not a cell
	assert.Equal(t, TokenIdentifier, tokens[8].Type)
	assert.Equal(t, "A1B2", tokens[8].Value)
}

func TestTokenize_StringLiteral(t *testing.T) {
	tokens, err := Tokenize(`"hello world" & A1`)
	require.NoError(t, err)
	assert.Equal(t, TokenString, tokens[0].Type)
	assert.Equal(t, "hello world", tokens[0].Value)
}

func TestTokenize_LexicalErrors(t *testing.T) {
	tests := []struct {
		input string
		code  ErrorCode
	}{
		{`"unclosed`, ErrCodeUnterminatedString},
		{"1.2.3", ErrCodeInvalidNumberLiteral},
		{"1.", ErrCodeInvalidNumberLiteral},
		{"A1 # B1", ErrCodeUnexpectedCharacter},
		{"@[no close", ErrCodeInvalidPageMention},
	}
	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		require.Error(t, err, "input %q", tt.input)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "input %q", tt.input)
		assert.Equal(t, tt.code, pe.Code, "input %q", tt.input)
	}
}

func TestTokenize_PageMention(t *testing.T) {
	tokens, err := Tokenize("@[Budget 2026](3f2a:page):B2")
	require.NoError(t, err)

	require.Equal(t, []TokenType{TokenPage, TokenColon, TokenCell}, tokenTypes(tokens))
	page := tokens[0].Page
	require.NotNil(t, page)
	assert.Equal(t, "Budget 2026", page.Label)
	assert.Equal(t, "budget 2026", page.NormalizedLabel)
	assert.Equal(t, "3f2a", page.Identifier)
	assert.Equal(t, "page", page.MentionType)
	assert.Equal(t, "@[Budget 2026](3f2a:page)", page.Raw)
}

func TestTokenize_PageMentionWithoutQualifier(t *testing.T) {
	tokens, err := Tokenize("@[Plan]:A1")
	require.NoError(t, err)

	page := tokens[0].Page
	require.NotNil(t, page)
	assert.Equal(t, "Plan", page.Label)
	assert.Empty(t, page.Identifier)
	assert.Empty(t, page.MentionType)
	assert.Equal(t, "@[Plan]", page.Key())
}
