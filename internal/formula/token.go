package formula

// TokenType classifies formula tokens.
type TokenType int

const (
	TokenNumber TokenType = iota
	TokenString
	TokenCell
	TokenIdentifier
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenColon
	TokenPage
)

// Token is a single lexical unit of a formula. Page tokens additionally
// carry the parsed external reference metadata.
type Token struct {
	Type  TokenType
	Value string
	Page  *PageReference // set only for TokenPage
	Pos   int            // byte position in the formula body
}
