package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the glass lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Words
	TokenIdentifier // foo, _tmp, $x
	TokenInteger    // 42

	// Keywords
	TokenFunc
	TokenReturn
	TokenLet

	// Symbols
	TokenLParen    // (
	TokenRParen    // )
	TokenColon     // :
	TokenSemicolon // ;
	TokenLBrace    // {
	TokenRBrace    // }
	TokenEqual     // =
	TokenPlus      // +
	TokenMinus     // -
	TokenSlash     // /
	TokenStar      // *
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenIllegal:    "ILLEGAL",
	TokenIdentifier: "IDENTIFIER",
	TokenInteger:    "INTEGER",
	TokenFunc:       "func",
	TokenReturn:     "return",
	TokenLet:        "let",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenColon:      ":",
	TokenSemicolon:  ";",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenEqual:      "=",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenSlash:      "/",
	TokenStar:       "*",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text
	Pos     Position // start position
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return fmt.Sprintf("ILLEGAL(%s)", t.Literal)
	case TokenIdentifier, TokenInteger:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return fmt.Sprintf("%q", t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"func":   TokenFunc,
	"return": TokenReturn,
	"let":    TokenLet,
}

var symbolTokens = map[rune]TokenType{
	'(': TokenLParen,
	')': TokenRParen,
	':': TokenColon,
	';': TokenSemicolon,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'=': TokenEqual,
	'+': TokenPlus,
	'-': TokenMinus,
	'/': TokenSlash,
	'*': TokenStar,
}
