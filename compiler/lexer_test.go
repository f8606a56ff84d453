package compiler

import (
	"strings"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( ) : ; { } = + - / *`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenColon, ":"},
		{TokenSemicolon, ";"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenEqual, "="},
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenSlash, "/"},
		{TokenStar, "*"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerWords(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"func", TokenFunc},
		{"return", TokenReturn},
		{"let", TokenLet},
		{"main", TokenIdentifier},
		{"_tmp", TokenIdentifier},
		{"$x", TokenIdentifier},
		{"a1_b$", TokenIdentifier},
		{"functional", TokenIdentifier},
		{"0", TokenInteger},
		{"18446744073709551615", TokenInteger},
	}
	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != tt.typ || tok.Literal != tt.input {
			t.Errorf("%q: got %s, want %s", tt.input, tok, tt.typ)
		}
	}
}

func TestLexerIllegal(t *testing.T) {
	for _, input := range []string{"12ab", "#", "3$", "é"} {
		tok := NewLexer(input).NextToken()
		if tok.Type != TokenIllegal {
			t.Errorf("%q: got %s, want ILLEGAL", input, tok)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("func main() {\n  return 42;\n}")
	var ret, lit Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		switch tok.Type {
		case TokenReturn:
			ret = tok
		case TokenInteger:
			lit = tok
		}
	}
	if ret.Pos.Line != 2 || ret.Pos.Column != 3 {
		t.Errorf("return at %s, want 2:3", ret.Pos)
	}
	if lit.Pos.Line != 2 || lit.Pos.Column != 10 {
		t.Errorf("42 at %s, want 2:10", lit.Pos)
	}
	if lit.Pos.Offset != strings.Index("func main() {\n  return 42;\n}", "42") {
		t.Errorf("42 offset = %d", lit.Pos.Offset)
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l := NewLexer("return 1;")
	if l.Peek().Type != TokenReturn || l.Peek().Type != TokenReturn {
		t.Fatal("Peek should be stable")
	}
	if l.NextToken().Type != TokenReturn {
		t.Fatal("NextToken should return the peeked token")
	}
	if l.NextToken().Type != TokenInteger {
		t.Fatal("expected integer after return")
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("return 1 + x;")
	want := []TokenType{TokenReturn, TokenInteger, TokenPlus, TokenIdentifier, TokenSemicolon, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("token[%d] = %s, want %s", i, tokens[i], typ)
		}
	}

	tokens = Tokenize("1 @ 2")
	if last := tokens[len(tokens)-1]; last.Type != TokenIllegal {
		t.Errorf("Tokenize should stop at the illegal token, got %s", last)
	}
}
