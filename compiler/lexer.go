package compiler

import (
	"fmt"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for glass source
// ---------------------------------------------------------------------------

// Lexer tokenizes glass source code with one token of lookahead.
type Lexer struct {
	input     string
	pos       int  // current position in input
	readPos   int  // reading position (after current char)
	ch        rune // current character
	line      int  // current line (1-based)
	lineStart int  // offset of current line start

	peeked *Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.lineStart = l.readPos
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.pos - l.lineStart + 1,
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return *l.peeked
}

// NextToken consumes and returns the next token.
func (l *Lexer) NextToken() Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	return l.scan()
}

func (l *Lexer) scan() Token {
	l.skipWhitespace()

	pos := l.position()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: pos}
	}

	if typ, ok := symbolTokens[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: typ, Literal: lit, Pos: pos}
	}

	switch {
	case isIdentStart(l.ch):
		word := l.readWord()
		if typ, ok := reservedWords[word]; ok {
			return Token{Type: typ, Literal: word, Pos: pos}
		}
		return Token{Type: TokenIdentifier, Literal: word, Pos: pos}

	case isDigit(l.ch):
		word := l.readWord()
		for _, r := range word {
			if !isDigit(r) {
				return Token{Type: TokenIllegal, Literal: fmt.Sprintf("malformed integer literal %q", word), Pos: pos}
			}
		}
		return Token{Type: TokenInteger, Literal: word, Pos: pos}
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenIllegal, Literal: fmt.Sprintf("unexpected character: %q", ch), Pos: pos}
}

// readWord consumes a run of word characters.
func (l *Lexer) readWord() string {
	start := l.pos
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\v' || l.ch == '\f' {
		l.readChar()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens of input up to and including EOF, or up to
// and including the first illegal token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return tokens
		}
	}
}
