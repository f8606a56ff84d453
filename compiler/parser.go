package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parser: precedence-climbing parser for glass
// ---------------------------------------------------------------------------

// Parser parses glass source into a Tree. Parsing stops at the first
// error.
type Parser struct {
	lexer  *Lexer
	tree   *Tree
	errors []*Error
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	return &Parser{
		lexer: NewLexer(input),
		tree:  &Tree{},
	}
}

func (p *Parser) cur() Token {
	return p.lexer.Peek()
}

func (p *Parser) advance() Token {
	return p.lexer.NextToken()
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.cur().Type == t
}

// expect consumes the current token if it matches, otherwise records an
// error.
func (p *Parser) expect(t TokenType) (Token, bool) {
	tok := p.cur()
	if tok.Type == t {
		return p.advance(), true
	}
	p.unexpected(tok, "expected "+t.String())
	return tok, false
}

func (p *Parser) unexpected(tok Token, want string) {
	switch tok.Type {
	case TokenIllegal:
		p.errorf(tok.Pos, "%s", tok.Literal)
	case TokenEOF:
		p.errorf(tok.Pos, "%s, got end of input", want)
	default:
		p.errorf(tok.Pos, "%s, got %s", want, tok)
	}
}

// errorf records a parse error.
func (p *Parser) errorf(pos Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{Pos: pos, Kind: ErrSyntax, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// ParseProgram parses top-level statements until end of input or the
// first error.
func (p *Parser) ParseProgram() *Tree {
	for !p.curTokenIs(TokenEOF) && !p.failed() {
		id := p.parseStatement()
		if id == NoNode {
			break
		}
		p.tree.Roots = append(p.tree.Roots, id)
	}
	return p.tree
}

func (p *Parser) parseStatement() NodeID {
	switch tok := p.cur(); tok.Type {
	case TokenFunc:
		return p.parseFuncDecl()
	case TokenReturn:
		return p.parseReturn()
	default:
		p.unexpected(tok, "expected statement")
		return NoNode
	}
}

// parseFuncDecl parses: func NAME ( ) { statements }
func (p *Parser) parseFuncDecl() NodeID {
	p.advance() // func
	name, ok := p.expect(TokenIdentifier)
	if !ok {
		return NoNode
	}
	if _, ok := p.expect(TokenLParen); !ok {
		return NoNode
	}
	if _, ok := p.expect(TokenRParen); !ok {
		return NoNode
	}
	open, ok := p.expect(TokenLBrace)
	if !ok {
		return NoNode
	}
	body := p.parseBlockBody(open)
	if body == NoNode {
		return NoNode
	}
	return p.tree.newUnary(KindFuncDecl, name, body)
}

// parseReturn parses: return EXPR ;
func (p *Parser) parseReturn() NodeID {
	tok := p.advance() // return
	expr := p.parseExpr(0)
	if expr == NoNode {
		return NoNode
	}
	if _, ok := p.expect(TokenSemicolon); !ok {
		return NoNode
	}
	return p.tree.newUnary(KindReturn, tok, expr)
}

// parseBlockBody parses statements up to the closing brace; the opening brace
// has already been consumed.
func (p *Parser) parseBlockBody(open Token) NodeID {
	var stmts []NodeID
	for !p.curTokenIs(TokenRBrace) {
		if p.curTokenIs(TokenEOF) {
			p.errorf(p.cur().Pos, "unclosed block opened at %s", open.Pos)
			return NoNode
		}
		id := p.parseStatement()
		if id == NoNode {
			return NoNode
		}
		stmts = append(stmts, id)
	}
	p.advance() // }
	return p.tree.newBlock(open, stmts)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

const prefixBindingPower = 100

// infixBindingPower returns the left and right binding powers of an infix
// operator. Equal left and right powers make every operator left
// associative.
func infixBindingPower(t TokenType) (int, int, bool) {
	switch t {
	case TokenEqual:
		return 3, 3, true
	case TokenPlus, TokenMinus:
		return 10, 10, true
	case TokenSlash, TokenStar:
		return 20, 20, true
	}
	return 0, 0, false
}

// ParseExpression parses a single expression and returns its id within
// the parser's tree.
func (p *Parser) ParseExpression() NodeID {
	return p.parseExpr(0)
}

// Tree returns the tree built so far.
func (p *Parser) Tree() *Tree {
	return p.tree
}

func (p *Parser) parseExpr(minBP int) NodeID {
	lhs := p.parsePrefix()
	if lhs == NoNode {
		return NoNode
	}

	for {
		tok := p.cur()
		if tok.Type == TokenLParen {
			p.advance()
			if _, ok := p.expect(TokenRParen); !ok {
				return NoNode
			}
			lhs = p.tree.newUnary(KindCall, tok, lhs)
			continue
		}

		lbp, rbp, ok := infixBindingPower(tok.Type)
		if !ok || lbp <= minBP {
			break
		}
		p.advance()
		rhs := p.parseExpr(rbp)
		if rhs == NoNode {
			return NoNode
		}
		lhs = p.tree.newBinary(tok, lhs, rhs)
	}
	return lhs
}

func (p *Parser) parsePrefix() NodeID {
	tok := p.cur()
	switch tok.Type {
	case TokenInteger:
		p.advance()
		return p.tree.newLeaf(KindLiteral, tok)
	case TokenIdentifier:
		p.advance()
		return p.tree.newLeaf(KindIdentifier, tok)
	case TokenMinus:
		p.advance()
		operand := p.parseExpr(prefixBindingPower)
		if operand == NoNode {
			return NoNode
		}
		return p.tree.newUnary(KindUnary, tok, operand)
	case TokenLBrace:
		p.advance()
		return p.parseBlockBody(tok)
	default:
		p.unexpected(tok, "expected expression")
		return NoNode
	}
}
