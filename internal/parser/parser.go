// Package parser implements bs's Pratt/recursive-descent parser. Unlike the
// teacher's parser, which builds a separate Stmt/Expr AST for a tree-walking
// visitor to consume, this parser builds HIR nodes directly as it goes —
// spec.md's two-tier pipeline has no AST tier at all, so the teacher's
// visitor layer has no home here and the parser instead plays the role of
// original_source/parse.c's Parser: a cursor over tokens plus a cursor over
// the HIR block list (Proc.Tail), appending nodes to whichever block is
// currently open.
//
// Errors are reported by panicking with a *bserrors.BSError, caught at the
// single recover() in Parse — the same panic-to-error boundary pattern the
// teacher's own parser.consume uses (internal/parser/parser.go's
// `panic(err)` in the original sentra parser).
package parser

import (
	"fmt"

	"bsc/internal/arena"
	bserrors "bsc/internal/errors"
	"bsc/internal/hir"
	"bsc/internal/lexer"
)

// Parser is a cursor over a token stream and the HIR block currently being
// appended to.
type Parser struct {
	tokens []lexer.Token
	pos    int
	path   string

	proc *hir.Proc

	// lastRBrace is the '}' token most recently consumed by block, used as
	// the source location for the JUMP nodes parse_if/parse_while splice in
	// right after a body closes — mirroring
	// original_source/parse.c's Parser.last_rbrace field exactly.
	lastRBrace lexer.Token
}

// Parse tokenizes and parses source, building proc's HIR in the arena a.
// A malformed program returns a *bserrors.BSError of Kind ParseError.
func Parse(a *arena.Arena, path, source string) (proc *hir.Proc, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("parser: %v", r)
			}
			proc = nil
		}
	}()

	p := &Parser{
		tokens: lexer.NewScanner(source).ScanTokens(),
		path:   path,
		proc:   hir.NewProc(a),
	}
	p.proc.NewBlock()

	result := p.block(nil)
	if result != nil {
		ret := p.newNode(hir.OpRet, result.Token)
		ret.Value = result
	}

	return p.proc, nil
}

// newNode allocates a node of op/tok and appends it to the currently open
// block (original_source/parse.c's new_node).
func (p *Parser) newNode(op hir.Op, tok lexer.Token) *hir.Node {
	n := p.proc.NewNode(op, tok)
	hir.Append(p.proc.Tail(), n)
	return n
}

// newBlock opens a fresh block as the new append target (new_block).
func (p *Parser) newBlock() *hir.Block {
	return p.proc.NewBlock()
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokenEOF {
		p.pos++
	}
	return tok
}

// until reports whether the next token is neither t nor EOF, the loop guard
// parse_block uses to know when to keep consuming statements.
func (p *Parser) until(t lexer.TokenType) bool {
	next := p.peek().Type
	return next != t && next != lexer.TokenEOF
}

// consume requires the next token to have type t, reporting msg as a
// ParseError otherwise (REQUIRE/match in the source).
func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	tok := p.peek()
	if tok.Type != t {
		p.errorAt(tok, "%s (got %q)", msg, tok.Lexeme)
	}
	return p.advance()
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) {
	loc := bserrors.SourceLocation{
		File:     p.path,
		Line:     tok.Line,
		Column:   tok.Column,
		LineText: tok.LineText,
	}
	panic(bserrors.New(bserrors.ParseError, loc, format, args...))
}

// expr parses either a block-as-expression (`{ ... }`, requiring it to
// produce a trailing value) or a natural (binary/assignment) expression,
// matching parse_expr's dispatch.
func (p *Parser) expr(scope *Scope) *hir.Node {
	tok := p.peek()
	if tok.Type == lexer.TokenLBrace {
		inner := p.block(scope)
		if inner == nil {
			p.errorAt(tok, "block does not produce a value")
		}
		return inner
	}
	return p.naturalExpr(scope)
}

func (p *Parser) naturalExpr(scope *Scope) *hir.Node {
	return p.parseAssign(scope)
}

func (p *Parser) parseAssign(scope *Scope) *hir.Node {
	left := p.parseBinary(scope, 0)

	if p.peek().Type == lexer.TokenEqual {
		eqTok := p.advance()

		right := p.parseAssign(scope)
		addr := addressOf(p, left)

		assign := p.newNode(hir.OpAssign, eqTok)
		assign.Addr = addr
		assign.Value = right

		left = right
	}

	return left
}

// addressOf converts an lvalue expression (only a LOAD is one here) to the
// local it was loaded from, the way x = v assigns through x's address
// rather than through the loaded value (address_of in the source).
func addressOf(p *Parser, n *hir.Node) *hir.Node {
	if n.Op != hir.OpLoad {
		p.errorAt(n.Token, "cannot assign this expression")
	}
	return n.Addr
}

func (p *Parser) parseBinary(scope *Scope, callerPrec int) *hir.Node {
	left := p.primary(scope)

	for binaryPrec(p.peek().Type) > callerPrec {
		op := p.advance()

		right := p.parseBinary(scope, binaryPrec(op.Type))

		bin := p.newNode(binaryOp(op.Type), op)
		bin.Binary[0] = left
		bin.Binary[1] = right

		left = bin
	}

	return left
}

// binaryPrec gives '*' and '/' higher precedence than '+' and '-',
// matching spec.md §1's grammar (binary_prec).
func binaryPrec(t lexer.TokenType) int {
	switch t {
	case lexer.TokenStar, lexer.TokenSlash:
		return 20
	case lexer.TokenPlus, lexer.TokenMinus:
		return 10
	default:
		return 0
	}
}

func binaryOp(t lexer.TokenType) hir.Op {
	switch t {
	case lexer.TokenStar:
		return hir.OpMul
	case lexer.TokenSlash:
		return hir.OpDiv
	case lexer.TokenPlus:
		return hir.OpAdd
	case lexer.TokenMinus:
		return hir.OpSub
	default:
		panic("parser: not a binary operator")
	}
}

func (p *Parser) primary(scope *Scope) *hir.Node {
	tok := p.peek()

	switch tok.Type {
	case lexer.TokenInt:
		p.advance()
		n := p.newNode(hir.OpIntConst, tok)
		n.IntConst = tok.Int
		return n

	case lexer.TokenLBrace:
		return p.expr(scope)

	case lexer.TokenIdent:
		p.advance()
		symbol := scope.find(tok.Lexeme)
		if symbol == nil {
			p.errorAt(tok, "symbol doesn't exist in this scope")
		}
		load := p.newNode(hir.OpLoad, tok)
		load.Addr = symbol
		return load
	}

	p.errorAt(tok, "unexpected token here")
	return nil
}
