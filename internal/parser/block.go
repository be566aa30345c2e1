package parser

import (
	"bsc/internal/hir"
	"bsc/internal/lexer"
)

// block parses a `{ ... }` body under a fresh scope nested in surrounding,
// splicing its statements' HIR directly into whatever block is currently
// open. It returns the trailing expression's HIR node if the body ends in
// one (so the caller can treat the block as a value), or nil if it ends in
// a `;`-terminated statement — mirroring parse_block's Statement{expr,
// failure} result, with failures reported via panic instead of a sentinel.
func (p *Parser) block(surrounding *Scope) *hir.Node {
	p.consume(lexer.TokenLBrace, "expected a {} block here")

	scope := newScope(surrounding)
	var blockExpr *hir.Node

	for p.until(lexer.TokenRBrace) {
		switch p.peek().Type {
		case lexer.TokenLBrace:
			inner := p.block(scope)
			if inner != nil && p.peek().Type == lexer.TokenRBrace {
				blockExpr = inner
			}

		case lexer.TokenIf:
			p.ifStmt(scope)

		case lexer.TokenWhile:
			p.whileStmt(scope)

		case lexer.TokenReturn:
			p.returnStmt(scope)

		case lexer.TokenLet:
			p.letStmt(scope)

		default:
			expr := p.naturalExpr(scope)
			switch p.peek().Type {
			case lexer.TokenSemicolon:
				p.advance()
			case lexer.TokenRBrace:
				blockExpr = expr
			default:
				p.errorAt(p.peek(), "ill-formed expression")
			}
		}
	}

	p.lastRBrace = p.peek()
	p.consume(lexer.TokenRBrace, "missing a closing } here")

	return blockExpr
}

// ifStmt parses `if <expr> { then } [else { else }]`, splicing a BRANCH at
// the point the predicate was parsed and back-patching its Then/Else block
// targets once both arms have been parsed (parse_if).
func (p *Parser) ifStmt(scope *Scope) {
	ifTok := p.consume(lexer.TokenIf, "expecting an if statement here")

	predicate := p.expr(scope)
	branch := p.newNode(hir.OpBranch, ifTok)

	locThen := p.newBlock()
	p.block(scope)
	jumpThen := p.newNode(hir.OpJump, p.lastRBrace)

	locElse := p.newBlock()
	locEnd := locElse

	if p.peek().Type == lexer.TokenElse {
		p.advance()

		p.block(scope)
		jumpElse := p.newNode(hir.OpJump, p.lastRBrace)
		locEnd = p.newBlock()
		jumpElse.Target = locEnd
	}

	branch.Pred = predicate
	branch.Then = locThen
	branch.Else = locElse
	jumpThen.Target = locEnd
}

// whileStmt parses `while <expr> { body }`. The JUMP to the loop's start
// block is created before that block exists (init_jump's Target is
// back-patched only after new_block runs) — this is the same ordering
// original_source/parse.c's parse_while uses, preserved as-is per spec.md
// §9's note not to silently "fix" it.
func (p *Parser) whileStmt(scope *Scope) {
	whileTok := p.consume(lexer.TokenWhile, "expecting a while loop here")

	initJump := p.newNode(hir.OpJump, whileTok)
	start := p.newBlock()

	predicate := p.expr(scope)
	branch := p.newNode(hir.OpBranch, whileTok)

	locThen := p.newBlock()
	p.block(scope)
	loopJump := p.newNode(hir.OpJump, p.lastRBrace)

	end := p.newBlock()

	initJump.Target = start
	branch.Pred = predicate
	branch.Then = locThen
	branch.Else = end
	loopJump.Target = start
}

// returnStmt parses `return [<expr>];`, always opening a fresh block
// afterward since a RET always ends the current block's control flow
// (parse_return).
func (p *Parser) returnStmt(scope *Scope) {
	returnTok := p.consume(lexer.TokenReturn, "expected a return statement here")

	var value *hir.Node
	if p.peek().Type != lexer.TokenSemicolon {
		value = p.expr(scope)
	}

	p.consume(lexer.TokenSemicolon, "ill-formed return statement")

	ret := p.newNode(hir.OpRet, returnTok)
	ret.Value = value

	p.newBlock()
}

// letStmt parses `let <name>;`, declaring name as a fresh HIR_LOCAL in
// scope. Notably it never parses an initializer — `let x = 1;` is not
// valid bs syntax — matching original_source/parse.c's parse_let exactly,
// one of the source's documented ambiguities spec.md §9 asks not to
// silently fix.
func (p *Parser) letStmt(scope *Scope) {
	p.consume(lexer.TokenLet, "expected a local variable declaration")

	nameTok := p.consume(lexer.TokenIdent, "this is not a valid variable name")
	p.consume(lexer.TokenSemicolon, "expected ';'")

	if scope.find(nameTok.Lexeme) != nil {
		p.errorAt(nameTok, "symbol clashes with an existing name")
	}

	local := p.newNode(hir.OpLocal, nameTok)
	scope.insert(nameTok.Lexeme, local)
}
