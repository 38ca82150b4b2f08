package parser

import (
	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/internal/token"
)

// Statement parsing methods for the Parser.

func (p *Parser) parseLet() ast.Node {
	letPos := p.curToken.StartPosition
	if !p.expectPeek("let statement", token.IDENT) {
		return nil
	}
	idents := []*ast.Ident{p.newIdent(p.curToken)}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek("let statement", token.IDENT) {
			return nil
		}
		idents = append(idents, p.newIdent(p.curToken))
	}
	if !p.expectPeek("let statement", token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseAssignmentValue()
	if value == nil {
		return nil
	}
	if len(idents) > 1 {
		return &ast.MultiVar{Let: letPos, Names: idents, Value: value}
	}
	return &ast.Var{Let: letPos, Name: idents[0], Value: value}
}

func (p *Parser) parseConst() ast.Node {
	constPos := p.curToken.StartPosition
	if !p.expectPeek("const statement", token.IDENT) {
		return nil
	}
	ident := p.newIdent(p.curToken)
	if !p.expectPeek("const statement", token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseAssignmentValue()
	if value == nil {
		return nil
	}
	return &ast.Const{Const: constPos, Name: ident, Value: value}
}

// parseAssignmentValue parses the right hand side of an assignment statement.
func (p *Parser) parseAssignmentValue() ast.Expr {
	assignToken := p.prevToken
	p.eatNewlines()
	result := p.parseExpression(LOWEST)
	if result == nil {
		if !p.hadNewError() {
			p.addError(NewParserError(ErrorOpts{
				ErrType:       "parse error",
				Code:          errors.E1004,
				Message:       "assignment is missing a value",
				File:          p.l.Filename(),
				StartPosition: assignToken.StartPosition,
				EndPosition:   assignToken.EndPosition,
				SourceCode:    p.l.GetLineText(assignToken),
			}))
		}
		return nil
	}
	return result
}

func (p *Parser) parseReturn() ast.Node {
	returnPos := p.curToken.StartPosition
	if statementTerminators[p.peekToken.Type] {
		return &ast.Return{Return: returnPos}
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Return{Return: returnPos, Value: value}
}

func (p *Parser) parseThrow() ast.Node {
	throwPos := p.curToken.StartPosition
	if statementTerminators[p.peekToken.Type] {
		return p.setTokenError(p.curToken, "throw statement requires a value")
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Throw{Throw: throwPos, Value: value}
}

func (p *Parser) parseImport() ast.Node {
	importPos := p.curToken.StartPosition
	if !p.expectPeek("import statement", token.IDENT) {
		return nil
	}
	name := p.newIdent(p.curToken)
	var alias *ast.Ident
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek("import alias", token.IDENT) {
			return nil
		}
		alias = p.newIdent(p.curToken)
	}
	return &ast.Import{Import: importPos, Name: name, Alias: alias}
}

func (p *Parser) parseTry() ast.Node {
	tryPos := p.curToken.StartPosition
	if !p.expectPeek("try statement", token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	var catchIdent *ast.Ident
	var catchBlock, finallyBlock *ast.Block
	if p.skipNewlinesAndPeek(token.CATCH) {
		p.nextToken() // move to "catch"
		if p.peekTokenIs(token.IDENT) {
			p.nextToken()
			catchIdent = p.newIdent(p.curToken)
		}
		if !p.expectPeek("catch block", token.LBRACE) {
			return nil
		}
		if catchBlock = p.parseBlock(); catchBlock == nil {
			return nil
		}
	}
	if p.skipNewlinesAndPeek(token.FINALLY) {
		p.nextToken() // move to "finally"
		if !p.expectPeek("finally block", token.LBRACE) {
			return nil
		}
		if finallyBlock = p.parseBlock(); finallyBlock == nil {
			return nil
		}
	}
	if catchBlock == nil && finallyBlock == nil {
		return p.setTokenError(p.peekToken, "try statement requires at least one of catch or finally")
	}
	return &ast.Try{
		Try:          tryPos,
		Body:         body,
		CatchIdent:   catchIdent,
		CatchBlock:   catchBlock,
		FinallyBlock: finallyBlock,
	}
}

func (p *Parser) parseExpressionStatement() ast.Node {
	expr := p.parseNode(LOWEST)
	if expr == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid syntax")
		}
		return nil
	}
	return expr
}

func (p *Parser) parseAssign(target ast.Node) ast.Node {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	var ident *ast.Ident
	var index *ast.Index
	switch node := target.(type) {
	case *ast.Ident:
		ident = node
	case *ast.Index:
		index = node
	default:
		return p.setTokenError(p.curToken, "unexpected token for assignment: %s", target.String())
	}
	p.nextToken() // move to the RHS value
	p.eatNewlines()
	right := p.parseExpression(LOWEST)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid assignment statement value")
		}
		return nil
	}
	return &ast.Assign{Name: ident, Index: index, OpPos: opPos, Op: op, Value: right}
}

// parseBlock parses statements up to the closing brace. The current token
// must be the opening brace.
func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.curToken.StartPosition
	statements := []ast.Node{}
	if err := p.nextToken(); err != nil {
		return nil
	}
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.cancelled() {
			return nil
		}
		stmt := p.parseStatementStrict()
		if p.hadNewError() {
			return nil
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if p.curTokenIs(token.EOF) {
		p.setTokenError(p.curToken, "unterminated block statement")
		return nil
	}
	return &ast.Block{Lbrace: lbrace, Stmts: statements, Rbrace: p.curToken.StartPosition}
}
