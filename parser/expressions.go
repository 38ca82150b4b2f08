package parser

import (
	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/internal/token"
)

func (p *Parser) parseIdent() ast.Node {
	return p.newIdent(p.curToken)
}

func (p *Parser) parsePrefixExpr() ast.Node {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	if err := p.nextToken(); err != nil {
		return nil
	}
	right := p.parseExpression(PREFIX)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid prefix expression")
		}
		return nil
	}
	return &ast.Prefix{OpPos: opPos, Op: op, X: right}
}

func (p *Parser) parseAwait() ast.Node {
	awaitPos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil
	}
	p.eatNewlines()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "await requires an operand")
		}
		return nil
	}
	return &ast.Await{Await: awaitPos, X: operand}
}

func (p *Parser) parseInfixExpr(leftNode ast.Node) ast.Node {
	left, ok := leftNode.(ast.Expr)
	if !ok {
		return p.setTokenError(p.curToken, "invalid expression")
	}
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	precedence := p.currentPrecedence()
	p.nextToken()
	p.eatNewlines()
	right := p.parseExpression(precedence)
	if right == nil {
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid expression")
		}
		return nil
	}
	return &ast.Infix{X: left, OpPos: opPos, Op: op, Y: right}
}

func (p *Parser) parseGroupedExpr() ast.Node {
	p.nextToken()
	p.eatNewlines()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseIf() ast.Node {
	ifPos := p.curToken.StartPosition
	if !p.expectPeek("an if expression", token.LPAREN) {
		return nil
	}
	lparen := p.curToken.StartPosition
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil
	}
	if !p.expectPeek("an if expression", token.RPAREN) {
		return nil
	}
	rparen := p.curToken.StartPosition
	if !p.expectPeek("an if expression", token.LBRACE) {
		return nil
	}
	consequence := p.parseBlock()
	if consequence == nil {
		return nil
	}
	var alternative *ast.Block
	if p.skipNewlinesAndPeek(token.ELSE) {
		p.nextToken() // move to the "else"
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			nestedPos := p.curToken.StartPosition
			nested := p.parseIf()
			if nested == nil {
				return nil
			}
			alternative = &ast.Block{Lbrace: nestedPos, Stmts: []ast.Node{nested}, Rbrace: nested.End()}
		} else {
			if !p.expectPeek("an if expression", token.LBRACE) {
				return nil
			}
			if alternative = p.parseBlock(); alternative == nil {
				return nil
			}
		}
	}
	return &ast.If{
		If:          ifPos,
		Lparen:      lparen,
		Cond:        cond,
		Rparen:      rparen,
		Consequence: consequence,
		Alternative: alternative,
	}
}

func (p *Parser) parseIndex(leftNode ast.Node) ast.Node {
	left, ok := leftNode.(ast.Expr)
	if !ok {
		return p.setTokenError(p.curToken, "invalid index expression")
	}
	lbrack := p.curToken.StartPosition
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if !p.expectPeek("an index expression", token.RBRACKET) {
		return nil
	}
	return &ast.Index{X: left, Lbrack: lbrack, Index: index, Rbrack: p.curToken.StartPosition}
}

func (p *Parser) parseCall(functionNode ast.Node) ast.Node {
	function, ok := functionNode.(ast.Expr)
	if !ok {
		return p.setTokenError(p.curToken, "invalid call expression")
	}
	lparen := p.curToken.StartPosition
	args, ok := p.parseExprList("function call", token.RPAREN)
	if !ok {
		return nil
	}
	return &ast.Call{Fun: function, Lparen: lparen, Args: args, Rparen: p.curToken.StartPosition}
}

// parseGetAttr parses attribute access. An assignment operator following the
// attribute turns the expression into a SetAttr statement.
func (p *Parser) parseGetAttr(objNode ast.Node) ast.Node {
	obj, ok := objNode.(ast.Expr)
	if !ok {
		return p.setTokenError(p.curToken, "invalid attribute expression")
	}
	period := p.curToken.StartPosition
	p.nextToken()
	p.eatNewlines()
	if !p.curTokenIs(token.IDENT) {
		return p.setTokenError(p.curToken, "expected an identifier after %q", ".")
	}
	name := p.newIdent(p.curToken)
	switch p.peekToken.Type {
	case token.ASSIGN, token.PLUS_EQUALS, token.MINUS_EQUALS, token.ASTERISK_EQUALS, token.SLASH_EQUALS:
		p.nextToken() // move to the operator
		opPos := p.curToken.StartPosition
		op := p.curToken.Literal
		p.nextToken() // move to the value
		p.eatNewlines()
		right := p.parseExpression(LOWEST)
		if right == nil {
			if !p.hadNewError() {
				p.setTokenError(p.curToken, "invalid assignment statement value")
			}
			return nil
		}
		return &ast.SetAttr{X: obj, Period: period, Attr: name, OpPos: opPos, Op: op, Value: right}
	}
	return &ast.GetAttr{X: obj, Period: period, Attr: name}
}
