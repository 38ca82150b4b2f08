package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/internal/token"
)

func (p *Parser) numberError(kind string, tok token.Token) ast.Node {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          errors.E1008,
		Message:       fmt.Sprintf("invalid %s: %s", kind, tok.Literal),
		File:          p.l.Filename(),
		StartPosition: tok.StartPosition,
		EndPosition:   tok.EndPosition,
		SourceCode:    p.l.GetLineText(tok),
	}))
	return nil
}

func (p *Parser) parseInt() ast.Node {
	tok := p.curToken
	value, err := strconv.ParseInt(strings.ReplaceAll(tok.Literal, "_", ""), 10, 64)
	if err != nil {
		return p.numberError("integer", tok)
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseFloat() ast.Node {
	tok := p.curToken
	value, err := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
	if err != nil {
		return p.numberError("float", tok)
	}
	return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseBoolean() ast.Node {
	return &ast.Bool{
		ValuePos: p.curToken.StartPosition,
		Literal:  p.curToken.Literal,
		Value:    p.curTokenIs(token.TRUE),
	}
}

func (p *Parser) parseNil() ast.Node {
	return &ast.Nil{NilPos: p.curToken.StartPosition}
}

func (p *Parser) parseString() ast.Node {
	return &ast.String{ValuePos: p.curToken.StartPosition, Value: p.curToken.Literal}
}

func (p *Parser) parseList() ast.Node {
	lbrack := p.curToken.StartPosition
	items, ok := p.parseExprList("list", token.RBRACKET)
	if !ok {
		return nil
	}
	return &ast.List{Lbrack: lbrack, Items: items, Rbrack: p.curToken.StartPosition}
}

// parseExprList parses a comma separated list of expressions terminated by
// end. The current token must be the opening delimiter. On success the
// current token is the closing delimiter.
func (p *Parser) parseExprList(context string, end token.Type) ([]ast.Expr, bool) {
	var list []ast.Expr
	p.skipPeekNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		if p.cancelled() {
			return nil, false
		}
		p.nextToken()
		p.eatNewlines()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // move to ","
		p.skipPeekNewlines()
		if p.peekTokenIs(end) {
			break // trailing comma
		}
	}
	if !p.expectPeek(context, end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseMap() ast.Node {
	lbrace := p.curToken.StartPosition
	var items []ast.MapItem
	p.skipPeekNewlines()
	for !p.peekTokenIs(token.RBRACE) {
		if p.cancelled() {
			return nil
		}
		p.nextToken() // move to the key
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek("map", token.COLON) {
			return nil
		}
		p.nextToken() // move to the value
		p.eatNewlines()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		items = append(items, ast.MapItem{Key: key, Value: value})
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // move to ","
		p.skipPeekNewlines()
	}
	if !p.expectPeek("map", token.RBRACE) {
		return nil
	}
	return &ast.Map{Lbrace: lbrace, Items: items, Rbrace: p.curToken.StartPosition}
}

func (p *Parser) parseAsyncFunc() ast.Node {
	asyncPos := p.curToken.StartPosition
	if !p.expectPeek("async function", token.FUNCTION) {
		return nil
	}
	node := p.parseFunc()
	if node == nil {
		return nil
	}
	fn := node.(*ast.Func)
	fn.Async = true
	fn.Func = asyncPos
	return fn
}

func (p *Parser) parseFunc() ast.Node {
	funcPos := p.curToken.StartPosition
	var ident *ast.Ident
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		ident = p.newIdent(p.curToken)
	}
	if !p.expectPeek("function", token.LPAREN) {
		return nil
	}
	lparen := p.curToken.StartPosition
	params, defaults, ok := p.parseFuncParams()
	if !ok {
		return nil
	}
	rparen := p.curToken.StartPosition
	if !p.expectPeek("function", token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Func{
		Func:     funcPos,
		Name:     ident,
		Lparen:   lparen,
		Params:   params,
		Defaults: defaults,
		Rparen:   rparen,
		Body:     body,
	}
}

func (p *Parser) parseFuncParams() ([]*ast.Ident, map[string]ast.Expr, bool) {
	defaults := map[string]ast.Expr{}
	var params []*ast.Ident
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, defaults, true
	}
	p.nextToken()
	for !p.curTokenIs(token.RPAREN) {
		if p.cancelled() {
			return nil, nil, false
		}
		if p.curTokenIs(token.NEWLINE) {
			if err := p.nextToken(); err != nil {
				return nil, nil, false
			}
			continue
		}
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, "unterminated function parameters")
			return nil, nil, false
		}
		if !p.curTokenIs(token.IDENT) {
			p.setTokenError(p.curToken, "expected an identifier (got %s)", p.curToken.Literal)
			return nil, nil, false
		}
		ident := p.newIdent(p.curToken)
		params = append(params, ident)
		if err := p.nextToken(); err != nil {
			return nil, nil, false
		}
		if p.curTokenIs(token.ASSIGN) {
			p.nextToken()
			expr := p.parseExpression(LOWEST)
			if expr == nil {
				return nil, nil, false
			}
			defaults[ident.Name] = expr
			p.nextToken()
		}
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	return params, defaults, true
}
