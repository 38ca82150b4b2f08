package rewrite

import (
	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/internal/token"
)

// Reconcile gives every node of replacement the start position of the
// statement it replaces, so errors raised by synthesized code point at the
// user's line. Subtrees listed in keep came from the user's source and keep
// their own positions. Structure and values are not changed.
func Reconcile(replacement []ast.Node, original ast.Node, keep ...ast.Node) []ast.Node {
	skip := make(map[ast.Node]bool, len(keep))
	for _, node := range keep {
		if node != nil {
			skip[node] = true
		}
	}
	stamp(replacement, original.Pos(), skip)
	return replacement
}

// Stamp sets every position of every node in nodes to pos.
func Stamp(nodes []ast.Node, pos token.Position) {
	stamp(nodes, pos, nil)
}

func stamp(nodes []ast.Node, pos token.Position, skip map[ast.Node]bool) {
	for _, root := range nodes {
		ast.Inspect(root, func(node ast.Node) bool {
			if skip[node] {
				return false
			}
			setPos(node, pos)
			return true
		})
	}
}

func setPos(node ast.Node, pos token.Position) {
	switch n := node.(type) {
	case *ast.Var:
		n.Let = pos
	case *ast.MultiVar:
		n.Let = pos
	case *ast.Const:
		n.Const = pos
	case *ast.Assign:
		n.OpPos = pos
	case *ast.SetAttr:
		n.Period, n.OpPos = pos, pos
	case *ast.Return:
		n.Return = pos
	case *ast.Throw:
		n.Throw = pos
	case *ast.Import:
		n.Import = pos
	case *ast.Block:
		n.Lbrace, n.Rbrace = pos, pos
	case *ast.Try:
		n.Try = pos
	case *ast.BadExpr:
		n.From, n.To = pos, pos
	case *ast.BadStmt:
		n.From, n.To = pos, pos
	case *ast.Ident:
		n.NamePos = pos
	case *ast.Int:
		n.ValuePos = pos
	case *ast.Float:
		n.ValuePos = pos
	case *ast.Bool:
		n.ValuePos = pos
	case *ast.String:
		n.ValuePos = pos
	case *ast.Nil:
		n.NilPos = pos
	case *ast.Prefix:
		n.OpPos = pos
	case *ast.Infix:
		n.OpPos = pos
	case *ast.If:
		n.If, n.Lparen, n.Rparen = pos, pos, pos
	case *ast.Call:
		n.Lparen, n.Rparen = pos, pos
	case *ast.GetAttr:
		n.Period = pos
	case *ast.Index:
		n.Lbrack, n.Rbrack = pos, pos
	case *ast.Await:
		n.Await = pos
	case *ast.List:
		n.Lbrack, n.Rbrack = pos, pos
	case *ast.Map:
		n.Lbrace, n.Rbrace = pos, pos
	case *ast.Func:
		n.Func, n.Lparen, n.Rparen = pos, pos, pos
	}
}
