package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		walkList(v, n.Stmts)

	// Statements
	case *Var:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *MultiVar:
		for _, name := range n.Names {
			Walk(v, name)
		}
		Walk(v, n.Value)
	case *Const:
		Walk(v, n.Name)
		Walk(v, n.Value)
	case *Assign:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		if n.Index != nil {
			Walk(v, n.Index)
		}
		Walk(v, n.Value)
	case *SetAttr:
		Walk(v, n.X)
		Walk(v, n.Attr)
		Walk(v, n.Value)
	case *Return:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Throw:
		Walk(v, n.Value)
	case *Import:
		Walk(v, n.Name)
		if n.Alias != nil {
			Walk(v, n.Alias)
		}
	case *Block:
		walkList(v, n.Stmts)
	case *Try:
		Walk(v, n.Body)
		if n.CatchIdent != nil {
			Walk(v, n.CatchIdent)
		}
		if n.CatchBlock != nil {
			Walk(v, n.CatchBlock)
		}
		if n.FinallyBlock != nil {
			Walk(v, n.FinallyBlock)
		}

	// Error recovery nodes
	case *BadExpr, *BadStmt:
		// No children

	// Expressions
	case *Ident, *Int, *Float, *Bool, *Nil, *String:
		// No children
	case *Prefix:
		Walk(v, n.X)
	case *Infix:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Consequence)
		if n.Alternative != nil {
			Walk(v, n.Alternative)
		}
	case *Call:
		Walk(v, n.Fun)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *GetAttr:
		Walk(v, n.X)
		Walk(v, n.Attr)
	case *Index:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *Await:
		Walk(v, n.X)
	case *List:
		for _, item := range n.Items {
			Walk(v, item)
		}
	case *Map:
		for _, item := range n.Items {
			Walk(v, item.Key)
			Walk(v, item.Value)
		}
	case *Func:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, param := range n.Params {
			Walk(v, param)
			if def, ok := n.Defaults[param.Name]; ok {
				Walk(v, def)
			}
		}
		Walk(v, n.Body)
	}
}

func walkList(v Visitor, nodes []Node) {
	for _, node := range nodes {
		Walk(v, node)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at root
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		ok := true
		Inspect(root, func(n Node) bool {
			if ok {
				ok = yield(n)
			}
			return ok
		})
	}
}
