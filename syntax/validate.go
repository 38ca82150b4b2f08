package syntax

import (
	"strings"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
)

// AwaitValidator rejects await expressions in places where nothing can
// suspend: inside a non-async function, and at top level unless the cell is
// run on an event loop.
type AwaitValidator struct {
	// AllowTopLevel permits await outside of any function.
	AllowTopLevel bool
}

// Validate implements the Validator interface.
func (v AwaitValidator) Validate(program *ast.Program) []ValidationError {
	w := &awaitWalker{allowTopLevel: v.AllowTopLevel}
	ast.Walk(w, program)
	return w.errors
}

type awaitWalker struct {
	allowTopLevel bool
	inFunc        bool
	async         bool
	errors        []ValidationError
	parent        *awaitWalker
}

func (w *awaitWalker) root() *awaitWalker {
	for w.parent != nil {
		w = w.parent
	}
	return w
}

func (w *awaitWalker) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case *ast.Func:
		return &awaitWalker{inFunc: true, async: n.Async, parent: w}
	case *ast.Await:
		root := w.root()
		switch {
		case w.inFunc && !w.async:
			root.errors = append(root.errors, ValidationError{
				Code:     errors.E2002,
				Message:  "'await' outside async function",
				Node:     node,
				Position: node.Pos(),
			})
		case !w.inFunc && !root.allowTopLevel:
			root.errors = append(root.errors, ValidationError{
				Code:     errors.E2002,
				Message:  "'await' outside function",
				Node:     node,
				Position: node.Pos(),
			})
		}
	}
	return w
}

// ReservedNameValidator rejects user bindings whose name starts with Prefix.
// Names with the prefix belong to code synthesized by transformers.
type ReservedNameValidator struct {
	Prefix string
}

// Validate implements the Validator interface.
func (v ReservedNameValidator) Validate(program *ast.Program) []ValidationError {
	if v.Prefix == "" {
		return nil
	}
	var errs []ValidationError
	check := func(ident *ast.Ident) {
		if ident == nil || !strings.HasPrefix(ident.Name, v.Prefix) {
			return
		}
		errs = append(errs, ValidationError{
			Code:     errors.E2003,
			Message:  "name " + ident.Name + " is reserved",
			Node:     ident,
			Position: ident.Pos(),
		})
	}
	for node := range ast.Preorder(program) {
		switch n := node.(type) {
		case *ast.Var:
			check(n.Name)
		case *ast.Const:
			check(n.Name)
		case *ast.MultiVar:
			for _, name := range n.Names {
				check(name)
			}
		case *ast.Assign:
			check(n.Name)
		case *ast.Import:
			if n.Alias != nil {
				check(n.Alias)
			} else {
				check(n.Name)
			}
		case *ast.Func:
			check(n.Name)
			for _, param := range n.Params {
				check(param)
			}
		case *ast.Try:
			check(n.CatchIdent)
		}
	}
	return errs
}
