package interp

import (
	"context"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/object"
)

// newFunction creates a function closing over the current scope. Default
// parameter values are evaluated once, here.
func (in *Interpreter) newFunction(ctx context.Context, fr *frame, node *ast.Func) (*object.Function, error) {
	defaults := make(map[string]object.Object, len(node.Defaults))
	params := make([]string, 0, len(node.Params))
	for _, param := range node.Params {
		def, ok := node.Defaults[param.Name]
		if !ok {
			params = append(params, param.Name)
			continue
		}
		value, err := in.eval(ctx, fr, def)
		if err != nil {
			return nil, err
		}
		defaults[param.Name] = value
		params = append(params, param.Name+"="+def.String())
	}
	var name string
	if node.Name != nil {
		name = node.Name.Name
	}
	closure := fr.scope
	var fn *object.Function
	fn = object.NewFunction(name, params, node.Async, func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return in.invoke(ctx, fn, node, closure, defaults, args)
	})
	return fn, nil
}

// invoke runs a function body in a fresh scope.
func (in *Interpreter) invoke(
	ctx context.Context,
	fn *object.Function,
	node *ast.Func,
	closure *Scope,
	defaults map[string]object.Object,
	args []object.Object,
) (object.Object, error) {
	depth := depthFrom(ctx)
	if depth > in.maxDepth {
		return nil, object.NewError(object.KindRecursionError, "maximum recursion depth exceeded")
	}
	if len(args) > len(node.Params) {
		return nil, object.TypeErrorf("%s() takes %d %s (%d given)",
			fn.DisplayName(), len(node.Params), plural("argument", len(node.Params)), len(args))
	}
	scope := NewScope(closure)
	for i, param := range node.Params {
		var value object.Object
		switch {
		case i < len(args):
			value = args[i]
		case defaults[param.Name] != nil:
			value = defaults[param.Name]
		default:
			return nil, object.TypeErrorf("%s() missing required argument %q", fn.DisplayName(), param.Name)
		}
		scope.vars[param.Name] = &binding{value: value}
	}
	fr := &frame{name: fn.DisplayName(), scope: scope, depth: depth}
	if _, err := in.evalBlock(ctx, fr, node.Body.Stmts); err != nil {
		return nil, err
	}
	if fr.returning {
		return fr.returnValue(), nil
	}
	return object.Nil, nil
}

func (in *Interpreter) evalCall(ctx context.Context, fr *frame, node *ast.Call) (object.Object, error) {
	callee, err := in.eval(ctx, fr, node.Fun)
	if err != nil {
		return nil, err
	}
	args := make([]object.Object, 0, len(node.Args))
	for _, arg := range node.Args {
		value, err := in.eval(ctx, fr, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	callable, ok := callee.(object.Callable)
	if !ok {
		return nil, object.TypeErrorf("%s object is not callable", callee.Type())
	}
	return callable.Call(withDepth(ctx, fr.depth+1), args...)
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
