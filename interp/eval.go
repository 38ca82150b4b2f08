package interp

import (
	"context"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/op"
)

// eval evaluates a statement or expression. Errors leaving the node are
// annotated with the node position.
func (in *Interpreter) eval(ctx context.Context, fr *frame, node ast.Node) (object.Object, error) {
	value, err := in.evalNode(ctx, fr, node)
	if err != nil {
		return nil, fr.raise(node, err)
	}
	return value, nil
}

func (in *Interpreter) evalNode(ctx context.Context, fr *frame, node ast.Node) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Var:
		value, err := in.eval(ctx, fr, node.Value)
		if err != nil {
			return nil, err
		}
		return object.Nil, fr.scope.Declare(node.Name.Name, value, false)
	case *ast.Const:
		value, err := in.eval(ctx, fr, node.Value)
		if err != nil {
			return nil, err
		}
		return object.Nil, fr.scope.Declare(node.Name.Name, value, true)
	case *ast.MultiVar:
		return object.Nil, in.evalMultiVar(ctx, fr, node)
	case *ast.Assign:
		return object.Nil, in.evalAssign(ctx, fr, node)
	case *ast.SetAttr:
		return object.Nil, in.evalSetAttr(ctx, fr, node)
	case *ast.Return:
		var value object.Object = object.Nil
		if node.Value != nil {
			var err error
			if value, err = in.eval(ctx, fr, node.Value); err != nil {
				return nil, err
			}
		}
		fr.returning = true
		fr.retval = value
		return object.Nil, nil
	case *ast.Throw:
		return nil, in.evalThrow(ctx, fr, node)
	case *ast.Import:
		mod, ok := in.modules[node.Name.Name]
		if !ok {
			return nil, object.ImportErrorf("module %q not found", node.Name.Name)
		}
		return object.Nil, fr.scope.Declare(node.LocalName(), mod, false)
	case *ast.Block:
		return in.evalBlock(ctx, fr, node.Stmts)
	case *ast.Try:
		return in.evalTry(ctx, fr, node)
	case *ast.Func:
		fn, err := in.newFunction(ctx, fr, node)
		if err != nil {
			return nil, err
		}
		if node.Name != nil {
			if err := fr.scope.Declare(node.Name.Name, fn, false); err != nil {
				return nil, err
			}
		}
		return fn, nil

	// Literals
	case *ast.Int:
		return object.NewInt(node.Value), nil
	case *ast.Float:
		return object.NewFloat(node.Value), nil
	case *ast.String:
		return object.NewString(node.Value), nil
	case *ast.Bool:
		return object.NewBool(node.Value), nil
	case *ast.Nil:
		return object.Nil, nil
	case *ast.List:
		items := make([]object.Object, 0, len(node.Items))
		for _, item := range node.Items {
			value, err := in.eval(ctx, fr, item)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return object.NewList(items), nil
	case *ast.Map:
		return in.evalMap(ctx, fr, node)

	// Expressions
	case *ast.Ident:
		return in.evalIdent(fr, node)
	case *ast.Prefix:
		return in.evalPrefix(ctx, fr, node)
	case *ast.Infix:
		return in.evalInfix(ctx, fr, node)
	case *ast.If:
		cond, err := in.eval(ctx, fr, node.Cond)
		if err != nil {
			return nil, err
		}
		if cond.IsTruthy() {
			return in.evalBlock(ctx, fr, node.Consequence.Stmts)
		}
		if node.Alternative != nil {
			return in.evalBlock(ctx, fr, node.Alternative.Stmts)
		}
		return object.Nil, nil
	case *ast.Call:
		return in.evalCall(ctx, fr, node)
	case *ast.GetAttr:
		obj, err := in.eval(ctx, fr, node.X)
		if err != nil {
			return nil, err
		}
		value, ok := obj.GetAttr(node.Attr.Name)
		if !ok {
			return nil, object.AttributeErrorf("%s object has no attribute %q", obj.Type(), node.Attr.Name)
		}
		return value, nil
	case *ast.Index:
		return in.evalIndex(ctx, fr, node)
	case *ast.Await:
		return in.evalAwait(ctx, fr, node)

	case *ast.BadExpr, *ast.BadStmt:
		return nil, errors.EvalErrorf("cannot evaluate invalid syntax")
	}
	return nil, errors.EvalErrorf("unknown node type: %T", node)
}

// evalBlock runs statements in order and returns the value of the last one.
// It stops early when a return statement has run.
func (in *Interpreter) evalBlock(ctx context.Context, fr *frame, stmts []ast.Node) (object.Object, error) {
	var result object.Object = object.Nil
	for _, stmt := range stmts {
		value, err := in.eval(ctx, fr, stmt)
		if err != nil {
			return nil, err
		}
		if fr.returning {
			return object.Nil, nil
		}
		result = value
	}
	return result, nil
}

func (in *Interpreter) evalMultiVar(ctx context.Context, fr *frame, node *ast.MultiVar) error {
	value, err := in.eval(ctx, fr, node.Value)
	if err != nil {
		return err
	}
	ls, ok := value.(*object.List)
	if !ok {
		return object.TypeErrorf("cannot unpack %s into %d names", value.Type(), len(node.Names))
	}
	items := ls.Value()
	if len(items) != len(node.Names) {
		return object.ValueErrorf("expected %d values to unpack (%d given)", len(node.Names), len(items))
	}
	for i, name := range node.Names {
		if err := fr.scope.Declare(name.Name, items[i], false); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) evalAssign(ctx context.Context, fr *frame, node *ast.Assign) error {
	value, err := in.eval(ctx, fr, node.Value)
	if err != nil {
		return err
	}
	if node.Op != "=" {
		current, err := in.eval(ctx, fr, node.Target())
		if err != nil {
			return err
		}
		if value, err = applyAssignOp(node.Op, current, value); err != nil {
			return err
		}
	}
	if node.Name != nil {
		return fr.scope.Set(node.Name.Name, value)
	}
	target, err := in.eval(ctx, fr, node.Index.X)
	if err != nil {
		return err
	}
	key, err := in.eval(ctx, fr, node.Index.Index)
	if err != nil {
		return err
	}
	container, ok := target.(object.Container)
	if !ok {
		return object.TypeErrorf("%s object does not support item assignment", target.Type())
	}
	if e := container.SetItem(key, value); e != nil {
		return e
	}
	return nil
}

func (in *Interpreter) evalSetAttr(ctx context.Context, fr *frame, node *ast.SetAttr) error {
	obj, err := in.eval(ctx, fr, node.X)
	if err != nil {
		return err
	}
	value, err := in.eval(ctx, fr, node.Value)
	if err != nil {
		return err
	}
	if node.Op != "=" {
		current, ok := obj.GetAttr(node.Attr.Name)
		if !ok {
			return object.AttributeErrorf("%s object has no attribute %q", obj.Type(), node.Attr.Name)
		}
		if value, err = applyAssignOp(node.Op, current, value); err != nil {
			return err
		}
	}
	return obj.SetAttr(node.Attr.Name, value)
}

func applyAssignOp(literal string, current, value object.Object) (object.Object, error) {
	opType, ok := op.LookupAssign(literal)
	if !ok {
		return nil, errors.EvalErrorf("unknown assignment operator: %s", literal)
	}
	return current.RunOperation(opType, value)
}

func (in *Interpreter) evalThrow(ctx context.Context, fr *frame, node *ast.Throw) error {
	value, err := in.eval(ctx, fr, node.Value)
	if err != nil {
		return err
	}
	switch value := value.(type) {
	case *object.Error:
		fr.raised = nil
		return value
	case *object.String:
		return object.Errorf("%s", value.Value())
	default:
		return object.Errorf("%s", value.Inspect())
	}
}

func (in *Interpreter) evalTry(ctx context.Context, fr *frame, node *ast.Try) (object.Object, error) {
	result, err := in.evalBlock(ctx, fr, node.Body.Stmts)
	if err != nil && node.CatchBlock != nil && catchable(err) {
		caught := object.AsErrorObject(err)
		fr.raised = nil
		if node.CatchIdent != nil {
			if err := fr.scope.Set(node.CatchIdent.Name, caught); err != nil {
				return nil, err
			}
		}
		result, err = in.evalBlock(ctx, fr, node.CatchBlock.Stmts)
	}
	if node.FinallyBlock != nil {
		returning, retval := fr.returning, fr.retval
		fr.returning = false
		if _, ferr := in.evalBlock(ctx, fr, node.FinallyBlock.Stmts); ferr != nil {
			return nil, ferr
		}
		if !fr.returning {
			fr.returning, fr.retval = returning, retval
		}
	}
	return result, err
}

// catchable reports whether try/catch may intercept err. Fatal errors and
// context cancellation always propagate.
func catchable(err error) bool {
	if errors.IsFatal(err) {
		return false
	}
	_, ok := err.(*object.Error)
	return ok
}

func (in *Interpreter) evalMap(ctx context.Context, fr *frame, node *ast.Map) (object.Object, error) {
	items := make(map[string]object.Object, len(node.Items))
	for _, item := range node.Items {
		var key string
		if ident, ok := item.Key.(*ast.Ident); ok {
			key = ident.Name
		} else {
			keyObj, err := in.eval(ctx, fr, item.Key)
			if err != nil {
				return nil, err
			}
			if key, err = object.AsString(keyObj); err != nil {
				return nil, err
			}
		}
		value, err := in.eval(ctx, fr, item.Value)
		if err != nil {
			return nil, err
		}
		items[key] = value
	}
	return object.NewMap(items), nil
}

func (in *Interpreter) evalIdent(fr *frame, node *ast.Ident) (object.Object, error) {
	if value, ok := fr.scope.Get(node.Name); ok {
		return value, nil
	}
	err := object.NameErrorf("name %q is not defined", node.Name)
	if hint := errors.FormatSuggestions(errors.SuggestSimilar(node.Name, fr.scope.Names())); hint != "" {
		err = err.WithHint(hint)
	}
	return nil, err
}

func (in *Interpreter) evalPrefix(ctx context.Context, fr *frame, node *ast.Prefix) (object.Object, error) {
	operand, err := in.eval(ctx, fr, node.X)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "!", "not":
		return object.Not(operand), nil
	case "-":
		switch operand := operand.(type) {
		case *object.Int:
			return object.NewInt(-operand.Value()), nil
		case *object.Float:
			return object.NewFloat(-operand.Value()), nil
		}
		return nil, object.TypeErrorf("bad operand type for unary -: %s", operand.Type())
	}
	return nil, errors.EvalErrorf("unknown prefix operator: %s", node.Op)
}

func (in *Interpreter) evalInfix(ctx context.Context, fr *frame, node *ast.Infix) (object.Object, error) {
	left, err := in.eval(ctx, fr, node.X)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "&&":
		if !left.IsTruthy() {
			return left, nil
		}
		return in.eval(ctx, fr, node.Y)
	case "||":
		if left.IsTruthy() {
			return left, nil
		}
		return in.eval(ctx, fr, node.Y)
	}
	right, err := in.eval(ctx, fr, node.Y)
	if err != nil {
		return nil, err
	}
	if cmp, ok := op.LookupCompare(node.Op); ok {
		return object.CompareOp(cmp, left, right)
	}
	if bin, ok := op.LookupBinary(node.Op); ok {
		return left.RunOperation(bin, right)
	}
	return nil, errors.EvalErrorf("unknown operator: %s", node.Op)
}

func (in *Interpreter) evalIndex(ctx context.Context, fr *frame, node *ast.Index) (object.Object, error) {
	target, err := in.eval(ctx, fr, node.X)
	if err != nil {
		return nil, err
	}
	key, err := in.eval(ctx, fr, node.Index)
	if err != nil {
		return nil, err
	}
	container, ok := target.(object.Container)
	if !ok {
		return nil, object.TypeErrorf("%s object is not subscriptable", target.Type())
	}
	value, e := container.GetItem(key)
	if e != nil {
		return nil, e
	}
	return value, nil
}

func (in *Interpreter) evalAwait(ctx context.Context, fr *frame, node *ast.Await) (object.Object, error) {
	value, err := in.eval(ctx, fr, node.X)
	if err != nil {
		return nil, err
	}
	awaitable, ok := value.(object.Awaitable)
	if !ok {
		return nil, object.TypeErrorf("object %s can't be used in 'await' expression", value.Type())
	}
	return awaitable.Await(ctx)
}
