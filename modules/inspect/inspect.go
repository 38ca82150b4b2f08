// Package inspect provides runtime type predicates for scripts.
package inspect

import (
	"context"

	"github.com/t0technology/awaitless/object"
)

// IsCoroutine reports whether the argument is a coroutine: the result of
// calling an async function, whether or not it has been awaited.
func IsCoroutine(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("inspect.iscoroutine", 1, args); err != nil {
		return nil, err
	}
	_, ok := args[0].(*object.Coroutine)
	return object.NewBool(ok), nil
}

// IsAwaitable reports whether the argument may be the operand of await.
func IsAwaitable(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("inspect.isawaitable", 1, args); err != nil {
		return nil, err
	}
	_, ok := args[0].(object.Awaitable)
	return object.NewBool(ok), nil
}

// IsCoroutineFunction reports whether the argument is an async function.
func IsCoroutineFunction(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("inspect.iscoroutinefunction", 1, args); err != nil {
		return nil, err
	}
	fn, ok := args[0].(*object.Function)
	return object.NewBool(ok && fn.IsAsync()), nil
}

// IsFunction reports whether the argument is a script function.
func IsFunction(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("inspect.isfunction", 1, args); err != nil {
		return nil, err
	}
	_, ok := args[0].(*object.Function)
	return object.NewBool(ok), nil
}

func Module() *object.Module {
	return object.NewBuiltinsModule("inspect", map[string]object.Object{
		"isawaitable":         object.NewBuiltin("isawaitable", IsAwaitable),
		"iscoroutine":         object.NewBuiltin("iscoroutine", IsCoroutine),
		"iscoroutinefunction": object.NewBuiltin("iscoroutinefunction", IsCoroutineFunction),
		"isfunction":          object.NewBuiltin("isfunction", IsFunction),
	})
}
