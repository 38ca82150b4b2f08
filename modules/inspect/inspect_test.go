package inspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/object"
)

func noop(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.Nil, nil
}

func TestPredicates(t *testing.T) {
	ctx := context.Background()
	asyncFn := object.NewFunction("f", nil, true, noop)
	syncFn := object.NewFunction("g", nil, false, noop)
	coro, err := asyncFn.Call(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   object.BuiltinFunction
		arg  object.Object
		want bool
	}{
		{"coroutine is coroutine", IsCoroutine, coro, true},
		{"int is not coroutine", IsCoroutine, object.NewInt(1), false},
		{"async function is not coroutine", IsCoroutine, asyncFn, false},
		{"coroutine is awaitable", IsAwaitable, coro, true},
		{"string is not awaitable", IsAwaitable, object.NewString("x"), false},
		{"async function", IsCoroutineFunction, asyncFn, true},
		{"sync function", IsCoroutineFunction, syncFn, false},
		{"builtin is not a function", IsFunction, object.NewBuiltin("b", noop), false},
		{"sync function is a function", IsFunction, syncFn, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.fn(ctx, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, object.NewBool(tt.want), result)
		})
	}
}

func TestStartedCoroutineIsStillCoroutine(t *testing.T) {
	ctx := context.Background()
	coro := object.NewCoroutine("f", func(ctx context.Context) (object.Object, error) {
		return object.Nil, nil
	})
	_, err := coro.Await(ctx)
	require.NoError(t, err)
	require.True(t, coro.Started())

	result, err := IsCoroutine(ctx, coro)
	require.NoError(t, err)
	assert.Equal(t, object.True, result)
}

func TestArgumentCount(t *testing.T) {
	_, err := IsCoroutine(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspect.iscoroutine() takes exactly 1 argument (0 given)")
}

func TestModule(t *testing.T) {
	mod := Module()
	assert.Equal(t, "inspect", mod.Name())
	fn, ok := mod.GetAttr("iscoroutine")
	require.True(t, ok)
	assert.Equal(t, "builtin(inspect.iscoroutine)", fn.Inspect())
}
