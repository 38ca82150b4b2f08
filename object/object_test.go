package object

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/op"
)

func TestIntOperations(t *testing.T) {
	tests := []struct {
		op    op.BinaryOpType
		left  Object
		right Object
		want  Object
	}{
		{op.Add, NewInt(2), NewInt(3), NewInt(5)},
		{op.Subtract, NewInt(2), NewInt(3), NewInt(-1)},
		{op.Multiply, NewInt(4), NewInt(3), NewInt(12)},
		{op.Divide, NewInt(7), NewInt(2), NewInt(3)},
		{op.Add, NewInt(1), NewFloat(0.5), NewFloat(1.5)},
		{op.Multiply, NewFloat(1.5), NewInt(2), NewFloat(3)},
	}
	for _, tt := range tests {
		got, err := tt.left.RunOperation(tt.op, tt.right)
		require.NoError(t, err)
		assert.True(t, tt.want.Equals(got), "%s %s %s = %s", tt.left.Inspect(), tt.op, tt.right.Inspect(), got.Inspect())
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := NewInt(1).RunOperation(op.Divide, NewInt(0))
	require.Error(t, err)
	e := AsErrorObject(err)
	assert.Equal(t, KindZeroDivisionError, e.Kind())
}

func TestStringOperations(t *testing.T) {
	got, err := NewString("ab").RunOperation(op.Add, NewString("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", got.(*String).Value())

	got, err = NewString("ab").RunOperation(op.Multiply, NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "ababab", got.(*String).Value())

	_, err = NewString("ab").RunOperation(op.Subtract, NewInt(3))
	require.Error(t, err)
}

func TestCompareOp(t *testing.T) {
	got, err := CompareOp(op.LessThan, NewInt(1), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, True, got)

	got, err = CompareOp(op.Equal, NewString("a"), NewString("a"))
	require.NoError(t, err)
	assert.Equal(t, True, got)

	_, err = CompareOp(op.LessThan, NewMap(nil), NewInt(2))
	require.Error(t, err)
}

func TestTruthiness(t *testing.T) {
	assert.False(t, Nil.IsTruthy())
	assert.False(t, NewInt(0).IsTruthy())
	assert.False(t, NewString("").IsTruthy())
	assert.False(t, NewList(nil).IsTruthy())
	assert.True(t, NewList([]Object{Nil}).IsTruthy())
	assert.True(t, NewBuiltin("f", nil).IsTruthy())
}

func TestListMethods(t *testing.T) {
	ctx := context.Background()
	ls := NewList([]Object{NewInt(1)})

	appendFn, ok := ls.GetAttr("append")
	require.True(t, ok)
	_, err := appendFn.(*Builtin).Call(ctx, NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "[1, 2]", ls.Inspect())

	_, err = appendFn.(*Builtin).Call(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list.append() takes exactly 1 argument (0 given)")

	item, errObj := ls.GetItem(NewInt(-1))
	require.Nil(t, errObj)
	assert.Equal(t, int64(2), item.(*Int).Value())

	_, errObj = ls.GetItem(NewInt(5))
	require.NotNil(t, errObj)
	assert.Equal(t, KindIndexError, errObj.Kind())
}

func TestMapAttrFallback(t *testing.T) {
	m := NewMap(map[string]Object{"name": NewString("x")})
	value, ok := m.GetAttr("name")
	require.True(t, ok)
	assert.Equal(t, "x", value.(*String).Value())

	require.NoError(t, m.SetAttr("count", NewInt(1)))
	assert.Equal(t, `{"count": 1, "name": "x"}`, m.Inspect())

	_, errObj := m.GetItem(NewString("missing"))
	require.NotNil(t, errObj)
	assert.Equal(t, KindKeyError, errObj.Kind())
}

func TestMapGetDefault(t *testing.T) {
	m := NewMap(map[string]Object{"a": NewInt(1)})
	get, ok := m.GetAttr("get")
	require.True(t, ok)
	fn := get.(*Builtin)

	value, err := fn.Call(context.Background(), NewString("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", value.Inspect())
	value, err = fn.Call(context.Background(), NewString("b"))
	require.NoError(t, err)
	assert.Equal(t, Nil, value)
	value, err = fn.Call(context.Background(), NewString("b"), NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "2", value.Inspect())

	_, err = fn.Call(context.Background())
	assert.EqualError(t, err, "TypeError: map.get() takes at least 1 argument (0 given)")

	specs := m.Attrs()
	require.NotEmpty(t, specs)
	assert.Equal(t, "get(key, default=?)", specs[0].Signature())
}

func TestErrorFrames(t *testing.T) {
	e := ValueErrorf("bad %d", 1)
	assert.Equal(t, "ValueError: bad 1", e.Error())
	assert.Equal(t, `ValueError("bad 1")`, e.Inspect())

	framed := e.WithFrame(errorsFrame("hello", 3))
	assert.Empty(t, e.Stack())
	require.Len(t, framed.Stack(), 1)
	line, ok := framed.GetAttr("line")
	require.True(t, ok)
	assert.Equal(t, int64(3), line.(*Int).Value())
	assert.True(t, e.Equals(framed))
}

func TestCancelledError(t *testing.T) {
	assert.True(t, IsCancelled(NewCancelledError()))
	assert.False(t, IsCancelled(RuntimeErrorf("x")))
	assert.Equal(t, "CancelledError", NewCancelledError().Error())
}

func TestAsyncFunctionReturnsCoroutine(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fn := NewFunction("hello", nil, true, func(ctx context.Context, args ...Object) (Object, error) {
		calls++
		return NewString("Hello world"), nil
	})
	assert.Equal(t, "async function hello()", fn.Inspect())

	result, err := fn.Call(ctx)
	require.NoError(t, err)
	coro, ok := result.(*Coroutine)
	require.True(t, ok)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "<coroutine hello()>", coro.Inspect())

	value, err := coro.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", value.(*String).Value())
	assert.Equal(t, 1, calls)

	_, err = coro.Await(ctx)
	require.Error(t, err)
	assert.Equal(t, "RuntimeError: cannot reuse already awaited coroutine", err.Error())
	assert.Equal(t, 1, calls)
}

func TestSyncFunctionRunsBody(t *testing.T) {
	fn := NewFunction("", []string{"a", "b=2"}, false, func(ctx context.Context, args ...Object) (Object, error) {
		return NewInt(int64(len(args))), nil
	})
	assert.Equal(t, "function(a, b=2)", fn.Inspect())
	result, err := fn.Call(context.Background(), Nil, Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.(*Int).Value())
}

func TestModuleAttrs(t *testing.T) {
	mod := NewBuiltinsModule("inspect", map[string]Object{
		"iscoroutine": NewBuiltin("iscoroutine", nil),
	})
	fn, ok := mod.GetAttr("iscoroutine")
	require.True(t, ok)
	assert.Equal(t, "builtin(inspect.iscoroutine)", fn.Inspect())
	assert.Equal(t, []string{"iscoroutine"}, AttrNames(mod.Attrs()))
	assert.Error(t, mod.SetAttr("x", Nil))
}

func TestFromGoType(t *testing.T) {
	obj, err := FromGoType(map[string]any{"a": []any{1, "x", true, nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a": [1, "x", true, nil]}`, obj.Inspect())

	_, err = FromGoType(struct{}{})
	require.Error(t, err)
}
