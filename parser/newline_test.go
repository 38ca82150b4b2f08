package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/ast"
)

func TestContinuationAfterOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x =\n    1", "x = 1"},
		{"x +=\n    1", "x += 1"},
		{"obj.prop =\n    1", "obj.prop = 1"},
		{"let x =\n    1", "let x = 1"},
		{"const limit =\n    10", "const limit = 10"},
		{"x = await\n    f()", "x = await f()"},
		{"await\n    asyncio.sleep(0)", "await asyncio.sleep(0)"},
		{"total = a +\n    await f()", "total = (a + await f())"},
		{"result = client.\n    fetch()", "result = client.fetch()"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			require.Len(t, program.Stmts, 1)
			require.Equal(t, tt.expected, program.Stmts[0].String())
		})
	}
}

func TestNewlineEndsStatement(t *testing.T) {
	program := parse(t, "await f()\nawait g()\nimport asyncio as aio\naio.sleep(0)")
	require.Len(t, program.Stmts, 4)
	require.Equal(t, "import asyncio as aio", program.Stmts[2].String())
	require.Equal(t, "aio.sleep(0)", program.Stmts[3].String())
}

func TestCallArgumentsAcrossLines(t *testing.T) {
	program := parse(t, "results = await asyncio.gather(\n    fetch(1),\n    fetch(2),\n)")
	require.Len(t, program.Stmts, 1)
	require.Equal(t, "results = await asyncio.gather(fetch(1), fetch(2))", program.Stmts[0].String())
}

func TestAsyncFunctionParamsAcrossLines(t *testing.T) {
	input := `async function fetch(
    url,
    retries=3,
) {
    return await get(url)
}`
	program := parse(t, input)
	require.Len(t, program.Stmts, 1)
	fn, ok := program.Stmts[0].(*ast.Func)
	require.True(t, ok, "got %T", program.Stmts[0])
	require.True(t, fn.Async)
	require.Equal(t, "fetch", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "retries", fn.Params[1].Name)
	require.Equal(t, "3", fn.Defaults["retries"].String())
	require.Len(t, fn.Body.Stmts, 1)
	require.Equal(t, "return await get(url)", fn.Body.Stmts[0].String())
}

func TestTryClausesOnOwnLines(t *testing.T) {
	input := `try {
    x = await f()
}
catch err {
    throw err
}
finally {
    done()
}`
	program := parse(t, input)
	require.Len(t, program.Stmts, 1)
	try, ok := program.Stmts[0].(*ast.Try)
	require.True(t, ok, "got %T", program.Stmts[0])
	require.Equal(t, "x = await f()", try.Body.Stmts[0].String())
	require.Equal(t, "err", try.CatchIdent.Name)
	require.NotNil(t, try.FinallyBlock)
}

func TestLiteralsWithNewlines(t *testing.T) {
	input := `
	pending = [
		await f(),
		g(),
	]
	m = {
		"a": await f(),
		"b": 2,
	}
	handler = async function(
		event,
	) { return event }
	`
	program := parse(t, input)
	require.Len(t, program.Stmts, 3)
	require.Equal(t, "pending = [await f(), g()]", program.Stmts[0].String())
	fn, ok := program.Stmts[2].(*ast.Assign).Value.(*ast.Func)
	require.True(t, ok)
	require.True(t, fn.Async)
	require.Len(t, fn.Params, 1)
}
