package shell

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/history"
	"github.com/t0technology/awaitless/internal/token"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/parser"
	"github.com/t0technology/awaitless/syntax"
)

func newShell(t *testing.T, options ...Option) *Shell {
	t.Helper()
	sh := New(options...)
	t.Cleanup(func() { sh.Close() })
	return sh
}

func mustRun(t *testing.T, sh *Shell, source string) object.Object {
	t.Helper()
	result := sh.RunCell(context.Background(), source)
	require.NoError(t, result.Err(), "cell %d", result.ExecutionCount)
	return result.Value
}

func TestRunCellKeepsSessionState(t *testing.T) {
	sh := newShell(t)
	mustRun(t, sh, "let a = 40")
	result := sh.RunCell(context.Background(), "a + 2")
	require.True(t, result.Success())
	assert.Equal(t, "42", result.Value.Inspect())
	assert.Equal(t, 2, result.ExecutionCount)
	assert.Equal(t, "<cell 2>", result.Filename)
	assert.False(t, result.Async)
	assert.Equal(t, 2, sh.ExecutionCount())

	out, ok := sh.Output(2)
	require.True(t, ok)
	assert.Same(t, result.Value, out)
	_, ok = sh.Output(1)
	assert.False(t, ok)
}

func TestPrintGoesToOutput(t *testing.T) {
	var buf bytes.Buffer
	sh := newShell(t, WithOutput(&buf))
	mustRun(t, sh, `print("hi", 1)`)
	assert.Equal(t, "hi 1\n", buf.String())
}

func TestStandardModules(t *testing.T) {
	sh := newShell(t)
	mustRun(t, sh, "import strings\nimport time")
	assert.Equal(t, `"TASK"`, mustRun(t, sh, `strings.to_upper("task")`).Inspect())
	assert.Equal(t, `"1970-01-01T00:00:00Z"`, mustRun(t, sh, "time.format(0)").Inspect())
}

func TestParseErrorStopsBeforeExec(t *testing.T) {
	sh := newShell(t)
	result := sh.RunCell(context.Background(), "let = 1")
	require.Error(t, result.ErrorBeforeExec)
	assert.NoError(t, result.ErrorInExec)
	assert.Nil(t, result.Program)
	assert.Equal(t, 1, result.ExecutionCount)
}

func TestTopLevelAwait(t *testing.T) {
	sh := newShell(t)
	mustRun(t, sh, `async function f() { return 7 }`)
	result := sh.RunCell(context.Background(), "await f()")
	require.NoError(t, result.Err())
	assert.True(t, result.Async)
	assert.Equal(t, "7", result.Value.Inspect())

	// Without autoawait the cell is refused before it runs.
	off := newShell(t, WithAutoAwait(false))
	mustRun(t, off, `async function f() { return 7 }`)
	result = off.RunCell(context.Background(), "\nawait f()")
	var te *errors.TransformError
	require.True(t, stderrors.As(result.ErrorBeforeExec, &te), "%v", result.ErrorBeforeExec)
	assert.Equal(t, errors.E2002, te.Code)
	assert.Equal(t, 2, te.Line)
	assert.Equal(t, "<cell 2>", te.Filename)
}

func TestCancelledCellCancelsAwaitedTask(t *testing.T) {
	store, err := history.Open(history.Memory)
	require.NoError(t, err)
	sh := newShell(t, WithHistory(store))
	mustRun(t, sh, "import asyncio\nasync function slow() { await asyncio.sleep(3600) }")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	result := sh.RunCell(ctx, "await asyncio.create_task(slow())")
	require.Error(t, result.ErrorInExec)
	assert.True(t, object.IsCancelled(result.ErrorInExec))
	assert.Empty(t, sh.Loop().Pending())

	cells, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, "await asyncio.create_task(slow())", cells[1].Source)
}

func TestHasTopLevelAwait(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"await f()", true},
		{"let x = await f()", true},
		{"if (true) { await f() }", true},
		{"async function g() { await f() }", false},
		{"f()", false},
	}
	for _, tt := range tests {
		program, err := parser.Parse(context.Background(), tt.source)
		require.NoError(t, err)
		assert.Equal(t, tt.want, HasTopLevelAwait(program), tt.source)
	}
}

func counting(name string, calls *int) syntax.NamedTransformer {
	return syntax.Named(name, syntax.TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		*calls++
		return p, nil
	}))
}

func TestTransformerRegistry(t *testing.T) {
	sh := newShell(t)
	var a, b, a2 int
	sh.AddTransformer(counting("a", &a))
	sh.AddTransformer(counting("b", &b))
	sh.AddTransformer(counting("a", &a2))

	names := []string{}
	for _, tr := range sh.Transformers() {
		names = append(names, tr.Name())
	}
	assert.Equal(t, []string{"b", "a"}, names)

	mustRun(t, sh, "1")
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, a2)

	assert.True(t, sh.RemoveTransformer("b"))
	assert.False(t, sh.RemoveTransformer("b"))
	assert.Len(t, sh.Transformers(), 1)
}

func TestTransformersRunInOrder(t *testing.T) {
	sh := newShell(t)
	var order []string
	for _, name := range []string{"first", "second"} {
		name := name
		sh.AddTransformer(syntax.Named(name, syntax.TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
			order = append(order, name)
			return p, nil
		})))
	}
	mustRun(t, sh, "1")
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestFailingTransformerIsUnregistered(t *testing.T) {
	sh := newShell(t)
	sh.AddTransformer(syntax.Named("broken", syntax.TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		return nil, stderrors.New("boom")
	})))
	assert.Equal(t, "3", mustRun(t, sh, "1 + 2").Inspect())
	assert.Empty(t, sh.Transformers())
}

func TestRejectingTransformerStopsCell(t *testing.T) {
	sh := newShell(t)
	sh.AddTransformer(syntax.Named("strict", syntax.TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		return nil, &errors.TransformError{Code: errors.E2001, Message: "no"}
	})))
	result := sh.RunCell(context.Background(), "let x = 1")
	require.Error(t, result.ErrorBeforeExec)
	assert.True(t, IsInputRejected(result.ErrorBeforeExec))
	assert.Len(t, sh.Transformers(), 1)
	_, ok := sh.Interpreter().Globals().Get("x")
	assert.False(t, ok)
}

func TestSetShouldRunAsync(t *testing.T) {
	sh := newShell(t, WithAutoAwait(false))
	always := func(*ast.Program) bool { return true }
	prev := sh.SetShouldRunAsync(always)
	require.NotNil(t, prev)

	result := sh.RunCell(context.Background(), "1")
	require.NoError(t, result.Err())
	assert.True(t, result.Async)

	sh.SetShouldRunAsync(prev)
	assert.False(t, sh.RunCell(context.Background(), "1").Async)

	sh.SetShouldRunAsync(always)
	sh.SetShouldRunAsync(nil)
	assert.False(t, sh.RunCell(context.Background(), "1").Async)
}

func TestReservedPrefix(t *testing.T) {
	sh := newShell(t, WithReservedPrefix("__x_"))
	result := sh.RunCell(context.Background(), "let __x_a = 1")
	var te *errors.TransformError
	require.True(t, stderrors.As(result.ErrorBeforeExec, &te))
	assert.Equal(t, errors.E2003, te.Code)
	mustRun(t, sh, "let x_a = 1")
}

func TestHistoryRecordsCells(t *testing.T) {
	store, err := history.Open(history.Memory)
	require.NoError(t, err)
	sh := newShell(t, WithHistory(store))
	sh.AddTransformer(syntax.Named("wrap", syntax.TransformerFunc(func(p *ast.Program) (*ast.Program, error) {
		return &ast.Program{Stmts: append([]ast.Node{&ast.Int{Literal: "0", Value: 0}}, p.Stmts...)}, nil
	})))
	mustRun(t, sh, "let a = 1")
	sh.RunCell(context.Background(), "a +")

	cells, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 1, cells[0].Line)
	assert.Equal(t, "let a = 1", cells[0].Source)
	assert.Equal(t, "0\nlet a = 1", cells[0].Rewritten)

	require.NoError(t, sh.Close())
	assert.ErrorIs(t, sh.RunCell(context.Background(), "1").ErrorBeforeExec, ErrClosed)
	_, err = store.Recent(context.Background(), 1)
	assert.ErrorIs(t, err, history.ErrClosed)
}

func TestFormatErrorAttachesCellSource(t *testing.T) {
	sh := newShell(t)
	mustRun(t, sh, "function f() {\n    throw ValueError(\"bad\")\n}")
	result := sh.RunCell(context.Background(), "let a = 1\nf()")
	require.Error(t, result.ErrorInExec)

	text, err := sh.FormatError(result.ErrorInExec)
	require.NoError(t, err)
	assert.Contains(t, text, "ValueError[E3010]: bad")
	assert.Contains(t, text, "--> <cell 1>:2:")
	assert.Contains(t, text, `throw ValueError("bad")`)
	assert.Contains(t, text, "at <cell> (<cell 2>:2:1)")
	assert.Contains(t, text, "       f()\n")

	// Formatting does not change the error itself.
	for _, frame := range object.AsErrorObject(result.ErrorInExec).Stack() {
		assert.Empty(t, frame.Location.Source)
	}
}

func TestFormatErrorParseAndTransformErrors(t *testing.T) {
	sh := newShell(t, WithAutoAwait(false))
	result := sh.RunCell(context.Background(), "let = 1")
	text, err := sh.FormatError(result.ErrorBeforeExec)
	require.NoError(t, err)
	assert.Contains(t, text, "let = 1")

	result = sh.RunCell(context.Background(), "await a\nawait b")
	text, err = sh.FormatError(result.ErrorBeforeExec)
	require.NoError(t, err)
	assert.Contains(t, text, "[E2002]")
	assert.Contains(t, text, "await b")
	assert.Contains(t, text, "(In [2])")
	assert.Contains(t, text, "the cell was not run")

	text, err = sh.FormatError(stderrors.New("plain"))
	require.NoError(t, err)
	assert.Equal(t, "error: plain\n", text)
}

// misplace moves every node of the cell far past its last line, the way a
// transformer that does not reconcile locations would.
func misplace(p *ast.Program) (*ast.Program, error) {
	for _, stmt := range p.Stmts {
		ast.Inspect(stmt, func(node ast.Node) bool {
			if ident, ok := node.(*ast.Ident); ok {
				ident.NamePos = token.Position{Line: 40, File: ident.NamePos.File}
			}
			return true
		})
	}
	return p, nil
}

func TestTracebackFallback(t *testing.T) {
	for _, fallback := range []bool{true, false} {
		sh := newShell(t, WithTracebackFallback(fallback))
		sh.AddTransformer(syntax.Named("misplace", syntax.TransformerFunc(misplace)))
		result := sh.RunCell(context.Background(), "function g() { throw error(\"x\") }\ng()")
		require.Error(t, result.ErrorInExec)

		text, err := sh.FormatError(result.ErrorInExec)
		if fallback {
			require.NoError(t, err)
			assert.Contains(t, text, SourcePlaceholder)
		} else {
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 41 out of range")
		}
	}
}

type fakeExtension struct {
	loads, unloads int
	fail           error
}

func (f *fakeExtension) Name() string { return "fake" }

func (f *fakeExtension) Load(s *Shell) error {
	if f.fail != nil {
		return f.fail
	}
	f.loads++
	return nil
}

func (f *fakeExtension) Unload(s *Shell) error {
	f.unloads++
	return nil
}

func TestExtensions(t *testing.T) {
	ext := &fakeExtension{}
	sh := newShell(t, WithExtensions(ext))

	require.NoError(t, sh.LoadExtension("fake"))
	assert.Equal(t, []string{"fake"}, sh.LoadedExtensions())
	require.NoError(t, sh.ReloadExtension("fake"))
	assert.Equal(t, 2, ext.loads)
	assert.Equal(t, 1, ext.unloads)

	require.NoError(t, sh.UnloadExtension("fake"))
	require.NoError(t, sh.UnloadExtension("fake"))
	assert.Equal(t, 2, ext.unloads)
	assert.Empty(t, sh.LoadedExtensions())

	assert.ErrorIs(t, sh.LoadExtension("missing"), ErrUnknownExtension)

	ext.fail = stderrors.New("nope")
	err := sh.LoadExtension("fake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading extension fake: nope")
	assert.Empty(t, sh.LoadedExtensions())
}

func TestMagicCells(t *testing.T) {
	ext := &fakeExtension{}
	sh := newShell(t)
	sh.RegisterExtension(ext)

	result := sh.RunCell(context.Background(), "%load_ext fake")
	require.NoError(t, result.Err())
	assert.Equal(t, object.Nil, result.Value)
	assert.Equal(t, 1, ext.loads)

	require.NoError(t, sh.RunCell(context.Background(), " %reload_ext fake").Err())
	require.NoError(t, sh.RunCell(context.Background(), "%unload_ext fake").Err())
	assert.Equal(t, 2, ext.unloads)

	assert.ErrorIs(t, sh.RunCell(context.Background(), "%load_ext other").ErrorInExec, ErrUnknownExtension)
	assert.Error(t, sh.RunCell(context.Background(), "%load_ext").ErrorBeforeExec)
	assert.Error(t, sh.RunCell(context.Background(), "%time 1").ErrorBeforeExec)
	assert.Equal(t, 6, sh.ExecutionCount())
}
