package rewrite

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/parser"
)

type fixture struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

func loadFixtures(t *testing.T, path string) []fixture {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fixtures []fixture
	require.NoError(t, yaml.Unmarshal(data, &fixtures))
	require.NotEmpty(t, fixtures)
	return fixtures
}

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), source, parser.WithFilename("<cell 1>"))
	require.NoError(t, err)
	return program
}

func TestRewriteGolden(t *testing.T) {
	for _, tt := range loadFixtures(t, "testdata/rewrite.yaml") {
		t.Run(tt.Name, func(t *testing.T) {
			program := parse(t, tt.Input)
			before := program.String()

			result, err := Rewrite(program)
			require.NoError(t, err)
			expected := strings.TrimSpace(tt.Output)
			assert.Equal(t, expected, result.String())
			assert.Equal(t, before, program.String(), "input program was modified")

			// The printed form parses back to a program the rewriter leaves alone.
			again, err := Rewrite(parse(t, expected))
			require.NoError(t, err)
			assert.Equal(t, expected, again.String())
		})
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	once, err := Rewrite(parse(t, "x = hello()\nhello()"))
	require.NoError(t, err)
	twice, err := Rewrite(once)
	require.NoError(t, err)
	assert.Same(t, once, twice)
}

func TestSynthesizedStatementsAreNotRewrapped(t *testing.T) {
	once, err := Rewrite(parse(t, "x = hello()"))
	require.NoError(t, err)

	// Without the leading imports each synthesized statement is still
	// recognized on its own.
	partial := &ast.Program{Stmts: once.Stmts[2:]}
	result, err := Rewrite(partial)
	require.NoError(t, err)
	assert.Equal(t, once.String(), result.String())
}

func TestNilProgram(t *testing.T) {
	result, err := Rewrite(nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestStrictShapes(t *testing.T) {
	program := parse(t, "let a = 1\na += fetch()\nobj.n *= 2")
	_, err := New(WithStrictShapes()).Transform(program)
	require.Error(t, err)

	var shapeErr *UnsupportedShapeError
	require.True(t, stderrors.As(err, &shapeErr))
	assert.Equal(t, "compound assignment +=", shapeErr.Reason)
	assert.Equal(t, 2, shapeErr.Position.LineNumber())
	assert.Contains(t, err.Error(), "2 errors occurred")

	te := shapeErr.ToTransformError()
	assert.Equal(t, errors.E2001, te.Code)
	assert.Equal(t, "<cell 1>", te.Filename)

	// The default rewriter passes the same program through.
	result, err := New().Transform(program)
	require.NoError(t, err)
	assert.Contains(t, result.String(), "a += fetch()")
}

func TestRewriterName(t *testing.T) {
	assert.Equal(t, "awaitless", New().Name())
	assert.Equal(t, New().Name(), New(WithStrictShapes()).Name())
}
