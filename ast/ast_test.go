package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/internal/token"
)

func TestString(t *testing.T) {
	program := &Program{
		Stmts: []Node{
			&Var{
				Let: token.Position{Line: 1, Column: 1},
				Name: &Ident{
					NamePos: token.Position{Line: 1, Column: 5},
					Name:    "myVar",
				},
				Value: &Ident{
					NamePos: token.Position{Line: 1, Column: 13},
					Name:    "anotherVar",
				},
			},
		},
	}
	require.Equal(t, "let myVar = anotherVar", program.String())
}

func TestFuncString(t *testing.T) {
	fn := &Func{
		Async:    true,
		Name:     &Ident{Name: "hello"},
		Params:   []*Ident{{Name: "a"}, {Name: "b"}},
		Defaults: map[string]Expr{"b": &Int{Literal: "2", Value: 2}},
		Body: &Block{Stmts: []Node{
			&Return{Value: &String{Value: "Hello world"}},
		}},
	}
	require.Equal(t, `async function hello(a, b=2) { return "Hello world" }`, fn.String())
}

func TestAssignTarget(t *testing.T) {
	name := &Assign{Name: &Ident{Name: "x"}, Op: "=", Value: &Nil{}}
	require.Equal(t, "x = nil", name.String())
	require.Equal(t, name.Name, name.Target())

	idx := &Index{X: &Ident{Name: "m"}, Index: &String{Value: "k"}}
	index := &Assign{Index: idx, Op: "+=", Value: &Int{Literal: "1", Value: 1}}
	require.Equal(t, `m["k"] += 1`, index.String())
	require.Equal(t, idx, index.Target())
}

func TestIsExprStmt(t *testing.T) {
	assert.True(t, IsExprStmt(&Call{Fun: &Ident{Name: "f"}}))
	assert.True(t, IsExprStmt(&Func{Body: &Block{}}))
	assert.False(t, IsExprStmt(&Func{Name: &Ident{Name: "f"}, Body: &Block{}}))
	assert.False(t, IsExprStmt(&Var{Name: &Ident{Name: "x"}, Value: &Nil{}}))
}

func TestImportLocalName(t *testing.T) {
	imp := &Import{Name: &Ident{Name: "asyncio"}}
	require.Equal(t, "asyncio", imp.LocalName())
	imp.Alias = &Ident{Name: "__awaitless_asyncio"}
	require.Equal(t, "__awaitless_asyncio", imp.LocalName())
	require.Equal(t, "import asyncio as __awaitless_asyncio", imp.String())
}

func TestBadExpr(t *testing.T) {
	from := token.Position{Line: 1, Column: 5, File: "test.aw"}
	to := token.Position{Line: 1, Column: 15, File: "test.aw"}
	bad := &BadExpr{From: from, To: to}
	assert.Equal(t, from, bad.Pos())
	assert.Equal(t, to, bad.End())
	assert.Equal(t, "<bad expression>", bad.String())
}

func TestBlockString(t *testing.T) {
	block := &Block{Stmts: []Node{
		&Assign{Name: &Ident{Name: "x"}, Op: "=", Value: &Int{Literal: "1", Value: 1}},
		&Await{X: &Ident{Name: "x"}},
	}}
	require.Equal(t, "{ x = 1; await x }", block.String())
	require.Equal(t, "{ }", (&Block{}).String())
}
