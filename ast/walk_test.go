package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/internal/token"
)

func letSum() *Program {
	// let x = 1 + 2
	return &Program{
		Stmts: []Node{
			&Var{
				Let: token.Position{Line: 1, Column: 1},
				Name: &Ident{
					NamePos: token.Position{Line: 1, Column: 5},
					Name:    "x",
				},
				Value: &Infix{
					X: &Int{
						ValuePos: token.Position{Line: 1, Column: 9},
						Literal:  "1",
						Value:    1,
					},
					OpPos: token.Position{Line: 1, Column: 11},
					Op:    "+",
					Y: &Int{
						ValuePos: token.Position{Line: 1, Column: 13},
						Literal:  "2",
						Value:    2,
					},
				},
			},
		},
	}
}

func TestWalk(t *testing.T) {
	var visited []string
	Inspect(letSum(), func(n Node) bool {
		switch node := n.(type) {
		case *Program:
			visited = append(visited, "Program")
		case *Var:
			visited = append(visited, "Var")
		case *Ident:
			visited = append(visited, "Ident:"+node.Name)
		case *Infix:
			visited = append(visited, "Infix:"+node.Op)
		case *Int:
			visited = append(visited, "Int")
		}
		return true
	})
	require.Equal(t, []string{"Program", "Var", "Ident:x", "Infix:+", "Int", "Int"}, visited)
}

func TestInspectStopsDescent(t *testing.T) {
	body := &Block{Stmts: []Node{
		&Call{Fun: &Ident{Name: "inner"}},
	}}
	program := &Program{Stmts: []Node{
		&Func{Async: true, Name: &Ident{Name: "f"}, Body: body},
		&Call{Fun: &Ident{Name: "outer"}},
	}}

	var calls []string
	Inspect(program, func(n Node) bool {
		if _, ok := n.(*Func); ok {
			return false
		}
		if call, ok := n.(*Call); ok {
			calls = append(calls, call.Fun.String())
		}
		return true
	})
	require.Equal(t, []string{"outer"}, calls)
}

func TestPreorder(t *testing.T) {
	var count int
	for n := range Preorder(letSum()) {
		count++
		if _, ok := n.(*Infix); ok {
			break
		}
	}
	require.Equal(t, 4, count)
}

func TestWalkAwait(t *testing.T) {
	program := &Program{Stmts: []Node{
		&Await{X: &Call{Fun: &GetAttr{X: &Ident{Name: "asyncio"}, Attr: &Ident{Name: "sleep"}}, Args: []Expr{&Int{Literal: "1", Value: 1}}}},
	}}
	var kinds []string
	for n := range Preorder(program) {
		switch n.(type) {
		case *Await:
			kinds = append(kinds, "await")
		case *Call:
			kinds = append(kinds, "call")
		case *GetAttr:
			kinds = append(kinds, "getattr")
		}
	}
	require.Equal(t, []string{"await", "call", "getattr"}, kinds)
}
