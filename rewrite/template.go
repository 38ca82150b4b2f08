package rewrite

import "github.com/t0technology/awaitless/ast"

func ident(name string) *ast.Ident {
	return &ast.Ident{Name: name}
}

func attr(module, name string) *ast.GetAttr {
	return &ast.GetAttr{X: ident(module), Attr: ident(name)}
}

func call(fun ast.Expr, args ...ast.Expr) *ast.Call {
	return &ast.Call{Fun: fun, Args: args}
}

// preamble binds the runtime support modules under reserved aliases.
func preamble() []ast.Node {
	return []ast.Node{
		&ast.Import{Name: ident("inspect"), Alias: ident(InspectAlias)},
		&ast.Import{Name: ident("asyncio"), Alias: ident(AsyncioAlias)},
	}
}

// capture evaluates value into the temporary and, when the result is a
// coroutine, schedules it as a task and waits for it:
//
//	__awaitless_tmp = value
//	if (__awaitless_inspect.iscoroutine(__awaitless_tmp)) {
//	    __awaitless_tmp = __awaitless_asyncio.create_task(__awaitless_tmp)
//	    await __awaitless_tmp
//	}
//
// The temporary ends up holding the task, whose awaited result is stored.
func capture(value ast.Expr) []ast.Node {
	return []ast.Node{
		&ast.Assign{Name: ident(TempName), Op: "=", Value: value},
		&ast.If{
			Cond: call(attr(InspectAlias, "iscoroutine"), ident(TempName)),
			Consequence: &ast.Block{Stmts: []ast.Node{
				&ast.Assign{
					Name:  ident(TempName),
					Op:    "=",
					Value: call(attr(AsyncioAlias, "create_task"), ident(TempName)),
				},
				&ast.Await{X: ident(TempName)},
			}},
		},
	}
}

// yieldTemp is the trailing statement of a rewritten expression statement.
// Its value is what the cell displays.
func yieldTemp() ast.Node {
	return ident(TempName)
}
