// Package interp evaluates parsed programs.
//
// The interpreter walks the syntax tree directly. Top-level code of every
// cell runs in one persistent global scope, so bindings survive from one
// cell to the next. Calling an async function yields a coroutine whose body
// runs when it is awaited, either inline or as an event loop task.
package interp

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/object"
)

// DefaultMaxDepth is the default limit on nested function calls.
const DefaultMaxDepth = 500

// CellFunction is the function name reported in stack frames for top-level
// code.
const CellFunction = "<cell>"

// Interpreter evaluates programs against a persistent global scope.
type Interpreter struct {
	builtins *Scope
	globals  *Scope
	modules  map[string]object.Object
	logger   zerolog.Logger
	maxDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithBuiltins makes the given values visible from every scope. Builtins
// can be shadowed but never reassigned through the global scope.
func WithBuiltins(builtins map[string]object.Object) Option {
	return func(in *Interpreter) {
		for name, value := range builtins {
			in.builtins.vars[name] = &binding{value: value}
		}
	}
}

// WithModules registers the modules that import statements can bind.
func WithModules(modules map[string]object.Object) Option {
	return func(in *Interpreter) {
		for name, mod := range modules {
			in.modules[name] = mod
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithMaxDepth limits the depth of nested function calls.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		in.maxDepth = depth
	}
}

// New returns an interpreter with an empty global scope.
func New(options ...Option) *Interpreter {
	builtins := NewScope(nil)
	in := &Interpreter{
		builtins: builtins,
		globals:  NewScope(builtins),
		modules:  map[string]object.Object{},
		logger:   zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(in)
	}
	return in
}

// Globals returns the session scope.
func (in *Interpreter) Globals() *Scope {
	return in.globals
}

// Module returns a registered module by name.
func (in *Interpreter) Module(name string) (object.Object, bool) {
	mod, ok := in.modules[name]
	return mod, ok
}

// Eval runs a program in the global scope. The result is the value of the
// last statement when that statement is an expression, and nil otherwise.
func (in *Interpreter) Eval(ctx context.Context, program *ast.Program) (object.Object, error) {
	fr := &frame{name: CellFunction, scope: in.globals, depth: depthFrom(ctx)}
	var result object.Object = object.Nil
	for i, stmt := range program.Stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := in.eval(ctx, fr, stmt)
		if err != nil {
			return nil, err
		}
		if fr.returning {
			return fr.returnValue(), nil
		}
		if i == len(program.Stmts)-1 && ast.IsExprStmt(stmt) {
			result = value
		}
	}
	in.logger.Debug().Int("statements", len(program.Stmts)).Msg("program evaluated")
	return result, nil
}

// frame is the state of one function invocation, or of a cell.
type frame struct {
	name      string
	scope     *Scope
	depth     int
	returning bool
	retval    object.Object
	raised    *object.Error
}

func (fr *frame) returnValue() object.Object {
	if fr.retval == nil {
		return object.Nil
	}
	return fr.retval
}

// raise records where err passed through this frame. Only the innermost
// node of the frame is recorded, so each frame adds one stack entry.
func (fr *frame) raise(node ast.Node, err error) error {
	if errors.IsFatal(err) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	e := object.AsErrorObject(err)
	if e == fr.raised {
		return e
	}
	pos := node.Pos()
	e = e.WithFrame(errors.StackFrame{
		Function: fr.name,
		Location: errors.SourceLocation{
			Filename: pos.File,
			Line:     pos.LineNumber(),
			Column:   pos.ColumnNumber(),
		},
	})
	fr.raised = e
	return e
}

type depthKey struct{}

func depthFrom(ctx context.Context) int {
	if depth, ok := ctx.Value(depthKey{}).(int); ok {
		return depth
	}
	return 0
}

func withDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}
