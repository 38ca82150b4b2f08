// Package rewrite turns top-level coroutines into awaited tasks.
//
// A cell such as
//
//	x = fetch()
//
// where fetch is an async function would otherwise bind x to a coroutine
// that never runs. The Rewriter expands each top-level expression statement
// and assignment so that a coroutine value is wrapped in a task and awaited
// before the next statement runs. Code inside function bodies is never
// touched.
package rewrite

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/internal/token"
)

// Reserved names used by synthesized code.
const (
	Prefix       = "__awaitless_"
	TempName     = Prefix + "tmp"
	InspectAlias = Prefix + "inspect"
	AsyncioAlias = Prefix + "asyncio"
)

// Name identifies the rewriter in a transformer registry.
const Name = "awaitless"

// Rewriter is a syntax transformer. It holds no state between programs.
type Rewriter struct {
	strict bool
	logger zerolog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithStrictShapes makes the rewriter fail on statements it cannot rewrite,
// such as compound assignment, instead of leaving them unchanged.
func WithStrictShapes() Option {
	return func(r *Rewriter) {
		r.strict = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Rewriter) {
		r.logger = logger
	}
}

// New returns a Rewriter.
func New(options ...Option) *Rewriter {
	r := &Rewriter{logger: zerolog.Nop()}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Name returns the registry identity shared by all Rewriter instances.
func (r *Rewriter) Name() string {
	return Name
}

// Rewrite applies a default Rewriter to program.
func Rewrite(program *ast.Program) (*ast.Program, error) {
	return New().Transform(program)
}

// Transform returns a rewritten copy of program. The input is not modified;
// user expressions are shared between the input and the result. A program
// that already starts with the reserved imports is returned as is.
func (r *Rewriter) Transform(program *ast.Program) (*ast.Program, error) {
	if program == nil || hasPreamble(program) {
		return program, nil
	}
	w := &walker{strict: r.strict}
	stmts := w.list(program.Stmts)
	if w.errs != nil {
		return nil, w.errs.ErrorOrNil()
	}

	head := preamble()
	if len(program.Stmts) > 0 {
		Stamp(head, token.Position{File: program.Stmts[0].Pos().File})
	}
	out := &ast.Program{Stmts: append(head, stmts...)}
	r.logger.Debug().
		Int("statements", len(program.Stmts)).
		Int("rewritten", w.rewritten).
		Msg("program rewritten")
	return out, nil
}

// walker carries the state of one pass. Nested function bodies are never
// entered, so the walk itself is the scope boundary.
type walker struct {
	strict    bool
	rewritten int
	errs      *multierror.Error
}

func (w *walker) list(stmts []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(stmts))
	for _, stmt := range stmts {
		out = append(out, w.stmt(stmt)...)
	}
	return out
}

func (w *walker) block(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	return &ast.Block{Lbrace: b.Lbrace, Stmts: w.list(b.Stmts), Rbrace: b.Rbrace}
}

// stmt returns the statements that replace stmt, in order.
func (w *walker) stmt(stmt ast.Node) []ast.Node {
	if synthesized(stmt) {
		return []ast.Node{stmt}
	}
	switch s := stmt.(type) {
	case *ast.Func:
		return []ast.Node{s}
	case *ast.If:
		out := *s
		out.Consequence = w.block(s.Consequence)
		out.Alternative = w.block(s.Alternative)
		return []ast.Node{&out}
	case *ast.Try:
		out := *s
		out.Body = w.block(s.Body)
		out.CatchBlock = w.block(s.CatchBlock)
		out.FinallyBlock = w.block(s.FinallyBlock)
		return []ast.Node{&out}
	case *ast.Block:
		return []ast.Node{w.block(s)}
	case *ast.Var:
		return w.assign(s, s.Value, &ast.Var{Let: s.Let, Name: s.Name, Value: ident(TempName)}, s.Name)
	case *ast.Const:
		return w.assign(s, s.Value, &ast.Const{Const: s.Const, Name: s.Name, Value: ident(TempName)}, s.Name)
	case *ast.MultiVar:
		keep := make([]ast.Node, len(s.Names))
		for i, name := range s.Names {
			keep[i] = name
		}
		return w.assign(s, s.Value, &ast.MultiVar{Let: s.Let, Names: s.Names, Value: ident(TempName)}, keep...)
	case *ast.Assign:
		if s.Op != "=" {
			return w.unsupported(s, "compound assignment "+s.Op)
		}
		target := &ast.Assign{Name: s.Name, Index: s.Index, OpPos: s.OpPos, Op: s.Op, Value: ident(TempName)}
		return w.assign(s, s.Value, target, s.Target())
	case *ast.SetAttr:
		if s.Op != "=" {
			return w.unsupported(s, "compound assignment "+s.Op)
		}
		target := &ast.SetAttr{X: s.X, Period: s.Period, Attr: s.Attr, OpPos: s.OpPos, Op: s.Op, Value: ident(TempName)}
		return w.assign(s, s.Value, target, s.X, s.Attr)
	}
	if expr, ok := stmt.(ast.Expr); ok && ast.IsExprStmt(stmt) {
		w.rewritten++
		out := append(capture(expr), yieldTemp())
		return Reconcile(out, stmt, expr)
	}
	return []ast.Node{stmt}
}

// assign expands a binding statement. final rebinds the original target to
// the temporary; keep lists the user's own subtrees inside final.
func (w *walker) assign(original ast.Node, value ast.Expr, final ast.Node, keep ...ast.Node) []ast.Node {
	w.rewritten++
	out := append(capture(value), final)
	return Reconcile(out, original, append(keep, value)...)
}

func (w *walker) unsupported(stmt ast.Node, reason string) []ast.Node {
	if w.strict {
		w.errs = multierror.Append(w.errs, &UnsupportedShapeError{
			Stmt:     stmt,
			Position: stmt.Pos(),
			Reason:   reason,
		})
	}
	return []ast.Node{stmt}
}

func hasPreamble(program *ast.Program) bool {
	if len(program.Stmts) < 2 {
		return false
	}
	for i, alias := range []string{InspectAlias, AsyncioAlias} {
		imp, ok := program.Stmts[i].(*ast.Import)
		if !ok || imp.LocalName() != alias {
			return false
		}
	}
	return true
}

// synthesized reports whether stmt has the shape of generated code, so that
// running the rewriter over its own output leaves it alone.
func synthesized(stmt ast.Node) bool {
	switch s := stmt.(type) {
	case *ast.Ident:
		return s.Name == TempName
	case *ast.Import:
		return strings.HasPrefix(s.LocalName(), Prefix)
	case *ast.Assign:
		return (s.Name != nil && s.Name.Name == TempName) || isTemp(s.Value)
	case *ast.SetAttr:
		return isTemp(s.Value)
	case *ast.Var:
		return isTemp(s.Value)
	case *ast.Const:
		return isTemp(s.Value)
	case *ast.MultiVar:
		return isTemp(s.Value)
	case *ast.If:
		c, ok := s.Cond.(*ast.Call)
		if !ok {
			return false
		}
		fun, ok := c.Fun.(*ast.GetAttr)
		return ok && isIdent(fun.X, InspectAlias)
	}
	return false
}

func isTemp(expr ast.Expr) bool {
	return isIdent(expr, TempName)
}

func isIdent(expr ast.Expr, name string) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == name
}
