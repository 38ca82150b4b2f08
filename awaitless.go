// Package awaitless makes top-level coroutines run on their own.
//
// Loaded into a shell, it rewrites every cell so that an expression or
// assignment whose value is a coroutine schedules it as a task and waits
// for it before the next statement runs:
//
//	sh := shell.New()
//	if err := awaitless.Load(sh); err != nil {
//		return err
//	}
//	sh.RunCell(ctx, "async function hello() { return 1 }")
//	sh.RunCell(ctx, "x = hello()") // x is a finished task
//
// Function bodies are never rewritten.
package awaitless

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/rewrite"
	"github.com/t0technology/awaitless/shell"
)

// Name is the name the extension is registered under.
const Name = rewrite.Name

// ErrNoSession is returned when loading into a shell that does not exist.
var ErrNoSession = stderrors.New("cannot install awaitless: no shell session exists")

// Extension installs the rewriter into a shell and forces every cell to run
// in the event loop, since rewritten cells await at top level.
type Extension struct {
	options []rewrite.Option

	mu       sync.Mutex
	previous map[*shell.Shell]shell.ShouldRunAsync
}

// New returns an extension whose rewriter is built with options.
func New(options ...rewrite.Option) *Extension {
	return &Extension{
		options:  options,
		previous: map[*shell.Shell]shell.ShouldRunAsync{},
	}
}

// Name implements shell.Extension.
func (e *Extension) Name() string {
	return Name
}

// Load installs a fresh rewriter, replacing any installed earlier, and makes
// every cell run asynchronously.
func (e *Extension) Load(sh *shell.Shell) error {
	if sh == nil {
		return ErrNoSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sh.AddTransformer(rewrite.New(e.options...))
	prev := sh.SetShouldRunAsync(runAlways)
	if _, loaded := e.previous[sh]; !loaded {
		e.previous[sh] = prev
	}
	return nil
}

// Unload removes the rewriter and restores the async predicate that was in
// place before the first Load.
func (e *Extension) Unload(sh *shell.Shell) error {
	if sh == nil {
		return ErrNoSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sh.RemoveTransformer(Name)
	if prev, loaded := e.previous[sh]; loaded {
		sh.SetShouldRunAsync(prev)
		delete(e.previous, sh)
	}
	return nil
}

func runAlways(*ast.Program) bool { return true }

// extension returns the extension registered on sh, registering a default
// one when there is none.
func extension(sh *shell.Shell) shell.Extension {
	if ext, ok := sh.Extension(Name); ok {
		return ext
	}
	ext := New()
	sh.RegisterExtension(ext)
	return ext
}

// Load registers the extension on sh if needed and loads it. Loading twice
// has the same effect as loading once.
func Load(sh *shell.Shell) error {
	if sh == nil {
		return ErrNoSession
	}
	extension(sh)
	return sh.LoadExtension(Name)
}

// Unload unloads the extension from sh.
func Unload(sh *shell.Shell) error {
	if sh == nil {
		return ErrNoSession
	}
	extension(sh)
	return sh.UnloadExtension(Name)
}

// Reload unloads and loads the extension.
func Reload(sh *shell.Shell) error {
	if sh == nil {
		return ErrNoSession
	}
	extension(sh)
	return sh.ReloadExtension(Name)
}

// NewShell returns a shell with the extension registered and loaded.
func NewShell(options ...shell.Option) (*shell.Shell, error) {
	sh := shell.New(append(options, shell.WithExtensions(New()), shell.WithReservedPrefix(rewrite.Prefix))...)
	if err := sh.LoadExtension(Name); err != nil {
		sh.Close()
		return nil, err
	}
	return sh, nil
}

// Eval runs source as a single cell in a fresh shell with the extension
// loaded and returns the inspected value of its last expression.
func Eval(ctx context.Context, source string, options ...shell.Option) (string, error) {
	sh, err := NewShell(options...)
	if err != nil {
		return "", err
	}
	result := sh.RunCell(ctx, strings.TrimSpace(source))
	closeErr := sh.Close()
	if err := result.Err(); err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}
	return result.Value.Inspect(), nil
}
