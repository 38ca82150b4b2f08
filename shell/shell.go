// Package shell runs cells of source code against one persistent session.
//
// A Shell owns the interpreter globals, the event loop and an ordered list
// of syntax transformers that every cell passes through before it runs.
// Cells for which the async predicate returns true run as the main task of
// the session loop, so top-level await is permitted in them.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/builtins"
	"github.com/t0technology/awaitless/eventloop"
	"github.com/t0technology/awaitless/history"
	"github.com/t0technology/awaitless/interp"
	"github.com/t0technology/awaitless/modules/asyncio"
	"github.com/t0technology/awaitless/modules/inspect"
	stringsmod "github.com/t0technology/awaitless/modules/strings"
	timemod "github.com/t0technology/awaitless/modules/time"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/parser"
	"github.com/t0technology/awaitless/syntax"
)

// ShouldRunAsync decides, from the parsed and not yet transformed cell,
// whether the cell runs inside the event loop.
type ShouldRunAsync func(program *ast.Program) bool

// Shell is an interactive session.
type Shell struct {
	interp            *interp.Interpreter
	loop              *eventloop.Loop
	logger            zerolog.Logger
	history           *history.Store
	out               io.Writer
	color             bool
	autoAwait         bool
	tracebackFallback bool
	reservedPrefix    string
	interpOptions     []interp.Option

	mu             sync.Mutex
	transformers   []syntax.NamedTransformer
	shouldRunAsync ShouldRunAsync
	count          int
	sources        map[string]string
	outputs        map[int]object.Object
	extensions     map[string]Extension
	loaded         map[string]bool
	closed         bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used by the shell, its loop and interpreter.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithHistory records every executed cell in store. The shell closes the
// store when it is closed.
func WithHistory(store *history.Store) Option {
	return func(s *Shell) {
		s.history = store
	}
}

// WithOutput sets where print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		s.out = w
	}
}

// WithColor enables colored error output.
func WithColor(enabled bool) Option {
	return func(s *Shell) {
		s.color = enabled
	}
}

// WithAutoAwait controls the default async predicate. When disabled, cells
// only run in the loop if a transformer installs a predicate that says so.
func WithAutoAwait(enabled bool) Option {
	return func(s *Shell) {
		s.autoAwait = enabled
	}
}

// WithTracebackFallback renders a placeholder for stack frames whose source
// line cannot be found instead of failing to render the error.
func WithTracebackFallback(enabled bool) Option {
	return func(s *Shell) {
		s.tracebackFallback = enabled
	}
}

// WithReservedPrefix rejects cells that bind names starting with prefix.
func WithReservedPrefix(prefix string) Option {
	return func(s *Shell) {
		s.reservedPrefix = prefix
	}
}

// WithInterpreterOptions passes extra options to the session interpreter.
func WithInterpreterOptions(options ...interp.Option) Option {
	return func(s *Shell) {
		s.interpOptions = append(s.interpOptions, options...)
	}
}

// New returns a shell with a fresh session.
func New(options ...Option) *Shell {
	s := &Shell{
		logger:            zerolog.Nop(),
		out:               os.Stdout,
		autoAwait:         true,
		tracebackFallback: true,
		sources:           map[string]string{},
		outputs:           map[int]object.Object{},
		extensions:        map[string]Extension{},
		loaded:            map[string]bool{},
	}
	for _, opt := range options {
		opt(s)
	}
	interpOptions := append([]interp.Option{
		interp.WithBuiltins(builtins.Builtins()),
		interp.WithModules(map[string]object.Object{
			"asyncio": asyncio.Module(),
			"inspect": inspect.Module(),
			"strings": stringsmod.Module(),
			"time":    timemod.Module(),
		}),
		interp.WithLogger(s.logger),
	}, s.interpOptions...)
	s.interp = interp.New(interpOptions...)
	s.loop = eventloop.New(eventloop.WithLogger(s.logger))
	s.shouldRunAsync = s.defaultShouldRunAsync
	return s
}

// Interpreter returns the session interpreter.
func (s *Shell) Interpreter() *interp.Interpreter {
	return s.interp
}

// Loop returns the session event loop.
func (s *Shell) Loop() *eventloop.Loop {
	return s.loop
}

// History returns the attached history store, or nil.
func (s *Shell) History() *history.Store {
	return s.history
}

// ExecutionCount returns the number of cells run so far.
func (s *Shell) ExecutionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Output returns the value produced by cell n, if it produced one.
func (s *Shell) Output(n int) (object.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.outputs[n]
	return value, ok
}

// AddTransformer appends t to the pipeline. An installed transformer with
// the same name is removed first, so installing twice leaves one instance.
func (s *Shell) AddTransformer(t syntax.NamedTransformer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transformers = removeNamed(s.transformers, t.Name())
	s.transformers = append(s.transformers, t)
	s.logger.Debug().Str("transformer", t.Name()).Int("installed", len(s.transformers)).Msg("transformer added")
}

// RemoveTransformer removes the transformer with the given name and reports
// whether one was installed.
func (s *Shell) RemoveTransformer(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.transformers)
	s.transformers = removeNamed(s.transformers, name)
	removed := len(s.transformers) != before
	if removed {
		s.logger.Debug().Str("transformer", name).Msg("transformer removed")
	}
	return removed
}

// Transformers returns the installed transformers in order.
func (s *Shell) Transformers() []syntax.NamedTransformer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]syntax.NamedTransformer(nil), s.transformers...)
}

func removeNamed(list []syntax.NamedTransformer, name string) []syntax.NamedTransformer {
	out := list[:0:0]
	for _, t := range list {
		if t.Name() != name {
			out = append(out, t)
		}
	}
	return out
}

// SetShouldRunAsync replaces the async predicate and returns the previous
// one. A nil predicate restores the default.
func (s *Shell) SetShouldRunAsync(fn ShouldRunAsync) ShouldRunAsync {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.shouldRunAsync
	if fn == nil {
		fn = s.defaultShouldRunAsync
	}
	s.shouldRunAsync = fn
	return prev
}

// ShouldRunAsync returns the current async predicate.
func (s *Shell) ShouldRunAsync() ShouldRunAsync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shouldRunAsync
}

func (s *Shell) defaultShouldRunAsync(program *ast.Program) bool {
	return s.autoAwait && HasTopLevelAwait(program)
}

// HasTopLevelAwait reports whether program awaits anything outside a
// function body.
func HasTopLevelAwait(program *ast.Program) bool {
	found := false
	ast.Inspect(program, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.Func:
			return false
		case *ast.Await:
			found = true
		}
		return !found
	})
	return found
}

// RunCell parses, transforms and runs one cell. Cells are numbered from 1
// and named "<cell N>" in positions and stack frames.
func (s *Shell) RunCell(ctx context.Context, source string) *ExecutionResult {
	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()
	return s.run(ctx, n, fmt.Sprintf("<cell %d>", n), source)
}

// RunFile runs source as a single cell named after filename.
func (s *Shell) RunFile(ctx context.Context, filename, source string) *ExecutionResult {
	s.mu.Lock()
	s.count++
	n := s.count
	s.mu.Unlock()
	return s.run(ctx, n, filename, source)
}

func (s *Shell) run(ctx context.Context, n int, filename, source string) *ExecutionResult {
	start := time.Now()
	result := &ExecutionResult{ExecutionCount: n, Filename: filename, Source: source, Value: object.Nil}
	defer func() {
		result.Duration = time.Since(start)
		s.logger.Debug().
			Int("cell", n).
			Bool("async", result.Async).
			Bool("ok", result.Success()).
			Dur("duration", result.Duration).
			Msg("cell executed")
	}()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		result.ErrorBeforeExec = ErrClosed
		return result
	}
	if isMagic(source) {
		s.mu.Unlock()
		s.runMagic(result)
		return result
	}
	s.sources[filename] = source
	transformers := append([]syntax.NamedTransformer(nil), s.transformers...)
	shouldRunAsync := s.shouldRunAsync
	s.mu.Unlock()

	program, err := parser.Parse(ctx, source, parser.WithFilename(filename))
	if err != nil {
		result.ErrorBeforeExec = err
		return result
	}
	if s.reservedPrefix != "" {
		if err := syntax.Check(program, source, syntax.ReservedNameValidator{Prefix: s.reservedPrefix}); err != nil {
			result.ErrorBeforeExec = err
			return result
		}
	}
	result.Async = shouldRunAsync(program)

	program, err = s.transform(program, transformers)
	if err != nil {
		result.ErrorBeforeExec = err
		return result
	}
	result.Program = program
	if err := syntax.Check(program, source, syntax.AwaitValidator{AllowTopLevel: result.Async}); err != nil {
		result.ErrorBeforeExec = err
		return result
	}

	ctx = builtins.WithOutput(ctx, s.out)
	var value object.Object
	if result.Async {
		value, err = s.runAsync(ctx, n, program)
	} else {
		value, err = s.interp.Eval(ctx, program)
	}
	if err != nil {
		result.ErrorInExec = err
	} else if value != nil {
		result.Value = value
		if value != object.Nil {
			s.mu.Lock()
			s.outputs[n] = value
			s.mu.Unlock()
		}
	}

	if s.history != nil {
		if err := s.history.Store(context.WithoutCancel(ctx), n, source, program.String()); err != nil {
			s.logger.Warn().Err(err).Int("cell", n).Msg("storing history")
		}
	}
	return result
}

// transform applies transformers in order. A transformer that rejects the
// input stops the cell. Any other failure unregisters the transformer and
// the cell continues with the program as it was.
func (s *Shell) transform(program *ast.Program, transformers []syntax.NamedTransformer) (*ast.Program, error) {
	for _, t := range transformers {
		out, err := t.Transform(program)
		if err != nil {
			if IsInputRejected(err) {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("transformer", t.Name()).Msg("transformer failed and was unregistered")
			s.RemoveTransformer(t.Name())
			continue
		}
		if out != nil {
			program = out
		}
	}
	return program, nil
}

func (s *Shell) runAsync(ctx context.Context, n int, program *ast.Program) (object.Object, error) {
	coro := object.NewCoroutine(interp.CellFunction, func(ctx context.Context) (object.Object, error) {
		return s.interp.Eval(ctx, program)
	})
	main, err := s.loop.CreateTask(ctx, coro, eventloop.WithName(fmt.Sprintf("cell-%d", n)))
	if err != nil {
		return nil, err
	}
	return s.loop.RunUntilComplete(ctx, main)
}

// Close closes the event loop and the history store.
func (s *Shell) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var result *multierror.Error
	if err := s.loop.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing history: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// Source returns the text of a cell or file run in this session.
func (s *Shell) Source(filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[filename]
	return src, ok
}

func sourceLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
