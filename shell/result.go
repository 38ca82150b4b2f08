package shell

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/parser"
)

// ErrClosed is reported for cells run after Close.
var ErrClosed = stderrors.New("shell is closed")

// SourcePlaceholder replaces a stack frame source line that cannot be
// found when the traceback fallback is enabled.
const SourcePlaceholder = "<error retrieving source code>"

// ExecutionResult describes one executed cell.
type ExecutionResult struct {
	ExecutionCount int
	Filename       string
	Source         string

	// Program is the program that ran, after transformation. It is nil when
	// the cell failed before transformation finished.
	Program *ast.Program

	// Value is the value of the last expression statement, or nil.
	Value object.Object

	// ErrorBeforeExec is set when the cell failed to parse, was rejected by
	// a transformer or failed validation. Nothing ran.
	ErrorBeforeExec error

	// ErrorInExec is set when running the cell raised an error.
	ErrorInExec error

	Async    bool
	Duration time.Duration
}

// Success reports whether the cell ran without error.
func (r *ExecutionResult) Success() bool {
	return r.ErrorBeforeExec == nil && r.ErrorInExec == nil
}

// Err returns the error that stopped the cell, or nil.
func (r *ExecutionResult) Err() error {
	if r.ErrorBeforeExec != nil {
		return r.ErrorBeforeExec
	}
	return r.ErrorInExec
}

// rejection is implemented by errors that describe a program a transformer
// refuses to handle.
type rejection interface {
	ToTransformError() *errors.TransformError
}

// IsInputRejected reports whether err is a deliberate refusal of the input
// by a transformer, as opposed to a transformer failure.
func IsInputRejected(err error) bool {
	var te *errors.TransformError
	if stderrors.As(err, &te) {
		return true
	}
	var tes *errors.TransformErrors
	if stderrors.As(err, &tes) {
		return true
	}
	var r rejection
	return stderrors.As(err, &r)
}

// FormatError renders err with the source of the cells it points into.
// Stack frames that point at a line the cell does not have are rendered
// with SourcePlaceholder when the traceback fallback is enabled, and make
// FormatError fail otherwise.
func (s *Shell) FormatError(err error) (string, error) {
	formatted := formattedErrors(err)
	for _, fe := range formatted {
		if err := s.attachSource(fe); err != nil {
			return "", err
		}
	}
	return errors.NewFormatter(s.color).FormatMultiple(formatted), nil
}

func formattedErrors(err error) []*errors.FormattedError {
	var perrs *parser.Errors
	if stderrors.As(err, &perrs) {
		return perrs.ToFormattedMultiple()
	}
	var tes *errors.TransformErrors
	if stderrors.As(err, &tes) {
		out := make([]*errors.FormattedError, 0, len(tes.Errors))
		for _, te := range tes.Errors {
			out = append(out, te.ToFormatted())
		}
		return out
	}
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		var out []*errors.FormattedError
		for _, e := range merr.Errors {
			out = append(out, formattedErrors(e)...)
		}
		return out
	}
	var r rejection
	if stderrors.As(err, &r) {
		return []*errors.FormattedError{r.ToTransformError().ToFormatted()}
	}
	var fe errors.FormattableError
	if stderrors.As(err, &fe) {
		return []*errors.FormattedError{fe.ToFormatted()}
	}
	return []*errors.FormattedError{{Kind: "error", Message: err.Error()}}
}

func (s *Shell) attachSource(fe *errors.FormattedError) error {
	if len(fe.SourceLines) == 0 && fe.Line > 0 {
		if text, ok, err := s.line(fe.Filename, fe.Line); err != nil {
			return err
		} else if ok {
			fe.SourceLines = []errors.SourceLineEntry{{Number: fe.Line, Text: text, IsMain: true}}
		}
	}
	fe.Stack = append([]errors.StackFrame(nil), fe.Stack...)
	for i := range fe.Stack {
		loc := &fe.Stack[i].Location
		if loc.Source != "" {
			continue
		}
		text, ok, err := s.line(loc.Filename, loc.Line)
		if err != nil {
			return err
		}
		if ok {
			loc.Source = text
		}
	}
	return nil
}

// line returns line n (1-based) of a cell. Unknown files report ok false.
func (s *Shell) line(filename string, n int) (string, bool, error) {
	source, ok := s.Source(filename)
	if !ok {
		return "", false, nil
	}
	lines := sourceLines(source)
	if n < 1 || n > len(lines) {
		if s.tracebackFallback {
			return SourcePlaceholder, true, nil
		}
		return "", false, fmt.Errorf("retrieving source for %s: line %d out of range (%d lines)", filename, n, len(lines))
	}
	return lines[n-1], true, nil
}
