package object

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/op"
)

// Error kinds. A kind names the class of a runtime error the way scripts
// see it, e.g. in the first line of a traceback.
const (
	KindError             = "Error"
	KindTypeError         = "TypeError"
	KindNameError         = "NameError"
	KindValueError        = "ValueError"
	KindRuntimeError      = "RuntimeError"
	KindCancelledError    = "CancelledError"
	KindIndexError        = "IndexError"
	KindKeyError          = "KeyError"
	KindZeroDivisionError = "ZeroDivisionError"
	KindImportError       = "ImportError"
	KindRecursionError    = "RecursionError"
	KindInvalidStateError = "InvalidStateError"
	KindAttributeError    = "AttributeError"
)

var kindCodes = map[string]errors.ErrorCode{
	KindTypeError:         errors.E3001,
	KindZeroDivisionError: errors.E3002,
	KindIndexError:        errors.E3003,
	KindKeyError:          errors.E3004,
	KindNameError:         errors.E3005,
	KindRecursionError:    errors.E3006,
	KindInvalidStateError: errors.E3007,
	KindImportError:       errors.E3008,
	KindCancelledError:    errors.E3009,
	KindValueError:        errors.E3010,
}

// Error is a runtime error. It is both a Go error, returned up the
// interpreter's call chain, and an Object that scripts can catch, inspect
// and throw again.
type Error struct {
	*base
	kind    string
	code    errors.ErrorCode
	message string
	hint    string
	stack   []errors.StackFrame
}

func (e *Error) Type() Type {
	return ERROR
}

// Kind returns the error kind, e.g. "ValueError".
func (e *Error) Kind() string {
	return e.kind
}

// Code returns the error code associated with the kind, if any.
func (e *Error) Code() errors.ErrorCode {
	return e.code
}

// Message returns the message without the kind prefix.
func (e *Error) Message() string {
	return e.message
}

// Hint returns a suggestion for fixing the error, if one is known.
func (e *Error) Hint() string {
	return e.hint
}

// Stack returns the frames the error passed through, innermost first.
func (e *Error) Stack() []errors.StackFrame {
	return e.stack
}

// WithHint returns a copy of the error carrying the given hint.
func (e *Error) WithHint(hint string) *Error {
	clone := e.clone()
	clone.hint = hint
	return clone
}

// WithFrame returns a copy of the error with frame appended to its stack.
// Errors are never mutated in place, since a task may hand the same error
// to several awaiting callers.
func (e *Error) WithFrame(frame errors.StackFrame) *Error {
	clone := e.clone()
	clone.stack = append(clone.stack, frame)
	return clone
}

func (e *Error) clone() *Error {
	clone := *e
	clone.stack = make([]errors.StackFrame, len(e.stack), len(e.stack)+1)
	copy(clone.stack, e.stack)
	return &clone
}

func (e *Error) Error() string {
	if e.message == "" {
		return e.kind
	}
	return e.kind + ": " + e.message
}

func (e *Error) Inspect() string {
	return fmt.Sprintf("%s(%q)", e.kind, e.message)
}

func (e *Error) String() string {
	return e.Error()
}

func (e *Error) Interface() any {
	return e.Error()
}

func (e *Error) Equals(other Object) bool {
	otherErr, ok := other.(*Error)
	return ok && e.kind == otherErr.kind && e.message == otherErr.message
}

func (e *Error) GetAttr(name string) (Object, bool) {
	switch name {
	case "message":
		return NewString(e.message), true
	case "kind":
		return NewString(e.kind), true
	case "line":
		if len(e.stack) == 0 {
			return NewInt(0), true
		}
		return NewInt(int64(e.stack[0].Location.Line)), true
	case "error":
		return NewBuiltin("error", func(ctx context.Context, args ...Object) (Object, error) {
			return NewString(e.Error()), nil
		}), true
	}
	return nil, false
}

func (e *Error) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	return nil, TypeErrorf("unsupported operation for error: %v", opType)
}

// FriendlyErrorMessage renders the error with its stack, without source
// lines.
func (e *Error) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the error for display. The location is the innermost
// stack frame.
func (e *Error) ToFormatted() *errors.FormattedError {
	fe := &errors.FormattedError{
		Code:    e.code,
		Kind:    e.kind,
		Message: e.message,
		Hint:    e.hint,
		Stack:   e.stack,
	}
	if len(e.stack) > 0 {
		loc := e.stack[0].Location
		fe.Filename = loc.Filename
		fe.Line = loc.Line
		fe.Column = loc.Column
	}
	return fe
}

// NewError returns an error of the given kind.
func NewError(kind, message string) *Error {
	return &Error{kind: kind, code: kindCodes[kind], message: message}
}

// Errorf returns a generic error with a formatted message.
func Errorf(format string, a ...any) *Error {
	return NewError(KindError, fmt.Sprintf(format, a...))
}

func TypeErrorf(format string, a ...any) *Error {
	return NewError(KindTypeError, fmt.Sprintf(format, a...))
}

func NameErrorf(format string, a ...any) *Error {
	return NewError(KindNameError, fmt.Sprintf(format, a...))
}

func ValueErrorf(format string, a ...any) *Error {
	return NewError(KindValueError, fmt.Sprintf(format, a...))
}

func RuntimeErrorf(format string, a ...any) *Error {
	return NewError(KindRuntimeError, fmt.Sprintf(format, a...))
}

func AttributeErrorf(format string, a ...any) *Error {
	return NewError(KindAttributeError, fmt.Sprintf(format, a...))
}

func IndexErrorf(format string, a ...any) *Error {
	return NewError(KindIndexError, fmt.Sprintf(format, a...))
}

func KeyErrorf(format string, a ...any) *Error {
	return NewError(KindKeyError, fmt.Sprintf(format, a...))
}

func ZeroDivisionErrorf(format string, a ...any) *Error {
	return NewError(KindZeroDivisionError, fmt.Sprintf(format, a...))
}

func ImportErrorf(format string, a ...any) *Error {
	return NewError(KindImportError, fmt.Sprintf(format, a...))
}

// NewCancelledError returns the error raised inside a cancelled task.
func NewCancelledError() *Error {
	return NewError(KindCancelledError, "")
}

// IsCancelled reports whether err is a CancelledError.
func IsCancelled(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.kind == KindCancelledError
}

// AsErrorObject converts any Go error into an *Error. Errors that are already
// runtime errors are returned unchanged; others become RuntimeErrors.
func AsErrorObject(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return NewError(KindRuntimeError, err.Error())
}
