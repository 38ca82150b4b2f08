package syntax

import (
	"fmt"
	"strings"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/internal/token"
)

// ValidationError represents a syntax restriction violation.
type ValidationError struct {
	Code     errors.ErrorCode // error code, when one applies
	Message  string           // description of the violation
	Node     ast.Node         // the offending node
	Position token.Position   // source location
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// ToTransformError converts the violation for display. source is the text
// the program was parsed from and may be empty.
func (e *ValidationError) ToTransformError(source string) *errors.TransformError {
	return &errors.TransformError{
		Code:       e.Code,
		Message:    e.Message,
		Filename:   e.Position.File,
		Line:       e.Position.LineNumber(),
		Column:     e.Position.ColumnNumber(),
		SourceLine: sourceLine(source, e.Position.Line),
	}
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// NewValidationErrors creates a ValidationErrors from a slice of errors.
func NewValidationErrors(errs []ValidationError) *ValidationErrors {
	return &ValidationErrors{Errors: errs}
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns the first error for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}
	return nil
}

// Validator inspects an AST and returns validation errors.
// Validators should not modify the AST.
type Validator interface {
	// Validate checks the AST and returns any validation errors.
	// Multiple errors may be returned to show all violations at once.
	Validate(program *ast.Program) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(*ast.Program) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(p *ast.Program) []ValidationError {
	return f(p)
}

// Check runs every validator and reports all violations as transform errors.
// It returns nil when the program is valid.
func Check(program *ast.Program, source string, validators ...Validator) error {
	var errs errors.TransformErrors
	for _, v := range validators {
		for _, violation := range v.Validate(program) {
			errs.Add(violation.ToTransformError(source))
		}
	}
	return errs.ToError()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line >= len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line], "\r")
}
