package rewrite

import (
	"fmt"

	"github.com/t0technology/awaitless/ast"
	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/internal/token"
)

// UnsupportedShapeError is reported in strict mode for a top-level statement
// the rewriter cannot expand.
type UnsupportedShapeError struct {
	Stmt     ast.Node
	Position token.Position
	Reason   string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("unsupported statement shape (%s) at line %d, column %d",
		e.Reason, e.Position.LineNumber(), e.Position.ColumnNumber())
}

// ToTransformError converts the error for display.
func (e *UnsupportedShapeError) ToTransformError() *errors.TransformError {
	return &errors.TransformError{
		Code:     errors.E2001,
		Message:  "unsupported statement shape: " + e.Reason,
		Filename: e.Position.File,
		Line:     e.Position.LineNumber(),
		Column:   e.Position.ColumnNumber(),
		Note:     "await coroutines in this statement explicitly",
	}
}
