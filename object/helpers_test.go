package object

import "github.com/t0technology/awaitless/errors"

func errorsFrame(fn string, line int) errors.StackFrame {
	return errors.StackFrame{
		Function: fn,
		Location: errors.SourceLocation{Filename: "<cell>", Line: line, Column: 1},
	}
}
