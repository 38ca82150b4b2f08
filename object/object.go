// Package object provides the runtime values manipulated by the interpreter.
//
// Callers usually type switch on an object.Object to reach a concrete type:
//
//	switch obj := obj.(type) {
//	case *object.String:
//		// do something with obj.Value()
//	case *object.Coroutine:
//		// not started yet; hand it to a task or await it
//	}
//
// The Type() method of each object may also be used to get a string
// name of the object type, such as "string" or "coroutine".
package object

import (
	"context"

	"github.com/t0technology/awaitless/op"
)

// Type of an object as a string.
type Type string

// Type constants
const (
	BOOL      Type = "bool"
	BUILTIN   Type = "builtin"
	COROUTINE Type = "coroutine"
	ERROR     Type = "error"
	FLOAT     Type = "float"
	FUNCTION  Type = "function"
	INT       Type = "int"
	LIST      Type = "list"
	MAP       Type = "map"
	MODULE    Type = "module"
	NIL       Type = "nil"
	STRING    Type = "string"
	TASK      Type = "task"
)

var (
	Nil   = &NilType{}
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Object is the interface that all runtime values implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() any

	// Returns true if the given object is equal to this object.
	Equals(other Object) bool

	// GetAttr returns the attribute with the given name from this object.
	GetAttr(name string) (Object, bool)

	// SetAttr sets the attribute with the given name on this object.
	SetAttr(name string, value Object) error

	// IsTruthy returns true if the object is considered "truthy".
	IsTruthy() bool

	// RunOperation runs an operation on this object with the given
	// right-hand side object.
	RunOperation(opType op.BinaryOpType, right Object) (Object, error)
}

// Comparable is implemented by objects that have an ordering.
type Comparable interface {
	// Compare returns -1, 0, or 1 when the object is less than, equal to, or
	// greater than other.
	Compare(other Object) (int, error)
}

// Callable is implemented by objects that can be called like functions.
type Callable interface {
	Object
	Call(ctx context.Context, args ...Object) (Object, error)
}

// Awaitable is implemented by objects that may be the operand of await.
// Await blocks the calling task until the value is available.
type Awaitable interface {
	Object
	Await(ctx context.Context) (Object, error)
}

// Container is implemented by objects that support the [key] operators.
type Container interface {
	// GetItem implements the [key] operator for a container type.
	GetItem(key Object) (Object, *Error)

	// SetItem implements the [key] = value operator for a container type.
	SetItem(key, value Object) *Error

	// Len returns the number of items in the container.
	Len() *Int
}

// Compare orders two objects, failing with a TypeError when a has no
// ordering relative to b.
func Compare(a, b Object) (int, error) {
	comparable, ok := a.(Comparable)
	if !ok {
		return 0, TypeErrorf("unable to compare %s and %s", a.Type(), b.Type())
	}
	return comparable.Compare(b)
}

// CompareOp evaluates a comparison operator between two objects.
func CompareOp(opType op.CompareOpType, a, b Object) (Object, error) {
	switch opType {
	case op.Equal:
		return NewBool(a.Equals(b)), nil
	case op.NotEqual:
		return NewBool(!a.Equals(b)), nil
	}
	value, err := Compare(a, b)
	if err != nil {
		return nil, err
	}
	switch opType {
	case op.LessThan:
		return NewBool(value < 0), nil
	case op.LessThanOrEqual:
		return NewBool(value <= 0), nil
	case op.GreaterThan:
		return NewBool(value > 0), nil
	case op.GreaterThanOrEqual:
		return NewBool(value >= 0), nil
	}
	return nil, TypeErrorf("unknown comparison operator: %s", opType)
}
