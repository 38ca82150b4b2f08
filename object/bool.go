package object

import (
	"fmt"

	"github.com/t0technology/awaitless/op"
)

type Bool struct {
	*base
	value bool
}

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Inspect() string {
	return fmt.Sprintf("%t", b.value)
}

func (b *Bool) String() string {
	return b.Inspect()
}

func (b *Bool) Interface() any {
	return b.value
}

func (b *Bool) Compare(other Object) (int, error) {
	otherBool, ok := other.(*Bool)
	if !ok {
		return 0, TypeErrorf("unable to compare bool and %s", other.Type())
	}
	switch {
	case b.value == otherBool.value:
		return 0, nil
	case b.value:
		return 1, nil
	default:
		return -1, nil
	}
}

func (b *Bool) Equals(other Object) bool {
	otherBool, ok := other.(*Bool)
	return ok && b.value == otherBool.value
}

func (b *Bool) IsTruthy() bool {
	return b.value
}

func (b *Bool) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	return nil, TypeErrorf("unsupported operation for bool: %v", opType)
}

// NewBool returns the shared True or False object.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// Not returns the boolean negation of the object's truthiness.
func Not(obj Object) *Bool {
	return NewBool(!obj.IsTruthy())
}
