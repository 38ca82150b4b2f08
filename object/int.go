package object

import (
	"fmt"
	"math"

	"github.com/t0technology/awaitless/op"
)

// Int wraps int64 and implements Object and Comparable.
type Int struct {
	*base
	value int64
}

func (i *Int) Type() Type {
	return INT
}

func (i *Int) Value() int64 {
	return i.value
}

func (i *Int) Inspect() string {
	return fmt.Sprintf("%d", i.value)
}

func (i *Int) String() string {
	return i.Inspect()
}

func (i *Int) Interface() any {
	return i.value
}

func (i *Int) Compare(other Object) (int, error) {
	switch other := other.(type) {
	case *Int:
		return compareNumbers(float64(i.value), float64(other.value)), nil
	case *Float:
		return compareNumbers(float64(i.value), other.value), nil
	default:
		return 0, TypeErrorf("unable to compare int and %s", other.Type())
	}
}

func (i *Int) Equals(other Object) bool {
	switch other := other.(type) {
	case *Int:
		return i.value == other.value
	case *Float:
		return float64(i.value) == other.value
	default:
		return false
	}
}

func (i *Int) IsTruthy() bool {
	return i.value != 0
}

func (i *Int) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	switch right := right.(type) {
	case *Int:
		return i.runOperationInt(opType, right.value)
	case *Float:
		return (&Float{value: float64(i.value)}).RunOperation(opType, right)
	default:
		return nil, TypeErrorf("unsupported operand types for %s: int and %s", opType, right.Type())
	}
}

func (i *Int) runOperationInt(opType op.BinaryOpType, right int64) (Object, error) {
	switch opType {
	case op.Add:
		return NewInt(i.value + right), nil
	case op.Subtract:
		return NewInt(i.value - right), nil
	case op.Multiply:
		return NewInt(i.value * right), nil
	case op.Divide:
		if right == 0 {
			return nil, ZeroDivisionErrorf("division by zero")
		}
		return NewInt(i.value / right), nil
	case op.Modulo:
		if right == 0 {
			return nil, ZeroDivisionErrorf("integer modulo by zero")
		}
		return NewInt(i.value % right), nil
	default:
		return nil, TypeErrorf("unsupported operation for int: %v", opType)
	}
}

func NewInt(value int64) *Int {
	return &Int{value: value}
}

// Float wraps float64 and implements Object and Comparable.
type Float struct {
	*base
	value float64
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Value() float64 {
	return f.value
}

func (f *Float) Inspect() string {
	if f.value == math.Trunc(f.value) && math.Abs(f.value) < 1e15 {
		return fmt.Sprintf("%.1f", f.value)
	}
	return fmt.Sprintf("%g", f.value)
}

func (f *Float) String() string {
	return f.Inspect()
}

func (f *Float) Interface() any {
	return f.value
}

func (f *Float) Compare(other Object) (int, error) {
	switch other := other.(type) {
	case *Float:
		return compareNumbers(f.value, other.value), nil
	case *Int:
		return compareNumbers(f.value, float64(other.value)), nil
	default:
		return 0, TypeErrorf("unable to compare float and %s", other.Type())
	}
}

func (f *Float) Equals(other Object) bool {
	switch other := other.(type) {
	case *Float:
		return f.value == other.value
	case *Int:
		return f.value == float64(other.value)
	default:
		return false
	}
}

func (f *Float) IsTruthy() bool {
	return f.value != 0.0
}

func (f *Float) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	var rightValue float64
	switch right := right.(type) {
	case *Float:
		rightValue = right.value
	case *Int:
		rightValue = float64(right.value)
	default:
		return nil, TypeErrorf("unsupported operand types for %s: float and %s", opType, right.Type())
	}
	switch opType {
	case op.Add:
		return NewFloat(f.value + rightValue), nil
	case op.Subtract:
		return NewFloat(f.value - rightValue), nil
	case op.Multiply:
		return NewFloat(f.value * rightValue), nil
	case op.Divide:
		if rightValue == 0 {
			return nil, ZeroDivisionErrorf("float division by zero")
		}
		return NewFloat(f.value / rightValue), nil
	case op.Modulo:
		if rightValue == 0 {
			return nil, ZeroDivisionErrorf("float modulo")
		}
		return NewFloat(math.Mod(f.value, rightValue)), nil
	default:
		return nil, TypeErrorf("unsupported operation for float: %v", opType)
	}
}

func NewFloat(value float64) *Float {
	return &Float{value: value}
}

func compareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
