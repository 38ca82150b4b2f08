package object

import (
	"context"
	"fmt"
	"strings"

	"github.com/t0technology/awaitless/op"
)

var stringMethods = NewMethodRegistry[*String]("string")

func init() {
	stringMethods.Define("lower").
		Doc("Convert to lowercase").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return NewString(strings.ToLower(s.value)), nil
		})

	stringMethods.Define("upper").
		Doc("Convert to uppercase").
		Returns("string").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			return NewString(strings.ToUpper(s.value)), nil
		})

	stringMethods.Define("split").
		Doc("Split by separator").
		Arg("sep").
		Returns("list").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			sep, err := AsString(args[0])
			if err != nil {
				return nil, err
			}
			return NewStringList(strings.Split(s.value, sep)), nil
		})

	stringMethods.Define("contains").
		Doc("Check if substring is present").
		Arg("substr").
		Returns("bool").
		Impl(func(s *String, ctx context.Context, args ...Object) (Object, error) {
			substr, err := AsString(args[0])
			if err != nil {
				return nil, err
			}
			return NewBool(strings.Contains(s.value, substr)), nil
		})
}

// String wraps a Go string and implements Object and Comparable.
type String struct {
	*base
	value string
}

func (s *String) Attrs() []AttrSpec {
	return stringMethods.Specs()
}

func (s *String) GetAttr(name string) (Object, bool) {
	return stringMethods.GetAttr(s, name)
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return fmt.Sprintf("%q", s.value)
}

func (s *String) String() string {
	return s.value
}

func (s *String) Interface() any {
	return s.value
}

func (s *String) Compare(other Object) (int, error) {
	otherStr, ok := other.(*String)
	if !ok {
		return 0, TypeErrorf("unable to compare string and %s", other.Type())
	}
	return strings.Compare(s.value, otherStr.value), nil
}

func (s *String) Equals(other Object) bool {
	otherStr, ok := other.(*String)
	return ok && s.value == otherStr.value
}

func (s *String) IsTruthy() bool {
	return s.value != ""
}

func (s *String) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	switch right := right.(type) {
	case *String:
		if opType == op.Add {
			return NewString(s.value + right.value), nil
		}
	case *Int:
		if opType == op.Multiply {
			if right.value < 0 {
				return NewString(""), nil
			}
			return NewString(strings.Repeat(s.value, int(right.value))), nil
		}
	}
	return nil, TypeErrorf("unsupported operand types for %s: string and %s", opType, right.Type())
}

func (s *String) GetItem(key Object) (Object, *Error) {
	index, err := AsInt(key)
	if err != nil {
		return nil, AsErrorObject(err)
	}
	runes := []rune(s.value)
	idx, ok := normalizeIndex(index, len(runes))
	if !ok {
		return nil, IndexErrorf("string index out of range")
	}
	return NewString(string(runes[idx])), nil
}

func (s *String) SetItem(key, value Object) *Error {
	return TypeErrorf("string does not support item assignment")
}

func (s *String) Len() *Int {
	return NewInt(int64(len([]rune(s.value))))
}

func NewString(s string) *String {
	return &String{value: s}
}

// NewStringList returns a list of strings.
func NewStringList(values []string) *List {
	items := make([]Object, 0, len(values))
	for _, v := range values {
		items = append(items, NewString(v))
	}
	return NewList(items)
}

// normalizeIndex resolves negative indexes against length n.
func normalizeIndex(index int64, n int) (int, bool) {
	if index < 0 {
		index += int64(n)
	}
	if index < 0 || index >= int64(n) {
		return 0, false
	}
	return int(index), true
}
