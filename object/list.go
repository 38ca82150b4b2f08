package object

import (
	"context"
	"strings"

	"github.com/t0technology/awaitless/op"
)

var listMethods = NewMethodRegistry[*List]("list")

func init() {
	listMethods.Define("append").
		Doc("Add item to end of list").
		Arg("item").
		Returns("list").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			ls.Append(args[0])
			return ls, nil
		})

	listMethods.Define("extend").
		Doc("Add all items from another list").
		Arg("items").
		Returns("list").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			other, err := AsList(args[0])
			if err != nil {
				return nil, err
			}
			ls.items = append(ls.items, other.items...)
			return ls, nil
		})

	listMethods.Define("pop").
		Doc("Remove and return the last item").
		Returns("any").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			if len(ls.items) == 0 {
				return nil, IndexErrorf("pop from empty list")
			}
			last := ls.items[len(ls.items)-1]
			ls.items = ls.items[:len(ls.items)-1]
			return last, nil
		})

	listMethods.Define("copy").
		Doc("Create a shallow copy").
		Returns("list").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			return ls.Copy(), nil
		})

	listMethods.Define("index").
		Doc("Find first index of item (-1 if not found)").
		Arg("item").
		Returns("int").
		Impl(func(ls *List, ctx context.Context, args ...Object) (Object, error) {
			for i, item := range ls.items {
				if item.Equals(args[0]) {
					return NewInt(int64(i)), nil
				}
			}
			return NewInt(-1), nil
		})
}

// List of objects.
type List struct {
	*base
	items []Object
}

func (ls *List) Attrs() []AttrSpec {
	return listMethods.Specs()
}

func (ls *List) GetAttr(name string) (Object, bool) {
	return listMethods.GetAttr(ls, name)
}

func (ls *List) Type() Type {
	return LIST
}

func (ls *List) Value() []Object {
	return ls.items
}

func (ls *List) Inspect() string {
	items := make([]string, 0, len(ls.items))
	for _, item := range ls.items {
		items = append(items, item.Inspect())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (ls *List) String() string {
	return ls.Inspect()
}

func (ls *List) Interface() any {
	items := make([]any, 0, len(ls.items))
	for _, item := range ls.items {
		items = append(items, item.Interface())
	}
	return items
}

func (ls *List) Append(obj Object) {
	ls.items = append(ls.items, obj)
}

func (ls *List) Copy() *List {
	items := make([]Object, len(ls.items))
	copy(items, ls.items)
	return NewList(items)
}

func (ls *List) Equals(other Object) bool {
	otherList, ok := other.(*List)
	if !ok || len(ls.items) != len(otherList.items) {
		return false
	}
	for i, item := range ls.items {
		if !item.Equals(otherList.items[i]) {
			return false
		}
	}
	return true
}

func (ls *List) IsTruthy() bool {
	return len(ls.items) > 0
}

func (ls *List) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	if other, ok := right.(*List); ok && opType == op.Add {
		items := make([]Object, 0, len(ls.items)+len(other.items))
		items = append(items, ls.items...)
		items = append(items, other.items...)
		return NewList(items), nil
	}
	return nil, TypeErrorf("unsupported operand types for %s: list and %s", opType, right.Type())
}

func (ls *List) GetItem(key Object) (Object, *Error) {
	index, err := AsInt(key)
	if err != nil {
		return nil, AsErrorObject(err)
	}
	idx, ok := normalizeIndex(index, len(ls.items))
	if !ok {
		return nil, IndexErrorf("list index out of range")
	}
	return ls.items[idx], nil
}

func (ls *List) SetItem(key, value Object) *Error {
	index, err := AsInt(key)
	if err != nil {
		return AsErrorObject(err)
	}
	idx, ok := normalizeIndex(index, len(ls.items))
	if !ok {
		return IndexErrorf("list assignment index out of range")
	}
	ls.items[idx] = value
	return nil
}

func (ls *List) Len() *Int {
	return NewInt(int64(len(ls.items)))
}

func NewList(items []Object) *List {
	return &List{items: items}
}
