package object

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/t0technology/awaitless/op"
)

var mapMethods = NewMethodRegistry[*Map]("map")

func init() {
	mapMethods.Define("get").
		Doc("Get value by key, or the default (nil)").
		Arg("key").
		OptionalArg("default").
		Returns("any").
		Impl(func(m *Map, ctx context.Context, args ...Object) (Object, error) {
			key, err := AsString(args[0])
			if err != nil {
				return nil, err
			}
			if value, ok := m.items[key]; ok {
				return value, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return Nil, nil
		})

	mapMethods.Define("keys").
		Doc("List of keys in sorted order").
		Returns("list").
		Impl(func(m *Map, ctx context.Context, args ...Object) (Object, error) {
			return m.Keys(), nil
		})

	mapMethods.Define("values").
		Doc("List of values in key order").
		Returns("list").
		Impl(func(m *Map, ctx context.Context, args ...Object) (Object, error) {
			values := make([]Object, 0, len(m.items))
			for _, key := range m.SortedKeys() {
				values = append(values, m.items[key])
			}
			return NewList(values), nil
		})
}

// Map is a string keyed collection of objects. Keys are always strings.
type Map struct {
	*base
	items map[string]Object
}

func (m *Map) Attrs() []AttrSpec {
	return mapMethods.Specs()
}

// GetAttr returns a method of the map, falling back to the item stored
// under name.
func (m *Map) GetAttr(name string) (Object, bool) {
	if method, ok := mapMethods.GetAttr(m, name); ok {
		return method, true
	}
	value, ok := m.items[name]
	return value, ok
}

// SetAttr stores value under name, so obj.name = v and obj["name"] = v
// are equivalent.
func (m *Map) SetAttr(name string, value Object) error {
	m.items[name] = value
	return nil
}

func (m *Map) Type() Type {
	return MAP
}

func (m *Map) Value() map[string]Object {
	return m.items
}

func (m *Map) SortedKeys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Map) Keys() *List {
	return NewStringList(m.SortedKeys())
}

func (m *Map) Inspect() string {
	items := make([]string, 0, len(m.items))
	for _, key := range m.SortedKeys() {
		items = append(items, fmt.Sprintf("%q: %s", key, m.items[key].Inspect()))
	}
	return "{" + strings.Join(items, ", ") + "}"
}

func (m *Map) String() string {
	return m.Inspect()
}

func (m *Map) Interface() any {
	result := make(map[string]any, len(m.items))
	for k, v := range m.items {
		result[k] = v.Interface()
	}
	return result
}

func (m *Map) Equals(other Object) bool {
	otherMap, ok := other.(*Map)
	if !ok || len(m.items) != len(otherMap.items) {
		return false
	}
	for k, v := range m.items {
		otherValue, ok := otherMap.items[k]
		if !ok || !v.Equals(otherValue) {
			return false
		}
	}
	return true
}

func (m *Map) IsTruthy() bool {
	return len(m.items) > 0
}

func (m *Map) RunOperation(opType op.BinaryOpType, right Object) (Object, error) {
	return nil, TypeErrorf("unsupported operation for map: %v", opType)
}

func (m *Map) GetItem(key Object) (Object, *Error) {
	k, err := AsString(key)
	if err != nil {
		return nil, AsErrorObject(err)
	}
	value, ok := m.items[k]
	if !ok {
		return nil, KeyErrorf("key %q not found", k)
	}
	return value, nil
}

func (m *Map) SetItem(key, value Object) *Error {
	k, err := AsString(key)
	if err != nil {
		return AsErrorObject(err)
	}
	m.items[k] = value
	return nil
}

func (m *Map) Len() *Int {
	return NewInt(int64(len(m.items)))
}

func NewMap(items map[string]Object) *Map {
	if items == nil {
		items = map[string]Object{}
	}
	return &Map{items: items}
}
