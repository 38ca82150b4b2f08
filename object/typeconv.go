package object

import "fmt"

// *****************************************************************************
// Type assertion helpers
// *****************************************************************************

func AsBool(obj Object) (bool, error) {
	b, ok := obj.(*Bool)
	if !ok {
		return false, TypeErrorf("expected a bool (%s given)", obj.Type())
	}
	return b.value, nil
}

func AsString(obj Object) (string, error) {
	s, ok := obj.(*String)
	if !ok {
		return "", TypeErrorf("expected a string (%s given)", obj.Type())
	}
	return s.value, nil
}

func AsInt(obj Object) (int64, error) {
	i, ok := obj.(*Int)
	if !ok {
		return 0, TypeErrorf("expected an integer (%s given)", obj.Type())
	}
	return i.value, nil
}

func AsFloat(obj Object) (float64, error) {
	switch obj := obj.(type) {
	case *Int:
		return float64(obj.value), nil
	case *Float:
		return obj.value, nil
	default:
		return 0, TypeErrorf("expected a number (%s given)", obj.Type())
	}
}

func AsList(obj Object) (*List, error) {
	ls, ok := obj.(*List)
	if !ok {
		return nil, TypeErrorf("expected a list (%s given)", obj.Type())
	}
	return ls, nil
}

func AsMap(obj Object) (*Map, error) {
	m, ok := obj.(*Map)
	if !ok {
		return nil, TypeErrorf("expected a map (%s given)", obj.Type())
	}
	return m, nil
}

// FromGoType converts a Go value into an Object. Unsupported values yield
// an error.
func FromGoType(v any) (Object, error) {
	switch v := v.(type) {
	case nil:
		return Nil, nil
	case Object:
		return v, nil
	case bool:
		return NewBool(v), nil
	case int:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return NewString(v), nil
	case []any:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			obj, err := FromGoType(item)
			if err != nil {
				return nil, err
			}
			items = append(items, obj)
		}
		return NewList(items), nil
	case map[string]any:
		items := make(map[string]Object, len(v))
		for key, item := range v {
			obj, err := FromGoType(item)
			if err != nil {
				return nil, err
			}
			items[key] = obj
		}
		return NewMap(items), nil
	default:
		return nil, TypeErrorf("unsupported go type: %T", v)
	}
}

// PrintableValue returns the text shown for an object by print and str:
// strings without quotes, everything else as Inspect.
func PrintableValue(obj Object) string {
	if s, ok := obj.(fmt.Stringer); ok {
		if str, isStr := obj.(*String); isStr {
			return str.value
		}
		return s.String()
	}
	return obj.Inspect()
}
