// Package strings exposes string helpers to scripts.
package strings

import (
	"context"
	"strings"

	"github.com/t0technology/awaitless/object"
)

// stringArgs checks the argument count of name and converts every argument
// to a Go string.
func stringArgs(name string, count int, args []object.Object) ([]string, error) {
	if err := object.Require(name, count, args); err != nil {
		return nil, err
	}
	values := make([]string, len(args))
	for i, arg := range args {
		s, err := object.AsString(arg)
		if err != nil {
			return nil, err
		}
		values[i] = s
	}
	return values, nil
}

func unary(name string, fn func(string) string) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		s, err := stringArgs(name, 1, args)
		if err != nil {
			return nil, err
		}
		return object.NewString(fn(s[0])), nil
	}
}

func binary(name string, fn func(string, string) string) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		s, err := stringArgs(name, 2, args)
		if err != nil {
			return nil, err
		}
		return object.NewString(fn(s[0], s[1])), nil
	}
}

func predicate(name string, fn func(string, string) bool) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		s, err := stringArgs(name, 2, args)
		if err != nil {
			return nil, err
		}
		return object.NewBool(fn(s[0], s[1])), nil
	}
}

func position(name string, fn func(string, string) int) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		s, err := stringArgs(name, 2, args)
		if err != nil {
			return nil, err
		}
		return object.NewInt(int64(fn(s[0], s[1]))), nil
	}
}

// Repeat returns s repeated count times.
func Repeat(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("strings.repeat", 2, args); err != nil {
		return nil, err
	}
	s, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	count, err := object.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, object.ValueErrorf("strings.repeat: negative count")
	}
	return object.NewString(strings.Repeat(s, int(count))), nil
}

// Join concatenates a list of strings with a separator.
func Join(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("strings.join", 2, args); err != nil {
		return nil, err
	}
	list, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	sep, err := object.AsString(args[1])
	if err != nil {
		return nil, err
	}
	items := list.Value()
	parts := make([]string, len(items))
	for i, item := range items {
		if parts[i], err = object.AsString(item); err != nil {
			return nil, err
		}
	}
	return object.NewString(strings.Join(parts, sep)), nil
}

// Split slices s around each instance of sep.
func Split(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := stringArgs("strings.split", 2, args)
	if err != nil {
		return nil, err
	}
	return object.NewStringList(strings.Split(s[0], s[1])), nil
}

// Fields splits s around runs of white space.
func Fields(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := stringArgs("strings.fields", 1, args)
	if err != nil {
		return nil, err
	}
	return object.NewStringList(strings.Fields(s[0])), nil
}

// ReplaceAll replaces every instance of old in s with new.
func ReplaceAll(ctx context.Context, args ...object.Object) (object.Object, error) {
	s, err := stringArgs("strings.replace_all", 3, args)
	if err != nil {
		return nil, err
	}
	return object.NewString(strings.ReplaceAll(s[0], s[1], s[2])), nil
}

func Module() *object.Module {
	return object.NewBuiltinsModule("strings", map[string]object.Object{
		"contains":    object.NewBuiltin("contains", predicate("strings.contains", strings.Contains)),
		"has_prefix":  object.NewBuiltin("has_prefix", predicate("strings.has_prefix", strings.HasPrefix)),
		"has_suffix":  object.NewBuiltin("has_suffix", predicate("strings.has_suffix", strings.HasSuffix)),
		"count":       object.NewBuiltin("count", position("strings.count", strings.Count)),
		"compare":     object.NewBuiltin("compare", position("strings.compare", strings.Compare)),
		"index":       object.NewBuiltin("index", position("strings.index", strings.Index)),
		"last_index":  object.NewBuiltin("last_index", position("strings.last_index", strings.LastIndex)),
		"to_lower":    object.NewBuiltin("to_lower", unary("strings.to_lower", strings.ToLower)),
		"to_upper":    object.NewBuiltin("to_upper", unary("strings.to_upper", strings.ToUpper)),
		"trim_space":  object.NewBuiltin("trim_space", unary("strings.trim_space", strings.TrimSpace)),
		"trim":        object.NewBuiltin("trim", binary("strings.trim", strings.Trim)),
		"trim_prefix": object.NewBuiltin("trim_prefix", binary("strings.trim_prefix", strings.TrimPrefix)),
		"trim_suffix": object.NewBuiltin("trim_suffix", binary("strings.trim_suffix", strings.TrimSuffix)),
		"repeat":      object.NewBuiltin("repeat", Repeat),
		"join":        object.NewBuiltin("join", Join),
		"split":       object.NewBuiltin("split", Split),
		"fields":      object.NewBuiltin("fields", Fields),
		"replace_all": object.NewBuiltin("replace_all", ReplaceAll),
	})
}
