// Package builtins defines the default set of built-in functions.
package builtins

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/t0technology/awaitless/object"
)

type outputKey struct{}

// WithOutput returns a context whose print output goes to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// OutputFrom returns the print destination stored in ctx, or os.Stdout.
func OutputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok {
		return w
	}
	return os.Stdout
}

func Print(ctx context.Context, args ...object.Object) (object.Object, error) {
	values := make([]string, 0, len(args))
	for _, arg := range args {
		values = append(values, object.PrintableValue(arg))
	}
	if _, err := fmt.Fprintln(OutputFrom(ctx), strings.Join(values, " ")); err != nil {
		return nil, err
	}
	return object.Nil, nil
}

func Len(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("len", 1, args); err != nil {
		return nil, err
	}
	switch arg := args[0].(type) {
	case object.Container:
		return arg.Len(), nil
	default:
		return nil, object.TypeErrorf("len() unsupported argument (%s given)", args[0].Type())
	}
}

func Sprintf(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("sprintf", 1, 64, args); err != nil {
		return nil, err
	}
	fs, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	return object.NewString(fmt.Sprintf(fs, goValues(args[1:])...)), nil
}

// Error creates an error value without throwing it. Use throw to raise the error.
// Example: let err = error("file %s not found", filename)
func Error(ctx context.Context, args ...object.Object) (object.Object, error) {
	return newError(object.KindError, "error", args)
}

// ErrorKind returns a builtin that creates errors of the given kind, e.g.
// ValueError("bad input").
func ErrorKind(kind string) object.BuiltinFunction {
	return func(ctx context.Context, args ...object.Object) (object.Object, error) {
		return newError(kind, kind, args)
	}
}

func newError(kind, name string, args []object.Object) (object.Object, error) {
	if len(args) == 0 {
		return object.NewError(kind, ""), nil
	}
	if err := object.RequireRange(name, 1, 64, args); err != nil {
		return nil, err
	}
	fs, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return object.NewError(kind, fs), nil
	}
	return object.NewError(kind, fmt.Sprintf(fs, goValues(args[1:])...)), nil
}

func List(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("list", 0, 1, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.NewList(nil), nil
	}
	switch arg := args[0].(type) {
	case *object.List:
		return arg.Copy(), nil
	case *object.Map:
		return arg.Keys(), nil
	case *object.String:
		var items []object.Object
		for _, r := range arg.Value() {
			items = append(items, object.NewString(string(r)))
		}
		return object.NewList(items), nil
	default:
		return nil, object.TypeErrorf("list() expected a list, map or string (%s given)", arg.Type())
	}
}

func String(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("string", 0, 1, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.NewString(""), nil
	}
	return object.NewString(object.PrintableValue(args[0])), nil
}

func Type(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("type", 1, args); err != nil {
		return nil, err
	}
	return object.NewString(string(args[0].Type())), nil
}

func Assert(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("assert", 1, 2, args); err != nil {
		return nil, err
	}
	if args[0].IsTruthy() {
		return object.Nil, nil
	}
	if len(args) == 2 {
		return nil, object.NewError("AssertionError", object.PrintableValue(args[1]))
	}
	return nil, object.NewError("AssertionError", "assertion failed")
}

func Any(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("any", 1, args); err != nil {
		return nil, err
	}
	ls, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	for _, item := range ls.Value() {
		if item.IsTruthy() {
			return object.True, nil
		}
	}
	return object.False, nil
}

func All(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("all", 1, args); err != nil {
		return nil, err
	}
	ls, err := object.AsList(args[0])
	if err != nil {
		return nil, err
	}
	for _, item := range ls.Value() {
		if !item.IsTruthy() {
			return object.False, nil
		}
	}
	return object.True, nil
}

func Bool(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("bool", 0, 1, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.False, nil
	}
	return object.NewBool(args[0].IsTruthy()), nil
}

func Sorted(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("sorted", 1, 2, args); err != nil {
		return nil, err
	}
	var items []object.Object
	switch arg := args[0].(type) {
	case *object.List:
		items = arg.Value()
	case *object.Map:
		items = arg.Keys().Value()
	default:
		return nil, object.TypeErrorf("sorted() unsupported argument (%s given)", arg.Type())
	}
	result := make([]object.Object, len(items))
	copy(result, items)
	var sortErr error
	less := func(i, j int) bool {
		cmp, err := object.Compare(result[i], result[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return cmp < 0
	}
	if len(args) == 2 {
		callable, ok := args[1].(object.Callable)
		if !ok {
			return nil, object.TypeErrorf("sorted() expected a function as the second argument (%s given)", args[1].Type())
		}
		less = func(i, j int) bool {
			value, err := callable.Call(ctx, result[i], result[j])
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return err == nil && value.IsTruthy()
		}
	}
	sort.SliceStable(result, less)
	if sortErr != nil {
		return nil, sortErr
	}
	return object.NewList(result), nil
}

func GetAttr(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("getattr", 2, 3, args); err != nil {
		return nil, err
	}
	attrName, err := object.AsString(args[1])
	if err != nil {
		return nil, err
	}
	if attr, found := args[0].GetAttr(attrName); found {
		return attr, nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return nil, object.AttributeErrorf("%s object has no attribute %q", args[0].Type(), attrName)
}

func Call(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("call", 1, 64, args); err != nil {
		return nil, err
	}
	callable, ok := args[0].(object.Callable)
	if !ok {
		return nil, object.TypeErrorf("call() unsupported argument (%s given)", args[0].Type())
	}
	return callable.Call(ctx, args[1:]...)
}

func Keys(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("keys", 1, args); err != nil {
		return nil, err
	}
	switch arg := args[0].(type) {
	case *object.Map:
		return arg.Keys(), nil
	case *object.List:
		keys := make([]object.Object, 0, len(arg.Value()))
		for i := range arg.Value() {
			keys = append(keys, object.NewInt(int64(i)))
		}
		return object.NewList(keys), nil
	default:
		return nil, object.TypeErrorf("keys() unsupported argument (%s given)", args[0].Type())
	}
}

// Dir lists the attribute names of a value, or the builtin names when
// called without arguments.
func Dir(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("dir", 0, 1, args); err != nil {
		return nil, err
	}
	var specs []object.AttrSpec
	if len(args) == 0 {
		specs = Docs()
	} else if v, ok := args[0].(object.Introspectable); ok {
		specs = v.Attrs()
	}
	names := object.AttrNames(specs)
	sort.Strings(names)
	return object.NewStringList(names), nil
}

func Range(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("range", 1, 2, args); err != nil {
		return nil, err
	}
	var start, stop int64
	var err error
	if len(args) == 1 {
		if stop, err = object.AsInt(args[0]); err != nil {
			return nil, err
		}
	} else {
		if start, err = object.AsInt(args[0]); err != nil {
			return nil, err
		}
		if stop, err = object.AsInt(args[1]); err != nil {
			return nil, err
		}
	}
	var items []object.Object
	for i := start; i < stop; i++ {
		items = append(items, object.NewInt(i))
	}
	return object.NewList(items), nil
}

func Int(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("int", 0, 1, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.NewInt(0), nil
	}
	switch obj := args[0].(type) {
	case *object.Int:
		return obj, nil
	case *object.Float:
		return object.NewInt(int64(obj.Value())), nil
	case *object.String:
		if i, err := strconv.ParseInt(obj.Value(), 0, 64); err == nil {
			return object.NewInt(i), nil
		}
		return nil, object.ValueErrorf("invalid literal for int(): %q", obj.Value())
	default:
		return nil, object.TypeErrorf("int() unsupported argument (%s given)", args[0].Type())
	}
}

func Float(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("float", 0, 1, args); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return object.NewFloat(0), nil
	}
	switch obj := args[0].(type) {
	case *object.Int:
		return object.NewFloat(float64(obj.Value())), nil
	case *object.Float:
		return obj, nil
	case *object.String:
		if f, err := strconv.ParseFloat(obj.Value(), 64); err == nil {
			return object.NewFloat(f), nil
		}
		return nil, object.ValueErrorf("invalid literal for float(): %q", obj.Value())
	default:
		return nil, object.TypeErrorf("float() unsupported argument (%s given)", args[0].Type())
	}
}

func goValues(args []object.Object) []any {
	values := make([]any, len(args))
	for i, v := range args {
		values[i] = v.Interface()
	}
	return values
}

func Builtins() map[string]object.Object {
	return map[string]object.Object{
		"all":          object.NewBuiltin("all", All),
		"any":          object.NewBuiltin("any", Any),
		"assert":       object.NewBuiltin("assert", Assert),
		"bool":         object.NewBuiltin("bool", Bool),
		"call":         object.NewBuiltin("call", Call),
		"dir":          object.NewBuiltin("dir", Dir),
		"error":        object.NewBuiltin("error", Error),
		"float":        object.NewBuiltin("float", Float),
		"getattr":      object.NewBuiltin("getattr", GetAttr),
		"int":          object.NewBuiltin("int", Int),
		"keys":         object.NewBuiltin("keys", Keys),
		"len":          object.NewBuiltin("len", Len),
		"list":         object.NewBuiltin("list", List),
		"print":        object.NewBuiltin("print", Print),
		"range":        object.NewBuiltin("range", Range),
		"sorted":       object.NewBuiltin("sorted", Sorted),
		"sprintf":      object.NewBuiltin("sprintf", Sprintf),
		"str":          object.NewBuiltin("str", String),
		"string":       object.NewBuiltin("string", String),
		"type":         object.NewBuiltin("type", Type),
		"RuntimeError": object.NewBuiltin("RuntimeError", ErrorKind(object.KindRuntimeError)),
		"TypeError":    object.NewBuiltin("TypeError", ErrorKind(object.KindTypeError)),
		"ValueError":   object.NewBuiltin("ValueError", ErrorKind(object.KindValueError)),
	}
}
