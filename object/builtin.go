package object

import (
	"context"
	"fmt"
)

var _ Callable = (*Builtin)(nil) // Ensure that *Builtin implements Callable

// BuiltinFunction holds the type of a built-in function.
type BuiltinFunction func(ctx context.Context, args ...Object) (Object, error)

// Builtin wraps func and implements Object interface.
type Builtin struct {
	*base

	// The function that this object wraps.
	fn BuiltinFunction

	// The name of the function.
	name string

	// The name of the module this function originates from, if any.
	moduleName string
}

func (b *Builtin) Type() Type {
	return BUILTIN
}

func (b *Builtin) Value() BuiltinFunction {
	return b.fn
}

func (b *Builtin) Interface() any {
	return nil
}

func (b *Builtin) Call(ctx context.Context, args ...Object) (Object, error) {
	return b.fn(ctx, args...)
}

func (b *Builtin) Inspect() string {
	return fmt.Sprintf("builtin(%s)", b.Key())
}

func (b *Builtin) String() string {
	return b.Inspect()
}

func (b *Builtin) Name() string {
	return b.name
}

func (b *Builtin) GetAttr(name string) (Object, bool) {
	if name == "__name__" {
		return NewString(b.Key()), true
	}
	return nil, false
}

// Key returns a string that uniquely identifies this builtin function.
func (b *Builtin) Key() string {
	if b.moduleName == "" {
		return b.name
	}
	return b.moduleName + "." + b.name
}

func (b *Builtin) Equals(other Object) bool {
	otherBuiltin, ok := other.(*Builtin)
	return ok && b == otherBuiltin
}

// NewBuiltin returns a new Builtin wrapping fn.
func NewBuiltin(name string, fn BuiltinFunction) *Builtin {
	return &Builtin{fn: fn, name: name}
}

// NewModuleBuiltin returns a new Builtin that reports itself as a member of
// the named module.
func NewModuleBuiltin(module, name string, fn BuiltinFunction) *Builtin {
	return &Builtin{fn: fn, name: name, moduleName: module}
}
