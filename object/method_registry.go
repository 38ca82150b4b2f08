package object

import (
	"context"
	"fmt"
)

// Method is the implementation of a method of T, called with the receiver.
type Method[T any] func(self T, ctx context.Context, args ...Object) (Object, error)

type methodEntry[T any] struct {
	spec AttrSpec
	impl Method[T]
}

// MethodRegistry maps method names of one value type to implementations.
// Registries are filled from init functions and read-only afterwards.
type MethodRegistry[T any] struct {
	typeName string
	index    map[string]int
	entries  []methodEntry[T]
}

// NewMethodRegistry returns an empty registry for values named typeName.
func NewMethodRegistry[T any](typeName string) *MethodRegistry[T] {
	return &MethodRegistry[T]{typeName: typeName, index: map[string]int{}}
}

// Define begins a method declaration, finished by Impl.
func (r *MethodRegistry[T]) Define(name string) *MethodBuilder[T] {
	return &MethodBuilder[T]{registry: r, spec: AttrSpec{Name: name}}
}

// Specs lists the registered methods in definition order.
func (r *MethodRegistry[T]) Specs() []AttrSpec {
	specs := make([]AttrSpec, len(r.entries))
	for i, e := range r.entries {
		specs[i] = e.spec
	}
	return specs
}

// GetAttr binds the named method to self. The returned builtin checks the
// argument count before calling the implementation.
func (r *MethodRegistry[T]) GetAttr(self T, name string) (Object, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	entry := r.entries[i]
	qualified := r.typeName + "." + name
	required := len(entry.spec.Args)
	maxArgs := required + len(entry.spec.Optional)
	return NewBuiltin(qualified, func(ctx context.Context, args ...Object) (Object, error) {
		if required == maxArgs {
			if err := Require(qualified, required, args); err != nil {
				return nil, err
			}
		} else if err := RequireRange(qualified, required, maxArgs, args); err != nil {
			return nil, err
		}
		return entry.impl(self, ctx, args...)
	}), true
}

// MethodBuilder accumulates the description of one method.
type MethodBuilder[T any] struct {
	registry *MethodRegistry[T]
	spec     AttrSpec
}

func (b *MethodBuilder[T]) Doc(doc string) *MethodBuilder[T] {
	b.spec.Doc = doc
	return b
}

// Arg appends a required parameter.
func (b *MethodBuilder[T]) Arg(name string) *MethodBuilder[T] {
	b.spec.Args = append(b.spec.Args, name)
	return b
}

// OptionalArg appends a parameter that may be left out. Optional
// parameters follow the required ones.
func (b *MethodBuilder[T]) OptionalArg(name string) *MethodBuilder[T] {
	b.spec.Optional = append(b.spec.Optional, name)
	return b
}

func (b *MethodBuilder[T]) Returns(typ string) *MethodBuilder[T] {
	b.spec.Returns = typ
	return b
}

// Impl registers the method. Defining a name twice panics.
func (b *MethodBuilder[T]) Impl(fn Method[T]) {
	r := b.registry
	if _, dup := r.index[b.spec.Name]; dup {
		panic(fmt.Sprintf("%s: method %q already registered", r.typeName, b.spec.Name))
	}
	r.index[b.spec.Name] = len(r.entries)
	r.entries = append(r.entries, methodEntry[T]{spec: b.spec, impl: fn})
}
