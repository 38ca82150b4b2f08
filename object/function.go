package object

import (
	"context"
	"fmt"
	"strings"
)

var _ Callable = (*Function)(nil)

// Function is a function defined by a script. The interpreter supplies the
// body as a BuiltinFunction that binds arguments and runs the statements.
// Calling an async function does not run the body; it returns a Coroutine
// that runs the body when awaited.
type Function struct {
	*base
	name   string
	params []string
	async  bool
	body   BuiltinFunction
}

func (f *Function) Type() Type {
	return FUNCTION
}

// Name returns the function name, or an empty string for anonymous functions.
func (f *Function) Name() string {
	return f.name
}

// DisplayName returns the name used in stack traces and reprs.
func (f *Function) DisplayName() string {
	if f.name == "" {
		return "<anonymous>"
	}
	return f.name
}

// IsAsync reports whether the function was declared with async.
func (f *Function) IsAsync() bool {
	return f.async
}

func (f *Function) Call(ctx context.Context, args ...Object) (Object, error) {
	if f.async {
		return NewCoroutine(f.DisplayName(), func(ctx context.Context) (Object, error) {
			return f.body(ctx, args...)
		}), nil
	}
	return f.body(ctx, args...)
}

func (f *Function) Inspect() string {
	var out strings.Builder
	if f.async {
		out.WriteString("async ")
	}
	out.WriteString("function")
	if f.name != "" {
		out.WriteString(" " + f.name)
	}
	out.WriteString("(" + strings.Join(f.params, ", ") + ")")
	return out.String()
}

func (f *Function) String() string {
	return f.Inspect()
}

func (f *Function) Interface() any {
	return nil
}

func (f *Function) GetAttr(name string) (Object, bool) {
	if name == "__name__" {
		return NewString(f.DisplayName()), true
	}
	return nil, false
}

func (f *Function) Equals(other Object) bool {
	otherFunc, ok := other.(*Function)
	return ok && f == otherFunc
}

// NewFunction returns a script function.
func NewFunction(name string, params []string, async bool, body BuiltinFunction) *Function {
	return &Function{name: name, params: params, async: async, body: body}
}

// Coroutine is the not-yet-started result of calling an async function.
// It runs at most once: awaiting it runs the body inline in the awaiting
// task; a second await is an error.
type Coroutine struct {
	*base
	name    string
	fn      func(ctx context.Context) (Object, error)
	started bool
}

var _ Awaitable = (*Coroutine)(nil)

func (c *Coroutine) Type() Type {
	return COROUTINE
}

// Name returns the name of the function that produced the coroutine.
func (c *Coroutine) Name() string {
	return c.name
}

// Started reports whether the coroutine body has begun running.
func (c *Coroutine) Started() bool {
	return c.started
}

// Await runs the coroutine body to completion and returns its result.
func (c *Coroutine) Await(ctx context.Context) (Object, error) {
	if c.started {
		return nil, RuntimeErrorf("cannot reuse already awaited coroutine")
	}
	c.started = true
	return c.fn(ctx)
}

func (c *Coroutine) Inspect() string {
	return fmt.Sprintf("<coroutine %s()>", c.name)
}

func (c *Coroutine) String() string {
	return c.Inspect()
}

func (c *Coroutine) Interface() any {
	return nil
}

func (c *Coroutine) Equals(other Object) bool {
	otherCoro, ok := other.(*Coroutine)
	return ok && c == otherCoro
}

// NewCoroutine returns a coroutine that will run fn when awaited.
func NewCoroutine(name string, fn func(ctx context.Context) (Object, error)) *Coroutine {
	return &Coroutine{name: name, fn: fn}
}
