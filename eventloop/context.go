package eventloop

import "context"

type loopKey struct{}

type taskKey struct{}

// WithLoop returns a context carrying the loop. Builtins find the loop of
// the calling code through FromContext.
func WithLoop(ctx context.Context, l *Loop) context.Context {
	return context.WithValue(ctx, loopKey{}, l)
}

// FromContext returns the loop stored in ctx, or nil.
func FromContext(ctx context.Context) *Loop {
	if ctx == nil {
		return nil
	}
	if l, ok := ctx.Value(loopKey{}).(*Loop); ok {
		return l
	}
	return nil
}

// CurrentTask returns the task whose body is running with ctx, or nil when
// the caller is not inside a task.
func CurrentTask(ctx context.Context) *Task {
	if ctx == nil {
		return nil
	}
	if t, ok := ctx.Value(taskKey{}).(*Task); ok {
		return t
	}
	return nil
}
