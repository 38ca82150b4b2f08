package eventloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/object"
)

func coro(name string, fn func(ctx context.Context) (object.Object, error)) *object.Coroutine {
	return object.NewCoroutine(name, fn)
}

func constant(name string, value object.Object) *object.Coroutine {
	return coro(name, func(ctx context.Context) (object.Object, error) {
		return value, nil
	})
}

func TestRunUntilComplete(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, constant("hello", object.NewString("Hello world")))
	require.NoError(t, err)
	assert.Equal(t, "Task-1", task.Name())
	assert.Equal(t, "<Task pending name='Task-1' coro=<hello()>>", task.Inspect())

	result, err := l.RunUntilComplete(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", result.(*object.String).Value())
	assert.True(t, task.Done())
	assert.Equal(t, `<Task finished name='Task-1' coro=<hello()> result="Hello world">`, task.Inspect())
	require.NoError(t, l.Close())
}

func TestAwaitFinishedTaskDoesNotRerun(t *testing.T) {
	ctx := context.Background()
	l := New()
	runs := 0
	inner, err := l.CreateTask(ctx, coro("work", func(ctx context.Context) (object.Object, error) {
		runs++
		return object.NewInt(42), nil
	}))
	require.NoError(t, err)

	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		first, err := inner.Await(ctx)
		if err != nil {
			return nil, err
		}
		second, err := inner.Await(ctx)
		if err != nil {
			return nil, err
		}
		return object.NewList([]object.Object{first, second}), nil
	}), WithName("main"))
	require.NoError(t, err)

	result, err := l.RunUntilComplete(ctx, main)
	require.NoError(t, err)
	assert.Equal(t, "[42, 42]", result.Inspect())
	assert.Equal(t, 1, runs)

	// Awaiting from outside any task works once the task is done.
	again, err := inner.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), again.(*object.Int).Value())
	assert.Equal(t, 1, runs)
	require.NoError(t, l.Close())
}

func TestAwaitPendingTaskOutsideLoop(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, constant("x", object.Nil))
	require.NoError(t, err)
	_, err = task.Await(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no running event loop")
	require.NoError(t, l.Close())
	assert.True(t, task.Cancelled())
}

func TestTaskErrorPropagates(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, coro("f", func(ctx context.Context) (object.Object, error) {
		return nil, object.ValueErrorf("x")
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, task)
	require.Error(t, err)
	assert.Equal(t, "ValueError: x", err.Error())
	assert.Equal(t, "<Task finished name='Task-1' coro=<f()> exception=ValueError: x>", task.Inspect())
	require.NoError(t, l.Close())
}

func TestSleepOrdersTasks(t *testing.T) {
	ctx := context.Background()
	l := New()
	var order []string
	sleeper := func(name string, d time.Duration) *object.Coroutine {
		return coro(name, func(ctx context.Context) (object.Object, error) {
			if err := FromContext(ctx).Sleep(ctx, d); err != nil {
				return nil, err
			}
			order = append(order, name)
			return object.Nil, nil
		})
	}
	slow, err := l.CreateTask(ctx, sleeper("slow", 20*time.Millisecond))
	require.NoError(t, err)
	fast, err := l.CreateTask(ctx, sleeper("fast", time.Millisecond))
	require.NoError(t, err)

	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		if _, err := slow.Await(ctx); err != nil {
			return nil, err
		}
		return fast.Await(ctx)
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, main)
	require.NoError(t, err)
	assert.Equal(t, []string{"fast", "slow"}, order)
	require.NoError(t, l.Close())
}

func TestBackgroundTaskProgressesOnNextRun(t *testing.T) {
	ctx := context.Background()
	l := New()
	ran := false
	bg, err := l.CreateTask(ctx, coro("bg", func(ctx context.Context) (object.Object, error) {
		ran = true
		return object.Nil, nil
	}))
	require.NoError(t, err)
	main, err := l.CreateTask(ctx, constant("main", object.Nil))
	require.NoError(t, err)

	_, err = l.RunUntilComplete(ctx, main)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, bg.Done())
	assert.Empty(t, l.Pending())
	require.NoError(t, l.Close())
}

func TestCancelUnstartedTask(t *testing.T) {
	ctx := context.Background()
	l := New()
	ran := false
	task, err := l.CreateTask(ctx, coro("f", func(ctx context.Context) (object.Object, error) {
		ran = true
		return object.Nil, nil
	}))
	require.NoError(t, err)
	assert.True(t, task.Cancel())

	_, err = l.RunUntilComplete(ctx, task)
	require.Error(t, err)
	assert.True(t, object.IsCancelled(err))
	assert.False(t, ran)
	assert.True(t, task.Cancelled())
	assert.False(t, task.Cancel())
	assert.Equal(t, "<Task cancelled name='Task-1' coro=<f()>>", task.Inspect())
	require.NoError(t, l.Close())
}

func TestCancelSleepingTask(t *testing.T) {
	ctx := context.Background()
	l := New()
	var caught error
	sleeper, err := l.CreateTask(ctx, coro("sleeper", func(ctx context.Context) (object.Object, error) {
		caught = FromContext(ctx).Sleep(ctx, time.Hour)
		return nil, caught
	}))
	require.NoError(t, err)
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		loop := FromContext(ctx)
		if err := loop.Sleep(ctx, 0); err != nil {
			return nil, err
		}
		sleeper.Cancel()
		return sleeper.Await(ctx)
	}))
	require.NoError(t, err)

	_, err = l.RunUntilComplete(ctx, main)
	require.Error(t, err)
	assert.True(t, object.IsCancelled(err))
	assert.True(t, object.IsCancelled(caught))
	assert.True(t, sleeper.Cancelled())
	require.NoError(t, l.Close())
}

func TestCancelPropagatesToAwaitedTask(t *testing.T) {
	ctx := context.Background()
	l := New()
	var inner *Task
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		loop := FromContext(ctx)
		var err error
		inner, err = loop.CreateTask(ctx, coro("slow", func(ctx context.Context) (object.Object, error) {
			return object.Nil, FromContext(ctx).Sleep(ctx, time.Hour)
		}))
		if err != nil {
			return nil, err
		}
		return inner.Await(ctx)
	}))
	require.NoError(t, err)
	canceller, err := l.CreateTask(ctx, coro("canceller", func(ctx context.Context) (object.Object, error) {
		if err := FromContext(ctx).Sleep(ctx, 0); err != nil {
			return nil, err
		}
		return object.NewBool(main.Cancel()), nil
	}))
	require.NoError(t, err)

	_, err = l.RunUntilComplete(ctx, main)
	require.Error(t, err)
	assert.True(t, object.IsCancelled(err))
	require.NotNil(t, inner)
	assert.True(t, inner.Cancelled())
	assert.True(t, canceller.Done())
	assert.Empty(t, l.Pending())
	require.NoError(t, l.Close())
}

func TestContextCancellationCancelsAwaitedTask(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	l := New()
	slow, err := l.CreateTask(ctx, coro("slow", func(ctx context.Context) (object.Object, error) {
		return object.Nil, FromContext(ctx).Sleep(ctx, time.Hour)
	}))
	require.NoError(t, err)
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		return slow.Await(ctx)
	}))
	require.NoError(t, err)

	_, err = l.RunUntilComplete(ctx, main)
	require.Error(t, err)
	assert.True(t, object.IsCancelled(err))
	assert.True(t, slow.Cancelled())
	assert.Empty(t, l.Pending())
	require.NoError(t, l.Close())
}

func TestContextCancellationCancelsMain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New()
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		cancel()
		return object.Nil, FromContext(ctx).Sleep(ctx, time.Hour)
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, main)
	require.Error(t, err)
	assert.True(t, object.IsCancelled(err))
	require.NoError(t, l.Close())
}

func TestAwaitSelf(t *testing.T) {
	ctx := context.Background()
	l := New()
	var self *Task
	self, err := l.CreateTask(ctx, coro("self", func(ctx context.Context) (object.Object, error) {
		return self.Await(ctx)
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, self)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot await itself")
	require.NoError(t, l.Close())
}

func TestStallIsReported(t *testing.T) {
	ctx := context.Background()
	l := New()
	var a, b *Task
	a, err := l.CreateTask(ctx, coro("a", func(ctx context.Context) (object.Object, error) {
		return b.Await(ctx)
	}))
	require.NoError(t, err)
	b, err = l.CreateTask(ctx, coro("b", func(ctx context.Context) (object.Object, error) {
		return a.Await(ctx)
	}))
	require.NoError(t, err)

	_, err = l.RunUntilComplete(ctx, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event loop stalled")
	require.NoError(t, l.Close())
	assert.True(t, b.Done())
}

func TestCloseReportsUnretrievedFailures(t *testing.T) {
	ctx := context.Background()
	l := New()
	_, err := l.CreateTask(ctx, coro("boom", func(ctx context.Context) (object.Object, error) {
		return nil, object.RuntimeErrorf("boom")
	}))
	require.NoError(t, err)
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		return object.Nil, FromContext(ctx).Sleep(ctx, 0)
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, main)
	require.NoError(t, err)

	err = l.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task Task-1: exception was never retrieved: RuntimeError: boom")
	assert.True(t, l.IsClosed())

	_, err = l.CreateTask(ctx, constant("late", object.Nil))
	require.Error(t, err)
}

func TestPanicBecomesFatalError(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, coro("p", func(ctx context.Context) (object.Object, error) {
		panic("kaboom")
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in task Task-1: kaboom")
	require.NoError(t, l.Close())
}

func TestTaskMethods(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, constant("hello", object.NewInt(1)))
	require.NoError(t, err)

	call := func(name string) (object.Object, error) {
		method, ok := task.GetAttr(name)
		require.True(t, ok, name)
		return method.(*object.Builtin).Call(ctx)
	}

	done, err := call("done")
	require.NoError(t, err)
	assert.Equal(t, object.False, done)
	_, err = call("result")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidStateError")

	_, err = l.RunUntilComplete(ctx, task)
	require.NoError(t, err)

	result, err := call("result")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.(*object.Int).Value())
	exc, err := call("exception")
	require.NoError(t, err)
	assert.Equal(t, object.Nil, exc)
	name, err := call("get_name")
	require.NoError(t, err)
	assert.Equal(t, "Task-1", name.(*object.String).Value())
	assert.Contains(t, object.AttrNames(task.Attrs()), "cancelled")

	setName, ok := task.GetAttr("set_name")
	require.True(t, ok)
	_, err = setName.(*object.Builtin).Call(ctx, object.NewString("fetch"))
	require.NoError(t, err)
	assert.Equal(t, "fetch", task.Name())
	_, err = setName.(*object.Builtin).Call(ctx)
	assert.EqualError(t, err, "TypeError: task.set_name() takes exactly 1 argument (0 given)")
	require.NoError(t, l.Close())
}

func TestDoneCallback(t *testing.T) {
	ctx := context.Background()
	l := New()
	task, err := l.CreateTask(ctx, constant("x", object.Nil))
	require.NoError(t, err)
	var seen *Task
	task.AddDoneCallback(func(t *Task) { seen = t })
	main, err := l.CreateTask(ctx, coro("main", func(ctx context.Context) (object.Object, error) {
		if _, err := task.Await(ctx); err != nil {
			return nil, err
		}
		return object.Nil, FromContext(ctx).Sleep(ctx, 0)
	}))
	require.NoError(t, err)
	_, err = l.RunUntilComplete(ctx, main)
	require.NoError(t, err)
	assert.Same(t, task, seen)
	require.NoError(t, l.Close())
}
