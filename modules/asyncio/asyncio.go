// Package asyncio exposes the event loop to scripts.
package asyncio

import (
	"context"
	"time"

	"github.com/t0technology/awaitless/eventloop"
	"github.com/t0technology/awaitless/object"
)

func runningLoop(ctx context.Context) (*eventloop.Loop, error) {
	loop := eventloop.FromContext(ctx)
	if loop == nil || loop.IsClosed() {
		return nil, object.RuntimeErrorf("no running event loop")
	}
	return loop, nil
}

// CreateTask schedules a coroutine on the running loop and returns the task.
// An optional second argument names the task.
func CreateTask(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("asyncio.create_task", 1, 2, args); err != nil {
		return nil, err
	}
	coro, ok := args[0].(*object.Coroutine)
	if !ok {
		return nil, object.TypeErrorf("a coroutine was expected, got %s", args[0].Inspect())
	}
	loop, err := runningLoop(ctx)
	if err != nil {
		return nil, err
	}
	var options []eventloop.TaskOption
	if len(args) == 2 {
		name, err := object.AsString(args[1])
		if err != nil {
			return nil, err
		}
		options = append(options, eventloop.WithName(name))
	}
	task, err := loop.CreateTask(ctx, coro, options...)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// EnsureFuture returns tasks unchanged and wraps coroutines in new tasks.
func EnsureFuture(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("asyncio.ensure_future", 1, args); err != nil {
		return nil, err
	}
	task, err := ensureFuture(ctx, args[0])
	if err != nil {
		return nil, err
	}
	return task, nil
}

func ensureFuture(ctx context.Context, obj object.Object) (*eventloop.Task, error) {
	switch obj := obj.(type) {
	case *eventloop.Task:
		return obj, nil
	case *object.Coroutine:
		loop, err := runningLoop(ctx)
		if err != nil {
			return nil, err
		}
		return loop.CreateTask(ctx, obj)
	default:
		return nil, object.TypeErrorf("an awaitable is required, got %s", obj.Type())
	}
}

// Sleep returns a coroutine that suspends the awaiting task for the given
// number of seconds and then evaluates to the optional result.
func Sleep(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("asyncio.sleep", 1, 2, args); err != nil {
		return nil, err
	}
	seconds, err := object.AsFloat(args[0])
	if err != nil {
		return nil, err
	}
	if seconds < 0 {
		seconds = 0
	}
	var result object.Object = object.Nil
	if len(args) == 2 {
		result = args[1]
	}
	d := time.Duration(seconds * float64(time.Second))
	return object.NewCoroutine("sleep", func(ctx context.Context) (object.Object, error) {
		loop, err := runningLoop(ctx)
		if err != nil {
			return nil, err
		}
		if err := loop.Sleep(ctx, d); err != nil {
			return nil, err
		}
		return result, nil
	}), nil
}

// Gather returns a coroutine that runs every argument concurrently and
// evaluates to the list of their results, in argument order. The first
// failure is raised; the remaining tasks keep running.
func Gather(ctx context.Context, args ...object.Object) (object.Object, error) {
	return object.NewCoroutine("gather", func(ctx context.Context) (object.Object, error) {
		tasks := make([]*eventloop.Task, 0, len(args))
		for _, arg := range args {
			task, err := ensureFuture(ctx, arg)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
		results := make([]object.Object, 0, len(tasks))
		for _, task := range tasks {
			value, err := task.Await(ctx)
			if err != nil {
				return nil, err
			}
			results = append(results, value)
		}
		return object.NewList(results), nil
	}), nil
}

// CurrentTask returns the task running the caller, or nil.
func CurrentTask(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("asyncio.current_task", 0, args); err != nil {
		return nil, err
	}
	if task := eventloop.CurrentTask(ctx); task != nil {
		return task, nil
	}
	return object.Nil, nil
}

// AllTasks returns the unfinished tasks of the running loop.
func AllTasks(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("asyncio.all_tasks", 0, args); err != nil {
		return nil, err
	}
	loop, err := runningLoop(ctx)
	if err != nil {
		return nil, err
	}
	pending := loop.Pending()
	items := make([]object.Object, 0, len(pending))
	for _, task := range pending {
		items = append(items, task)
	}
	return object.NewList(items), nil
}

func Module() *object.Module {
	return object.NewBuiltinsModule("asyncio", map[string]object.Object{
		"all_tasks":     object.NewBuiltin("all_tasks", AllTasks),
		"create_task":   object.NewBuiltin("create_task", CreateTask),
		"current_task":  object.NewBuiltin("current_task", CurrentTask),
		"ensure_future": object.NewBuiltin("ensure_future", EnsureFuture),
		"gather":        object.NewBuiltin("gather", Gather),
		"sleep":         object.NewBuiltin("sleep", Sleep),
	})
}
