package eventloop

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/object"
	"github.com/t0technology/awaitless/op"
)

var taskMethods = object.NewMethodRegistry[*Task]("task")

func init() {
	taskMethods.Define("done").
		Doc("Whether the task has finished").
		Returns("bool").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			return object.NewBool(t.done), nil
		})

	taskMethods.Define("result").
		Doc("Result of a finished task; raises its error").
		Returns("any").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			if !t.done {
				return nil, object.NewError(object.KindInvalidStateError, "result is not set")
			}
			t.retrieved = true
			return t.outcome()
		})

	taskMethods.Define("exception").
		Doc("Error of a finished task, or nil").
		Returns("error").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			if !t.done {
				return nil, object.NewError(object.KindInvalidStateError, "exception is not set")
			}
			t.retrieved = true
			if t.cancelled {
				return nil, object.NewCancelledError()
			}
			if t.err == nil {
				return object.Nil, nil
			}
			return object.AsErrorObject(t.err), nil
		})

	taskMethods.Define("cancel").
		Doc("Request cancellation").
		Returns("bool").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			return object.NewBool(t.Cancel()), nil
		})

	taskMethods.Define("cancelled").
		Doc("Whether the task was cancelled").
		Returns("bool").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			return object.NewBool(t.cancelled), nil
		})

	taskMethods.Define("get_name").
		Doc("Name of the task").
		Returns("string").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			return object.NewString(t.name), nil
		})

	taskMethods.Define("set_name").
		Doc("Rename the task").
		Arg("name").
		Returns("nil").
		Impl(func(t *Task, ctx context.Context, args ...object.Object) (object.Object, error) {
			name, err := object.AsString(args[0])
			if err != nil {
				return nil, err
			}
			t.name = name
			return object.Nil, nil
		})
}

var (
	_ object.Awaitable      = (*Task)(nil)
	_ object.Introspectable = (*Task)(nil)
)

type waiter struct {
	task  *Task
	token uint64
}

// Task runs a coroutine on a loop. Awaiting a task suspends the awaiting
// task until it finishes; awaiting a finished task returns its stored
// outcome without running anything again.
type Task struct {
	loop      *Loop
	id        uuid.UUID
	name      string
	coro      *object.Coroutine
	ctx       context.Context
	resume    chan signal
	started   bool
	parked    bool
	token     uint64
	done      bool
	cancelled bool
	retrieved bool
	cancelReq bool
	awaiting  *Task
	result    object.Object
	err       error
	waiters   []waiter
	callbacks []func(*Task)
}

// TaskOption configures a Task.
type TaskOption func(*Task)

// WithName sets the task name. Unnamed tasks are called Task-<n>.
func WithName(name string) TaskOption {
	return func(t *Task) {
		t.name = name
	}
}

func newTask(l *Loop, coro *object.Coroutine) *Task {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Nil
	}
	return &Task{
		loop:   l,
		id:     id,
		coro:   coro,
		resume: make(chan signal),
	}
}

// ID returns the unique identifier of the task.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Coroutine returns the coroutine the task runs.
func (t *Task) Coroutine() *object.Coroutine {
	return t.coro
}

// Done reports whether the task has finished.
func (t *Task) Done() bool {
	return t.done
}

// Cancelled reports whether the task finished by cancellation.
func (t *Task) Cancelled() bool {
	return t.cancelled
}

// Result returns the outcome of a finished task.
func (t *Task) Result() (object.Object, error) {
	if !t.done {
		return nil, object.NewError(object.KindInvalidStateError, "result is not set")
	}
	t.retrieved = true
	return t.outcome()
}

// AddDoneCallback arranges for fn to run on the loop once the task has
// finished. If it already has, fn is scheduled right away.
func (t *Task) AddDoneCallback(fn func(*Task)) {
	if t.done {
		t.loop.CallSoon(func() { fn(t) })
		return
	}
	t.callbacks = append(t.callbacks, fn)
}

// Cancel requests cancellation. A task that has not started finishes
// cancelled without running; a suspended task resumes with a CancelledError
// at its await. A task suspended on another task cancels that task too.
// Cancel returns false when the task has already finished.
func (t *Task) Cancel() bool {
	if t.done {
		return false
	}
	if inner := t.awaiting; inner != nil {
		t.awaiting = nil
		inner.Cancel()
	}
	t.cancelReq = true
	if t.parked {
		t.loop.wake(t, t.token, signalCancel)
	}
	return true
}

// Await suspends the calling task until t finishes, then returns t's result
// or its error.
func (t *Task) Await(ctx context.Context) (object.Object, error) {
	if !t.done {
		cur := CurrentTask(ctx)
		if cur == nil {
			return nil, object.RuntimeErrorf("no running event loop")
		}
		if cur == t {
			return nil, object.RuntimeErrorf("task %s cannot await itself", t.name)
		}
		if cur.loop != t.loop {
			return nil, object.RuntimeErrorf("task %s belongs to a different event loop", t.name)
		}
		if err := cur.takeCancel(); err != nil {
			return nil, err
		}
		token := cur.prepare()
		t.waiters = append(t.waiters, waiter{task: cur, token: token})
		cur.awaiting = t
		err := cur.suspend()
		cur.awaiting = nil
		if err != nil {
			return nil, err
		}
	}
	t.retrieved = true
	return t.outcome()
}

func (t *Task) outcome() (object.Object, error) {
	if t.cancelled {
		return nil, object.NewCancelledError()
	}
	if t.err != nil {
		return nil, t.err
	}
	if t.result == nil {
		return object.Nil, nil
	}
	return t.result, nil
}

// prepare starts a new await and returns its token. Wake-ups carrying an
// older token are ignored.
func (t *Task) prepare() uint64 {
	t.token++
	return t.token
}

// suspend hands the baton back to the loop until the task is woken.
func (t *Task) suspend() error {
	t.parked = true
	t.loop.yield <- struct{}{}
	switch <-t.resume {
	case signalClosed:
		return errors.EvalErrorf("event loop is closed")
	case signalCancel:
		t.cancelReq = false
		return object.NewCancelledError()
	}
	return t.takeCancel()
}

// takeCancel consumes a pending cancellation request.
func (t *Task) takeCancel() error {
	if !t.cancelReq {
		return nil
	}
	t.cancelReq = false
	return object.NewCancelledError()
}

func (t *Task) run() {
	var result object.Object
	var err error
	if t.cancelReq {
		err = object.NewCancelledError()
	} else {
		result, err = t.loop.safeInvoke(t)
	}
	t.finish(result, err)
	t.loop.yield <- struct{}{}
}

func (t *Task) finish(result object.Object, err error) {
	t.done = true
	t.parked = false
	switch {
	case err == nil:
		t.result = result
	case object.IsCancelled(err):
		t.cancelled = true
	default:
		t.err = err
	}
	for _, w := range t.waiters {
		t.loop.wake(w.task, w.token, signalResume)
	}
	t.waiters = nil
	for _, fn := range t.callbacks {
		t.loop.CallSoon(func() { fn(t) })
	}
	t.callbacks = nil
	event := t.loop.logger.Debug().Str("task", t.name).Bool("cancelled", t.cancelled)
	if t.err != nil {
		event = event.AnErr("failure", t.err)
	}
	event.Msg("task finished")
}

func (t *Task) Type() object.Type {
	return object.TASK
}

func (t *Task) Inspect() string {
	coro := fmt.Sprintf("coro=<%s()>", t.coro.Name())
	switch {
	case !t.done:
		return fmt.Sprintf("<Task pending name='%s' %s>", t.name, coro)
	case t.cancelled:
		return fmt.Sprintf("<Task cancelled name='%s' %s>", t.name, coro)
	case t.err != nil:
		return fmt.Sprintf("<Task finished name='%s' %s exception=%s>", t.name, coro, t.err.Error())
	}
	result := "nil"
	if t.result != nil {
		result = t.result.Inspect()
	}
	return fmt.Sprintf("<Task finished name='%s' %s result=%s>", t.name, coro, result)
}

func (t *Task) String() string {
	return t.Inspect()
}

func (t *Task) Interface() any {
	return nil
}

func (t *Task) Equals(other object.Object) bool {
	otherTask, ok := other.(*Task)
	return ok && t == otherTask
}

func (t *Task) Attrs() []object.AttrSpec {
	return taskMethods.Specs()
}

func (t *Task) GetAttr(name string) (object.Object, bool) {
	return taskMethods.GetAttr(t, name)
}

func (t *Task) SetAttr(name string, value object.Object) error {
	return object.TypeErrorf("task has no attribute %q", name)
}

func (t *Task) IsTruthy() bool {
	return true
}

func (t *Task) RunOperation(opType op.BinaryOpType, right object.Object) (object.Object, error) {
	return nil, object.TypeErrorf("unsupported operation for task: %v", opType)
}
