// Package eventloop implements a single-threaded cooperative scheduler for
// coroutines.
//
// Every task runs its coroutine on its own goroutine, but the loop passes a
// single baton between them: exactly one task executes at any moment and a
// task only gives up the baton at an await. Code running inside a task can
// therefore mutate shared interpreter state without locks.
//
// A Loop is not safe for concurrent use. Its methods must be called from the
// goroutine driving the loop or from the task currently holding the baton.
package eventloop

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/t0technology/awaitless/errors"
	"github.com/t0technology/awaitless/object"
)

type signal int

const (
	signalResume signal = iota
	signalCancel
	signalClosed
)

type readyEntry struct {
	task  *Task
	token uint64
	sig   signal
}

// Loop schedules tasks.
type Loop struct {
	logger    zerolog.Logger
	now       func() time.Time
	ready     []readyEntry
	callbacks []func()
	timers    timerHeap
	timerSeq  uint64
	tasks     []*Task
	counter   int
	yield     chan struct{}
	running   bool
	closed    bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for task lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithClock overrides the time source used for sleeps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// New returns an idle event loop.
func New(options ...Option) *Loop {
	l := &Loop{
		logger: zerolog.Nop(),
		now:    time.Now,
		yield:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Now returns the current time of the loop's clock.
func (l *Loop) Now() time.Time {
	return l.now()
}

// IsRunning reports whether RunUntilComplete is driving the loop.
func (l *Loop) IsRunning() bool {
	return l.running
}

// IsClosed reports whether Close has been called.
func (l *Loop) IsClosed() bool {
	return l.closed
}

// CreateTask wraps coro in a task and schedules it. The task does not start
// until the loop runs. Values stored in ctx are visible to the task body but
// its cancellation is not: tasks are cancelled through Task.Cancel.
func (l *Loop) CreateTask(ctx context.Context, coro *object.Coroutine, options ...TaskOption) (*Task, error) {
	if l.closed {
		return nil, object.RuntimeErrorf("event loop is closed")
	}
	if coro == nil {
		return nil, object.TypeErrorf("a coroutine was expected")
	}
	t := newTask(l, coro)
	for _, opt := range options {
		opt(t)
	}
	if t.name == "" {
		l.counter++
		t.name = fmt.Sprintf("Task-%d", l.counter)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	ctx = WithLoop(ctx, l)
	t.ctx = context.WithValue(ctx, taskKey{}, t)
	l.tasks = append(l.tasks, t)
	l.ready = append(l.ready, readyEntry{task: t})
	l.logger.Debug().
		Str("task", t.name).
		Str("id", t.id.String()).
		Str("coro", coro.Name()).
		Msg("task created")
	return t, nil
}

// CallSoon schedules fn to run on the loop before the next task step.
func (l *Loop) CallSoon(fn func()) {
	l.callbacks = append(l.callbacks, fn)
}

// Pending returns the tasks that have not finished, in creation order.
func (l *Loop) Pending() []*Task {
	var pending []*Task
	for _, t := range l.tasks {
		if !t.done {
			pending = append(pending, t)
		}
	}
	return pending
}

// RunUntilComplete runs the loop until main finishes and returns its
// outcome. Other tasks make progress while main is pending and are left
// scheduled when it finishes. Cancelling ctx cancels main.
func (l *Loop) RunUntilComplete(ctx context.Context, main *Task) (object.Object, error) {
	if l.closed {
		return nil, object.RuntimeErrorf("event loop is closed")
	}
	if l.running {
		return nil, object.RuntimeErrorf("this event loop is already running")
	}
	if main.loop != l {
		return nil, object.RuntimeErrorf("task %s belongs to a different event loop", main.name)
	}
	l.running = true
	defer func() { l.running = false }()

	done := ctx.Done()
	var stalled error
	for !main.done {
		if done != nil && ctx.Err() != nil {
			done = nil
			main.Cancel()
		}
		if l.runOnce() {
			continue
		}
		if next, ok := l.timers.next(); ok {
			l.waitFor(next.when, done)
			continue
		}
		if stalled != nil {
			return nil, stalled
		}
		stalled = object.RuntimeErrorf("event loop stalled: %s is waiting on work that can never finish", main.name)
		l.logger.Warn().Str("task", main.name).Msg("event loop stalled")
		main.Cancel()
	}
	main.retrieved = true
	if stalled != nil {
		return nil, stalled
	}
	return main.outcome()
}

// runOnce runs pending callbacks and due timers, then steps one ready task.
// It reports whether any work was done.
func (l *Loop) runOnce() bool {
	progressed := false
	if len(l.callbacks) > 0 {
		callbacks := l.callbacks
		l.callbacks = nil
		for _, fn := range callbacks {
			fn()
		}
		progressed = true
	}
	for _, tm := range l.timers.popDue(l.now()) {
		l.wake(tm.task, tm.token, signalResume)
	}
	if len(l.ready) > 0 {
		entry := l.ready[0]
		l.ready = l.ready[1:]
		l.step(entry)
		progressed = true
	}
	return progressed
}

func (l *Loop) waitFor(when time.Time, done <-chan struct{}) {
	d := when.Sub(l.now())
	if d <= 0 {
		return
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
	case <-done:
	}
}

// step hands the baton to a task and waits for it to be handed back.
// Stale entries, left behind when a task was woken twice, are dropped.
func (l *Loop) step(entry readyEntry) {
	t := entry.task
	if t.done {
		return
	}
	if !t.started {
		t.started = true
		go t.run()
		<-l.yield
		return
	}
	if !t.parked || t.token != entry.token {
		return
	}
	t.parked = false
	t.resume <- entry.sig
	<-l.yield
}

// wake schedules a parked task to resume, provided it is still parked at
// the await identified by token.
func (l *Loop) wake(t *Task, token uint64, sig signal) {
	if t.done || !t.parked || t.token != token {
		return
	}
	l.ready = append(l.ready, readyEntry{task: t, token: token, sig: sig})
}

// Sleep suspends the current task for at least d. A non-positive d yields to
// the other ready tasks.
func (l *Loop) Sleep(ctx context.Context, d time.Duration) error {
	cur := CurrentTask(ctx)
	if cur == nil || cur.loop != l {
		return object.RuntimeErrorf("no running event loop")
	}
	if err := cur.takeCancel(); err != nil {
		return err
	}
	token := cur.prepare()
	if d <= 0 {
		l.ready = append(l.ready, readyEntry{task: cur, token: token, sig: signalResume})
	} else {
		l.timerSeq++
		l.timers.add(&timer{when: l.now().Add(d), seq: l.timerSeq, task: cur, token: token})
	}
	return cur.suspend()
}

// Close cancels every pending task, runs them until they finish and shuts
// the loop down. Failures of tasks nobody awaited are returned together.
func (l *Loop) Close() error {
	if l.running {
		return object.RuntimeErrorf("cannot close a running event loop")
	}
	if l.closed {
		return nil
	}
	for _, t := range l.Pending() {
		t.Cancel()
	}
	l.drain()
	l.closed = true
	// Tasks that swallowed the cancellation and awaited again are still
	// parked. Wake them with a fatal error so their goroutines exit.
	for _, t := range l.Pending() {
		if t.parked {
			l.wake(t, t.token, signalClosed)
		}
	}
	l.drain()
	l.timers = nil

	var result *multierror.Error
	for _, t := range l.tasks {
		if !t.done || t.retrieved || t.cancelled || t.err == nil {
			continue
		}
		l.logger.Error().
			Str("task", t.name).
			Str("id", t.id.String()).
			Err(t.err).
			Msg("task exception was never retrieved")
		result = multierror.Append(result, fmt.Errorf("task %s: exception was never retrieved: %w", t.name, t.err))
	}
	l.tasks = nil
	return result.ErrorOrNil()
}

func (l *Loop) drain() {
	for len(l.ready) > 0 || len(l.callbacks) > 0 {
		l.runOnce()
	}
}

// safeInvoke runs the coroutine, converting a panic into a fatal error.
func (l *Loop) safeInvoke(t *Task) (result object.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Str("task", t.name).Interface("panic", r).Msg("task panicked")
			err = errors.EvalErrorf("panic in task %s: %v", t.name, r)
		}
	}()
	return t.coro.Await(t.ctx)
}
