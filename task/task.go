package task

import (
	"context"
	"sync"
	"time"
)

// Task is the eventual result of an asynchronous computation.
type Task struct {
	mu        sync.Mutex
	done      chan struct{}
	result    any
	err       error
	completed bool
	waiters   []func()
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// IsCompleted reports whether the task has a result or an error.
func (t *Task) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Done is closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Result blocks until completion and returns the outcome.
func (t *Task) Result() (any, error) {
	<-t.done
	return t.result, t.err
}

// Err returns the fault of a completed task.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// GetAwaiter returns the awaiter of t.
func (t *Task) GetAwaiter() *Awaiter {
	return &Awaiter{t: t}
}

func (t *Task) complete(v any, err error) bool {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return false
	}
	t.result, t.err, t.completed = v, err, true
	waiters := t.waiters
	t.waiters = nil
	close(t.done)
	t.mu.Unlock()

	for _, fn := range waiters {
		fn()
	}
	return true
}

func (t *Task) onCompleted(fn func()) {
	t.mu.Lock()
	if !t.completed {
		t.waiters = append(t.waiters, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	fn()
}

// Awaiter observes the completion of a Task.
type Awaiter struct {
	t *Task
}

// IsCompleted reports whether GetResult would return without blocking.
func (a *Awaiter) IsCompleted() bool {
	return a.t.IsCompleted()
}

// GetResult returns the outcome of the task, blocking until it completes.
func (a *Awaiter) GetResult() (any, error) {
	return a.t.Result()
}

// OnCompleted schedules fn to run once the task completes.
func (a *Awaiter) OnCompleted(fn func()) {
	a.t.onCompleted(fn)
}

// Source produces a Task and completes it.
type Source struct {
	t *Task
}

// NewSource creates a source with a pending task.
func NewSource() *Source {
	return &Source{t: newTask()}
}

// Task returns the task controlled by s.
func (s *Source) Task() *Task {
	return s.t
}

// SetResult completes the task with v. It reports false when the task was
// already completed.
func (s *Source) SetResult(v any) bool {
	return s.t.complete(v, nil)
}

// SetException faults the task with err.
func (s *Source) SetException(err error) bool {
	return s.t.complete(nil, err)
}

// FromResult returns a task completed with v.
func FromResult(v any) *Task {
	t := newTask()
	t.complete(v, nil)
	return t
}

// FromError returns a task faulted with err.
func FromError(err error) *Task {
	t := newTask()
	t.complete(nil, err)
	return t
}

// Run runs fn on a new goroutine and completes the task with its outcome.
func Run(fn func() (any, error)) *Task {
	t := newTask()
	go func() {
		v, err := fn()
		t.complete(v, err)
	}()
	return t
}

// After returns a task completed with v by another goroutine after d.
func After(d time.Duration, v any) *Task {
	t := newTask()
	time.AfterFunc(d, func() { t.complete(v, nil) })
	return t
}

// Wait blocks until t completes or ctx is done.
func Wait(ctx context.Context, t *Task) (any, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
