// Package worker runs single-shot background tasks whose outcome is a
// success value or a failure reason.
package worker

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrPending is returned by Result while the task is still running
var ErrPending = errors.New("task has not settled")

// Task is a single-shot asynchronous computation. Once settled its result
// never changes.
type Task[T any] struct {
	done    chan struct{}
	settled atomic.Bool
	value   T
	err     error
}

// Go starts fn in a new goroutine. onSettle, when non-nil, receives the
// outcome before the task reports itself settled, so anything derived from
// Settled observes state onSettle has already applied.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), onSettle func(T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		value, err := fn(ctx)
		if onSettle != nil {
			onSettle(value, err)
		}
		t.settle(value, err)
	}()

	return t
}

// Completed returns a task already settled with value
func Completed[T any](value T) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	t.settle(value, nil)
	return t
}

func (t *Task[T]) settle(value T, err error) {
	t.value = value
	t.err = err
	t.settled.Store(true)
	close(t.done)
}

// Done is closed once the task settles
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Settled reports whether the task has produced its result
func (t *Task[T]) Settled() bool {
	return t.settled.Load()
}

// Result returns the outcome without blocking
func (t *Task[T]) Result() (T, error) {
	if !t.Settled() {
		var zero T
		return zero, ErrPending
	}
	return t.value, t.err
}

// Wait blocks until the task settles or ctx is done
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
