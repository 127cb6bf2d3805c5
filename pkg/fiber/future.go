// Package fiber provides the cooperative-scheduling primitives the
// container and dispatch layers build on: futures, promises, a shared
// worker pool standing in for user-space fibers pinned to OS threads.
//
// Go has no user-space fiber primitive; goroutines already give cheap,
// many-to-few scheduling over OS threads, so a goroutine is the unit of
// concurrency here instead of a fiber. What the spec actually requires
// of a fiber (CORE §4.6, §9's "coroutine / async control flow") is
// preserved: waits are cheap and do not block an OS thread when many
// goroutines wait on the same future, a deferred task runs at most
// once on first wait, and futures compose via Then/fmap.
package fiber

import (
	"context"
	"sync"
)

type state[T any] struct {
	done     chan struct{}
	value    T
	err      error
	deferred func() (T, error)
	runOnce  sync.Once
}

// Future is a read handle to a value that becomes ready at most once.
// It is safe to copy and share across goroutines (it plays the role of
// both `future<T>` and `shared_future<T>` from the source — Go futures
// are reference types by construction, so the move/copy distinction the
// source enforces for `future` has no analog worth keeping separate).
type Future[T any] struct {
	st *state[T]
}

// SharedFuture is Future under another name, for call sites that want
// to mirror the source's vocabulary.
type SharedFuture[T any] = Future[T]

// Promise is the write side of a Future.
type Promise[T any] struct {
	st *state[T]
}

// NewPromise returns a fresh promise/future pair.
func NewPromise[T any]() Promise[T] {
	return Promise[T]{st: &state[T]{done: make(chan struct{})}}
}

// Future returns the read handle associated with p.
func (p Promise[T]) Future() Future[T] { return Future[T]{st: p.st} }

// SetValue fulfills the promise. Calling it more than once is a
// programming error and is ignored past the first call.
func (p Promise[T]) SetValue(v T) {
	p.st.runOnce.Do(func() {
		p.st.value = v
		close(p.st.done)
	})
}

// SetError fulfills the promise with a task-exception error, captured
// for the consumer to observe (CORE §7's "Task exception" kind).
func (p Promise[T]) SetError(err error) {
	p.st.runOnce.Do(func() {
		p.st.err = err
		close(p.st.done)
	})
}

// Ready returns an already-completed future holding v.
func Ready[T any](v T) Future[T] {
	st := &state[T]{done: make(chan struct{}), value: v}
	close(st.done)
	return Future[T]{st: st}
}

// Failed returns an already-completed future holding err.
func Failed[T any](err error) Future[T] {
	st := &state[T]{done: make(chan struct{}), err: err}
	close(st.done)
	return Future[T]{st: st}
}

// Deferred returns a future whose task runs at most once, on the first
// Wait/Get call from any goroutine (subsequent/concurrent waiters block
// on the same channel rather than re-running the task).
func Deferred[T any](task func() (T, error)) Future[T] {
	return Future[T]{st: &state[T]{done: make(chan struct{}), deferred: task}}
}

func (f Future[T]) trigger() {
	if f.st.deferred != nil {
		f.st.runOnce.Do(func() {
			v, err := f.st.deferred()
			f.st.value, f.st.err = v, err
			close(f.st.done)
		})
	}
}

// IsReady reports whether the future has completed, without blocking
// and without forcing a deferred task to run.
func (f Future[T]) IsReady() bool {
	select {
	case <-f.st.done:
		return true
	default:
		return false
	}
}

// Wait blocks the calling goroutine (not an OS thread from the pool's
// perspective — this is itself the cheap suspension point CORE §5
// calls out) until the future is ready, or ctx is done.
func (f Future[T]) Wait(ctx context.Context) (T, error) {
	f.trigger()
	select {
	case <-f.st.done:
		return f.st.value, f.st.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get is Wait against context.Background(), for call sites that never
// need cancellation.
func (f Future[T]) Get() (T, error) {
	return f.Wait(context.Background())
}

// Then composes: the returned future becomes ready with cont(v, err)
// once f does. cont runs at most once, deferred until whichever
// goroutine waits on the result future first.
func Then[T, R any](f Future[T], cont func(T, error) (R, error)) Future[R] {
	return Deferred(func() (R, error) {
		v, err := f.Get()
		return cont(v, err)
	})
}

// FmapFuture is Then specialized to an infallible continuation,
// mirroring the container vocabulary's fmap over the future shape
// (spec.md §4.2.5).
func FmapFuture[T, R any](f func(T) R, xs Future[T]) Future[R] {
	return Then(xs, func(v T, err error) (R, error) {
		if err != nil {
			var zero R
			return zero, err
		}
		return f(v), nil
	})
}
