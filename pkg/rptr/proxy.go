package rptr

import (
	"sync/atomic"

	"funhpc/pkg/fiber"
)

const noProc = -1

// Proxy is a first-class handle to a value that may live on any
// process: a shared_future<SharedRptr[T]> plus a write-once cache of
// the owning process id (spec.md §4.4).
type Proxy[T any] struct {
	fut        fiber.Future[SharedRptr[T]]
	cachedProc *int32
}

func newProxy[T any](fut fiber.Future[SharedRptr[T]]) Proxy[T] {
	p := int32(noProc)
	return Proxy[T]{fut: fut, cachedProc: &p}
}

// MakeLocalProxy allocates the payload on rt's own process and returns
// an already-ready proxy to it (spec.md §4.4's munit<proxy>).
func MakeLocalProxy[T any](rt *Runtime, v T) Proxy[T] {
	r := MakeSharedRptr(rt, v)
	p := newProxy(fiber.Ready(r))
	atomic.StoreInt32(p.cachedProc, int32(rt.Rank()))
	return p
}

// MakeRemoteProxy allocates the payload on destRt's process by running
// build there (spec.md §4.4's make_remote_proxy(dest, args...)).
// destRt is a directly reachable Runtime handle: genuine cross-process
// dispatch additionally needs build pre-registered with pkg/dispatch
// (see the Messenger.Exec doc comment).
func MakeRemoteProxy[T any](callerRt, destRt *Runtime, build func() T) Proxy[T] {
	if destRt.Rank() == callerRt.Rank() {
		return MakeLocalProxy(callerRt, build())
	}
	resultCh := make(chan SharedRptr[T], 1)
	callerRt.messenger.Exec(destRt.Rank(), func(rt *Runtime) {
		resultCh <- MakeSharedRptr(rt, build())
	})
	p := newProxy(fiber.Deferred(func() (SharedRptr[T], error) {
		return <-resultCh, nil
	}))
	atomic.StoreInt32(p.cachedProc, int32(destRt.Rank()))
	return p
}

// FromSharedRptr wraps an already-known SharedRptr, recording its owner
// immediately.
func FromSharedRptr[T any](r SharedRptr[T]) Proxy[T] {
	p := newProxy(fiber.Ready(r))
	atomic.StoreInt32(p.cachedProc, int32(r.OwnerRank()))
	return p
}

// FromFuture defers materialization until the future resolves (spec.md
// §4.4's "construction from future<proxy<T>>" path generalized to any
// future-of-shared_rptr producer).
func FromFuture[T any](fut fiber.Future[SharedRptr[T]]) Proxy[T] {
	return newProxy(fut)
}

// MzeroProxy returns the empty proxy: a future holding the zero
// SharedRptr, whose Valid() reports false.
func MzeroProxy[T any]() Proxy[T] {
	return newProxy[T](fiber.Ready(SharedRptr[T]{}))
}

// Valid blocks until the proxy's future resolves and reports whether it
// holds a real SharedRptr (false for MzeroProxy's empty container).
func (p Proxy[T]) Valid() bool {
	r, err := p.fut.Get()
	return err == nil && r.Valid()
}

// recordProc caches owner on first observation; later writes of the
// same value are a benign race (every writer observes the same owner).
func (p Proxy[T]) recordProc(owner int) {
	atomic.CompareAndSwapInt32(p.cachedProc, noProc, int32(owner))
}

// GetProc returns the owning process, caching it on first observation.
// Blocks until the underlying future resolves if not yet known.
func (p Proxy[T]) GetProc() int {
	if cur := atomic.LoadInt32(p.cachedProc); cur != noProc {
		return int(cur)
	}
	r, err := p.fut.Get()
	if err != nil {
		panic(err)
	}
	p.recordProc(r.OwnerRank())
	return r.OwnerRank()
}

// ProcReady reports whether the owner is already known without blocking.
func (p Proxy[T]) ProcReady() bool {
	return atomic.LoadInt32(p.cachedProc) != noProc
}

// Local returns the underlying shared_future<SharedRptr[T]>.
func (p Proxy[T]) Local() fiber.Future[SharedRptr[T]] { return p.fut }

// MakeLocal returns a proxy whose payload lives on rt's process. If p's
// owner already is rt's process, it returns p's own SharedRptr
// unchanged; otherwise it fetches the value from the owner and wraps a
// fresh, independently-owned copy. Unlike Deserialize (which only ever
// moves the lightweight refcount handle), MakeLocal is what makes Get
// actually safe to call: in the remote case it copies the value itself,
// since a non-owner SharedRptr has no local T to read.
func MakeLocal[T any](rt *Runtime, p Proxy[T]) Proxy[T] {
	return newProxy(fiber.Deferred(func() (SharedRptr[T], error) {
		r, err := p.fut.Get()
		if err != nil {
			return SharedRptr[T]{}, err
		}
		owner := r.OwnerRank()
		if owner == rt.Rank() {
			return r, nil
		}
		valueCh := make(chan T, 1)
		rt.messenger.Exec(owner, func(*Runtime) {
			valueCh <- r.Get()
		})
		return MakeSharedRptr(rt, <-valueCh), nil
	}))
}

// Fmap launches the application of f on p's owner process: the owner
// dereferences its local payload and applies f, producing a proxy
// owned by that same process (spec.md §4.4).
func Fmap[T, R any](rt *Runtime, f func(T) R, p Proxy[T]) Proxy[R] {
	return newProxy[R](fiber.Deferred(func() (SharedRptr[R], error) {
		r, err := p.fut.Get()
		if err != nil {
			return SharedRptr[R]{}, err
		}
		owner := r.OwnerRank()
		if owner == rt.Rank() {
			return MakeSharedRptr(rt, f(r.Get())), nil
		}
		resultCh := make(chan SharedRptr[R], 1)
		rt.messenger.Exec(owner, func(ownerRt *Runtime) {
			resultCh <- MakeSharedRptr(ownerRt, f(r.Get()))
		})
		return <-resultCh, nil
	}))
}

// Fmap2 is Fmap with a second argument made local on p's owner process
// before f runs (spec.md §4.4).
func Fmap2[A, B, R any](rt *Runtime, f func(A, B) R, p Proxy[A], q Proxy[B]) Proxy[R] {
	return newProxy[R](fiber.Deferred(func() (SharedRptr[R], error) {
		pr, err := p.fut.Get()
		if err != nil {
			return SharedRptr[R]{}, err
		}
		owner := pr.OwnerRank()
		if owner == rt.Rank() {
			qr, err := MakeLocal(rt, q).fut.Get()
			if err != nil {
				return SharedRptr[R]{}, err
			}
			return MakeSharedRptr(rt, f(pr.Get(), qr.Get())), nil
		}
		resultCh := make(chan SharedRptr[R], 1)
		rt.messenger.Exec(owner, func(ownerRt *Runtime) {
			qr, err := MakeLocal(ownerRt, q).fut.Get()
			if err != nil {
				panic(err)
			}
			resultCh <- MakeSharedRptr(ownerRt, f(pr.Get(), qr.Get()))
		})
		return <-resultCh, nil
	}))
}

// FoldMap runs a synchronous remote call on p's owner and returns R
// directly, blocking the calling fiber (not the OS thread) per spec.md
// §4.4.
func FoldMap[T, R any](rt *Runtime, f func(T) R, p Proxy[T]) R {
	r, err := p.fut.Get()
	if err != nil {
		panic(err)
	}
	owner := r.OwnerRank()
	if owner == rt.Rank() {
		return f(r.Get())
	}
	resultCh := make(chan R, 1)
	rt.messenger.Exec(owner, func(*Runtime) {
		resultCh <- f(r.Get())
	})
	return <-resultCh
}

// Mjoin implements unwrap: flattening a Proxy[Proxy[T]] without
// bouncing the inner payload through the calling process. It runs on
// the outer proxy's owner, which dereferences the inner proxy locally
// and serializes only the small SharedRptr handle back to rt; the
// payload itself never crosses unless rt ends up being the inner
// proxy's owner too.
func Mjoin[T any](rt *Runtime, pp Proxy[Proxy[T]]) Proxy[T] {
	return newProxy[T](fiber.Deferred(func() (SharedRptr[T], error) {
		outer, err := pp.fut.Get()
		if err != nil {
			return SharedRptr[T]{}, err
		}
		ownerRank := outer.OwnerRank()
		if ownerRank == rt.Rank() {
			inner := outer.Get()
			return inner.fut.Get()
		}
		resultCh := make(chan WireRptr, 1)
		rt.messenger.Exec(ownerRank, func(ownerRt *Runtime) {
			inner := outer.Get()
			r, err := inner.fut.Get()
			if err != nil {
				panic(err)
			}
			resultCh <- r.Serialize()
		})
		wire := <-resultCh
		return Deserialize[T](rt, wire), nil
	}))
}

// MunitProxy is MakeLocalProxy under the container vocabulary's name.
func MunitProxy[T any](rt *Runtime, x T) Proxy[T] { return MakeLocalProxy(rt, x) }
