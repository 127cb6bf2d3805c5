package rptr

import "sync"

// SharedPtr is the in-process, single-rank reference-counted pointer
// (spec.md §4.2.5/§3's `shared_ptr<T>`): 0 or 1 T, owned locally. Go's
// GC already reclaims the backing allocation; SharedPtr exists to give
// this shape the same container vocabulary (Size/Empty) and an explicit,
// deterministic destructor hook the way the source's shared_ptr does,
// for callers that need to know exactly when the last reference drops
// (e.g. releasing a non-Go resource wrapped by T).
type SharedPtr[T any] struct {
	cell *sharedCell[T]
}

type sharedCell[T any] struct {
	mu       sync.Mutex
	refcount int
	value    T
	destroy  func(T)
}

// NewSharedPtr wraps v with no destructor.
func NewSharedPtr[T any](v T) SharedPtr[T] {
	return NewSharedPtrWithDestructor(v, func(T) {})
}

// NewSharedPtrWithDestructor wraps v, calling destroy exactly once when
// the last clone is released.
func NewSharedPtrWithDestructor[T any](v T, destroy func(T)) SharedPtr[T] {
	return SharedPtr[T]{cell: &sharedCell[T]{refcount: 1, value: v, destroy: destroy}}
}

func (p SharedPtr[T]) Valid() bool { return p.cell != nil }
func (p SharedPtr[T]) Size() int {
	if p.cell == nil {
		return 0
	}
	return 1
}
func (p SharedPtr[T]) Empty() bool { return !p.Valid() }

func (p SharedPtr[T]) Get() T { return p.cell.value }

// Clone returns a new handle sharing the same cell, bumping the refcount.
func (p SharedPtr[T]) Clone() SharedPtr[T] {
	p.cell.mu.Lock()
	p.cell.refcount++
	p.cell.mu.Unlock()
	return SharedPtr[T]{cell: p.cell}
}

// Release drops this handle, running the destructor exactly once when
// the last clone is released.
func (p SharedPtr[T]) Release() {
	p.cell.mu.Lock()
	p.cell.refcount--
	zero := p.cell.refcount == 0
	p.cell.mu.Unlock()
	if zero {
		p.cell.destroy(p.cell.value)
	}
}

// MunitSharedPtr builds the one-element container holding x.
func MunitSharedPtr[T any](x T) SharedPtr[T] { return NewSharedPtr(x) }

// FmapSharedPtr applies f, producing a freshly owned SharedPtr[R].
func FmapSharedPtr[T, R any](f func(T) R, xs SharedPtr[T]) SharedPtr[R] {
	return NewSharedPtr(f(xs.Get()))
}
