// Package grid implements the D-dimensional indexed container with
// ghost zones and the stencil-with-boundary operator: the single most
// intricate in-process container in the operation vocabulary.
package grid

import (
	"fmt"

	"funhpc/pkg/index"
)

// Grid holds exactly space.Allocated().Size() elements of T, addressed
// through space's row-major linear index. Storage is always a flat
// []T: the source parameterizes grid over a Storage<T> type, but every
// instantiation exercised by the spec is array-backed, and a flat
// slice is the idiomatic Go rendition of that storage shape.
type Grid[T any] struct {
	space index.Space
	data  []T
}

// Dim returns the number of dimensions.
func (g Grid[T]) Dim() int { return g.space.Allocated().Dim() }

func (g Grid[T]) Space() index.Space { return g.space }
func (g Grid[T]) Active() index.Range { return g.space.Active() }
func (g Grid[T]) Size() int           { return g.space.Active().Size() }
func (g Grid[T]) Empty() bool         { return g.Size() == 0 }

// At returns the element at the given active-region index.
func (g Grid[T]) At(idx []int) T {
	return g.data[g.space.Linear(idx)]
}

// invariant panics if data's length does not match the allocated size,
// per spec.md §4.2.3's grid invariants.
func (g Grid[T]) invariant() {
	if len(g.data) != g.space.Allocated().Size() {
		panic(fmt.Sprintf("grid: storage size %d != allocated size %d", len(g.data), g.space.Allocated().Size()))
	}
}

// NewGridFromData builds a grid from externally supplied data of
// exactly the right size (the "from shape+data" construction path).
func NewGridFromData[T any](sp index.Space, data []T) Grid[T] {
	g := Grid[T]{space: sp, data: data}
	g.invariant()
	return g
}

// IotaMapGrid builds a grid over range r by applying f to every
// multi-index; allocated == active == r (no ghost zones at
// construction time).
func IotaMapGrid[R any](f func([]int) R, r index.Range) Grid[R] {
	sp := index.NewSpace(r)
	data := make([]R, sp.Allocated().Size())
	r.Loop(func(idx []int) {
		data[sp.Linear(idx)] = f(idx)
	})
	return Grid[R]{space: sp, data: data}
}

// FmapGrid applies f elementwise over xs's active region, producing a
// grid with the same shape (allocated == active == xs.Active()).
func FmapGrid[T, R any](f func(T) R, xs Grid[T]) Grid[R] {
	r := xs.Active()
	sp := index.NewSpace(r)
	data := make([]R, sp.Allocated().Size())
	r.Loop(func(idx []int) {
		data[sp.Linear(idx)] = f(xs.At(idx))
	})
	return Grid[R]{space: sp, data: data}
}

// Fmap2Grid zips two grids of identical active shape; mismatch is fatal.
func Fmap2Grid[A, B, R any](f func(A, B) R, xs Grid[A], ys Grid[B]) Grid[R] {
	if !xs.Active().Equal(ys.Active()) {
		panic("grid: fmap2 shape mismatch")
	}
	r := xs.Active()
	sp := index.NewSpace(r)
	data := make([]R, sp.Allocated().Size())
	r.Loop(func(idx []int) {
		data[sp.Linear(idx)] = f(xs.At(idx), ys.At(idx))
	})
	return Grid[R]{space: sp, data: data}
}

// Fmap3Grid zips three grids of identical active shape.
func Fmap3Grid[A, B, C, R any](f func(A, B, C) R, xs Grid[A], ys Grid[B], zs Grid[C]) Grid[R] {
	if !xs.Active().Equal(ys.Active()) || !xs.Active().Equal(zs.Active()) {
		panic("grid: fmap3 shape mismatch")
	}
	r := xs.Active()
	sp := index.NewSpace(r)
	data := make([]R, sp.Allocated().Size())
	r.Loop(func(idx []int) {
		data[sp.Linear(idx)] = f(xs.At(idx), ys.At(idx), zs.At(idx))
	})
	return Grid[R]{space: sp, data: data}
}

// FoldMapGrid folds left to right in row-major order over xs's active
// region, starting from z.
func FoldMapGrid[T, Z, R any](f func(T) R, op func(Z, R) Z, z Z, xs Grid[T]) Z {
	r := z
	xs.Active().Loop(func(idx []int) {
		r = op(r, f(xs.At(idx)))
	})
	return r
}

// FoldMap2Grid zips two grids through a binary f before folding.
func FoldMap2Grid[A, B, Z, R any](f func(A, B) R, op func(Z, R) Z, z Z, xs Grid[A], ys Grid[B]) Z {
	if !xs.Active().Equal(ys.Active()) {
		panic("grid: foldMap2 shape mismatch")
	}
	r := z
	xs.Active().Loop(func(idx []int) {
		r = op(r, f(xs.At(idx), ys.At(idx)))
	})
	return r
}

// Boundary returns a view-like grid whose active range is face f of
// dimension d (outer=true shifts it one step outside xs.Active()); the
// backing storage and allocated region are shared with xs, no copy.
func Boundary[T any](xs Grid[T], f, d int, outer bool) Grid[T] {
	return Grid[T]{space: xs.space.Boundary(f, d, outer), data: xs.data}
}

// BoundaryMap is equivalent to FmapGrid(f, Boundary(xs, face, d, false)) but built
// in one pass, matching spec.md §4.2's boundaryMap contract.
func BoundaryMap[T, R any](f func(T) R, xs Grid[T], face, d int) Grid[R] {
	view := Boundary(xs, face, d, false)
	r := view.Active()
	sp := index.NewSpace(r)
	data := make([]R, sp.Allocated().Size())
	r.Loop(func(idx []int) {
		data[sp.Linear(idx)] = f(view.At(idx))
	})
	return Grid[R]{space: sp, data: data}
}

func Head[T any](xs Grid[T]) T {
	if xs.Empty() {
		panic("grid: Head of an empty Grid")
	}
	return xs.At(xs.Active().Imin())
}

func Last[T any](xs Grid[T]) T {
	if xs.Empty() {
		panic("grid: Last of an empty Grid")
	}
	last := make([]int, xs.Dim())
	imax := xs.Active().Imax()
	for d := range last {
		last[d] = imax[d] - 1
	}
	return xs.At(last)
}

func String[T any](g Grid[T]) string {
	return fmt.Sprintf("Grid(%s)", g.space.String())
}
