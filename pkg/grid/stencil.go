package grid

import "funhpc/pkg/index"

// BoundaryMask is the bitfield passed to a stencil user function
// indicating which faces of the current cell lie on a domain boundary.
// Bit 2*d is set when the low face of dimension d is a boundary; bit
// 2*d+1 when the high face is.
type BoundaryMask uint64

func (m BoundaryMask) Low(d int) bool  { return m&(1<<uint(2*d)) != 0 }
func (m BoundaryMask) High(d int) bool { return m&(1<<uint(2*d+1)) != 0 }

func (m BoundaryMask) withLow(d int) BoundaryMask  { return m | 1<<uint(2*d) }
func (m BoundaryMask) withHigh(d int) BoundaryMask { return m | 1<<uint(2*d+1) }

// Neighbors carries, per dimension, the low-side and high-side neighbor
// value used by the stencil user function.
type Neighbors[T any] struct {
	Lo []T
	Hi []T
}

// FmapStencil implements spec.md §4.2's fmapStencil: for every active
// cell x at index i, and for every dimension d, the neighbor at i-e_d
// (resp. i+e_d) is g(xs@neighbor) if that neighbor lies inside
// xs.Active(), otherwise it is read from bndLo[d] (resp. bndHi[d]) at
// the face-projected index; bmask records, per face, whether that
// neighbor came from a boundary container. f is then applied to the
// cell value, the mask, and the gathered neighbors.
//
// Each bndLo[d]/bndHi[d] must have active == xs.Active().Boundary(0 or
// 1, d, outer=true) per spec.md §4.2.3's stencil correctness rules;
// mismatch is fatal.
func FmapStencil[T, R any](
	f func(x T, bmask BoundaryMask, nb Neighbors[T]) R,
	g func(neighbor T) T,
	xs Grid[T],
	bndLo, bndHi []Grid[T],
) Grid[R] {
	d := xs.Dim()
	if len(bndLo) != d || len(bndHi) != d {
		panic("grid: fmapStencil requires exactly Dim boundary containers per side")
	}
	active := xs.Active()
	for dim := 0; dim < d; dim++ {
		wantLo := active.Boundary(0, dim, true)
		wantHi := active.Boundary(1, dim, true)
		if !bndLo[dim].Active().Equal(wantLo) {
			panic("grid: fmapStencil low boundary shape mismatch")
		}
		if !bndHi[dim].Active().Equal(wantHi) {
			panic("grid: fmapStencil high boundary shape mismatch")
		}
	}

	sp := index.NewSpace(active)
	data := make([]R, sp.Allocated().Size())
	amin := active.Imin()
	amax := active.Imax()

	active.Loop(func(idx []int) {
		var mask BoundaryMask
		nb := Neighbors[T]{Lo: make([]T, d), Hi: make([]T, d)}
		for dim := 0; dim < d; dim++ {
			if idx[dim]-1 < amin[dim] {
				mask = mask.withLow(dim)
				faceIdx := append([]int(nil), idx...)
				faceIdx[dim] = amin[dim] - 1
				nb.Lo[dim] = bndLo[dim].At(faceIdx)
			} else {
				loIdx := append([]int(nil), idx...)
				loIdx[dim]--
				nb.Lo[dim] = g(xs.At(loIdx))
			}
			if idx[dim]+1 >= amax[dim] {
				mask = mask.withHigh(dim)
				faceIdx := append([]int(nil), idx...)
				faceIdx[dim] = amax[dim]
				nb.Hi[dim] = bndHi[dim].At(faceIdx)
			} else {
				hiIdx := append([]int(nil), idx...)
				hiIdx[dim]++
				nb.Hi[dim] = g(xs.At(hiIdx))
			}
		}
		data[sp.Linear(idx)] = f(xs.At(idx), mask, nb)
	})
	return Grid[R]{space: sp, data: data}
}
