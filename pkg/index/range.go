package index

import (
	"fmt"
)

// Range is a D-dimensional half-open hyperrectangle [Imin, Imax), unit
// step in every dimension. D is implicit in the length of Imin/Imax.
type Range struct {
	imin, imax []int
}

// NewRange returns the zero-based range [0, imax).
func NewRange(imax []int) Range {
	return NewRangeMinMax(zero(len(imax)), imax)
}

// NewRangeMinMax returns the range [imin, imax). imin and imax must have
// the same length; the slices are copied defensively since Range values
// are meant to be immutable.
func NewRangeMinMax(imin, imax []int) Range {
	if len(imin) != len(imax) {
		panic("index: Range imin/imax dimension mismatch")
	}
	return Range{imin: cloneInts(imin), imax: cloneInts(imax)}
}

// NewRangeFromIRange lifts a one-dimensional IRange into a Range. It
// panics if the source range has a step other than 1, matching the
// source library's constrained conversion.
func NewRangeFromIRange(r IRange) Range {
	if r.Istep() != 1 {
		panic("index: NewRangeFromIRange requires a unit step")
	}
	return NewRangeMinMax([]int{r.Imin()}, []int{r.Imax()})
}

func zero(d int) []int { return make([]int, d) }

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func cloneBools(s []bool) []bool {
	out := make([]bool, len(s))
	copy(out, s)
	return out
}

// Dim returns the dimensionality D.
func (r Range) Dim() int { return len(r.imin) }

func (r Range) Imin() []int { return cloneInts(r.imin) }
func (r Range) Imax() []int { return cloneInts(r.imax) }

// Istep is always all-ones for Range; provided for symmetry with
// IRange and StepRange.
func (r Range) Istep() []int {
	s := make([]int, r.Dim())
	for i := range s {
		s[i] = 1
	}
	return s
}

// Shape returns max(0, imax-imin) componentwise.
func (r Range) Shape() []int {
	s := make([]int, r.Dim())
	for d := range s {
		if r.imax[d] > r.imin[d] {
			s[d] = r.imax[d] - r.imin[d]
		}
	}
	return s
}

// Size returns the product of Shape.
func (r Range) Size() int {
	sz := 1
	for _, s := range r.Shape() {
		sz *= s
	}
	return sz
}

// Empty reports whether any dimension is empty.
func (r Range) Empty() bool {
	for d := 0; d < r.Dim(); d++ {
		if r.imax[d] <= r.imin[d] {
			return true
		}
	}
	return false
}

// Equal treats all empty ranges as equal to each other, per the
// source's operator==.
func (r Range) Equal(other Range) bool {
	if r.Empty() && other.Empty() {
		return true
	}
	if r.Empty() != other.Empty() {
		return false
	}
	if r.Dim() != other.Dim() {
		return false
	}
	for d := 0; d < r.Dim(); d++ {
		if r.imin[d] != other.imin[d] || r.imax[d] != other.imax[d] {
			return false
		}
	}
	return true
}

// Boundary returns the thickness-1 range on face f (0=low, 1=high) of
// dimension d. When outer is true the face is shifted one step beyond
// the range instead of lying on its last interior layer.
func (r Range) Boundary(f, d int, outer bool) Range {
	if r.Empty() {
		panic("index: Boundary of an empty Range")
	}
	if f != 0 && f != 1 {
		panic("index: Boundary face must be 0 or 1")
	}
	if d < 0 || d >= r.Dim() {
		panic("index: Boundary dimension out of range")
	}
	bnd := NewRangeMinMax(r.imin, r.imax)
	if f == 0 {
		if outer {
			bnd.imin[d]--
		}
		bnd.imax[d] = bnd.imin[d] + 1
	} else {
		if outer {
			bnd.imax[d]++
		}
		bnd.imin[d] = bnd.imax[d] - 1
	}
	return bnd
}

func (r Range) String() string {
	return fmt.Sprintf("Range(%v:%v)", r.imin, r.imax)
}

// Loop calls f once per index in the hyperrectangle, in
// last-dimension-fastest (row-major) order: the outermost dimension
// (index 0) varies slowest.
func (r Range) Loop(f func(idx []int)) {
	if r.Empty() {
		return
	}
	pos := make([]int, r.Dim())
	copy(pos, r.imin)
	r.loopDim(0, pos, f)
}

func (r Range) loopDim(d int, pos []int, f func(idx []int)) {
	if d == r.Dim() {
		f(cloneInts(pos))
		return
	}
	for i := r.imin[d]; i < r.imax[d]; i++ {
		pos[d] = i
		r.loopDim(d+1, pos, f)
	}
}

// BoundaryFlags reports, per dimension, whether a visited index touches
// the minimum (BoundaryFlags[0][d]) or maximum (BoundaryFlags[1][d])
// face of the range.
type BoundaryFlags [2][]bool

// LoopBnd calls f once per index, additionally passing the per-side,
// per-dimension boundary flags for that index. It separates each
// dimension into (up to) three sub-spans -- min face, interior, max
// face -- exactly as the source's loop_bnd_impl does; a dimension of
// size 1 is both faces at once.
func (r Range) LoopBnd(f func(idx []int, isBnd BoundaryFlags)) {
	if r.Empty() {
		return
	}
	d := r.Dim()
	pos := make([]int, d)
	isBnd := BoundaryFlags{make([]bool, d), make([]bool, d)}
	r.loopBndDim(0, pos, isBnd, f)
}

func (r Range) loopBndDim(dim int, pos []int, isBnd BoundaryFlags, f func(idx []int, isBnd BoundaryFlags)) {
	if dim == r.Dim() {
		f(cloneInts(pos), BoundaryFlags{cloneBools(isBnd[0]), cloneBools(isBnd[1])})
		return
	}
	imin1, imax1 := r.imin[dim], r.imax[dim]
	switch {
	case imin1 >= imax1:
		return
	case imin1 == imax1-1:
		pos[dim] = imin1
		isBnd[0][dim] = true
		isBnd[1][dim] = true
		r.loopBndDim(dim+1, pos, isBnd, f)
	default:
		pos[dim] = imin1
		isBnd[0][dim] = true
		isBnd[1][dim] = false
		r.loopBndDim(dim+1, pos, isBnd, f)

		isBnd[0][dim] = false
		for i := imin1 + 1; i < imax1-1; i++ {
			pos[dim] = i
			r.loopBndDim(dim+1, pos, isBnd, f)
		}

		pos[dim] = imax1 - 1
		isBnd[1][dim] = true
		r.loopBndDim(dim+1, pos, isBnd, f)
		isBnd[1][dim] = false
	}
}
