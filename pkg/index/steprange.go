package index

import "fmt"

// StepRange is a D-dimensional strided half-open hyperrectangle, the
// multi-dimensional generalization of IRange.
type StepRange struct {
	imin, imax, istep []int
}

// NewStepRange returns the zero-based, unit-step range [0, imax).
func NewStepRange(imax []int) StepRange {
	return NewStepRangeMinMax(zero(len(imax)), imax)
}

// NewStepRangeMinMax returns the unit-step range [imin, imax).
func NewStepRangeMinMax(imin, imax []int) StepRange {
	one := make([]int, len(imin))
	for i := range one {
		one[i] = 1
	}
	return NewStepRangeFull(imin, imax, one)
}

// NewStepRangeFull returns the strided range [imin, imax) with explicit
// per-dimension step; it panics if any step is not positive.
func NewStepRangeFull(imin, imax, istep []int) StepRange {
	if len(imin) != len(imax) || len(imin) != len(istep) {
		panic("index: StepRange dimension mismatch")
	}
	for _, s := range istep {
		if s <= 0 {
			panic("index: StepRange requires every step > 0")
		}
	}
	return StepRange{imin: cloneInts(imin), imax: cloneInts(imax), istep: cloneInts(istep)}
}

func (r StepRange) Dim() int     { return len(r.imin) }
func (r StepRange) Imin() []int  { return cloneInts(r.imin) }
func (r StepRange) Imax() []int  { return cloneInts(r.imax) }
func (r StepRange) Istep() []int { return cloneInts(r.istep) }

func (r StepRange) Shape() []int {
	s := make([]int, r.Dim())
	for d := range s {
		diff := r.imax[d] - r.imin[d]
		if diff <= 0 {
			s[d] = 0
			continue
		}
		q := diff / r.istep[d]
		if diff%r.istep[d] != 0 {
			q++
		}
		s[d] = q
	}
	return s
}

func (r StepRange) Size() int {
	sz := 1
	for _, s := range r.Shape() {
		sz *= s
	}
	return sz
}

func (r StepRange) Empty() bool {
	for d := 0; d < r.Dim(); d++ {
		if r.imax[d] <= r.imin[d] {
			return true
		}
	}
	return false
}

func (r StepRange) String() string {
	return fmt.Sprintf("StepRange(%v:%v:%v)", r.imin, r.imax, r.istep)
}
