// Package index implements the multi-dimensional index space vocabulary
// that every container in funhpc is built on: a one-dimensional strided
// range, its D-dimensional generalization, and an allocated/active index
// space used by grid to describe ghost zones.
package index

import "fmt"

// IRange is a half-open, strided one-dimensional integer range
// [Imin, Imax) with step Istep > 0.
type IRange struct {
	imin, imax, istep int
}

// NewIRange returns the range [0, imax).
func NewIRange(imax int) IRange {
	return NewIRangeMinMax(0, imax)
}

// NewIRangeMinMax returns the unit-step range [imin, imax).
func NewIRangeMinMax(imin, imax int) IRange {
	return NewIRangeStep(imin, imax, 1)
}

// NewIRangeStep returns the strided range [imin, imax) with the given
// step. It panics if istep is not positive, mirroring the source's
// invariant check on construction.
func NewIRangeStep(imin, imax, istep int) IRange {
	if istep <= 0 {
		panic(fmt.Sprintf("index: IRange requires istep > 0, got %d", istep))
	}
	return IRange{imin: imin, imax: imax, istep: istep}
}

func (r IRange) Imin() int  { return r.imin }
func (r IRange) Imax() int  { return r.imax }
func (r IRange) Istep() int { return r.istep }

// Shape returns the number of elements in the range.
func (r IRange) Shape() int {
	if r.imax <= r.imin {
		return 0
	}
	d := r.imax - r.imin
	q := d / r.istep
	if d%r.istep != 0 {
		q++
	}
	return q
}

// Size is an alias for Shape, matching the source's naming.
func (r IRange) Size() int { return r.Shape() }

// Empty reports whether the range contains no elements.
func (r IRange) Empty() bool { return r.imax <= r.imin }

// At returns the i-th element of the range: imin + i*istep.
func (r IRange) At(i int) int { return r.imin + i*r.istep }

func (r IRange) String() string {
	return fmt.Sprintf("IRange(%d:%d:%d)", r.imin, r.imax, r.istep)
}

// Invariant reports whether the range satisfies its construction
// invariant. Useful for assertions after manual field manipulation via
// the zero value.
func (r IRange) Invariant() bool { return r.istep > 0 }
