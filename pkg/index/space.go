package index

import "fmt"

// Space is a D-dimensional index space: an allocated backing region and
// an active region fully contained within it (active ⊆ allocated). It
// is the basis of grid's ghost-zone bookkeeping.
//
// Strides for the allocated region are stored explicitly and derived
// once at construction, row-major with Stride[0] == 1; linear offsets
// are always computed from Active via these strides, never by assuming
// the allocated range starts at its own origin. This avoids the
// inconsistency the source's older index_space<D> flavor had, where
// stride[0] was implicitly assumed to be 1 without being stored.
type Space struct {
	allocated Range
	active    Range
	strides   []int
}

// NewSpace returns a space whose allocated and active regions coincide.
func NewSpace(active Range) Space {
	return NewSpaceAllocActive(active, active)
}

// NewSpaceAllocActive returns a space with an explicit allocated backing
// and an active sub-region. It panics if active is not contained in
// allocated.
func NewSpaceAllocActive(allocated, active Range) Space {
	s := Space{allocated: allocated, active: active}
	s.strides = computeStrides(allocated)
	if !s.Invariant() {
		panic("index: Space invariant violated: active must be contained in allocated")
	}
	return s
}

func computeStrides(allocated Range) []int {
	d := allocated.Dim()
	strides := make([]int, d)
	if d == 0 {
		return strides
	}
	shape := allocated.Shape()
	strides[0] = 1
	for i := 1; i < d; i++ {
		strides[i] = strides[i-1] * shape[i-1]
	}
	return strides
}

func (s Space) Allocated() Range { return s.allocated }
func (s Space) Active() Range    { return s.active }
func (s Space) Size() int        { return s.active.Size() }
func (s Space) Empty() bool      { return s.active.Empty() }

// Strides returns the row-major strides of the allocated backing,
// stride[0] == 1.
func (s Space) Strides() []int { return cloneInts(s.strides) }

// Invariant reports whether active is contained in allocated, or the
// space is empty (an empty active region trivially satisfies the
// invariant, matching the source).
func (s Space) Invariant() bool {
	if s.Empty() {
		return true
	}
	amin, amax := s.allocated.Imin(), s.allocated.Imax()
	xmin, xmax := s.active.Imin(), s.active.Imax()
	if len(amin) != len(xmin) {
		return false
	}
	for d := range amin {
		if xmin[d] < amin[d] || xmax[d] > amax[d] {
			return false
		}
	}
	return true
}

// Linear returns the offset of idx into the allocated backing's
// row-major storage, using the precomputed strides and the allocated
// region's own origin.
func (s Space) Linear(idx []int) int {
	amin := s.allocated.Imin()
	lin := 0
	for d := 0; d < s.allocated.Dim(); d++ {
		lin += (idx[d] - amin[d]) * s.strides[d]
	}
	return lin
}

// Boundary returns a space sharing the same allocated backing, with
// its active region narrowed to the given face.
func (s Space) Boundary(f, d int, outer bool) Space {
	if s.Empty() {
		panic("index: Boundary of an empty Space")
	}
	return Space{
		allocated: s.allocated,
		active:    s.active.Boundary(f, d, outer),
		strides:   s.strides,
	}
}

func (s Space) String() string {
	return fmt.Sprintf("Space(allocated=%v, active=%v)", s.allocated, s.active)
}
