package index

import (
	"reflect"
	"testing"
)

func TestIRangeShape(t *testing.T) {
	r := NewIRangeStep(0, 10, 3)
	if got := r.Shape(); got != 4 {
		t.Fatalf("Shape() = %d, want 4", got)
	}
	if r.Empty() {
		t.Fatalf("expected non-empty range")
	}
	if NewIRange(0).Shape() != 0 {
		t.Fatalf("expected empty range to have shape 0")
	}
}

func TestIRangeInvalidStepPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-positive step")
		}
	}()
	NewIRangeStep(0, 10, 0)
}

func TestRangeShapeAndSize(t *testing.T) {
	r := NewRange([]int{3, 4})
	if got := r.Shape(); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Fatalf("Shape() = %v, want [3 4]", got)
	}
	if r.Size() != 12 {
		t.Fatalf("Size() = %d, want 12", r.Size())
	}
}

func TestRangeEmptyEquality(t *testing.T) {
	a := NewRangeMinMax([]int{5, 5}, []int{5, 5})
	b := NewRangeMinMax([]int{0, 0}, []int{0, 0})
	if !a.Equal(b) {
		t.Fatalf("expected all empty ranges to compare equal")
	}
}

func TestRangeBoundary(t *testing.T) {
	r := NewRange([]int{4, 4})
	lo := r.Boundary(0, 0, false)
	if !reflect.DeepEqual(lo.Imin(), []int{0, 0}) || !reflect.DeepEqual(lo.Imax(), []int{1, 4}) {
		t.Fatalf("unexpected low boundary: %v", lo)
	}
	hiOuter := r.Boundary(1, 1, true)
	if !reflect.DeepEqual(hiOuter.Imin(), []int{0, 4}) || !reflect.DeepEqual(hiOuter.Imax(), []int{4, 5}) {
		t.Fatalf("unexpected outer high boundary: %v", hiOuter)
	}
}

func TestRangeLoopOrder(t *testing.T) {
	r := NewRange([]int{2, 3})
	var visited [][]int
	r.Loop(func(idx []int) {
		visited = append(visited, append([]int(nil), idx...))
	})
	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	if !reflect.DeepEqual(visited, want) {
		t.Fatalf("Loop order = %v, want %v", visited, want)
	}
}

func TestRangeLoopBndFlags(t *testing.T) {
	r := NewRange([]int{3})
	type rec struct {
		idx  int
		lo   bool
		hi   bool
	}
	var got []rec
	r.LoopBnd(func(idx []int, isBnd BoundaryFlags) {
		got = append(got, rec{idx[0], isBnd[0][0], isBnd[1][0]})
	})
	want := []rec{
		{0, true, false},
		{1, false, false},
		{2, false, true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LoopBnd = %+v, want %+v", got, want)
	}
}

func TestRangeLoopBndSingleton(t *testing.T) {
	r := NewRange([]int{1})
	var isBnd BoundaryFlags
	r.LoopBnd(func(idx []int, b BoundaryFlags) { isBnd = b })
	if !isBnd[0][0] || !isBnd[1][0] {
		a, b := isBnd[0][0], isBnd[1][0]
		t.Fatalf("singleton dimension should be both boundaries, got lo=%v hi=%v", a, b)
	}
}

func TestSpaceLinearAndInvariant(t *testing.T) {
	allocated := NewRangeMinMax([]int{-1, -1}, []int{5, 5})
	active := NewRangeMinMax([]int{0, 0}, []int{4, 4})
	sp := NewSpaceAllocActive(allocated, active)
	if !sp.Invariant() {
		t.Fatalf("expected valid invariant")
	}
	if got := sp.Strides(); !reflect.DeepEqual(got, []int{1, 6}) {
		t.Fatalf("Strides() = %v, want [1 6]", got)
	}
	// linear(0,0) should skip past the one ghost row/column on each axis.
	if got := sp.Linear([]int{0, 0}); got != 1+1*6 {
		t.Fatalf("Linear({0,0}) = %d, want %d", got, 1+1*6)
	}
}

func TestSpaceInvariantViolationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when active escapes allocated")
		}
	}()
	allocated := NewRange([]int{2, 2})
	active := NewRange([]int{3, 3})
	NewSpaceAllocActive(allocated, active)
}

func TestSpaceBoundaryFace(t *testing.T) {
	sp := NewSpace(NewRange([]int{4, 4}))
	face := sp.Boundary(1, 0, true)
	if face.Active().Size() != 4 {
		t.Fatalf("expected face of size 4, got %d", face.Active().Size())
	}
}

func TestStepRangeShape(t *testing.T) {
	r := NewStepRangeFull([]int{0, 0}, []int{10, 9}, []int{2, 3})
	if got := r.Shape(); !reflect.DeepEqual(got, []int{5, 3}) {
		t.Fatalf("Shape() = %v, want [5 3]", got)
	}
}
