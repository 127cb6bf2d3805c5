package grid

import (
	"math"
	"testing"

	"funhpc/pkg/index"
)

func TestIotaMapHeadLast1D(t *testing.T) {
	g := IotaMapGrid(func(idx []int) float64 { return float64(idx[0]) }, index.NewRange([]int{10}))
	if g.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", g.Size())
	}
	if Head(g) != 0.0 {
		t.Fatalf("Head = %v, want 0", Head(g))
	}
	if Last(g) != 9.0 {
		t.Fatalf("Last = %v, want 9", Last(g))
	}
}

func TestFoldMap3D(t *testing.T) {
	g := IotaMapGrid(func(idx []int) float64 {
		return float64(idx[0] + idx[1] + idx[2])
	}, index.NewRange([]int{10, 10, 10}))
	sum := FoldMapGrid(func(x float64) float64 { return x }, func(z, x float64) float64 { return z + x }, 0.0, g)
	if sum != 13500.0 {
		t.Fatalf("sum = %v, want 13500", sum)
	}
}

func TestFmapIdentityLaw(t *testing.T) {
	g := IotaMapGrid(func(idx []int) int { return idx[0] }, index.NewRange([]int{5}))
	id := FmapGrid(func(x int) int { return x }, g)
	for i := 0; i < 5; i++ {
		if id.At([]int{i}) != g.At([]int{i}) {
			t.Fatalf("fmap(id) changed element %d", i)
		}
	}
}

func TestFmapCompositionLaw(t *testing.T) {
	g := IotaMapGrid(func(idx []int) int { return idx[0] }, index.NewRange([]int{5}))
	f := func(x int) int { return x + 1 }
	h := func(x int) int { return x * 2 }
	lhs := FmapGrid(func(x int) int { return h(f(x)) }, g)
	rhs := FmapGrid(h, FmapGrid(f, g))
	for i := 0; i < 5; i++ {
		if lhs.At([]int{i}) != rhs.At([]int{i}) {
			t.Fatalf("composition law failed at %d: %d != %d", i, lhs.At([]int{i}), rhs.At([]int{i}))
		}
	}
}

func TestBoundaryCorner(t *testing.T) {
	s := 4
	g := IotaMapGrid(func(idx []int) int { return idx[0]*10 + idx[1] }, index.NewRange([]int{s, s}))
	face := Boundary(g, 0, 0, false)
	if face.Size() != s {
		t.Fatalf("boundary face size = %d, want %d", face.Size(), s)
	}
	if Head(face) != g.At([]int{0, 0}) {
		t.Fatalf("boundary head mismatch")
	}
}

func buildBoundaries2D(s int) ([]Grid[float64], []Grid[float64]) {
	formula := func(idx []int) float64 { return float64(idx[0] + idx[1]) }
	active := index.NewRange([]int{s, s})
	lo := make([]Grid[float64], 2)
	hi := make([]Grid[float64], 2)
	for d := 0; d < 2; d++ {
		lo[d] = IotaMapGrid(formula, active.Boundary(0, d, true))
		hi[d] = IotaMapGrid(formula, active.Boundary(1, d, true))
	}
	return lo, hi
}

func TestFmapStencilIdentity(t *testing.T) {
	s := 6
	xs := IotaMapGrid(func(idx []int) float64 { return float64(idx[0] + idx[1]) }, index.NewRange([]int{s, s}))
	lo, hi := buildBoundaries2D(s)
	ys := FmapStencil(func(x float64, mask BoundaryMask, nb Neighbors[float64]) float64 {
		return x
	}, func(n float64) float64 { return n }, xs, lo, hi)
	if !ys.Active().Equal(xs.Active()) {
		t.Fatalf("fmapStencil changed active shape")
	}
	if ys.Size() != xs.Size() {
		t.Fatalf("fmapStencil changed size")
	}
	xs.Active().Loop(func(idx []int) {
		if ys.At(idx) != xs.At(idx) {
			t.Fatalf("identity stencil changed value at %v", idx)
		}
	})
}

func TestFmapStencilLaplacianZero(t *testing.T) {
	s := 10
	xs := IotaMapGrid(func(idx []int) float64 { return float64(idx[0] + idx[1]) }, index.NewRange([]int{s, s}))
	lo, hi := buildBoundaries2D(s)
	ys := FmapStencil(func(x float64, mask BoundaryMask, nb Neighbors[float64]) float64 {
		sum := 0.0
		for d := 0; d < 2; d++ {
			sum += nb.Lo[d] - 2*x + nb.Hi[d]
		}
		return sum
	}, func(n float64) float64 { return n }, xs, lo, hi)

	maxAbs := FoldMapGrid(func(x float64) float64 { return math.Abs(x) }, func(z, x float64) float64 {
		if x > z {
			return x
		}
		return z
	}, 0.0, ys)
	if maxAbs != 0.0 {
		t.Fatalf("laplacian of a linear function should vanish, got max|.|=%v", maxAbs)
	}
}
