package ctree

import "testing"

func TestIotaMapFoldSum1000(t *testing.T) {
	tr := IotaMapTree(func(i int) int { return 1 }, 0, 1000)
	if tr.Size() != 1000 {
		t.Fatalf("Size() = %d, want 1000", tr.Size())
	}
	sum := FoldMapTree(func(x int) int { return x }, func(z, x int) int { return z + x }, 0, tr)
	if sum != 1000 {
		t.Fatalf("sum = %d, want 1000", sum)
	}
}

func TestHeadLast(t *testing.T) {
	tr := IotaMapTree(func(i int) int { return i }, 0, 500)
	if Head(tr) != 0 {
		t.Fatalf("Head = %d, want 0", Head(tr))
	}
	if Last(tr) != 499 {
		t.Fatalf("Last = %d, want 499", Last(tr))
	}
}

func TestFmapIdentityLaw(t *testing.T) {
	tr := IotaMapTree(func(i int) int { return i }, 0, 200)
	id := FmapTree(func(x int) int { return x }, tr)
	if !leavesEqual(Leaves(tr), Leaves(id)) {
		t.Fatalf("fmap(id) changed the tree")
	}
}

func TestFmapCompositionLaw(t *testing.T) {
	tr := IotaMapTree(func(i int) int { return i }, 0, 300)
	f := func(x int) int { return x + 1 }
	h := func(x int) int { return x * 2 }
	lhs := FmapTree(func(x int) int { return h(f(x)) }, tr)
	rhs := FmapTree(h, FmapTree(f, tr))
	if !leavesEqual(Leaves(lhs), Leaves(rhs)) {
		t.Fatalf("composition law failed")
	}
}

func TestMplusConcatenates(t *testing.T) {
	a := IotaMapTree(func(i int) int { return i }, 0, 5)
	b := IotaMapTree(func(i int) int { return i + 100 }, 0, 5)
	c := MplusTree(a, b)
	if c.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", c.Size())
	}
	want := []int{0, 1, 2, 3, 4, 100, 101, 102, 103, 104}
	if !leavesEqual(Leaves(c), want) {
		t.Fatalf("Leaves(mplus) = %v, want %v", Leaves(c), want)
	}
}

func TestFmapStencilBoundaries(t *testing.T) {
	tr := IotaMapTree(func(i int) int { return i }, 0, 10)
	ys := FmapStencil(func(x int, isLo, isHi bool, lo, hi int) int {
		return lo + hi - 2*x
	}, func(n int) int { return n }, tr, -1, 10)
	vals := Leaves(ys)
	for i, v := range vals {
		if v != 0 {
			t.Fatalf("stencil of linear sequence should vanish at %d, got %d", i, v)
		}
	}
}

func leavesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
