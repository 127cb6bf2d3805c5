package ctree

// FmapStencil implements spec.md §4.2.4's fmapStencilMulti for the
// one-dimensional case: the tree is flattened to its leaves in
// left-to-right order, each leaf reads its adjacent leaves as
// neighbors, and the results are rebuilt into a balanced tree; at the
// two edges of the whole tree the caller-supplied lo/hi values are used
// instead.
// g transforms an interior neighbor before f sees it, exactly mirroring
// grid's FmapStencil contract one dimension lower.
func FmapStencil[T, R any](
	f func(x T, isLoBoundary, isHiBoundary bool, lo, hi T) R,
	g func(neighbor T) T,
	xs Tree[T],
	loBoundary, hiBoundary T,
) Tree[R] {
	vals := Leaves(xs)
	n := len(vals)
	out := make([]R, n)
	for i := 0; i < n; i++ {
		isLo := i == 0
		isHi := i == n-1
		var lo, hi T
		if isLo {
			lo = loBoundary
		} else {
			lo = g(vals[i-1])
		}
		if isHi {
			hi = hiBoundary
		} else {
			hi = g(vals[i+1])
		}
		out[i] = f(vals[i], isLo, isHi, lo, hi)
	}
	return rebuild(xs, out)
}

// rebuild walks xs's branch/leaf structure and refills it with values
// from rs (consumed in left-to-right leaf order), producing a Tree[R]
// of identical shape to xs.
func rebuild[T, R any](xs Tree[T], rs []R) Tree[R] {
	pos := 0
	var walk func(t Tree[T]) Tree[R]
	walk = func(t Tree[T]) Tree[R] {
		if t.Empty() {
			return MzeroTree[R]()
		}
		if t.hasLeaf {
			v := rs[pos]
			pos++
			return MunitTree(v)
		}
		children := make([]Tree[R], len(t.children))
		for i, c := range t.children {
			children[i] = walk(c)
		}
		return Tree[R]{children: children, size: t.size}
	}
	return walk(xs)
}
