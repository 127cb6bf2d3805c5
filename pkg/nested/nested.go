// Package nested implements the composed container nested<Pointer,
// Array, T>: an outer pointer-shaped container (here, rptr.Proxy,
// the general "may live on any process" shape) wrapping an inner
// array-shaped container (here, container.Vector) to form a single
// distributed collection whose elements are spread across whatever
// processes the outer pointer chooses (spec.md §4.2.6).
//
// As with pkg/container, Go's lack of higher-kinded type parameters
// rules out a single Nested[Pointer, Array, T] generalized over both
// shape parameters: Pointer and Array would themselves need to be
// type constructors applied to T, which Go generics cannot express.
// Nested is therefore the one concrete Pointer=Proxy/Array=Vector
// instantiation spec.md's own running example calls out ("distributed
// container, e.g. a remote grid-of-vectors"); composing a different
// inner array shape follows the identical pattern shown here.
package nested

import (
	"funhpc/pkg/container"
	"funhpc/pkg/rptr"
)

// Nested is a sequence of rptr.Proxy[container.Vector[T]] outer slots,
// each a proxy to a contiguous chunk of elements living on whichever
// process built that slot.
type Nested[T any] struct {
	slots []rptr.Proxy[container.Vector[T]]
	sizes []int
}

// NestedTraits: any number of outer slots from zero upward.
func NestedTraits() container.Traits { return container.Traits{Min: 0, Max: container.Unbounded} }

func (n Nested[T]) Size() int {
	total := 0
	for _, s := range n.sizes {
		total += s
	}
	return total
}

func (n Nested[T]) Empty() bool { return n.Size() == 0 }

// NumSlots reports how many outer pointer slots make up n.
func (n Nested[T]) NumSlots() int { return len(n.slots) }

// Slot returns the i'th outer proxy and the element count it holds.
func (n Nested[T]) Slot(i int) (rptr.Proxy[container.Vector[T]], int) { return n.slots[i], n.sizes[i] }

// IotaMapNested builds a distributed container of n elements, split as
// evenly as possible across the given target processes: spec.md
// §4.2.6's "compute how many outer slots to allocate and how to split
// R into per-slot inner ranges" strategy, specialized to Vector's
// unbounded max (no further per-slot splitting is needed once an
// outer slot's range is chosen — iotaMap<Array> runs directly over it).
// callerRt is the process requesting the build; ranks is the ordered
// list of target processes to shard across.
func IotaMapNested[T any](callerRt *rptr.Runtime, ranks []*rptr.Runtime, n int, f func(i int) T) Nested[T] {
	numSlots := len(ranks)
	if numSlots == 0 {
		panic("nested: iotaMap requires at least one target process")
	}
	slots := make([]rptr.Proxy[container.Vector[T]], numSlots)
	sizes := make([]int, numSlots)
	base, rem := n/numSlots, n%numSlots
	start := 0
	for i := 0; i < numSlots; i++ {
		count := base
		if i < rem {
			count++
		}
		lo := start
		start += count
		sizes[i] = count
		slots[i] = rptr.MakeRemoteProxy(callerRt, ranks[i], func() container.Vector[T] {
			return container.IotaMapVector(func(j int) T { return f(lo + j) }, 0, count)
		})
	}
	return Nested[T]{slots: slots, sizes: sizes}
}

// Fmap propagates inward: fmap(pointer) ∘ fmap(array) (spec.md §4.2.6).
// Each outer slot's fmap is itself dispatched to run on that slot's
// owner process, exactly mirroring rptr.Fmap's remote-task semantics.
func Fmap[T, R any](rt *rptr.Runtime, f func(T) R, xs Nested[T]) Nested[R] {
	slots := make([]rptr.Proxy[container.Vector[R]], len(xs.slots))
	for i, s := range xs.slots {
		slots[i] = rptr.Fmap(rt, func(v container.Vector[T]) container.Vector[R] {
			return container.FmapVector(f, v)
		}, s)
	}
	return Nested[R]{slots: slots, sizes: append([]int(nil), xs.sizes...)}
}

// FoldMap propagates inward: foldMap(pointer, f=foldMap(array, f, op, z))
// (spec.md §4.2.6), folding the slots one after another synchronously
// via rptr.FoldMap: each slot's inner fold starts from the accumulator
// the previous slot returned, so op is applied element by element.
func FoldMap[T, Z, R any](rt *rptr.Runtime, f func(T) R, op func(Z, R) Z, z Z, xs Nested[T]) Z {
	acc := z
	for _, s := range xs.slots {
		acc = rptr.FoldMap(rt, func(v container.Vector[T]) Z {
			return container.FoldMapVector(f, op, acc, v)
		}, s)
	}
	return acc
}

// Head returns the first element: the head of the first non-empty
// outer slot's inner array, lifted through both layers (spec.md
// §4.2.6's "head/mextract lift element access through both layers").
func Head[T any](rt *rptr.Runtime, xs Nested[T]) T {
	for i, size := range xs.sizes {
		if size == 0 {
			continue
		}
		return rptr.FoldMap(rt, func(v container.Vector[T]) T {
			return container.HeadVector(v)
		}, xs.slots[i])
	}
	panic("nested: Head of an empty Nested container")
}

// Last returns the last element of the last non-empty outer slot.
func Last[T any](rt *rptr.Runtime, xs Nested[T]) T {
	for i := len(xs.sizes) - 1; i >= 0; i-- {
		if xs.sizes[i] == 0 {
			continue
		}
		return rptr.FoldMap(rt, func(v container.Vector[T]) T {
			return container.LastVector(v)
		}, xs.slots[i])
	}
	panic("nested: Last of an empty Nested container")
}
