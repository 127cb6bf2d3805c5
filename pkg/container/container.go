// Package container implements the polymorphic operation vocabulary
// shared by every funhpc container shape: idtype (a single value),
// MaxArray (a small bounded array), Vector (an unbounded array) and
// Either (a size-polymorphic choice between the two).
//
// Go generics have no higher-kinded type parameters, so there is no
// single `Container[C, T]` interface whose C itself takes a type
// argument the way the source's templated fun_traits does. Instead
// each shape is its own concrete generic type, and the shape-changing
// operations (iotaMap, fmap, foldMap, ...) are free functions named
// after their shape (IotaMapVector, FmapGrid, ...) rather than methods,
// because a Go method cannot introduce a new type parameter (the result
// type R of fmap is not the receiver's T). Size and Empty are plain
// methods; Head and Last are free functions per shape (HeadVector,
// LastMaxArray, ...).
package container

// Sized is satisfied by every container shape; msize/mempty in the
// source correspond to Size/Empty here.
type Sized interface {
	Size() int
	Empty() bool
}

// Traits carries the size hints fun_traits publishes in the source:
// the minimum and maximum number of elements a container of this shape
// can hold. A negative Max means unbounded. either and nested consult
// these to decide which side/shape to place data in.
type Traits struct {
	Min int
	Max int // -1 = unbounded
}

// Unbounded is the sentinel Max value meaning "no upper limit".
const Unbounded = -1

func (t Traits) Bounded() bool { return t.Max != Unbounded }
