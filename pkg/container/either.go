package container

// Either is the size-polymorphic container: small payloads are kept
// inline in a MaxArray (no heap indirection beyond the slice itself),
// large payloads spill into a Vector. This mirrors the source's
// either<A<T>, B<T>> container, specialized to the pairing the
// original actually instantiates (a small bounded array fronting an
// unbounded vector) rather than generalized over arbitrary A/B shapes:
// Go's lack of higher-kinded type parameters means a fully generic
// either[A,B] would need A and B themselves to be type-level functions
// of T, which Go cannot express. See DESIGN.md for the tradeoff.
type Either[T any] struct {
	isLeft bool
	left   MaxArray[T]
	right  Vector[T]
}

// EitherCap is the capacity of the inline (left) MaxArray side.
const EitherCap = 8

// EitherTraits describes Either's size hints: any size from 0 upward,
// same as Vector, since the right side absorbs anything past EitherCap.
func EitherTraits() Traits { return Traits{Min: 0, Max: Unbounded} }

func (c Either[T]) IsLeft() bool { return c.isLeft }

func (c Either[T]) Size() int {
	if c.isLeft {
		return c.left.Size()
	}
	return c.right.Size()
}

func (c Either[T]) Empty() bool { return c.Size() == 0 }

func (c Either[T]) At(i int) T {
	if c.isLeft {
		return c.left.At(i)
	}
	return c.right.At(i)
}

func leftEither[T any](m MaxArray[T]) Either[T]  { return Either[T]{isLeft: true, left: m} }
func rightEither[T any](v Vector[T]) Either[T]   { return Either[T]{isLeft: false, right: v} }

// MunitEither builds the one-element container, preferring the left
// (inline) side since it always has room for at least one element.
func MunitEither[T any](x T) Either[T] {
	return leftEither(MunitMaxArray(EitherCap, x))
}

// IotaMapEither picks a side based on the requested size against the
// left side's capacity, then builds it with f.
func IotaMapEither[R any](f func(int) R, imin, imax int) Either[R] {
	n := imax - imin
	if n < 0 {
		n = 0
	}
	if n <= EitherCap {
		return leftEither(IotaMapMaxArray(EitherCap, f, imin, imax))
	}
	return rightEither(IotaMapVector(f, imin, imax))
}

// FmapEither applies f elementwise, preserving which side is active.
func FmapEither[T, R any](f func(T) R, xs Either[T]) Either[R] {
	if xs.isLeft {
		return leftEither(FmapMaxArray(f, xs.left))
	}
	return rightEither(FmapVector(f, xs.right))
}

// Fmap2Either zips two same-shaped Eithers (same side, same size).
func Fmap2Either[A, B, R any](f func(A, B) R, xs Either[A], ys Either[B]) Either[R] {
	if xs.isLeft != ys.isLeft {
		panic("container: Either fmap2 side mismatch")
	}
	if xs.isLeft {
		return leftEither(Fmap2MaxArray(f, xs.left, ys.left))
	}
	return rightEither(Fmap2Vector(f, xs.right, ys.right))
}

// FoldMapEither folds over whichever side is active.
func FoldMapEither[T, Z, R any](f func(T) R, op func(Z, R) Z, z Z, xs Either[T]) Z {
	if xs.isLeft {
		return FoldMapMaxArray(f, op, z, xs.left)
	}
	return FoldMapVector(f, op, z, xs.right)
}

func HeadEither[T any](xs Either[T]) T {
	if xs.isLeft {
		return HeadMaxArray(xs.left)
	}
	return HeadVector(xs.right)
}

func LastEither[T any](xs Either[T]) T {
	if xs.isLeft {
		return LastMaxArray(xs.left)
	}
	return LastVector(xs.right)
}

// MzeroEither returns the empty container, on the left (inline) side.
func MzeroEither[R any]() Either[R] { return leftEither(NewMaxArray[R](EitherCap)) }

// MplusEither concatenates, spilling to the right side if the combined
// size exceeds the left side's capacity.
func MplusEither[T any](xs Either[T], rest ...Either[T]) Either[T] {
	total := xs.Size()
	for _, r := range rest {
		total += r.Size()
	}
	if total <= EitherCap {
		out := toSlice(xs)
		for _, r := range rest {
			out = append(out, toSlice(r)...)
		}
		return leftEither(MaxArray[T]{cap: EitherCap, data: out})
	}
	out := toSlice(xs)
	for _, r := range rest {
		out = append(out, toSlice(r)...)
	}
	return rightEither(Vector[T]{data: out})
}

func toSlice[T any](xs Either[T]) []T {
	n := xs.Size()
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = xs.At(i)
	}
	return out
}
