package container

// IdType holds exactly one value of T. It is the option-like unit
// container (like a 0-dimensional grid, it has exactly one cell).
type IdType[T any] struct {
	value T
}

// IdTraits describes IdType's size hints: always exactly one element.
func IdTraits() Traits { return Traits{Min: 1, Max: 1} }

// MunitIdType builds the unit IdType holding x.
func MunitIdType[T any](x T) IdType[T] { return IdType[T]{value: x} }

func (c IdType[T]) Size() int  { return 1 }
func (c IdType[T]) Empty() bool { return false }
func (c IdType[T]) Get() T      { return c.value }

// IotaMapIdType builds the unit container from f applied to i.
func IotaMapIdType[R any](f func(int) R, i int) IdType[R] {
	return IdType[R]{value: f(i)}
}

// FmapIdType applies f to the held value.
func FmapIdType[T, R any](f func(T) R, xs IdType[T]) IdType[R] {
	return IdType[R]{value: f(xs.value)}
}

// Fmap2IdType zips two unit containers.
func Fmap2IdType[A, B, R any](f func(A, B) R, xs IdType[A], ys IdType[B]) IdType[R] {
	return IdType[R]{value: f(xs.value, ys.value)}
}

// FoldMapIdType folds the single element: op(z, f(x)).
func FoldMapIdType[T, Z, R any](f func(T) R, op func(Z, R) Z, z Z, xs IdType[T]) Z {
	return op(z, f(xs.value))
}

func HeadIdType[T any](xs IdType[T]) T { return xs.value }
func LastIdType[T any](xs IdType[T]) T { return xs.value }

// MextractIdType extracts the single element.
func MextractIdType[T any](xs IdType[T]) T { return xs.value }
