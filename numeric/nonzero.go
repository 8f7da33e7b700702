package numeric

import "fmt"

// Integer is the set of types a NonZero can wrap.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		Int128 | Uint128
}

// NonZero holds an integer that is never zero.
//
// The zero NonZero is not a valid value; obtain one from NewNonZero or, in
// generated code, AssumeNonZero.
type NonZero[T Integer] struct {
	v T
}

// NewNonZero wraps v. Returns false if v is zero.
func NewNonZero[T Integer](v T) (NonZero[T], bool) {
	var zero T
	if v == zero {
		return NonZero[T]{}, false
	}
	return NonZero[T]{v: v}, true
}

// AssumeNonZero wraps v without checking it.
// The caller guarantees v != 0; polyconst proves this before emitting a call.
func AssumeNonZero[T Integer](v T) NonZero[T] {
	return NonZero[T]{v: v}
}

// Get returns the wrapped value.
func (n NonZero[T]) Get() T { return n.v }

func (n NonZero[T]) String() string {
	return fmt.Sprint(n.v)
}
