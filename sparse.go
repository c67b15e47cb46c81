package katachi

import (
	"errors"
	"iter"
	"math"
	"math/bits"
)

// DefaultStoreCapacity is the backing-array size a SparseStore starts with
// when no explicit capacity is given.
const DefaultStoreCapacity = 1024

// maxStoreIndex bounds the highest index a store will grow to. Growing past
// it would overflow the backing slice length on 32-bit platforms.
const maxStoreIndex = math.MaxInt32 - 1

var (
	// ErrNotPresent is returned when reading or removing an index that has no
	// value. The index may be in range; it was either never set or explicitly
	// cleared.
	ErrNotPresent = errors.New("katachi: no value at index")
	// ErrOutOfRange is returned for indices that can never hold a value, such
	// as negative indices. It is distinct from ErrNotPresent so callers can
	// tell "never set" apart from "not a valid index at all".
	ErrOutOfRange = errors.New("katachi: index out of range")
	// ErrCapacityExhausted is returned when a store cannot grow far enough to
	// hold the requested index.
	ErrCapacityExhausted = errors.New("katachi: store capacity exhausted")
)

// bitset tracks which indices of a SparseStore hold a value. One bit per
// index, grown on demand together with the backing array.
type bitset []uint64

func (b *bitset) set(i int) {
	w := i >> 6
	for w >= len(*b) {
		*b = append(*b, 0)
	}
	(*b)[w] |= 1 << uint(i&63)
}

func (b bitset) unset(i int) {
	w := i >> 6
	if w < len(b) {
		b[w] &^= 1 << uint(i&63)
	}
}

func (b bitset) has(i int) bool {
	w := i >> 6
	return w < len(b) && b[w]&(1<<uint(i&63)) != 0
}

// each visits set bits in ascending order until yield returns false.
func (b bitset) each(yield func(int) bool) {
	for w, word := range b {
		for word != 0 {
			i := w<<6 + bits.TrailingZeros64(word)
			if !yield(i) {
				return
			}
			word &= word - 1
		}
	}
}

// SparseStore is a growable container mapping a sparse set of integer keys to
// values of one type. It backs component storage: the key is an entity ID and
// the value is that entity's component. Only keys in the active set are
// considered populated, regardless of what the backing array holds.
type SparseStore[T any] struct {
	values []T
	active bitset
	count  int
}

// NewSparseStore creates a store with the given initial backing capacity.
// A capacity of zero or less falls back to DefaultStoreCapacity.
func NewSparseStore[T any](initialCapacity int) *SparseStore[T] {
	if initialCapacity <= 0 {
		initialCapacity = DefaultStoreCapacity
	}
	return &SparseStore[T]{values: make([]T, initialCapacity)}
}

// Get returns the value at index i. It returns ErrNotPresent if the index has
// no value and ErrOutOfRange if the index can never hold one. Callers must
// branch on the error rather than rely on the zero value.
func (s *SparseStore[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i > maxStoreIndex {
		return zero, ErrOutOfRange
	}
	if !s.active.has(i) {
		return zero, ErrNotPresent
	}
	return s.values[i], nil
}

// Set stores a value at index i, growing the backing array if needed. Growth
// reallocates to max(i+1, 2*capacity) and preserves existing values.
func (s *SparseStore[T]) Set(i int, value T) error {
	if i < 0 {
		return ErrOutOfRange
	}
	if i > maxStoreIndex {
		return ErrCapacityExhausted
	}
	if i >= len(s.values) {
		s.grow(i + 1)
	}
	s.values[i] = value
	if !s.active.has(i) {
		s.active.set(i)
		s.count++
	}
	return nil
}

// Remove clears the value at index i. Removing an index that has no value is
// an error; see Get for the distinction between the two error cases.
func (s *SparseStore[T]) Remove(i int) error {
	if i < 0 || i > maxStoreIndex {
		return ErrOutOfRange
	}
	if !s.active.has(i) {
		return ErrNotPresent
	}
	var zero T
	s.values[i] = zero
	s.active.unset(i)
	s.count--
	return nil
}

// Contains reports whether index i holds a value.
func (s *SparseStore[T]) Contains(i int) bool {
	return i >= 0 && s.active.has(i)
}

// Len returns the number of populated indices.
func (s *SparseStore[T]) Len() int {
	return s.count
}

// Cap returns the current backing-array capacity.
func (s *SparseStore[T]) Cap() int {
	return len(s.values)
}

// Clear removes all values without shrinking the backing array.
func (s *SparseStore[T]) Clear() {
	var zero T
	s.active.each(func(i int) bool {
		s.values[i] = zero
		return true
	})
	for w := range s.active {
		s.active[w] = 0
	}
	s.count = 0
}

// All iterates index/value pairs in ascending index order. The sequence is
// computed fresh on every call.
func (s *SparseStore[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		s.active.each(func(i int) bool {
			return yield(i, s.values[i])
		})
	}
}

// Values iterates values in ascending index order.
func (s *SparseStore[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.active.each(func(i int) bool {
			return yield(s.values[i])
		})
	}
}

// ref returns a pointer into the backing array. Only valid for populated
// indices; the pointer is invalidated by the next growth.
func (s *SparseStore[T]) ref(i int) *T {
	return &s.values[i]
}

// discard removes index i if populated, without the error bookkeeping of
// Remove. Used when purging a destroyed entity from every store.
func (s *SparseStore[T]) discard(i int) {
	if i >= 0 && s.active.has(i) {
		var zero T
		s.values[i] = zero
		s.active.unset(i)
		s.count--
	}
}

// eachIndex visits populated indices in ascending order.
func (s *SparseStore[T]) eachIndex(yield func(int) bool) {
	s.active.each(yield)
}

// grow reallocates the backing array to at least want entries.
func (s *SparseStore[T]) grow(want int) {
	newCap := max(want, 2*len(s.values))
	if newCap > maxStoreIndex+1 {
		newCap = maxStoreIndex + 1
	}
	next := make([]T, newCap)
	copy(next, s.values)
	s.values = next
}
