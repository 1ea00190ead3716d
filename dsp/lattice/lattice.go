// Package lattice enumerates circular shift vectors for N-dimensional
// arrays.
//
// A Lattice is the Cartesian product of per-axis shift counts. Linear
// indices in [0, Size()) map to shift vectors by mixed-radix
// decomposition with axis 0 as the least significant digit, so index 0 is
// always the identity shift.
package lattice

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

var (
	// ErrInvalidCount is returned for missing or non-positive shift counts.
	ErrInvalidCount = errors.New("lattice: shift counts must be positive")
	// ErrTooLarge is returned when the lattice size overflows int.
	ErrTooLarge = errors.New("lattice: shift count product overflows")
	// ErrIndexRange is returned for indices or vectors outside the lattice.
	ErrIndexRange = errors.New("lattice: index out of range")
)

// Lattice describes the set of shift vectors {s : 0 <= s[a] < counts[a]}.
type Lattice struct {
	counts []int
	size   int
}

// New builds a lattice from one shift count per axis.
func New(counts ...int) (Lattice, error) {
	if len(counts) == 0 {
		return Lattice{}, ErrInvalidCount
	}
	size := 1
	for ax, c := range counts {
		if c < 1 {
			return Lattice{}, fmt.Errorf("%w: axis %d has %d", ErrInvalidCount, ax, c)
		}
		if size > math.MaxInt/c {
			return Lattice{}, ErrTooLarge
		}
		size *= c
	}
	return Lattice{counts: append([]int(nil), counts...), size: size}, nil
}

// Size returns the number of shift vectors.
func (l Lattice) Size() int {
	return l.size
}

// Dims returns the number of axes.
func (l Lattice) Dims() int {
	return len(l.counts)
}

// Counts returns a copy of the per-axis shift counts.
func (l Lattice) Counts() []int {
	return append([]int(nil), l.counts...)
}

// Vector decomposes index i into its shift vector, writing into dst when
// it has the right length and allocating otherwise.
func (l Lattice) Vector(i int, dst []int) ([]int, error) {
	if i < 0 || i >= l.size {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexRange, i, l.size)
	}
	if len(dst) != len(l.counts) {
		dst = make([]int, len(l.counts))
	}
	l.decompose(i, dst)
	return dst, nil
}

// decompose writes the mixed-radix digits of i into dst, axis 0 fastest.
// i must already be in range.
func (l Lattice) decompose(i int, dst []int) {
	for ax, c := range l.counts {
		dst[ax] = i % c
		i /= c
	}
}

// Index is the inverse of Vector.
func (l Lattice) Index(vec []int) (int, error) {
	if len(vec) != len(l.counts) {
		return 0, fmt.Errorf("%w: vector has %d axes, lattice %d", ErrIndexRange, len(vec), len(l.counts))
	}
	idx := 0
	for ax := len(l.counts) - 1; ax >= 0; ax-- {
		if vec[ax] < 0 || vec[ax] >= l.counts[ax] {
			return 0, fmt.Errorf("%w: axis %d offset %d", ErrIndexRange, ax, vec[ax])
		}
		idx = idx*l.counts[ax] + vec[ax]
	}
	return idx, nil
}

// Range yields the indices in [lo, hi) with their shift vectors. The
// yielded slice is reused between iterations; copy it to retain it.
func (l Lattice) Range(lo, hi int) iter.Seq2[int, []int] {
	lo = max(lo, 0)
	hi = min(hi, l.size)
	return func(yield func(int, []int) bool) {
		if lo >= hi {
			return
		}
		vec := make([]int, len(l.counts))
		l.decompose(lo, vec)
		for i := lo; i < hi; i++ {
			if !yield(i, vec) {
				return
			}
			// Increment the mixed-radix counter.
			for ax, c := range l.counts {
				vec[ax]++
				if vec[ax] < c {
					break
				}
				vec[ax] = 0
			}
		}
	}
}

// All yields every index with its shift vector, starting at the identity.
// The yielded slice is reused between iterations.
func (l Lattice) All() iter.Seq2[int, []int] {
	return l.Range(0, l.size)
}
