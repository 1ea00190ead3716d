package buffer

import "errors"

var (
	// ErrInvalidShape is returned for shapes with missing or non-positive extents.
	ErrInvalidShape = errors.New("buffer: shape extents must be positive")
	// ErrShapeMismatch is returned when two arrays, or an array and its
	// backing slice, disagree on size or shape.
	ErrShapeMismatch = errors.New("buffer: shape mismatch")
	errAliased       = errors.New("buffer: destination aliases source")
)

// Array is a dense N-dimensional float64 array stored in row-major order
// (the last axis varies fastest). DSP kernels operate on the flat
// Samples() slice; the shape is only consulted for axis-wise work such as
// circular shifts and separable transforms.
type Array struct {
	shape   []int
	strides []int
	samples []float64
}

// NewArray returns a zero-filled array with the given shape.
// Non-positive extents are clamped to 1.
func NewArray(shape ...int) *Array {
	if len(shape) == 0 {
		shape = []int{1}
	}
	s := make([]int, len(shape))
	for i, n := range shape {
		if n < 1 {
			n = 1
		}
		s[i] = n
	}
	a := &Array{shape: s}
	a.strides = stridesFor(s)
	a.samples = make([]float64, product(s))
	return a
}

// FromSlice wraps data without copying. Mutations to data are visible
// through the Array and vice versa. Without a shape the array is 1-D.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	for _, n := range shape {
		if n < 1 {
			return nil, ErrInvalidShape
		}
	}
	if product(shape) != len(data) {
		return nil, ErrShapeMismatch
	}
	s := append([]int(nil), shape...)
	return &Array{shape: s, strides: stridesFor(s), samples: data}, nil
}

// FromSlice1D wraps data as a 1-D array without copying. An empty slice
// yields an empty array.
func FromSlice1D(data []float64) *Array {
	return &Array{shape: []int{len(data)}, strides: []int{1}, samples: data}
}

// Samples returns the underlying row-major slice.
func (a *Array) Samples() []float64 {
	return a.samples
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.samples)
}

// NDim returns the number of axes.
func (a *Array) NDim() int {
	return len(a.shape)
}

// Shape returns a copy of the array's extents.
func (a *Array) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Dim returns the extent of one axis.
func (a *Array) Dim(axis int) int {
	return a.shape[axis]
}

// Strides returns a copy of the row-major element strides.
func (a *Array) Strides() []int {
	return append([]int(nil), a.strides...)
}

// SameShape reports whether a and b have identical shapes.
func (a *Array) SameShape(b *Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// Reshape changes the shape in place. The element count must not change.
func (a *Array) Reshape(shape ...int) error {
	for _, n := range shape {
		if n < 1 {
			return ErrInvalidShape
		}
	}
	if len(shape) == 0 || product(shape) != len(a.samples) {
		return ErrShapeMismatch
	}
	a.shape = append(a.shape[:0], shape...)
	a.strides = stridesFor(a.shape)
	return nil
}

// Zero sets all elements to 0.
func (a *Array) Zero() {
	for i := range a.samples {
		a.samples[i] = 0
	}
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	s := make([]float64, len(a.samples))
	copy(s, a.samples)
	return &Array{
		shape:   append([]int(nil), a.shape...),
		strides: append([]int(nil), a.strides...),
		samples: s,
	}
}

// CopyFrom copies src's elements into a. Shapes must match.
func (a *Array) CopyFrom(src *Array) error {
	if !a.SameShape(src) {
		return ErrShapeMismatch
	}
	copy(a.samples, src.samples)
	return nil
}

// CircShift writes src circularly shifted by shift into dst, so that
// dst[(i+shift) mod n] = src[i] along every axis. Negative shifts move
// towards lower indices. dst and src must have the same shape and must
// not share storage.
func CircShift(dst, src *Array, shift []int) error {
	if !dst.SameShape(src) || len(shift) != src.NDim() {
		return ErrShapeMismatch
	}
	if len(dst.samples) > 0 && &dst.samples[0] == &src.samples[0] {
		return errAliased
	}

	nd := src.NDim()
	off := make([]int, nd)
	for ax := range nd {
		n := src.shape[ax]
		off[ax] = ((shift[ax] % n) + n) % n
	}

	// Walk src in row-major order, tracking the destination index
	// incrementally so each element costs O(1) amortized.
	idx := make([]int, nd)
	dstPos := 0
	for ax := range nd {
		dstPos += off[ax] * src.strides[ax]
	}
	for _, v := range src.samples {
		dst.samples[dstPos] = v
		for ax := nd - 1; ax >= 0; ax-- {
			idx[ax]++
			d := (idx[ax] + off[ax]) % src.shape[ax]
			if idx[ax] < src.shape[ax] {
				if d == 0 {
					dstPos -= (src.shape[ax] - 1) * src.strides[ax]
				} else {
					dstPos += src.strides[ax]
				}
				break
			}
			// Axis wrapped: rewind it to its starting destination offset.
			idx[ax] = 0
			prev := (src.shape[ax] - 1 + off[ax]) % src.shape[ax]
			dstPos += (off[ax] - prev) * src.strides[ax]
		}
	}
	return nil
}

func stridesFor(shape []int) []int {
	strides := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = step
		step *= shape[i]
	}
	return strides
}

func product(shape []int) int {
	p := 1
	for _, n := range shape {
		p *= n
	}
	return p
}
