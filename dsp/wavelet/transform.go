package wavelet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
)

var (
	// ErrInvalidLevels is returned when the requested decomposition depth
	// is negative or exceeds what the array's axes support.
	ErrInvalidLevels = errors.New("wavelet: invalid decomposition levels")
	// ErrShapeMismatch is returned when dst and src differ in shape.
	ErrShapeMismatch = errors.New("wavelet: dst and src shapes differ")
	// ErrUnknownTransform is returned by Lookup for unsupported names.
	ErrUnknownTransform = errors.New("wavelet: unknown transform")
)

// Transform is a multi-level separable transform over N-dimensional
// arrays. After each analysis level an axis of extent m holds the
// approximation in [0, m/2) and the detail in [m/2, m), and the next level
// recurses into the approximation corner. Axes of extent 1 are left
// untouched.
//
// dst may be the same array as src. Implementations are safe for
// concurrent use.
type Transform interface {
	// Forward decomposes src by levels scales into dst.
	Forward(dst, src *buffer.Array, levels int) error
	// Inverse reconstructs dst from levels scales of coefficients in src.
	Inverse(dst, src *buffer.Array, levels int) error
	// MaxScales is the deepest decomposition an axis of the given
	// length supports.
	MaxScales(length int) int
	// DetailRange returns the half-open index range [lo, hi) holding the
	// detail coefficients of scale level along an axis of the given
	// length. Levels run from 1 (coarsest) to MaxScales(length)
	// (finest). Invalid levels yield an empty range.
	DetailRange(length, level int) (lo, hi int)
}

// MaxLevels returns the deepest decomposition tr supports for every
// non-singleton axis of shape.
func MaxLevels(tr Transform, shape []int) int {
	levels := -1
	for _, n := range shape {
		if n <= 1 {
			continue
		}
		s := tr.MaxScales(n)
		if levels < 0 || s < levels {
			levels = s
		}
	}
	return max(levels, 0)
}

// Lookup resolves a transform by name: "haar", "db4" (alias "d4"),
// "db6" (alias "d6") or "dct".
func Lookup(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "haar", "db2":
		return Haar(), nil
	case "db4", "d4", "daubechies4":
		return Daubechies4(), nil
	case "db6", "d6", "daubechies6":
		return Daubechies6(), nil
	case "dct":
		return DCT(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
}

// lineKernel transforms one contiguous line in place.
type lineKernel interface {
	analyze(line []float64) error
	synthesize(line []float64) error
}

// separable drives a lineKernel across every non-singleton axis, level
// by level, following the Mallat pyramid.
type separable struct {
	maxScales func(n int) int
	newKernel func(n int) (lineKernel, error)
}

func (s separable) prepare(dst, src *buffer.Array, levels int) error {
	if !dst.SameShape(src) {
		return ErrShapeMismatch
	}
	if levels < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLevels, levels)
	}
	for ax, n := range src.Shape() {
		if n > 1 && levels > s.maxScales(n) {
			return fmt.Errorf("%w: %d levels on axis %d of length %d (max %d)",
				ErrInvalidLevels, levels, ax, n, s.maxScales(n))
		}
	}
	if dst != src {
		copy(dst.Samples(), src.Samples())
	}
	return nil
}

func (s separable) forward(dst, src *buffer.Array, levels int) error {
	if err := s.prepare(dst, src, levels); err != nil {
		return err
	}
	w := newWalker(dst, s.newKernel)
	for l := range levels {
		for ax := range dst.NDim() {
			if err := w.run(l, ax, lineKernel.analyze); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s separable) inverse(dst, src *buffer.Array, levels int) error {
	if err := s.prepare(dst, src, levels); err != nil {
		return err
	}
	w := newWalker(dst, s.newKernel)
	for l := levels - 1; l >= 0; l-- {
		for ax := dst.NDim() - 1; ax >= 0; ax-- {
			if err := w.run(l, ax, lineKernel.synthesize); err != nil {
				return err
			}
		}
	}
	return nil
}

// walker gathers strided lines into a contiguous scratch slice, hands
// them to a kernel and scatters the result back. Kernels are cached per
// line length for the duration of one call.
type walker struct {
	a       *buffer.Array
	shape   []int
	strides []int
	kernels map[int]lineKernel
	factory func(n int) (lineKernel, error)
	line    []float64
}

func newWalker(a *buffer.Array, factory func(n int) (lineKernel, error)) *walker {
	return &walker{
		a:       a,
		shape:   a.Shape(),
		strides: a.Strides(),
		kernels: make(map[int]lineKernel),
		factory: factory,
	}
}

func (w *walker) extent(level, ax int) int {
	if w.shape[ax] <= 1 {
		return w.shape[ax]
	}
	return w.shape[ax] >> level
}

func (w *walker) run(level, axis int, op func(lineKernel, []float64) error) error {
	n := w.extent(level, axis)
	if n <= 1 {
		return nil
	}
	k, ok := w.kernels[n]
	if !ok {
		var err error
		if k, err = w.factory(n); err != nil {
			return err
		}
		w.kernels[n] = k
	}
	if cap(w.line) < n {
		w.line = make([]float64, n)
	}
	line := w.line[:n]
	data := w.a.Samples()
	stride := w.strides[axis]

	// Enumerate the base offset of every line along axis within the
	// current approximation region.
	nd := len(w.shape)
	idx := make([]int, nd)
	for {
		base := 0
		for ax := range nd {
			base += idx[ax] * w.strides[ax]
		}
		for i := range line {
			line[i] = data[base+i*stride]
		}
		if err := op(k, line); err != nil {
			return err
		}
		for i, v := range line {
			data[base+i*stride] = v
		}

		ax := nd - 1
		for ; ax >= 0; ax-- {
			if ax == axis {
				continue
			}
			idx[ax]++
			if idx[ax] < w.extent(level, ax) {
				break
			}
			idx[ax] = 0
		}
		if ax < 0 {
			return nil
		}
	}
}

// dyadicScales counts how often n can be halved while staying even.
func dyadicScales(n int) int {
	j := 0
	for n >= 2 && n%2 == 0 {
		n /= 2
		j++
	}
	return j
}

// dyadicDetailRange returns the band of scale level within an axis whose
// deepest supported scale count is maxScales.
func dyadicDetailRange(length, level, maxScales int) (lo, hi int) {
	if level < 1 || level > maxScales {
		return 0, 0
	}
	return length >> (maxScales - level + 1), length >> (maxScales - level)
}
