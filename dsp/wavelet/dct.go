package wavelet

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
)

// Cosine is the orthonormal DCT-II applied separably along every axis.
// It is a single-scale transform: the upper half of each axis holds the
// high-frequency coefficients that play the role of the finest detail
// band. Axis lengths must be powers of two.
type Cosine struct{}

// DCT returns the orthonormal cosine transform.
func DCT() Cosine { return Cosine{} }

// String returns "dct".
func (Cosine) String() string { return "dct" }

// MaxScales returns 1 for power-of-two lengths >= 2 and 0 otherwise.
func (Cosine) MaxScales(length int) int {
	if length >= 2 && length&(length-1) == 0 {
		return 1
	}
	return 0
}

// DetailRange implements Transform.
func (c Cosine) DetailRange(length, level int) (lo, hi int) {
	return dyadicDetailRange(length, level, c.MaxScales(length))
}

// Forward implements Transform.
func (c Cosine) Forward(dst, src *buffer.Array, levels int) error {
	return c.driver().forward(dst, src, levels)
}

// Inverse implements Transform.
func (c Cosine) Inverse(dst, src *buffer.Array, levels int) error {
	return c.driver().inverse(dst, src, levels)
}

func (c Cosine) driver() separable {
	return separable{maxScales: c.MaxScales, newKernel: newDCTKernel}
}

// dctKernel evaluates a length-n DCT-II through a 2n-point complex FFT of
// the even extension of the line.
type dctKernel struct {
	n       int
	plan    *algofft.Plan[complex128]
	buf     []complex128
	twiddle []complex128 // exp(-iπk/2n)
	weight  []float64    // orthonormal scaling per coefficient
}

func newDCTKernel(n int) (lineKernel, error) {
	plan, err := algofft.NewPlan64(2 * n)
	if err != nil {
		return nil, fmt.Errorf("wavelet: failed to create FFT plan: %w", err)
	}
	k := &dctKernel{
		n:       n,
		plan:    plan,
		buf:     make([]complex128, 2*n),
		twiddle: make([]complex128, n),
		weight:  make([]float64, n),
	}
	for i := range n {
		k.twiddle[i] = cmplx.Exp(complex(0, -math.Pi*float64(i)/float64(2*n)))
		k.weight[i] = math.Sqrt(2 / float64(n))
	}
	k.weight[0] = math.Sqrt(1 / float64(n))
	return k, nil
}

func (k *dctKernel) analyze(line []float64) error {
	n := k.n
	for i, v := range line {
		k.buf[i] = complex(v, 0)
		k.buf[2*n-1-i] = complex(v, 0)
	}
	if err := k.plan.Forward(k.buf, k.buf); err != nil {
		return fmt.Errorf("wavelet: forward FFT failed: %w", err)
	}
	for i := range line {
		line[i] = k.weight[i] * real(k.buf[i]*k.twiddle[i]) / 2
	}
	return nil
}

func (k *dctKernel) synthesize(line []float64) error {
	n := k.n
	k.buf[0] = complex(2*k.weight[0]*line[0], 0)
	k.buf[n] = 0
	for i := 1; i < n; i++ {
		// Multiply by conj(twiddle) = exp(+iπk/2n).
		z := complex(k.weight[i]*line[i], 0) * cmplx.Conj(k.twiddle[i])
		k.buf[i] = z
		k.buf[2*n-i] = cmplx.Conj(z)
	}
	if err := k.plan.Inverse(k.buf, k.buf); err != nil {
		return fmt.Errorf("wavelet: inverse FFT failed: %w", err)
	}
	for i := range line {
		line[i] = float64(n) * real(k.buf[i])
	}
	return nil
}
