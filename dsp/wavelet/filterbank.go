package wavelet

import (
	"math"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
)

// Orthogonal is a periodized two-channel orthonormal filter bank. The
// high-pass filter is the alternating flip of the low-pass filter, so the
// synthesis step is the exact transpose of analysis.
type Orthogonal struct {
	name string
	h    []float64
	g    []float64
}

var (
	haarLowpass = []float64{1 / math.Sqrt2, 1 / math.Sqrt2}

	d4Lowpass = []float64{
		(1 + math.Sqrt(3)) / (4 * math.Sqrt2),
		(3 + math.Sqrt(3)) / (4 * math.Sqrt2),
		(3 - math.Sqrt(3)) / (4 * math.Sqrt2),
		(1 - math.Sqrt(3)) / (4 * math.Sqrt2),
	}

	d6Lowpass = []float64{
		0.33267055295008261599851158914,
		0.80689150931109257649449360409,
		0.45987750211849157009515194215,
		-0.13501102001025458869638990670,
		-0.08544127388202666169281916918,
		0.03522629188570953660274066472,
	}
)

// Haar returns the orthonormal Haar filter bank.
func Haar() *Orthogonal { return NewOrthogonal("haar", haarLowpass) }

// Daubechies4 returns the four-tap Daubechies filter bank (two vanishing
// moments).
func Daubechies4() *Orthogonal { return NewOrthogonal("db4", d4Lowpass) }

// Daubechies6 returns the six-tap Daubechies filter bank (three vanishing
// moments).
func Daubechies6() *Orthogonal { return NewOrthogonal("db6", d6Lowpass) }

// NewOrthogonal builds a periodized filter bank from an orthonormal
// low-pass filter of even length. The caller is responsible for the
// filter satisfying the orthonormality conditions.
func NewOrthogonal(name string, lowpass []float64) *Orthogonal {
	l := len(lowpass)
	h := append([]float64(nil), lowpass...)
	g := make([]float64, l)
	for k := range g {
		g[k] = h[l-1-k]
		if k%2 == 1 {
			g[k] = -g[k]
		}
	}
	return &Orthogonal{name: name, h: h, g: g}
}

// String returns the filter bank name.
func (o *Orthogonal) String() string { return o.name }

// Lowpass returns a copy of the analysis low-pass filter.
func (o *Orthogonal) Lowpass() []float64 { return append([]float64(nil), o.h...) }

// MaxScales returns the number of times length can be halved while even.
func (o *Orthogonal) MaxScales(length int) int { return dyadicScales(length) }

// DetailRange implements Transform.
func (o *Orthogonal) DetailRange(length, level int) (lo, hi int) {
	return dyadicDetailRange(length, level, o.MaxScales(length))
}

// Forward implements Transform.
func (o *Orthogonal) Forward(dst, src *buffer.Array, levels int) error {
	return o.driver().forward(dst, src, levels)
}

// Inverse implements Transform.
func (o *Orthogonal) Inverse(dst, src *buffer.Array, levels int) error {
	return o.driver().inverse(dst, src, levels)
}

func (o *Orthogonal) driver() separable {
	return separable{
		maxScales: o.MaxScales,
		newKernel: func(n int) (lineKernel, error) {
			return &qmfKernel{h: o.h, g: o.g, scratch: make([]float64, n)}, nil
		},
	}
}

type qmfKernel struct {
	h, g    []float64
	scratch []float64
}

func (q *qmfKernel) analyze(line []float64) error {
	m := len(line)
	half := m / 2
	out := q.scratch[:m]
	for i := range half {
		var a, d float64
		for k, hk := range q.h {
			v := line[(2*i+k)%m]
			a += hk * v
			d += q.g[k] * v
		}
		out[i] = a
		out[half+i] = d
	}
	copy(line, out)
	return nil
}

func (q *qmfKernel) synthesize(line []float64) error {
	m := len(line)
	half := m / 2
	out := q.scratch[:m]
	for i := range out {
		out[i] = 0
	}
	for i := range half {
		a, d := line[i], line[half+i]
		for k, hk := range q.h {
			out[(2*i+k)%m] += hk*a + q.g[k]*d
		}
	}
	copy(line, out)
	return nil
}
