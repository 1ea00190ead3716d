// Package noise estimates the standard deviation of additive white noise
// from the finest-scale coefficients of a transform.
package noise

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
	"github.com/cwbudde/algo-denoise/dsp/wavelet"
)

// MADScale converts a median absolute deviation into a standard deviation
// estimate under a Gaussian model (the 0.75 quantile of N(0, 1)).
const MADScale = 0.6745

// ErrEmptySignal is returned when there are no samples to estimate from.
var ErrEmptySignal = errors.New("noise: signal is empty")

// Method selects the dispersion statistic.
type Method int

const (
	// MethodMAD uses MAD/0.6745, robust against sparse signal content.
	MethodMAD Method = iota
	// MethodStdDev uses the sample standard deviation. It is only
	// appropriate when the selected coefficients are pure noise.
	MethodStdDev
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodMAD:
		return "mad"
	case MethodStdDev:
		return "stddev"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Option configures Estimate.
type Option func(*config)

type config struct {
	method Method
}

// WithMethod selects the dispersion statistic. Unknown methods are
// ignored.
func WithMethod(m Method) Option {
	return func(c *config) {
		if m == MethodMAD || m == MethodStdDev {
			c.method = m
		}
	}
}

// Estimate returns the noise standard deviation of x.
//
// With a transform, one analysis level is applied to a private copy of x
// and the statistic is computed over the finest detail block: the
// coefficients whose index lies in the finest detail range on every
// non-singleton axis. Without a transform the raw samples are used.
func Estimate(x *buffer.Array, tr wavelet.Transform, opts ...Option) (float64, error) {
	cfg := config{method: MethodMAD}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if x == nil || x.Len() == 0 {
		return 0, ErrEmptySignal
	}

	v := x.Samples()
	if tr != nil {
		coeffs := buffer.NewArray(x.Shape()...)
		if err := tr.Forward(coeffs, x, 1); err != nil {
			return 0, fmt.Errorf("noise: forward transform failed: %w", err)
		}
		v = finestDetail(coeffs, tr)
	}
	if len(v) == 0 {
		return 0, ErrEmptySignal
	}

	if cfg.method == MethodStdDev {
		if len(v) < 2 {
			return 0, nil
		}
		return stat.StdDev(v, nil), nil
	}
	return MAD(v) / MADScale, nil
}

// finestDetail gathers the coefficients lying in the finest detail band
// of every non-singleton axis.
func finestDetail(a *buffer.Array, tr wavelet.Transform) []float64 {
	shape := a.Shape()
	strides := a.Strides()
	lo := make([]int, len(shape))
	hi := make([]int, len(shape))
	count := 1
	for ax, n := range shape {
		if n <= 1 {
			lo[ax], hi[ax] = 0, n
		} else {
			lo[ax], hi[ax] = tr.DetailRange(n, tr.MaxScales(n))
		}
		count *= hi[ax] - lo[ax]
	}
	if count <= 0 {
		return nil
	}

	out := make([]float64, 0, count)
	data := a.Samples()
	idx := slices.Clone(lo)
	for {
		pos := 0
		for ax := range idx {
			pos += idx[ax] * strides[ax]
		}
		out = append(out, data[pos])

		ax := len(idx) - 1
		for ; ax >= 0; ax-- {
			idx[ax]++
			if idx[ax] < hi[ax] {
				break
			}
			idx[ax] = lo[ax]
		}
		if ax < 0 {
			return out
		}
	}
}

// Median returns the median of v without modifying it. Even-length
// inputs average the two middle order statistics. Median of an empty
// slice is NaN.
func Median(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := slices.Clone(v)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// MAD returns the median absolute deviation median(|v - median(v)|).
func MAD(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	m := Median(v)
	dev := make([]float64, len(v))
	for i, x := range v {
		dev[i] = math.Abs(x - m)
	}
	return Median(dev)
}
