package denoise

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-denoise/dsp/shrink"
)

// Strategy pairs a shrinkage kernel with a threshold multiplier T. At
// application time the kernel runs with threshold sigma*T, where sigma is
// the noise level. For shrink.KernelBiggestTerms, T is the number of retained
// terms and sigma is ignored; the clip kernels ignore both.
type Strategy struct {
	Kernel shrink.Kernel
	T      float64
}

// NewStrategy validates and returns a strategy.
func NewStrategy(k shrink.Kernel, t float64) (Strategy, error) {
	if !k.Valid() {
		return Strategy{}, fmt.Errorf("%w: %d", shrink.ErrUnknownKernel, int(k))
	}
	if t < 0 || math.IsNaN(t) {
		if k == shrink.KernelBiggestTerms {
			return Strategy{}, shrink.ErrInvalidSparsity
		}
		return Strategy{}, shrink.ErrInvalidThreshold
	}
	return Strategy{Kernel: k, T: t}, nil
}

// VisuShrink returns the universal threshold strategy for n coefficients:
// hard thresholding at sqrt(2 ln n). Lengths below 2 yield T = 0.
func VisuShrink(n int) Strategy {
	return Strategy{Kernel: shrink.KernelHard, T: UniversalThreshold(n)}
}

// UniversalThreshold returns sqrt(2 ln n), or 0 for n < 2.
func UniversalThreshold(n int) float64 {
	if n < 2 {
		return 0
	}
	return math.Sqrt(2 * math.Log(float64(n)))
}

// Threshold returns the kernel parameter used for noise level sigma.
func (s Strategy) Threshold(sigma float64) float64 {
	if s.Kernel.UsesThreshold() {
		return sigma * s.T
	}
	return s.T
}

// ApplyInPlace shrinks coeffs in place for noise level sigma.
func (s Strategy) ApplyInPlace(coeffs []float64, sigma float64) error {
	_, err := s.Kernel.ApplyInPlace(coeffs, s.Threshold(sigma))
	return err
}

// String describes the strategy, e.g. "hard(t=3.7169)".
func (s Strategy) String() string {
	return fmt.Sprintf("%v(t=%.4g)", s.Kernel, s.T)
}
