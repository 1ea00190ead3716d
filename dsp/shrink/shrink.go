package shrink

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrInvalidThreshold is returned for negative or NaN thresholds.
	ErrInvalidThreshold = errors.New("shrink: threshold must be >= 0")
	// ErrInvalidSparsity is returned for a negative retained-term count.
	ErrInvalidSparsity = errors.New("shrink: term count must be >= 0")
	// ErrUnknownKernel is returned by selectors for unsupported kernels.
	ErrUnknownKernel = errors.New("shrink: unknown kernel")
)

// applyCopy clones x and runs an in-place kernel on the clone.
func applyCopy[P any](inPlace func([]float64, P) ([]float64, error), x []float64, p P) ([]float64, error) {
	return inPlace(slices.Clone(x), p)
}

func checkThreshold(t float64) error {
	if t < 0 || math.IsNaN(t) {
		return ErrInvalidThreshold
	}
	return nil
}

// HardInPlace zeroes every element with |x| <= t and keeps the rest.
func HardInPlace(x []float64, t float64) ([]float64, error) {
	if err := checkThreshold(t); err != nil {
		return nil, err
	}
	for i, v := range x {
		if math.Abs(v) <= t {
			x[i] = 0
		}
	}
	return x, nil
}

// Hard returns a hard-thresholded copy of x.
func Hard(x []float64, t float64) ([]float64, error) {
	return applyCopy(HardInPlace, x, t)
}

// SoftInPlace applies sign(x)*max(|x|-t, 0).
func SoftInPlace(x []float64, t float64) ([]float64, error) {
	if err := checkThreshold(t); err != nil {
		return nil, err
	}
	for i, v := range x {
		a := math.Abs(v) - t
		if a <= 0 {
			x[i] = 0
			continue
		}
		x[i] = math.Copysign(a, v)
	}
	return x, nil
}

// Soft returns a soft-thresholded copy of x.
func Soft(x []float64, t float64) ([]float64, error) {
	return applyCopy(SoftInPlace, x, t)
}

// SemiSoftInPlace zeroes |x| <= t, maps t < |x| <= 2t to
// 2*sign(x)*(|x|-t) and keeps |x| > 2t unchanged. The rule is symmetric
// in the sign of x.
func SemiSoftInPlace(x []float64, t float64) ([]float64, error) {
	if err := checkThreshold(t); err != nil {
		return nil, err
	}
	for i, v := range x {
		a := math.Abs(v)
		switch {
		case a <= t:
			x[i] = 0
		case a <= 2*t:
			x[i] = math.Copysign(2*(a-t), v)
		}
	}
	return x, nil
}

// SemiSoft returns a semisoft-thresholded copy of x.
func SemiSoft(x []float64, t float64) ([]float64, error) {
	return applyCopy(SemiSoftInPlace, x, t)
}

// SteinInPlace applies the James-Stein rule x*max(1 - t²/x², 0).
// Zero coefficients stay zero: the 0/0 limit is taken as full shrinkage
// instead of producing NaN.
func SteinInPlace(x []float64, t float64) ([]float64, error) {
	if err := checkThreshold(t); err != nil {
		return nil, err
	}
	for i, v := range x {
		if v == 0 {
			continue
		}
		// t/v stays finite where t² or v² would under- or overflow.
		r := t / v
		g := 1 - r*r
		if g <= 0 {
			x[i] = 0
			continue
		}
		x[i] = v * g
	}
	return x, nil
}

// Stein returns a Stein-shrunk copy of x.
func Stein(x []float64, t float64) ([]float64, error) {
	return applyCopy(SteinInPlace, x, t)
}

// BiggestTermsInPlace keeps the m largest-magnitude elements and zeroes
// the rest. m is clamped to len(x). Elements are ranked by a stable
// ascending sort on magnitude, so among equal magnitudes the earlier
// positions are dropped first.
func BiggestTermsInPlace(x []float64, m int) ([]float64, error) {
	if m < 0 {
		return nil, ErrInvalidSparsity
	}
	n := len(x)
	if m >= n {
		return x, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		va, vb := math.Abs(x[a]), math.Abs(x[b])
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	})

	for _, i := range order[:n-m] {
		x[i] = 0
	}
	return x, nil
}

// BiggestTerms returns a copy of x with only its m largest-magnitude
// elements retained.
func BiggestTerms(x []float64, m int) ([]float64, error) {
	return applyCopy(BiggestTermsInPlace, x, m)
}

// NegativeClipInPlace zeroes negative elements.
func NegativeClipInPlace(x []float64) []float64 {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
	return x
}

// NegativeClip returns a copy of x with negative elements zeroed.
func NegativeClip(x []float64) []float64 {
	return NegativeClipInPlace(slices.Clone(x))
}

// PositiveClipInPlace zeroes positive elements.
func PositiveClipInPlace(x []float64) []float64 {
	for i, v := range x {
		if v > 0 {
			x[i] = 0
		}
	}
	return x
}

// PositiveClip returns a copy of x with positive elements zeroed.
func PositiveClip(x []float64) []float64 {
	return PositiveClipInPlace(slices.Clone(x))
}
