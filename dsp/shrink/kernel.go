package shrink

import (
	"fmt"
	"math"
	"strings"
)

// Kernel identifies a coefficient shrinkage rule.
type Kernel int

const (
	KernelHard Kernel = iota
	KernelSoft
	KernelSemiSoft
	KernelStein
	KernelBiggestTerms
	KernelNegativeClip
	KernelPositiveClip
)

var kernelNames = [...]string{
	KernelHard:         "hard",
	KernelSoft:         "soft",
	KernelSemiSoft:     "semisoft",
	KernelStein:        "stein",
	KernelBiggestTerms: "biggest",
	KernelNegativeClip: "negclip",
	KernelPositiveClip: "posclip",
}

// Kernels returns every supported kernel in declaration order.
func Kernels() []Kernel {
	return []Kernel{KernelHard, KernelSoft, KernelSemiSoft, KernelStein, KernelBiggestTerms, KernelNegativeClip, KernelPositiveClip}
}

// Valid reports whether k names a supported kernel.
func (k Kernel) Valid() bool {
	return k >= KernelHard && k <= KernelPositiveClip
}

// String returns the kernel's selector name.
func (k Kernel) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
	return kernelNames[k]
}

// UsesThreshold reports whether the kernel's parameter is a magnitude
// threshold scaled by the noise level. KernelBiggestTerms takes a term count
// and the clip kernels take no parameter.
func (k Kernel) UsesThreshold() bool {
	switch k {
	case KernelHard, KernelSoft, KernelSemiSoft, KernelStein:
		return true
	default:
		return false
	}
}

// ParseKernel resolves a selector name (case-insensitive) to a Kernel.
func ParseKernel(name string) (Kernel, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	for k, n := range kernelNames {
		if n == s {
			return Kernel(k), nil
		}
	}
	switch s {
	case "biggestterms", "biggest-m", "mterm":
		return KernelBiggestTerms, nil
	case "negative-clip", "negativeclip":
		return KernelNegativeClip, nil
	case "positive-clip", "positiveclip":
		return KernelPositiveClip, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kernel) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKernel, int(k))
	}
	return []byte(kernelNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kernel) UnmarshalText(text []byte) error {
	parsed, err := ParseKernel(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ApplyInPlace shrinks x in place and returns it. For threshold kernels p
// is the threshold, for KernelBiggestTerms it is the number of retained terms
// (truncated toward zero), and the clip kernels ignore it.
func (k Kernel) ApplyInPlace(x []float64, p float64) ([]float64, error) {
	switch k {
	case KernelHard:
		return HardInPlace(x, p)
	case KernelSoft:
		return SoftInPlace(x, p)
	case KernelSemiSoft:
		return SemiSoftInPlace(x, p)
	case KernelStein:
		return SteinInPlace(x, p)
	case KernelBiggestTerms:
		if p < 0 || math.IsNaN(p) {
			return nil, ErrInvalidSparsity
		}
		return BiggestTermsInPlace(x, termCount(p))
	case KernelNegativeClip:
		return NegativeClipInPlace(x), nil
	case KernelPositiveClip:
		return PositiveClipInPlace(x), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKernel, int(k))
	}
}

// Apply returns a shrunk copy of x; x is left untouched.
func (k Kernel) Apply(x []float64, p float64) ([]float64, error) {
	return applyCopy(k.ApplyInPlace, x, p)
}

func termCount(p float64) int {
	const maxInt = int(^uint(0) >> 1)
	if p >= float64(maxInt) {
		return maxInt
	}
	return int(p)
}
