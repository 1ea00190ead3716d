package denoise

import (
	"log/slog"
	"runtime"

	"github.com/cwbudde/algo-denoise/dsp/wavelet"
)

const (
	// DefaultShifts is the per-axis shift count used by translation
	// invariant denoising when none is given.
	DefaultShifts = 8
	// DefaultMaxLevels caps the number of transform levels applied when
	// no explicit level is configured.
	DefaultMaxLevels = 6
)

// Option configures a denoise call.
type Option func(*config)

type config struct {
	transform wavelet.Transform
	level     int
	hasLevel  bool
	strategy  Strategy
	hasStrat  bool
	sigma     float64
	hasSigma  bool
	ti        bool
	shifts    []int
	workers   int
	logger    *slog.Logger
}

// DefaultTransform returns the transform used when WithTransform is not
// given: the periodized 4-tap Daubechies filter bank.
func DefaultTransform() wavelet.Transform {
	return wavelet.Daubechies4()
}

func defaultConfig() config {
	return config{
		transform: DefaultTransform(),
		workers:   runtime.GOMAXPROCS(0),
		logger:    slog.New(slog.DiscardHandler),
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithTransform sets the transform capability. A nil transform
// thresholds the samples directly in the signal domain.
func WithTransform(tr wavelet.Transform) Option {
	return func(c *config) {
		c.transform = tr
	}
}

// WithLevel sets the coarsest scale kept: the transform is applied
// MaxLevels - level times, so 0 requests a full decomposition. Without
// this option min(MaxLevels, DefaultMaxLevels) levels are applied.
func WithLevel(level int) Option {
	return func(c *config) {
		c.level = level
		c.hasLevel = true
	}
}

// WithStrategy sets the kernel and threshold multiplier. The default is
// VisuShrink over the signal length.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
		c.hasStrat = true
	}
}

// WithSigma fixes the noise level instead of estimating it.
func WithSigma(sigma float64) Option {
	return func(c *config) {
		c.sigma = sigma
		c.hasSigma = true
	}
}

// WithTranslationInvariant enables cycle spinning over circular shifts.
// Without counts every axis uses DefaultShifts; a single count applies
// to every axis; otherwise one count per axis is required.
func WithTranslationInvariant(counts ...int) Option {
	shifts := append([]int(nil), counts...)
	return func(c *config) {
		c.ti = true
		c.shifts = shifts
	}
}

// WithWorkers bounds the number of goroutines used for translation
// invariant denoising. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets a logger for debug output. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
