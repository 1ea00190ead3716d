package denoise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
	"github.com/cwbudde/algo-denoise/dsp/lattice"
	"github.com/cwbudde/algo-denoise/dsp/wavelet"
	"github.com/cwbudde/algo-denoise/stats/noise"
)

var (
	// ErrEmptySignal is returned for nil or empty input.
	ErrEmptySignal = errors.New("denoise: signal is empty")
	// ErrUnsupportedConfiguration is returned when translation invariant
	// denoising is requested without a transform.
	ErrUnsupportedConfiguration = errors.New("denoise: translation invariant mode requires a transform")
	// ErrInvalidLevel is returned for a level outside [0, MaxLevels].
	ErrInvalidLevel = errors.New("denoise: invalid decomposition level")
	// ErrInvalidShifts is returned for malformed shift counts.
	ErrInvalidShifts = errors.New("denoise: invalid shift counts")
	// ErrInvalidSigma is returned for a negative or NaN noise level.
	ErrInvalidSigma = errors.New("denoise: sigma must be >= 0")
)

// Denoise returns a denoised copy of x; x itself is never modified.
//
// The signal is decomposed with the configured transform, every
// coefficient is shrunk by the strategy's kernel at threshold sigma*T and
// the result is reconstructed. With WithTranslationInvariant the same is
// done for every circular shift in the shift lattice and the shifted-back
// reconstructions are averaged.
func Denoise(x *buffer.Array, opts ...Option) (*buffer.Array, error) {
	return DenoiseContext(context.Background(), x, opts...)
}

// DenoiseContext is Denoise with cancellation. ctx is checked before every
// shift in translation invariant mode.
func DenoiseContext(ctx context.Context, x *buffer.Array, opts ...Option) (*buffer.Array, error) {
	if x == nil || x.Len() == 0 {
		return nil, ErrEmptySignal
	}
	cfg := applyOptions(opts)

	p, err := newPlan(x, cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("denoise: %w", err)
	}
	if !cfg.ti {
		return p.direct(x)
	}
	return p.spin(ctx, x)
}

// plan is the fully resolved configuration of one denoise call.
type plan struct {
	tr       wavelet.Transform
	levels   int
	strategy Strategy
	sigma    float64
	lattice  lattice.Lattice
	workers  int
	log      *slog.Logger
}

func newPlan(x *buffer.Array, cfg config) (*plan, error) {
	p := &plan{tr: cfg.transform, workers: cfg.workers, log: cfg.logger}

	if cfg.hasStrat {
		s, err := NewStrategy(cfg.strategy.Kernel, cfg.strategy.T)
		if err != nil {
			return nil, err
		}
		p.strategy = s
	} else {
		p.strategy = VisuShrink(x.Len())
	}

	if cfg.ti {
		if p.tr == nil {
			return nil, ErrUnsupportedConfiguration
		}
		counts, err := shiftCounts(cfg.shifts, x.Shape())
		if err != nil {
			return nil, err
		}
		l, err := lattice.New(counts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidShifts, err)
		}
		p.lattice = l
	}

	if p.tr != nil {
		maxLevels := wavelet.MaxLevels(p.tr, x.Shape())
		switch {
		case !cfg.hasLevel:
			p.levels = min(maxLevels, DefaultMaxLevels)
		case cfg.level < 0 || cfg.level > maxLevels:
			return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidLevel, cfg.level, maxLevels)
		default:
			p.levels = maxLevels - cfg.level
		}
	}

	if cfg.hasSigma {
		if cfg.sigma < 0 || math.IsNaN(cfg.sigma) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSigma, cfg.sigma)
		}
		p.sigma = cfg.sigma
	} else {
		// Arrays too short for one analysis level fall back to the
		// signal-domain estimate.
		est := p.tr
		if est != nil && wavelet.MaxLevels(est, x.Shape()) == 0 {
			est = nil
		}
		sigma, err := noise.Estimate(x, est)
		if err != nil {
			return nil, fmt.Errorf("denoise: estimating noise: %w", err)
		}
		p.sigma = sigma
	}

	p.log.Debug("denoise plan",
		slog.String("transform", transformName(p.tr)),
		slog.Int("levels", p.levels),
		slog.String("strategy", p.strategy.String()),
		slog.Float64("sigma", p.sigma),
		slog.Float64("threshold", p.strategy.Threshold(p.sigma)),
		slog.Bool("translation_invariant", cfg.ti),
		slog.Int("shifts", p.lattice.Size()),
	)
	return p, nil
}

// shiftCounts expands the configured counts to one per axis. The
// default count is not applied to singleton axes, where every shift is
// the identity.
func shiftCounts(counts, shape []int) ([]int, error) {
	ndim := len(shape)
	out := make([]int, ndim)
	switch len(counts) {
	case 0:
		for i, n := range shape {
			out[i] = DefaultShifts
			if n == 1 {
				out[i] = 1
			}
		}
	case 1:
		for i := range out {
			out[i] = counts[0]
		}
	case ndim:
		copy(out, counts)
	default:
		return nil, fmt.Errorf("%w: got %d counts for %d axes", ErrInvalidShifts, len(counts), ndim)
	}
	return out, nil
}

// direct denoises once, without shifting.
func (p *plan) direct(x *buffer.Array) (*buffer.Array, error) {
	out := x.Clone()
	if err := p.denoiseInPlace(out); err != nil {
		return nil, err
	}
	return out, nil
}

// denoiseInPlace runs forward transform, shrinkage and inverse transform
// on a in place.
func (p *plan) denoiseInPlace(a *buffer.Array) error {
	if p.tr == nil {
		return p.strategy.ApplyInPlace(a.Samples(), p.sigma)
	}
	if err := p.tr.Forward(a, a, p.levels); err != nil {
		return fmt.Errorf("denoise: forward transform failed: %w", err)
	}
	if err := p.strategy.ApplyInPlace(a.Samples(), p.sigma); err != nil {
		return err
	}
	if err := p.tr.Inverse(a, a, p.levels); err != nil {
		return fmt.Errorf("denoise: inverse transform failed: %w", err)
	}
	return nil
}

// spin averages denoised reconstructions over every shift in the lattice.
//
// The lattice is split into contiguous index chunks, one per worker. Each
// chunk accumulates into its own buffer, and the buffers are summed in
// chunk order once all workers finish, so the result is reproducible for
// a given worker count.
func (p *plan) spin(ctx context.Context, x *buffer.Array) (*buffer.Array, error) {
	start := time.Now()
	total := p.lattice.Size()
	chunks := max(min(p.workers, total), 1)
	accs := make([]*buffer.Array, chunks)
	pool := buffer.NewPool()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunks)
	for c := range chunks {
		lo := c * total / chunks
		hi := (c + 1) * total / chunks
		acc := buffer.NewArray(x.Shape()...)
		accs[c] = acc
		g.Go(func() error {
			return p.spinRange(gctx, x, acc, lo, hi, pool)
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("denoise: %w", ctxErr)
		}
		return nil, err
	}

	out := accs[0]
	for _, acc := range accs[1:] {
		vecmath.AddBlockInPlace(out.Samples(), acc.Samples())
	}
	vecmath.ScaleBlock(out.Samples(), out.Samples(), 1/float64(total))

	p.log.Debug("cycle spinning done",
		slog.Int("shifts", total),
		slog.Int("workers", chunks),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (p *plan) spinRange(ctx context.Context, x, acc *buffer.Array, lo, hi int, pool *buffer.Pool) error {
	shape := x.Shape()
	work := pool.Get(shape...)
	defer pool.Put(work)
	back := pool.Get(shape...)
	defer pool.Put(back)
	unshift := make([]int, len(shape))

	for _, shift := range p.lattice.Range(lo, hi) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := buffer.CircShift(work, x, shift); err != nil {
			return fmt.Errorf("denoise: shifting: %w", err)
		}
		if err := p.denoiseInPlace(work); err != nil {
			return err
		}
		for ax, s := range shift {
			unshift[ax] = -s
		}
		if err := buffer.CircShift(back, work, unshift); err != nil {
			return fmt.Errorf("denoise: shifting back: %w", err)
		}
		vecmath.AddBlockInPlace(acc.Samples(), back.Samples())
	}
	return nil
}

func transformName(tr wavelet.Transform) string {
	if tr == nil {
		return "none"
	}
	if s, ok := tr.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", tr)
}
