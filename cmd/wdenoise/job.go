package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"strings"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
	"github.com/cwbudde/algo-denoise/dsp/denoise"
	"github.com/cwbudde/algo-denoise/dsp/shrink"
	"github.com/cwbudde/algo-denoise/dsp/wavelet"
	"github.com/cwbudde/algo-denoise/stats/noise"
	"github.com/cwbudde/algo-denoise/stats/quality"
)

// job holds the settings shared by every series of one invocation.
type job struct {
	tr     wavelet.Transform
	kernel shrink.Kernel
	t      float64
	sigma  float64
	common []denoise.Option
	log    *slog.Logger
}

// report summarizes one denoised series.
type report struct {
	channel   int
	samples   int
	sigma     float64
	threshold float64
	quality   quality.Report
}

func newJob(o options, logger *slog.Logger) (*job, error) {
	j := &job{t: o.t, sigma: o.sigma, log: logger}

	if !strings.EqualFold(o.wavelet, "none") {
		tr, err := wavelet.Lookup(o.wavelet)
		if err != nil {
			return nil, err
		}
		j.tr = tr
	}

	k, err := shrink.ParseKernel(o.kernel)
	if err != nil {
		return nil, err
	}
	j.kernel = k
	if k == shrink.KernelBiggestTerms && math.IsNaN(o.t) {
		return nil, fmt.Errorf("kernel %s needs -t (number of retained terms)", k)
	}
	if !math.IsNaN(o.sigma) && o.sigma < 0 {
		return nil, fmt.Errorf("%w: %v", denoise.ErrInvalidSigma, o.sigma)
	}

	j.common = []denoise.Option{
		denoise.WithTransform(j.tr),
		denoise.WithWorkers(o.workers),
		denoise.WithLogger(logger),
	}
	if o.level >= 0 {
		j.common = append(j.common, denoise.WithLevel(o.level))
	}
	if o.ti {
		j.common = append(j.common, denoise.WithTranslationInvariant(o.spins))
	}
	return j, nil
}

// strategy resolves the strategy for a series of n samples.
func (j *job) strategy(n int) (denoise.Strategy, error) {
	t := j.t
	if math.IsNaN(t) {
		t = 0
		if j.kernel.UsesThreshold() {
			t = denoise.UniversalThreshold(n)
		}
	}
	return denoise.NewStrategy(j.kernel, t)
}

// denoiseSeries denoises one 1-D series. With a transform the series is
// extended symmetrically to the next power of two so every transform can
// decompose it, and the result is cut back to the input length.
func (j *job) denoiseSeries(ctx context.Context, x []float64) ([]float64, report, error) {
	rep := report{samples: len(x)}
	if len(x) == 0 {
		return nil, rep, denoise.ErrEmptySignal
	}

	work := x
	if j.tr != nil {
		work = reflectPad(x, nextPow2(len(x)))
	}
	arr := buffer.FromSlice1D(work)

	strategy, err := j.strategy(len(work))
	if err != nil {
		return nil, rep, err
	}
	sigma := j.sigma
	if math.IsNaN(sigma) {
		if sigma, err = noise.Estimate(arr, j.tr); err != nil {
			return nil, rep, err
		}
	}

	opts := append([]denoise.Option{
		denoise.WithStrategy(strategy),
		denoise.WithSigma(sigma),
	}, j.common...)
	y, err := denoise.DenoiseContext(ctx, arr, opts...)
	if err != nil {
		return nil, rep, err
	}

	out := y.Samples()[:len(x)]
	rep.sigma = sigma
	rep.threshold = strategy.Threshold(sigma)
	if rep.quality, err = quality.Compare(x, out); err != nil {
		return nil, rep, err
	}
	return out, rep, nil
}

// reflectPad extends x to n samples by whole-sample symmetric
// reflection (period 2*len(x)). It returns x itself when no padding is
// needed.
func reflectPad(x []float64, n int) []float64 {
	m := len(x)
	if n <= m {
		return x
	}
	out := make([]float64, n)
	copy(out, x)
	for i := m; i < n; i++ {
		k := i % (2 * m)
		if k >= m {
			k = 2*m - 1 - k
		}
		out[i] = x[k]
	}
	return out
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
