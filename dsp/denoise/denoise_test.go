package denoise

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
	"github.com/cwbudde/algo-denoise/dsp/shrink"
	"github.com/cwbudde/algo-denoise/dsp/wavelet"
	"github.com/cwbudde/algo-denoise/internal/testutil"
)

func mustArray(t *testing.T, data []float64, shape ...int) *buffer.Array {
	t.Helper()
	a, err := buffer.FromSlice(data, shape...)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return a
}

func mustDenoise(t *testing.T, x *buffer.Array, opts ...Option) *buffer.Array {
	t.Helper()
	y, err := Denoise(x, opts...)
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	if !y.SameShape(x) {
		t.Fatalf("shape = %v, want %v", y.Shape(), x.Shape())
	}
	testutil.RequireFinite(t, y.Samples())
	return y
}

func rms(t *testing.T, a, b []float64) float64 {
	t.Helper()
	e, err := testutil.RMSError(a, b)
	if err != nil {
		t.Fatalf("RMSError: %v", err)
	}
	return e
}

func TestDirectWithoutTransform(t *testing.T) {
	x := mustArray(t, []float64{5, -0.1, 3, -4, 0.05})
	y := mustDenoise(t, x,
		WithTransform(nil),
		WithSigma(1),
		WithStrategy(Strategy{Kernel: shrink.KernelHard, T: 1}),
	)
	testutil.RequireSliceEqual(t, y.Samples(), []float64{5, 0, 3, -4, 0})
}

func TestDenoiseDoesNotMutateInput(t *testing.T) {
	data := testutil.AddNoise(testutil.Doppler(256), 3, 0.1)
	orig := slices.Clone(data)
	x := mustArray(t, data)

	mustDenoise(t, x)
	testutil.RequireSliceEqual(t, data, orig)

	mustDenoise(t, x, WithTranslationInvariant(4))
	testutil.RequireSliceEqual(t, data, orig)
}

func TestZeroSignalStaysZero(t *testing.T) {
	for _, k := range shrink.Kernels() {
		for _, ti := range []bool{false, true} {
			opts := []Option{WithStrategy(Strategy{Kernel: k, T: 1})}
			if ti {
				opts = append(opts, WithTranslationInvariant(3))
			}
			y := mustDenoise(t, buffer.NewArray(64), opts...)
			testutil.RequireSliceNearlyEqual(t, y.Samples(), make([]float64, 64), 0)
		}
	}
}

func TestTranslationInvariantSingleShiftMatchesDirect(t *testing.T) {
	tests := []struct {
		name  string
		shape []int
		data  []float64
	}{
		{name: "1d", shape: []int{128}, data: testutil.AddNoise(testutil.HeaviSine(128), 1, 0.3)},
		{name: "2d", shape: []int{16, 32}, data: testutil.AddNoise(testutil.Bumps(512), 2, 0.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := mustArray(t, tt.data, tt.shape...)
			common := []Option{WithSigma(0.3), WithStrategy(Strategy{Kernel: shrink.KernelSoft, T: 2})}

			direct := mustDenoise(t, x, common...)
			ones := make([]int, len(tt.shape))
			for i := range ones {
				ones[i] = 1
			}
			ti := mustDenoise(t, x, append(common, WithTranslationInvariant(ones...))...)
			testutil.RequireSliceNearlyEqual(t, ti.Samples(), direct.Samples(), 1e-12)
		})
	}
}

func TestTranslationInvariantMatchesShiftAverage(t *testing.T) {
	const (
		n      = 32
		shifts = 4
		sigma  = 0.25
	)
	data := testutil.AddNoise(testutil.Blocks(n), 4, sigma)
	x := mustArray(t, data)
	strategy := Strategy{Kernel: shrink.KernelHard, T: 2}
	tr := wavelet.Haar()

	got := mustDenoise(t, x,
		WithTransform(tr),
		WithSigma(sigma),
		WithStrategy(strategy),
		WithTranslationInvariant(shifts),
	)

	levels := min(tr.MaxScales(n), DefaultMaxLevels)
	want := make([]float64, n)
	for s := range shifts {
		work := buffer.NewArray(n)
		if err := buffer.CircShift(work, x, []int{s}); err != nil {
			t.Fatalf("CircShift: %v", err)
		}
		if err := tr.Forward(work, work, levels); err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if _, err := shrink.HardInPlace(work.Samples(), strategy.T*sigma); err != nil {
			t.Fatalf("HardInPlace: %v", err)
		}
		if err := tr.Inverse(work, work, levels); err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		back := buffer.NewArray(n)
		if err := buffer.CircShift(back, work, []int{-s}); err != nil {
			t.Fatalf("CircShift: %v", err)
		}
		for i, v := range back.Samples() {
			want[i] += v / shifts
		}
	}
	testutil.RequireSliceNearlyEqual(t, got.Samples(), want, 1e-12)
}

func TestTranslationInvariantWorkerCountIndependent(t *testing.T) {
	x := mustArray(t, testutil.AddNoise(testutil.Doppler(256), 8, 0.05))
	ref := mustDenoise(t, x, WithTranslationInvariant(), WithWorkers(1))
	for _, w := range []int{2, 3, 8, 64} {
		got := mustDenoise(t, x, WithTranslationInvariant(), WithWorkers(w))
		d, err := testutil.MaxAbsDiff(got.Samples(), ref.Samples())
		if err != nil {
			t.Fatalf("workers=%d: %v", w, err)
		}
		if d > 1e-12 {
			t.Fatalf("workers=%d: max deviation from single worker %g > 1e-12", w, d)
		}
	}
}

func TestTranslationInvariantIsDeterministic(t *testing.T) {
	x := mustArray(t, testutil.AddNoise(testutil.Bumps(128), 5, 0.2))
	a := mustDenoise(t, x, WithTranslationInvariant(16), WithWorkers(4))
	b := mustDenoise(t, x, WithTranslationInvariant(16), WithWorkers(4))
	testutil.RequireSliceEqual(t, a.Samples(), b.Samples())
}

func TestDenoiseReducesError(t *testing.T) {
	const n = 1024
	clean := testutil.HeaviSine(n)
	noisy := testutil.AddNoise(clean, 42, 0.5)
	x := mustArray(t, noisy)

	noisyErr := rms(t, noisy, clean)
	direct := rms(t, mustDenoise(t, x).Samples(), clean)
	ti := rms(t, mustDenoise(t, x, WithTranslationInvariant()).Samples(), clean)

	if direct >= 0.6*noisyErr {
		t.Fatalf("direct RMS error %.4f, noisy %.4f", direct, noisyErr)
	}
	if ti >= 0.6*noisyErr {
		t.Fatalf("translation invariant RMS error %.4f, noisy %.4f", ti, noisyErr)
	}
	if ti > 1.05*direct {
		t.Fatalf("translation invariant RMS error %.4f worse than direct %.4f", ti, direct)
	}
}

func TestDenoiseTwoDimensional(t *testing.T) {
	const rows, cols = 32, 64
	clean := make([]float64, rows*cols)
	for r := range rows {
		for c := range cols {
			clean[r*cols+c] = 3 * math.Sin(2*math.Pi*float64(r)/rows) * math.Cos(2*math.Pi*float64(c)/cols)
		}
	}
	noisy := testutil.AddNoise(clean, 6, 0.4)
	x := mustArray(t, noisy, rows, cols)

	noisyErr := rms(t, noisy, clean)
	for _, opts := range [][]Option{
		nil,
		{WithTranslationInvariant(2, 4)},
		{WithTransform(wavelet.Daubechies6()), WithStrategy(Strategy{Kernel: shrink.KernelSoft, T: 1.5})},
	} {
		y := mustDenoise(t, x, opts...)
		if got := rms(t, y.Samples(), clean); got >= noisyErr {
			t.Fatalf("RMS error %.4f not below noisy %.4f", got, noisyErr)
		}
	}
}

func TestSingletonAxisDefaultShifts(t *testing.T) {
	data := testutil.AddNoise(testutil.HeaviSine(64), 9, 0.2)
	row := mustDenoise(t, mustArray(t, data, 1, 64), WithTranslationInvariant(), WithSigma(0.2))
	flat := mustDenoise(t, mustArray(t, data), WithTranslationInvariant(), WithSigma(0.2))
	testutil.RequireSliceNearlyEqual(t, row.Samples(), flat.Samples(), 1e-12)
}

func TestFullLevelIsSignalDomainShrinkage(t *testing.T) {
	data := testutil.AddNoise(testutil.Blocks(32), 2, 0.5)
	x := mustArray(t, data)
	strategy := Strategy{Kernel: shrink.KernelSoft, T: 1}

	got := mustDenoise(t, x,
		WithTransform(wavelet.Haar()),
		WithLevel(wavelet.Haar().MaxScales(32)),
		WithSigma(0.5),
		WithStrategy(strategy),
	)
	want, err := shrink.Soft(data, 0.5)
	if err != nil {
		t.Fatalf("Soft: %v", err)
	}
	testutil.RequireSliceEqual(t, got.Samples(), want)
}

func TestLevelSelectsDecompositionDepth(t *testing.T) {
	data := testutil.AddNoise(testutil.Doppler(64), 12, 0.1)
	x := mustArray(t, data)
	tr := wavelet.Daubechies4()
	strategy := Strategy{Kernel: shrink.KernelHard, T: 3}

	for level := range tr.MaxScales(64) + 1 {
		got := mustDenoise(t, x, WithTransform(tr), WithLevel(level), WithSigma(0.1), WithStrategy(strategy))

		want := x.Clone()
		depth := tr.MaxScales(64) - level
		if err := tr.Forward(want, want, depth); err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if _, err := shrink.HardInPlace(want.Samples(), strategy.Threshold(0.1)); err != nil {
			t.Fatalf("HardInPlace: %v", err)
		}
		if err := tr.Inverse(want, want, depth); err != nil {
			t.Fatalf("Inverse: %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, got.Samples(), want.Samples(), 1e-12)
	}
}

func TestOddLengthEstimatesInSignalDomain(t *testing.T) {
	x := mustArray(t, testutil.AddNoise(testutil.DC(1, 15), 1, 0.1))
	y := mustDenoise(t, x)
	if y.Len() != 15 {
		t.Fatalf("Len = %d, want 15", y.Len())
	}
}

func TestDCTTransform(t *testing.T) {
	clean := testutil.HeaviSine(256)
	noisy := testutil.AddNoise(clean, 13, 0.3)
	y := mustDenoise(t, mustArray(t, noisy), WithTransform(wavelet.DCT()), WithTranslationInvariant(4))
	if got, base := rms(t, y.Samples(), clean), rms(t, noisy, clean); got >= base {
		t.Fatalf("RMS error %.4f not below noisy %.4f", got, base)
	}
}

func TestBiggestTermsStrategy(t *testing.T) {
	x := mustArray(t, testutil.AddNoise(testutil.Blocks(128), 3, 0.2))
	tr := wavelet.Haar()
	y := mustDenoise(t, x,
		WithTransform(tr),
		WithLevel(0),
		WithStrategy(Strategy{Kernel: shrink.KernelBiggestTerms, T: 10}),
	)

	coeffs := buffer.NewArray(128)
	if err := tr.Forward(coeffs, y, tr.MaxScales(128)); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	nonzero := 0
	for _, v := range coeffs.Samples() {
		if math.Abs(v) > 1e-9 {
			nonzero++
		}
	}
	if nonzero > 10 {
		t.Fatalf("%d nonzero coefficients, want at most 10", nonzero)
	}
}

func TestDenoiseErrors(t *testing.T) {
	x := mustArray(t, testutil.GaussianNoise(1, 1, 32))

	tests := []struct {
		name string
		x    *buffer.Array
		opts []Option
		want error
	}{
		{name: "nil signal", x: nil, want: ErrEmptySignal},
		{name: "empty signal", x: &buffer.Array{}, want: ErrEmptySignal},
		{name: "ti without transform", x: x, opts: []Option{WithTransform(nil), WithTranslationInvariant()}, want: ErrUnsupportedConfiguration},
		{name: "negative level", x: x, opts: []Option{WithLevel(-1)}, want: ErrInvalidLevel},
		{name: "level too deep", x: x, opts: []Option{WithLevel(6)}, want: ErrInvalidLevel},
		{name: "zero shifts", x: x, opts: []Option{WithTranslationInvariant(0)}, want: ErrInvalidShifts},
		{name: "shift arity", x: x, opts: []Option{WithTranslationInvariant(2, 2)}, want: ErrInvalidShifts},
		{name: "negative sigma", x: x, opts: []Option{WithSigma(-1)}, want: ErrInvalidSigma},
		{name: "nan sigma", x: x, opts: []Option{WithSigma(math.NaN())}, want: ErrInvalidSigma},
		{name: "negative threshold", x: x, opts: []Option{WithStrategy(Strategy{Kernel: shrink.KernelSoft, T: -1})}, want: shrink.ErrInvalidThreshold},
		{name: "negative terms", x: x, opts: []Option{WithStrategy(Strategy{Kernel: shrink.KernelBiggestTerms, T: -1})}, want: shrink.ErrInvalidSparsity},
		{name: "unknown kernel", x: x, opts: []Option{WithStrategy(Strategy{Kernel: shrink.Kernel(99)})}, want: shrink.ErrUnknownKernel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, err := Denoise(tt.x, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if y != nil {
				t.Fatalf("got result %v alongside error", y)
			}
		})
	}
}

func TestDenoiseContextCanceled(t *testing.T) {
	x := mustArray(t, testutil.GaussianNoise(2, 1, 64))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, opts := range [][]Option{nil, {WithTranslationInvariant()}} {
		_, err := DenoiseContext(ctx, x, opts...)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	}
}

func TestWithLogger(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	x := mustArray(t, testutil.AddNoise(testutil.HeaviSine(64), 1, 0.1))
	mustDenoise(t, x, WithTranslationInvariant(4), WithLogger(logger))

	logs := out.String()
	for _, want := range []string{
		`"msg":"denoise plan"`,
		`"transform":"db4"`,
		`"shifts":4`,
		`"msg":"cycle spinning done"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("log output missing %s:\n%s", want, logs)
		}
	}
}

func TestNilOptionsIgnored(t *testing.T) {
	x := mustArray(t, testutil.AddNoise(testutil.HeaviSine(64), 1, 0.1))
	a := mustDenoise(t, x, nil, WithLogger(nil), WithWorkers(0))
	b := mustDenoise(t, x)
	testutil.RequireSliceEqual(t, a.Samples(), b.Samples())
}
