package denoise

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/buffer"
	"github.com/cwbudde/algo-denoise/internal/testutil"
)

func BenchmarkDenoiseDirect(b *testing.B) {
	for _, n := range []int{1024, 16384} {
		x, _ := buffer.FromSlice(testutil.AddNoise(testutil.Doppler(n), 1, 0.1))
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Denoise(x); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDenoiseTranslationInvariant(b *testing.B) {
	x, _ := buffer.FromSlice(testutil.AddNoise(testutil.Doppler(4096), 1, 0.1))
	for _, w := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", w), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Denoise(x, WithTranslationInvariant(32), WithWorkers(w)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDenoise2D(b *testing.B) {
	x := buffer.NewArray(128, 128)
	copy(x.Samples(), testutil.AddNoise(testutil.Bumps(128*128), 2, 0.1))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Denoise(x, WithTranslationInvariant(2)); err != nil {
			b.Fatal(err)
		}
	}
}
