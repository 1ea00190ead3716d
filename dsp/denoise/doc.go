// Package denoise implements transform-domain denoising by coefficient
// shrinkage, with optional translation invariance by cycle spinning.
//
// A call resolves a plan before touching any data: the transform
// (default DefaultTransform), the number of levels, the Strategy (default
// VisuShrink) and the noise level (default: MAD estimate from the finest
// detail band, see package noise). It then either
//
//   - direct mode: transforms a copy of the signal, shrinks every
//     coefficient at threshold sigma*T and reconstructs, or
//   - translation invariant mode: repeats the direct pipeline for every
//     circular shift of the signal in a shift lattice, shifts each
//     reconstruction back and averages them.
//
// Cycle spinning over P shifts costs P direct runs. The shifts are spread
// over a bounded number of goroutines, each summing into a private
// buffer; the partial sums are reduced in a fixed order, so results are
// bit-for-bit reproducible for a given worker count. Use DenoiseContext to
// cancel long runs.
//
// Example:
//
//	x, _ := buffer.FromSlice(samples)
//	y, err := denoise.Denoise(x,
//		denoise.WithTransform(wavelet.Daubechies6()),
//		denoise.WithStrategy(denoise.Strategy{Kernel: shrink.KernelSoft, T: 2}),
//		denoise.WithTranslationInvariant(16),
//	)
package denoise
