// Package wavelet provides the transform capability used by the denoising
// engine: multi-level separable transforms over N-dimensional arrays.
//
// # Transforms
//
//	Haar()        // orthonormal Haar, periodic boundary
//	Daubechies4() // 4-tap Daubechies, periodic boundary
//	Daubechies6() // 6-tap Daubechies, periodic boundary
//	DCT()         // orthonormal DCT-II, single scale, FFT based
//
// All shipped transforms are orthonormal, so Inverse is the exact inverse
// of Forward up to floating-point rounding and white noise keeps its
// standard deviation in every coefficient band.
//
// # Coefficient Layout
//
// Analysis along an axis of extent m stores the approximation in
// [0, m/2) and the detail in [m/2, m). Each further level repeats the
// analysis on the approximation corner of every non-singleton axis, which
// yields the standard Mallat pyramid. For a 1-D signal of length 8:
//
//	Forward(x, 3) -> [a3 | d3 | d2 d2 | d1 d1 d1 d1]
//
// DetailRange(8, 3) is the finest band [4, 8) and DetailRange(8, 1) the
// coarsest [1, 2).
package wavelet
