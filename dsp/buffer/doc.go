// Package buffer provides a dense N-dimensional float64 array and a pool
// for allocation-friendly reuse. All DSP kernels accept raw []float64
// slices; Array adds the shape information needed for axis-wise work
// (circular shifts, separable transforms) without copying samples.
package buffer
