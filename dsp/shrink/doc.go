// Package shrink provides coefficient shrinkage kernels for
// transform-domain denoising.
//
// Every kernel has an in-place form that mutates and returns its argument
// and a copy form that leaves the input untouched:
//
//	HardInPlace(x, t)   // x if |x| > t, else 0
//	SoftInPlace(x, t)   // sign(x)*max(|x|-t, 0)
//	SemiSoftInPlace(x, t)
//	SteinInPlace(x, t)  // x*max(1 - t²/x², 0)
//	BiggestTermsInPlace(x, m)
//	NegativeClipInPlace(x)
//	PositiveClipInPlace(x)
//
// Parameters are validated before any element is touched, so a failed
// call never leaves x partially shrunk.
//
// SemiSoft compares |x| against both t and 2t. Some published
// formulations test the signed x against 2t, which keeps large negative
// coefficients on the middle branch; this package does not, so
// SemiSoft(-x) == -SemiSoft(x) for every input.
//
// Stein leaves exact zeros at zero instead of evaluating 0/0.
//
// The Kernel type is a closed enumeration over the same rules; its values
// carry a Kernel prefix (KernelHard, KernelSoft, ...) so they do not clash
// with the copy-form functions. A Kernel can be
// parsed from and marshaled to its selector name, which makes it usable in
// configuration files and command-line flags.
package shrink
