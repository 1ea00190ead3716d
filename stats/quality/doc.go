// Package quality measures what a denoiser removed: RMS levels before and
// after, the residual's statistics and signal-to-noise ratios against a
// clean reference when one is known.
package quality
