package quality

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrLengthMismatch is returned when compared signals differ in length.
var ErrLengthMismatch = errors.New("quality: signal lengths differ")

// Report compares a signal before and after denoising. The residual is
// input minus output, i.e. the component that was removed.
//
//nolint:revive
type Report struct {
	Length          int
	InputRMS        float64
	InputRMS_dB     float64
	OutputRMS       float64
	OutputRMS_dB    float64
	InputPeak       float64
	OutputPeak      float64
	ResidualRMS     float64
	ResidualDC      float64 // mean of the removed component
	ResidualKurt    float64 // excess kurtosis; near 0 for Gaussian residuals
	Reduction_dB    float64 // input RMS over output RMS
	EstimatedSNR    float64 // output RMS over residual RMS (linear)
	EstimatedSNR_dB float64
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

// ratioTodB returns 20 * log10(num/den), +Inf for a zero denominator
// with a non-zero numerator and 0 when both are zero.
func ratioTodB(num, den float64) float64 {
	switch {
	case den == 0 && num == 0:
		return 0
	case den == 0:
		return math.Inf(1)
	case num == 0:
		return math.Inf(-1)
	}

	return 20 * math.Log10(num/den)
}

// Compare reports how output differs from input.
func Compare(input, output []float64) (Report, error) {
	if len(input) != len(output) {
		return Report{}, ErrLengthMismatch
	}

	residual := make([]float64, len(input))
	floats.SubTo(residual, input, output)

	r := Report{
		Length:      len(input),
		InputRMS:    RMS(input),
		OutputRMS:   RMS(output),
		InputPeak:   Peak(input),
		OutputPeak:  Peak(output),
		ResidualRMS: RMS(residual),
	}
	r.InputRMS_dB = ampTodB(r.InputRMS)
	r.OutputRMS_dB = ampTodB(r.OutputRMS)
	r.Reduction_dB = ratioTodB(r.InputRMS, r.OutputRMS)
	r.EstimatedSNR_dB = ratioTodB(r.OutputRMS, r.ResidualRMS)
	if r.ResidualRMS > 0 {
		r.EstimatedSNR = r.OutputRMS / r.ResidualRMS
	} else {
		r.EstimatedSNR = math.Inf(1)
	}

	mean, _, _, kurt := Moments(residual)
	r.ResidualDC = mean
	r.ResidualKurt = kurt

	return r, nil
}

// SNR returns the signal-to-noise ratio in dB of estimate against a
// clean reference: 20*log10(rms(reference) / rms(reference - estimate)).
func SNR(reference, estimate []float64) (float64, error) {
	if len(reference) != len(estimate) {
		return 0, ErrLengthMismatch
	}

	diff := make([]float64, len(reference))
	floats.SubTo(diff, reference, estimate)

	return ratioTodB(RMS(reference), RMS(diff)), nil
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return floats.Norm(signal, 2) / math.Sqrt(float64(len(signal)))
}

// DC returns the mean (DC offset) of the signal.
func DC(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	// Kahan summation.
	var sum, c float64
	for _, x := range signal {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(signal))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		peak = math.Max(peak, math.Abs(x))
	}

	return peak
}

// Moments returns the mean, population variance, skewness, and excess kurtosis
// of the signal using Welford's online algorithm for numerical stability.
func Moments(signal []float64) (mean, variance, skewness, kurtosis float64) {
	n := len(signal)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var m2, m3, m4 float64

	for i, x := range signal {
		ni := float64(i + 1)
		delta := x - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)

		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(i)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN
	}

	nf := float64(n)

	variance = m2 / nf
	if variance > 0 {
		skewness = (m3 / nf) / (variance * math.Sqrt(variance))
		kurtosis = (m4/nf)/(variance*variance) - 3
	}

	return mean, variance, skewness, kurtosis
}
