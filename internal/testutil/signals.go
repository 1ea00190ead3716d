package testutil

import (
	"math"
	"math/rand"
)

// GaussianNoise generates zero-mean Gaussian noise with standard deviation
// sigma from a fixed seed for reproducibility.
func GaussianNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// AddNoise returns signal + GaussianNoise(seed, sigma, len(signal)).
func AddNoise(signal []float64, seed int64, sigma float64) []float64 {
	noise := GaussianNoise(seed, sigma, len(signal))
	for i, v := range signal {
		noise[i] += v
	}
	return noise
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// The test functions below are the Donoho-Johnstone benchmark signals,
// sampled at t = i/length.

var djPositions = []float64{0.1, 0.13, 0.15, 0.23, 0.25, 0.40, 0.44, 0.65, 0.76, 0.78, 0.81}

// HeaviSine is a sinusoid with two jumps.
func HeaviSine(length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		t := float64(i) / float64(length)
		out[i] = 4*math.Sin(4*math.Pi*t) - sign(t-0.3) - sign(0.72-t)
	}
	return out
}

// Doppler is a chirp with decreasing frequency and growing amplitude.
func Doppler(length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		t := float64(i) / float64(length)
		out[i] = math.Sqrt(t*(1-t)) * math.Sin(2*math.Pi*1.05/(t+0.05))
	}
	return out
}

// Blocks is a piecewise-constant signal.
func Blocks(length int) []float64 {
	heights := []float64{4, -5, 3, -4, 5, -4.2, 2.1, 4.3, -3.1, 2.1, -4.2}
	out := make([]float64, length)
	for i := range out {
		t := float64(i) / float64(length)
		for j, p := range djPositions {
			out[i] += heights[j] * (1 + sign(t-p)) / 2
		}
	}
	return out
}

// Bumps is a sum of narrow peaks.
func Bumps(length int) []float64 {
	heights := []float64{4, 5, 3, 4, 5, 4.2, 2.1, 4.3, 3.1, 5.1, 4.2}
	widths := []float64{0.005, 0.005, 0.006, 0.01, 0.01, 0.03, 0.01, 0.01, 0.005, 0.008, 0.005}
	out := make([]float64, length)
	for i := range out {
		t := float64(i) / float64(length)
		for j, p := range djPositions {
			out[i] += heights[j] * math.Pow(1+math.Abs((t-p)/widths[j]), -4)
		}
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
