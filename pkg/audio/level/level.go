// ABOUTME: RMS and decibel computation
// ABOUTME: Converts a block of 16-bit samples into a level reading
package level

import "math"

const (
	// Reference is the amplitude that reads as 0 dB
	Reference = 1.0

	// MaxDecibels is the level of a full-scale 16-bit signal (20*log10(32768))
	MaxDecibels = 90.30899869919435
)

// Reading is the level of a single block
type Reading struct {
	RMS      float64
	Decibels float64
}

// ComputeRMS returns the root-mean-square of samples.
// An empty block has no energy and returns 0.
func ComputeRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// RMSToDecibels converts an RMS amplitude to decibels relative to Reference.
// Returns -Inf for an RMS of exactly zero.
func RMSToDecibels(rms float64) float64 {
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/Reference)
}

// Measure computes the RMS and decibel level of samples
func Measure(samples []int16) Reading {
	rms := ComputeRMS(samples)
	return Reading{
		RMS:      rms,
		Decibels: RMSToDecibels(rms),
	}
}
