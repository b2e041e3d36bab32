// ABOUTME: Level calculation package for signed 16-bit PCM blocks
// ABOUTME: Provides RMS and decibel conversion used by the console meter
// Package level computes the loudness of a block of PCM samples.
//
// Levels are computed on raw integer sample magnitudes and converted to
// decibels relative to an amplitude of 1. The result is an uncalibrated
// reading: silence is -Inf and a full-scale square wave reads about 90.3 dB.
//
// Example:
//
//	r := level.Measure(samples)
//	fmt.Printf("%.1f dB\n", r.Decibels)
package level
