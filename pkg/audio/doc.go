// ABOUTME: Audio fundamentals package providing capture format and sample helpers
// ABOUTME: Defines Format and 16-bit PCM decoding used by the level meter
// Package audio provides the fundamental audio types used by the level meter.
//
// This package defines:
//   - Format: describes a linear PCM stream (sample rate, channels, bit depth)
//   - CaptureFormat: the fixed 44.1kHz mono 16-bit format the meter records
//
// It also provides helpers for decoding signed 16-bit little-endian PCM.
//
// Example:
//
//	format := audio.CaptureFormat
//	block := make([]int16, format.SampleRate) // one second of mono audio
//	n := audio.DecodeS16LE(block, raw)
package audio
