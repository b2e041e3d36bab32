// ABOUTME: Audio type definitions
// ABOUTME: Defines the capture format and 16-bit PCM conversion
package audio

import (
	"encoding/binary"
	"fmt"
)

// Format describes a linear PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// CaptureFormat is the format the meter opens the input device with
var CaptureFormat = Format{
	SampleRate: 44100,
	Channels:   1,
	BitDepth:   16,
}

// BlockAlign returns bytes per sample frame
func (f Format) BlockAlign() int {
	return f.Channels * f.BitDepth / 8
}

// ByteRate returns the average number of bytes per second
func (f Format) ByteRate() int {
	return f.SampleRate * f.BlockAlign()
}

// BlockSamples returns the number of samples in a one-second block
func (f Format) BlockSamples() int {
	return f.SampleRate * f.Channels
}

// String returns a short human-readable description
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// Validate checks that the format describes signed 16-bit PCM
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", f.BitDepth)
	}
	return nil
}

// DecodeS16LE decodes little-endian 16-bit samples from src into dst.
// Returns the number of samples written, bounded by len(dst) and len(src)/2.
func DecodeS16LE(dst []int16, src []byte) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}
