// ABOUTME: Sample block owned by a capture session
// ABOUTME: Single fixed-size buffer recycled between device and handler
package capture

import "github.com/Resonate-Protocol/soundlevel/pkg/audio"

// Block is the single sample buffer a session records into
type Block struct {
	Samples  []int16
	Recorded int // samples written since the last submit
}

// NewBlock allocates a one-second block for format
func NewBlock(format audio.Format) *Block {
	return &Block{
		Samples: make([]int16, format.BlockSamples()),
	}
}

// Filled returns the recorded region of the block
func (b *Block) Filled() []int16 {
	return b.Samples[:b.Recorded]
}

// Full reports whether the device has written the whole block
func (b *Block) Full() bool {
	return b.Recorded >= len(b.Samples)
}
