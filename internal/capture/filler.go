// ABOUTME: Block filler shared by capture backends
// ABOUTME: Copies device frames into the submitted block and signals when full
package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
)

// filler tracks the prepared block and copies incoming frames into it while
// it is submitted. Frames arriving while no block is submitted are dropped.
type filler struct {
	mu        sync.Mutex
	prepared  *Block
	submitted bool
	onFilled  FilledFunc
	dropped   atomic.Int64
}

func newFiller(onFilled FilledFunc) *filler {
	return &filler{onFilled: onFilled}
}

func (f *filler) prepare(b *Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b == nil || len(b.Samples) == 0 {
		return fmt.Errorf("%w: block has no samples", ErrPrepareFailed)
	}
	if f.prepared != nil {
		return fmt.Errorf("%w: a block is already prepared", ErrPrepareFailed)
	}
	f.prepared = b
	f.submitted = false
	return nil
}

func (f *filler) submit(b *Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.prepared == nil || b != f.prepared {
		return fmt.Errorf("%w: block not prepared", ErrSubmitFailed)
	}
	if f.submitted {
		return fmt.Errorf("%w: block already submitted", ErrSubmitFailed)
	}
	b.Recorded = 0
	f.submitted = true
	return nil
}

func (f *filler) unprepare(b *Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.prepared == nil || b != f.prepared {
		return errors.New("block not prepared")
	}
	f.prepared = nil
	f.submitted = false
	return nil
}

// write copies samples into the submitted block. When the block fills, the
// lock is released before onFilled runs so the handler can resubmit.
func (f *filler) write(samples []int16) {
	for len(samples) > 0 {
		f.mu.Lock()
		if !f.submitted {
			f.mu.Unlock()
			f.dropped.Add(int64(len(samples)))
			return
		}

		b := f.prepared
		n := copy(b.Samples[b.Recorded:], samples)
		b.Recorded += n
		samples = samples[n:]

		full := b.Full()
		if full {
			f.submitted = false
		}
		f.mu.Unlock()

		if full && f.onFilled != nil {
			f.onFilled(b)
		}
	}
}

// writeBytes decodes little-endian 16-bit frames and writes them
func (f *filler) writeBytes(raw []byte, scratch []int16) []int16 {
	need := len(raw) / 2
	if cap(scratch) < need {
		scratch = make([]int16, need)
	}
	scratch = scratch[:need]
	n := audio.DecodeS16LE(scratch, raw)
	f.write(scratch[:n])
	return scratch
}

// droppedSamples returns how many samples arrived with no block submitted
func (f *filler) droppedSamples() int64 {
	return f.dropped.Load()
}
