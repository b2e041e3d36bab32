//go:build portaudio

// ABOUTME: PortAudio capture backend
// ABOUTME: Records the default input stream using PortAudio
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio captures from the default input stream
type PortAudio struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	filler *filler
}

// NewPortAudio creates an unopened PortAudio capture device
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open initializes PortAudio and opens the default input stream
func (p *PortAudio) Open(format audio.Format, onFilled FilledFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return fmt.Errorf("%w: stream already open", ErrDeviceBusy)
	}
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: failed to initialize portaudio: %v", ErrDeviceUnavailable, err)
	}

	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	p.filler = newFiller(onFilled)

	stream, err := portaudio.OpenDefaultStream(format.Channels, 0, float64(format.SampleRate), 0, func(in []int16) {
		p.filler.write(in)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: failed to open stream: %v", ErrDeviceBusy, err)
	}

	p.stream = stream
	log.Printf("Capture device initialized: %s (portaudio, %s)", format, info.Name)
	return nil
}

// Prepare associates block with the stream
func (p *PortAudio) Prepare(block *Block) error {
	if p.filler == nil {
		return fmt.Errorf("%w: stream not open", ErrPrepareFailed)
	}
	return p.filler.prepare(block)
}

// Submit arms block to receive the next captured frames
func (p *PortAudio) Submit(block *Block) error {
	if p.filler == nil {
		return fmt.Errorf("%w: stream not open", ErrSubmitFailed)
	}
	return p.filler.submit(block)
}

// Start starts the stream
func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("%w: stream not open", ErrStartFailed)
	}
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	return nil
}

// Stop stops the stream
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("%w: stream not open", ErrStopFailed)
	}
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}
	if dropped := p.filler.droppedSamples(); dropped > 0 {
		log.Printf("Capture dropped %d samples while no block was submitted", dropped)
	}
	return nil
}

// Unprepare releases block
func (p *PortAudio) Unprepare(block *Block) error {
	if p.filler == nil {
		return fmt.Errorf("%w: stream not open", ErrTeardownFailed)
	}
	if err := p.filler.unprepare(block); err != nil {
		return fmt.Errorf("%w: %v", ErrTeardownFailed, err)
	}
	return nil
}

// Close closes the stream and terminates PortAudio
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return fmt.Errorf("%w: stream not open", ErrTeardownFailed)
	}

	closeErr := p.stream.Close()
	p.stream = nil
	termErr := portaudio.Terminate()

	if closeErr != nil {
		return fmt.Errorf("%w: %v", ErrTeardownFailed, closeErr)
	}
	if termErr != nil {
		return fmt.Errorf("%w: %v", ErrTeardownFailed, termErr)
	}
	return nil
}
