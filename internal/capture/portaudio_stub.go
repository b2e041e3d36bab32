//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package capture

import (
	"fmt"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
)

// PortAudio capture implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio capture device
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open reports that PortAudio was not compiled in
func (p *PortAudio) Open(format audio.Format, onFilled FilledFunc) error {
	return fmt.Errorf("%w: PortAudio support not enabled (build with -tags portaudio)", ErrDeviceUnavailable)
}

func (p *PortAudio) Prepare(block *Block) error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrPrepareFailed)
}

func (p *PortAudio) Submit(block *Block) error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrSubmitFailed)
}

func (p *PortAudio) Start() error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrStartFailed)
}

func (p *PortAudio) Stop() error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrStopFailed)
}

func (p *PortAudio) Unprepare(block *Block) error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrTeardownFailed)
}

func (p *PortAudio) Close() error {
	return fmt.Errorf("%w: PortAudio support not enabled", ErrTeardownFailed)
}
