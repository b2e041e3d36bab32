// ABOUTME: Capture device interface and error kinds
// ABOUTME: Seam between the capture session and platform audio backends
package capture

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
)

// Error kinds reported by devices and sessions
var (
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	ErrDeviceBusy        = errors.New("audio input device busy")
	ErrPrepareFailed     = errors.New("failed to prepare capture block")
	ErrSubmitFailed      = errors.New("failed to submit capture block")
	ErrStartFailed       = errors.New("failed to start recording")
	ErrStopFailed        = errors.New("failed to stop recording")
	ErrTeardownFailed    = errors.New("capture teardown failed")
	ErrInvalidState      = errors.New("invalid capture session state")
)

// FilledFunc is invoked by a device when a submitted block is full.
// It runs on a device-owned thread and must not block.
type FilledFunc func(block *Block)

// Device is a platform audio input
type Device interface {
	// Open acquires the default input device for format
	Open(format audio.Format, onFilled FilledFunc) error

	// Prepare associates block memory with the device
	Prepare(block *Block) error

	// Submit hands a prepared block to the device for writing
	Submit(block *Block) error

	// Start begins asynchronous capture
	Start() error

	// Stop halts capture; one in-flight notification may still arrive
	Stop() error

	// Unprepare releases the association made by Prepare
	Unprepare(block *Block) error

	// Close releases the device
	Close() error
}

// Backend names accepted by NewDevice
const (
	BackendMalgo     = "malgo"
	BackendPortAudio = "portaudio"
)

// NewDevice creates the named capture backend
func NewDevice(backend string) (Device, error) {
	switch backend {
	case BackendMalgo, "":
		return NewMalgo(), nil
	case BackendPortAudio:
		return NewPortAudio(), nil
	default:
		return nil, fmt.Errorf("unknown capture backend: %q (supported: %s, %s)",
			backend, BackendMalgo, BackendPortAudio)
	}
}
