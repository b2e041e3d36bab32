// ABOUTME: Malgo-based capture backend
// ABOUTME: Records the default input through miniaudio via malgo
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo captures from the default input device using miniaudio
type Malgo struct {
	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	filler   *filler
	scratch  []int16 // only touched on the device thread
}

// NewMalgo creates an unopened malgo capture device
func NewMalgo() *Malgo {
	return &Malgo{}
}

// Open initializes a miniaudio context and capture device for format
func (m *Malgo) Open(format audio.Format, onFilled FilledFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("%w: device already open", ErrDeviceBusy)
	}
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize malgo context: %v", ErrDeviceUnavailable, err)
	}

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil || len(infos) == 0 {
		freeContext(ctx)
		if err == nil {
			err = fmt.Errorf("no capture devices reported")
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	m.filler = newFiller(onFilled)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.scratch = m.filler.writeBytes(pInputSamples, m.scratch)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		freeContext(ctx)
		return fmt.Errorf("%w: failed to initialize capture device: %v", ErrDeviceBusy, err)
	}

	m.malgoCtx = ctx
	m.device = device

	log.Printf("Capture device initialized: %s (malgo, %d devices available)", format, len(infos))
	return nil
}

// Prepare associates block with the device
func (m *Malgo) Prepare(block *Block) error {
	if m.filler == nil {
		return fmt.Errorf("%w: device not open", ErrPrepareFailed)
	}
	return m.filler.prepare(block)
}

// Submit arms block to receive the next captured frames
func (m *Malgo) Submit(block *Block) error {
	if m.filler == nil {
		return fmt.Errorf("%w: device not open", ErrSubmitFailed)
	}
	return m.filler.submit(block)
}

// Start starts the miniaudio device
func (m *Malgo) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return fmt.Errorf("%w: device not open", ErrStartFailed)
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrStartFailed, err)
	}
	return nil
}

// Stop stops the miniaudio device
func (m *Malgo) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return fmt.Errorf("%w: device not open", ErrStopFailed)
	}
	if err := m.device.Stop(); err != nil {
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}
	if dropped := m.filler.droppedSamples(); dropped > 0 {
		log.Printf("Capture dropped %d samples while no block was submitted", dropped)
	}
	return nil
}

// Unprepare releases block
func (m *Malgo) Unprepare(block *Block) error {
	if m.filler == nil {
		return fmt.Errorf("%w: device not open", ErrTeardownFailed)
	}
	if err := m.filler.unprepare(block); err != nil {
		return fmt.Errorf("%w: %v", ErrTeardownFailed, err)
	}
	return nil
}

// Close uninitializes the device and context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return fmt.Errorf("%w: device not open", ErrTeardownFailed)
	}
	m.device.Uninit()
	m.device = nil

	var err error
	if uninitErr := m.malgoCtx.Uninit(); uninitErr != nil {
		err = fmt.Errorf("%w: malgo context uninit: %v", ErrTeardownFailed, uninitErr)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
	return err
}

func freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	ctx.Free()
}
