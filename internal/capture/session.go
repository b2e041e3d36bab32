// ABOUTME: Capture session lifecycle and block notification handler
// ABOUTME: Drives open/prepare/submit/start/stop/unprepare/close on a Device
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
	"github.com/Resonate-Protocol/soundlevel/pkg/audio/level"
	"github.com/google/uuid"
)

// State is the lifecycle position of a session
type State int32

const (
	StateClosed State = iota
	StateOpened
	StateHeaderPrepared
	StateRecording
	StateStopped
	StateHeaderUnprepared
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpened:
		return "opened"
	case StateHeaderPrepared:
		return "header-prepared"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	case StateHeaderUnprepared:
		return "header-unprepared"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Pauser reports whether level updates are suspended
type Pauser interface {
	Paused() bool
}

// LevelSink receives a decibel reading for every filled block
type LevelSink interface {
	PrintLevel(decibels float64)
}

// Session owns the sample block and the device lifecycle
type Session struct {
	id     string
	device Device
	format audio.Format
	block  *Block
	pause  Pauser
	sink   LevelSink

	// mu serializes lifecycle calls. The notification handler never takes it.
	mu    sync.Mutex
	state atomic.Int32

	resubmitFailed atomic.Bool
	blocks         atomic.Int64
}

// NewSession creates a closed session recording format from device
func NewSession(device Device, format audio.Format, pause Pauser, sink LevelSink) *Session {
	return &Session{
		id:     uuid.New().String(),
		device: device,
		format: format,
		block:  NewBlock(format),
		pause:  pause,
		sink:   sink,
	}
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Blocks returns how many filled blocks have been handled
func (s *Session) Blocks() int64 {
	return s.blocks.Load()
}

// Setup opens, prepares, submits and starts. It stops at the first failure
// and does not undo the steps already taken.
func (s *Session) Setup() error {
	if err := s.Open(); err != nil {
		return err
	}
	if err := s.Prepare(); err != nil {
		return err
	}
	if err := s.Submit(); err != nil {
		return err
	}
	return s.Start()
}

// Teardown stops, unprepares and closes. Every step is attempted; the
// failures are returned joined.
func (s *Session) Teardown() error {
	return errors.Join(s.Stop(), s.Unprepare(), s.Close())
}

// Open acquires the device
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("open", StateClosed); err != nil {
		return err
	}
	if err := s.device.Open(s.format, s.handleFilled); err != nil {
		if !errors.Is(err, ErrDeviceUnavailable) && !errors.Is(err, ErrDeviceBusy) {
			err = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		return err
	}

	s.state.Store(int32(StateOpened))
	log.Printf("[%s] capture device opened (%s)", s.id, s.format)
	return nil
}

// Prepare associates the block with the device
func (s *Session) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("prepare", StateOpened); err != nil {
		return err
	}
	if err := s.device.Prepare(s.block); err != nil {
		return ensureKind(err, ErrPrepareFailed)
	}

	s.state.Store(int32(StateHeaderPrepared))
	return nil
}

// Submit hands the block to the device. Required before Start and after
// every fill.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("submit", StateHeaderPrepared, StateRecording); err != nil {
		return err
	}
	if err := s.device.Submit(s.block); err != nil {
		return ensureKind(err, ErrSubmitFailed)
	}
	return nil
}

// Start begins recording
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("start", StateHeaderPrepared); err != nil {
		return err
	}
	// Set before starting so the first notification resubmits.
	s.state.Store(int32(StateRecording))
	if err := s.device.Start(); err != nil {
		s.state.Store(int32(StateHeaderPrepared))
		return ensureKind(err, ErrStartFailed)
	}

	log.Printf("[%s] recording started", s.id)
	return nil
}

// Stop halts recording. The session moves to Stopped even on failure so the
// remaining teardown steps still run.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("stop", StateRecording); err != nil {
		return err
	}
	s.state.Store(int32(StateStopped))
	if err := s.device.Stop(); err != nil {
		return ensureKind(err, ErrStopFailed)
	}

	log.Printf("[%s] recording stopped after %d blocks", s.id, s.blocks.Load())
	return nil
}

// Unprepare releases the block from the device
func (s *Session) Unprepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("unprepare", StateStopped); err != nil {
		return err
	}
	s.state.Store(int32(StateHeaderUnprepared))
	if err := s.device.Unprepare(s.block); err != nil {
		return ensureKind(err, ErrTeardownFailed)
	}
	return nil
}

// Close releases the device
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect("close", StateHeaderUnprepared); err != nil {
		return err
	}
	s.state.Store(int32(StateClosed))
	if err := s.device.Close(); err != nil {
		return ensureKind(err, ErrTeardownFailed)
	}

	log.Printf("[%s] capture device closed", s.id)
	return nil
}

// handleFilled runs on the device thread for every filled block
func (s *Session) handleFilled(block *Block) {
	s.blocks.Add(1)

	if !s.pause.Paused() {
		r := level.Measure(block.Filled())
		s.sink.PrintLevel(r.Decibels)
	}

	if s.State() != StateRecording {
		return
	}
	if err := s.device.Submit(block); err != nil {
		if s.resubmitFailed.CompareAndSwap(false, true) {
			log.Printf("[%s] resubmit failed, meter will stop updating: %v", s.id, err)
		}
	}
}

func (s *Session) expect(op string, allowed ...State) error {
	cur := s.State()
	for _, st := range allowed {
		if cur == st {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, cur)
}

// ensureKind wraps err with kind unless it already matches
func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
