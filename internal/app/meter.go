// ABOUTME: Main meter application orchestration
// ABOUTME: Coordinates capture session, control loop and display
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/Resonate-Protocol/soundlevel/internal/capture"
	"github.com/Resonate-Protocol/soundlevel/internal/control"
	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
	"golang.org/x/sync/errgroup"
)

// Process exit codes
const (
	ExitOK           = 0
	ExitSetupFailure = 1
)

// Display shows readings and the paused status
type Display interface {
	PrintLevel(decibels float64)
	PrintPaused()
}

// Config holds meter dependencies
type Config struct {
	Device  capture.Device
	Format  audio.Format
	Keys    control.KeySource
	Display Display
	Stderr  io.Writer
}

// Meter represents the main meter application
type Meter struct {
	config  Config
	state   *control.State
	session *capture.Session
}

// New creates a new meter
func New(config Config) *Meter {
	state := control.NewState()

	return &Meter{
		config:  config,
		state:   state,
		session: capture.NewSession(config.Device, config.Format, state, config.Display),
	}
}

// State returns the shared control state
func (m *Meter) State() *control.State {
	return m.state
}

// Session returns the capture session
func (m *Meter) Session() *capture.Session {
	return m.session
}

// Run sets up capture, waits for the control loop to finish and tears
// capture down. Cancelling ctx requests quit like Escape does.
func (m *Meter) Run(ctx context.Context) int {
	if err := m.session.Setup(); err != nil {
		m.report(err)
		return ExitSetupFailure
	}

	log.Printf("Metering started, session %s", m.session.ID())

	g, gctx := errgroup.WithContext(ctx)
	loopDone := make(chan struct{})

	g.Go(func() error {
		defer close(loopDone)
		return control.Loop(m.config.Keys, m.state, m.config.Display)
	})

	g.Go(func() error {
		select {
		case <-loopDone:
		case <-gctx.Done():
			log.Printf("Shutdown requested")
			m.state.Quit()
			if closer, ok := m.config.Keys.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					log.Printf("Error closing key source: %v", err)
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Control loop ended: %v", err)
	}

	if err := m.session.Teardown(); err != nil {
		m.report(err)
	}

	log.Printf("Metering stopped after %d blocks", m.session.Blocks())
	return ExitOK
}

// report writes each error on its own line to stderr and the log
func (m *Meter) report(err error) {
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	for _, e := range errs {
		log.Printf("Error: %v", e)
		if m.config.Stderr != nil {
			fmt.Fprintln(m.config.Stderr, describe(e))
		}
	}
}

// describe prefixes errors with the step that failed
func describe(err error) string {
	switch {
	case errors.Is(err, capture.ErrDeviceUnavailable), errors.Is(err, capture.ErrDeviceBusy):
		return fmt.Sprintf("Failed to open audio input device: %v", err)
	case errors.Is(err, capture.ErrPrepareFailed):
		return fmt.Sprintf("Failed to prepare header: %v", err)
	case errors.Is(err, capture.ErrSubmitFailed):
		return fmt.Sprintf("Failed to add buffer: %v", err)
	case errors.Is(err, capture.ErrStartFailed):
		return fmt.Sprintf("Failed to start recording: %v", err)
	case errors.Is(err, capture.ErrStopFailed):
		return fmt.Sprintf("Failed to stop recording: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
