// ABOUTME: Shared control state for the meter
// ABOUTME: Running and paused flags shared by the control loop and capture callback
package control

import "sync/atomic"

// State holds the running and paused flags. The control loop is the only
// writer of paused; readers may briefly observe a stale value.
type State struct {
	running atomic.Bool
	paused  atomic.Bool
}

// NewState returns a running, unpaused state
func NewState() *State {
	s := &State{}
	s.running.Store(true)
	return s
}

// Running reports whether quit has not been requested
func (s *State) Running() bool {
	return s.running.Load()
}

// Paused reports whether level updates are suspended
func (s *State) Paused() bool {
	return s.paused.Load()
}

// Quit requests shutdown
func (s *State) Quit() {
	s.running.Store(false)
}

// TogglePaused flips the paused flag and returns the new value
func (s *State) TogglePaused() bool {
	paused := !s.paused.Load()
	s.paused.Store(paused)
	return paused
}
