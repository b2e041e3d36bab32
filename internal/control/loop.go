// ABOUTME: Keyboard control loop
// ABOUTME: Reads keys and toggles pause or requests quit
package control

import (
	"errors"
	"fmt"
	"io"
	"log"
)

// Key is a keypress the control loop reacts to
type Key int

const (
	KeyOther Key = iota
	KeyEnter
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	default:
		return "other"
	}
}

// KeySource delivers one keypress at a time. ReadKey blocks until a key
// arrives and returns io.EOF once the source is closed.
type KeySource interface {
	ReadKey() (Key, error)
}

// StatusPrinter shows the fixed paused status line
type StatusPrinter interface {
	PrintPaused()
}

// Loop reads keys until Escape is pressed or the source ends.
// A closed source is treated as a quit request.
func Loop(src KeySource, state *State, out StatusPrinter) error {
	for state.Running() {
		key, err := src.ReadKey()
		if err != nil {
			state.Quit()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read key: %w", err)
		}

		switch key {
		case KeyEscape:
			log.Printf("Quit requested")
			state.Quit()
			return nil
		case KeyEnter:
			if state.TogglePaused() {
				log.Printf("Metering paused")
				out.PrintPaused()
			} else {
				log.Printf("Metering resumed")
			}
		}
	}
	return nil
}
