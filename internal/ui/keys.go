// ABOUTME: Keyboard source for the single-line meter
// ABOUTME: Runs bubbletea without a renderer to read raw keypresses
package ui

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/Resonate-Protocol/soundlevel/internal/control"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

// Keys reads keypresses through bubbletea so escape sequences such as
// arrow keys are told apart from a bare Escape. The program has no renderer,
// so the terminal is put into raw mode here.
type Keys struct {
	program *tea.Program
	queue   *keyQueue
	done    chan struct{}

	file  *os.File
	state *term.State
	once  sync.Once
}

// NewKeys creates a key source reading input
func NewKeys(input io.Reader) *Keys {
	queue := newKeyQueue()
	k := &Keys{
		program: tea.NewProgram(newModel(queue),
			tea.WithoutRenderer(),
			tea.WithInput(input),
			tea.WithoutSignalHandler(),
		),
		queue: queue,
		done:  make(chan struct{}),
	}
	if f, ok := input.(*os.File); ok {
		k.file = f
	}
	return k
}

// Start enters raw mode when reading a terminal and starts reading keys.
// Input that cannot be read (a regular file, a closed stream) ends the
// source, which the control loop treats as quit.
func (k *Keys) Start() error {
	if k.file != nil && term.IsTerminal(k.file.Fd()) {
		state, err := term.MakeRaw(k.file.Fd())
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		k.state = state
	}

	go func() {
		if _, err := k.program.Run(); err != nil {
			log.Printf("Keyboard input ended: %v", err)
		}
		k.queue.close()
		close(k.done)
	}()
	return nil
}

// ReadKey blocks until a key arrives
func (k *Keys) ReadKey() (control.Key, error) {
	return k.queue.ReadKey()
}

// Close stops reading and restores the terminal
func (k *Keys) Close() error {
	var err error
	k.once.Do(func() {
		k.program.Quit()
		<-k.done
		if k.state != nil {
			if restoreErr := term.Restore(k.file.Fd(), k.state); restoreErr != nil {
				err = fmt.Errorf("failed to restore terminal: %w", restoreErr)
			}
		}
	})
	return err
}
