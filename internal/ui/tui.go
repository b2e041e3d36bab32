// ABOUTME: Full-screen meter program and its key queue
// ABOUTME: Wraps the bubbletea program for the control loop and capture callback
package ui

import (
	"io"
	"sync"

	"github.com/Resonate-Protocol/soundlevel/internal/control"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	keyQueueSize    = 16
	updateQueueSize = 8
)

// keyQueue hands keys from the bubbletea goroutine to the control loop
type keyQueue struct {
	ch   chan control.Key
	done chan struct{}
	once sync.Once
}

func newKeyQueue() *keyQueue {
	return &keyQueue{
		ch:   make(chan control.Key, keyQueueSize),
		done: make(chan struct{}),
	}
}

func (q *keyQueue) push(key control.Key) {
	select {
	case q.ch <- key:
	default:
		// Don't block the UI if the loop is behind
	}
}

// ReadKey blocks until a key is queued or the queue is closed
func (q *keyQueue) ReadKey() (control.Key, error) {
	select {
	case key := <-q.ch:
		return key, nil
	case <-q.done:
		// Keys queued before the program exited still count
		select {
		case key := <-q.ch:
			return key, nil
		default:
			return control.KeyOther, io.EOF
		}
	}
}

func (q *keyQueue) close() {
	q.once.Do(func() { close(q.done) })
}

// Meter runs the full-screen meter
type Meter struct {
	program *tea.Program
	keys    *keyQueue
	updates chan tea.Msg
	done    chan struct{}
	err     error
}

// NewMeter creates a full-screen meter reading input and drawing to output
func NewMeter(input io.Reader, output io.Writer) *Meter {
	keys := newKeyQueue()
	p := tea.NewProgram(newModel(keys),
		tea.WithAltScreen(),
		tea.WithInput(input),
		tea.WithOutput(output),
	)

	return &Meter{
		program: p,
		keys:    keys,
		updates: make(chan tea.Msg, updateQueueSize),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background
func (m *Meter) Start() {
	go func() {
		_, m.err = m.program.Run()
		m.keys.close()
		close(m.done)
	}()
	go m.forwardUpdates()
}

// forwardUpdates feeds readings to the program so the capture callback never
// waits on the event loop
func (m *Meter) forwardUpdates() {
	for {
		select {
		case msg := <-m.updates:
			m.program.Send(msg)
		case <-m.done:
			return
		}
	}
}

// ReadKey returns the next key pressed in the meter
func (m *Meter) ReadKey() (control.Key, error) {
	return m.keys.ReadKey()
}

// PrintLevel shows a new reading
func (m *Meter) PrintLevel(decibels float64) {
	m.send(LevelMsg(decibels))
}

// PrintPaused shows the paused banner
func (m *Meter) PrintPaused() {
	m.send(PausedMsg{})
}

func (m *Meter) send(msg tea.Msg) {
	select {
	case m.updates <- msg:
	default:
		// Drop the update if the display is behind
	}
}

// Close quits the program and waits for the terminal to be restored
func (m *Meter) Close() error {
	m.program.Quit()
	<-m.done
	return m.err
}
