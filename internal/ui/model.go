// ABOUTME: Bubbletea model for the full-screen meter
// ABOUTME: Renders the level bar and forwards keys to the control loop
package ui

import (
	"fmt"
	"strings"

	"github.com/Resonate-Protocol/soundlevel/internal/control"
	"github.com/Resonate-Protocol/soundlevel/pkg/audio/level"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

// LevelMsg carries a new reading in decibels
type LevelMsg float64

// PausedMsg shows the paused banner until the next reading
type PausedMsg struct{}

// Model represents the meter TUI state
type Model struct {
	keys *keyQueue

	decibels   float64
	hasReading bool
	paused     bool
	quitting   bool

	width int
}

// newModel creates a meter model forwarding keys to queue
func newModel(queue *keyQueue) Model {
	return Model{keys: queue}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case LevelMsg:
		m.decibels = float64(msg)
		m.hasReading = true
		m.paused = false
	case PausedMsg:
		m.paused = true
	}

	return m, nil
}

// handleKey forwards the key and quits the program on Escape
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := keyFromMsg(msg)
	if m.keys != nil {
		m.keys.push(key)
	}
	if key == control.KeyEscape {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the meter
func (m Model) View() string {
	if m.quitting {
		return "Stopping capture...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	pausedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("Sound Level Meter"))
	b.WriteString("\n\n")

	switch {
	case m.paused:
		b.WriteString(pausedStyle.Render("PAUSED"))
	case !m.hasReading:
		b.WriteString(valueStyle.Render("Waiting for audio..."))
	default:
		b.WriteString(fmt.Sprintf("[%s] ", renderBar(m.decibels, level.MaxDecibels, barWidth)))
		b.WriteString(valueStyle.Render(LevelLine(m.decibels)))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("enter: pause/resume  esc: quit"))
	b.WriteString("\n")

	return b.String()
}

// keyFromMsg maps bubbletea keys to control keys
func keyFromMsg(msg tea.KeyMsg) control.Key {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return control.KeyEscape
	case tea.KeyEnter:
		return control.KeyEnter
	default:
		return control.KeyOther
	}
}

// renderBar draws value against max; negative and -Inf readings are empty
func renderBar(value, max float64, width int) string {
	filled := 0
	if value > 0 && max > 0 {
		filled = int(value / max * float64(width))
	}
	if filled > width {
		filled = width
	}

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
