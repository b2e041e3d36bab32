// ABOUTME: Single-line console presentation
// ABOUTME: Overwrites the current terminal line with the latest level
package ui

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
)

const (
	levelPadding  = "            "
	levelLineHead = "Current Sound Level: "
)

// pausedLine is padded to cover the longest level line plus its padding
var pausedLine = "PAUSED" + strings.Repeat(" ", 41)

// LinePrinter writes readings over a single console line
type LinePrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLinePrinter creates a printer writing to w
func NewLinePrinter(w io.Writer) *LinePrinter {
	return &LinePrinter{w: w}
}

// PrintLevel overwrites the line with the current level
func (p *LinePrinter) PrintLevel(decibels float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r"+LevelLine(decibels)+levelPadding)
}

// PrintPaused overwrites the line with the paused status
func (p *LinePrinter) PrintPaused() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r"+pausedLine)
}

// Finish moves the cursor off the meter line
func (p *LinePrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\n")
}

// LevelLine formats a reading without carriage return or padding
func LevelLine(decibels float64) string {
	return levelLineHead + FormatDecibels(decibels) + " dB"
}

// FormatDecibels renders a level with six significant digits
func FormatDecibels(decibels float64) string {
	switch {
	case math.IsInf(decibels, -1):
		return "-inf"
	case math.IsInf(decibels, 1):
		return "inf"
	case math.IsNaN(decibels):
		return "nan"
	}
	return strconv.FormatFloat(decibels, 'g', 6, 64)
}
