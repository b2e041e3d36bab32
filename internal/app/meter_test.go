// ABOUTME: Tests for meter application orchestration
// ABOUTME: Tests setup failures, teardown order and key driven shutdown
package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/soundlevel/internal/capture"
	"github.com/Resonate-Protocol/soundlevel/internal/control"
	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
)

var testFormat = audio.Format{SampleRate: 4, Channels: 1, BitDepth: 16}

type fakeDevice struct {
	mu       sync.Mutex
	calls    []string
	fail     map[string]error
	block    *capture.Block
	onFilled capture.FilledFunc
	started  chan struct{}
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		fail:    make(map[string]error),
		started: make(chan struct{}),
	}
}

func (d *fakeDevice) record(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, op)
	return d.fail[op]
}

func (d *fakeDevice) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDevice) Open(format audio.Format, onFilled capture.FilledFunc) error {
	d.onFilled = onFilled
	return d.record("open")
}

func (d *fakeDevice) Prepare(block *capture.Block) error {
	d.block = block
	return d.record("prepare")
}

func (d *fakeDevice) Submit(block *capture.Block) error { return d.record("submit") }

func (d *fakeDevice) Start() error {
	if err := d.record("start"); err != nil {
		return err
	}
	close(d.started)
	return nil
}

func (d *fakeDevice) Stop() error                         { return d.record("stop") }
func (d *fakeDevice) Unprepare(block *capture.Block) error { return d.record("unprepare") }
func (d *fakeDevice) Close() error                        { return d.record("close") }

// fill delivers samples as a completed block
func (d *fakeDevice) fill(samples []int16) {
	d.block.Recorded = copy(d.block.Samples, samples)
	d.onFilled(d.block)
}

// chanKeys feeds keys from a channel and ends when closed
type chanKeys struct {
	ch     chan control.Key
	once   sync.Once
	closed chan struct{}
}

func newChanKeys() *chanKeys {
	return &chanKeys{ch: make(chan control.Key), closed: make(chan struct{})}
}

func (k *chanKeys) ReadKey() (control.Key, error) {
	select {
	case key := <-k.ch:
		return key, nil
	case <-k.closed:
		return control.KeyOther, io.EOF
	}
}

func (k *chanKeys) Close() error {
	k.once.Do(func() { close(k.closed) })
	return nil
}

type recordingDisplay struct {
	mu     sync.Mutex
	levels []float64
	paused int
}

func (d *recordingDisplay) PrintLevel(db float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels = append(d.levels, db)
}

func (d *recordingDisplay) PrintPaused() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused++
}

func (d *recordingDisplay) Levels() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]float64(nil), d.levels...)
}

type runResult struct {
	code int
}

func startMeter(t *testing.T, ctx context.Context, dev *fakeDevice, keys control.KeySource, display Display, stderr io.Writer) (*Meter, <-chan runResult) {
	t.Helper()
	meter := New(Config{
		Device:  dev,
		Format:  testFormat,
		Keys:    keys,
		Display: display,
		Stderr:  stderr,
	})

	done := make(chan runResult, 1)
	go func() {
		done <- runResult{code: meter.Run(ctx)}
	}()
	return meter, done
}

func waitResult(t *testing.T, done <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("meter did not exit")
		return runResult{}
	}
}

func TestRunOpenFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.fail["open"] = errors.New("no microphone")
	var stderr bytes.Buffer

	_, done := startMeter(t, context.Background(), dev, newChanKeys(), &recordingDisplay{}, &stderr)
	result := waitResult(t, done)

	if result.code != ExitSetupFailure {
		t.Errorf("expected exit code %d, got %d", ExitSetupFailure, result.code)
	}
	if got := dev.Calls(); !reflect.DeepEqual(got, []string{"open"}) {
		t.Errorf("expected only open to be attempted, got %v", got)
	}
	if !strings.Contains(stderr.String(), "Failed to open audio input device") {
		t.Errorf("expected open failure on stderr, got %q", stderr.String())
	}
}

func TestRunSetupFailures(t *testing.T) {
	tests := []struct {
		failOp  string
		message string
	}{
		{"prepare", "Failed to prepare header"},
		{"submit", "Failed to add buffer"},
		{"start", "Failed to start recording"},
	}

	for _, tt := range tests {
		t.Run(tt.failOp, func(t *testing.T) {
			dev := newFakeDevice()
			dev.fail[tt.failOp] = errors.New("driver rejected")
			var stderr bytes.Buffer

			_, done := startMeter(t, context.Background(), dev, newChanKeys(), &recordingDisplay{}, &stderr)
			if code := waitResult(t, done).code; code != ExitSetupFailure {
				t.Errorf("expected exit code %d, got %d", ExitSetupFailure, code)
			}

			calls := dev.Calls()
			if calls[len(calls)-1] != tt.failOp {
				t.Errorf("expected setup to stop at %s, got %v", tt.failOp, calls)
			}
			if !strings.Contains(stderr.String(), tt.message) {
				t.Errorf("expected %q on stderr, got %q", tt.message, stderr.String())
			}
		})
	}
}

func TestRunEscapeTearsDownInOrder(t *testing.T) {
	dev := newFakeDevice()
	dev.fail["stop"] = errors.New("stop rejected")
	dev.fail["unprepare"] = errors.New("unprepare rejected")
	dev.fail["close"] = errors.New("close rejected")
	keys := newChanKeys()
	var stderr bytes.Buffer

	_, done := startMeter(t, context.Background(), dev, keys, &recordingDisplay{}, &stderr)
	<-dev.started
	keys.ch <- control.KeyEscape

	if code := waitResult(t, done).code; code != ExitOK {
		t.Errorf("expected exit code %d, got %d", ExitOK, code)
	}

	expected := []string{"open", "prepare", "submit", "start", "stop", "unprepare", "close"}
	if got := dev.Calls(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected calls %v, got %v", expected, got)
	}

	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 teardown errors on stderr, got %q", stderr.String())
	}
	if !strings.Contains(lines[0], "Failed to stop recording") {
		t.Errorf("expected stop failure first, got %q", lines[0])
	}
}

func TestRunSilenceAndPause(t *testing.T) {
	dev := newFakeDevice()
	keys := newChanKeys()
	display := &recordingDisplay{}

	meter, done := startMeter(t, context.Background(), dev, keys, display, io.Discard)
	<-dev.started

	dev.fill([]int16{0, 0, 0, 0})
	levels := display.Levels()
	if len(levels) != 1 || !math.IsInf(levels[0], -1) {
		t.Fatalf("expected a single -Inf reading for silence, got %v", levels)
	}

	keys.ch <- control.KeyEnter
	// The unbuffered send returns once the loop has the key; the next send
	// returns once the toggle has been applied.
	keys.ch <- control.KeyOther
	if !meter.State().Paused() {
		t.Fatal("expected meter to be paused after enter")
	}

	dev.fill([]int16{1000, -1000, 1000, -1000})
	if got := len(display.Levels()); got != 1 {
		t.Errorf("expected no new readings while paused, got %d", got)
	}

	keys.ch <- control.KeyEscape
	if code := waitResult(t, done).code; code != ExitOK {
		t.Errorf("expected exit code %d, got %d", ExitOK, code)
	}
	if meter.Session().Blocks() != 2 {
		t.Errorf("expected 2 handled blocks, got %d", meter.Session().Blocks())
	}
}

func TestRunContextCancelQuits(t *testing.T) {
	dev := newFakeDevice()
	keys := newChanKeys()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meter, done := startMeter(t, ctx, dev, keys, &recordingDisplay{}, io.Discard)
	<-dev.started
	cancel()

	if code := waitResult(t, done).code; code != ExitOK {
		t.Errorf("expected exit code %d, got %d", ExitOK, code)
	}
	if meter.State().Running() {
		t.Error("expected running to be false after cancel")
	}
	if meter.Session().State() != capture.StateClosed {
		t.Errorf("expected session closed, got %s", meter.Session().State())
	}
}
