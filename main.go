// ABOUTME: Entry point for the console sound level meter
// ABOUTME: Parses CLI flags, wires capture, keyboard and display, and runs the meter
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/soundlevel/internal/app"
	"github.com/Resonate-Protocol/soundlevel/internal/capture"
	"github.com/Resonate-Protocol/soundlevel/internal/control"
	"github.com/Resonate-Protocol/soundlevel/internal/ui"
	"github.com/Resonate-Protocol/soundlevel/internal/version"
	"github.com/Resonate-Protocol/soundlevel/pkg/audio"
	"gopkg.in/natefinch/lumberjack.v2"
)

const exitUsage = 2

var (
	backend     = flag.String("backend", capture.BackendMalgo, "Capture backend: malgo or portaudio")
	useTUI      = flag.Bool("tui", false, "Show a full-screen meter instead of a single console line")
	logFile     = flag.String("log-file", "", "Log file path (logging is off when empty)")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return app.ExitOK
	}

	// Log only to file so the meter line stays clean
	logger := newLogWriter(*logFile)
	defer func() { _ = logger.Close() }()
	log.SetOutput(logger)

	log.Printf("Starting %s (backend: %s)", version.String(), *backend)

	device, err := capture.NewDevice(*backend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var keys control.KeySource
	var display app.Display
	var closeConsole func()

	if *useTUI {
		meter := ui.NewMeter(os.Stdin, os.Stdout)
		meter.Start()
		keys, display = meter, meter
		closeConsole = func() {
			if err := meter.Close(); err != nil {
				log.Printf("Error closing TUI: %v", err)
			}
		}
	} else {
		terminalKeys := ui.NewKeys(os.Stdin)
		if err := terminalKeys.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read keyboard: %v\n", err)
			return app.ExitSetupFailure
		}
		printer := ui.NewLinePrinter(os.Stdout)
		keys, display = terminalKeys, printer
		closeConsole = func() {
			if err := terminalKeys.Close(); err != nil {
				log.Printf("Error restoring terminal: %v", err)
			}
			printer.Finish()
		}
	}

	// Errors are held until the terminal is restored
	var stderr bytes.Buffer

	meter := app.New(app.Config{
		Device:  device,
		Format:  audio.CaptureFormat,
		Keys:    keys,
		Display: display,
		Stderr:  &stderr,
	})

	code := meter.Run(ctx)

	closeConsole()
	_, _ = io.Copy(os.Stderr, &stderr)

	log.Printf("Exiting with code %d", code)
	return code
}

// newLogWriter returns a rotating log file, or a discarding writer when no
// path is given
func newLogWriter(path string) io.WriteCloser {
	if path == "" {
		return nopWriteCloser{io.Discard}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
