package simrace

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pitwall/tyretrace/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "feedsim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the feed simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Tyretrace Feed Simulator
========================

Generates a synthetic race telemetry feed and submits it to a running
tyretrace service, then verifies the derived degradation view.

Usage:
  go run cmd/feedsim/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8090")
  -drivers int
        Number of drivers on the grid (default 20)
  -laps int
        Race distance in laps (default 50)
  -frames-per-lap int
        Telemetry frames emitted per lap (default 2)
  -interval duration
        Delay between frames, 0 for full speed (default 0)
  -seed int
        Seed for the race script, 0 picks one (default 0)
  -replay int
        Frames re-sent at the end to exercise dedupe (default 10)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: feedsim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate a full race at maximum speed
  go run cmd/feedsim/main.go

  # Replay a known race script in real-ish time
  go run cmd/feedsim/main.go -seed 42 -interval 100ms

  # Short sprint with a small grid
  go run cmd/feedsim/main.go -drivers 6 -laps 15
`)
}
