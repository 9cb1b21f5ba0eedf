package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/pitwall/tyretrace/internal/simrace"
)

// Default configuration constants.
const (
	defaultDrivers      = 20
	defaultLaps         = 50
	defaultFramesPerLap = 2
	defaultReplay       = 10
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8090", "Base URL of the service")
		drivers      = flag.Int("drivers", defaultDrivers, "Number of drivers on the grid")
		laps         = flag.Int("laps", defaultLaps, "Race distance in laps")
		framesPerLap = flag.Int("frames-per-lap", defaultFramesPerLap, "Telemetry frames emitted per lap")
		interval     = flag.Duration("interval", 0, "Delay between frames, 0 for full speed")
		seed         = flag.Int64("seed", 0, "Seed for the race script, 0 picks one")
		replay       = flag.Int("replay", defaultReplay, "Frames re-sent at the end to exercise dedupe")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile      = flag.String("log", "", "Log file for run output (default: feedsim_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simrace.ShowHelp()
		return
	}

	if err := simrace.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simrace.Config{
		BaseURL:      *baseURL,
		Drivers:      *drivers,
		Laps:         *laps,
		FramesPerLap: *framesPerLap,
		Interval:     *interval,
		Timeout:      *timeout,
		Seed:         *seed,
		ReplayFrames: *replay,
		Verbose:      *verbose,
		LogFile:      *logFile,
	}

	if err := simrace.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Feed run failed: " + err.Error() + "\n")
		return
	}
}
