package simrace

import "time"

// Config holds configuration for a simulated race feed run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Drivers      int           // Number of drivers on the grid
	Laps         int           // Race distance in laps
	FramesPerLap int           // Telemetry frames emitted per lap
	Interval     time.Duration // Delay between frames (0 for full speed)
	Timeout      time.Duration // HTTP request timeout
	Seed         int64         // Seed for the race script (0 picks one)
	ReplayFrames int           // Frames re-sent at the end to exercise dedupe
	Verbose      bool          // Enable verbose logging
	LogFile      string        // Log file for run output
}

// Stats holds feed run statistics.
type Stats struct {
	FramesGenerated int
	FramesSubmitted int
	FramesAccepted  int
	FramesDuplicate int
	FramesDropped   int
	FramesFailed    int
	DriversOnGrid   int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// ackResponse mirrors the service's ingest acknowledgement.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// driversResponse mirrors the service's driver listing.
type driversResponse struct {
	Drivers []string `json:"drivers"`
}
