// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// RetentionCap bounds the number of samples retained per driver.
	RetentionCap int `koanf:"retention_cap"`

	// RefreshIntervalMS sets the view recomputation tick interval.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// FeedQueueSize bounds the in-memory telemetry frame queue.
	FeedQueueSize int `koanf:"feed_queue_size"`

	// FrameDedupeSize sets the size of the frame idempotency cache.
	FrameDedupeSize int `koanf:"frame_dedupe_size"`

	// ExpectedTyreLife maps compound names to the lap count at which the
	// health proxy reaches zero.
	ExpectedTyreLife map[string]int `koanf:"expected_tyre_life"`

	// DefaultTyreLife is used for compounds missing from ExpectedTyreLife.
	DefaultTyreLife int `koanf:"default_tyre_life"`

	// DegradationRates maps compound names to seconds lost per lap. The
	// table is configuration only; the shipped health curve derives purely
	// from ExpectedTyreLife.
	DegradationRates map[string]float64 `koanf:"degradation_rates"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8090",
		RetentionCap:      1000,
		RefreshIntervalMS: 100,
		FeedQueueSize:     4096,
		FrameDedupeSize:   10_000,
		ExpectedTyreLife: map[string]int{
			"soft":         20,
			"medium":       25,
			"hard":         30,
			"intermediate": 18,
			"wet":          22,
		},
		DefaultTyreLife: 25,
		DegradationRates: map[string]float64{
			"soft":         0.0179,
			"medium":       0.015,
			"hard":         0.0179,
			"intermediate": 0.02,
			"wet":          0.012,
		},
	}
}
