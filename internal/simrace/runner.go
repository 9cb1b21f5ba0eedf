package simrace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/logger"
)

// settleDelay gives the recorder time to drain the queue before reading
// the derived view back.
const settleDelay = 500 * time.Millisecond

// Run executes a complete simulated race feed: health check, script
// generation, sequential submission, a forced recompute, and a readback of
// the derived view.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting simulated race feed",
		logger.String("baseURL", config.BaseURL),
		logger.Int("drivers", config.Drivers),
		logger.Int("laps", config.Laps),
		logger.Int("framesPerLap", config.FramesPerLap),
		logger.Int64("seed", config.Seed))

	client := newFeedClient(config.BaseURL, config.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	frames := buildRaceScript(ctx, config, stats)

	if err := submitFrames(ctx, config, client, frames, stats); err != nil {
		return fmt.Errorf("frame submission failed: %w", err)
	}

	if config.ReplayFrames > 0 {
		if err := replayFrames(ctx, config, client, frames, stats); err != nil {
			return fmt.Errorf("frame replay failed: %w", err)
		}
	}

	logger.Get().Info(ctx, "waiting for the feed to settle")
	time.Sleep(settleDelay)

	if err := forceTick(ctx, client); err != nil {
		return fmt.Errorf("view recompute failed: %w", err)
	}

	if err := verifyView(ctx, client, stats); err != nil {
		return fmt.Errorf("view verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "simulated race feed completed")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *feedClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 is healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// replayFrames re-sends the first n frames of the script. Every one of
// them should come back flagged duplicate.
func replayFrames(ctx context.Context, config *Config, client *feedClient, frames []model.Frame, stats *Stats) error {
	n := config.ReplayFrames
	if n > len(frames) {
		n = len(frames)
	}
	logger.Get().Info(ctx, "replaying frames to exercise idempotency", logger.Int("frames", n))

	unexpected := 0
	for _, frame := range frames[:n] {
		outcome := submitSingleFrame(ctx, client, frame)
		stats.FramesSubmitted++
		if outcome == outcomeDuplicate {
			stats.FramesDuplicate++
			continue
		}
		unexpected++
	}

	if unexpected > 0 {
		logger.Get().Warn(ctx, "replayed frames were not all flagged duplicate",
			logger.Int("unexpected", unexpected))
	}
	return nil
}

// forceTick asks the service to rebuild its cached view immediately.
func forceTick(ctx context.Context, client *feedClient) error {
	resp, err := client.post(ctx, "/tick", struct{}{})
	if err != nil {
		return fmt.Errorf("failed to force tick: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read tick response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tick failed with status: %d", resp.StatusCode)
	}
	return nil
}

// verifyView reads the driver list and view model back and sanity-checks
// them against the submitted script.
func verifyView(ctx context.Context, client *feedClient, stats *Stats) error {
	resp, err := client.get(ctx, "/drivers")
	if err != nil {
		return fmt.Errorf("failed to fetch drivers: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read drivers response: %w", err)
	}

	var drivers driversResponse
	if err := json.Unmarshal(body, &drivers); err != nil {
		return fmt.Errorf("failed to parse drivers response: %w", err)
	}

	if len(drivers.Drivers) != stats.DriversOnGrid {
		logger.Get().Warn(ctx, "driver count mismatch",
			logger.Int("expected", stats.DriversOnGrid),
			logger.Int("got", len(drivers.Drivers)))
	} else {
		logger.Get().Info(ctx, "all drivers present in the store",
			logger.Int("drivers", len(drivers.Drivers)))
	}

	resp, err = client.get(ctx, "/view")
	if err != nil {
		return fmt.Errorf("failed to fetch view: %w", err)
	}
	body, err = readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read view response: %w", err)
	}

	var vm struct {
		Placeholder bool `json:"placeholder"`
		XMax        int  `json:"x_max"`
		StintCount  int  `json:"stint_count"`
		Series      []struct {
			Driver string `json:"driver"`
		} `json:"series"`
	}
	if err := json.Unmarshal(body, &vm); err != nil {
		return fmt.Errorf("failed to parse view response: %w", err)
	}

	if vm.Placeholder {
		return fmt.Errorf("view is still a placeholder after %d frames", stats.FramesSubmitted)
	}

	logger.Get().Info(ctx, "derived view verified",
		logger.Int("series", len(vm.Series)),
		logger.Int("stints", vm.StintCount),
		logger.Int("xMax", vm.XMax))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var framesPerSecond float64
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("framesSubmitted", stats.FramesSubmitted),
		logger.Int("framesAccepted", stats.FramesAccepted),
		logger.Int("framesDuplicate", stats.FramesDuplicate),
		logger.Int("framesDropped", stats.FramesDropped),
		logger.Int("framesFailed", stats.FramesFailed),
		logger.Int("driversOnGrid", stats.DriversOnGrid),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("framesPerSecond", framesPerSecond))
}
