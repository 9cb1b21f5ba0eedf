package simrace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/logger"
)

// Submission outcomes.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeDropped   = "dropped"
	outcomeFailed    = "failed"
)

// backpressure retry tuning.
const (
	dropRetryDelay = 50 * time.Millisecond
	dropRetries    = 3
)

// feedClient wraps http.Client for talking to the telemetry API.
type feedClient struct {
	client  *http.Client
	baseURL string
}

func newFeedClient(baseURL string, timeout time.Duration) *feedClient {
	return &feedClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// get performs a GET request against a service path.
func (c *feedClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// post performs a POST request with a JSON body against a service path.
func (c *feedClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitFrames sends the race script to the service one frame at a time.
// Frames go out sequentially: the feed's ordering guarantees only hold per
// connection arrival order, so a worker pool would scramble the race.
func submitFrames(ctx context.Context, config *Config, client *feedClient, frames []model.Frame, stats *Stats) error {
	logger.Get().Info(ctx, "submitting frames",
		logger.Int("frames", len(frames)),
		logger.Duration("interval", config.Interval))

	lastReport := time.Now()
	reportInterval := 1 * time.Second

	for i, frame := range frames {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during submission: %w", ctx.Err())
		default:
		}

		outcome := submitSingleFrame(ctx, client, frame)
		stats.FramesSubmitted++
		switch outcome {
		case outcomeAccepted:
			stats.FramesAccepted++
		case outcomeDuplicate:
			stats.FramesDuplicate++
		case outcomeDropped:
			stats.FramesDropped++
		default:
			stats.FramesFailed++
		}

		if config.Verbose && time.Since(lastReport) >= reportInterval {
			lastReport = time.Now()
			logger.Get().Info(ctx, "submission progress",
				logger.Int("submitted", i+1),
				logger.Int("total", len(frames)),
				logger.Int("accepted", stats.FramesAccepted),
				logger.Int("duplicate", stats.FramesDuplicate),
				logger.Int("dropped", stats.FramesDropped),
				logger.Int("failed", stats.FramesFailed))
		}

		if config.Interval > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during submission: %w", ctx.Err())
			case <-time.After(config.Interval):
			}
		}
	}

	logger.Get().Info(ctx, "frame submission completed",
		logger.Int("accepted", stats.FramesAccepted),
		logger.Int("duplicate", stats.FramesDuplicate),
		logger.Int("dropped", stats.FramesDropped),
		logger.Int("failed", stats.FramesFailed))
	return nil
}

// submitSingleFrame posts one frame, retrying briefly on backpressure.
func submitSingleFrame(ctx context.Context, client *feedClient, frame model.Frame) string {
	for attempt := 0; ; attempt++ {
		resp, err := client.post(ctx, "/telemetry", frame)
		if err != nil {
			return outcomeFailed
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return outcomeFailed
		}

		switch resp.StatusCode {
		case http.StatusAccepted:
			return outcomeAccepted
		case http.StatusOK:
			var ack ackResponse
			if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
				return outcomeDuplicate
			}
			return outcomeAccepted
		case http.StatusTooManyRequests:
			if attempt >= dropRetries {
				return outcomeDropped
			}
			select {
			case <-ctx.Done():
				return outcomeDropped
			case <-time.After(dropRetryDelay):
			}
		default:
			return outcomeFailed
		}
	}
}
