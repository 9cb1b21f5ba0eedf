// Package app wires the sample store, feed pipeline and view derivation
// into the service consumed by the HTTP API. The service owns the cached
// view model; rebuilding it happens on Tick, which the host shell drives
// from its own timer.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/pitwall/tyretrace/internal/adapters/feed"
	"github.com/pitwall/tyretrace/internal/adapters/store"
	"github.com/pitwall/tyretrace/internal/domain/health"
	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/internal/domain/view"
	"github.com/pitwall/tyretrace/pkg/logger"
	"github.com/pitwall/tyretrace/pkg/metrics"
)

// Service implements the API dependencies for the tyre degradation view.
type Service struct {
	mu sync.RWMutex

	// Core components
	samples  *store.SampleStore
	queue    *feed.FrameQueue
	recorder *feed.Recorder
	seen     *feed.FrameSeen
	profile  *health.Profile

	// Configuration
	retentionCap int
	queueSize    int
	seenSize     int

	// View state
	selection view.Selection
	cached    view.Model

	// Lifecycle
	started bool
	cancel  context.CancelFunc

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRetentionCap sets the per-driver sample retention cap.
func WithRetentionCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retentionCap = n
		}
	}
}

// WithQueueSize sets the feed queue capacity.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithSeenSize sets the frame idempotency window size.
func WithSeenSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seenSize = n
		}
	}
}

// WithProfile sets the compound profile used for health curves.
func WithProfile(p *health.Profile) Option {
	return func(s *Service) {
		if p != nil {
			s.profile = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		retentionCap: 1000,
		queueSize:    4096,
		seenSize:     10_000,
		profile:      health.NewProfile(),
		selection:    view.All,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the components and launches the feed recorder.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.log == nil {
		s.log = logger.Get()
	}

	s.samples = store.New(store.WithRetentionCap(s.retentionCap))
	s.queue = feed.NewFrameQueue(feed.WithCapacity(s.queueSize))
	s.seen = feed.NewFrameSeen(feed.WithSeenSize(s.seenSize))
	s.recorder = feed.NewRecorder(s.queue, s.samples, feed.WithRecorderLogger(s.log.Named("recorder")))

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.recorder.Run(runCtx)

	s.cached = view.Build(nil, s.selection, s.profile)
	s.started = true

	s.log.Info(ctx, "tyretrace service started",
		logger.Int("retentionCap", s.retentionCap),
		logger.Int("queueSize", s.queueSize),
		logger.Int("seenSize", s.seenSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.log.Info(ctx, "stopping tyretrace service...")

	_ = s.queue.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.recorder.Shutdown(shutdownCtx); err != nil {
		s.log.Warn(ctx, "recorder shutdown timed out", logger.Error(err))
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.log.Info(ctx, "tyretrace service stopped")
}

// Ingest submits a telemetry frame. It reports whether the frame was
// accepted and whether it was a retransmission of an already-seen frame.
// A false accepted with false duplicate means feed backpressure.
func (s *Service) Ingest(ctx context.Context, frame model.Frame) (accepted, duplicate bool) {
	if s.seen.SeenAndRecord(ctx, frame.FrameIndex) {
		metrics.RecordFrameDuplicate()
		s.log.Debug(ctx, "duplicate frame", logger.Int64("frame_index", frame.FrameIndex))
		return true, true
	}

	if !s.queue.Enqueue(ctx, frame) {
		metrics.RecordFrameDropped()
		return false, false
	}

	metrics.RecordFrameIngested()
	return true, false
}

// Drivers returns the driver codes currently known to the store.
func (s *Service) Drivers(ctx context.Context) []string {
	return s.samples.Drivers(ctx)
}

// Select switches the view to one driver, or to all drivers when code is
// empty or "all".
func (s *Service) Select(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch code {
	case "", "all", "All Drivers":
		s.selection = view.All
	default:
		s.selection = view.Selection(code)
	}
	s.log.Debug(ctx, "selection changed", logger.String("selection", string(s.selection)))
}

// Selection returns the current selection.
func (s *Service) Selection(ctx context.Context) view.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Tick rebuilds the cached view model from a consistent store snapshot.
// When the selected driver is no longer present the selection falls back
// to all drivers before the rebuild.
func (s *Service) Tick(ctx context.Context) view.Model {
	start := time.Now()
	snapshot := s.samples.Snapshot(ctx)

	s.mu.Lock()
	if !s.selection.IsAll() {
		if _, ok := snapshot[string(s.selection)]; !ok {
			s.log.Warn(ctx, "selected driver absent, falling back to all drivers",
				logger.String("selection", string(s.selection)))
			s.selection = view.All
		}
	}
	sel := s.selection
	s.mu.Unlock()

	m := view.Build(snapshot, sel, s.profile)

	s.mu.Lock()
	s.cached = m
	s.mu.Unlock()

	metrics.RecordViewRebuild(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.UpdateStintsDerived(m.StintCount)

	return m
}

// View returns the cached view model from the last tick.
func (s *Service) View(ctx context.Context) view.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

// ViewFor builds an ad-hoc view for the given selection without touching
// the cache or the stored selection.
func (s *Service) ViewFor(ctx context.Context, sel view.Selection) view.Model {
	return view.Build(s.samples.Snapshot(ctx), sel, s.profile)
}

// Reset clears all retained telemetry and the frame idempotency window,
// then rebuilds the cached view (which becomes the placeholder).
func (s *Service) Reset(ctx context.Context) {
	s.samples.Clear(ctx)
	s.seen.Reset(ctx)
	s.log.Info(ctx, "telemetry history cleared")
	s.Tick(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	sel := s.selection
	s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      started,
		"retentionCap": s.retentionCap,
		"queueSize":    s.queueSize,
		"selection":    string(sel),
	}

	if started {
		stats["drivers"] = len(s.samples.Drivers(ctx))
		stats["samplesRetained"] = s.samples.Len(ctx)
		stats["queueLength"] = s.queue.Len(ctx)
		stats["framesSeen"] = s.seen.Size()
	}

	return stats
}
