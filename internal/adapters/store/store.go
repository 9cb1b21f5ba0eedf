// Package store holds the bounded per-driver telemetry histories. It is
// the only owner of retained samples; derivation packages read snapshots
// and never mutate them.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/metrics"
)

// defaultRetentionCap bounds each driver history.
const defaultRetentionCap = 1000

// SampleStore keeps an append-only, FIFO-bounded history per driver code.
type SampleStore struct {
	mu        sync.RWMutex
	cap       int
	histories map[string][]model.Sample
	total     int
}

// Option applies a configuration option to the SampleStore.
type Option func(*SampleStore)

// WithRetentionCap sets the maximum retained samples per driver.
func WithRetentionCap(n int) Option {
	return func(s *SampleStore) {
		if n > 0 {
			s.cap = n
		}
	}
}

// New creates an empty sample store.
func New(opts ...Option) *SampleStore {
	s := &SampleStore{
		cap:       defaultRetentionCap,
		histories: make(map[string][]model.Sample),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Record appends sample to driver's history, creating it if absent. Once
// the history exceeds the retention cap the oldest entries are discarded so
// exactly the cap's worth of most-recent samples remain. Writes are
// unconditional; there are no error conditions.
func (s *SampleStore) Record(ctx context.Context, driver string, sample model.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.histories[driver], sample)
	s.total++

	if evict := len(h) - s.cap; evict > 0 {
		h = append([]model.Sample(nil), h[evict:]...)
		s.total -= evict
		metrics.RecordSamplesEvicted(evict)
	}
	s.histories[driver] = h

	metrics.RecordSamplesRecorded(1)
	metrics.UpdateDriversTracked(len(s.histories))
	metrics.UpdateStoreSamples(s.total)
}

// Clear discards all histories for all drivers.
func (s *SampleStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories = make(map[string][]model.Sample)
	s.total = 0

	metrics.UpdateDriversTracked(0)
	metrics.UpdateStoreSamples(0)
}

// Drivers returns the known driver codes in ascending order.
func (s *SampleStore) Drivers(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.histories))
	for code := range s.histories {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// History returns a copy of one driver's retained samples in arrival
// order. Unknown drivers yield an empty history, not an error.
func (s *SampleStore) History(ctx context.Context, driver string) []model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.histories[driver]
	out := make([]model.Sample, len(h))
	copy(out, h)
	return out
}

// Snapshot returns a consistent copy of every history, safe to read while
// ingestion continues.
func (s *SampleStore) Snapshot(ctx context.Context) map[string][]model.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.Sample, len(s.histories))
	for code, h := range s.histories {
		cp := make([]model.Sample, len(h))
		copy(cp, h)
		out[code] = cp
	}
	return out
}

// Len returns the total number of retained samples across all drivers.
func (s *SampleStore) Len(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
