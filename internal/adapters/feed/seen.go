package feed

import (
	"context"
	"sync"
)

// defaultSeenSize bounds the frame idempotency window.
const defaultSeenSize = 10_000

// FrameSeen tracks recently ingested frame indexes so retransmitted frames
// are acknowledged without being recorded twice. The window is bounded with
// FIFO eviction; frames older than the window may be re-recorded, which is
// acceptable because the store's own retention would have dropped their
// samples anyway.
type FrameSeen struct {
	mu    sync.Mutex
	seen  map[int64]struct{}
	order []int64
	max   int
}

// SeenOption applies a configuration option to FrameSeen.
type SeenOption func(*FrameSeen)

// WithSeenSize sets the number of frame indexes remembered.
func WithSeenSize(n int) SeenOption {
	return func(f *FrameSeen) {
		if n > 0 {
			f.max = n
		}
	}
}

// NewFrameSeen creates a bounded frame-index tracker.
func NewFrameSeen(opts ...SeenOption) *FrameSeen {
	f := &FrameSeen{
		max: defaultSeenSize,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.seen = make(map[int64]struct{}, f.max)
	f.order = make([]int64, 0, f.max)

	return f
}

// SeenAndRecord atomically checks whether idx was seen and records it if
// not. It returns true when idx was already present.
func (f *FrameSeen) SeenAndRecord(ctx context.Context, idx int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[idx]; ok {
		return true
	}

	f.seen[idx] = struct{}{}
	f.order = append(f.order, idx)

	if len(f.order) > f.max {
		oldest := f.order[0]
		f.order = f.order[1:]
		delete(f.seen, oldest)
	}

	return false
}

// Reset forgets all recorded frame indexes.
func (f *FrameSeen) Reset(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seen = make(map[int64]struct{}, f.max)
	f.order = f.order[:0]
}

// Size returns the number of frame indexes currently tracked.
func (f *FrameSeen) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
