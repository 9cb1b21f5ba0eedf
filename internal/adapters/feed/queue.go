// Package feed moves inbound telemetry frames from the transport into the
// sample store. A bounded queue absorbs bursts and a single recorder
// goroutine serializes all store writes, so arrival order is preserved and
// ingestion never interleaves with itself.
package feed

import (
	"context"
	"sync"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/metrics"
)

// defaultQueueCapacity bounds the in-flight frame buffer.
const defaultQueueCapacity = 4096

// FrameQueue provides non-blocking enqueue and channel-based dequeue of
// telemetry frames.
type FrameQueue struct {
	frames   chan model.Frame
	capacity int

	mu     sync.RWMutex
	closed bool
}

// QueueOption applies a configuration option to the FrameQueue.
type QueueOption func(*FrameQueue)

// WithCapacity sets the maximum number of buffered frames.
func WithCapacity(n int) QueueOption {
	return func(q *FrameQueue) {
		if n > 0 {
			q.capacity = n
		}
	}
}

// NewFrameQueue creates a bounded in-memory frame queue.
func NewFrameQueue(opts ...QueueOption) *FrameQueue {
	q := &FrameQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.frames = make(chan model.Frame, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a frame without blocking. It returns false when the queue is
// full or closed; callers surface that as backpressure.
func (q *FrameQueue) Enqueue(ctx context.Context, f model.Frame) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.frames <- f:
		metrics.UpdateQueueSize(len(q.frames))
		return true
	default:
		return false
	}
}

// Dequeue returns the channel frames are consumed from. The channel closes
// when the queue closes.
func (q *FrameQueue) Dequeue(ctx context.Context) <-chan model.Frame {
	return q.frames
}

// Len returns the current number of buffered frames.
func (q *FrameQueue) Len(ctx context.Context) int {
	return len(q.frames)
}

// Close stops the queue. Enqueue returns false afterwards and the dequeue
// channel drains then closes.
func (q *FrameQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.frames)
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *FrameQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
