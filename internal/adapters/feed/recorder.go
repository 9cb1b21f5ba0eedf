package feed

import (
	"context"
	"sort"

	"github.com/pitwall/tyretrace/internal/domain/model"
	"github.com/pitwall/tyretrace/pkg/logger"
	"github.com/pitwall/tyretrace/pkg/metrics"
)

// Appender receives the per-driver samples of drained frames. The sample
// store implements it.
type Appender interface {
	Record(ctx context.Context, driver string, sample model.Sample)
}

// Queue defines how the recorder receives frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Frame
	Len(ctx context.Context) int
}

// Recorder drains the frame queue into the store. Exactly one recorder
// runs per store so writes stay serialized in arrival order.
type Recorder struct {
	queue Queue
	sink  Appender
	log   logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// RecorderOption applies a configuration option to the Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets a custom logger.
func WithRecorderLogger(log logger.Logger) RecorderOption {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRecorder creates a recorder reading from queue and writing to sink.
func NewRecorder(queue Queue, sink Appender, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		queue:    queue,
		sink:     sink,
		log:      logger.Get().Named("recorder"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run drains frames until ctx is canceled, Shutdown is called, or the
// queue closes.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)

	frames := r.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			r.record(ctx, frame)
			metrics.UpdateQueueSize(r.queue.Len(ctx))
		}
	}
}

// record appends one sample per driver entry of the frame. Driver codes
// are walked in sorted order so replays produce identical store states.
func (r *Recorder) record(ctx context.Context, frame model.Frame) {
	if len(frame.Drivers) == 0 {
		r.log.Debug(ctx, "frame without drivers", logger.Int64("frame_index", frame.FrameIndex))
		return
	}

	codes := make([]string, 0, len(frame.Drivers))
	for code := range frame.Drivers {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		r.sink.Record(ctx, code, frame.Sample(code))
	}
}

// Shutdown stops the recorder and waits for the loop to exit.
func (r *Recorder) Shutdown(ctx context.Context) error {
	select {
	case <-r.shutdown:
		// already shut down
	default:
		close(r.shutdown)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return nil
	}
}
