package worker

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "vouch/pkg/platform/audit"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 500 * time.Millisecond
	shutdownFlushTimeout = 5 * time.Second
)

// Dispatcher is the fire-and-forget audit.Publisher used by services. Emit
// only enqueues; Run drains the queue to every sink in the background. A sink
// failure is logged and never reaches the operation that emitted the event.
type Dispatcher struct {
	buffer        *RingBuffer
	sinks         []audit.Sink
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	notify        chan struct{}
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithCapacity(capacity int) Option {
	return func(d *Dispatcher) { d.buffer = NewRingBuffer(capacity) }
}

func WithBatchSize(n int) Option {
	return func(d *Dispatcher) { d.batchSize = n }
}

func WithFlushInterval(interval time.Duration) Option {
	return func(d *Dispatcher) { d.flushInterval = interval }
}

func NewDispatcher(sinks []audit.Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sinks:         sinks,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		notify:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.buffer == nil {
		d.buffer = NewRingBuffer(0)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d
}

// Emit stamps the event with an ID and queues it.
func (d *Dispatcher) Emit(_ context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	d.buffer.Enqueue(event)
	select {
	case d.notify <- struct{}{}:
	default:
	}
	return nil
}

// Run delivers queued events until ctx is cancelled, then flushes what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			d.drain(flushCtx)
			cancel()
			return nil
		case <-d.notify:
			d.drain(ctx)
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int { return d.buffer.Len() }

// Dropped returns how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.buffer.Dropped() }

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		batch := d.buffer.DequeueBatch(d.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			for _, sink := range d.sinks {
				if err := sink.Append(ctx, event); err != nil {
					d.logger.WarnContext(ctx, "failed to deliver audit event",
						"event", event.Action,
						"event_id", event.ID,
						"error", err,
					)
				}
			}
		}
	}
}
