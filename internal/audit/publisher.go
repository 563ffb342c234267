package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher queues events for a Worker so callers never wait on the sink.
// When the queue is full the event is logged and dropped.
type Publisher struct {
	queue  chan Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher with a queue of size buffer.
func NewPublisher(buffer int, opts ...Option) *Publisher {
	if buffer <= 0 {
		buffer = 1
	}
	p := &Publisher{queue: make(chan Event, buffer)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit enqueues the event. It never blocks.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.queue <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit queue full, dropping event",
				"action", event.Action,
				"term_id", event.TermID,
			)
		}
	}
	return nil
}

// Inbox exposes the queue to a Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.queue
}

// LogSink writes events to a structured logger. It is the default sink when
// no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"term_id", event.TermID,
		"old_color", event.OldColor,
		"new_color", event.NewColor,
		"actor", event.Actor,
		"request_id", event.RequestID,
	)
	return nil
}
