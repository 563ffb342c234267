package audit

import (
	"context"
	"log/slog"
	"time"
)

const defaultDrainTimeout = 5 * time.Second

// Worker drains a Publisher's queue into a Sink. Sink failures are logged
// and the event is dropped; audit never fails a save.
type Worker struct {
	sink         Sink
	inbox        <-chan Event
	logger       *slog.Logger
	drainTimeout time.Duration
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDrainTimeout bounds the flush that runs after the run context ends.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.drainTimeout = d
		}
	}
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{sink: sink, inbox: inbox, logger: logger, drainTimeout: defaultDrainTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes events until ctx is done, then flushes what is already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// The run context is already cancelled; flush under a bounded one.
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()
	for {
		if ctx.Err() != nil {
			if w.logger != nil && len(w.inbox) > 0 {
				w.logger.Warn("audit drain timed out", "dropped", len(w.inbox))
			}
			return
		}
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "audit sink failed",
			"action", event.Action,
			"term_id", event.TermID,
			"error", err,
		)
	}
}
