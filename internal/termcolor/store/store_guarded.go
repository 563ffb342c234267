package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/circuit"
	"termcolor/pkg/platform/sentinel"
)

// Guarded feeds every backend outcome into a circuit breaker so health checks
// and logs reflect a failing store. Calls always reach the backend.
type Guarded struct {
	store   Store
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type guardedBulk struct {
	*Guarded
	bulk BulkGetter
}

// Guard wraps s. The result implements BulkGetter exactly when s does.
func Guard(s Store, breaker *circuit.Breaker, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Guarded{store: s, breaker: breaker, logger: logger}
	if bulk, ok := s.(BulkGetter); ok {
		return &guardedBulk{Guarded: g, bulk: bulk}
	}
	return g
}

func (g *Guarded) Get(ctx context.Context, termID id.TermID, key MetaKey) (string, error) {
	v, err := g.store.Get(ctx, termID, key)
	g.record(ctx, err)
	return v, err
}

func (g *Guarded) Update(ctx context.Context, termID id.TermID, key MetaKey, value string) error {
	err := g.store.Update(ctx, termID, key, value)
	g.record(ctx, err)
	return err
}

func (g *Guarded) Delete(ctx context.Context, termID id.TermID, key MetaKey) error {
	err := g.store.Delete(ctx, termID, key)
	g.record(ctx, err)
	return err
}

func (g *guardedBulk) GetMany(ctx context.Context, termIDs []id.TermID, key MetaKey) (map[id.TermID]string, error) {
	out, err := g.bulk.GetMany(ctx, termIDs, key)
	g.record(ctx, err)
	return out, err
}

// Health returns sentinel.ErrUnavailable while the circuit is open.
func (g *Guarded) Health(context.Context) error {
	if g.breaker.IsOpen() {
		return fmt.Errorf("circuit %s open: %w", g.breaker.Name(), sentinel.ErrUnavailable)
	}
	return nil
}

func (g *Guarded) record(ctx context.Context, err error) {
	// the caller went away; says nothing about the backend
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		return
	}
	// a missing key is an answer, not a backend failure
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "metadata store recovered", "circuit", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.logger.WarnContext(ctx, "metadata store failing, circuit opened",
			"circuit", g.breaker.Name(),
			"error", err,
		)
	}
}

// HealthChecker is implemented by stores returned from Guard.
type HealthChecker interface {
	Health(ctx context.Context) error
}
