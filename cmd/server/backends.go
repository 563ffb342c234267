package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"termcolor/internal/audit"
	"termcolor/internal/audit/kafka"
	"termcolor/internal/platform/config"
	"termcolor/internal/platform/postgres"
	"termcolor/internal/platform/redis"
	"termcolor/internal/platform/sqlite"
	"termcolor/internal/termcolor/store"
	httptransport "termcolor/internal/transport/http"
	"termcolor/pkg/platform/circuit"
)

type backend struct {
	store  store.Store
	health map[string]httptransport.HealthCheck
	close  func()
}

type migrator interface {
	Migrate(ctx context.Context) error
}

// openStore connects the configured metadata backend, prepares its schema and
// puts remote backends behind a circuit breaker.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (*backend, error) {
	b, err := dialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Driver == config.DriverMemory {
		return b, nil
	}
	guarded := store.Guard(b.store, circuit.New(cfg.Store.Driver), log)
	if checker, ok := guarded.(store.HealthChecker); ok {
		b.health["circuit"] = checker.Health
	}
	b.store = guarded
	return b, nil
}

func dialStore(ctx context.Context, cfg config.Server) (*backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return sqlBackend(ctx, db, store.NewPostgres(db), "postgres")

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return sqlBackend(ctx, db, store.NewSQLite(db), "sqlite")

	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		return &backend{
			store:  store.NewRedis(client.Client),
			health: map[string]httptransport.HealthCheck{"redis": client.Health},
			close:  func() { _ = client.Close() },
		}, nil

	default:
		return &backend{store: store.NewInMemory(), close: func() {}}, nil
	}
}

func sqlBackend(ctx context.Context, db *sql.DB, s interface {
	store.Store
	migrator
}, name string) (*backend, error) {
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", name, err)
	}
	return &backend{
		store:  s,
		health: map[string]httptransport.HealthCheck{name: db.PingContext},
		close:  func() { _ = db.Close() },
	}, nil
}

// openAuditSink returns the Kafka sink when brokers are configured and the
// log sink otherwise.
func openAuditSink(cfg config.Server, log *slog.Logger) (audit.Sink, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogSink(log), func() {}, nil
	}
	sink, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("open kafka audit sink: %w", err)
	}
	log.Info("audit events forwarded to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	return sink, sink.Close, nil
}
