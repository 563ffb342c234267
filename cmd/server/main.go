package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"termcolor/internal/audit"
	"termcolor/internal/csrf"
	"termcolor/internal/platform/config"
	"termcolor/internal/platform/httpserver"
	"termcolor/internal/platform/logger"
	"termcolor/internal/termcolor/extension"
	"termcolor/internal/termcolor/metrics"
	"termcolor/internal/termcolor/render"
	"termcolor/internal/termcolor/service"
	"termcolor/internal/termcolor/store"
	httptransport "termcolor/internal/transport/http"
	id "termcolor/pkg/domain"
)

const (
	shutdownTimeout = 10 * time.Second
	auditBuffer     = 1024
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server shut down gracefully")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	meta, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer meta.close()

	sink, closeSink, err := openAuditSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	publisher := audit.NewPublisher(auditBuffer, audit.WithLogger(log))
	worker := audit.NewWorker(sink, publisher.Inbox(), log, audit.WithDrainTimeout(shutdownTimeout))

	if cfg.CSRF.Secret == "" {
		log.Warn("CSRF_SECRET not set, using development secret with the memory store")
	}
	issuer := csrf.New(cfg.CSRFSecret(), csrf.WithTTL(cfg.CSRF.TTL))

	svc, err := service.New(store.NewColorMeta(meta.store), issuer,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	fields, err := render.New(svc, issuer)
	if err != nil {
		return fmt.Errorf("build renderer: %w", err)
	}
	ext, err := extension.New(id.Taxonomy(cfg.Taxonomy), svc, fields)
	if err != nil {
		return fmt.Errorf("build extension: %w", err)
	}

	bridge := httptransport.NewBridge()
	ext.Register(bridge)

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_API_TOKEN not set, admin endpoints will reject every request")
	}
	router := httptransport.NewRouter(httptransport.NewHandler(bridge, log), httptransport.RouterConfig{
		AdminToken:   cfg.AdminToken,
		Logger:       log,
		Gatherer:     prometheus.DefaultGatherer,
		HealthChecks: meta.health,
	})
	srv := httpserver.New(cfg.Addr, router)

	// The worker outlives the server so events from in-flight requests are
	// still delivered during graceful shutdown.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("audit worker: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting termcolor",
			"addr", cfg.Addr,
			"taxonomy", cfg.Taxonomy,
			"store", cfg.Store.Driver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopWorker()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}
