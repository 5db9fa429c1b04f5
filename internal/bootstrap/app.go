// Package bootstrap handles application initialization and lifecycle
// management for the alert ingestor.
package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/metrics"
	"github.com/vigiasalud/alert-ingestor/internal/orchestrator"
	"github.com/vigiasalud/alert-ingestor/internal/repository"
)

const (
	version         = "dev"
	shutdownTimeout = 10 * time.Second
)

// Start initializes and runs the ingestor. With -once it performs a single
// ingestion pass and exits; otherwise it serves the ops API and schedules
// runs at the configured interval.
func Start() error {
	flags := ParseFlags()

	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := SetupDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database", logger.Error(closeErr))
		}
	}()

	repo := repository.NewAlertRepository(db.DB(), log)
	registry := BuildRegistry(cfg, log)
	m := metrics.New()
	publisher := SetupEventPublisher(cfg, log)

	orch := orchestrator.New(registry, repo, m, log, orchestrator.Options{
		MaxConcurrent: cfg.Ingest.MaxConcurrent,
		SourceTimeout: cfg.Ingest.SourceTimeout,
	})
	svc := orchestrator.NewService(orch, publisher, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.Once {
		svc.RunOnce(ctx)
		return nil
	}

	server := SetupHTTPServer(cfg, svc, repo, m, log)

	go RunScheduler(ctx, svc, cfg.Ingest.RunInterval, log)

	if runErr := RunHTTPServer(ctx, server, log); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return runErr
	}

	log.Info("Server exited")
	return nil
}
