package bootstrap

import (
	"context"
	"time"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/orchestrator"
)

// RunScheduler triggers an ingestion run immediately and then at every
// interval until ctx is cancelled. A tick that lands while a run is still in
// flight is skipped by the service's single-flight guard.
func RunScheduler(ctx context.Context, svc *orchestrator.Service, interval time.Duration, log logger.Logger) {
	log.Info("Scheduler started", logger.Duration("interval", interval))

	svc.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			svc.RunOnce(ctx)
		}
	}
}
