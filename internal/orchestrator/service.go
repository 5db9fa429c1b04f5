package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vigiasalud/alert-ingestor/internal/events"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// Service wraps the orchestrator with a single-flight guard and keeps the
// latest run report for the ops API. At most one run is in flight per process;
// overlapping triggers are skipped, not queued.
type Service struct {
	orch      *Orchestrator
	publisher *events.Publisher
	logger    logger.Logger

	running atomic.Bool

	mu   sync.RWMutex
	last *models.RunReport
}

// NewService creates a run service. publisher may be nil.
func NewService(orch *Orchestrator, publisher *events.Publisher, log logger.Logger) *Service {
	return &Service{
		orch:      orch,
		publisher: publisher,
		logger:    log,
	}
}

// RunOnce executes a run synchronously. Returns nil if a run is already in
// flight.
func (s *Service) RunOnce(ctx context.Context) *models.RunReport {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Run already in flight, skipping trigger")
		return nil
	}
	defer s.running.Store(false)

	report := s.orch.Run(ctx)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.publisher.PublishRunCompletedAsync(report)

	return report
}

// TryRunAsync starts a run in the background. Returns false if a run is
// already in flight.
func (s *Service) TryRunAsync(ctx context.Context) bool {
	if s.Running() {
		return false
	}

	go func() {
		s.RunOnce(ctx)
	}()

	return true
}

// Running reports whether a run is currently in flight.
func (s *Service) Running() bool {
	return s.running.Load()
}

// LastReport returns the most recent completed run report, or nil if no run
// has completed yet.
func (s *Service) LastReport() *models.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
