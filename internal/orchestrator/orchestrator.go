// Package orchestrator coordinates the concurrent invocation of all
// registered collectors. Failures never cross source boundaries: a collector
// error, panic, or timeout marks its own source failed and the run continues.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigiasalud/alert-ingestor/internal/collector"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/metrics"
	"github.com/vigiasalud/alert-ingestor/internal/models"
	"github.com/vigiasalud/alert-ingestor/internal/normalizer"
)

// Persister performs the idempotent write of one alert.
type Persister interface {
	Save(ctx context.Context, alert *models.Alert) (models.Outcome, error)
}

// Options controls the run fan-out.
type Options struct {
	// MaxConcurrent caps the number of sources collected at once.
	MaxConcurrent int

	// SourceTimeout bounds one source's collect-and-persist unit. A source
	// that exceeds it is marked failed; the run proceeds.
	SourceTimeout time.Duration
}

// Orchestrator owns the collector registry and runs all sources concurrently.
type Orchestrator struct {
	registry  *collector.Registry
	persister Persister
	metrics   *metrics.Metrics
	logger    logger.Logger
	opts      Options
}

// New creates an orchestrator. metrics may be nil.
func New(
	registry *collector.Registry,
	persister Persister,
	m *metrics.Metrics,
	log logger.Logger,
	opts Options,
) *Orchestrator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = registry.Len()
	}
	return &Orchestrator{
		registry:  registry,
		persister: persister,
		metrics:   m,
		logger:    log,
		opts:      opts,
	}
}

// Run invokes every registered collector concurrently under the concurrency
// cap and returns the aggregated report. The run itself cannot fail; only
// individual sources can.
func (o *Orchestrator) Run(ctx context.Context) *models.RunReport {
	collectors := o.registry.Collectors()

	report := &models.RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Sources:   make([]models.SourceReport, len(collectors)),
	}

	o.logger.Info("Ingestion run started",
		logger.String("run_id", report.RunID),
		logger.Int("sources", len(collectors)),
	)

	sem := make(chan struct{}, o.opts.MaxConcurrent)
	var wg sync.WaitGroup

	for i, c := range collectors {
		wg.Add(1)
		go func(idx int, c collector.Collector) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report.Sources[idx] = o.runSource(ctx, c)
		}(i, c)
	}

	wg.Wait()
	report.FinishedAt = time.Now().UTC()

	duration := report.FinishedAt.Sub(report.StartedAt)
	o.metrics.RecordRun(duration)

	totals := report.Totals()
	o.logger.Info("Ingestion run finished",
		logger.String("run_id", report.RunID),
		logger.Int("fetched", totals.Fetched),
		logger.Int("saved", totals.Saved),
		logger.Int("duplicate", totals.Duplicate),
		logger.Int("dropped", totals.Dropped),
		logger.Strings("failed_sources", report.FailedSources()),
		logger.Duration("duration", duration),
	)

	return report
}

// runSource executes one source's unit of work: collect, normalize each
// record, persist in yield order. Records persisted before a mid-source
// failure stay persisted.
func (o *Orchestrator) runSource(ctx context.Context, c collector.Collector) models.SourceReport {
	rep := models.SourceReport{Source: c.Name()}
	start := time.Now()

	srcCtx, cancel := context.WithTimeout(ctx, o.opts.SourceTimeout)
	defer cancel()

	records, err := o.collect(srcCtx, c)
	if err != nil {
		rep.Failed = true
		rep.Error = err.Error()
		rep.Duration = time.Since(start)
		o.reportSource(&rep)
		return rep
	}

	rep.Fetched = len(records)

	for _, raw := range records {
		alert, normErr := normalizer.Normalize(c.Name(), raw)
		if normErr != nil {
			rep.Dropped++
			o.logger.Warn("Record dropped",
				logger.String("source", c.Name()),
				logger.Error(normErr),
			)
			continue
		}

		outcome, saveErr := o.persister.Save(srcCtx, alert)
		if saveErr != nil {
			// Store failure ends this source only; earlier records of the
			// same source remain committed.
			rep.Failed = true
			rep.Error = saveErr.Error()
			break
		}

		switch outcome {
		case models.OutcomeSaved:
			rep.Saved++
		case models.OutcomeDuplicate:
			rep.Duplicate++
		case models.OutcomeErrored:
			rep.Failed = true
		}
	}

	rep.Duration = time.Since(start)
	o.reportSource(&rep)
	return rep
}

// collect invokes the collector in its own goroutine so a collector that
// ignores its context cannot stall the run past the source timeout. A timed
// out collector's goroutine is abandoned.
func (o *Orchestrator) collect(ctx context.Context, c collector.Collector) ([]models.RawRecord, error) {
	type result struct {
		records []models.RawRecord
		err     error
	}

	resultCh := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: fmt.Errorf("collector panic: %v", r)}
			}
		}()

		records, err := c.Collect(ctx)
		resultCh <- result{records: records, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("collect: %w", res.err)
		}
		return res.records, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("collect: source timed out after %s: %w", o.opts.SourceTimeout, ctx.Err())
	}
}

// reportSource emits the per-source audit line and records metrics.
func (o *Orchestrator) reportSource(rep *models.SourceReport) {
	o.metrics.RecordSource(rep)

	if rep.Failed {
		o.logger.Error("Source failed",
			logger.String("source", rep.Source),
			logger.Int("fetched", rep.Fetched),
			logger.Int("saved", rep.Saved),
			logger.Int("duplicate", rep.Duplicate),
			logger.String("error", rep.Error),
			logger.Duration("duration", rep.Duration),
		)
		return
	}

	o.logger.Info("Source completed",
		logger.String("source", rep.Source),
		logger.Int("fetched", rep.Fetched),
		logger.Int("saved", rep.Saved),
		logger.Int("duplicate", rep.Duplicate),
		logger.Int("dropped", rep.Dropped),
		logger.Duration("duration", rep.Duration),
	)
}
