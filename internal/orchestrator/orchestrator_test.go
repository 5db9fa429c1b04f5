package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigiasalud/alert-ingestor/internal/collector"
	"github.com/vigiasalud/alert-ingestor/internal/models"
	"github.com/vigiasalud/alert-ingestor/internal/orchestrator"
	"github.com/vigiasalud/alert-ingestor/internal/testhelpers"
)

func newOrchestrator(registry *collector.Registry, store orchestrator.Persister, opts orchestrator.Options) *orchestrator.Orchestrator {
	if opts.SourceTimeout == 0 {
		opts.SourceTimeout = 5 * time.Second
	}
	return orchestrator.New(registry, store, nil, testhelpers.NewTestLogger(), opts)
}

func staticCollector(name string, records ...models.RawRecord) collector.Collector {
	return collector.Func{
		SourceName: name,
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			return records, nil
		},
	}
}

func record(title, url string, date time.Time) models.RawRecord {
	raw := models.RawRecord{
		"title":       title,
		"description": "desc",
		"source_type": "noticia",
		"category":    "salud",
		"country":     "CL",
	}
	if url != "" {
		raw["source_url"] = url
	}
	if !date.IsZero() {
		raw["presentation_date"] = date
	}
	return raw
}

func sourceReport(t *testing.T, report *models.RunReport, name string) models.SourceReport {
	t.Helper()
	for _, s := range report.Sources {
		if s.Source == name {
			return s
		}
	}
	t.Fatalf("source %q not in report", name)
	return models.SourceReport{}
}

func TestRun_FailureIsolation(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	broken := collector.Func{
		SourceName: "source-a",
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	healthy := staticCollector("source-b",
		record("uno", "http://b/1", date),
		record("dos", "http://b/2", date),
		record("tres", "http://b/3", date),
	)

	store := &testhelpers.MemoryStore{}
	registry := collector.NewRegistry(broken, healthy)
	report := newOrchestrator(registry, store, orchestrator.Options{}).Run(context.Background())

	repA := sourceReport(t, report, "source-a")
	assert.True(t, repA.Failed)
	assert.Contains(t, repA.Error, "connection refused")

	repB := sourceReport(t, report, "source-b")
	assert.False(t, repB.Failed)
	assert.Equal(t, 3, repB.Fetched)
	assert.Equal(t, 3, repB.Saved)

	assert.Equal(t, 3, store.Count())
}

func TestRun_IdempotenceAcrossRuns(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := staticCollector("source", record("X", "http://a", date))

	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{})

	first := orch.Run(context.Background())
	rep := sourceReport(t, first, "source")
	assert.Equal(t, 1, rep.Saved)
	assert.Equal(t, 0, rep.Duplicate)

	second := orch.Run(context.Background())
	rep = sourceReport(t, second, "source")
	assert.Equal(t, 0, rep.Saved)
	assert.Equal(t, 1, rep.Duplicate)

	assert.Equal(t, 1, store.Count())
}

func TestRun_NullURLDedup(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	src := staticCollector("source",
		record("mismo titulo", "", date),
		record("mismo titulo", "", date),
		record("otro titulo", "", date),
	)

	store := &testhelpers.MemoryStore{}
	report := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "source")
	assert.Equal(t, 2, rep.Saved)
	assert.Equal(t, 1, rep.Duplicate)
}

// Same title and date with a different non-null URL still collides on the
// (title, presentation_date) constraint. This pins the dual-constraint
// behavior of the store schema.
func TestRun_TitleDateCollisionAcrossURLs(t *testing.T) {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	src := staticCollector("source",
		record("resolucion 42", "http://a/42", date),
		record("resolucion 42", "http://b/42", date),
	)

	store := &testhelpers.MemoryStore{}
	report := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "source")
	assert.Equal(t, 1, rep.Saved)
	assert.Equal(t, 1, rep.Duplicate)
	assert.Equal(t, 1, store.Count())
}

func TestRun_PartialNormalizationResilience(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := make([]models.RawRecord, 0, 10)
	for i := 0; i < 10; i++ {
		raw := record(titleFor(i), "", date.AddDate(0, 0, i))
		if i == 4 {
			raw["presentation_date"] = "not a date"
		}
		records = append(records, raw)
	}

	store := &testhelpers.MemoryStore{}
	src := staticCollector("source", records...)
	report := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "source")
	assert.False(t, rep.Failed)
	assert.Equal(t, 10, rep.Fetched)
	assert.Equal(t, 9, rep.Saved)
	assert.Equal(t, 1, rep.Dropped)
	assert.Equal(t, 9, store.Count())
}

func titleFor(i int) string {
	return string(rune('a' + i))
}

func TestRun_SourcesRunConcurrently(t *testing.T) {
	const perSource = 150 * time.Millisecond

	slow := func(name string) collector.Collector {
		return collector.Func{
			SourceName: name,
			Fn: func(ctx context.Context) ([]models.RawRecord, error) {
				select {
				case <-time.After(perSource):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return nil, nil
			},
		}
	}

	registry := collector.NewRegistry(slow("a"), slow("b"), slow("c"), slow("d"))
	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(registry, store, orchestrator.Options{MaxConcurrent: 4})

	start := time.Now()
	report := orch.Run(context.Background())
	elapsed := time.Since(start)

	require.Len(t, report.Sources, 4)
	// Concurrent execution approximates the slowest source, not the sum.
	assert.Less(t, elapsed, 3*perSource)
}

func TestRun_SourceTimeout(t *testing.T) {
	stuck := collector.Func{
		SourceName: "stuck",
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			// Ignores its context on purpose.
			time.Sleep(2 * time.Second)
			return nil, nil
		},
	}

	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(collector.NewRegistry(stuck), store, orchestrator.Options{
		SourceTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	report := orch.Run(context.Background())
	elapsed := time.Since(start)

	rep := sourceReport(t, report, "stuck")
	assert.True(t, rep.Failed)
	assert.Contains(t, rep.Error, "timed out")
	assert.Less(t, elapsed, time.Second)
}

func TestRun_CollectorPanicIsIsolated(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	panicking := collector.Func{
		SourceName: "panics",
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			panic("index out of range")
		},
	}
	healthy := staticCollector("healthy", record("ok", "http://x", date))

	store := &testhelpers.MemoryStore{}
	report := newOrchestrator(collector.NewRegistry(panicking, healthy), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "panics")
	assert.True(t, rep.Failed)
	assert.Contains(t, rep.Error, "panic")

	assert.Equal(t, 1, sourceReport(t, report, "healthy").Saved)
}

func TestRun_EmptyCollectorIsNoOp(t *testing.T) {
	store := &testhelpers.MemoryStore{}
	src := staticCollector("empty")
	report := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "empty")
	assert.False(t, rep.Failed)
	assert.Equal(t, 0, rep.Fetched)
	assert.Equal(t, 0, store.Count())
}

func TestRun_StoreFailureMidSourceKeepsEarlierRecords(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := staticCollector("source",
		record("uno", "http://s/1", date),
		record("dos", "http://s/2", date),
		record("tres", "http://s/3", date),
	)

	store := &testhelpers.MemoryStore{
		FailWith:  errors.New("connection reset"),
		FailAfter: 2,
	}
	report := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{}).Run(context.Background())

	rep := sourceReport(t, report, "source")
	assert.True(t, rep.Failed)
	assert.Contains(t, rep.Error, "connection reset")
	assert.Equal(t, 2, rep.Saved)
	assert.Equal(t, 2, store.Count())
}

func TestRun_TotalStoreUnavailabilityStillCompletes(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	registry := collector.NewRegistry(
		staticCollector("a", record("uno", "http://a/1", date)),
		staticCollector("b", record("dos", "http://b/1", date)),
	)

	store := &testhelpers.MemoryStore{FailWith: errors.New("database is down")}
	report := newOrchestrator(registry, store, orchestrator.Options{}).Run(context.Background())

	require.Len(t, report.Sources, 2)
	for _, rep := range report.Sources {
		assert.True(t, rep.Failed)
		assert.Contains(t, rep.Error, "database is down")
	}
}

func TestRun_ConcurrencyCapLimitsParallelism(t *testing.T) {
	const perSource = 100 * time.Millisecond

	slow := func(name string) collector.Collector {
		return collector.Func{
			SourceName: name,
			Fn: func(_ context.Context) ([]models.RawRecord, error) {
				time.Sleep(perSource)
				return nil, nil
			},
		}
	}

	registry := collector.NewRegistry(slow("a"), slow("b"), slow("c"), slow("d"))
	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(registry, store, orchestrator.Options{MaxConcurrent: 1})

	start := time.Now()
	orch.Run(context.Background())
	elapsed := time.Since(start)

	// With a cap of one the sources run back to back.
	assert.GreaterOrEqual(t, elapsed, 4*perSource)
}
