package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigiasalud/alert-ingestor/internal/collector"
	"github.com/vigiasalud/alert-ingestor/internal/models"
	"github.com/vigiasalud/alert-ingestor/internal/orchestrator"
	"github.com/vigiasalud/alert-ingestor/internal/testhelpers"
)

func TestService_RunOnceStoresReport(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := staticCollector("source", record("uno", "http://a/1", date))

	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(collector.NewRegistry(src), store, orchestrator.Options{})
	svc := orchestrator.NewService(orch, nil, testhelpers.NewTestLogger())

	require.Nil(t, svc.LastReport())

	report := svc.RunOnce(context.Background())
	require.NotNil(t, report)

	last := svc.LastReport()
	require.NotNil(t, last)
	assert.Equal(t, report.RunID, last.RunID)
	assert.False(t, svc.Running())
}

func TestService_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	slow := collector.Func{
		SourceName: "slow",
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			<-release
			return nil, nil
		},
	}

	store := &testhelpers.MemoryStore{}
	orch := newOrchestrator(collector.NewRegistry(slow), store, orchestrator.Options{})
	svc := orchestrator.NewService(orch, nil, testhelpers.NewTestLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RunOnce(context.Background())
	}()

	// Wait for the first run to take the guard.
	require.Eventually(t, svc.Running, time.Second, time.Millisecond)

	// An overlapping trigger is skipped, not queued.
	assert.Nil(t, svc.RunOnce(context.Background()))

	close(release)
	wg.Wait()

	assert.NotNil(t, svc.LastReport())
}
