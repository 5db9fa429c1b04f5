package collector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigiasalud/alert-ingestor/internal/collector"
	"github.com/vigiasalud/alert-ingestor/internal/models"
)

func TestFunc_AdaptsPlainFunction(t *testing.T) {
	c := collector.Func{
		SourceName: "fn-source",
		Fn: func(_ context.Context) ([]models.RawRecord, error) {
			return []models.RawRecord{{"title": "t"}}, nil
		},
	}

	assert.Equal(t, "fn-source", c.Name())

	records, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "t", records[0]["title"])
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	a := collector.Func{SourceName: "a"}
	b := collector.Func{SourceName: "b"}
	c := collector.Func{SourceName: "c"}

	registry := collector.NewRegistry(a, b)
	registry.Register(c)

	require.Equal(t, 3, registry.Len())

	names := make([]string, 0, registry.Len())
	for _, col := range registry.Collectors() {
		names = append(names, col.Name())
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
