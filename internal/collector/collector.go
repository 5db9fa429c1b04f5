// Package collector defines the boundary between the ingestor and the
// per-source fetch logic. A collector is an opaque unit of work that produces
// zero or more raw records or fails; the orchestrator treats every collector
// identically regardless of how it obtains its data.
package collector

import (
	"context"

	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// Collector produces the raw records of one data source.
type Collector interface {
	// Name identifies the source in reports and logs.
	Name() string

	// Collect fetches the source's current records. An empty slice is a
	// valid result, not an error.
	Collect(ctx context.Context) ([]models.RawRecord, error)
}

// Func adapts a plain function into a Collector.
type Func struct {
	SourceName string
	Fn         func(ctx context.Context) ([]models.RawRecord, error)
}

func (f Func) Name() string {
	return f.SourceName
}

func (f Func) Collect(ctx context.Context) ([]models.RawRecord, error) {
	return f.Fn(ctx)
}

// Registry holds the ordered set of collectors for a run. It is built once at
// startup and not mutated afterwards.
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a registry from the given collectors.
func NewRegistry(collectors ...Collector) *Registry {
	return &Registry{collectors: collectors}
}

// Register appends a collector to the registry.
func (r *Registry) Register(c Collector) {
	r.collectors = append(r.collectors, c)
}

// Collectors returns the registered collectors in registration order.
func (r *Registry) Collectors() []Collector {
	return r.collectors
}

// Len returns the number of registered collectors.
func (r *Registry) Len() int {
	return len(r.collectors)
}
