package bootstrap

import (
	"github.com/vigiasalud/alert-ingestor/internal/collector"
	"github.com/vigiasalud/alert-ingestor/internal/config"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
)

// BuildRegistry constructs the collector registry from the configured source
// definitions. Bespoke collectors supplied by the surrounding system can be
// appended by the caller before the first run.
func BuildRegistry(cfg *config.Config, log logger.Logger) *collector.Registry {
	registry := collector.NewRegistry()
	for i := range cfg.Sources {
		registry.Register(collector.NewHTMLCollector(cfg.Sources[i]))
	}

	log.Info("Collector registry built",
		logger.Int("sources", registry.Len()),
	)
	return registry
}
