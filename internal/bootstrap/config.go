package bootstrap

import (
	"flag"
	"fmt"
	"os"

	"github.com/vigiasalud/alert-ingestor/internal/config"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
)

// Flags holds the parsed command line flags.
type Flags struct {
	ConfigPath string
	Once       bool
}

// ParseFlags parses command line flags.
func ParseFlags() Flags {
	configPath := flag.String("config", defaultConfigPath(), "Path to configuration file")
	once := flag.Bool("once", false, "Run a single ingestion pass and exit")
	flag.Parse()

	return Flags{
		ConfigPath: *configPath,
		Once:       *once,
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yml"
}

// LoadConfig loads and validates the service configuration.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates the service logger from configuration.
func CreateLogger(cfg *config.Config, version string) (logger.Logger, error) {
	log, err := logger.New(cfg.LogLevel, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", "alert-ingestor"),
		logger.String("version", version),
	), nil
}
