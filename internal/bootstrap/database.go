package bootstrap

import (
	"fmt"

	"github.com/vigiasalud/alert-ingestor/internal/config"
	"github.com/vigiasalud/alert-ingestor/internal/database"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
)

// SetupDatabase creates the database connection pool.
func SetupDatabase(cfg *config.Config, log logger.Logger) (*database.DB, error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}
	return db, nil
}
