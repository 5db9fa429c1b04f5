// Package repository implements the persistence boundary for alerts. Every
// save is its own implicit transaction; a uniqueness violation is an expected
// outcome, not an error.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// AlertRepository handles database operations for alerts.
type AlertRepository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewAlertRepository creates a repository over the given database connection.
func NewAlertRepository(db *sql.DB, log logger.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: log,
	}
}

// Save inserts the alert as a new row. A natural-key collision on either
// unique constraint returns OutcomeDuplicate with the existing row untouched.
// Any other store failure returns OutcomeErrored and the error propagates to
// the caller's per-source isolation boundary.
func (r *AlertRepository) Save(ctx context.Context, alert *models.Alert) (models.Outcome, error) {
	query := `
		INSERT INTO alertas (
			title, description, source_type, category, country,
			source_url, institution, presentation_date,
			metadata_nota_url, metadata_publicacion_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		alert.Title,
		alert.Description,
		alert.SourceType,
		alert.Category,
		alert.Country,
		alert.SourceURL,
		alert.Institution,
		alert.PresentationDate,
		alert.MetadataNotaURL,
		alert.MetadataPublicacionURL,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.logger.Debug("Duplicate alert discarded",
				logger.String("title", alert.Title),
				logger.String("constraint", pqErr.Constraint),
			)
			return models.OutcomeDuplicate, nil
		}
		return models.OutcomeErrored, fmt.Errorf("insert alert: %w", err)
	}

	return models.OutcomeSaved, nil
}

// Count returns the total number of stored alerts.
func (r *AlertRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alertas`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count alerts: %w", err)
	}
	return count, nil
}

// Ping checks database connectivity.
func (r *AlertRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
