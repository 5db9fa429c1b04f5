// Package api exposes the operational HTTP surface: health, metrics, run
// triggering, and run reports. The read-side dashboard lives elsewhere and
// only shares the store schema.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// RunService is the subset of the orchestrator service the API needs.
type RunService interface {
	TryRunAsync(ctx context.Context) bool
	Running() bool
	LastReport() *models.RunReport
}

// Store is the subset of the alert repository the API needs.
type Store interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// Handler serves the ops endpoints.
type Handler struct {
	runs   RunService
	store  Store
	logger logger.Logger
}

// NewHandler creates an API handler.
func NewHandler(runs RunService, store Store, log logger.Logger) *Handler {
	return &Handler{
		runs:   runs,
		store:  store,
		logger: log,
	}
}

// Health reports service and database health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TriggerRun starts an ingestion run in the background. A run already in
// flight is not queued behind.
func (h *Handler) TriggerRun(c *gin.Context) {
	if !h.runs.TryRunAsync(context.Background()) {
		c.JSON(http.StatusConflict, gin.H{"error": "run already in flight"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// LatestRun returns the most recent completed run report.
func (h *Handler) LatestRun(c *gin.Context) {
	report := h.runs.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed run yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Stats returns store-level totals.
func (h *Handler) Stats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count alerts", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count alerts failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts":  count,
		"running": h.runs.Running(),
	})
}
