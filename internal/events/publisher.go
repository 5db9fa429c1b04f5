// Package events publishes run lifecycle events to Redis Streams so
// downstream consumers (notifiers, dashboards) can react to completed runs.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vigiasalud/alert-ingestor/internal/logger"
	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// StreamName is the Redis stream run events are appended to.
const StreamName = "ingestor:runs"

// asyncPublishTimeout is the context timeout for async publish operations.
const asyncPublishTimeout = 5 * time.Second

// RunCompleted is the payload appended to the stream after every run.
type RunCompleted struct {
	EventID    uuid.UUID             `json:"event_id"`
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Sources    []models.SourceReport `json:"sources"`
}

// Publisher publishes run events to Redis Streams.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher creates a new event publisher. Returns nil if client is nil;
// a nil *Publisher is a valid no-op.
func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		log:    log,
	}
}

// PublishRunCompleted appends a run-completed event to the stream.
func (p *Publisher) PublishRunCompleted(ctx context.Context, report *models.RunReport) error {
	if p == nil || p.client == nil {
		return nil
	}

	event := RunCompleted{
		EventID:    uuid.New(),
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Sources:    report.Sources,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event": string(payload),
		},
	})

	if publishErr := result.Err(); publishErr != nil {
		if p.log != nil {
			p.log.Error("Failed to publish run event",
				logger.String("run_id", report.RunID),
				logger.Error(publishErr),
			)
		}
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	if p.log != nil {
		p.log.Info("Published run event",
			logger.String("run_id", report.RunID),
			logger.String("stream_id", result.Val()),
		)
	}

	return nil
}

// PublishRunCompletedAsync publishes without blocking the caller. Errors are
// logged but not returned.
func (p *Publisher) PublishRunCompletedAsync(report *models.RunReport) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		_ = p.PublishRunCompleted(ctx, report)
	}()
}
