package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vigiasalud/alert-ingestor/internal/config"
	"github.com/vigiasalud/alert-ingestor/internal/events"
	"github.com/vigiasalud/alert-ingestor/internal/logger"
)

const redisPingTimeout = 3 * time.Second

// SetupEventPublisher creates an optional run event publisher if Redis is
// enabled. Returns nil if Redis is disabled or unavailable; run events are a
// best-effort side channel, not a run dependency.
func SetupEventPublisher(cfg *config.Config, log logger.Logger) *events.Publisher {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis not available, run events disabled",
			logger.Error(err),
		)
		return nil
	}

	log.Info("Event publisher initialized",
		logger.String("redis_address", cfg.Redis.Address),
	)
	return events.NewPublisher(client, log)
}
