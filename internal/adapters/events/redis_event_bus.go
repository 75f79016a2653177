package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	redisclient "github.com/fleetshare/coverage-engine/internal/infrastructure/clients/redis"
)

// RedisEventBus publishes operator notifications over Redis Pub/Sub
type RedisEventBus struct {
	client *redisclient.Client
}

// NewRedisEventBus creates a new Redis-based event publisher
func NewRedisEventBus(client *redisclient.Client) providers.EventPublisher {
	return &RedisEventBus{client: client}
}

// Publish publishes a notification on the operator's channel
func (b *RedisEventBus) Publish(ctx context.Context, notification *entities.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := providers.GetOperatorChannel(notification.OperatorID)
	receivers, err := b.client.Client().Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("notification_id", notification.ID).
		Int64("receivers", receivers).
		Msg("published notification")
	return nil
}

// Close is a no-op; the Redis client is owned by the caller
func (b *RedisEventBus) Close() error {
	return nil
}
