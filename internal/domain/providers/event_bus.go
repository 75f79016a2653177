package providers

import (
	"context"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// EventPublisher fans operator notifications out to live subscribers
type EventPublisher interface {
	// Publish publishes a notification on the operator's channel
	Publish(ctx context.Context, notification *entities.Notification) error

	// Close releases the publisher
	Close() error
}

// EventChannelOperatorPrefix is the prefix for operator-specific channels
const EventChannelOperatorPrefix = "operator:"

// GetOperatorChannel returns the notification channel of an operator
func GetOperatorChannel(operatorID string) string {
	return EventChannelOperatorPrefix + operatorID + ":notifications"
}
