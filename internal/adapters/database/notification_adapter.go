package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// NotificationAdapter implements NotificationSink. Notifications are stored
// in operator_notifications and, when a publisher is configured, pushed to
// the operator's live channel.
type NotificationAdapter struct {
	client    *postgres.Client
	db        *goqu.Database
	publisher providers.EventPublisher
}

// NewNotificationAdapter creates a new notification adapter. publisher may be nil.
func NewNotificationAdapter(client *postgres.Client, publisher providers.EventPublisher) providers.NotificationSink {
	return &NotificationAdapter{
		client:    client,
		db:        goqu.New("postgres", client.DB()),
		publisher: publisher,
	}
}

// Notify stores the notification and publishes it
func (a *NotificationAdapter) Notify(ctx context.Context, notification *entities.Notification) error {
	query, args, err := a.db.Insert("operator_notifications").Rows(goqu.Record{
		"id":          notification.ID,
		"operator_id": notification.OperatorID,
		"category":    notification.Category,
		"subject":     notification.Subject,
		"body":        notification.Body,
		"status":      notification.Status,
		"created_at":  notification.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to store notification", err)
	}

	if a.publisher != nil {
		// the stored row is the source of truth; a missed publish only delays delivery
		if err := a.publisher.Publish(ctx, notification); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("operator_id", notification.OperatorID).
				Str("notification_id", notification.ID).
				Msg("failed to publish notification")
		}
	}
	return nil
}
