package providers

import (
	"context"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// AuditSink records audit log entries
type AuditSink interface {
	Record(ctx context.Context, record *entities.AuditRecord) error
}

// NotificationSink hands operator-facing notifications to the notification subsystem
type NotificationSink interface {
	Notify(ctx context.Context, notification *entities.Notification) error
}
