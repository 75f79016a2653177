package database

import (
	"context"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/providers"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// AuditAdapter implements AuditSink over the audit_logs table
type AuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAuditAdapter creates a new audit adapter
func NewAuditAdapter(client *postgres.Client) providers.AuditSink {
	return &AuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Record inserts one audit entry
func (a *AuditAdapter) Record(ctx context.Context, record *entities.AuditRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return apperrors.NewInternalError("failed to encode audit metadata", err)
	}

	query, args, err := a.db.Insert("audit_logs").Rows(goqu.Record{
		"id":          record.ID,
		"entity_type": record.EntityType,
		"entity_id":   record.EntityID,
		"action":      record.Action,
		"actor_id":    record.ActorID,
		"metadata":    goqu.L("?::jsonb", string(metadata)),
		"created_at":  record.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Querier(ctx).ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record audit entry", err)
	}
	return nil
}
