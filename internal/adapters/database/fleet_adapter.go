package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// assignedProviderExpr yields the provider of the operator's active slot
var assignedProviderExpr = goqu.L(`CASE
	WHEN "o"."commercial_status" = 'ACTIVE' THEN "o"."commercial_provider_id"
	WHEN "o"."p2p_status" = 'ACTIVE' THEN "o"."p2p_provider_id"
END`).As("assigned_provider_id")

// FleetAdapter implements FleetRepository
type FleetAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFleetAdapter creates a new fleet adapter
func NewFleetAdapter(client *postgres.Client) repositories.FleetRepository {
	return &FleetAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListFleetVehicles retrieves vehicles joined with their operator in one query
func (a *FleetAdapter) ListFleetVehicles(ctx context.Context, filter repositories.FleetFilter) ([]*entities.FleetVehicle, error) {
	where := goqu.Ex{}
	if !filter.IncludeInactive {
		where["v.is_active"] = true
	}
	if filter.OperatorID != "" {
		where["v.operator_id"] = filter.OperatorID
	}

	ds := a.db.Select(
		goqu.I("v.id"), goqu.I("v.operator_id"), goqu.I("v.make"), goqu.I("v.model"),
		goqu.I("v.year"), goqu.I("v.is_active"), goqu.I("v.value_estimate"), goqu.I("v.daily_rate"),
		goqu.I("v.created_at"), goqu.I("o.name").As("operator_name"), assignedProviderExpr,
	).From(goqu.T("vehicles").As("v")).
		Join(goqu.T("operators").As("o"), goqu.On(goqu.I("o.id").Eq(goqu.I("v.operator_id")))).
		Order(goqu.I("v.operator_id").Asc(), goqu.I("v.id").Asc())
	if len(where) > 0 {
		ds = ds.Where(where)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list fleet vehicles", err)
	}
	defer rows.Close()

	vehicles := make([]*entities.FleetVehicle, 0)
	for rows.Next() {
		fv := &entities.FleetVehicle{}
		var valueEstimate decimal.NullDecimal
		var assigned sql.NullString

		if err := rows.Scan(
			&fv.ID,
			&fv.OperatorID,
			&fv.Make,
			&fv.Model,
			&fv.Year,
			&fv.IsActive,
			&valueEstimate,
			&fv.DailyRate,
			&fv.CreatedAt,
			&fv.OperatorName,
			&assigned,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan fleet vehicle", err)
		}

		fv.ValueEstimate = nullableDecimal(valueEstimate)
		fv.AssignedProviderID = assigned.String
		vehicles = append(vehicles, fv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate fleet vehicles", err)
	}

	return vehicles, nil
}

// ListOverrides retrieves coverage overrides, oldest first
func (a *FleetAdapter) ListOverrides(ctx context.Context, operatorID string) ([]*entities.CoverageOverride, error) {
	ds := a.db.Select(
		goqu.I("c.id"), goqu.I("c.vehicle_id"), goqu.I("c.provider_id"),
		goqu.I("c.reason"), goqu.I("c.authorized_by"), goqu.I("c.created_at"),
	).From(goqu.T("coverage_overrides").As("c")).
		Order(goqu.I("c.created_at").Asc(), goqu.I("c.id").Asc())
	if operatorID != "" {
		ds = ds.Join(goqu.T("vehicles").As("v"), goqu.On(goqu.I("v.id").Eq(goqu.I("c.vehicle_id")))).
			Where(goqu.Ex{"v.operator_id": operatorID})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list coverage overrides", err)
	}
	defer rows.Close()

	overrides := make([]*entities.CoverageOverride, 0)
	for rows.Next() {
		o := &entities.CoverageOverride{}
		if err := rows.Scan(&o.ID, &o.VehicleID, &o.ProviderID, &o.Reason, &o.AuthorizedBy, &o.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan coverage override", err)
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate coverage overrides", err)
	}

	return overrides, nil
}

// GetOperator retrieves an operator without locking it
func (a *FleetAdapter) GetOperator(ctx context.Context, operatorID string) (*entities.Operator, error) {
	query, args, err := a.db.Select(operatorColumns...).
		From("operators").
		Where(goqu.Ex{"id": operatorID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	op, err := scanOperator(a.client.Querier(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("operator with id %s not found", operatorID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get operator", err)
	}

	return op, nil
}
