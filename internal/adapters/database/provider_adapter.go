package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/clients/postgres"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// ProviderAdapter implements ProviderRepository
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListActive retrieves every active provider with its eligibility rules
func (a *ProviderAdapter) ListActive(ctx context.Context) ([]*entities.InsuranceProvider, error) {
	query, args, err := a.db.Select(
		"id", "name", "type", "is_active",
		"vehicle_value_min", "vehicle_value_max",
		"excluded_makes", "excluded_models",
		"created_at", "updated_at",
	).From("insurance_providers").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list insurance providers", err)
	}
	defer rows.Close()

	providers := make([]*entities.InsuranceProvider, 0)
	for rows.Next() {
		provider := &entities.InsuranceProvider{}
		var minValue, maxValue decimal.NullDecimal
		var excludedMakes, excludedModels []string

		if err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.Type,
			&provider.IsActive,
			&minValue,
			&maxValue,
			pq.Array(&excludedMakes),
			pq.Array(&excludedModels),
			&provider.CreatedAt,
			&provider.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan insurance provider", err)
		}

		provider.Rules = entities.EligibilityRules{
			VehicleValueMin: nullableDecimal(minValue),
			VehicleValueMax: nullableDecimal(maxValue),
			ExcludedMakes:   entities.NewStringSet(excludedMakes...),
			ExcludedModels:  entities.NewStringSet(excludedModels...),
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate insurance providers", err)
	}

	return providers, nil
}

func nullableDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
