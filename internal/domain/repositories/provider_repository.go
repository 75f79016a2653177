package repositories

import (
	"context"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// ProviderRepository is the read-only view of the insurance provider catalog
type ProviderRepository interface {
	// ListActive retrieves every active provider with its eligibility rules in one query
	ListActive(ctx context.Context) ([]*entities.InsuranceProvider, error)
}
