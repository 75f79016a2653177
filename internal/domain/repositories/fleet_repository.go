package repositories

import (
	"context"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

// FleetFilter scopes a bulk vehicle read
type FleetFilter struct {
	// OperatorID restricts the read to one operator's vehicles when set
	OperatorID string
	// IncludeInactive includes vehicles that are not listed
	IncludeInactive bool
}

// FleetRepository provides the bulk reads behind coverage resolution.
// Every method is a single query regardless of fleet size.
type FleetRepository interface {
	// ListFleetVehicles retrieves vehicles joined with their operator
	ListFleetVehicles(ctx context.Context, filter FleetFilter) ([]*entities.FleetVehicle, error)

	// ListOverrides retrieves coverage overrides, restricted to one operator's vehicles when operatorID is set
	ListOverrides(ctx context.Context, operatorID string) ([]*entities.CoverageOverride, error)

	// GetOperator retrieves an operator without locking it
	GetOperator(ctx context.Context, operatorID string) (*entities.Operator, error)
}
