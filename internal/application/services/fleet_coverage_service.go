package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// FleetCoverageService answers coverage questions for a single operator
type FleetCoverageService struct {
	providers repositories.ProviderRepository
	fleet     repositories.FleetRepository
	now       func() time.Time
}

// NewFleetCoverageService creates a new fleet coverage service
func NewFleetCoverageService(providers repositories.ProviderRepository, fleet repositories.FleetRepository) *FleetCoverageService {
	return &FleetCoverageService{
		providers: providers,
		fleet:     fleet,
		now:       time.Now,
	}
}

// CoverageForOperator resolves every active vehicle of one operator
func (s *FleetCoverageService) CoverageForOperator(ctx context.Context, operatorID string) (*entities.OperatorCoverage, error) {
	ctx, span := observability.StartSpan(ctx, "FleetCoverageService.CoverageForOperator",
		attribute.String("operator.id", operatorID))
	defer span.End()

	if operatorID == "" {
		return nil, apperrors.NewValidationError(ReasonOperatorRequired, "operator id is required")
	}

	catalog, err := LoadProviderCatalog(ctx, s.providers)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list active providers", err)
	}

	op, err := s.fleet.GetOperator(ctx, operatorID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, wrapRead("get operator", err)
	}

	vehicles, err := s.fleet.ListFleetVehicles(ctx, repositories.FleetFilter{OperatorID: operatorID})
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list fleet vehicles", err)
	}

	overrides, err := s.fleet.ListOverrides(ctx, operatorID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list coverage overrides", err)
	}
	byVehicle := indexOverrides(overrides)

	assigned := assignedProvider(catalog, op.AssignedProviderID())
	result := &entities.OperatorCoverage{
		OperatorID:    op.ID,
		OperatorName:  op.Name,
		State:         op.State(),
		TotalVehicles: len(vehicles),
		Vehicles:      make([]entities.VehicleVerdict, 0, len(vehicles)),
	}
	if assigned != nil {
		if assigned.IsActive {
			result.AssignedProvider = assigned.Ref()
		} else {
			result.AssignedProvider = &entities.ProviderRef{ID: assigned.ID}
		}
	}

	for _, fv := range vehicles {
		verdict := ResolveCoverage(&fv.Vehicle, assigned, catalog, byVehicle[fv.ID])
		if verdict.HasCoverage {
			result.CoveredCount++
		}
		result.Vehicles = append(result.Vehicles, entities.VehicleVerdict{
			VehicleID:      fv.ID,
			OperatorID:     op.ID,
			OperatorName:   op.Name,
			Make:           fv.Make,
			Model:          fv.Model,
			EstimatedValue: fv.EstimatedValue(),
			Verdict:        verdict,
		})
	}

	return result, nil
}

// PreviewProviderForFleet reports how a candidate provider would treat the
// operator's fleet if it were assigned. Overrides are ignored.
func (s *FleetCoverageService) PreviewProviderForFleet(ctx context.Context, operatorID, providerID string) (*entities.FleetPreview, error) {
	ctx, span := observability.StartSpan(ctx, "FleetCoverageService.PreviewProviderForFleet",
		attribute.String("operator.id", operatorID),
		attribute.String("provider.id", providerID))
	defer span.End()

	if operatorID == "" {
		return nil, apperrors.NewValidationError(ReasonOperatorRequired, "operator id is required")
	}
	if providerID == "" {
		return nil, apperrors.NewValidationError("PROVIDER_REQUIRED", "provider id is required")
	}

	catalog, err := LoadProviderCatalog(ctx, s.providers)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list active providers", err)
	}
	candidate := catalog.Get(providerID)
	if candidate == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("active insurance provider %s not found", providerID))
	}

	vehicles, err := s.fleet.ListFleetVehicles(ctx, repositories.FleetFilter{OperatorID: operatorID})
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list fleet vehicles", err)
	}

	preview := &entities.FleetPreview{
		OperatorID:    operatorID,
		Provider:      *candidate.Ref(),
		TotalVehicles: len(vehicles),
		Accepted:      make([]entities.VehicleVerdict, 0, len(vehicles)),
		Rejected:      make([]entities.VehicleVerdict, 0),
		GeneratedAt:   s.now(),
	}
	for _, fv := range vehicles {
		entry := entities.VehicleVerdict{
			VehicleID:      fv.ID,
			OperatorID:     fv.OperatorID,
			OperatorName:   fv.OperatorName,
			Make:           fv.Make,
			Model:          fv.Model,
			EstimatedValue: fv.EstimatedValue(),
			Verdict:        ResolveCoverage(&fv.Vehicle, candidate, catalog, nil),
		}
		if entry.Verdict.HasCoverage {
			preview.Accepted = append(preview.Accepted, entry)
		} else {
			preview.Rejected = append(preview.Rejected, entry)
		}
	}

	return preview, nil
}

// wrapRead keeps NotFound errors intact and wraps everything else as a data
// access failure
func wrapRead(operation string, err error) error {
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return err
	}
	return apperrors.NewDataAccessError(operation, err)
}
