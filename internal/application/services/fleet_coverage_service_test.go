package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

func TestFleetCoverageService_CoverageForOperator(t *testing.T) {
	t.Run("resolves each vehicle with the operator's provider", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		service := services.NewFleetCoverageService(providerRepo, fleetRepo)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{
			newProvider("prov-p2p", "Peer Cover", dec(10000), dec(60000)),
			newProvider("prov-com", "Commercial Mutual", nil, nil),
		}, nil)
		fleetRepo.On("GetOperator", mock.Anything, "op-1").Return(p2pOperator(), nil)
		fleetRepo.On("ListFleetVehicles", mock.Anything, repositories.FleetFilter{OperatorID: "op-1"}).
			Return([]*entities.FleetVehicle{
				newFleetVehicle("veh-1", "op-1", "prov-p2p", "Toyota", 30000),
				newFleetVehicle("veh-2", "op-1", "prov-p2p", "BMW", 80000),
				newFleetVehicle("veh-3", "op-1", "prov-p2p", "Audi", 90000),
			}, nil)
		fleetRepo.On("ListOverrides", mock.Anything, "op-1").Return([]*entities.CoverageOverride{
			{ID: "ovr-1", VehicleID: "veh-3", ProviderID: "prov-com"},
		}, nil)

		coverage, err := service.CoverageForOperator(context.Background(), "op-1")

		require.NoError(t, err)
		assert.Equal(t, entities.StateP2PActive, coverage.State)
		require.NotNil(t, coverage.AssignedProvider)
		assert.Equal(t, "Peer Cover", coverage.AssignedProvider.Name)
		assert.Equal(t, 3, coverage.TotalVehicles)
		assert.Equal(t, 2, coverage.CoveredCount)

		require.Len(t, coverage.Vehicles, 3)
		assert.Equal(t, entities.SourceProvider, coverage.Vehicles[0].Verdict.Source)
		assert.Equal(t, entities.GapVehicleRule, coverage.Vehicles[1].Verdict.GapType)
		assert.Equal(t, "prov-com", coverage.Vehicles[1].Verdict.EligibleProviders[0].ID)
		assert.Equal(t, entities.SourceOverride, coverage.Vehicles[2].Verdict.Source)
		fleetRepo.AssertExpectations(t)
	})

	t.Run("unknown operator is not found", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		service := services.NewFleetCoverageService(providerRepo, fleetRepo)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{}, nil)
		fleetRepo.On("GetOperator", mock.Anything, "op-x").Return(nil, apperrors.NewNotFoundError("operator op-x not found"))

		_, err := service.CoverageForOperator(context.Background(), "op-x")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		fleetRepo.AssertNotCalled(t, "ListFleetVehicles", mock.Anything, mock.Anything)
	})
}

func TestFleetCoverageService_PreviewProviderForFleet(t *testing.T) {
	t.Run("splits the fleet by the candidate's rules", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		service := services.NewFleetCoverageService(providerRepo, fleetRepo)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{
			newProvider("prov-a", "Acme Mutual", nil, dec(50000), "Fiat"),
		}, nil)
		fleetRepo.On("ListFleetVehicles", mock.Anything, repositories.FleetFilter{OperatorID: "op-1"}).
			Return([]*entities.FleetVehicle{
				newFleetVehicle("veh-1", "op-1", "", "Toyota", 30000),
				newFleetVehicle("veh-2", "op-1", "", "Fiat", 20000),
				newFleetVehicle("veh-3", "op-1", "", "Lexus", 70000),
			}, nil)

		preview, err := service.PreviewProviderForFleet(context.Background(), "op-1", "prov-a")

		require.NoError(t, err)
		assert.Equal(t, "Acme Mutual", preview.Provider.Name)
		assert.Equal(t, 3, preview.TotalVehicles)
		require.Len(t, preview.Accepted, 1)
		assert.Equal(t, "veh-1", preview.Accepted[0].VehicleID)
		require.Len(t, preview.Rejected, 2)
		assert.Contains(t, preview.Rejected[0].Verdict.Warnings, `make "Fiat" is excluded by provider Acme Mutual`)
		assert.Contains(t, preview.Rejected[1].Verdict.Warnings[0], "above provider maximum ($50000)")
		fleetRepo.AssertNotCalled(t, "ListOverrides", mock.Anything, mock.Anything)
	})

	t.Run("inactive candidate is not found", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		service := services.NewFleetCoverageService(providerRepo, fleetRepo)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{}, nil)

		_, err := service.PreviewProviderForFleet(context.Background(), "op-1", "prov-a")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
