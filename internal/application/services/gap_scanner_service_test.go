package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/pkg/config"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

func categories(recs []entities.Recommendation) []entities.RecommendationCategory {
	out := make([]entities.RecommendationCategory, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Category)
	}
	return out
}

func TestGapScannerService_ScanFleet(t *testing.T) {
	cfg := config.DefaultEngineConfig()

	t.Run("partitions the fleet into covered and gap vehicles", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		scanner := services.NewGapScannerService(providerRepo, fleetRepo, cfg)

		acme := newProvider("prov-a", "Acme Mutual", dec(10000), dec(60000), "Lada")
		birch := newProvider("prov-b", "Birch Insurance", dec(50000), nil)
		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{acme, birch}, nil)

		vehicles := []*entities.FleetVehicle{
			newFleetVehicle("veh-1", "op-1", "prov-a", "Toyota", 40000),  // covered by acme
			newFleetVehicle("veh-2", "op-1", "prov-a", "Porsche", 90000), // above acme max, birch eligible
			newFleetVehicle("veh-3", "op-2", "", "Ford", 30000),          // host level
			newFleetVehicle("veh-4", "op-2", "", "Ford", 20000),          // host level, low value
			newFleetVehicle("veh-5", "op-1", "prov-a", "Lada", 15000),    // excluded make
			newFleetVehicle("veh-6", "op-3", "prov-x", "Honda", 30000),   // assigned provider inactive
			newFleetVehicle("veh-7", "op-1", "prov-a", "Ferrari", 95000), // override
		}
		fleetRepo.On("ListFleetVehicles", mock.Anything, repositories.FleetFilter{}).Return(vehicles, nil)
		fleetRepo.On("ListOverrides", mock.Anything, "").Return([]*entities.CoverageOverride{
			{ID: "ovr-1", VehicleID: "veh-7", ProviderID: "prov-b"},
			{ID: "ovr-2", VehicleID: "veh-7", ProviderID: "prov-a"},
		}, nil)

		report, err := scanner.ScanFleet(context.Background(), services.ScanScope{})

		require.NoError(t, err)
		assert.Equal(t, 7, report.Summary.TotalVehicles)
		assert.Equal(t, 2, report.Summary.TotalCovered)
		assert.Equal(t, 5, report.Summary.TotalGaps)
		assert.Equal(t, 3, report.Summary.HostLevelGaps)
		assert.Equal(t, 2, report.Summary.VehicleRuleGaps)
		assert.Equal(t, 2, report.Summary.ActiveProviders)
		assert.False(t, report.Summary.CriticalIssue)
		assert.True(t, report.Summary.CoverageRate.Equal(decimal.New(2857, -4)))
		assert.Equal(t, report.Summary.TotalVehicles, report.Summary.TotalCovered+report.Summary.TotalGaps)
		assert.Len(t, report.AllGaps, len(report.HostGaps)+len(report.VehicleRuleGaps))

		override := report.Covered[1]
		assert.Equal(t, "veh-7", override.VehicleID)
		assert.Equal(t, entities.SourceOverride, override.Verdict.Source)
		assert.Equal(t, "prov-b", override.Verdict.Provider.ID)

		require.Len(t, report.Providers, 2)
		assert.Equal(t, "prov-a", report.Providers[0].ID)
		assert.Equal(t, 1, report.Providers[0].VehiclesCovered)
		assert.Equal(t, 1, report.Providers[1].VehiclesCovered)

		assert.Equal(t, []entities.RecommendationCategory{
			entities.RecommendHostNoProvider,
			entities.RecommendLuxuryTier,
			entities.RecommendLowValueCoverage,
			entities.RecommendReassignProvider,
			entities.RecommendExcludedMakes,
		}, categories(report.Recommendations))

		host := report.Recommendations[0]
		assert.Equal(t, entities.PriorityHigh, host.Priority)
		assert.Equal(t, []string{"op-2", "op-3"}, host.OperatorIDs)
		assert.Equal(t, 3, host.AffectedCount)

		assert.Equal(t, []string{"veh-2"}, report.Recommendations[1].VehicleIDs)
		assert.Equal(t, []string{"veh-4", "veh-5"}, report.Recommendations[2].VehicleIDs)
		assert.Equal(t, []string{"veh-2"}, report.Recommendations[3].VehicleIDs)
		assert.Equal(t, []string{"veh-5"}, report.Recommendations[4].VehicleIDs)

		providerRepo.AssertExpectations(t)
		fleetRepo.AssertExpectations(t)
	})

	t.Run("zero active providers short circuits", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		scanner := services.NewGapScannerService(providerRepo, fleetRepo, cfg)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{}, nil)

		report, err := scanner.ScanFleet(context.Background(), services.ScanScope{})

		require.NoError(t, err)
		assert.True(t, report.Summary.CriticalIssue)
		assert.Equal(t, 0, report.Summary.TotalVehicles)
		require.Len(t, report.Recommendations, 1)
		assert.Equal(t, entities.PriorityCritical, report.Recommendations[0].Priority)
		assert.Equal(t, entities.RecommendAddProvider, report.Recommendations[0].Category)
		fleetRepo.AssertNotCalled(t, "ListFleetVehicles", mock.Anything, mock.Anything)
		fleetRepo.AssertNotCalled(t, "ListOverrides", mock.Anything, mock.Anything)
	})

	t.Run("single provider is flagged", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		scanner := services.NewGapScannerService(providerRepo, fleetRepo, cfg)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{
			newProvider("prov-a", "Acme Mutual", nil, nil),
		}, nil)
		fleetRepo.On("ListFleetVehicles", mock.Anything, repositories.FleetFilter{IncludeInactive: true}).
			Return([]*entities.FleetVehicle{newFleetVehicle("veh-1", "op-1", "prov-a", "Toyota", 40000)}, nil)
		fleetRepo.On("ListOverrides", mock.Anything, "").Return([]*entities.CoverageOverride{}, nil)

		report, err := scanner.ScanFleet(context.Background(), services.ScanScope{IncludeInactiveVehicles: true})

		require.NoError(t, err)
		assert.Equal(t, 0, report.Summary.TotalGaps)
		assert.True(t, report.Summary.CoverageRate.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, []entities.RecommendationCategory{entities.RecommendSingleProvider}, categories(report.Recommendations))
		fleetRepo.AssertExpectations(t)
	})

	t.Run("empty fleet has a zero coverage rate", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		scanner := services.NewGapScannerService(providerRepo, fleetRepo, cfg)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{
			newProvider("prov-a", "Acme Mutual", nil, nil),
			newProvider("prov-b", "Birch Insurance", nil, nil),
		}, nil)
		fleetRepo.On("ListFleetVehicles", mock.Anything, mock.Anything).Return([]*entities.FleetVehicle{}, nil)
		fleetRepo.On("ListOverrides", mock.Anything, "").Return([]*entities.CoverageOverride{}, nil)

		report, err := scanner.ScanFleet(context.Background(), services.ScanScope{})

		require.NoError(t, err)
		assert.True(t, report.Summary.CoverageRate.IsZero())
		assert.Empty(t, report.Recommendations)
	})

	t.Run("read failure aborts the scan", func(t *testing.T) {
		providerRepo := new(MockProviderRepository)
		fleetRepo := new(MockFleetRepository)
		scanner := services.NewGapScannerService(providerRepo, fleetRepo, cfg)

		providerRepo.On("ListActive", mock.Anything).Return([]*entities.InsuranceProvider{
			newProvider("prov-a", "Acme Mutual", nil, nil),
		}, nil)
		fleetRepo.On("ListFleetVehicles", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		report, err := scanner.ScanFleet(context.Background(), services.ScanScope{})

		assert.Nil(t, report)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDataAccess))
		assert.Contains(t, err.Error(), "timeout")
	})
}
