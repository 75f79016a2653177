package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
	"github.com/fleetshare/coverage-engine/pkg/config"
	apperrors "github.com/fleetshare/coverage-engine/pkg/errors"
)

// ScanScope selects the vehicles of a fleet scan
type ScanScope struct {
	IncludeInactiveVehicles bool `json:"include_inactive_vehicles"`
}

// GapScannerService produces full-fleet coverage reports
type GapScannerService struct {
	providers repositories.ProviderRepository
	fleet     repositories.FleetRepository
	cfg       config.EngineConfig
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewGapScannerService creates a new gap scanner
func NewGapScannerService(
	providers repositories.ProviderRepository,
	fleet repositories.FleetRepository,
	cfg config.EngineConfig,
) *GapScannerService {
	return &GapScannerService{
		providers: providers,
		fleet:     fleet,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetMetrics sets the metrics the scanner reports to
func (s *GapScannerService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// ScanFleet resolves coverage for every vehicle in scope. Data is read with
// three bulk queries (providers, vehicles joined with operators, overrides)
// and then resolved in one in-memory pass. Any read failure aborts the scan.
func (s *GapScannerService) ScanFleet(ctx context.Context, scope ScanScope) (*entities.GapReport, error) {
	ctx, span := observability.StartSpan(ctx, "GapScannerService.ScanFleet",
		attribute.Bool("scope.include_inactive", scope.IncludeInactiveVehicles))
	defer span.End()

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	catalog, err := LoadProviderCatalog(ctx, s.providers)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list active providers", err)
	}

	if catalog.Len() == 0 {
		logger.Error().Msg("fleet scan found no active insurance providers")
		return s.noProviderReport(), nil
	}

	vehicles, err := s.fleet.ListFleetVehicles(ctx, repositories.FleetFilter{
		IncludeInactive: scope.IncludeInactiveVehicles,
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list fleet vehicles", err)
	}

	overrides, err := s.fleet.ListOverrides(ctx, "")
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewDataAccessError("list coverage overrides", err)
	}

	report := s.resolveAll(catalog, vehicles, indexOverrides(overrides))

	span.SetAttributes(
		attribute.Int("scan.vehicles", report.Summary.TotalVehicles),
		attribute.Int("scan.gaps", report.Summary.TotalGaps),
	)
	observability.RecordScan(ctx, s.metrics, time.Since(start), report.Summary.TotalGaps)

	logger.Info().
		Int("vehicles", report.Summary.TotalVehicles).
		Int("covered", report.Summary.TotalCovered).
		Int("host_level_gaps", report.Summary.HostLevelGaps).
		Int("vehicle_rule_gaps", report.Summary.VehicleRuleGaps).
		Int("active_providers", report.Summary.ActiveProviders).
		Dur("duration", time.Since(start)).
		Msg("fleet coverage scan completed")

	return report, nil
}

func (s *GapScannerService) resolveAll(
	catalog *ProviderCatalog,
	vehicles []*entities.FleetVehicle,
	overrides map[string]*entities.CoverageOverride,
) *entities.GapReport {
	report := &entities.GapReport{
		Covered:         make([]entities.VehicleVerdict, 0, len(vehicles)),
		HostGaps:        make([]entities.VehicleVerdict, 0),
		VehicleRuleGaps: make([]entities.VehicleVerdict, 0),
		AllGaps:         make([]entities.VehicleVerdict, 0),
		GeneratedAt:     s.now(),
	}
	coveredBy := make(map[string]int, catalog.Len())
	stats := newGapStats()

	for _, fv := range vehicles {
		assigned := assignedProvider(catalog, fv.AssignedProviderID)
		verdict := ResolveCoverage(&fv.Vehicle, assigned, catalog, overrides[fv.ID])

		entry := entities.VehicleVerdict{
			VehicleID:      fv.ID,
			OperatorID:     fv.OperatorID,
			OperatorName:   fv.OperatorName,
			Make:           fv.Make,
			Model:          fv.Model,
			EstimatedValue: fv.EstimatedValue(),
			Verdict:        verdict,
		}

		if verdict.HasCoverage {
			report.Covered = append(report.Covered, entry)
			if verdict.Provider != nil {
				coveredBy[verdict.Provider.ID]++
			}
			continue
		}

		switch verdict.GapType {
		case entities.GapHostLevel:
			report.HostGaps = append(report.HostGaps, entry)
		default:
			report.VehicleRuleGaps = append(report.VehicleRuleGaps, entry)
		}
		report.AllGaps = append(report.AllGaps, entry)
		stats.add(entry, assigned, s.cfg)
	}

	total := len(vehicles)
	report.Summary = entities.GapSummary{
		TotalVehicles:   total,
		TotalCovered:    len(report.Covered),
		TotalGaps:       len(report.AllGaps),
		HostLevelGaps:   len(report.HostGaps),
		VehicleRuleGaps: len(report.VehicleRuleGaps),
		ActiveProviders: catalog.Len(),
		CoverageRate:    coverageRate(len(report.Covered), total),
	}

	report.Providers = make([]entities.ProviderCoverage, 0, catalog.Len())
	for _, p := range catalog.Active() {
		report.Providers = append(report.Providers, entities.ProviderCoverage{
			ProviderRef:     *p.Ref(),
			VehiclesCovered: coveredBy[p.ID],
		})
	}

	report.Recommendations = buildRecommendations(stats, catalog, s.cfg)
	return report
}

func (s *GapScannerService) noProviderReport() *entities.GapReport {
	return &entities.GapReport{
		Summary: entities.GapSummary{
			CriticalIssue: true,
			CoverageRate:  decimal.Zero,
		},
		Covered:         []entities.VehicleVerdict{},
		HostGaps:        []entities.VehicleVerdict{},
		VehicleRuleGaps: []entities.VehicleVerdict{},
		AllGaps:         []entities.VehicleVerdict{},
		Providers:       []entities.ProviderCoverage{},
		Recommendations: []entities.Recommendation{noProviderRecommendation()},
		GeneratedAt:     s.now(),
	}
}

func indexOverrides(overrides []*entities.CoverageOverride) map[string]*entities.CoverageOverride {
	byVehicle := make(map[string]*entities.CoverageOverride, len(overrides))
	for _, o := range overrides {
		if o == nil {
			continue
		}
		// first override per vehicle wins; the store returns them oldest first
		if _, exists := byVehicle[o.VehicleID]; !exists {
			byVehicle[o.VehicleID] = o
		}
	}
	return byVehicle
}

func coverageRate(covered, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(covered)).Div(decimal.NewFromInt(int64(total))).Round(4)
}
