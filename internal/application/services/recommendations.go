package services

import (
	"fmt"
	"sort"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/pkg/config"
)

// gapStats accumulates the groupings recommendations are built from while
// the scanner makes its single pass over the gaps
type gapStats struct {
	hostOperators  []string
	hostVehicles   map[string]int
	hostVehicleIDs []string
	highValue      []string
	lowValue       []string
	reassignable   []string
	excludedMakes  map[string][]string
	excludedOrder  []string
}

func newGapStats() *gapStats {
	return &gapStats{
		hostVehicles:  make(map[string]int),
		excludedMakes: make(map[string][]string),
	}
}

func (g *gapStats) add(entry entities.VehicleVerdict, assigned *entities.InsuranceProvider, cfg config.EngineConfig) {
	switch entry.Verdict.GapType {
	case entities.GapHostLevel:
		if _, seen := g.hostVehicles[entry.OperatorID]; !seen {
			g.hostOperators = append(g.hostOperators, entry.OperatorID)
		}
		g.hostVehicles[entry.OperatorID]++
		g.hostVehicleIDs = append(g.hostVehicleIDs, entry.VehicleID)
	case entities.GapVehicleRule:
		if len(entry.Verdict.EligibleProviders) > 0 {
			g.reassignable = append(g.reassignable, entry.VehicleID)
		}
		if assigned != nil && assigned.Rules.ExcludedMakes.Contains(entry.Make) {
			if _, seen := g.excludedMakes[entry.Make]; !seen {
				g.excludedOrder = append(g.excludedOrder, entry.Make)
			}
			g.excludedMakes[entry.Make] = append(g.excludedMakes[entry.Make], entry.VehicleID)
		}
	}

	if entry.EstimatedValue.GreaterThan(cfg.HighValueThreshold) {
		g.highValue = append(g.highValue, entry.VehicleID)
	}
	if entry.EstimatedValue.LessThan(cfg.LowValueThreshold) {
		g.lowValue = append(g.lowValue, entry.VehicleID)
	}
}

func buildRecommendations(g *gapStats, catalog *ProviderCatalog, cfg config.EngineConfig) []entities.Recommendation {
	recs := make([]entities.Recommendation, 0)

	if len(g.hostOperators) > 0 {
		recs = append(recs, entities.Recommendation{
			Priority: entities.PriorityHigh,
			Category: entities.RecommendHostNoProvider,
			Message: fmt.Sprintf("%d operator(s) have no active insurance provider, leaving %d vehicle(s) uncovered",
				len(g.hostOperators), len(g.hostVehicleIDs)),
			Action:        "Assign an approved insurance provider to each affected operator",
			AffectedCount: len(g.hostVehicleIDs),
			OperatorIDs:   g.hostOperators,
			VehicleIDs:    g.hostVehicleIDs,
		})
	}

	if len(g.highValue) > 0 {
		recs = append(recs, entities.Recommendation{
			Priority: entities.PriorityMedium,
			Category: entities.RecommendLuxuryTier,
			Message: fmt.Sprintf("%d uncovered vehicle(s) are valued above %s",
				len(g.highValue), dollars(cfg.HighValueThreshold)),
			Action:        "Onboard a luxury-tier provider that accepts high-value vehicles",
			AffectedCount: len(g.highValue),
			VehicleIDs:    g.highValue,
		})
	}

	if len(g.lowValue) > 0 {
		recs = append(recs, entities.Recommendation{
			Priority: entities.PriorityMedium,
			Category: entities.RecommendLowValueCoverage,
			Message: fmt.Sprintf("%d uncovered vehicle(s) are valued below %s",
				len(g.lowValue), dollars(cfg.LowValueThreshold)),
			Action:        "Expand low-end coverage or onboard a provider without a value minimum",
			AffectedCount: len(g.lowValue),
			VehicleIDs:    g.lowValue,
		})
	}

	if len(g.reassignable) > 0 {
		recs = append(recs, entities.Recommendation{
			Priority: entities.PriorityMedium,
			Category: entities.RecommendReassignProvider,
			Message: fmt.Sprintf("%d vehicle(s) rejected by their operator's provider would be accepted by another active provider",
				len(g.reassignable)),
			Action:        "Move the affected operators to an eligible provider or add overrides",
			AffectedCount: len(g.reassignable),
			VehicleIDs:    g.reassignable,
		})
	}

	makes := append([]string(nil), g.excludedOrder...)
	sort.SliceStable(makes, func(i, j int) bool {
		return len(g.excludedMakes[makes[i]]) > len(g.excludedMakes[makes[j]])
	})
	for _, vehicleMake := range makes {
		ids := g.excludedMakes[vehicleMake]
		recs = append(recs, entities.Recommendation{
			Priority:      entities.PriorityLow,
			Category:      entities.RecommendExcludedMakes,
			Message:       fmt.Sprintf("%d vehicle(s) of make %q are excluded by their operator's provider", len(ids), vehicleMake),
			Action:        fmt.Sprintf("Negotiate coverage for %s with the current provider or onboard one that accepts it", vehicleMake),
			AffectedCount: len(ids),
			VehicleIDs:    ids,
		})
	}

	if catalog.Len() == 1 {
		only := catalog.Active()[0]
		recs = append(recs, entities.Recommendation{
			Priority:      entities.PriorityLow,
			Category:      entities.RecommendSingleProvider,
			Message:       fmt.Sprintf("%s is the only active insurance provider", providerLabel(only)),
			Action:        "Onboard a second provider to remove the single point of failure",
			AffectedCount: 1,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs
}

func noProviderRecommendation() entities.Recommendation {
	return entities.Recommendation{
		Priority: entities.PriorityCritical,
		Category: entities.RecommendAddProvider,
		Message:  "No active insurance providers exist; no vehicle on the platform can be covered",
		Action:   "Add and activate at least one insurance provider",
	}
}
