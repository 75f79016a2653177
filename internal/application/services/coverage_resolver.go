package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

const (
	warnNoAssignedProvider = "operator has no assigned provider"
	warnNoMatchingProvider = "vehicle does not match any provider rules"
)

// ResolveCoverage decides whether one vehicle is covered, by what, and why
// not. It performs no I/O: every input is passed in, so it can run once per
// vehicle over bulk-loaded data. operatorProvider and override may be nil.
//
// Precedence, first match wins:
//  1. an override always covers the vehicle
//  2. the operator's assigned active provider covers it when no rule is violated
//  3. otherwise the vehicle is uncovered; eligible providers are listed for remediation
func ResolveCoverage(
	vehicle *entities.Vehicle,
	operatorProvider *entities.InsuranceProvider,
	catalog *ProviderCatalog,
	override *entities.CoverageOverride,
) entities.CoverageVerdict {
	verdict := entities.CoverageVerdict{
		Source:            entities.SourceNone,
		Warnings:          []string{},
		EligibleProviders: []entities.ProviderRef{},
	}

	if override != nil {
		verdict.HasCoverage = true
		verdict.Source = entities.SourceOverride
		if p := catalog.Get(override.ProviderID); p != nil {
			verdict.Provider = p.Ref()
		} else {
			verdict.Provider = &entities.ProviderRef{ID: override.ProviderID}
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("override provider %s is not in the active catalog", override.ProviderID))
		}
		return verdict
	}

	value := vehicle.EstimatedValue()

	hasProvider := operatorProvider != nil && operatorProvider.IsActive
	if operatorProvider != nil && !operatorProvider.IsActive {
		verdict.Warnings = append(verdict.Warnings,
			fmt.Sprintf("assigned provider %s is not active", providerLabel(operatorProvider)))
	}

	if hasProvider {
		violations := RuleViolations(operatorProvider, value, vehicle.Make, vehicle.Model)
		if len(violations) == 0 {
			verdict.HasCoverage = true
			verdict.Source = entities.SourceProvider
			verdict.Provider = operatorProvider.Ref()
			return verdict
		}
		verdict.Warnings = append(verdict.Warnings, violations...)
	}

	verdict.EligibleProviders = catalog.EligibleFor(value, vehicle.Make, vehicle.Model)

	if !hasProvider {
		verdict.GapType = entities.GapHostLevel
		verdict.Warnings = append(verdict.Warnings, warnNoAssignedProvider)
	} else {
		verdict.GapType = entities.GapVehicleRule
		if len(verdict.EligibleProviders) == 0 {
			verdict.Warnings = append(verdict.Warnings, warnNoMatchingProvider)
		}
	}

	return verdict
}

// RuleViolations evaluates a provider's eligibility rules against a vehicle
// and returns one warning per violated rule. Bounds are inclusive; make and
// model exclusions are exact, case-sensitive matches.
func RuleViolations(p *entities.InsuranceProvider, value decimal.Decimal, vehicleMake, vehicleModel string) []string {
	var violations []string
	rules := p.Rules

	if rules.VehicleValueMin != nil && value.LessThan(*rules.VehicleValueMin) {
		violations = append(violations, fmt.Sprintf("vehicle value (%s) below provider minimum (%s)",
			dollars(value), dollars(*rules.VehicleValueMin)))
	}
	if rules.VehicleValueMax != nil && value.GreaterThan(*rules.VehicleValueMax) {
		violations = append(violations, fmt.Sprintf("vehicle value (%s) above provider maximum (%s)",
			dollars(value), dollars(*rules.VehicleValueMax)))
	}
	if rules.ExcludedMakes.Contains(vehicleMake) {
		violations = append(violations, fmt.Sprintf("make %q is excluded by provider %s", vehicleMake, providerLabel(p)))
	}
	if rules.ExcludedModels.Contains(vehicleModel) {
		violations = append(violations, fmt.Sprintf("model %q is excluded by provider %s", vehicleModel, providerLabel(p)))
	}

	return violations
}

// assignedProvider resolves an operator's provider id against the catalog.
// An id missing from the active catalog yields an inactive stub so the
// resolver reports it as a host-level gap.
func assignedProvider(catalog *ProviderCatalog, providerID string) *entities.InsuranceProvider {
	if providerID == "" {
		return nil
	}
	if p := catalog.Get(providerID); p != nil {
		return p
	}
	return &entities.InsuranceProvider{ID: providerID, IsActive: false}
}

func providerLabel(p *entities.InsuranceProvider) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(0)
}
