package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoverageSource says what established coverage
type CoverageSource string

const (
	SourceProvider CoverageSource = "PROVIDER"
	SourceOverride CoverageSource = "OVERRIDE"
	SourceNone     CoverageSource = "NONE"
)

// GapType classifies an uncovered vehicle
type GapType string

const (
	// GapHostLevel means the operator has no assigned active provider
	GapHostLevel GapType = "HOST_LEVEL"
	// GapVehicleRule means the assigned provider rejects this vehicle
	GapVehicleRule GapType = "VEHICLE_RULE"
)

// ProviderRef is the display reference of a provider
type ProviderRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// CoverageVerdict is the resolver output for one vehicle
type CoverageVerdict struct {
	HasCoverage       bool           `json:"has_coverage"`
	Source            CoverageSource `json:"source"`
	Provider          *ProviderRef   `json:"provider,omitempty"`
	GapType           GapType        `json:"gap_type,omitempty"`
	Warnings          []string       `json:"warnings"`
	EligibleProviders []ProviderRef  `json:"eligible_providers"`
}

// VehicleVerdict pairs a vehicle with its verdict
type VehicleVerdict struct {
	VehicleID      string          `json:"vehicle_id"`
	OperatorID     string          `json:"operator_id"`
	OperatorName   string          `json:"operator_name,omitempty"`
	Make           string          `json:"make"`
	Model          string          `json:"model"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Verdict        CoverageVerdict `json:"verdict"`
}

// OperatorCoverage is the coverage-by-host view of one operator's fleet
type OperatorCoverage struct {
	OperatorID       string           `json:"operator_id"`
	OperatorName     string           `json:"operator_name"`
	State            CoverageState    `json:"state"`
	AssignedProvider *ProviderRef     `json:"assigned_provider,omitempty"`
	TotalVehicles    int              `json:"total_vehicles"`
	CoveredCount     int              `json:"covered_count"`
	Vehicles         []VehicleVerdict `json:"vehicles"`
}

// FleetPreview is the "apply to fleet" what-if for a candidate provider
type FleetPreview struct {
	OperatorID    string           `json:"operator_id"`
	Provider      ProviderRef      `json:"provider"`
	TotalVehicles int              `json:"total_vehicles"`
	Accepted      []VehicleVerdict `json:"accepted"`
	Rejected      []VehicleVerdict `json:"rejected"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
