package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecommendationPriority orders remediation guidance
type RecommendationPriority string

const (
	PriorityCritical RecommendationPriority = "CRITICAL"
	PriorityHigh     RecommendationPriority = "HIGH"
	PriorityMedium   RecommendationPriority = "MEDIUM"
	PriorityLow      RecommendationPriority = "LOW"
)

// Rank is lower for more urgent priorities
func (p RecommendationPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// RecommendationCategory identifies the kind of remediation
type RecommendationCategory string

const (
	RecommendAddProvider      RecommendationCategory = "ADD_PROVIDER"
	RecommendHostNoProvider   RecommendationCategory = "HOST_NO_PROVIDER"
	RecommendLuxuryTier       RecommendationCategory = "LUXURY_TIER_NEEDED"
	RecommendLowValueCoverage RecommendationCategory = "LOW_VALUE_COVERAGE"
	RecommendReassignProvider RecommendationCategory = "REASSIGN_PROVIDER"
	RecommendExcludedMakes    RecommendationCategory = "EXCLUDED_MAKES"
	RecommendSingleProvider   RecommendationCategory = "SINGLE_PROVIDER"
)

// Recommendation is one actionable item of a gap report
type Recommendation struct {
	Priority      RecommendationPriority `json:"priority"`
	Category      RecommendationCategory `json:"category"`
	Message       string                 `json:"message"`
	Action        string                 `json:"action"`
	AffectedCount int                    `json:"affected_count"`
	OperatorIDs   []string               `json:"operator_ids,omitempty"`
	VehicleIDs    []string               `json:"vehicle_ids,omitempty"`
}

// GapSummary holds the report counters
type GapSummary struct {
	TotalVehicles   int             `json:"total_vehicles"`
	TotalCovered    int             `json:"total_covered"`
	TotalGaps       int             `json:"total_gaps"`
	HostLevelGaps   int             `json:"host_level_gaps"`
	VehicleRuleGaps int             `json:"vehicle_rule_gaps"`
	ActiveProviders int             `json:"active_providers"`
	CoverageRate    decimal.Decimal `json:"coverage_rate"`
	CriticalIssue   bool            `json:"critical_issue"`
}

// ProviderCoverage lists an active provider with the vehicles it covers
type ProviderCoverage struct {
	ProviderRef
	VehiclesCovered int `json:"vehicles_covered"`
}

// GapReport is the full-fleet coverage report
type GapReport struct {
	Summary         GapSummary         `json:"summary"`
	Covered         []VehicleVerdict   `json:"covered"`
	HostGaps        []VehicleVerdict   `json:"host_gaps"`
	VehicleRuleGaps []VehicleVerdict   `json:"vehicle_rule_gaps"`
	AllGaps         []VehicleVerdict   `json:"all_gaps"`
	Providers       []ProviderCoverage `json:"providers"`
	Recommendations []Recommendation   `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
