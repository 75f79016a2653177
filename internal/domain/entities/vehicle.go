package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	daysPerYear       = decimal.NewFromInt(365)
	dailyRateValueFac = decimal.New(15, -2)
)

// Vehicle is a listed vehicle owned by an operator
type Vehicle struct {
	ID            string           `json:"id" db:"id"`
	OperatorID    string           `json:"operator_id" db:"operator_id"`
	Make          string           `json:"make" db:"make"`
	Model         string           `json:"model" db:"model"`
	Year          int              `json:"year" db:"year"`
	IsActive      bool             `json:"is_active" db:"is_active"`
	ValueEstimate *decimal.Decimal `json:"value_estimate,omitempty" db:"value_estimate"`
	DailyRate     decimal.Decimal  `json:"daily_rate" db:"daily_rate"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

// EstimatedValue is the value used for eligibility matching: the stored
// estimate, otherwise dailyRate * 365 * 0.15
func (v *Vehicle) EstimatedValue() decimal.Decimal {
	if v.ValueEstimate != nil {
		return *v.ValueEstimate
	}
	return v.DailyRate.Mul(daysPerYear).Mul(dailyRateValueFac)
}

// FleetVehicle is a vehicle joined with the operator fields the scanner needs
type FleetVehicle struct {
	Vehicle
	OperatorName string `json:"operator_name" db:"operator_name"`
	// AssignedProviderID is the provider of the operator's active slot, empty when none
	AssignedProviderID string `json:"assigned_provider_id,omitempty" db:"assigned_provider_id"`
}

// CoverageOverride is a manually authorized exception forcing coverage for one vehicle
type CoverageOverride struct {
	ID           string    `json:"id" db:"id"`
	VehicleID    string    `json:"vehicle_id" db:"vehicle_id"`
	ProviderID   string    `json:"provider_id" db:"provider_id"`
	Reason       string    `json:"reason" db:"reason"`
	AuthorizedBy string    `json:"authorized_by" db:"authorized_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
