package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BlockingBookings is the booking lock oracle's answer for one operator
type BlockingBookings struct {
	Count int `json:"count"`
	// LatestEndDate is the latest end date among blocking bookings, nil when Count is zero
	LatestEndDate *time.Time `json:"latest_end_date,omitempty"`
}

// SlotView is the display form of a coverage slot
type SlotView struct {
	Status       SlotStatus   `json:"status"`
	Provider     *ProviderRef `json:"provider,omitempty"`
	PolicyNumber string       `json:"policy_number,omitempty"`
}

// ToggleResult is returned by a successful tier toggle
type ToggleResult struct {
	OperatorID                 string          `json:"operator_id"`
	NewTier                    CoverageTier    `json:"new_tier"`
	State                      CoverageState   `json:"state"`
	EarningsTier               EarningsTier    `json:"earnings_tier"`
	PlatformCommissionFraction decimal.Decimal `json:"platform_commission_fraction"`
	HostEarningsFraction       decimal.Decimal `json:"host_earnings_fraction"`
	P2PSlot                    SlotView        `json:"p2p_slot"`
	CommercialSlot             SlotView        `json:"commercial_slot"`
	Change                     TierChange      `json:"change"`
}
