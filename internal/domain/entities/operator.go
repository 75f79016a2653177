package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SlotStatus is the lifecycle status of one coverage slot
type SlotStatus string

const (
	SlotStatusInactive  SlotStatus = "INACTIVE"
	SlotStatusPending   SlotStatus = "PENDING"
	SlotStatusApproved  SlotStatus = "APPROVED"
	SlotStatusActive    SlotStatus = "ACTIVE"
	SlotStatusSuspended SlotStatus = "SUSPENDED"
	SlotStatusRejected  SlotStatus = "REJECTED"
)

// CoverageTier is one of the two mutually exclusive insurance tiers
type CoverageTier string

const (
	TierP2P        CoverageTier = "P2P"
	TierCommercial CoverageTier = "COMMERCIAL"
)

// Valid reports whether t is a known tier
func (t CoverageTier) Valid() bool {
	return t == TierP2P || t == TierCommercial
}

// CoverageState is the operator state derived from both slots
type CoverageState string

const (
	StateNoCoverage       CoverageState = "NO_COVERAGE"
	StateP2PActive        CoverageState = "P2P_ACTIVE"
	StateCommercialActive CoverageState = "COMMERCIAL_ACTIVE"
)

// EarningsTier is the commission band shown to the operator
type EarningsTier string

const (
	EarningsBasic    EarningsTier = "BASIC"
	EarningsStandard EarningsTier = "STANDARD"
	EarningsPremium  EarningsTier = "PREMIUM"
)

// AccountStanding is the operator's standing with the platform
type AccountStanding string

const (
	StandingActive      AccountStanding = "ACTIVE"
	StandingWarning     AccountStanding = "WARNING"
	StandingSuspended   AccountStanding = "SUSPENDED"
	StandingBlacklisted AccountStanding = "BLACKLISTED"
)

// Blocked reports whether the standing forbids coverage changes
func (s AccountStanding) Blocked() bool {
	return s == StandingSuspended || s == StandingBlacklisted
}

// TierTerms is the commission band bound to a coverage state
type TierTerms struct {
	EarningsTier   EarningsTier    `json:"earnings_tier"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

// HostEarnings is the fraction of gross booking value kept by the operator
func (t TierTerms) HostEarnings() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(t.CommissionRate)
}

var tierTerms = map[CoverageState]TierTerms{
	StateNoCoverage:       {EarningsTier: EarningsBasic, CommissionRate: decimal.New(40, -2)},
	StateP2PActive:        {EarningsTier: EarningsStandard, CommissionRate: decimal.New(25, -2)},
	StateCommercialActive: {EarningsTier: EarningsPremium, CommissionRate: decimal.New(10, -2)},
}

// TermsFor returns the static commission band of a state
func TermsFor(state CoverageState) TierTerms {
	return tierTerms[state]
}

// StateForTier returns the state an operator is in once tier is active
func StateForTier(tier CoverageTier) CoverageState {
	if tier == TierCommercial {
		return StateCommercialActive
	}
	return StateP2PActive
}

// CoverageSlot is one insurance slot of an operator
type CoverageSlot struct {
	Status       SlotStatus `json:"status"`
	ProviderID   string     `json:"provider_id,omitempty"`
	PolicyNumber string     `json:"policy_number,omitempty"`
}

// OnFile reports whether the slot points at a provider and policy
func (s CoverageSlot) OnFile() bool {
	return s.ProviderID != "" && s.PolicyNumber != ""
}

// Switchable reports whether the slot's status allows it to become active
func (s CoverageSlot) Switchable() bool {
	return s.Status == SlotStatusApproved || s.Status == SlotStatusInactive
}

// Operator is a fleet host
type Operator struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Standing       AccountStanding `json:"account_standing" db:"account_standing"`
	P2P            CoverageSlot    `json:"p2p"`
	Commercial     CoverageSlot    `json:"commercial"`
	EarningsTier   EarningsTier    `json:"earnings_tier" db:"earnings_tier"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
	TierHistory    []TierChange    `json:"tier_history"`
	Version        int64           `json:"version" db:"version"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Slot returns the slot backing tier
func (o *Operator) Slot(tier CoverageTier) *CoverageSlot {
	if tier == TierCommercial {
		return &o.Commercial
	}
	return &o.P2P
}

// CheckExclusive returns an error when both slots are ACTIVE
func (o *Operator) CheckExclusive() error {
	if o.P2P.Status == SlotStatusActive && o.Commercial.Status == SlotStatusActive {
		return fmt.Errorf("operator %s has both p2p and commercial coverage active", o.ID)
	}
	return nil
}

// State derives the coverage state. Callers must run CheckExclusive first;
// the dual-active state has no representation here.
func (o *Operator) State() CoverageState {
	switch {
	case o.Commercial.Status == SlotStatusActive:
		return StateCommercialActive
	case o.P2P.Status == SlotStatusActive:
		return StateP2PActive
	default:
		return StateNoCoverage
	}
}

// ActiveTier returns the tier whose slot is active, if any
func (o *Operator) ActiveTier() (CoverageTier, bool) {
	switch o.State() {
	case StateCommercialActive:
		return TierCommercial, true
	case StateP2PActive:
		return TierP2P, true
	}
	return "", false
}

// AssignedProviderID is the provider of the active slot, empty when none
func (o *Operator) AssignedProviderID() string {
	tier, ok := o.ActiveTier()
	if !ok {
		return ""
	}
	return o.Slot(tier).ProviderID
}

// DerivedFieldsMatch reports whether the cached tier and commission agree
// with the static table for the current state
func (o *Operator) DerivedFieldsMatch() bool {
	terms := TermsFor(o.State())
	return o.EarningsTier == terms.EarningsTier && o.CommissionRate.Equal(terms.CommissionRate)
}

// TierChangeAction tags a history entry
type TierChangeAction string

const (
	ActionTierActivated TierChangeAction = "TIER_ACTIVATED"
	ActionTierSwitched  TierChangeAction = "TIER_SWITCHED"
)

// TierChange is one append-only history entry of an operator
type TierChange struct {
	ID                 string           `json:"id"`
	Action             TierChangeAction `json:"action"`
	FromTier           EarningsTier     `json:"from_tier"`
	ToTier             EarningsTier     `json:"to_tier"`
	FromState          CoverageState    `json:"from_state"`
	ToState            CoverageState    `json:"to_state"`
	PreviousCommission decimal.Decimal  `json:"previous_commission"`
	NewCommission      decimal.Decimal  `json:"new_commission"`
	ChangedAt          time.Time        `json:"changed_at"`
	ActorID            string           `json:"actor_id"`
	ActorType          ActorType        `json:"actor_type"`
}

// ActorType distinguishes who initiated a change
type ActorType string

const (
	ActorOperator ActorType = "OPERATOR"
	ActorStaff    ActorType = "STAFF"
	ActorSystem   ActorType = "SYSTEM"
)

// Actor identifies the initiator of a mutation
type Actor struct {
	ID   string    `json:"id"`
	Type ActorType `json:"type"`
}
