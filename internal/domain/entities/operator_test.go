package entities

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOperator_State(t *testing.T) {
	tests := []struct {
		name       string
		p2p        SlotStatus
		commercial SlotStatus
		want       CoverageState
		wantTier   CoverageTier
		wantActive bool
	}{
		{"nothing active", SlotStatusApproved, SlotStatusInactive, StateNoCoverage, "", false},
		{"p2p active", SlotStatusActive, SlotStatusApproved, StateP2PActive, TierP2P, true},
		{"commercial active", SlotStatusSuspended, SlotStatusActive, StateCommercialActive, TierCommercial, true},
		{"pending is not active", SlotStatusPending, SlotStatusPending, StateNoCoverage, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operator{ID: "op-1", P2P: CoverageSlot{Status: tt.p2p}, Commercial: CoverageSlot{Status: tt.commercial}}
			if got := op.State(); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
			tier, ok := op.ActiveTier()
			if ok != tt.wantActive || tier != tt.wantTier {
				t.Errorf("ActiveTier() = (%s, %v), want (%s, %v)", tier, ok, tt.wantTier, tt.wantActive)
			}
		})
	}
}

func TestOperator_CheckExclusive(t *testing.T) {
	op := &Operator{ID: "op-1", P2P: CoverageSlot{Status: SlotStatusActive}, Commercial: CoverageSlot{Status: SlotStatusActive}}
	if err := op.CheckExclusive(); err == nil {
		t.Fatal("expected an error when both slots are active")
	}

	op.Commercial.Status = SlotStatusInactive
	if err := op.CheckExclusive(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOperator_AssignedProviderID(t *testing.T) {
	op := &Operator{
		P2P:        CoverageSlot{Status: SlotStatusApproved, ProviderID: "prov-p2p", PolicyNumber: "P-1"},
		Commercial: CoverageSlot{Status: SlotStatusActive, ProviderID: "prov-com", PolicyNumber: "C-1"},
	}
	if got := op.AssignedProviderID(); got != "prov-com" {
		t.Errorf("expected prov-com, got %q", got)
	}

	op.Commercial.Status = SlotStatusInactive
	if got := op.AssignedProviderID(); got != "" {
		t.Errorf("expected no provider without an active slot, got %q", got)
	}
}

func TestTermsFor(t *testing.T) {
	tests := []struct {
		state      CoverageState
		tier       EarningsTier
		commission string
		earnings   string
	}{
		{StateNoCoverage, EarningsBasic, "0.4", "0.6"},
		{StateP2PActive, EarningsStandard, "0.25", "0.75"},
		{StateCommercialActive, EarningsPremium, "0.1", "0.9"},
	}

	for _, tt := range tests {
		terms := TermsFor(tt.state)
		if terms.EarningsTier != tt.tier {
			t.Errorf("%s: tier = %s, want %s", tt.state, terms.EarningsTier, tt.tier)
		}
		if terms.CommissionRate.String() != tt.commission {
			t.Errorf("%s: commission = %s, want %s", tt.state, terms.CommissionRate, tt.commission)
		}
		if terms.HostEarnings().String() != tt.earnings {
			t.Errorf("%s: host earnings = %s, want %s", tt.state, terms.HostEarnings(), tt.earnings)
		}
	}
}

func TestOperator_DerivedFieldsMatch(t *testing.T) {
	op := &Operator{
		P2P:            CoverageSlot{Status: SlotStatusActive},
		EarningsTier:   EarningsStandard,
		CommissionRate: decimal.New(250, -3),
	}
	if !op.DerivedFieldsMatch() {
		t.Error("expected 0.250 to match the 0.25 standard rate")
	}

	op.EarningsTier = EarningsPremium
	if op.DerivedFieldsMatch() {
		t.Error("expected a stale earnings tier to be reported")
	}
}

func TestCoverageSlot_Rules(t *testing.T) {
	if (CoverageSlot{ProviderID: "prov-1"}).OnFile() {
		t.Error("a slot without a policy number is not on file")
	}
	if !(CoverageSlot{ProviderID: "prov-1", PolicyNumber: "P-1"}).OnFile() {
		t.Error("expected provider plus policy to be on file")
	}

	for status, want := range map[SlotStatus]bool{
		SlotStatusApproved:  true,
		SlotStatusInactive:  true,
		SlotStatusPending:   false,
		SlotStatusSuspended: false,
		SlotStatusRejected:  false,
		SlotStatusActive:    false,
	} {
		if got := (CoverageSlot{Status: status}).Switchable(); got != want {
			t.Errorf("Switchable(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestAccountStanding_Blocked(t *testing.T) {
	if !StandingSuspended.Blocked() || !StandingBlacklisted.Blocked() {
		t.Error("suspended and blacklisted operators must be blocked")
	}
	if StandingWarning.Blocked() || StandingActive.Blocked() {
		t.Error("warning and active operators may change coverage")
	}
}

func TestVehicle_EstimatedValue(t *testing.T) {
	stored := decimal.NewFromInt(42000)
	v := &Vehicle{ValueEstimate: &stored, DailyRate: decimal.NewFromInt(100)}
	if !v.EstimatedValue().Equal(stored) {
		t.Errorf("expected stored estimate, got %s", v.EstimatedValue())
	}

	// 100 * 365 * 0.15
	v.ValueEstimate = nil
	if want := decimal.NewFromInt(5475); !v.EstimatedValue().Equal(want) {
		t.Errorf("expected %s from daily rate, got %s", want, v.EstimatedValue())
	}
}

func TestStringSet_JSON(t *testing.T) {
	set := NewStringSet("Tesla", "", "BMW", "Tesla")
	if len(set) != 2 {
		t.Fatalf("expected 2 members, got %d", len(set))
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["BMW","Tesla"]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var decoded StringSet
	if err := json.Unmarshal([]byte(`["Ferrari","ferrari"]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Contains("Ferrari") || !decoded.Contains("ferrari") || decoded.Contains("FERRARI") {
		t.Errorf("membership must be case sensitive, got %v", decoded.Values())
	}
}
