package entities

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InsuranceProvider represents an insurance provider and the rules deciding
// which vehicles it is willing to cover
type InsuranceProvider struct {
	ID        string           `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Type      string           `json:"type" db:"type"`
	IsActive  bool             `json:"is_active" db:"is_active"`
	Rules     EligibilityRules `json:"rules"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// Ref returns the display reference of the provider
func (p *InsuranceProvider) Ref() *ProviderRef {
	if p == nil {
		return nil
	}
	return &ProviderRef{ID: p.ID, Name: p.Name, Type: p.Type}
}

// EligibilityRules are the vehicle constraints of a provider.
// Value bounds are inclusive, a nil bound is unbounded.
type EligibilityRules struct {
	VehicleValueMin *decimal.Decimal `json:"vehicle_value_min,omitempty"`
	VehicleValueMax *decimal.Decimal `json:"vehicle_value_max,omitempty"`
	ExcludedMakes   StringSet        `json:"excluded_makes"`
	ExcludedModels  StringSet        `json:"excluded_models"`
}

// StringSet is a set of exact, case-sensitive strings
type StringSet map[string]struct{}

// NewStringSet builds a set from values, ignoring empty strings
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Contains reports whether v is in the set
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in sorted order
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array into the set
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
