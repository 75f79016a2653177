package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fleetshare/coverage-engine/internal/domain/entities"
	"github.com/fleetshare/coverage-engine/internal/domain/repositories"
)

// ProviderCatalog is an immutable in-memory view of the active providers.
// Inactive providers are never admitted, so nothing read from the catalog
// can be used to cover a vehicle unless it is active.
type ProviderCatalog struct {
	providers []*entities.InsuranceProvider
	byID      map[string]*entities.InsuranceProvider
}

// NewProviderCatalog builds a catalog ordered by name, then id
func NewProviderCatalog(providers []*entities.InsuranceProvider) *ProviderCatalog {
	c := &ProviderCatalog{
		providers: make([]*entities.InsuranceProvider, 0, len(providers)),
		byID:      make(map[string]*entities.InsuranceProvider, len(providers)),
	}
	for _, p := range providers {
		if p == nil || !p.IsActive {
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = p
		c.providers = append(c.providers, p)
	}
	sort.SliceStable(c.providers, func(i, j int) bool {
		if c.providers[i].Name != c.providers[j].Name {
			return c.providers[i].Name < c.providers[j].Name
		}
		return c.providers[i].ID < c.providers[j].ID
	})
	return c
}

// LoadProviderCatalog reads the catalog with a single bulk query
func LoadProviderCatalog(ctx context.Context, repo repositories.ProviderRepository) (*ProviderCatalog, error) {
	providers, err := repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return NewProviderCatalog(providers), nil
}

// Active returns the active providers in catalog order
func (c *ProviderCatalog) Active() []*entities.InsuranceProvider {
	if c == nil {
		return nil
	}
	return c.providers
}

// Get returns the active provider with id, nil when absent
func (c *ProviderCatalog) Get(id string) *entities.InsuranceProvider {
	if c == nil || id == "" {
		return nil
	}
	return c.byID[id]
}

// Len returns the number of active providers
func (c *ProviderCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.providers)
}

// EligibleFor returns every active provider whose rules accept the vehicle.
// This is linear in the catalog size; catalogs are expected to hold tens of
// providers.
func (c *ProviderCatalog) EligibleFor(value decimal.Decimal, vehicleMake, vehicleModel string) []entities.ProviderRef {
	eligible := make([]entities.ProviderRef, 0)
	for _, p := range c.Active() {
		if len(RuleViolations(p, value, vehicleMake, vehicleModel)) == 0 {
			eligible = append(eligible, *p.Ref())
		}
	}
	return eligible
}
