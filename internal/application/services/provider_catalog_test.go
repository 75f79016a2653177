package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fleetshare/coverage-engine/internal/application/services"
	"github.com/fleetshare/coverage-engine/internal/domain/entities"
)

func TestProviderCatalog(t *testing.T) {
	zeta := newProvider("prov-z", "Zeta", nil, nil)
	alpha := newProvider("prov-a", "Alpha", nil, dec(50000))
	inactive := newProvider("prov-i", "Idle", nil, nil)
	inactive.IsActive = false

	t.Run("keeps active providers ordered by name", func(t *testing.T) {
		catalog := services.NewProviderCatalog([]*entities.InsuranceProvider{zeta, inactive, alpha, zeta, nil})

		require.Equal(t, 2, catalog.Len())
		assert.Equal(t, "prov-a", catalog.Active()[0].ID)
		assert.Equal(t, "prov-z", catalog.Active()[1].ID)
		assert.Nil(t, catalog.Get("prov-i"))
		assert.NotNil(t, catalog.Get("prov-z"))
	})

	t.Run("eligible providers follow catalog order", func(t *testing.T) {
		catalog := services.NewProviderCatalog([]*entities.InsuranceProvider{zeta, alpha})

		low := catalog.EligibleFor(decimal.NewFromInt(20000), "Toyota", "Camry")
		high := catalog.EligibleFor(decimal.NewFromInt(80000), "Toyota", "Camry")

		require.Len(t, low, 2)
		assert.Equal(t, "prov-a", low[0].ID)
		require.Len(t, high, 1)
		assert.Equal(t, "prov-z", high[0].ID)
	})

	t.Run("nil catalog is empty", func(t *testing.T) {
		var catalog *services.ProviderCatalog

		assert.Equal(t, 0, catalog.Len())
		assert.Nil(t, catalog.Get("prov-a"))
		assert.Empty(t, catalog.EligibleFor(decimal.NewFromInt(1), "Toyota", "Camry"))
	})

	t.Run("load propagates repository errors", func(t *testing.T) {
		repo := new(MockProviderRepository)
		repo.On("ListActive", mock.Anything).Return(nil, errors.New("connection refused"))

		catalog, err := services.LoadProviderCatalog(context.Background(), repo)

		assert.Nil(t, catalog)
		assert.EqualError(t, err, "connection refused")
	})
}
