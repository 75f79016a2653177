package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENGINE_HIGH_VALUE_THRESHOLD", "")
	t.Setenv("ENGINE_LOW_VALUE_THRESHOLD", "")
	t.Setenv("ENGINE_CATALOG_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "fleetshare", cfg.Database.Database)
	assert.True(t, cfg.Engine.HighValueThreshold.Equal(decimal.NewFromInt(75000)))
	assert.True(t, cfg.Engine.LowValueThreshold.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, 60*time.Second, cfg.Engine.CatalogCacheTTL)
}

func TestLoad_EngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_HIGH_VALUE_THRESHOLD", "100000")
	t.Setenv("ENGINE_LOW_VALUE_THRESHOLD", "15000.50")
	t.Setenv("ENGINE_CATALOG_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "100000", cfg.Engine.HighValueThreshold.String())
	assert.Equal(t, "15000.5", cfg.Engine.LowValueThreshold.String())
	assert.Equal(t, 5*time.Minute, cfg.Engine.CatalogCacheTTL)
}

func TestLoad_RejectsInvertedThresholds(t *testing.T) {
	t.Setenv("ENGINE_HIGH_VALUE_THRESHOLD", "20000")
	t.Setenv("ENGINE_LOW_VALUE_THRESHOLD", "30000")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "fleet", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=fleet sslmode=require", c.DatabaseDSN())
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://hosts.fleetshare.io, https://admin.fleetshare.io,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://hosts.fleetshare.io", "https://admin.fleetshare.io"}, cfg.Server.AllowedOrigins)
}
