package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "https://world.openfoodfacts.org", cfg.Catalog.BaseURL)
	assert.Equal(t, "GreenBasket/1.0", cfg.Catalog.UserAgent)

	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)

	assert.Equal(t, 100, cfg.RateLimit.PerIP)
	assert.Equal(t, 100, cfg.RateLimit.Catalog)

	assert.Equal(t, 20, cfg.Optimizer.DPItemThreshold)
	assert.False(t, cfg.Optimizer.Debug)

	assert.Equal(t, 0.1, cfg.Substitution.MinScoreImprovement)
	assert.Equal(t, 0.2, cfg.Substitution.MaxPriceIncrease)
	assert.Equal(t, 5, cfg.Substitution.MaxResults)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GREENBASKET_SERVER_PORT", "9090")
	t.Setenv("GREENBASKET_SERVER_ENVIRONMENT", "production")
	t.Setenv("GREENBASKET_CATALOG_BASE_URL", "https://catalog.example.com")
	t.Setenv("GREENBASKET_RATELIMIT_PER_IP", "200")
	t.Setenv("GREENBASKET_OPTIMIZER_DP_ITEM_THRESHOLD", "40")
	t.Setenv("GREENBASKET_SUBSTITUTION_MAX_RESULTS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, "https://catalog.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 200, cfg.RateLimit.PerIP)
	assert.Equal(t, 40, cfg.Optimizer.DPItemThreshold)
	assert.Equal(t, 8, cfg.Substitution.MaxResults)
}

func TestLoad_InvalidCacheType(t *testing.T) {
	t.Setenv("GREENBASKET_CACHE_TYPE", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache type")
}

func TestLoad_NegativeRateLimit(t *testing.T) {
	t.Setenv("GREENBASKET_RATELIMIT_CATALOG", "-10")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limits")
}

func TestLoad_NegativeMaxResults(t *testing.T) {
	t.Setenv("GREENBASKET_SUBSTITUTION_MAX_RESULTS", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max results")
}
