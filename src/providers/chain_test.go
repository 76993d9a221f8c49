package providers

import (
	"testing"

	"market-streamer/src/config"
	"market-streamer/src/integrations"
	"market-streamer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewFromModel(&models.MConfig{
		Name: "test",
		Providers: []*models.MProviderConfig{
			{Name: "alphavantage", Endpoint: "https://example.invalid/av", Priority: 1},
			{Name: "finnhub", Endpoint: "https://example.invalid/fh", Priority: 0},
			{Name: "stooq", Endpoint: "https://example.invalid/sq", Priority: 2, OffHours: true},
		},
	})
	require.NoError(t, err)
	return cfg
}

// -----------------------------------------------------------------------------

func TestChainBuilderOrdersByPriority(t *testing.T) {
	source := &integrations.StaticSource{BySubscriber: map[string][]models.MIntegration{
		"u1": {
			{Provider: "finnhub", Type: models.IntegrationTypeMarketData, IsActive: true,
				Credentials: models.MCredentials{APIKey: "fh-key"}},
			{Provider: "alphavantage", Type: models.IntegrationTypeMarketData, IsActive: true,
				Credentials: models.MCredentials{APIKey: "av-key"}},
		},
	}}

	chain := NewChainBuilder(testConfig(t), zap.NewNop(), source).Build("u1")

	require.Len(t, chain.Providers, 3)
	assert.Equal(t, "finnhub", chain.Providers[0].GetName())
	assert.Equal(t, "alphavantage", chain.Providers[1].GetName())
	assert.Equal(t, "stooq", chain.Providers[2].GetName())

	require.NotNil(t, chain.OffHours)
	assert.Equal(t, "stooq", chain.OffHours.GetName())
}

// -----------------------------------------------------------------------------

func TestChainBuilderSkipsProvidersWithoutIntegration(t *testing.T) {
	// No integrations at all: only the free off-hours feed survives.
	source := &integrations.StaticSource{}

	chain := NewChainBuilder(testConfig(t), zap.NewNop(), source).Build("anonymous")

	require.Len(t, chain.Providers, 1)
	assert.Equal(t, "stooq", chain.Providers[0].GetName())
}

// -----------------------------------------------------------------------------

func TestChainBuilderIgnoresInactiveIntegrations(t *testing.T) {
	source := &integrations.StaticSource{BySubscriber: map[string][]models.MIntegration{
		"u1": {
			{Provider: "finnhub", Type: models.IntegrationTypeMarketData, IsActive: false,
				Credentials: models.MCredentials{APIKey: "fh-key"}},
		},
	}}

	chain := NewChainBuilder(testConfig(t), zap.NewNop(), source).Build("u1")

	for _, provider := range chain.Providers {
		assert.NotEqual(t, "finnhub", provider.GetName(),
			"inactive integrations must not produce provider clients")
	}
}

// -----------------------------------------------------------------------------

func TestChainBuilderAppliesIntegrationCredentials(t *testing.T) {
	source := &integrations.StaticSource{BySubscriber: map[string][]models.MIntegration{
		"u1": {
			{Provider: "finnhub", Type: models.IntegrationTypeMarketData, IsActive: true,
				Credentials: models.MCredentials{APIKey: "subscriber-key"}},
		},
	}}
	cfg := testConfig(t)

	chain := NewChainBuilder(cfg, zap.NewNop(), source).Build("u1")

	require.NotEmpty(t, chain.Providers)
	finnhub, ok := chain.Providers[0].(*Finnhub)
	require.True(t, ok)
	assert.Equal(t, "subscriber-key", finnhub.Config.APIKey)

	// The shared deployment config must never absorb subscriber secrets.
	assert.Empty(t, cfg.GetProviderByName("finnhub").APIKey)
}

// -----------------------------------------------------------------------------

func TestChainBuilderSkipsUnknownProviderType(t *testing.T) {
	cfg, err := config.NewFromModel(&models.MConfig{
		Name: "test",
		Providers: []*models.MProviderConfig{
			{Name: "bloomberg", Endpoint: "https://example.invalid/bb", Priority: 0},
		},
	})
	require.NoError(t, err)

	source := &integrations.StaticSource{BySubscriber: map[string][]models.MIntegration{
		"u1": {{Provider: "bloomberg", Type: models.IntegrationTypeMarketData, IsActive: true}},
	}}

	chain := NewChainBuilder(cfg, zap.NewNop(), source).Build("u1")
	assert.Empty(t, chain.Providers, "unregistered vendors are skipped, not fatal")
}
