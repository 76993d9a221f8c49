package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"market-streamer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestNewConfigFromYAML(t *testing.T) {
	t.Setenv("TEST_FINNHUB_KEY", "env-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: streamer-test
port: 9090
log_level: debug
stream:
  tick_interval: 2s
providers:
  - name: finnhub
    endpoint: https://finnhub.io/api/v1
    api_key: ${TEST_FINNHUB_KEY}
    priority: 0
  - name: stooq
    endpoint: https://stooq.com
    priority: 1
    off_hours: true
`), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "streamer-test", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Stream.TickInterval)
	assert.Equal(t, "env-secret", cfg.GetProviderByName("finnhub").APIKey)

	// Unset fields get defaults.
	assert.Equal(t, DefaultSendBuffer, cfg.Stream.SendBuffer)
	assert.Equal(t, DefaultSeedPrice, cfg.Synthesizer.SeedPrice)
	assert.Equal(t, DefaultProviderTimeout, cfg.GetProviderByName("stooq").Timeout)
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/nonexistent/config.yaml")
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidateZeroProvidersIsValid(t *testing.T) {
	cfg, err := NewFromModel(&models.MConfig{Name: "all-synthetic"})
	require.NoError(t, err)
	assert.Empty(t, cfg.OrderedProviders())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsDuplicateProviders(t *testing.T) {
	_, err := NewFromModel(&models.MConfig{
		Name: "test",
		Providers: []*models.MProviderConfig{
			{Name: "finnhub", Endpoint: "https://a"},
			{Name: "finnhub", Endpoint: "https://b"},
		},
	})
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidateRejectsTwoOffHoursProviders(t *testing.T) {
	_, err := NewFromModel(&models.MConfig{
		Name: "test",
		Providers: []*models.MProviderConfig{
			{Name: "stooq", Endpoint: "https://a", OffHours: true},
			{Name: "other", Endpoint: "https://b", OffHours: true},
		},
	})
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidateRejectsPrivilegedPort(t *testing.T) {
	_, err := NewFromModel(&models.MConfig{Name: "test", Port: 80})
	require.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestOrderedProviders(t *testing.T) {
	cfg, err := NewFromModel(&models.MConfig{
		Name: "test",
		Providers: []*models.MProviderConfig{
			{Name: "c", Endpoint: "https://c", Priority: 2},
			{Name: "a", Endpoint: "https://a", Priority: 0, Disabled: true},
			{Name: "b", Endpoint: "https://b", Priority: 1},
			{Name: "b2", Endpoint: "https://b2", Priority: 1},
		},
	})
	require.NoError(t, err)

	ordered := cfg.OrderedProviders()
	require.Len(t, ordered, 3, "disabled providers are excluded")
	assert.Equal(t, "b", ordered[0].Name)
	assert.Equal(t, "b2", ordered[1].Name, "equal priorities keep config order")
	assert.Equal(t, "c", ordered[2].Name)
}

// -----------------------------------------------------------------------------

func TestListenAddr(t *testing.T) {
	cfg, err := NewFromModel(&models.MConfig{Name: "test", Host: "127.0.0.1", Port: 9999})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr())

	cfg, err = NewFromModel(&models.MConfig{Name: "test"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr())
}
