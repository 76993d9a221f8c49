package integrations

import (
	"market-streamer/src/config"
	"market-streamer/src/interfaces"
	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// ConfigSource derives integrations from the service configuration: every
// configured provider carrying an API key counts as an active market-data
// integration for all subscribers. A deployment backed by a real user
// database swaps in its own IIntegrationSource.
type ConfigSource struct {
	config *config.Config
}

var _ interfaces.IIntegrationSource = (*ConfigSource)(nil)

// -----------------------------------------------------------------------------

// NewConfigSource creates an integration source backed by the static
// service configuration.
func NewConfigSource(cfg *config.Config) *ConfigSource {
	return &ConfigSource{config: cfg}
}

// -----------------------------------------------------------------------------

// GetActiveIntegrations lists one integration per configured provider with
// credentials. Key-less providers rely on IsValid at chain-build time.
func (s *ConfigSource) GetActiveIntegrations(_ string) []models.MIntegration {
	var out []models.MIntegration
	for _, provider := range s.config.Providers {
		if provider.Disabled {
			continue
		}
		out = append(out, models.MIntegration{
			Provider: provider.Name,
			Type:     models.IntegrationTypeMarketData,
			IsActive: true,
			Credentials: models.MCredentials{
				APIKey: provider.APIKey,
			},
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// StaticSource serves a fixed per-subscriber integration table. Used in
// tests and local setups.
type StaticSource struct {
	BySubscriber map[string][]models.MIntegration
}

var _ interfaces.IIntegrationSource = (*StaticSource)(nil)

// -----------------------------------------------------------------------------

// GetActiveIntegrations returns the integrations registered for the
// subscriber, or nothing when the subscriber is unknown.
func (s *StaticSource) GetActiveIntegrations(userID string) []models.MIntegration {
	if s.BySubscriber == nil {
		return nil
	}
	return s.BySubscriber[userID]
}
