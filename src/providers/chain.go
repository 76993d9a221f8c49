package providers

import (
	"market-streamer/src/config"
	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

// ChainBuilder assembles the ordered provider fallback chain for one
// subscriber from the deployment config and the subscriber's active
// integrations. The chain is data, not code: adding a vendor is a config
// change plus a registered constructor.
type ChainBuilder struct {
	Name         string
	Config       *config.Config
	Logger       *zap.Logger
	Integrations interfaces.IIntegrationSource
}

// -----------------------------------------------------------------------------

// NewChainBuilder creates a new ChainBuilder instance.
func NewChainBuilder(cfg *config.Config, logger *zap.Logger, integrations interfaces.IIntegrationSource) *ChainBuilder {
	return &ChainBuilder{
		Name:         "ProviderChainBuilder",
		Config:       cfg,
		Logger:       logger,
		Integrations: integrations,
	}
}

// -----------------------------------------------------------------------------

// Chain is one subscriber's resolved provider set: the priority-ordered
// fallback chain and the provider used when the market is closed.
type Chain struct {
	Providers []interfaces.IQuoteProvider
	OffHours  interfaces.IQuoteProvider
}

// -----------------------------------------------------------------------------

// Build constructs the chain for a subscriber. Providers whose constructor
// fails are skipped, never fatal: the resolver's terminal fallback is
// synthesis, so an empty chain is a valid outcome.
func (cb *ChainBuilder) Build(subscriberID string) *Chain {
	integrations := cb.Integrations.GetActiveIntegrations(subscriberID)

	chain := &Chain{}
	for _, providerCfg := range cb.Config.OrderedProviders() {
		integration := findIntegration(integrations, providerCfg.Name)

		// A provider is constructible when the subscriber holds an active
		// integration for it, or when it is the free off-hours feed.
		if integration == nil && !providerCfg.OffHours {
			continue
		}

		// Copy before overriding credentials: the shared config is
		// read-only from the orchestrator's perspective.
		cfg := *providerCfg
		if integration != nil && integration.Credentials.APIKey != "" {
			cfg.APIKey = integration.Credentials.APIKey
		}

		constructor, err := GetConstructor(cfg.Name)
		if err != nil {
			cb.Logger.Warn("skipping unknown provider type",
				zap.String("builder", cb.Name),
				zap.String("provider", cfg.Name),
				zap.Error(err))
			continue
		}

		provider, err := constructor(&cfg, cb.Logger)
		if err != nil {
			cb.Logger.Error("failed to create provider, skipping",
				zap.String("builder", cb.Name),
				zap.String("provider", cfg.Name),
				zap.Error(err))
			continue
		}

		chain.Providers = append(chain.Providers, provider)
		if providerCfg.OffHours && chain.OffHours == nil {
			chain.OffHours = provider
		}
	}

	return chain
}

// -----------------------------------------------------------------------------

// findIntegration returns the subscriber's active market-data integration
// for a provider name, or nil.
func findIntegration(integrations []models.MIntegration, provider string) *models.MIntegration {
	for i := range integrations {
		integration := &integrations[i]
		if !integration.IsActive {
			continue
		}
		if integration.Type != "" && integration.Type != models.IntegrationTypeMarketData {
			continue
		}
		if integration.Provider == provider {
			return integration
		}
	}
	return nil
}
