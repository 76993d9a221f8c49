package interfaces

import "market-streamer/src/models"

// -----------------------------------------------------------------------------

// IIntegrationSource exposes which vendor integrations are usable for a
// given subscriber. Integration state is owned by a separate configuration
// store; the orchestrator never mutates it, only queries it when building
// a subscriber's provider chain.
type IIntegrationSource interface {
	GetActiveIntegrations(userID string) []models.MIntegration
}
