package models

// -----------------------------------------------------------------------------

// MIntegration describes one vendor integration available to a subscriber.
// Integration state is owned by a separate configuration store; the
// streaming orchestrator only reads it to decide which provider clients
// are constructible for a given subscriber.
type MIntegration struct {
	Provider    string       `json:"provider"`
	Type        string       `json:"type"`
	IsActive    bool         `json:"isActive"`
	Credentials MCredentials `json:"credentials"`
}

// -----------------------------------------------------------------------------

// MCredentials carries the secrets needed to call a vendor API.
type MCredentials struct {
	APIKey string `json:"apiKey"`
}

// -----------------------------------------------------------------------------

// IntegrationTypeMarketData is the integration class consumed here.
const IntegrationTypeMarketData = "market_data"
