package models

// -----------------------------------------------------------------------------

// MSessionStatus represents the runtime status of one subscriber stream
// session, aggregated from the session state machine and its transport.
type MSessionStatus struct {
	SubscriberID string   `json:"subscriberId"`
	Running      bool     `json:"running"`
	Symbols      []string `json:"symbols"`
	TicksSent    int64    `json:"ticksSent"`
}

// -----------------------------------------------------------------------------

// MProviderStatus reports one provider client in a fallback chain.
type MProviderStatus struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Valid    bool   `json:"valid"`
}

// -----------------------------------------------------------------------------

// MServiceStatus is the whole-process view served by the status endpoint.
type MServiceStatus struct {
	ActiveSessions int               `json:"activeSessions"`
	Sessions       []MSessionStatus  `json:"sessions"`
	Providers      []MProviderStatus `json:"providers"`
	MarketOpen     bool              `json:"marketOpen"`
}
