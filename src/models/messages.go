package models

// -----------------------------------------------------------------------------

// Message type discriminators for the subscriber wire protocol.
const (
	MessageTypeMarketData  = "market_data"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeError       = "error"
)

// -----------------------------------------------------------------------------

// MMarketStatus is the per-batch trading-session report. DataSource reflects
// the primary non-synthetic provider used in the batch, or a synthetic label
// when none succeeded.
type MMarketStatus struct {
	IsMarketOpen bool   `json:"isMarketOpen"`
	DataSource   string `json:"dataSource"`
}

// -----------------------------------------------------------------------------

// MBatchMessage is the outbound update written to a subscriber every tick.
// It always contains exactly one quote per requested symbol.
type MBatchMessage struct {
	Type         string        `json:"type"`
	Data         []MQuote      `json:"data"`
	MarketStatus MMarketStatus `json:"marketStatus"`
}

// -----------------------------------------------------------------------------

// MClientMessage is an inbound command from a subscriber connection.
// Subscribe with a non-empty symbol list starts or replaces the stream
// session; unsubscribe stops it.
type MClientMessage struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols,omitempty"`
}

// -----------------------------------------------------------------------------

// MErrorMessage is sent back to a subscriber for malformed commands.
type MErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
