package interfaces

import (
	"context"

	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// IQuoteResolver produces one quote per requested symbol, falling back
// through the provider chain and terminating in synthesis. It never fails:
// a subscriber must not receive a broken batch for a transient vendor
// outage.
type IQuoteResolver interface {
	// Resolve returns the quote to trust right now for one symbol.
	Resolve(ctx context.Context, symbol string, marketOpen bool) models.MQuote

	// ResolveBatch resolves all symbols, concurrently across symbols.
	// The result has exactly one quote per symbol, in input order.
	ResolveBatch(ctx context.Context, symbols []string, marketOpen bool) []models.MQuote
}
