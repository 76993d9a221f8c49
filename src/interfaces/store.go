package interfaces

import (
	"context"

	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// ISnapshotStore persists the latest resolved quote per symbol so the REST
// layer can serve snapshots without a live stream session.
type ISnapshotStore interface {
	// SaveQuote stores the quote as the latest snapshot for its symbol.
	SaveQuote(ctx context.Context, quote models.MQuote) error

	// GetSnapshots fetches the latest stored quote for each symbol.
	// Symbols with no snapshot are simply absent from the result.
	GetSnapshots(ctx context.Context, symbols []string) ([]models.MQuote, error)

	// Close releases the underlying store connection.
	Close() error
}
