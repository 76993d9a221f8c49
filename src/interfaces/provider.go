package interfaces

import (
	"context"
	"time"

	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

// IProviderConstructor defines the function signature for creating a new
// IQuoteProvider instance from its configuration.
type IProviderConstructor func(cfg *models.MProviderConfig, logger *zap.Logger) (IQuoteProvider, error)

// -----------------------------------------------------------------------------

// IQuoteProvider is the uniform capability surface every vendor adapter
// exposes. Adapters differ only in transport and response shape; the
// orchestrator never branches on vendor identity except to order the
// fallback chain.
type IQuoteProvider interface {
	// GetName returns the vendor name used in Quote.Source.
	GetName() string

	// IsValid reports whether the adapter is configured with usable
	// credentials. An invalid provider must be skipped without being
	// invoked.
	IsValid() bool

	// GetTimeout returns the configured per-call deadline for this
	// vendor; zero means the caller applies its own default.
	GetTimeout() time.Duration

	// GetQuote returns a point-in-time quote for the symbol, or one of
	// the models provider errors. The caller bounds ctx with the
	// per-call timeout.
	GetQuote(ctx context.Context, symbol string) (*models.MQuote, error)
}
