package resolver

import (
	"context"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"
	"market-streamer/src/providers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// maxConcurrentResolves bounds how many symbols of one batch hit the
// network at the same time.
const maxConcurrentResolves = 8

// -----------------------------------------------------------------------------

// Resolver decides which upstream provider's quote to trust for a symbol
// right now. Providers are tried strictly in priority order; synthesis is
// the guaranteed terminal fallback, so Resolve never fails and the batch
// always contains one quote per requested symbol.
type Resolver struct {
	chain         *providers.Chain
	synthesizer   *Synthesizer
	timeout       time.Duration
	extendedHours bool
	logger        *zap.Logger
}

// Compile-time check that Resolver satisfies the capability surface.
var _ interfaces.IQuoteResolver = (*Resolver)(nil)

// -----------------------------------------------------------------------------

// NewResolver creates a resolver over a subscriber's provider chain.
// timeout bounds each provider call so one hanging vendor cannot stall the
// fallback chain.
func NewResolver(chain *providers.Chain, synthesizer *Synthesizer, timeout time.Duration, extendedHours bool, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{
		chain:         chain,
		synthesizer:   synthesizer,
		timeout:       timeout,
		extendedHours: extendedHours,
		logger:        logger,
	}
}

// -----------------------------------------------------------------------------

// Resolve returns the quote to trust for one symbol. Outside trading hours
// the paid real-time chain adds no value, so the resolver short-circuits to
// the always-available off-hours provider unless extended hours are
// enabled.
func (r *Resolver) Resolve(ctx context.Context, symbol string, marketOpen bool) models.MQuote {
	symbol = models.NormalizeSymbol(symbol)

	if !marketOpen && !r.extendedHours {
		// The off-hours provider gets the same skip-without-invoking
		// treatment as the open-market chain.
		if r.chain.OffHours != nil && r.chain.OffHours.IsValid() {
			if quote := r.tryProvider(ctx, r.chain.OffHours, symbol); quote != nil {
				return *quote
			}
		}
		return r.synthesizer.Synthesize(symbol, marketOpen)
	}

	for _, provider := range r.chain.Providers {
		// Skip instead of invoking: no needless network calls, no error
		// log noise for known-unusable providers.
		if !provider.IsValid() {
			continue
		}
		if quote := r.tryProvider(ctx, provider, symbol); quote != nil {
			return *quote
		}
	}

	return r.synthesizer.Synthesize(symbol, marketOpen)
}

// -----------------------------------------------------------------------------

// ResolveBatch resolves all symbols of one tick. Calls for different
// symbols run concurrently with no ordering guarantee between them, but the
// result always holds exactly one quote per requested symbol, in input
// order.
func (r *Resolver) ResolveBatch(ctx context.Context, symbols []string, marketOpen bool) []models.MQuote {
	results := make([]models.MQuote, len(symbols))

	var group errgroup.Group
	group.SetLimit(maxConcurrentResolves)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		group.Go(func() error {
			results[i] = r.Resolve(ctx, symbol, marketOpen)
			return nil
		})
	}
	// Resolve never errors; Wait only joins the goroutines.
	_ = group.Wait()

	return results
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// tryProvider performs one bounded provider call. The deadline is the
// vendor's configured timeout, falling back to the resolver default. Every
// failure mode (timeout, rate limit, invalid payload, missing price)
// advances the fallback chain identically; a successful quote is passed
// through unmodified and also seeds the synthetic walk for continuity.
func (r *Resolver) tryProvider(ctx context.Context, provider interfaces.IQuoteProvider, symbol string) *models.MQuote {
	timeout := provider.GetTimeout()
	if timeout <= 0 {
		timeout = r.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	quote, err := provider.GetQuote(callCtx, symbol)
	if err != nil {
		r.logger.Debug("provider call failed, advancing chain",
			zap.String("provider", provider.GetName()),
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil
	}
	if !quote.HasPrice() {
		r.logger.Debug("provider returned quote without usable price, advancing chain",
			zap.String("provider", provider.GetName()),
			zap.String("symbol", symbol))
		return nil
	}

	r.synthesizer.SeedPrice(symbol, quote.Price)
	return quote
}
