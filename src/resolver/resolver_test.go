package resolver

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"market-streamer/src/models"
	"market-streamer/src/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// TEST DOUBLES
// -----------------------------------------------------------------------------

// fakeProvider is a scriptable provider client that records invocations.
type fakeProvider struct {
	name    string
	valid   bool
	quote   *models.MQuote
	err     error
	calls   map[string]int
	delay   time.Duration
	timeout time.Duration
}

func newFakeProvider(name string, valid bool) *fakeProvider {
	return &fakeProvider{name: name, valid: valid, calls: make(map[string]int)}
}

func (f *fakeProvider) GetName() string           { return f.name }
func (f *fakeProvider) IsValid() bool             { return f.valid }
func (f *fakeProvider) GetTimeout() time.Duration { return f.timeout }

func (f *fakeProvider) GetQuote(ctx context.Context, symbol string) (*models.MQuote, error) {
	f.calls[symbol]++
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, models.ErrProviderUnavailable
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.quote != nil {
		q := *f.quote
		q.Symbol = models.NormalizeSymbol(symbol)
		return &q, nil
	}
	return nil, models.ErrProviderUnavailable
}

// -----------------------------------------------------------------------------

func pricedQuote(source string, price float64) *models.MQuote {
	return &models.MQuote{
		Price:         price,
		Change:        1.5,
		ChangePercent: 0.75,
		Timestamp:     time.Unix(1752672600, 0).UTC(),
		Source:        source,
	}
}

func newTestResolver(t *testing.T, chain *providers.Chain, extendedHours bool) *Resolver {
	t.Helper()
	synth := NewSynthesizer(models.MSynthesizerConfig{SeedPrice: 100, Volatility: 0.02, Momentum: 0.6},
		rand.New(rand.NewSource(1)))
	return NewResolver(chain, synth, 200*time.Millisecond, extendedHours, zap.NewNop())
}

// -----------------------------------------------------------------------------
// TESTS
// -----------------------------------------------------------------------------

func TestResolveReturnsFirstSucceedingProviderUnmodified(t *testing.T) {
	primary := newFakeProvider("finnhub", true)
	primary.quote = pricedQuote("finnhub", 233.8)
	secondary := newFakeProvider("alphavantage", true)
	secondary.quote = pricedQuote("alphavantage", 999)

	resolver := newTestResolver(t, chainOf(primary, secondary), false)

	quote := resolver.Resolve(context.Background(), "AAPL", true)

	// No silent fallback past a succeeding provider: the output is the
	// primary's quote, field for field.
	assert.Equal(t, 233.8, quote.Price)
	assert.Equal(t, 1.5, quote.Change)
	assert.Equal(t, 0.75, quote.ChangePercent)
	assert.Equal(t, "finnhub", quote.Source)
	assert.False(t, quote.IsSynthetic)
	assert.Zero(t, secondary.calls["AAPL"])
}

// -----------------------------------------------------------------------------

func TestResolveAdvancesChainOnFailure(t *testing.T) {
	primary := newFakeProvider("finnhub", true)
	primary.err = models.ErrProviderRateLimited
	secondary := newFakeProvider("alphavantage", true)
	secondary.quote = pricedQuote("alphavantage", 412.5)

	resolver := newTestResolver(t, chainOf(primary, secondary), false)

	quote := resolver.Resolve(context.Background(), "MSFT", true)

	assert.Equal(t, "alphavantage", quote.Source)
	assert.False(t, quote.IsSynthetic)
	assert.Equal(t, 1, primary.calls["MSFT"])
}

// -----------------------------------------------------------------------------

func TestResolveTreatsZeroPriceAsFailure(t *testing.T) {
	primary := newFakeProvider("finnhub", true)
	primary.quote = pricedQuote("finnhub", 0)
	secondary := newFakeProvider("alphavantage", true)
	secondary.quote = pricedQuote("alphavantage", 55)

	resolver := newTestResolver(t, chainOf(primary, secondary), false)

	quote := resolver.Resolve(context.Background(), "AMD", true)

	assert.Equal(t, "alphavantage", quote.Source)
	assert.Equal(t, 55.0, quote.Price)
}

// -----------------------------------------------------------------------------

func TestResolveSkipsInvalidProvidersWithoutInvoking(t *testing.T) {
	invalid := newFakeProvider("finnhub", false)
	invalid.quote = pricedQuote("finnhub", 100)
	fallback := newFakeProvider("stooq", true)
	fallback.quote = pricedQuote("stooq", 42)

	resolver := newTestResolver(t, chainOf(invalid, fallback), false)

	quote := resolver.Resolve(context.Background(), "NVDA", true)

	assert.Equal(t, "stooq", quote.Source)
	assert.Zero(t, invalid.calls["NVDA"], "invalid provider must be skipped without a call")
}

// -----------------------------------------------------------------------------

func TestResolveSynthesizesWhenEveryProviderFails(t *testing.T) {
	a := newFakeProvider("finnhub", true)
	a.err = models.ErrProviderUnavailable
	b := newFakeProvider("alphavantage", false)

	resolver := newTestResolver(t, chainOf(a, b), false)

	quote := resolver.Resolve(context.Background(), "AAPL", true)

	assert.True(t, quote.IsSynthetic)
	assert.Equal(t, models.SourceSyntheticFallback, quote.Source)
	assert.GreaterOrEqual(t, quote.Price, 0.01)
}

// -----------------------------------------------------------------------------

func TestResolveClosedMarketShortCircuitsToOffHoursProvider(t *testing.T) {
	paid := newFakeProvider("finnhub", true)
	paid.quote = pricedQuote("finnhub", 500)
	free := newFakeProvider("stooq", true)
	free.quote = pricedQuote("stooq", 498.5)

	chain := chainOf(paid, free)
	chain.OffHours = free
	resolver := newTestResolver(t, chain, false)

	quote := resolver.Resolve(context.Background(), "SPY", false)

	assert.Equal(t, "stooq", quote.Source)
	assert.Zero(t, paid.calls["SPY"], "paid feed adds no value outside trading hours")
}

// -----------------------------------------------------------------------------

func TestResolveClosedMarketWithoutOffHoursProviderSynthesizes(t *testing.T) {
	paid := newFakeProvider("finnhub", true)
	paid.quote = pricedQuote("finnhub", 500)

	resolver := newTestResolver(t, chainOf(paid), false)

	quote := resolver.Resolve(context.Background(), "SPY", false)

	assert.True(t, quote.IsSynthetic)
	assert.Equal(t, models.SourceSyntheticClosed, quote.Source)
	assert.Zero(t, paid.calls["SPY"])
}

// -----------------------------------------------------------------------------

func TestResolveClosedMarketSkipsInvalidOffHoursProvider(t *testing.T) {
	invalid := newFakeProvider("stooq", false)
	invalid.quote = pricedQuote("stooq", 498.5)

	chain := chainOf(invalid)
	chain.OffHours = invalid
	resolver := newTestResolver(t, chain, false)

	quote := resolver.Resolve(context.Background(), "SPY", false)

	assert.Zero(t, invalid.calls["SPY"], "invalid off-hours provider must be skipped without a call")
	assert.True(t, quote.IsSynthetic)
	assert.Equal(t, models.SourceSyntheticClosed, quote.Source)
}

// -----------------------------------------------------------------------------

func TestResolveExtendedHoursKeepsFullChainWhenClosed(t *testing.T) {
	paid := newFakeProvider("finnhub", true)
	paid.quote = pricedQuote("finnhub", 500)
	free := newFakeProvider("stooq", true)
	free.quote = pricedQuote("stooq", 498.5)

	chain := chainOf(paid, free)
	chain.OffHours = free
	resolver := newTestResolver(t, chain, true)

	quote := resolver.Resolve(context.Background(), "SPY", false)

	assert.Equal(t, "finnhub", quote.Source)
}

// -----------------------------------------------------------------------------

func TestResolveBoundsSlowProviders(t *testing.T) {
	hanging := newFakeProvider("finnhub", true)
	hanging.quote = pricedQuote("finnhub", 500)
	hanging.delay = 5 * time.Second
	fast := newFakeProvider("alphavantage", true)
	fast.quote = pricedQuote("alphavantage", 77)

	resolver := newTestResolver(t, chainOf(hanging, fast), false)

	start := time.Now()
	quote := resolver.Resolve(context.Background(), "AAPL", true)

	require.Less(t, time.Since(start), 2*time.Second, "hanging vendor must not stall the chain")
	assert.Equal(t, "alphavantage", quote.Source)
}

// -----------------------------------------------------------------------------

func TestResolveUsesConfiguredProviderTimeout(t *testing.T) {
	hanging := newFakeProvider("finnhub", true)
	hanging.quote = pricedQuote("finnhub", 500)
	hanging.delay = 10 * time.Second
	hanging.timeout = 50 * time.Millisecond
	fast := newFakeProvider("alphavantage", true)
	fast.quote = pricedQuote("alphavantage", 77)

	// Resolver default far above the vendor's own deadline; the chain
	// must still advance on the vendor's configured timeout.
	synth := NewSynthesizer(models.MSynthesizerConfig{SeedPrice: 100, Volatility: 0.02, Momentum: 0.6},
		rand.New(rand.NewSource(1)))
	resolver := NewResolver(chainOf(hanging, fast), synth, 30*time.Second, false, zap.NewNop())

	start := time.Now()
	quote := resolver.Resolve(context.Background(), "AAPL", true)

	require.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "alphavantage", quote.Source)
}

// -----------------------------------------------------------------------------

func TestResolveBatchHasOneQuotePerSymbol(t *testing.T) {
	provider := newFakeProvider("finnhub", true)
	provider.quote = pricedQuote("finnhub", 120)

	resolver := newTestResolver(t, chainOf(provider), false)

	symbols := []string{"AAPL", "MSFT", "NVDA", "AMD"}
	batch := resolver.ResolveBatch(context.Background(), symbols, true)

	require.Len(t, batch, len(symbols))
	for i, symbol := range symbols {
		assert.Equal(t, symbol, batch[i].Symbol)
	}
}

// -----------------------------------------------------------------------------

func chainOf(list ...*fakeProvider) *providers.Chain {
	chain := &providers.Chain{}
	for _, p := range list {
		chain.Providers = append(chain.Providers, p)
	}
	return chain
}
