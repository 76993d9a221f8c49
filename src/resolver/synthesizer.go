package resolver

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// priceFloor prevents non-physical zero or negative synthetic prices.
const priceFloor = 0.01

// -----------------------------------------------------------------------------

// priceState is the per-symbol mutable cache behind the random walk. It is
// owned exclusively by the synthesizer and never read by any other
// component.
type priceState struct {
	price      float64
	lastChange float64
	volatility float64
}

// -----------------------------------------------------------------------------

// Synthesizer produces a plausible next price for a symbol when no real
// provider is reachable. It is a cheap bounded random walk, not a
// calibrated market model: its only job is to keep the UI populated with
// plausible-looking motion, flagged so it is never mistaken for real data.
//
// Each stream session owns its own Synthesizer, so walks for different
// subscribers never interfere.
type Synthesizer struct {
	cfg models.MSynthesizerConfig
	rnd *rand.Rand

	mu     sync.Mutex
	states map[string]*priceState
}

// -----------------------------------------------------------------------------

// NewSynthesizer creates a synthesizer with the given walk parameters.
// Pass a seeded rand for deterministic tests; nil uses a time-seeded one.
func NewSynthesizer(cfg models.MSynthesizerConfig, rnd *rand.Rand) *Synthesizer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthesizer{
		cfg:    cfg,
		rnd:    rnd,
		states: make(map[string]*priceState),
	}
}

// -----------------------------------------------------------------------------

// Synthesize always succeeds. marketOpen selects the source label so
// downstream consumers can tell "session open, all providers failed" from
// "session closed, no provider queried".
func (s *Synthesizer) Synthesize(symbol string, marketOpen bool) models.MQuote {
	symbol = models.NormalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.stateFor(symbol)
	oldPrice := state.price

	// Bias the next step to continue the prior direction with probability
	// cfg.Momentum, approximating short-term autocorrelation.
	upProbability := s.cfg.Momentum
	if state.lastChange <= 0 {
		upProbability = 1 - s.cfg.Momentum
	}

	direction := 1.0
	if s.rnd.Float64() > upProbability {
		direction = -1.0
	}

	changeAmount := direction * state.price * state.volatility * s.rnd.Float64()
	newPrice := math.Max(priceFloor, state.price+changeAmount)

	change := newPrice - oldPrice
	changePercent := change / oldPrice * 100

	state.price = newPrice
	state.lastChange = change

	source := models.SourceSyntheticClosed
	if marketOpen {
		source = models.SourceSyntheticFallback
	}

	return models.MQuote{
		Symbol:        symbol,
		Price:         newPrice,
		Change:        change,
		ChangePercent: changePercent,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		IsSynthetic:   true,
	}
}

// -----------------------------------------------------------------------------

// SeedPrice overrides the walk's current price for a symbol, e.g. with the
// last real quote seen before providers went dark.
func (s *Synthesizer) SeedPrice(symbol string, price float64) {
	if price < priceFloor {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.stateFor(models.NormalizeSymbol(symbol))
	state.price = price
}

// -----------------------------------------------------------------------------

// stateFor lazily creates the symbol's state, so it always exists before
// any synthetic quote referencing it is emitted. Caller holds s.mu.
func (s *Synthesizer) stateFor(symbol string) *priceState {
	state, ok := s.states[symbol]
	if !ok {
		state = &priceState{
			price:      s.cfg.SeedPrice,
			lastChange: 0,
			volatility: s.cfg.Volatility,
		}
		s.states[symbol] = state
	}
	return state
}
