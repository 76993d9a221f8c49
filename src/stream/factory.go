package stream

import (
	"market-streamer/src/config"
	"market-streamer/src/interfaces"
	"market-streamer/src/providers"
	"market-streamer/src/resolver"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

// SessionFactory assembles the full per-subscriber stack: provider chain
// from the subscriber's integrations, a private synthesizer (so random
// walks never bleed across subscribers), the resolver over both, and the
// session that ticks them.
type SessionFactory struct {
	Name      string
	Config    *config.Config
	Logger    *zap.Logger
	Clock     interfaces.IMarketClock
	Publisher interfaces.IPublisher
	Store     interfaces.ISnapshotStore
	Chains    *providers.ChainBuilder
}

// -----------------------------------------------------------------------------

// NewSessionFactory creates a new SessionFactory instance.
func NewSessionFactory(
	cfg *config.Config,
	logger *zap.Logger,
	clock interfaces.IMarketClock,
	publisher interfaces.IPublisher,
	store interfaces.ISnapshotStore,
	chains *providers.ChainBuilder,
) *SessionFactory {
	return &SessionFactory{
		Name:      "StreamSessionFactory",
		Config:    cfg,
		Logger:    logger,
		Clock:     clock,
		Publisher: publisher,
		Store:     store,
		Chains:    chains,
	}
}

// -----------------------------------------------------------------------------

// NewSession builds an idle session for one subscriber connection.
func (f *SessionFactory) NewSession(conn interfaces.ISubscriberConn) *Session {
	chain := f.Chains.Build(conn.GetID())
	synthesizer := resolver.NewSynthesizer(f.Config.Synthesizer, nil)
	quoteResolver := resolver.NewResolver(
		chain,
		synthesizer,
		config.DefaultProviderTimeout,
		f.Config.Market.ExtendedHours,
		f.Logger,
	)

	f.Logger.Info("assembled provider chain for subscriber",
		zap.String("factory", f.Name),
		zap.String("subscriber", conn.GetID()),
		zap.Int("providers", len(chain.Providers)))

	return NewSession(conn, quoteResolver, f.Clock, f.Publisher, f.Store,
		f.Config.Stream.TickInterval, f.Logger)
}
