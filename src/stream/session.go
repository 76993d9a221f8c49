package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

// sessionState is the lifecycle of one subscriber stream:
// Idle -> Active -> Stopped, with Stopped terminal. A new subscription
// creates a new session; there is no way back from Stopped.
type sessionState int32

const (
	sessionIdle sessionState = iota
	sessionActive
	sessionStopped
)

// -----------------------------------------------------------------------------

// Session owns the periodic tick loop for one subscriber connection: per
// tick it consults the market clock, drives the quote resolver for every
// subscribed symbol, assembles the batch and writes it to the subscriber.
type Session struct {
	ID        string
	Logger    *zap.Logger
	Conn      interfaces.ISubscriberConn
	Resolver  interfaces.IQuoteResolver
	Clock     interfaces.IMarketClock
	Publisher interfaces.IPublisher
	Store     interfaces.ISnapshotStore

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	state   sessionState
	symbols []string
	cancel  context.CancelFunc
	done    chan struct{}

	ticks atomic.Int64
}

// -----------------------------------------------------------------------------

// NewSession creates an idle session. It does not tick until Start.
func NewSession(
	conn interfaces.ISubscriberConn,
	resolver interfaces.IQuoteResolver,
	clock interfaces.IMarketClock,
	publisher interfaces.IPublisher,
	store interfaces.ISnapshotStore,
	interval time.Duration,
	logger *zap.Logger,
) *Session {
	if interval <= 0 {
		interval = time.Second
	}
	return &Session{
		ID:        conn.GetID(),
		Logger:    logger,
		Conn:      conn,
		Resolver:  resolver,
		Clock:     clock,
		Publisher: publisher,
		Store:     store,
		interval:  interval,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start moves Idle -> Active and launches the tick loop. An empty symbol
// set must not start a tick loop at all.
func (s *Session) Start(symbols []string) error {
	normalized := models.NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return models.ErrEmptySymbolSet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sessionIdle {
		return fmt.Errorf("session %s: already started", s.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.state = sessionActive
	s.symbols = normalized
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels the tick loop and waits for it to exit: once Stop returns,
// no further resolver calls or transport writes happen on behalf of this
// session. In-flight provider calls may complete but their results are
// discarded. Safe to call more than once.
func (s *Session) Stop() {
	s.halt()

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// -----------------------------------------------------------------------------

// halt transitions to Stopped and cancels the loop without waiting. Used
// from inside the tick loop itself, where waiting would deadlock.
func (s *Session) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == sessionStopped {
		return
	}
	s.state = sessionStopped
	if s.cancel != nil {
		s.cancel()
	}
}

// -----------------------------------------------------------------------------

// SetSymbols replaces the subscribed set; the change is visible on the
// next tick, never to an in-flight one.
func (s *Session) SetSymbols(symbols []string) error {
	normalized := models.NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return models.ErrEmptySymbolSet
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = normalized
	return nil
}

// -----------------------------------------------------------------------------

// Running reports whether the session is in the Active state.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == sessionActive
}

// -----------------------------------------------------------------------------

// Ticks returns how many batches have been written so far.
func (s *Session) Ticks() int64 {
	return s.ticks.Load()
}

// -----------------------------------------------------------------------------

// Status reports the session's runtime state.
func (s *Session) Status() models.MSessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MSessionStatus{
		SubscriberID: s.ID,
		Running:      s.state == sessionActive,
		Symbols:      append([]string(nil), s.symbols...),
		TicksSent:    s.ticks.Load(),
	}
}

// -----------------------------------------------------------------------------
// Tick loop
// -----------------------------------------------------------------------------

// run emits the first batch immediately, then one per interval until the
// context is canceled.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// tick assembles and delivers one batch. Any transport failure stops the
// session; provider failures never surface here because the resolver
// terminates in synthesis.
func (s *Session) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	symbols := append([]string(nil), s.symbols...)
	s.mu.Unlock()

	if !s.Conn.IsOpen() {
		s.Logger.Info("subscriber transport closed, stopping session",
			zap.String("subscriber", s.ID))
		s.halt()
		return
	}

	marketOpen := s.Clock.IsOpen(s.now())
	batch := s.Resolver.ResolveBatch(ctx, symbols, marketOpen)

	// Results resolved during a Stop are discarded, never written to a
	// stopped transport.
	if ctx.Err() != nil {
		return
	}
	if len(batch) == 0 {
		return
	}

	message := &models.MBatchMessage{
		Type: models.MessageTypeMarketData,
		Data: batch,
		MarketStatus: models.MMarketStatus{
			IsMarketOpen: marketOpen,
			DataSource:   primarySource(batch),
		},
	}

	if err := s.Conn.SendJSON(message); err != nil {
		s.Logger.Info("subscriber transport not writable, stopping session",
			zap.String("subscriber", s.ID),
			zap.Error(err))
		s.halt()
		return
	}
	s.ticks.Add(1)

	s.persist(ctx, batch)

	if err := s.Publisher.PublishBatch(s.ID, message); err != nil {
		s.Logger.Warn("failed to publish batch to bus",
			zap.String("subscriber", s.ID),
			zap.Error(err))
	}
}

// -----------------------------------------------------------------------------

// persist saves the batch as the latest per-symbol snapshots, best-effort.
func (s *Session) persist(ctx context.Context, batch []models.MQuote) {
	for _, quote := range batch {
		if err := s.Store.SaveQuote(ctx, quote); err != nil {
			s.Logger.Debug("failed to persist quote snapshot",
				zap.String("symbol", quote.Symbol),
				zap.Error(err))
			return
		}
	}
}

// -----------------------------------------------------------------------------

// primarySource is the first non-synthetic provider in the batch, or the
// synthetic label when every quote was fabricated.
func primarySource(batch []models.MQuote) string {
	for _, quote := range batch {
		if !quote.IsSynthetic {
			return quote.Source
		}
	}
	if len(batch) > 0 {
		return batch[0].Source
	}
	return ""
}
