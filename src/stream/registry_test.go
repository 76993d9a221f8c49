package stream

import (
	"testing"
	"time"

	"market-streamer/src/config"
	"market-streamer/src/integrations"
	"market-streamer/src/interfaces"
	"market-streamer/src/models"
	"market-streamer/src/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// TEST DOUBLES
// -----------------------------------------------------------------------------

// fakeBuilder hands out sessions backed by the package fakes so registry
// tests can reach into individual tick loops.
type fakeBuilder struct{}

func (fakeBuilder) NewSession(conn interfaces.ISubscriberConn) *Session {
	return NewSession(conn, &fakeResolver{}, &fakeClock{open: true},
		&fakePublisher{}, newFakeStore(), testInterval, zap.NewNop())
}

func newTestRegistry() *Registry {
	return NewRegistry(fakeBuilder{}, zap.NewNop())
}

// -----------------------------------------------------------------------------
// TESTS
// -----------------------------------------------------------------------------

func TestRegistryStartInstallsSession(t *testing.T) {
	registry := newTestRegistry()
	defer registry.StopAll()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))

	assert.Equal(t, 1, registry.ActiveCount())
	require.Eventually(t, func() bool { return conn.sentCount() >= 1 },
		time.Second, 5*time.Millisecond)
}

// -----------------------------------------------------------------------------

func TestRegistryRestartLeavesExactlyOneLoop(t *testing.T) {
	registry := newTestRegistry()
	defer registry.StopAll()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))

	first := registry.Session("s1")
	require.NotNil(t, first)
	require.Eventually(t, func() bool { return first.Ticks() >= 1 },
		time.Second, 5*time.Millisecond)

	// Second start for the same subscriber replaces the session; the old
	// loop must be fully stopped before the new one is installed.
	require.NoError(t, registry.Start(conn, []string{"MSFT"}))

	second := registry.Session("s1")
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.False(t, first.Running())
	assert.Equal(t, 1, registry.ActiveCount())

	frozen := first.Ticks()
	require.Eventually(t, func() bool { return second.Ticks() >= 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, frozen, first.Ticks(), "replaced session must not tick again")
}

// -----------------------------------------------------------------------------

func TestRegistryStopIsIdempotent(t *testing.T) {
	registry := newTestRegistry()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))

	registry.Stop("s1")
	registry.Stop("s1")
	registry.Stop("never-subscribed")

	assert.Zero(t, registry.ActiveCount())
	assert.Nil(t, registry.Session("s1"))
}

// -----------------------------------------------------------------------------

func TestRegistryStopHaltsSends(t *testing.T) {
	registry := newTestRegistry()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))
	require.Eventually(t, func() bool { return conn.sentCount() >= 1 },
		time.Second, 5*time.Millisecond)

	registry.Stop("s1")
	sentAtStop := conn.sentCount()

	time.Sleep(2*testInterval + 10*time.Millisecond)
	assert.Equal(t, sentAtStop, conn.sentCount())
}

// -----------------------------------------------------------------------------

func TestRegistryUpdateSymbols(t *testing.T) {
	registry := newTestRegistry()
	defer registry.StopAll()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))
	require.NoError(t, registry.UpdateSymbols("s1", []string{"NVDA"}))

	require.Eventually(t, func() bool {
		return conn.sentCount() >= 1 && conn.lastMessage().Data[0].Symbol == "NVDA"
	}, time.Second, 5*time.Millisecond)

	assert.Error(t, registry.UpdateSymbols("ghost", []string{"NVDA"}))
}

// -----------------------------------------------------------------------------

func TestRegistryStopAll(t *testing.T) {
	registry := newTestRegistry()

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, registry.Start(newFakeConn(id), []string{"AAPL"}))
	}
	require.Equal(t, 3, registry.ActiveCount())

	registry.StopAll()
	assert.Zero(t, registry.ActiveCount())
	assert.Empty(t, registry.SessionStatuses())
}

// -----------------------------------------------------------------------------

// The factory path: no configured providers, market closed, so the very
// first batch is synthesized and flagged as such.
func TestFactorySessionSynthesizesWhenMarketClosed(t *testing.T) {
	cfg, err := config.NewFromModel(&models.MConfig{Name: "test"})
	require.NoError(t, err)

	chains := providers.NewChainBuilder(cfg, zap.NewNop(), &integrations.StaticSource{})
	factory := NewSessionFactory(cfg, zap.NewNop(), &fakeClock{open: false},
		&fakePublisher{}, newFakeStore(), chains)
	factory.Config.Stream.TickInterval = testInterval

	registry := NewRegistry(factory, zap.NewNop())
	defer registry.StopAll()

	conn := newFakeConn("s1")
	require.NoError(t, registry.Start(conn, []string{"AAPL"}))

	require.Eventually(t, func() bool { return conn.sentCount() >= 1 },
		time.Second, 5*time.Millisecond)

	msg := conn.lastMessage()
	require.Len(t, msg.Data, 1)
	quote := msg.Data[0]
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.IsSynthetic)
	assert.Equal(t, models.SourceSyntheticClosed, quote.Source)
	assert.Greater(t, quote.Price, 0.0)
	assert.False(t, msg.MarketStatus.IsMarketOpen)
	assert.Equal(t, models.SourceSyntheticClosed, msg.MarketStatus.DataSource)
}

// -----------------------------------------------------------------------------

// Two subscribers on the same symbol get independent synthetic walks.
func TestFactorySessionsScopeSyntheticStatePerSubscriber(t *testing.T) {
	cfg, err := config.NewFromModel(&models.MConfig{Name: "test"})
	require.NoError(t, err)

	chains := providers.NewChainBuilder(cfg, zap.NewNop(), &integrations.StaticSource{})
	factory := NewSessionFactory(cfg, zap.NewNop(), &fakeClock{open: false},
		&fakePublisher{}, newFakeStore(), chains)
	factory.Config.Stream.TickInterval = testInterval

	registry := NewRegistry(factory, zap.NewNop())
	defer registry.StopAll()

	connA := newFakeConn("sA")
	connB := newFakeConn("sB")
	require.NoError(t, registry.Start(connA, []string{"AAPL"}))
	require.NoError(t, registry.Start(connB, []string{"AAPL"}))

	require.Eventually(t, func() bool {
		return connA.sentCount() >= 4 && connB.sentCount() >= 4
	}, 2*time.Second, 5*time.Millisecond)

	registry.StopAll()

	// Independent walks almost surely diverge after a few ticks; identical
	// full histories would mean shared state.
	connA.mu.Lock()
	defer connA.mu.Unlock()
	connB.mu.Lock()
	defer connB.mu.Unlock()

	n := len(connA.sent)
	if len(connB.sent) < n {
		n = len(connB.sent)
	}
	identical := true
	for i := 1; i < n; i++ {
		if connA.sent[i].Data[0].Price != connB.sent[i].Data[0].Price {
			identical = false
			break
		}
	}
	assert.False(t, identical, "subscribers must not share synthesizer state")
}
