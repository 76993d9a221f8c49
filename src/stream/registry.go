package stream

import (
	"fmt"
	"sync"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

// ISessionBuilder creates sessions; satisfied by SessionFactory.
type ISessionBuilder interface {
	NewSession(conn interfaces.ISubscriberConn) *Session
}

// -----------------------------------------------------------------------------

// Registry is the process-wide table of active subscriber sessions. It is
// an owned object passed by injection, not a package singleton, so
// multiple orchestrator instances (e.g., in tests) never share state.
type Registry struct {
	Name    string
	Logger  *zap.Logger
	builder ISessionBuilder

	// startMu serializes lifecycle transitions so two concurrent Start
	// calls for one subscriber can never leave two live tick loops.
	startMu sync.Mutex

	mu       sync.RWMutex
	sessions map[string]*Session
	conns    map[string]interfaces.ISubscriberConn
}

// -----------------------------------------------------------------------------

// NewRegistry creates an empty registry over the given session builder.
func NewRegistry(builder ISessionBuilder, logger *zap.Logger) *Registry {
	return &Registry{
		Name:     "StreamRegistry",
		Logger:   logger,
		builder:  builder,
		sessions: make(map[string]*Session),
		conns:    make(map[string]interfaces.ISubscriberConn),
	}
}

// -----------------------------------------------------------------------------

// Track registers a connected transport that has not subscribed yet, so a
// later subscribe command can locate it by subscriber id.
func (r *Registry) Track(conn interfaces.ISubscriberConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.GetID()] = conn
}

// -----------------------------------------------------------------------------

// Conn returns the tracked transport for a subscriber, or nil.
func (r *Registry) Conn(id string) interfaces.ISubscriberConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[id]
}

// -----------------------------------------------------------------------------

// Disconnect handles a transport going away: the session is stopped and
// the transport forgotten. Unlike Stop, the subscriber cannot resubscribe.
func (r *Registry) Disconnect(id string) {
	r.Stop(id)
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Start installs a stream session for the subscriber. Any prior session
// for the same subscriber is fully stopped first: at most one active tick
// loop per subscriber connection at any time.
func (r *Registry) Start(conn interfaces.ISubscriberConn, symbols []string) error {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	id := conn.GetID()
	r.stopLocked(id)

	session := r.builder.NewSession(conn)
	if err := session.Start(symbols); err != nil {
		return fmt.Errorf("failed to start session for subscriber %s: %w", id, err)
	}

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	r.Logger.Info("stream session installed",
		zap.String("registry", r.Name),
		zap.String("subscriber", id),
		zap.Strings("symbols", models.NormalizeSymbols(symbols)))
	return nil
}

// -----------------------------------------------------------------------------

// Stop tears down the subscriber's session. Idempotent: stopping an id
// with no session is a no-op, not an error.
func (r *Registry) Stop(id string) {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	r.stopLocked(id)
}

// -----------------------------------------------------------------------------

// stopLocked removes and stops one session. Caller holds startMu.
func (r *Registry) stopLocked(id string) {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	session.Stop()
	r.Logger.Info("stream session stopped",
		zap.String("registry", r.Name),
		zap.String("subscriber", id))
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the subscribed set of a running session; the new
// set takes effect on its next tick.
func (r *Registry) UpdateSymbols(id string, symbols []string) error {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no active session for subscriber %s", id)
	}
	return session.SetSymbols(symbols)
}

// -----------------------------------------------------------------------------

// StopAll stops every session; used on shutdown.
func (r *Registry) StopAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Stop(id)
	}
}

// -----------------------------------------------------------------------------

// ActiveCount returns the number of installed sessions.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// -----------------------------------------------------------------------------

// Session returns the installed session for a subscriber, or nil.
func (r *Registry) Session(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// -----------------------------------------------------------------------------

// SessionStatuses reports every installed session's runtime state.
func (r *Registry) SessionStatuses() []models.MSessionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]models.MSessionStatus, 0, len(r.sessions))
	for _, session := range r.sessions {
		statuses = append(statuses, session.Status())
	}
	return statuses
}
