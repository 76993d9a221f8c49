package store

import (
	"context"
	"sync"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// MemoryStore is the snapshot store used when no Redis address is
// configured. Snapshots live as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[string]models.MQuote
}

var _ interfaces.ISnapshotStore = (*MemoryStore)(nil)

// -----------------------------------------------------------------------------

// NewMemoryStore creates an empty in-process snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[string]models.MQuote)}
}

// -----------------------------------------------------------------------------

// SaveQuote overwrites the symbol's snapshot.
func (s *MemoryStore) SaveQuote(_ context.Context, quote models.MQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[quote.Symbol] = quote
	return nil
}

// -----------------------------------------------------------------------------

// GetSnapshots returns stored snapshots for the requested symbols, skipping
// symbols that were never streamed.
func (s *MemoryStore) GetSnapshots(_ context.Context, symbols []string) ([]models.MQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]models.MQuote, 0, len(symbols))
	for _, symbol := range symbols {
		if quote, ok := s.quotes[symbol]; ok {
			quotes = append(quotes, quote)
		}
	}
	return quotes, nil
}

// -----------------------------------------------------------------------------

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
