package publishers

import (
	"market-streamer/src/interfaces"
	"market-streamer/src/models"
)

// -----------------------------------------------------------------------------

// NoopPublisher discards every batch. Used when no NATS servers are
// configured so the stream loop never has to care.
type NoopPublisher struct{}

var _ interfaces.IPublisher = (*NoopPublisher)(nil)

// -----------------------------------------------------------------------------

// NewNoopPublisher creates a publisher that drops everything.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// -----------------------------------------------------------------------------

func (p *NoopPublisher) PublishBatch(string, *models.MBatchMessage) error { return nil }
func (p *NoopPublisher) Connect() error                                   { return nil }
func (p *NoopPublisher) Disconnect() error                                { return nil }
func (p *NoopPublisher) IsConnected() bool                                { return true }
