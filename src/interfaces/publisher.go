package interfaces

import "market-streamer/src/models"

// -----------------------------------------------------------------------------

// IPublisher defines the interface for publishing resolved batches to the
// message bus, so downstream recorders and alerting consume the same
// stream the browser sees.
type IPublisher interface {
	// PublishBatch sends one outbound batch for a subscriber.
	// Best-effort: a publish failure never fails the subscriber tick.
	PublishBatch(subscriberID string, batch *models.MBatchMessage) error

	// Connect establishes the connection to the message broker.
	Connect() error

	// Disconnect closes the connection to the message broker.
	Disconnect() error

	// IsConnected returns the current connection status.
	IsConnected() bool
}
