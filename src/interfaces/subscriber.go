package interfaces

// -----------------------------------------------------------------------------

// ISubscriberConn is the bidirectional message channel to one browser
// client. The stream registry observes the close event (via the transport's
// close callback) to trigger Stop.
type ISubscriberConn interface {
	// GetID returns the stable subscriber identifier for this connection.
	GetID() string

	// SendJSON writes one JSON message to the subscriber. It returns
	// models.ErrTransportClosed when the connection is gone or the
	// outbound buffer is full; it never blocks on a stalled consumer.
	SendJSON(v any) error

	// IsOpen reports whether the transport is currently writable.
	IsOpen() bool

	// Close tears the connection down. Safe to call more than once.
	Close() error
}
