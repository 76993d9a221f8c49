package publishers

import (
	"fmt"
	"sync"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// NATSPublisher mirrors every batch sent to a subscriber onto a NATS subject
// so downstream consumers (recorders, alerting, analytics) see the same feed
// the dashboard sees.
type NATSPublisher struct {
	name   string
	config *models.MNATSConfig
	logger *zap.Logger

	useJetStream bool

	mu sync.RWMutex

	nc         *nats.Conn
	js         nats.JetStreamContext
	serializer interfaces.ISerializer

	connected bool
}

var _ interfaces.IPublisher = (*NATSPublisher)(nil)

// -----------------------------------------------------------------------------
// CONSTRUCTOR
// -----------------------------------------------------------------------------

// NewNATSPublisher creates a NATS publisher instance. Call Connect before
// publishing.
func NewNATSPublisher(config *models.MNATSConfig, logger *zap.Logger, serializer interfaces.ISerializer) *NATSPublisher {
	return &NATSPublisher{
		name:       config.ClientID,
		config:     config,
		logger:     logger,
		serializer: serializer,
	}
}

// -----------------------------------------------------------------------------
// PUBLIC METHODS
// -----------------------------------------------------------------------------

// PublishBatch serializes the batch and publishes it under
// <prefix>.batch.<subscriberID>.
func (np *NATSPublisher) PublishBatch(subscriberID string, batch *models.MBatchMessage) error {
	subject := np.getSubject(fmt.Sprintf("batch.%s", subscriberID))

	data, err := np.serializer.Marshal(batch)
	if err != nil {
		np.logger.Error("failed to serialize batch for nats",
			zap.String("publisher", np.name),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}

	if np.useJetStream {
		err = np.publishJetStream(subject, data)
	} else {
		err = np.publish(subject, data)
	}

	if err != nil {
		np.logger.Error("failed to publish batch to nats",
			zap.String("publisher", np.name),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Connect establishes the NATS connection and sets up the JetStream context
// if configured.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}
	if len(np.config.Servers) == 0 {
		return fmt.Errorf("no nats servers configured")
	}

	opts := []nats.Option{
		nats.Name(np.config.ClientID),
		nats.Timeout(np.config.ConnectTimeout),
		nats.ReconnectWait(np.config.ReconnectWait),
		nats.MaxReconnects(np.config.MaxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Error("nats connection closed unexpectedly",
				zap.String("publisher", np.name))
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warn("nats disconnected, attempting reconnect",
				zap.String("publisher", np.name),
				zap.Error(err))
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("nats reconnected",
				zap.String("publisher", np.name),
				zap.String("url", nc.ConnectedUrl()))
			np.setConnected(true)
		}),
	}

	var err error
	np.nc, err = nats.Connect(np.config.Servers[0], opts...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}

	np.connected = true
	np.logger.Info("connected to nats",
		zap.String("publisher", np.name),
		zap.String("url", np.nc.ConnectedUrl()))

	if np.config.JetStream != nil && np.config.JetStream.Enabled {
		np.useJetStream = true

		np.js, err = np.nc.JetStream()
		if err != nil {
			return fmt.Errorf("jetstream context creation failed: %w", err)
		}

		if err := np.ensureStreamExists(); err != nil {
			// Publishing may still succeed if the stream exists server-side.
			np.logger.Warn("failed to ensure jetstream stream exists",
				zap.String("publisher", np.name),
				zap.Error(err))
		}
	} else {
		np.useJetStream = false
		np.logger.Info("publishing over nats core, jetstream disabled",
			zap.String("publisher", np.name))
	}

	return nil
}

// -----------------------------------------------------------------------------

// Disconnect closes the NATS connection.
func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil || np.nc.IsClosed() {
		return nil
	}

	np.nc.Close()
	np.connected = false
	np.logger.Info("nats connection closed",
		zap.String("publisher", np.name))
	return nil
}

// -----------------------------------------------------------------------------

// IsConnected returns the connection status.
func (np *NATSPublisher) IsConnected() bool {
	np.mu.RLock()
	defer np.mu.RUnlock()
	return np.connected
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// publish sends raw data to a NATS core subject, fire-and-forget.
func (np *NATSPublisher) publish(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	return np.nc.Publish(subject, data)
}

// -----------------------------------------------------------------------------

// publishJetStream sends raw data with persistence and an explicit ack.
func (np *NATSPublisher) publishJetStream(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	if np.js == nil {
		return fmt.Errorf("jetstream is not initialized or enabled")
	}

	_, err := np.js.Publish(subject, data)
	return err
}

// -----------------------------------------------------------------------------

// ensureStreamExists creates the JetStream stream if it is missing.
func (np *NATSPublisher) ensureStreamExists() error {
	if np.js == nil || np.config.JetStream == nil {
		return fmt.Errorf("jetstream not initialized")
	}

	streamName := np.config.JetStream.StreamName
	if streamName == "" {
		return fmt.Errorf("stream name not configured")
	}

	if _, err := np.js.StreamInfo(streamName); err == nil {
		return nil
	}

	maxAge := np.config.JetStream.MaxAge
	if maxAge == 0 {
		maxAge = 72 * time.Hour
	}

	streamConfig := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  np.config.JetStream.Subjects,
		Retention: nats.LimitsPolicy,
		Storage:   nats.FileStorage,
		MaxAge:    maxAge,
		MaxMsgs:   np.config.JetStream.MaxMsgs,
		Discard:   nats.DiscardOld,
	}

	if _, err := np.js.AddStream(streamConfig); err != nil {
		return fmt.Errorf("failed to create stream '%s': %w", streamName, err)
	}

	np.logger.Info("created jetstream stream",
		zap.String("publisher", np.name),
		zap.String("stream", streamName),
		zap.Strings("subjects", np.config.JetStream.Subjects))
	return nil
}

// -----------------------------------------------------------------------------

// setConnected updates the connection status from NATS event handlers.
func (np *NATSPublisher) setConnected(status bool) {
	np.mu.Lock()
	defer np.mu.Unlock()
	np.connected = status
}

// -----------------------------------------------------------------------------

// getSubject prepends the configured subject prefix if it exists.
func (np *NATSPublisher) getSubject(subject string) string {
	if np.config.SubjectPrefix != "" {
		return fmt.Sprintf("%s.%s", np.config.SubjectPrefix, subject)
	}
	return subject
}
