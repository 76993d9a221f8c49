package transports

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

const (
	writeWait             = 5 * time.Second
	pongWait              = 60 * time.Second
	pingPeriod            = (pongWait * 9) / 10
	maxClientMessageBytes = 4096
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// WebSocketConn wraps one subscriber's Gorilla WebSocket connection behind
// interfaces.ISubscriberConn. Outbound messages go through a buffered send
// channel drained by a single write pump; a subscriber that cannot keep up
// with the tick rate is disconnected rather than allowed to block the loop.
type WebSocketConn struct {
	id     string
	conn   *websocket.Conn
	logger *zap.Logger

	sendChann chan []byte
	done      chan struct{}
	open      atomic.Bool
	closeOnce sync.Once

	onMessage func(id string, msg models.MClientMessage)
	onClose   func(id string)
}

var _ interfaces.ISubscriberConn = (*WebSocketConn)(nil)

// -----------------------------------------------------------------------------
// CONSTRUCTOR
// -----------------------------------------------------------------------------

// NewWebSocketConn adopts an upgraded connection and starts its read and
// write pumps. onMessage receives every parsed client message; onClose fires
// exactly once when the connection goes away for any reason.
func NewWebSocketConn(
	conn *websocket.Conn,
	logger *zap.Logger,
	sendBuffer int,
	onMessage func(id string, msg models.MClientMessage),
	onClose func(id string),
) *WebSocketConn {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	w := &WebSocketConn{
		id:        uuid.NewString(),
		conn:      conn,
		logger:    logger,
		sendChann: make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		onMessage: onMessage,
		onClose:   onClose,
	}
	w.open.Store(true)

	go w.readPump()
	go w.writePump()

	return w
}

// -----------------------------------------------------------------------------
// PUBLIC METHODS
// -----------------------------------------------------------------------------

// GetID returns the connection's subscriber identifier.
func (w *WebSocketConn) GetID() string {
	return w.id
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the connection is still writable.
func (w *WebSocketConn) IsOpen() bool {
	return w.open.Load()
}

// -----------------------------------------------------------------------------

// SendJSON queues a JSON message for the write pump. A full send buffer
// means the subscriber is too slow; the connection is torn down and the
// caller sees the transport as closed.
func (w *WebSocketConn) SendJSON(v any) error {
	if !w.open.Load() {
		return models.ErrTransportClosed
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	select {
	case w.sendChann <- data:
		return nil
	case <-w.done:
		return models.ErrTransportClosed
	default:
		w.logger.Warn("subscriber send buffer full, disconnecting",
			zap.String("subscriber", w.id))
		w.Close()
		return models.ErrTransportClosed
	}
}

// -----------------------------------------------------------------------------

// Close shuts the connection down. Safe to call from any goroutine and more
// than once.
func (w *WebSocketConn) Close() error {
	w.closeOnce.Do(func() {
		w.open.Store(false)
		close(w.done)
		w.conn.Close()
		if w.onClose != nil {
			w.onClose(w.id)
		}
	})
	return nil
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

// readPump parses inbound client messages and hands them to onMessage.
func (w *WebSocketConn) readPump() {
	defer w.Close()

	w.conn.SetReadLimit(maxClientMessageBytes)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Debug("subscriber read error",
					zap.String("subscriber", w.id),
					zap.Error(err))
			}
			return
		}

		var msg models.MClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			w.logger.Debug("dropping malformed client message",
				zap.String("subscriber", w.id),
				zap.Error(err))
			continue
		}

		if w.onMessage != nil {
			w.onMessage(w.id, msg)
		}
	}
}

// -----------------------------------------------------------------------------

// writePump is the only goroutine that writes to the socket. It drains the
// send channel and keeps the connection alive with periodic pings.
func (w *WebSocketConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.Close()
	}()

	for {
		select {
		case <-w.done:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case data := <-w.sendChann:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				w.logger.Debug("subscriber write error",
					zap.String("subscriber", w.id),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
