package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"market-streamer/src/config"
	"market-streamer/src/interfaces"
	"market-streamer/src/models"
	"market-streamer/src/providers"
	"market-streamer/src/stream"
	"market-streamer/src/transports"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// Server exposes the subscriber websocket endpoint and a small control
// surface: health, service status and quote snapshots.
type Server struct {
	Name     string
	Config   *config.Config
	Logger   *zap.Logger
	Registry *stream.Registry
	Store    interfaces.ISnapshotStore
	Clock    interfaces.IMarketClock
	Chains   *providers.ChainBuilder

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// -----------------------------------------------------------------------------
// CONSTRUCTOR
// -----------------------------------------------------------------------------

// NewServer wires the HTTP routes. Call Run to start serving.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *stream.Registry,
	store interfaces.ISnapshotStore,
	clock interfaces.IMarketClock,
	chains *providers.ChainBuilder,
) *Server {
	s := &Server{
		Name:     "RestServer",
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Store:    store,
		Clock:    clock,
		Chains:   chains,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser dashboards connect from their own origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/snapshots", s.handleSnapshots).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// -----------------------------------------------------------------------------
// PUBLIC METHODS
// -----------------------------------------------------------------------------

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.Logger.Info("http server listening",
		zap.String("server", s.Name),
		zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// -----------------------------------------------------------------------------

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// -----------------------------------------------------------------------------

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	chain := s.Chains.Build("status-endpoint")
	providerStatuses := make([]models.MProviderStatus, 0, len(chain.Providers))
	for i, provider := range chain.Providers {
		providerStatuses = append(providerStatuses, models.MProviderStatus{
			Name:     provider.GetName(),
			Priority: i,
			Valid:    provider.IsValid(),
		})
	}

	status := models.MServiceStatus{
		ActiveSessions: s.Registry.ActiveCount(),
		Sessions:       s.Registry.SessionStatuses(),
		Providers:      providerStatuses,
		MarketOpen:     s.Clock.IsOpen(time.Now()),
	}
	writeJSON(w, http.StatusOK, status)
}

// -----------------------------------------------------------------------------

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	symbols := models.NormalizeSymbols(splitSymbols(r.URL.Query().Get("symbols")))
	if len(symbols) == 0 {
		writeJSON(w, http.StatusBadRequest, models.MErrorMessage{
			Type:    models.MessageTypeError,
			Message: "symbols query parameter is required",
		})
		return
	}

	quotes, err := s.Store.GetSnapshots(r.Context(), symbols)
	if err != nil {
		s.Logger.Error("snapshot lookup failed",
			zap.Strings("symbols", symbols),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.MErrorMessage{
			Type:    models.MessageTypeError,
			Message: "snapshot lookup failed",
		})
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// -----------------------------------------------------------------------------

// handleWebSocket upgrades the connection and routes client commands into
// the stream registry. Session lifecycle is entirely message-driven:
// subscribe starts or replaces the session, unsubscribe and disconnect stop
// it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := transports.NewWebSocketConn(
		wsConn,
		s.Logger,
		s.Config.Stream.SendBuffer,
		s.handleClientMessage,
		s.Registry.Disconnect,
	)

	s.Logger.Info("subscriber connected",
		zap.String("subscriber", conn.GetID()),
		zap.String("remote", r.RemoteAddr))

	// Register so subscribe commands can find their transport.
	s.Registry.Track(conn)
}

// -----------------------------------------------------------------------------

func (s *Server) handleClientMessage(id string, msg models.MClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		conn := s.Registry.Conn(id)
		if conn == nil {
			return
		}
		if err := s.Registry.Start(conn, msg.Symbols); err != nil {
			s.Logger.Warn("subscribe rejected",
				zap.String("subscriber", id),
				zap.Error(err))
			conn.SendJSON(models.MErrorMessage{
				Type:    models.MessageTypeError,
				Message: err.Error(),
			})
		}

	case models.MessageTypeUnsubscribe:
		s.Registry.Stop(id)

	default:
		if conn := s.Registry.Conn(id); conn != nil {
			conn.SendJSON(models.MErrorMessage{
				Type:    models.MessageTypeError,
				Message: "unknown message type: " + msg.Type,
			})
		}
	}
}

// -----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// -----------------------------------------------------------------------------

func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
