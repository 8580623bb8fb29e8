package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/metrics"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS middleware
		return true
	},
}

// AlertStreamHandler pushes live alerts to WebSocket clients
type AlertStreamHandler struct {
	aggregator *monitoring.Aggregator
	metrics    *metrics.Registry
	logger     *slog.Logger
}

func NewAlertStreamHandler(agg *monitoring.Aggregator, registry *metrics.Registry, logger *slog.Logger) *AlertStreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertStreamHandler{
		aggregator: agg,
		metrics:    registry,
		logger:     logger,
	}
}

// ServeHTTP upgrades the connection and streams alerts until the client
// disconnects. Each connection holds its own subscription.
func (h *AlertStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sub := h.aggregator.Subscribe()
	if h.metrics != nil {
		h.metrics.UpdateStreamSubscribers(1)
	}

	h.logger.InfoContext(r.Context(), "alert stream connected", "remote_addr", r.RemoteAddr)

	go h.readPump(conn, sub)
	h.writePump(conn, sub)
}

// readPump discards inbound frames and detects client disconnects
func (h *AlertStreamHandler) readPump(conn *websocket.Conn, sub *monitoring.Subscriber) {
	defer func() {
		h.aggregator.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("alert stream read error", "error", err)
			}
			return
		}
	}
}

// writePump forwards alerts to the peer and keeps the connection alive
func (h *AlertStreamHandler) writePump(conn *websocket.Conn, sub *monitoring.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		if h.metrics != nil {
			h.metrics.UpdateStreamSubscribers(-1)
		}
	}()

	for {
		select {
		case alert, ok := <-sub.Alerts():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Subscription closed
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteJSON(alert); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
