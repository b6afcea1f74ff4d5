package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for local development
		return true
	},
}

// TurnDiagnostics is the payload streamed to websocket observers after each
// dialogue turn: the convergence internals a UI shows alongside the chat.
type TurnDiagnostics struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	Message    string                 `json:"message"`
	Converged  bool                   `json:"converged"`
	Evaluation *models.TurnEvaluation `json:"evaluation,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// WebSocketHandler streams per-turn diagnostics to connected observers
type WebSocketHandler struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	throttler *rate.Limiter
	logger    arbor.ILogger
}

// NewWebSocketHandler creates a websocket diagnostics handler
func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		clients: make(map[*websocket.Conn]bool),
		// Turn diagnostics are low-volume; the throttle guards against a
		// client-driven broadcast storm, not normal traffic.
		throttler: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		logger:    logger,
	}
}

// HandleWebSocket handles GET /ws: upgrades the connection and registers the
// client for diagnostics broadcasts.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Debug().Int("clients", clientCount).Msg("WebSocket client connected")

	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		h.clientsMu.Unlock()
		conn.Close()
		h.logger.Debug().Msg("WebSocket client disconnected")
	}()

	// Read loop: diagnostics are one-way, but reading detects disconnects
	// and answers control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// BroadcastTurn pushes a turn's diagnostics to all connected clients
func (h *WebSocketHandler) BroadcastTurn(sessionID string, result *interfaces.AdvanceResult) {
	if !h.throttler.Allow() {
		h.logger.Debug().Msg("Diagnostics broadcast throttled")
		return
	}

	payload := TurnDiagnostics{
		Type:       "turn",
		SessionID:  sessionID,
		Message:    result.Message,
		Converged:  result.Converged,
		Evaluation: result.Evaluation,
		Timestamp:  time.Now(),
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to write to WebSocket client, dropping")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected observers
func (h *WebSocketHandler) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}
