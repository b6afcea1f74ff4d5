package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/services/sessions"
)

// ChatHandler serves session lifecycle and dialogue endpoints
type ChatHandler struct {
	manager     *sessions.Manager
	llmService  interfaces.LLMService
	diagnostics DiagnosticsBroadcaster
	logger      arbor.ILogger
}

// DiagnosticsBroadcaster pushes per-turn diagnostics to observers; satisfied
// by the websocket handler. Nil disables broadcasting.
type DiagnosticsBroadcaster interface {
	BroadcastTurn(sessionID string, result *interfaces.AdvanceResult)
}

// NewChatHandler creates a chat handler
func NewChatHandler(manager *sessions.Manager, llmService interfaces.LLMService, diagnostics DiagnosticsBroadcaster, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		manager:     manager,
		llmService:  llmService,
		diagnostics: diagnostics,
		logger:      logger,
	}
}

// messageRequest is the body of POST /api/sessions/{id}/messages
type messageRequest struct {
	Message string `json:"message"`
}

// messageResponse is the dialogue turn result returned to the client
type messageResponse struct {
	SessionID  string                 `json:"session_id"`
	Message    string                 `json:"message"`
	Converged  bool                   `json:"converged"`
	State      models.SessionState    `json:"state"`
	Evaluation *models.TurnEvaluation `json:"evaluation,omitempty"`
}

// CreateSessionHandler handles POST /api/sessions
func (h *ChatHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	session, err := h.manager.CreateSession()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

// ListSessionsHandler handles GET /api/sessions
func (h *ChatHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	list, err := h.manager.ListSessions(100)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": list,
		"count":    len(list),
	})
}

// GetSessionHandler handles GET /api/sessions/{id}
func (h *ChatHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.GetSession(sessionIDFromPath(r.URL.Path))
	if err != nil {
		WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// DeleteSessionHandler handles DELETE /api/sessions/{id}
func (h *ChatHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromPath(r.URL.Path)
	if _, err := h.manager.GetSession(id); err != nil {
		WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := h.manager.DeleteSession(id); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	WriteSuccess(w, "session deleted")
}

// MessageHandler handles POST /api/sessions/{id}/messages: one dialogue turn
func (h *ChatHandler) MessageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	sessionID := sessionIDFromPath(r.URL.Path)
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.manager.Advance(r.Context(), sessionID, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Dialogue turn failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.diagnostics != nil {
		h.diagnostics.BroadcastTurn(sessionID, result)
	}

	session, err := h.manager.GetSession(sessionID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load session after turn")
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{
		SessionID:  sessionID,
		Message:    result.Message,
		Converged:  result.Converged,
		State:      session.State,
		Evaluation: result.Evaluation,
	})
}

// HealthHandler handles GET /api/chat/health: verifies the LLM backend
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if err := h.llmService.HealthCheck(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	WriteSuccess(w, "llm backend reachable")
}

// sessionIDFromPath extracts the session ID from /api/sessions/{id}[/...]
func sessionIDFromPath(path string) string {
	const prefix = "/api/sessions/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}
