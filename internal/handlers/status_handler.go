package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/services/sessions"
)

// StatusHandler serves application status and version endpoints
type StatusHandler struct {
	config  *common.Config
	storage interfaces.PassageStorage
	manager *sessions.Manager
	logger  arbor.ILogger
}

// NewStatusHandler creates a status handler
func NewStatusHandler(config *common.Config, storage interfaces.PassageStorage, manager *sessions.Manager, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:  config,
		storage: storage,
		manager: manager,
		logger:  logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"version":     common.GetVersion(),
		"environment": h.config.Environment,
		"provider":    h.config.LLM.DefaultProvider,
		"dialogue": map[string]interface{}{
			"similarity_threshold":  h.config.Dialogue.SimilarityThreshold,
			"terminate_on_converge": h.config.Dialogue.TerminateOnConverge,
		},
	}

	if stats, err := h.storage.GetStats(); err == nil {
		status["corpus"] = stats
	}
	if list, err := h.manager.ListSessions(0); err == nil {
		status["session_count"] = len(list)
	}

	WriteJSON(w, http.StatusOK, status)
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// NotFoundHandler handles unmatched API routes
func (h *StatusHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "not found")
}
