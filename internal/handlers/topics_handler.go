package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// TopicsHandler serves the topic taxonomy
type TopicsHandler struct {
	topics interfaces.TopicService
	logger arbor.ILogger
}

// NewTopicsHandler creates a topics handler
func NewTopicsHandler(topics interfaces.TopicService, logger arbor.ILogger) *TopicsHandler {
	return &TopicsHandler{
		topics: topics,
		logger: logger,
	}
}

// ListTopicsHandler handles GET /api/topics
func (h *TopicsHandler) ListTopicsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	list := h.topics.Topics()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"topics": list,
		"count":  len(list),
	})
}

type classifyRequest struct {
	Query string `json:"query"`
}

// ClassifyTopicsHandler handles POST /api/topics/classify. It ranks the full
// taxonomy by relevance to the query.
func (h *TopicsHandler) ClassifyTopicsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query is required")
		return
	}

	ranked, err := h.topics.Classify(r.Context(), query)
	if err != nil {
		h.logger.Error().Err(err).Msg("Topic classification failed")
		WriteError(w, http.StatusInternalServerError, "Topic classification failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":  query,
		"ranked": ranked,
	})
}
