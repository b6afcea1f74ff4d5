package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/services/processing"
)

// CorpusHandler serves corpus management endpoints
type CorpusHandler struct {
	storage   interfaces.PassageStorage
	retrieval interfaces.RetrievalService
	scheduler *processing.Scheduler
	logger    arbor.ILogger
}

// NewCorpusHandler creates a corpus handler
func NewCorpusHandler(storage interfaces.PassageStorage, retrieval interfaces.RetrievalService, scheduler *processing.Scheduler, logger arbor.ILogger) *CorpusHandler {
	return &CorpusHandler{
		storage:   storage,
		retrieval: retrieval,
		scheduler: scheduler,
		logger:    logger,
	}
}

// passageRequest is the body of POST /api/corpus/passages
type passageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Topic   string `json:"topic"`
	Source  string `json:"source"`
}

// StatsHandler handles GET /api/corpus/stats
func (h *CorpusHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.storage.GetStats()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load corpus stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// AddPassageHandler handles POST /api/corpus/passages. The passage is stored
// without an embedding; the background refresh embeds it.
func (h *CorpusHandler) AddPassageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req passageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		WriteError(w, http.StatusBadRequest, "title and content are required")
		return
	}

	passage := &models.Passage{
		ID:      common.NewPassageID(),
		Title:   req.Title,
		Content: req.Content,
		Topic:   req.Topic,
		Source:  req.Source,
	}
	if err := h.storage.SavePassage(passage); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save passage")
		WriteError(w, http.StatusInternalServerError, "failed to save passage")
		return
	}

	WriteJSON(w, http.StatusCreated, passage)
}

// SearchHandler handles GET /api/corpus/search?q=...&top_k=...
func (h *CorpusHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		WriteError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	topK := 5
	results, err := h.retrieval.Search(r.Context(), query, topK, nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "search failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// RefreshHandler handles POST /api/corpus/refresh: triggers an immediate
// embedding backfill run.
func (h *CorpusHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	h.scheduler.RunNow()
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "started",
		"message": "embedding refresh triggered",
	})
}
