package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (turn diagnostics stream)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Sessions and dialogue
	mux.HandleFunc("/api/sessions", s.handleSessionsRoute)
	mux.HandleFunc("/api/sessions/", s.handleSessionRoutes)

	// API routes - Topics
	mux.HandleFunc("/api/topics", s.app.TopicsHandler.ListTopicsHandler)
	mux.HandleFunc("/api/topics/classify", s.app.TopicsHandler.ClassifyTopicsHandler)

	// API routes - Corpus
	mux.HandleFunc("/api/corpus/stats", s.app.CorpusHandler.StatsHandler)
	mux.HandleFunc("/api/corpus/passages", s.app.CorpusHandler.AddPassageHandler)
	mux.HandleFunc("/api/corpus/search", s.app.CorpusHandler.SearchHandler)
	mux.HandleFunc("/api/corpus/refresh", s.app.CorpusHandler.RefreshHandler)

	// API routes - Chat backend health
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.StatusHandler.NotFoundHandler)

	return mux
}

// handleSessionsRoute routes /api/sessions requests (list and create)
func (s *Server) handleSessionsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.ChatHandler.ListSessionsHandler(w, r)
	case "POST":
		s.app.ChatHandler.CreateSessionHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSessionRoutes routes /api/sessions/{id} and /api/sessions/{id}/messages
func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// POST /api/sessions/{id}/messages
	if strings.HasSuffix(path, "/messages") {
		s.app.ChatHandler.MessageHandler(w, r)
		return
	}

	switch r.Method {
	case "GET":
		s.app.ChatHandler.GetSessionHandler(w, r)
	case "DELETE":
		s.app.ChatHandler.DeleteSessionHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
