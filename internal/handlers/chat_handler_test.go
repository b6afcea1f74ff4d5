package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/services/sessions"
)

// echoController answers every turn with a fixed question
type echoController struct{}

func (c *echoController) Advance(ctx context.Context, session *models.Session, userInput string) (*interfaces.AdvanceResult, error) {
	session.State = models.SessionInDialogue
	session.UserQuery = userInput
	return &interfaces.AdvanceResult{Message: "what happened next?"}, nil
}

// memoryStorage is an in-memory SessionStorage
type memoryStorage struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{sessions: make(map[string]models.Session)}
}

func (s *memoryStorage) SaveSession(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *memoryStorage) GetSession(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return &session, nil
}

func (s *memoryStorage) ListSessions(limit int) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Session
	for id := range s.sessions {
		session := s.sessions[id]
		result = append(result, &session)
	}
	return result, nil
}

func (s *memoryStorage) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// noopLLM satisfies interfaces.LLMService for handler construction
type noopLLM struct{}

func (n *noopLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", nil
}
func (n *noopLLM) Embed(ctx context.Context, text string) ([]float32, error) { return nil, nil }
func (n *noopLLM) HealthCheck(ctx context.Context) error                     { return nil }
func (n *noopLLM) Close() error                                              { return nil }

func newTestChatHandler() (*ChatHandler, *sessions.Manager) {
	manager := sessions.NewManager(&echoController{}, newMemoryStorage(), &common.SessionsConfig{IdleExpiry: "30m"}, common.GetLogger())
	return NewChatHandler(manager, &noopLLM{}, nil, common.GetLogger()), manager
}

func TestCreateSessionHandler(t *testing.T) {
	handler, _ := newTestChatHandler()

	rec := httptest.NewRecorder()
	handler.CreateSessionHandler(rec, httptest.NewRequest("POST", "/api/sessions", nil))

	require.Equal(t, http.StatusCreated, rec.Code)

	var session models.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionAwaitingFirstInput, session.State)
}

func TestCreateSessionHandlerRejectsGet(t *testing.T) {
	handler, _ := newTestChatHandler()

	rec := httptest.NewRecorder()
	handler.CreateSessionHandler(rec, httptest.NewRequest("GET", "/api/sessions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMessageHandlerRunsTurn(t *testing.T) {
	handler, manager := newTestChatHandler()
	session, err := manager.CreateSession()
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"message": "my landlord kept my deposit"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sessions/"+session.ID+"/messages", bytes.NewReader(body))
	handler.MessageHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "what happened next?", resp.Message)
	assert.False(t, resp.Converged)
	assert.Equal(t, models.SessionInDialogue, resp.State)
}

func TestMessageHandlerRejectsEmptyMessage(t *testing.T) {
	handler, manager := newTestChatHandler()
	session, err := manager.CreateSession()
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"message": "  "})
	rec := httptest.NewRecorder()
	handler.MessageHandler(rec, httptest.NewRequest("POST", "/api/sessions/"+session.ID+"/messages", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandlerUnknownSession(t *testing.T) {
	handler, _ := newTestChatHandler()

	body, _ := json.Marshal(map[string]string{"message": "hello"})
	rec := httptest.NewRecorder()
	handler.MessageHandler(rec, httptest.NewRequest("POST", "/api/sessions/ses_missing/messages", bytes.NewReader(body)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAndDeleteSessionHandlers(t *testing.T) {
	handler, manager := newTestChatHandler()
	session, err := manager.CreateSession()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.GetSessionHandler(rec, httptest.NewRequest("GET", "/api/sessions/"+session.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.DeleteSessionHandler(rec, httptest.NewRequest("DELETE", "/api/sessions/"+session.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.GetSessionHandler(rec, httptest.NewRequest("GET", "/api/sessions/"+session.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionIDFromPath(t *testing.T) {
	assert.Equal(t, "ses_1", sessionIDFromPath("/api/sessions/ses_1"))
	assert.Equal(t, "ses_1", sessionIDFromPath("/api/sessions/ses_1/messages"))
	assert.Equal(t, "", sessionIDFromPath("/api/other"))
}
