package sessions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// memorySessionStorage is an in-memory SessionStorage for tests
type memorySessionStorage struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemoryStorage() *memorySessionStorage {
	return &memorySessionStorage{sessions: make(map[string]models.Session)}
}

func (s *memorySessionStorage) SaveSession(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()
	s.sessions[session.ID] = *session
	return nil
}

func (s *memorySessionStorage) GetSession(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return &session, nil
}

func (s *memorySessionStorage) ListSessions(limit int) ([]*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*models.Session
	for id := range s.sessions {
		session := s.sessions[id]
		result = append(result, &session)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *memorySessionStorage) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// countingController counts concurrent Advance calls per session
type countingController struct {
	mu          sync.Mutex
	inFlight    map[string]int
	maxInFlight int
	err         error
}

func newCountingController() *countingController {
	return &countingController{inFlight: make(map[string]int)}
}

func (c *countingController) Advance(ctx context.Context, session *models.Session, userInput string) (*interfaces.AdvanceResult, error) {
	c.mu.Lock()
	c.inFlight[session.ID]++
	if c.inFlight[session.ID] > c.maxInFlight {
		c.maxInFlight = c.inFlight[session.ID]
	}
	c.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.inFlight[session.ID]--
	c.mu.Unlock()

	if c.err != nil {
		session.History = append(session.History, models.Turn{Prompt: "q", Reply: userInput})
		return nil, c.err
	}

	session.State = models.SessionInDialogue
	return &interfaces.AdvanceResult{Message: "next question"}, nil
}

func newTestManager(controller interfaces.DialogueController, storage interfaces.SessionStorage) *Manager {
	return NewManager(controller, storage, &common.SessionsConfig{IdleExpiry: "30m"}, common.GetLogger())
}

func TestCreateAndGetSession(t *testing.T) {
	manager := newTestManager(newCountingController(), newMemoryStorage())

	session, err := manager.CreateSession()
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionAwaitingFirstInput, session.State)

	got, err := manager.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestAdvancePersistsSession(t *testing.T) {
	storage := newMemoryStorage()
	manager := newTestManager(newCountingController(), storage)

	session, err := manager.CreateSession()
	require.NoError(t, err)

	result, err := manager.Advance(context.Background(), session.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "next question", result.Message)

	persisted, err := storage.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInDialogue, persisted.State)
}

func TestAdvanceSerializesPerSession(t *testing.T) {
	controller := newCountingController()
	manager := newTestManager(controller, newMemoryStorage())

	session, err := manager.CreateSession()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = manager.Advance(context.Background(), session.ID, "input")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, controller.maxInFlight, "turns for one session must not overlap")
}

func TestAdvancePersistsMutationsOnFailure(t *testing.T) {
	controller := newCountingController()
	controller.err = errors.New("generation failed")
	storage := newMemoryStorage()
	manager := newTestManager(controller, storage)

	session, err := manager.CreateSession()
	require.NoError(t, err)

	_, err = manager.Advance(context.Background(), session.ID, "reply")
	require.Error(t, err)

	persisted, err := storage.GetSession(session.ID)
	require.NoError(t, err)
	require.Len(t, persisted.History, 1, "the appended turn must survive a failed turn")
}

func TestAdvanceUnknownSession(t *testing.T) {
	manager := newTestManager(newCountingController(), newMemoryStorage())

	_, err := manager.Advance(context.Background(), "ses_missing", "hello")
	assert.Error(t, err)
}

func TestEvictIdle(t *testing.T) {
	storage := newMemoryStorage()
	manager := NewManager(newCountingController(), storage, &common.SessionsConfig{IdleExpiry: "1ms"}, common.GetLogger())

	session, err := manager.CreateSession()
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	evicted, err := manager.EvictIdle()
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, err = manager.GetSession(session.ID)
	assert.Error(t, err)
}
