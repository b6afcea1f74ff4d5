package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// Manager owns session lifecycle: creation, lookup, persistence, and idle
// eviction. It serializes Advance per session with a per-session lock, which
// is the concurrency guarantee the dialogue controller relies on. Different
// sessions advance in parallel.
type Manager struct {
	controller interfaces.DialogueController
	storage    interfaces.SessionStorage
	idleExpiry time.Duration
	logger     arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a session manager
func NewManager(controller interfaces.DialogueController, storage interfaces.SessionStorage, config *common.SessionsConfig, logger arbor.ILogger) *Manager {
	idleExpiry, err := time.ParseDuration(config.IdleExpiry)
	if err != nil || idleExpiry <= 0 {
		idleExpiry = 30 * time.Minute
	}

	return &Manager{
		controller: controller,
		storage:    storage,
		idleExpiry: idleExpiry,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// CreateSession creates and persists a fresh session awaiting its first input
func (m *Manager) CreateSession() (*models.Session, error) {
	session := &models.Session{
		ID:    common.NewSessionID(),
		State: models.SessionAwaitingFirstInput,
	}

	if err := m.storage.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	m.logger.Info().Str("session_id", session.ID).Msg("Session created")
	return session, nil
}

// GetSession returns the persisted session by ID
func (m *Manager) GetSession(id string) (*models.Session, error) {
	return m.storage.GetSession(id)
}

// ListSessions returns persisted sessions
func (m *Manager) ListSessions(limit int) ([]*models.Session, error) {
	return m.storage.ListSessions(limit)
}

// DeleteSession removes a session and its lock
func (m *Manager) DeleteSession(id string) error {
	if err := m.storage.DeleteSession(id); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()

	m.logger.Info().Str("session_id", id).Msg("Session deleted")
	return nil
}

// Advance runs one dialogue turn for the session, holding its lock for the
// whole turn. The session is persisted after the turn, and also after a
// failed turn: a completed history append must survive so the retry is
// idempotent.
func (m *Manager) Advance(ctx context.Context, sessionID, userInput string) (*interfaces.AdvanceResult, error) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.storage.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	result, advanceErr := m.controller.Advance(ctx, session, userInput)

	if saveErr := m.storage.SaveSession(session); saveErr != nil {
		m.logger.Error().Err(saveErr).Str("session_id", sessionID).Msg("Failed to persist session after turn")
		if advanceErr == nil {
			return nil, fmt.Errorf("failed to persist session: %w", saveErr)
		}
	}

	if advanceErr != nil {
		return nil, advanceErr
	}
	return result, nil
}

// EvictIdle deletes sessions whose last activity is older than the idle
// expiry. Returns the number of sessions removed.
func (m *Manager) EvictIdle() (int, error) {
	sessions, err := m.storage.ListSessions(0)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-m.idleExpiry)
	evicted := 0
	for _, session := range sessions {
		if session.UpdatedAt.Before(cutoff) {
			if err := m.DeleteSession(session.ID); err != nil {
				m.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to evict idle session")
				continue
			}
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Info().Int("count", evicted).Msg("Idle sessions evicted")
	}
	return evicted, nil
}

func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}
