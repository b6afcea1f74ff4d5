package interfaces

import (
	"context"

	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// PassageStorage persists the legal reference corpus
type PassageStorage interface {
	SavePassage(passage *models.Passage) error
	SavePassages(passages []*models.Passage) error
	GetPassage(id string) (*models.Passage, error)
	GetPassageByTitle(title string) (*models.Passage, error)
	ListPassages(topics []string, limit int) ([]*models.Passage, error)
	ListUnembedded(limit int) ([]*models.Passage, error)
	CountPassages() (int, error)
	GetStats() (*models.CorpusStats, error)
	DeletePassage(id string) error
	ClearAll() error
}

// SessionStorage persists dialogue sessions across restarts
type SessionStorage interface {
	SaveSession(session *models.Session) error
	GetSession(id string) (*models.Session, error)
	ListSessions(limit int) ([]*models.Session, error)
	DeleteSession(id string) error
}

// KeyValueStorage stores small settings such as resolved API keys
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

// StorageManager aggregates the storage interfaces behind one connection
type StorageManager interface {
	PassageStorage() PassageStorage
	SessionStorage() SessionStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
