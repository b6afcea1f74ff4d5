package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// PassageStorage implements the PassageStorage interface for Badger
type PassageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPassageStorage creates a new PassageStorage instance
func NewPassageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PassageStorage {
	return &PassageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *PassageStorage) SavePassage(passage *models.Passage) error {
	if passage.ID == "" {
		return fmt.Errorf("passage ID is required")
	}
	if passage.Title == "" {
		return fmt.Errorf("passage title is required")
	}

	now := time.Now()
	if passage.CreatedAt.IsZero() {
		passage.CreatedAt = now
	}
	passage.UpdatedAt = now

	if err := s.db.Store().Upsert(passage.ID, passage); err != nil {
		return fmt.Errorf("failed to save passage: %w", err)
	}
	return nil
}

func (s *PassageStorage) SavePassages(passages []*models.Passage) error {
	for _, passage := range passages {
		if err := s.SavePassage(passage); err != nil {
			return err
		}
	}
	return nil
}

func (s *PassageStorage) GetPassage(id string) (*models.Passage, error) {
	var passage models.Passage
	if err := s.db.Store().Get(id, &passage); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("passage not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get passage: %w", err)
	}
	return &passage, nil
}

func (s *PassageStorage) GetPassageByTitle(title string) (*models.Passage, error) {
	var passages []models.Passage
	err := s.db.Store().Find(&passages, badgerhold.Where("Title").Eq(title))
	if err != nil {
		return nil, fmt.Errorf("failed to find passage: %w", err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("passage not found for title: %s", title)
	}
	return &passages[0], nil
}

func (s *PassageStorage) ListPassages(topics []string, limit int) ([]*models.Passage, error) {
	query := badgerhold.Where("ID").Ne("") // Select all

	if len(topics) > 0 {
		keys := make([]interface{}, len(topics))
		for i, topic := range topics {
			keys[i] = topic
		}
		query = badgerhold.Where("Topic").In(keys...)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var passages []models.Passage
	if err := s.db.Store().Find(&passages, query); err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}

	result := make([]*models.Passage, len(passages))
	for i := range passages {
		result[i] = &passages[i]
	}
	return result, nil
}

// ListUnembedded returns passages that do not yet carry an embedding, for
// the background embedding refresh.
func (s *PassageStorage) ListUnembedded(limit int) ([]*models.Passage, error) {
	query := badgerhold.Where("EmbeddingModel").Eq("")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var passages []models.Passage
	if err := s.db.Store().Find(&passages, query); err != nil {
		return nil, fmt.Errorf("failed to list unembedded passages: %w", err)
	}

	result := make([]*models.Passage, len(passages))
	for i := range passages {
		result[i] = &passages[i]
	}
	return result, nil
}

func (s *PassageStorage) CountPassages() (int, error) {
	count, err := s.db.Store().Count(&models.Passage{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count passages: %w", err)
	}
	return int(count), nil
}

func (s *PassageStorage) GetStats() (*models.CorpusStats, error) {
	var passages []models.Passage
	if err := s.db.Store().Find(&passages, nil); err != nil {
		return nil, fmt.Errorf("failed to load passages for stats: %w", err)
	}

	stats := &models.CorpusStats{
		TotalPassages:   len(passages),
		PassagesByTopic: make(map[string]int),
		LastUpdated:     time.Now(),
	}
	for _, passage := range passages {
		if passage.Topic != "" {
			stats.PassagesByTopic[passage.Topic]++
		}
		if len(passage.Embedding) > 0 {
			stats.EmbeddedCount++
		}
	}
	return stats, nil
}

func (s *PassageStorage) DeletePassage(id string) error {
	if err := s.db.Store().Delete(id, &models.Passage{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete passage: %w", err)
	}
	return nil
}

func (s *PassageStorage) ClearAll() error {
	return s.db.Store().DeleteMatching(&models.Passage{}, nil)
}
