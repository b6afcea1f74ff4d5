package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.GetLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPassageStorageRoundTrip(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	passage := &models.Passage{
		ID:      "psg_1",
		Title:   "Notice Periods",
		Content: "An employer must give notice.",
		Topic:   "employmentDisputes",
	}
	require.NoError(t, storage.SavePassage(passage))
	assert.False(t, passage.CreatedAt.IsZero())

	got, err := storage.GetPassage("psg_1")
	require.NoError(t, err)
	assert.Equal(t, "Notice Periods", got.Title)

	byTitle, err := storage.GetPassageByTitle("Notice Periods")
	require.NoError(t, err)
	assert.Equal(t, "psg_1", byTitle.ID)
}

func TestPassageStorageRejectsMissingFields(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	assert.Error(t, storage.SavePassage(&models.Passage{Title: "no id"}))
	assert.Error(t, storage.SavePassage(&models.Passage{ID: "psg_x"}))
}

func TestPassageStorageTopicFilter(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	require.NoError(t, storage.SavePassages([]*models.Passage{
		{ID: "psg_1", Title: "A", Content: "a", Topic: "landlordTenant"},
		{ID: "psg_2", Title: "B", Content: "b", Topic: "taxation"},
		{ID: "psg_3", Title: "C", Content: "c", Topic: "landlordTenant"},
	}))

	filtered, err := storage.ListPassages([]string{"landlordTenant"}, 0)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	all, err := storage.ListPassages(nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPassageStorageListUnembedded(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	require.NoError(t, storage.SavePassages([]*models.Passage{
		{ID: "psg_1", Title: "A", Content: "a"},
		{ID: "psg_2", Title: "B", Content: "b", Embedding: []float32{1, 0}, EmbeddingModel: "gemini-embedding-001"},
	}))

	unembedded, err := storage.ListUnembedded(10)
	require.NoError(t, err)
	require.Len(t, unembedded, 1)
	assert.Equal(t, "psg_1", unembedded[0].ID)
}

func TestPassageStorageStats(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	require.NoError(t, storage.SavePassages([]*models.Passage{
		{ID: "psg_1", Title: "A", Content: "a", Topic: "taxation", Embedding: []float32{1}, EmbeddingModel: "m"},
		{ID: "psg_2", Title: "B", Content: "b", Topic: "taxation"},
	}))

	stats, err := storage.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPassages)
	assert.Equal(t, 1, stats.EmbeddedCount)
	assert.Equal(t, 2, stats.PassagesByTopic["taxation"])
}

func TestPassageStorageDeleteIsIdempotent(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())

	require.NoError(t, storage.SavePassage(&models.Passage{ID: "psg_1", Title: "A", Content: "a"}))
	require.NoError(t, storage.DeletePassage("psg_1"))
	require.NoError(t, storage.DeletePassage("psg_1"))

	_, err := storage.GetPassage("psg_1")
	assert.Error(t, err)
}

func TestSessionStorageRoundTrip(t *testing.T) {
	storage := NewSessionStorage(newTestDB(t), common.GetLogger())

	session := &models.Session{
		ID:        "ses_1",
		State:     models.SessionInDialogue,
		UserQuery: "my landlord kept my deposit",
		History: []models.Turn{
			{Prompt: "q1", Reply: "a1"},
		},
		PendingQuestion: "q2",
		RankedTopics:    []string{"landlordTenant", "taxation"},
	}
	require.NoError(t, storage.SaveSession(session))

	got, err := storage.GetSession("ses_1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionInDialogue, got.State)
	assert.Equal(t, session.History, got.History)
	assert.Equal(t, "q2", got.PendingQuestion)
	assert.Equal(t, session.RankedTopics, got.RankedTopics)

	require.NoError(t, storage.DeleteSession("ses_1"))
	_, err = storage.GetSession("ses_1")
	assert.Error(t, err)
}

func TestKVStorageRoundTrip(t *testing.T) {
	storage := NewKVStorage(newTestDB(t), common.GetLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "gemini_api_key", "secret"))

	value, err := storage.Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "secret", value)

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gemini_api_key": "secret"}, all)

	require.NoError(t, storage.Delete(ctx, "gemini_api_key"))
	_, err = storage.Get(ctx, "gemini_api_key")
	assert.Error(t, err)
}

func TestLoadPassagesFromFiles(t *testing.T) {
	db := newTestDB(t)
	storage := NewPassageStorage(db, common.GetLogger())

	corpusDir := t.TempDir()
	content := `[[passages]]
title = "Notice Periods"
content = "An employer must give notice."
topic = "employmentDisputes"
source = "CLIC"

[[passages]]
title = "Security Deposits"
content = "A landlord holds the deposit in trust."
topic = "landlordTenant"
source = "CLIC"
`
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "employment.toml"), []byte(content), 0644))

	require.NoError(t, LoadPassagesFromFiles(storage, corpusDir, common.GetLogger()))

	count, err := storage.CountPassages()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Reload keeps embeddings when content is unchanged
	passage, err := storage.GetPassageByTitle("Notice Periods")
	require.NoError(t, err)
	passage.Embedding = []float32{1, 2, 3}
	passage.EmbeddingModel = "gemini-embedding-001"
	require.NoError(t, storage.SavePassage(passage))

	require.NoError(t, LoadPassagesFromFiles(storage, corpusDir, common.GetLogger()))

	count, err = storage.CountPassages()
	require.NoError(t, err)
	assert.Equal(t, 2, count, "reload must not duplicate passages")

	reloaded, err := storage.GetPassageByTitle("Notice Periods")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, reloaded.Embedding)
}

func TestLoadPassagesFromMissingDirIsNoop(t *testing.T) {
	storage := NewPassageStorage(newTestDB(t), common.GetLogger())
	require.NoError(t, LoadPassagesFromFiles(storage, filepath.Join(t.TempDir(), "missing"), common.GetLogger()))
}
