package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// passageFile is the on-disk TOML shape of a corpus file. One file holds one
// or more passages under [[passages]] tables.
type passageFile struct {
	Passages []passageEntry `toml:"passages"`
}

type passageEntry struct {
	Title   string `toml:"title"`
	Content string `toml:"content"`
	Topic   string `toml:"topic"`
	Source  string `toml:"source"`
}

// LoadPassagesFromFiles loads corpus passages from TOML files in the given
// directory into storage. Existing passages are matched by title and updated
// in place so their embeddings survive a reload when the content is
// unchanged. A missing directory is not an error; the corpus may be seeded
// through the API instead.
func LoadPassagesFromFiles(storage interfaces.PassageStorage, corpusDir string, logger arbor.ILogger) error {
	if _, err := os.Stat(corpusDir); os.IsNotExist(err) {
		logger.Debug().Str("dir", corpusDir).Msg("Corpus directory does not exist, skipping")
		return nil
	}

	logger.Info().Str("dir", corpusDir).Msg("Loading corpus passages from files")

	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return fmt.Errorf("failed to read corpus directory: %w", err)
	}

	loadedCount := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}

		filePath := filepath.Join(corpusDir, entry.Name())

		tomlBytes, err := os.ReadFile(filePath)
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to read corpus file")
			continue
		}

		var file passageFile
		if err := toml.Unmarshal(tomlBytes, &file); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to parse corpus TOML")
			continue
		}

		for _, p := range file.Passages {
			if p.Title == "" || p.Content == "" {
				logger.Warn().Str("file", entry.Name()).Msg("Skipping passage without title or content")
				continue
			}

			passage := &models.Passage{
				Title:   p.Title,
				Content: p.Content,
				Topic:   p.Topic,
				Source:  p.Source,
			}

			if existing, err := storage.GetPassageByTitle(p.Title); err == nil && existing != nil {
				passage.ID = existing.ID
				passage.CreatedAt = existing.CreatedAt
				// Content changes invalidate the stored embedding
				if existing.Content == p.Content {
					passage.Embedding = existing.Embedding
					passage.EmbeddingModel = existing.EmbeddingModel
				}
			} else {
				passage.ID = common.NewPassageID()
			}

			if err := storage.SavePassage(passage); err != nil {
				logger.Warn().Err(err).Str("file", entry.Name()).Str("title", p.Title).Msg("Failed to save passage")
				continue
			}
			loadedCount++
		}
	}

	if loadedCount > 0 {
		logger.Info().Int("count", loadedCount).Msg("Corpus passages loaded from files")
	} else {
		logger.Debug().Msg("No corpus passages loaded from files")
	}

	return nil
}
