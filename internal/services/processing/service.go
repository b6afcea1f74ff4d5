package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// Stats summarizes one embedding refresh run
type Stats struct {
	Embedded int
	Failed   int
	Duration time.Duration
}

// Service embeds corpus passages that do not yet carry an embedding. Corpus
// files load without embeddings; this service backfills them so retrieval
// moves from keyword matching to semantic search as the corpus warms up.
type Service struct {
	storage    interfaces.PassageStorage
	llmService interfaces.LLMService
	embedModel string
	limit      int
	logger     arbor.ILogger
}

// NewService creates a processing service
func NewService(storage interfaces.PassageStorage, llmService interfaces.LLMService, config *common.Config, logger arbor.ILogger) *Service {
	limit := config.Processing.Limit
	if limit <= 0 {
		limit = 50
	}

	return &Service{
		storage:    storage,
		llmService: llmService,
		embedModel: config.Gemini.EmbedModel,
		limit:      limit,
		logger:     logger,
	}
}

// EmbedPending embeds up to the configured limit of unembedded passages.
// Individual failures are logged and skipped; the run continues so one bad
// passage cannot stall the backlog.
func (s *Service) EmbedPending(ctx context.Context) (*Stats, error) {
	start := time.Now()

	passages, err := s.storage.ListUnembedded(s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unembedded passages: %w", err)
	}

	stats := &Stats{}
	for _, passage := range passages {
		if ctx.Err() != nil {
			break
		}

		embedding, err := s.llmService.Embed(ctx, passage.Title+"\n"+passage.Content)
		if err != nil {
			stats.Failed++
			s.logger.Warn().Err(err).Str("passage_id", passage.ID).Msg("Failed to embed passage")
			continue
		}

		passage.Embedding = embedding
		passage.EmbeddingModel = s.embedModel
		if err := s.storage.SavePassage(passage); err != nil {
			stats.Failed++
			s.logger.Warn().Err(err).Str("passage_id", passage.ID).Msg("Failed to save embedded passage")
			continue
		}
		stats.Embedded++
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
