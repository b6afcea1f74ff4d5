package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/services/similarity"
)

// candidateLimit caps how many stored passages are scored per search
const candidateLimit = 1000

// Service implements interfaces.RetrievalService over the passage store.
// Queries are embedded and ranked against stored passage embeddings by
// cosine similarity; passages without embeddings fall back to keyword
// matching so a cold corpus still returns results.
type Service struct {
	storage       interfaces.PassageStorage
	llmService    interfaces.LLMService
	minSimilarity float64
	logger        arbor.ILogger
}

// NewService creates a retrieval service
func NewService(storage interfaces.PassageStorage, llmService interfaces.LLMService, minSimilarity float64, logger arbor.ILogger) *Service {
	return &Service{
		storage:       storage,
		llmService:    llmService,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Search returns up to topK passages ranked by relevance to the query.
// An empty or whitespace query returns no results and no error. topics,
// when non-empty, restricts candidates to those taxonomy keys.
func (s *Service) Search(ctx context.Context, query string, topK int, topics []string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}

	passages, err := s.storage.ListPassages(topics, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	if len(passages) == 0 {
		return nil, nil
	}

	queryEmbedding, embedErr := s.llmService.Embed(ctx, query)
	if embedErr != nil {
		s.logger.Warn().Err(embedErr).Msg("Query embedding failed, using keyword matching only")
	}

	results := make([]models.SearchResult, 0, len(passages))
	for _, passage := range passages {
		score := s.scorePassage(query, queryEmbedding, passage)
		if score < s.minSimilarity || score <= 0 {
			continue
		}
		results = append(results, models.SearchResult{
			Passage: passage,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	s.logger.Debug().
		Str("query", query).
		Int("candidates", len(passages)).
		Int("results", len(results)).
		Msg("Passage search complete")

	return results, nil
}

// scorePassage prefers embedding similarity and falls back to keyword
// overlap when either side has no embedding.
func (s *Service) scorePassage(query string, queryEmbedding []float32, passage *models.Passage) float64 {
	if len(queryEmbedding) > 0 && len(passage.Embedding) == len(queryEmbedding) {
		score, err := similarity.Cosine(queryEmbedding, passage.Embedding)
		if err == nil {
			return score
		}
	}
	return keywordScore(query, passage)
}

// keywordScore is the fraction of query terms present in the passage title
// or content, discounted so keyword matches never outrank embedding matches.
func keywordScore(query string, passage *models.Passage) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}

	haystack := strings.ToLower(passage.Title + " " + passage.Content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}

	return 0.5 * float64(matched) / float64(len(terms))
}

// SearchSources runs Search and serializes the results into the delimiter
// format consumed verbatim by the answer prompt. No results yields an empty
// string; the prompt builder renders the explicit no-sources marker.
func (s *Service) SearchSources(ctx context.Context, query string, topK int, topics []string) (string, error) {
	results, err := s.Search(ctx, query, topK, topics)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, result := range results {
		sb.WriteString("\n{title: '")
		sb.WriteString(StripTitleOrdinal(result.Passage.Title))
		sb.WriteString("', content: '")
		sb.WriteString(result.Passage.Content)
		sb.WriteString("'},\n")
	}

	return sb.String(), nil
}

// StripTitleOrdinal removes a leading list ordinal such as "3. " from a
// passage title. Only a ". " appearing within the first five characters is
// treated as an ordinal separator; later dots are part of the title.
func StripTitleOrdinal(title string) string {
	limit := 5
	if len(title) < limit {
		limit = len(title)
	}
	if idx := strings.Index(title[:limit], ". "); idx >= 0 {
		return title[idx+2:]
	}
	return title
}
