package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// Scorer implements interfaces.SimilarityScorer using cosine similarity over
// embeddings from a single backend. Both texts of a comparison are embedded
// with the same model, so scores are comparable across calls.
type Scorer struct {
	embedder interfaces.LLMService
	logger   arbor.ILogger
}

// NewScorer creates a similarity scorer backed by the given embedding provider
func NewScorer(embedder interfaces.LLMService, logger arbor.ILogger) *Scorer {
	return &Scorer{
		embedder: embedder,
		logger:   logger,
	}
}

// Score embeds both texts and returns their cosine similarity clamped to
// [0, 1]. Either embedding failing fails the comparison; no score is guessed.
func (s *Scorer) Score(ctx context.Context, a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0, fmt.Errorf("cannot score empty text")
	}

	embeddingA, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("failed to embed first text: %w", err)
	}

	embeddingB, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("failed to embed second text: %w", err)
	}

	score, err := Cosine(embeddingA, embeddingB)
	if err != nil {
		return 0, err
	}

	s.logger.Debug().
		Float64("score", score).
		Int("dim", len(embeddingA)).
		Msg("Computed similarity score")

	return score, nil
}

// Cosine computes the cosine similarity of two vectors, clamped to [0, 1].
// Negative cosines are clamped to 0: for the answer comparisons served here,
// anti-correlation and orthogonality both mean "not converged".
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("cannot compare empty vectors")
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("cannot compare zero-magnitude vectors")
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score, nil
}
