package interfaces

import (
	"context"
)

// SimilarityScorer measures the semantic closeness of two texts.
//
// Scores are cosine similarity over embeddings, clamped to [0, 1]. The
// backend and normalization are held constant for the process lifetime so
// threshold comparisons remain meaningful across calls within a session.
type SimilarityScorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}
