package interfaces

import (
	"context"

	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// RetrievalService searches the legal passage corpus and renders results
// into the fixed sources-text format consumed by the answer prompt.
type RetrievalService interface {
	// Search returns up to topK passages ranked by relevance to the query.
	// An empty or whitespace query returns no results and no error.
	// topics, when non-empty, restricts candidates to those taxonomy keys.
	Search(ctx context.Context, query string, topK int, topics []string) ([]models.SearchResult, error)

	// SearchSources runs Search and serializes the results into the
	// delimiter format consumed verbatim by the answer prompt builder.
	SearchSources(ctx context.Context, query string, topK int, topics []string) (string, error)
}
