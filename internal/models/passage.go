package models

import (
	"time"
)

// Passage is one retrievable unit of the legal reference corpus:
// a titled excerpt of community legal information tagged with a topic key
// from the taxonomy.
type Passage struct {
	ID      string `json:"id"` // psg_<uuid>
	Title   string `json:"title"`
	Content string `json:"content"`

	// Topic is the taxonomy key this passage belongs to (e.g. "landlordTenant").
	Topic string `json:"topic"`

	// Source is where the passage text came from (publication, URL, ordinance).
	Source string `json:"source,omitempty"`

	// Embedding is the passage vector used for semantic ranking. Empty until
	// the background embedding pass has processed the passage.
	Embedding      []float32 `json:"embedding,omitempty"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult pairs a passage with its query similarity score
type SearchResult struct {
	Passage *Passage `json:"passage"`
	Score   float64  `json:"score"`
}

// CorpusStats summarizes the loaded corpus
type CorpusStats struct {
	TotalPassages   int            `json:"total_passages"`
	PassagesByTopic map[string]int `json:"passages_by_topic"`
	EmbeddedCount   int            `json:"embedded_count"`
	LastUpdated     time.Time      `json:"last_updated"`
}
