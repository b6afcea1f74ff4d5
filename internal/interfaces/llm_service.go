package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content contains the text content of the message
	Content string `json:"content"`
}

// LLMService defines the interface for language model operations: chat
// completions and embedding generation. Implementations wrap cloud providers
// (Gemini, Claude) behind a single provider-agnostic surface.
type LLMService interface {
	// Chat generates a completion for the conversation. The messages slice
	// must be non-empty with exactly one system message, first in sequence.
	// Failures (auth, rate limit, malformed input) are surfaced to the
	// caller; no partial results are returned.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// HealthCheck verifies the service can reach its backing provider.
	HealthCheck(ctx context.Context) error

	// Close releases provider clients.
	Close() error
}
