package interfaces

import (
	"context"

	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// AdvanceResult is the outcome of one dialogue turn
type AdvanceResult struct {
	// Message is the text to display: a clarifying question while the
	// session continues, or the final answer once it converges.
	Message string `json:"message"`

	// Converged reports whether Message is a final answer.
	Converged bool `json:"converged"`

	// Evaluation holds the per-turn diagnostics. Nil on the first call of
	// a session, where no comparison takes place.
	Evaluation *models.TurnEvaluation `json:"evaluation,omitempty"`
}

// DialogueController runs the convergence loop for a single session.
// Advance must not be invoked concurrently for the same session; callers
// serialize per session (the session manager does this).
type DialogueController interface {
	Advance(ctx context.Context, session *models.Session, userInput string) (*AdvanceResult, error)
}

// TopicService loads the taxonomy and ranks it against a query
type TopicService interface {
	// Topics returns the taxonomy in file order.
	Topics() []models.Topic

	// TopicList renders the taxonomy as the delimited list embedded in the
	// topic-classification prompt.
	TopicList() string

	// Classify asks the generation backend to rank the full taxonomy by
	// relevance to the query and post-validates the response: exactly one
	// entry per taxonomy key, no duplicates, no invented topics.
	Classify(ctx context.Context, query string) ([]string, error)
}
