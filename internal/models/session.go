package models

import (
	"time"
)

// SessionState identifies where a session is in its lifecycle
type SessionState string

const (
	// SessionAwaitingFirstInput is the initial state: no user query yet
	SessionAwaitingFirstInput SessionState = "awaiting_first_input"
	// SessionInDialogue means the user query is set and turns are being exchanged
	SessionInDialogue SessionState = "in_dialogue"
	// SessionConverged means a final answer has been delivered
	SessionConverged SessionState = "converged"
)

// Turn is one completed exchange: a system-posed prompt and the user's reply.
// Immutable once appended to a session's history.
type Turn struct {
	Prompt string `json:"prompt"`
	Reply  string `json:"reply"`
}

// Session holds the durable conversation state for one user query.
// History is append-only; turns are never removed or reordered.
type Session struct {
	ID    string       `json:"id"`
	State SessionState `json:"state"`

	// UserQuery is the original legal-situation description, fixed for
	// the lifetime of the session.
	UserQuery string `json:"user_query"`

	// History holds completed turns in conversation order.
	History []Turn `json:"history"`

	// PendingQuestion is the most recently posed system text awaiting a
	// user reply. Exactly one is set between pose and reply.
	PendingQuestion string `json:"pending_question"`

	// PendingAppended records whether the (PendingQuestion, userInput)
	// pair for the in-flight input has already been appended to History.
	// Makes a retried Advance after a mid-turn failure idempotent.
	PendingAppended bool `json:"pending_appended"`

	// RankedTopics is the taxonomy ranking produced at session start,
	// used to derive retrieval filters.
	RankedTopics []string `json:"ranked_topics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TurnEvaluation is the per-turn diagnostic record produced by the
// convergence check. Ephemeral: returned to the caller, not part of History.
type TurnEvaluation struct {
	CandidateQuestion string  `json:"candidate_question"`
	SimulatedAnswer   string  `json:"simulated_answer"`
	TrialAnswer       string  `json:"trial_answer"`
	ControlAnswer     string  `json:"control_answer"`
	Similarity        float64 `json:"similarity"`
	Converged         bool    `json:"converged"`
}
