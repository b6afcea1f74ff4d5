package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/prompts"
)

// Controller implements interfaces.DialogueController. Each Advance runs one
// turn of the convergence loop: pose the next clarifying question, simulate
// the user's answer to it, generate a trial answer over the hypothetically
// extended history and a control answer over the real history, and converge
// when the two answers no longer differ meaningfully.
type Controller struct {
	llmService  interfaces.LLMService
	scorer      interfaces.SimilarityScorer
	retrieval   interfaces.RetrievalService
	topics      interfaces.TopicService
	config      *common.DialogueConfig
	topK        int
	filters     int
	turnTimeout time.Duration
	logger      arbor.ILogger
}

// NewController creates a dialogue controller
func NewController(
	llmService interfaces.LLMService,
	scorer interfaces.SimilarityScorer,
	retrieval interfaces.RetrievalService,
	topics interfaces.TopicService,
	config *common.Config,
	logger arbor.ILogger,
) *Controller {
	turnTimeout, err := time.ParseDuration(config.Dialogue.TurnTimeout)
	if err != nil || turnTimeout <= 0 {
		turnTimeout = 5 * time.Minute
	}

	return &Controller{
		llmService:  llmService,
		scorer:      scorer,
		retrieval:   retrieval,
		topics:      topics,
		config:      &config.Dialogue,
		topK:        config.Retrieval.TopK,
		filters:     config.Retrieval.TopicFilters,
		turnTimeout: turnTimeout,
		logger:      logger,
	}
}

// Advance runs one dialogue turn. The caller owns session persistence and
// must serialize calls per session. The session is mutated in place; on error
// the mutations made so far (including a completed history append) stand, so
// a retried call resumes rather than repeats.
func (c *Controller) Advance(ctx context.Context, session *models.Session, userInput string) (*interfaces.AdvanceResult, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return nil, fmt.Errorf("user input cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.turnTimeout)
	defer cancel()

	switch session.State {
	case models.SessionAwaitingFirstInput:
		return c.startDialogue(ctx, session, userInput)
	case models.SessionInDialogue:
		return c.continueDialogue(ctx, session, userInput)
	case models.SessionConverged:
		if c.config.TerminateOnConverge {
			return nil, fmt.Errorf("session %s has converged and accepts no further input", session.ID)
		}
		return c.continueDialogue(ctx, session, userInput)
	default:
		return nil, fmt.Errorf("session %s in unknown state %q", session.ID, session.State)
	}
}

// startDialogue handles the first input of a session: record the legal
// situation, rank the taxonomy, and pose the first clarifying question.
// No convergence check runs here; there is nothing to compare yet.
func (c *Controller) startDialogue(ctx context.Context, session *models.Session, userInput string) (*interfaces.AdvanceResult, error) {
	session.UserQuery = userInput

	ranked, err := c.topics.Classify(ctx, userInput)
	if err != nil {
		// A session without topic filters still works; retrieval just
		// searches the whole corpus.
		c.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Topic classification failed")
	} else {
		session.RankedTopics = ranked
	}

	sources, err := c.retrieval.SearchSources(ctx, session.UserQuery, c.topK, c.topicFilters(session))
	if err != nil {
		return nil, fmt.Errorf("source retrieval failed: %w", err)
	}

	question, err := c.generateQuestion(ctx, session, sources)
	if err != nil {
		return nil, err
	}

	session.State = models.SessionInDialogue
	session.PendingQuestion = question
	session.PendingAppended = false

	c.logger.Info().
		Str("session_id", session.ID).
		Int("ranked_topics", len(session.RankedTopics)).
		Msg("Dialogue started")

	return &interfaces.AdvanceResult{
		Message:   question,
		Converged: false,
	}, nil
}

// continueDialogue handles a reply to the pending question and runs the
// convergence check.
func (c *Controller) continueDialogue(ctx context.Context, session *models.Session, userInput string) (*interfaces.AdvanceResult, error) {
	if session.PendingQuestion == "" {
		return nil, fmt.Errorf("session %s has no pending question", session.ID)
	}

	// Append exactly once. A retry after a mid-turn failure finds the pair
	// already recorded and skips straight to the evaluation.
	if !session.PendingAppended {
		session.History = append(session.History, models.Turn{
			Prompt: session.PendingQuestion,
			Reply:  userInput,
		})
		session.PendingAppended = true
	}

	sources, err := c.retrieval.SearchSources(ctx, session.UserQuery, c.topK, c.topicFilters(session))
	if err != nil {
		return nil, fmt.Errorf("source retrieval failed: %w", err)
	}

	evaluation, err := c.evaluateTurn(ctx, session, sources)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("session_id", session.ID).
		Int("turns", len(session.History)).
		Float64("similarity", evaluation.Similarity).
		Bool("converged", evaluation.Converged).
		Msg("Turn evaluated")

	if evaluation.Converged {
		session.State = models.SessionConverged
		session.PendingAppended = false
		// When the session stays open after convergence, the delivered
		// answer becomes the pending prompt so a follow-up message forms a
		// complete turn and re-enters the loop.
		if c.config.TerminateOnConverge {
			session.PendingQuestion = ""
		} else {
			session.PendingQuestion = evaluation.ControlAnswer
		}
		return &interfaces.AdvanceResult{
			Message:    evaluation.ControlAnswer,
			Converged:  true,
			Evaluation: evaluation,
		}, nil
	}

	session.State = models.SessionInDialogue
	session.PendingQuestion = evaluation.CandidateQuestion
	session.PendingAppended = false
	return &interfaces.AdvanceResult{
		Message:    evaluation.CandidateQuestion,
		Converged:  false,
		Evaluation: evaluation,
	}, nil
}

// evaluateTurn runs the four generations of the convergence check. The
// control answer depends only on the real history, so it runs concurrently
// with the question/simulation/trial chain and is joined before comparison.
func (c *Controller) evaluateTurn(ctx context.Context, session *models.Session, sources string) (*models.TurnEvaluation, error) {
	evaluation := &models.TurnEvaluation{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		controlAnswer, err := c.generateAnswer(gctx, session.UserQuery, session.History, sources)
		if err != nil {
			return fmt.Errorf("control answer generation failed: %w", err)
		}
		evaluation.ControlAnswer = controlAnswer
		return nil
	})

	g.Go(func() error {
		question, err := c.generateQuestion(gctx, session, sources)
		if err != nil {
			return err
		}
		evaluation.CandidateQuestion = question

		simulated, err := c.llmService.Chat(gctx, prompts.BuildMockUserPrompt(question, session.UserQuery, session.History))
		if err != nil {
			return fmt.Errorf("simulated answer generation failed: %w", err)
		}
		evaluation.SimulatedAnswer = strings.TrimSpace(simulated)

		trialHistory := make([]models.Turn, len(session.History), len(session.History)+1)
		copy(trialHistory, session.History)
		trialHistory = append(trialHistory, models.Turn{
			Prompt: evaluation.CandidateQuestion,
			Reply:  evaluation.SimulatedAnswer,
		})

		trialAnswer, err := c.generateAnswer(gctx, session.UserQuery, trialHistory, sources)
		if err != nil {
			return fmt.Errorf("trial answer generation failed: %w", err)
		}
		evaluation.TrialAnswer = trialAnswer
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	score, err := c.scorer.Score(ctx, evaluation.TrialAnswer, evaluation.ControlAnswer)
	if err != nil {
		return nil, fmt.Errorf("similarity scoring failed: %w", err)
	}

	evaluation.Similarity = score
	evaluation.Converged = score >= c.config.SimilarityThreshold
	return evaluation, nil
}

// generateQuestion produces the next clarifying question, listing previously
// posed questions so the model does not repeat itself.
func (c *Controller) generateQuestion(ctx context.Context, session *models.Session, sources string) (string, error) {
	previous := make([]string, 0, len(session.History))
	for _, turn := range session.History {
		previous = append(previous, turn.Prompt)
	}

	question, err := c.llmService.Chat(ctx, prompts.BuildQuestionPrompt(session.UserQuery, previous, sources))
	if err != nil {
		return "", fmt.Errorf("question generation failed: %w", err)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question generation returned empty text")
	}
	return question, nil
}

func (c *Controller) generateAnswer(ctx context.Context, userQuery string, history []models.Turn, sources string) (string, error) {
	answer, err := c.llmService.Chat(ctx, prompts.BuildAnswerPrompt(userQuery, history, sources))
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("answer generation returned empty text")
	}
	return answer, nil
}

// topicFilters derives retrieval filters from the session's taxonomy
// ranking: the configured number of top-ranked topics, or no filter when
// classification is unavailable.
func (c *Controller) topicFilters(session *models.Session) []string {
	if c.filters <= 0 || len(session.RankedTopics) == 0 {
		return nil
	}
	n := c.filters
	if n > len(session.RankedTopics) {
		n = len(session.RankedTopics)
	}
	return session.RankedTopics[:n]
}
