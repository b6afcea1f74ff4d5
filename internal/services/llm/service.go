package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// Service implements interfaces.LLMService on top of the provider factory.
// A shared rate limiter spaces out calls across all callers; the convergence
// loop issues several generations per turn and providers throttle bursts.
type Service struct {
	factory  *ProviderFactory
	config   *common.Config
	limiter  *rate.Limiter
	timeout  time.Duration
	embedDim int
	logger   arbor.ILogger
}

// NewService creates an LLM service from configuration
func NewService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (*Service, error) {
	factory := NewProviderFactory(&config.Gemini, &config.Claude, &config.LLM, kvStorage, logger)

	interval, err := time.ParseDuration(config.LLM.RateLimit)
	if err != nil || interval <= 0 {
		interval = 500 * time.Millisecond
	}

	timeout, err := time.ParseDuration(config.LLM.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Service{
		factory:  factory,
		config:   config,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		timeout:  timeout,
		embedDim: config.Gemini.EmbedDimension,
		logger:   logger,
	}, nil
}

// Chat generates a completion for the conversation using the default provider
func (s *Service) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.factory.GenerateContent(callCtx, &ContentRequest{
		Messages:    messages,
		Temperature: s.config.LLM.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return resp.Text, nil
}

// Embed generates an embedding vector for the given text. Embeddings always
// come from Gemini regardless of the chat provider, so similarity scores stay
// comparable across a session.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := s.factory.GetGeminiClient(callCtx)
	if err != nil {
		return nil, err
	}

	outputDim := int32(s.embedDim)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	var result *genai.EmbedContentResponse
	var apiErr error
	retryConfig := NewDefaultRetryConfig()

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		result, apiErr = client.Models.EmbedContent(callCtx, s.config.Gemini.EmbedModel, contents, embeddingConfig)
		if apiErr == nil {
			break
		}

		if attempt == retryConfig.MaxRetries || !IsRateLimitError(apiErr) {
			break
		}

		backoff := retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying embedding API call")

		select {
		case <-callCtx.Done():
			return nil, callCtx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", apiErr)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	if len(embedding) != s.embedDim {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.embedDim, len(embedding))
	}

	return embedding, nil
}

// HealthCheck verifies the default provider is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: "You are a health check. Reply with one word."},
		{Role: "user", Content: "ping"},
	})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close releases provider clients
func (s *Service) Close() error {
	return s.factory.Close()
}
