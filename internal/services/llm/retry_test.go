package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.True(t, IsRateLimitError(errors.New("Error 429, Message: quota exceeded")))
	assert.True(t, IsRateLimitError(errors.New("Status: RESOURCE_EXHAUSTED")))
	assert.False(t, IsRateLimitError(errors.New("connection refused")))
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: You exceeded your quota. Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	assert.InDelta(t, 45.387, delay.Seconds(), 0.001)

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("no delay here")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoffUsesAPIDelay(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	backoff := cfg.CalculateBackoff(0, 30*time.Second)
	assert.Equal(t, 35*time.Second, backoff)
}

func TestCalculateBackoffCapsAtMax(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	backoff := cfg.CalculateBackoff(5, 0)
	assert.Equal(t, cfg.MaxBackoff, backoff)
}

func TestCalculateBackoffGrowsPerAttempt(t *testing.T) {
	cfg := &RetryConfig{
		MaxRetries:        5,
		InitialBackoff:    10 * time.Second,
		MaxBackoff:        5 * time.Minute,
		BackoffMultiplier: 2.0,
	}

	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(0, 0))
	assert.Equal(t, 20*time.Second, cfg.CalculateBackoff(1, 0))
	assert.Equal(t, 40*time.Second, cfg.CalculateBackoff(2, 0))
}
