package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryConfig bounds how long the client keeps retrying a rate-limited
// provider call. Quota windows reset on the order of a minute, so the
// backoff starts near that and grows only slightly; both providers share
// the policy.
type RetryConfig struct {
	MaxRetries int

	// InitialBackoff is the wait before the first retry when the provider
	// did not suggest a delay of its own.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries regardless of growth.
	MaxBackoff time.Duration

	// BackoffMultiplier scales the wait on each further attempt.
	BackoffMultiplier float64
}

const (
	DefaultMaxRetries        = 5
	DefaultInitialBackoff    = 45 * time.Second
	DefaultMaxBackoff        = 90 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns the retry policy used for all provider calls
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// IsRateLimitError reports whether the error is a quota or throttling
// rejection worth retrying. Neither SDK exposes a typed sentinel for this,
// so the check matches the status markers both providers embed in the
// error text.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// Quota errors carry a suggested wait either as "Please retry in 45.3s"
// prose or a "retryDelay: 45s" field.
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay pulls the provider-suggested wait out of a rate limit
// error, or 0 when the error carries none.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff returns how long to wait before the given retry attempt.
// A provider-suggested delay takes precedence over InitialBackoff as the
// base; the multiplier compounds per attempt and MaxBackoff caps the result.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		// Trust the provider's estimate, padded so the window has reset
		base = apiDelay + 5*time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}
