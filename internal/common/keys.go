package common

import (
	"context"
	"fmt"
	"os"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// ResolveAPIKey resolves an API key by name with priority:
// environment variable > KV store > config fallback.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"LEGALBOT_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"LEGALBOT_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		if value, err := kvStorage.Get(ctx, name); err == nil && value != "" {
			return value, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key %s not found in environment, settings store, or config", name)
}
