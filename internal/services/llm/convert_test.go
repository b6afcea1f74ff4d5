package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

func TestConvertMessagesToClaudeExtractsSystem(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "bye"},
	}

	claudeMessages, system, err := convertMessagesToClaude(messages)
	require.NoError(t, err)
	assert.Equal(t, "be brief", system)
	assert.Len(t, claudeMessages, 3)
}

func TestConvertMessagesToClaudeRejectsEmpty(t *testing.T) {
	_, _, err := convertMessagesToClaude(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToClaudeRequiresUserMessage(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "system", Content: "only system"},
	})
	assert.Error(t, err)
}

func TestConvertMessagesToClaudeRejectsMisplacedSystem(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "user", Content: "hello"},
		{Role: "system", Content: "be brief"},
	})
	assert.Error(t, err)
}

func TestConvertMessagesToClaudeRejectsDuplicateSystem(t *testing.T) {
	_, _, err := convertMessagesToClaude([]interfaces.Message{
		{Role: "system", Content: "be brief"},
		{Role: "system", Content: "be very brief"},
		{Role: "user", Content: "hello"},
	})
	assert.Error(t, err)
}

func TestConvertMessagesToGeminiExtractsSystem(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}

	contents, system, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "be brief", system)
	assert.Len(t, contents, 2)
}

func TestConvertMessagesToGeminiRejectsMisplacedSystem(t *testing.T) {
	_, _, err := convertMessagesToGemini([]interfaces.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
		{Role: "system", Content: "be brief"},
	})
	assert.Error(t, err)
}

func newTestFactory() *ProviderFactory {
	cfg := common.NewDefaultConfig()
	return NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, nil, common.GetLogger())
}

func TestDetectProvider(t *testing.T) {
	factory := newTestFactory()

	assert.Equal(t, ProviderClaude, factory.DetectProvider("claude-sonnet-4-20250514"))
	assert.Equal(t, ProviderClaude, factory.DetectProvider("claude/claude-sonnet-4-20250514"))
	assert.Equal(t, ProviderGemini, factory.DetectProvider("gemini-2.0-flash"))
	assert.Equal(t, ProviderGemini, factory.DetectProvider("google/gemini-2.0-flash"))
	assert.Equal(t, ProviderGemini, factory.DetectProvider(""))
}

func TestNormalizeModel(t *testing.T) {
	factory := newTestFactory()

	assert.Equal(t, "gemini-2.0-flash", factory.NormalizeModel("gemini/gemini-2.0-flash"))
	assert.Equal(t, "claude-sonnet-4-20250514", factory.NormalizeModel("anthropic/claude-sonnet-4-20250514"))
	assert.Equal(t, "gemini-2.0-flash", factory.NormalizeModel("gemini-2.0-flash"))
}
