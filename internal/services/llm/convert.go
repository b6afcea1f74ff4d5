package llm

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// validateMessages checks the conversation shape shared by both providers:
// non-empty, at least one user message, and any system message must be the
// single leading one. The prompt builders always emit that shape; a system
// message anywhere else is caller error and is rejected, not repaired.
func validateMessages(messages []interfaces.Message) error {
	if len(messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for i, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
		}
		if msg.Role == "system" && i != 0 {
			return fmt.Errorf("system message must be single and first in sequence (found at position %d)", i)
		}
	}
	if !hasUserMessage {
		return fmt.Errorf("at least one message must have role 'user'")
	}
	return nil
}

// convertMessagesToClaude converts provider-agnostic messages to the Claude
// message format. System messages are extracted and returned separately since
// the Claude API takes the system text as a top-level parameter.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if err := validateMessages(messages); err != nil {
		return nil, "", err
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			systemText = msg.Content
			continue
		}

		switch msg.Role {
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "user":
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			// Unknown roles are sent as user messages
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	return claudeMessages, systemText, nil
}

// convertMessagesToGemini converts provider-agnostic messages to Gemini
// content. System messages are extracted and returned separately for use as
// the system instruction.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if err := validateMessages(messages); err != nil {
		return nil, "", err
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			systemText = msg.Content
			continue
		}

		var geminiRole genai.Role
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, genai.NewContentFromText(msg.Content, geminiRole))
	}

	return contents, systemText, nil
}
