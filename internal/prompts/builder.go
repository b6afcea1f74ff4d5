package prompts

import (
	"fmt"
	"strings"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
)

// Builders assemble chat message sequences for the four generation roles.
// All builders are pure: same inputs, same messages. Each returned slice
// carries exactly one system message, first in sequence.

// BuildTopicPrompt assembles the taxonomy-ranking request. topicList is the
// delimited rendering produced by the topic service and topicCount the number
// of taxonomy entries; a fixed worked example anchors the output format.
func BuildTopicPrompt(query, topicList string, topicCount int) []interfaces.Message {
	system := fmt.Sprintf(topicSystemPrompt, topicCount) + "\n\n" + topicList
	return []interfaces.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: exampleStory},
		{Role: "assistant", Content: exampleTopicRanking},
		{Role: "user", Content: query},
	}
}

// BuildQuestionPrompt assembles the clarifying-question request. Previously
// posed questions are listed so the model does not repeat itself; sources may
// be empty when retrieval found nothing.
func BuildQuestionPrompt(query string, previousQuestions []string, sources string) []interfaces.Message {
	var sb strings.Builder
	sb.WriteString(query)
	sb.WriteString("\n\nPrevious questions:\n")
	sb.WriteString(renderQuestions(previousQuestions))
	sb.WriteString("\n\nReference material:\n")
	sb.WriteString(renderSources(sources))

	var example strings.Builder
	example.WriteString(exampleStory)
	example.WriteString("\n\nPrevious questions:\n")
	example.WriteString(noHistoryMarker)
	example.WriteString("\n\nReference material:\n")
	example.WriteString(emptySourcesMarker)

	return []interfaces.Message{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: example.String()},
		{Role: "assistant", Content: exampleQuestion},
		{Role: "user", Content: sb.String()},
	}
}

// BuildMockUserPrompt assembles the simulated-user request: answer question
// in the persona of the client who described userQuery, given the exchanges
// so far.
func BuildMockUserPrompt(question, userQuery string, history []models.Turn) []interfaces.Message {
	var sb strings.Builder
	sb.WriteString("New Question:\n")
	sb.WriteString(question)
	sb.WriteString("\n\n## Context\n- Legal situation: ")
	sb.WriteString(userQuery)
	sb.WriteString("\n\n## Previous questions\n")
	if len(history) == 0 {
		sb.WriteString(noHistoryMarker)
		sb.WriteString("\n")
	} else {
		for _, turn := range history {
			sb.WriteString("- Question: ")
			sb.WriteString(turn.Prompt)
			sb.WriteString("\n- Answer: ")
			sb.WriteString(turn.Reply)
			sb.WriteString("\n")
		}
	}

	return []interfaces.Message{
		{Role: "system", Content: mockUserSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// BuildAnswerPrompt assembles the grounded-answer request over userQuery, the
// conversation history, and the serialized retrieval sources. The same
// builder serves both the trial answer (hypothetically extended history) and
// the control answer (real history); only the history argument differs.
func BuildAnswerPrompt(userQuery string, history []models.Turn, sources string) []interfaces.Message {
	var sb strings.Builder
	sb.WriteString("User query: ")
	sb.WriteString(userQuery)
	sb.WriteString("\n\nConversation History: \n")
	sb.WriteString(RenderHistory(history))
	sb.WriteString("\n\nSources: \n")
	sb.WriteString(renderSources(sources))

	return []interfaces.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// RenderHistory serializes completed turns as question/answer pairs in
// conversation order. Empty history renders the explicit none marker so the
// first-turn control answer is distinguishable from an omitted section.
func RenderHistory(history []models.Turn) string {
	if len(history) == 0 {
		return noHistoryMarker
	}
	var sb strings.Builder
	for _, turn := range history {
		sb.WriteString("Question: ")
		sb.WriteString(turn.Prompt)
		sb.WriteString("\nAnswer: ")
		sb.WriteString(turn.Reply)
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderQuestions(questions []string) string {
	if len(questions) == 0 {
		return noHistoryMarker
	}
	var sb strings.Builder
	for _, q := range questions {
		sb.WriteString("- ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderSources(sources string) string {
	if strings.TrimSpace(sources) == "" {
		return emptySourcesMarker
	}
	return sources
}
