package topics

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
	"github.com/HKUGenAI/legal-chatbot/internal/models"
	"github.com/HKUGenAI/legal-chatbot/internal/prompts"
)

// Locale codes used in the taxonomy file columns
const (
	LocaleEnglish            = "en-US"
	LocaleTraditionalChinese = "zh-HK"
	LocaleSimplifiedChinese  = "zh-CN"
)

// Service implements interfaces.TopicService. The taxonomy is loaded once at
// construction and read-only afterwards.
type Service struct {
	topics     []models.Topic
	keys       map[string]bool
	llmService interfaces.LLMService
	logger     arbor.ILogger
}

// NewService loads the topic taxonomy from the CSV file at path. The file
// has columns key,en,tc,sc with a header row. A missing, empty, or malformed
// file is an error; callers treat it as fatal at startup.
func NewService(path string, llmService interfaces.LLMService, logger arbor.ILogger) (*Service, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic taxonomy %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse topic taxonomy %s: %w", path, err)
	}

	topics := make([]models.Topic, 0, len(records))
	keys := make(map[string]bool, len(records))
	for i, record := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "key") {
			continue
		}
		if len(record) != 4 {
			return nil, fmt.Errorf("malformed taxonomy row %d in %s: expected 4 columns, got %d", i+1, path, len(record))
		}

		key := strings.TrimSpace(record[0])
		if key == "" {
			return nil, fmt.Errorf("malformed taxonomy row %d in %s: empty topic key", i+1, path)
		}
		if keys[key] {
			return nil, fmt.Errorf("duplicate topic key %q in %s", key, path)
		}

		keys[key] = true
		topics = append(topics, models.Topic{
			Key: key,
			Names: map[string]string{
				LocaleEnglish:            strings.TrimSpace(record[1]),
				LocaleTraditionalChinese: strings.TrimSpace(record[2]),
				LocaleSimplifiedChinese:  strings.TrimSpace(record[3]),
			},
		})
	}

	if len(topics) == 0 {
		return nil, fmt.Errorf("topic taxonomy %s contains no topics", path)
	}

	logger.Info().
		Int("topic_count", len(topics)).
		Str("path", path).
		Msg("Loaded topic taxonomy")

	return &Service{
		topics:     topics,
		keys:       keys,
		llmService: llmService,
		logger:     logger,
	}, nil
}

// Topics returns the taxonomy in file order
func (s *Service) Topics() []models.Topic {
	return s.topics
}

// TopicList renders the taxonomy as the delimited list embedded in the
// classification prompt.
func (s *Service) TopicList() string {
	keys := make([]string, len(s.topics))
	for i, topic := range s.topics {
		keys[i] = topic.Key
	}
	return "Topic List: (" + strings.Join(keys, ", ") + ")"
}

// LocalizedName returns the topic's display name for a locale, falling back
// to the key when the locale or topic is unknown.
func (s *Service) LocalizedName(key, locale string) string {
	for _, topic := range s.topics {
		if topic.Key == key {
			if name, ok := topic.Names[locale]; ok && name != "" {
				return name
			}
			return key
		}
	}
	return key
}

// classifyAttempts bounds retries when the model returns an invalid ranking
const classifyAttempts = 3

// Classify asks the generation backend to rank the full taxonomy by
// relevance to the query. The response is post-validated: exactly one entry
// per taxonomy key, no duplicates, no invented topics. An invalid ranking is
// retried; persistent failure is surfaced to the caller.
func (s *Service) Classify(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("cannot classify empty query")
	}

	messages := prompts.BuildTopicPrompt(query, s.TopicList(), len(s.topics))

	var lastErr error
	for attempt := 1; attempt <= classifyAttempts; attempt++ {
		response, err := s.llmService.Chat(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("topic classification failed: %w", err)
		}

		ranked, err := s.parseRanking(response)
		if err == nil {
			return ranked, nil
		}

		lastErr = err
		s.logger.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("Invalid topic ranking, retrying")
	}

	return nil, fmt.Errorf("topic classification produced no valid ranking after %d attempts: %w", classifyAttempts, lastErr)
}

// parseRanking extracts topic keys from a numbered-list response and
// validates the result is a permutation of the taxonomy.
func (s *Service) parseRanking(response string) ([]string, error) {
	seen := make(map[string]bool, len(s.topics))
	ranked := make([]string, 0, len(s.topics))

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Strip the "N." or "N)" ordinal prefix when present
		if idx := strings.IndexAny(line, ".)"); idx > 0 && idx < 5 {
			prefix := line[:idx]
			if isDigits(prefix) {
				line = strings.TrimSpace(line[idx+1:])
			}
		}
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !s.keys[line] {
			return nil, fmt.Errorf("unknown topic %q in ranking", line)
		}
		if seen[line] {
			return nil, fmt.Errorf("duplicate topic %q in ranking", line)
		}

		seen[line] = true
		ranked = append(ranked, line)
	}

	if len(ranked) != len(s.topics) {
		return nil, fmt.Errorf("ranking has %d topics, taxonomy has %d", len(ranked), len(s.topics))
	}

	return ranked, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
