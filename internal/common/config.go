package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Dialogue    DialogueConfig   `toml:"dialogue"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Topics      TopicsConfig     `toml:"topics"`
	Corpus      CorpusConfig     `toml:"corpus"`
	Processing  ProcessingConfig `toml:"processing"`
	Sessions    SessionsConfig   `toml:"sessions"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// LLMConfig selects the default provider and shared generation settings
type LLMConfig struct {
	DefaultProvider string  `toml:"default_provider" validate:"oneof=gemini claude"`
	Temperature     float32 `toml:"temperature"`
	Timeout         string  `toml:"timeout"`    // e.g. "2m" - per-call timeout
	RateLimit       string  `toml:"rate_limit"` // e.g. "500ms" - minimum interval between calls
}

// GeminiConfig contains Google Gemini API settings (chat + embeddings)
type GeminiConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbedModel     string `toml:"embed_model"`
	EmbedDimension int    `toml:"embed_dimension" validate:"gt=0"`
	MaxTokens      int    `toml:"max_tokens"`
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// DialogueConfig tunes the convergence loop
type DialogueConfig struct {
	// Similarity gate: a control-vs-trial answer score at or above this
	// converges the session. Tuning parameter, not a structural constant.
	SimilarityThreshold float64 `toml:"similarity_threshold" validate:"gte=0,lte=1"`

	// When true a converged session stops accepting further input;
	// when false the caller may keep sending messages after the answer.
	TerminateOnConverge bool `toml:"terminate_on_converge"`

	// Per-turn timeout covering all generation calls of a single Advance.
	TurnTimeout string `toml:"turn_timeout"`
}

// RetrievalConfig tunes passage search for answer generation
type RetrievalConfig struct {
	TopK          int     `toml:"top_k" validate:"gte=1"`
	MinSimilarity float64 `toml:"min_similarity" validate:"gte=0,lte=1"`
	TopicFilters  int     `toml:"topic_filters"` // Top-ranked topics used as search filter (0 = no filter)
}

// TopicsConfig locates the topic taxonomy file. The taxonomy is loaded once
// at startup and is read-only for the process lifetime; a missing or
// malformed file is fatal.
type TopicsConfig struct {
	Path string `toml:"path" validate:"required"`
}

// CorpusConfig locates the legal passage corpus loaded into storage at startup
type CorpusConfig struct {
	Dir        string   `toml:"dir"`
	Extensions []string `toml:"extensions"`
}

// ProcessingConfig controls the background embedding refresh for passages
type ProcessingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
	Limit    int    `toml:"limit"`    // Max passages to embed per run
}

// SessionsConfig controls session lifecycle
type SessionsConfig struct {
	IdleExpiry string `toml:"idle_expiry"` // e.g. "30m" - idle sessions are evicted after this
}

// NewDefaultConfig returns a Config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/legalbot",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Temperature:     0.5,
			Timeout:         "2m",
			RateLimit:       "500ms",
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			MaxTokens:      8192,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Temperature: 0.5,
		},
		Dialogue: DialogueConfig{
			SimilarityThreshold: 0.85,
			TerminateOnConverge: false,
			TurnTimeout:         "5m",
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MinSimilarity: 0.0,
			TopicFilters:  3,
		},
		Topics: TopicsConfig{
			Path: "./config/topic_translation.csv",
		},
		Corpus: CorpusConfig{
			Dir:        "./corpus",
			Extensions: []string{".toml"},
		},
		Processing: ProcessingConfig{
			Enabled:  true,
			Schedule: "*/5 * * * *",
			Limit:    50,
		},
		Sessions: SessionsConfig{
			IdleExpiry: "30m",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints on the configuration
func Validate(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LEGALBOT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("LEGALBOT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LEGALBOT_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("LEGALBOT_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("LEGALBOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LEGALBOT_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// API keys
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("LEGALBOT_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("LEGALBOT_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	// Provider selection
	if provider := os.Getenv("LEGALBOT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}

	// Dialogue tuning
	if threshold := os.Getenv("LEGALBOT_SIMILARITY_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Dialogue.SimilarityThreshold = t
		}
	}

	// Taxonomy and corpus locations
	if path := os.Getenv("LEGALBOT_TOPICS_PATH"); path != "" {
		config.Topics.Path = path
	}
	if dir := os.Getenv("LEGALBOT_CORPUS_DIR"); dir != "" {
		config.Corpus.Dir = dir
	}
}
