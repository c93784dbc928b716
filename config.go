package main

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all process-wide settings. It is loaded once at startup and
// passed explicitly into constructors so tests can substitute their own values.
type Config struct {
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" env-default:""`
	Model           string `env:"MOVIEFINDER_MODEL" env-default:"claude-haiku-4-5-20251001"`

	DatabasePath string        `env:"MOVIEFINDER_DB" env-default:"db/imdb.db"`
	QueryTimeout time.Duration `env:"MOVIEFINDER_QUERY_TIMEOUT" env-default:"30s"`

	MaxQueryLength int `env:"MOVIEFINDER_MAX_QUERY_LENGTH" env-default:"500"`
	ResultLimit    int `env:"MOVIEFINDER_RESULT_LIMIT" env-default:"50"`

	// When enabled, validated SQL is additionally dry-run through
	// EXPLAIN QUERY PLAN before execution.
	ExplainCheck bool `env:"MOVIEFINDER_EXPLAIN_CHECK" env-default:"true"`

	LogFile  string `env:"MOVIEFINDER_LOG_FILE" env-default:"moviefinder.log"`
	LogLevel string `env:"MOVIEFINDER_LOG_LEVEL" env-default:"info"`
}

// LoadConfig reads configuration from the environment with defaults applied.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}
