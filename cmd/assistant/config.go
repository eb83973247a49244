package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	ai "github.com/spetersoncode/assistant"
)

const defaultSystemPrompt = `You are a helpful research assistant. Answer the user's question accurately and concisely.
Use the search_web tool for current events or facts you are unsure about, get_weather for current weather in a city, and calculator for any arithmetic.
Cite the sources you used when your answer relies on search results.`

// Config holds process-wide settings. It is loaded once at startup and never
// mutated afterwards.
type Config struct {
	// Server
	Port      int           `env:"ASSISTANT_PORT" envDefault:"8000"`
	LogLevel  string        `env:"ASSISTANT_LOG_LEVEL" envDefault:"info"`
	Heartbeat time.Duration `env:"ASSISTANT_HEARTBEAT" envDefault:"15s"`

	// Model
	Provider     string  `env:"ASSISTANT_PROVIDER" envDefault:"openai"`
	Model        string  `env:"ASSISTANT_MODEL"`
	Temperature  float64 `env:"ASSISTANT_TEMPERATURE" envDefault:"0.7"`
	MaxTokens    int     `env:"ASSISTANT_MAX_TOKENS" envDefault:"0"`
	ModelRetries int     `env:"ASSISTANT_MODEL_RETRIES" envDefault:"0"`

	// Agent
	SystemPrompt string        `env:"ASSISTANT_SYSTEM_PROMPT"`
	MaxSteps     int           `env:"ASSISTANT_MAX_STEPS" envDefault:"10"`
	Timeout      time.Duration `env:"ASSISTANT_TIMEOUT" envDefault:"2m"`
	ToolTimeout  time.Duration `env:"ASSISTANT_TOOL_TIMEOUT" envDefault:"30s"`

	// API keys
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	AnthropicKey   string `env:"ANTHROPIC_API_KEY"`
	GoogleKey      string `env:"GOOGLE_API_KEY"`
	TavilyKey      string `env:"TAVILY_API_KEY"`
	OpenWeatherKey string `env:"OPENWEATHER_API_KEY"`
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return cfg, nil
}

// Validate checks that the selected provider has a key and that numeric
// settings are usable. Tool keys are optional: a tool without one reports
// the upstream rejection as its result.
func (c *Config) Validate() error {
	provider, err := ai.ParseProvider(c.Provider)
	if err != nil {
		return err
	}

	switch provider {
	case ai.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case ai.ProviderGoogle:
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	default:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("ASSISTANT_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("ASSISTANT_MAX_STEPS must be at least 1, got %d", c.MaxSteps)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("ASSISTANT_TIMEOUT must be positive")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("ASSISTANT_TOOL_TIMEOUT must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("ASSISTANT_LOG_LEVEL: %w", err)
	}
	return level, nil
}
