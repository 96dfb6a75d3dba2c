package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ChatProvider selects who answers general_chat messages.
type ChatProvider string

const (
	ChatProviderBackend ChatProvider = "backend"
	ChatProviderOpenAI  ChatProvider = "openai"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	// Empty keeps transcripts in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	// Analysis backend
	AnalysisBaseURL string        `env:"ANALYSIS_BASE_URL" envDefault:"http://localhost:8001"`
	GatewayTimeout  time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`

	// LLM settings
	ChatProvider  ChatProvider `env:"CHAT_PROVIDER" envDefault:"backend"`
	OpenAIAPIKey  string       `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string       `env:"OPENAI_BASE_URL"`
	OpenAIModel   string       `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Logging
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	// Sessions
	SessionIdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SessionSweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 10m"`

	// Failure alerts (optional)
	SlackBotToken     string `env:"SLACK_BOT_TOKEN"`
	SlackAlertChannel string `env:"SLACK_ALERT_CHANNEL"`
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Not fatal, production sets real environment variables.
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
	}
	return Parse()
}

// Parse reads the process environment into a validated Config.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the tags cannot express.
func (c *Config) Validate() error {
	switch c.ChatProvider {
	case ChatProviderBackend:
	case ChatProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when CHAT_PROVIDER=%s", c.ChatProvider)
		}
	default:
		return fmt.Errorf("unknown CHAT_PROVIDER %q", c.ChatProvider)
	}
	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", c.GatewayTimeout)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	if (c.SlackBotToken == "") != (c.SlackAlertChannel == "") {
		return fmt.Errorf("SLACK_BOT_TOKEN and SLACK_ALERT_CHANNEL must be set together")
	}
	return nil
}

// SlackAlertsEnabled reports whether gateway failures are posted to Slack.
func (c *Config) SlackAlertsEnabled() bool {
	return c.SlackBotToken != "" && c.SlackAlertChannel != ""
}
