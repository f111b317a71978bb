package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	Fathom        FathomConfig
	Anthropic     AnthropicConfig
	KnowledgeBase KnowledgeBaseConfig
	Git           GitConfig
	Slack         SlackConfig
	Gamma         GammaConfig
	Redis         RedisConfig
	Pipeline      PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ShutdownTimeout int
}

// FathomConfig holds inbound webhook configuration
type FathomConfig struct {
	WebhookSecret string
	DedupWindow   time.Duration
}

// AnthropicConfig holds AI processing configuration
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// KnowledgeBaseConfig holds document-tree configuration
type KnowledgeBaseConfig struct {
	Path       string
	ContextTTL time.Duration
}

// GitConfig holds version-control configuration
type GitConfig struct {
	AuthorName  string
	AuthorEmail string
	AutoCommit  bool
	AutoPush    bool
}

// SlackConfig holds notification configuration
type SlackConfig struct {
	WebhookURL string
	Channel    string
}

// GammaConfig holds presentation generation configuration
type GammaConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	ThemeID string
}

// RedisConfig holds Redis configuration for the delivery store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PipelineConfig holds orchestration configuration
type PipelineConfig struct {
	WorkerCount   int
	DedupBackend  string // "memory" or "redis"
	DeadLetterDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Fathom: FathomConfig{
			WebhookSecret: getEnv("FATHOM_WEBHOOK_SECRET", ""),
			DedupWindow:   getEnvAsDuration("DEDUP_WINDOW", "24h"),
		},
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:   getEnv("ANTHROPIC_API_URL", "https://api.anthropic.com"),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4096),
			Timeout:   getEnvAsDuration("AI_TIMEOUT", "120s"),
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Path:       getEnv("KB_PATH", ""),
			ContextTTL: getEnvAsDuration("CONTEXT_TTL", "5m"),
		},
		Git: GitConfig{
			AuthorName:  getEnv("GIT_AUTHOR_NAME", "Meeting Scribe"),
			AuthorEmail: getEnv("GIT_AUTHOR_EMAIL", "bot@example.com"),
			AutoCommit:  getEnvAsBool("GIT_AUTO_COMMIT", true),
			AutoPush:    getEnvAsBool("GIT_AUTO_PUSH", false),
		},
		Slack: SlackConfig{
			WebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			Channel:    getEnv("SLACK_CHANNEL", "#meeting-summaries"),
		},
		Gamma: GammaConfig{
			Enabled: getEnvAsBool("GAMMA_ENABLED", false),
			APIKey:  getEnv("GAMMA_API_KEY", ""),
			BaseURL: getEnv("GAMMA_API_URL", "https://public-api.gamma.app"),
			ThemeID: getEnv("GAMMA_THEME_ID", "Oasis"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Pipeline: PipelineConfig{
			WorkerCount:   getEnvAsInt("WORKER_COUNT", 4),
			DedupBackend:  getEnv("DEDUP_BACKEND", "memory"),
			DeadLetterDir: getEnv("DEADLETTER_DIR", "logs/failed-webhooks"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fathom.WebhookSecret == "" {
		return fmt.Errorf("FATHOM_WEBHOOK_SECRET is required")
	}
	if c.KnowledgeBase.Path == "" {
		return fmt.Errorf("KB_PATH is required")
	}
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.Pipeline.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
