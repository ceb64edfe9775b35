package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/protein-tracker/internal/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	TelegramToken string
	HTTP          HTTPConfig
	DB            DBConfig
	Logger        LoggerConfig
	AI            AIConfig
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Tracker       TrackerConfig
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	MaxRetries int
}

// DSN returns the PostgreSQL connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

// AIConfig configures the suggestion provider. Keys never leave the server.
type AIConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	MaxOutputTokens   int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// RateLimitConfig bounds suggestion requests per caller. A zero PruneInterval
// keeps idle callers in the in-memory limiter forever.
type RateLimitConfig struct {
	SuggestionLimit  int
	SuggestionWindow time.Duration
	PruneInterval    time.Duration
}

// RedisConfig enables the shared limiter and bot state when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type TrackerConfig struct {
	DefaultGoalProtein float64
	DefaultTimezone    string
}

// Location resolves DefaultTimezone, falling back to UTC
func (c TrackerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		HTTP: HTTPConfig{
			Addr:            getEnvOrDefault("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			Host:       getEnvOrDefault("DB_HOST", "localhost"),
			Port:       getEnvOrDefault("DB_PORT", "5432"),
			User:       getEnvOrDefault("DB_USER", "postgres"),
			Password:   getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:     getEnvOrDefault("DB_NAME", "protein_tracker"),
			SSLMode:    getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxRetries: getEnvInt("DB_MAX_RETRIES", 5),
		},
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		AI: AIConfig{
			Provider:          strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini)),
			GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
			MaxOutputTokens:   getEnvInt("AI_MAX_OUTPUT_TOKENS", 500),
			Timeout:           getEnvDuration("AI_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getEnvFloat("AI_REQUESTS_PER_SECOND", 2),
		},
		RateLimit: RateLimitConfig{
			SuggestionLimit:  getEnvInt("SUGGESTION_RATE_LIMIT", 5),
			SuggestionWindow: getEnvDuration("SUGGESTION_RATE_WINDOW", time.Hour),
			PruneInterval:    getEnvDuration("RATE_LIMIT_PRUNE_INTERVAL", 0),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    getEnvOrDefault("JWT_ISSUER", "protein-tracker"),
			TokenTTL:  getEnvDuration("JWT_TTL", 72*time.Hour),
		},
		Tracker: TrackerConfig{
			DefaultGoalProtein: getEnvFloat("DEFAULT_GOAL_PROTEIN", 120),
			DefaultTimezone:    getEnvOrDefault("DEFAULT_TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs []error

	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini"))
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider))
	}
	if c.AI.MaxOutputTokens <= 0 {
		errs = append(errs, errors.New("AI_MAX_OUTPUT_TOKENS must be positive"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.AI.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("AI_REQUESTS_PER_SECOND must be positive"))
	}
	if c.RateLimit.SuggestionLimit <= 0 {
		errs = append(errs, errors.New("SUGGESTION_RATE_LIMIT must be positive"))
	}
	if c.RateLimit.SuggestionWindow <= 0 {
		errs = append(errs, errors.New("SUGGESTION_RATE_WINDOW must be positive"))
	}
	if c.RateLimit.PruneInterval < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PRUNE_INTERVAL must not be negative"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Tracker.DefaultGoalProtein <= 0 {
		errs = append(errs, errors.New("DEFAULT_GOAL_PROTEIN must be positive"))
	}
	if _, err := time.LoadLocation(c.Tracker.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}
