package config

import (
	"fmt"
	"os"
	"strconv"

	"hdbagent/internal/model"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	OpenAI     OpenAIConfig
	Finance    model.FinanceConfig
	Model      ModelConfig
	Telemetry  TelemetryConfig
	Logging    LoggingConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// OpenAIConfig holds configuration for the OpenAI-compatible
// text-generation backend
type OpenAIConfig struct {
	APIKey       string
	APIBase      string
	ChatModel    string
	Temperature  float64
	TopP         float64
	MaxNewTokens int
	Timeout      int
	Enabled      bool
}

// ModelConfig holds the price-model artifact location and the fallback
// constants used when segment medians are missing. The fallbacks have no
// documented provenance in the training data; they are tunable, not
// invariants.
type ModelConfig struct {
	Dir                 string
	FallbackAreaSqm     float64
	FallbackLeaseYear   int
	FallbackLeaseMonths int
	FallbackFlatModel   string
}

// TelemetryConfig holds the local telemetry database location
type TelemetryConfig struct {
	Path    string
	Enabled bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "hdb"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		OpenAI: OpenAIConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			APIBase:      getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:    getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			Temperature:  getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			TopP:         getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.7),
			MaxNewTokens: getEnvAsInt("OPENAI_MAX_NEW_TOKENS", 256),
			Timeout:      getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:      getEnv("OPENAI_API_KEY", "") != "",
		},
		Finance: model.FinanceConfig{
			Discount:    getEnvAsFloat("BTO_DISCOUNT", 0.20),
			LTV:         getEnvAsFloat("LTV", 0.80),
			InterestPA:  getEnvAsFloat("RATE", 0.026),
			TenureYears: getEnvAsInt("TENURE", 25),
			MSR:         getEnvAsFloat("MSR", 0.30),
		},
		Model: ModelConfig{
			Dir:                 getEnv("MODEL_DIR", "models"),
			FallbackAreaSqm:     getEnvAsFloat("MODEL_FALLBACK_AREA_SQM", 90.0),
			FallbackLeaseYear:   getEnvAsInt("MODEL_FALLBACK_LEASE_YEAR", 1990),
			FallbackLeaseMonths: getEnvAsInt("MODEL_FALLBACK_LEASE_MONTHS", 300),
			FallbackFlatModel:   getEnv("MODEL_FALLBACK_FLAT_MODEL", "IMPROVED"),
		},
		Telemetry: TelemetryConfig{
			Path:    getEnv("TELEMETRY_DB", "logs/telemetry.db"),
			Enabled: getEnv("TELEMETRY_DISABLED", "") == "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid float value, using default")
		return defaultValue
	}
	return value
}
