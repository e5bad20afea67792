// Package config provides configuration management for the trade board service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Boards    BoardsConfig
	Platforms PlatformsConfig
	Quotes    QuotesConfig
	Symbols   SymbolsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// ClickHouseConfig holds ClickHouse configuration
type ClickHouseConfig struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// BoardsConfig holds board document and refresh configuration
type BoardsConfig struct {
	Dir             string        // directory of board JSON documents
	Default         string        // board served when no name is given
	RefreshInterval time.Duration // background refresh cadence
	RefreshTimeout  time.Duration // budget for one full board refresh
}

// PlatformsConfig holds trading platform API configuration
type PlatformsConfig struct {
	TopstepURL        string
	TradeifyURL       string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
}

// QuotesConfig holds price quote API configuration
type QuotesConfig struct {
	BaseURL        string
	Interval       string
	Range          string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

// SymbolsConfig holds symbol map configuration
type SymbolsConfig struct {
	MapFile string // optional JSON file overriding the built-in map
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "trade_board"),
				User:           getEnv("POSTGRES_USER", "board"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			ClickHouse: ClickHouseConfig{
				Host:     getEnv("CLICKHOUSE_HOST", "localhost"),
				Port:     getEnv("CLICKHOUSE_PORT", "9000"),
				Database: getEnv("CLICKHOUSE_DB", "trade_board"),
				User:     getEnv("CLICKHOUSE_USER", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Boards: BoardsConfig{
			Dir:             getEnv("BOARDS_DIR", "./boards"),
			Default:         getEnv("BOARDS_DEFAULT", "default"),
			RefreshInterval: getEnvAsDuration("BOARDS_REFRESH_INTERVAL", 5*time.Minute),
			RefreshTimeout:  getEnvAsDuration("BOARDS_REFRESH_TIMEOUT", 2*time.Minute),
		},
		Platforms: PlatformsConfig{
			TopstepURL:        getEnv("PLATFORM_TOPSTEP_URL", "https://userapi.topstepx.com"),
			TradeifyURL:       getEnv("PLATFORM_TRADEIFY_URL", "https://userapi.tradeify.projectx.com"),
			RequestTimeout:    getEnvAsDuration("PLATFORM_REQUEST_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getEnvAsFloat("PLATFORM_REQUESTS_PER_SECOND", 3.0),
		},
		Quotes: QuotesConfig{
			BaseURL:        getEnv("QUOTES_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart/"),
			Interval:       getEnv("QUOTES_INTERVAL", "1m"),
			Range:          getEnv("QUOTES_RANGE", "5d"),
			CacheTTL:       getEnvAsDuration("QUOTES_CACHE_TTL", 60*time.Second),
			RequestTimeout: getEnvAsDuration("QUOTES_REQUEST_TIMEOUT", 10*time.Second),
		},
		Symbols: SymbolsConfig{
			MapFile: getEnv("SYMBOLS_MAP_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 50),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// PostgresURL builds the database URL used by the migration runner.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.Database.Postgres.User,
		c.Database.Postgres.Password,
		c.Database.Postgres.Host,
		c.Database.Postgres.Port,
		c.Database.Postgres.Database,
	)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
