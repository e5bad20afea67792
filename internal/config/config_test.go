package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Set some test environment variables
	if err := os.Setenv("SERVER_PORT", "9090"); err != nil {
		t.Fatalf("Failed to set SERVER_PORT: %v", err)
	}
	if err := os.Setenv("POSTGRES_HOST", "testhost"); err != nil {
		t.Fatalf("Failed to set POSTGRES_HOST: %v", err)
	}
	if err := os.Setenv("QUOTES_CACHE_TTL", "30s"); err != nil {
		t.Fatalf("Failed to set QUOTES_CACHE_TTL: %v", err)
	}
	if err := os.Setenv("PLATFORM_REQUESTS_PER_SECOND", "1.5"); err != nil {
		t.Fatalf("Failed to set PLATFORM_REQUESTS_PER_SECOND: %v", err)
	}
	defer func() {
		_ = os.Unsetenv("SERVER_PORT")
		_ = os.Unsetenv("POSTGRES_HOST")
		_ = os.Unsetenv("QUOTES_CACHE_TTL")
		_ = os.Unsetenv("PLATFORM_REQUESTS_PER_SECOND")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}

	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}

	if cfg.Quotes.CacheTTL != 30*time.Second {
		t.Errorf("Quotes.CacheTTL = %v, want %v", cfg.Quotes.CacheTTL, 30*time.Second)
	}

	if cfg.Platforms.RequestsPerSecond != 1.5 {
		t.Errorf("Platforms.RequestsPerSecond = %v, want 1.5", cfg.Platforms.RequestsPerSecond)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Boards.Dir != "./boards" {
		t.Errorf("Boards.Dir = %v, want ./boards", cfg.Boards.Dir)
	}
	if cfg.Boards.Default != "default" {
		t.Errorf("Boards.Default = %v, want default", cfg.Boards.Default)
	}
	if cfg.Platforms.TopstepURL == "" || cfg.Platforms.TradeifyURL == "" {
		t.Error("platform URLs should have defaults")
	}
	if cfg.Quotes.Interval != "1m" || cfg.Quotes.Range != "5d" {
		t.Errorf("quote defaults = %s/%s, want 1m/5d", cfg.Quotes.Interval, cfg.Quotes.Range)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	if err := os.Setenv("TEST_INT", "42"); err != nil {
		t.Fatal(err)
	}
	if err := os.Setenv("TEST_BAD_INT", "nope"); err != nil {
		t.Fatal(err)
	}
	if err := os.Setenv("TEST_DURATION", "90s"); err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Unsetenv("TEST_INT")
		_ = os.Unsetenv("TEST_BAD_INT")
		_ = os.Unsetenv("TEST_DURATION")
	}()

	if got := getEnv("TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %v, want fallback", got)
	}
	if got := getEnvAsInt("TEST_INT", 1); got != 42 {
		t.Errorf("getEnvAsInt = %v, want 42", got)
	}
	if got := getEnvAsInt("TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvAsInt with bad value = %v, want default 7", got)
	}
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvAsDuration = %v, want 90s", got)
	}
	if got := getEnvAsFloat("TEST_MISSING", 2.5); got != 2.5 {
		t.Errorf("getEnvAsFloat = %v, want default 2.5", got)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Postgres = PostgresConfig{
		Host:     "db",
		Port:     "5432",
		Database: "trade_board",
		User:     "board",
		Password: "secret",
	}

	want := "postgres://board:secret@db:5432/trade_board?sslmode=disable"
	if got := cfg.PostgresURL(); got != want {
		t.Errorf("PostgresURL() = %v, want %v", got, want)
	}
}
