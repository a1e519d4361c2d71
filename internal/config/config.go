package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/model"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

// Config holds all configuration for the application
type Config struct {
	Quote    QuoteConfig
	Sync     SyncConfig
	Database DatabaseConfig
	Log      LogConfig
}

// QuoteConfig holds quote source configuration
type QuoteConfig struct {
	BaseURL   string
	Transport string // "http" or "resty"
	Timeout   time.Duration
	UserAgent string
}

// SyncConfig holds pipeline configuration
type SyncConfig struct {
	Concurrency     int
	MaxSymbolLength int
	Tags            model.PriceRowTags
	Schedule        string // cron expression; empty runs once
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	FileName string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Transport names accepted by QUOTE_TRANSPORT.
const (
	TransportHTTP  = "http"
	TransportResty = "resty"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Quote: QuoteConfig{
			BaseURL:   getEnv("QUOTE_BASE_URL", yahoo.DefaultBaseURL),
			Transport: getEnv("QUOTE_TRANSPORT", TransportHTTP),
			UserAgent: getEnv("QUOTE_USER_AGENT", defaultUserAgent),
		},
		Sync: SyncConfig{
			Schedule: getEnv("SYNC_SCHEDULE", ""),
		},
		Database: DatabaseConfig{
			FileName: getEnv("DB_FILE_NAME", "accountsData.ibank"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	timeoutSec, err := getEnvInt("QUOTE_TIMEOUT_SEC", 15)
	if err != nil {
		return nil, err
	}
	config.Quote.Timeout = time.Duration(timeoutSec) * time.Second

	if config.Sync.Concurrency, err = getEnvInt("SYNC_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.Sync.MaxSymbolLength, err = getEnvInt("SYNC_MAX_SYMBOL_LENGTH", 5); err != nil {
		return nil, err
	}
	if config.Sync.Tags.Entity, err = getEnvInt("PRICE_ENT", model.DefaultPriceEntity); err != nil {
		return nil, err
	}
	if config.Sync.Tags.Option, err = getEnvInt("PRICE_OPT", model.DefaultPriceOption); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Quote.Transport {
	case TransportHTTP, TransportResty:
	default:
		return fmt.Errorf("%w: QUOTE_TRANSPORT must be %q or %q, got %q",
			apperrors.ErrInvalidConfig, TransportHTTP, TransportResty, c.Quote.Transport)
	}
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("%w: SYNC_CONCURRENCY must be positive", apperrors.ErrInvalidConfig)
	}
	if c.Sync.MaxSymbolLength < 1 {
		return fmt.Errorf("%w: SYNC_MAX_SYMBOL_LENGTH must be positive", apperrors.ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL: %v", apperrors.ErrInvalidConfig, err)
	}
	if c.Quote.Timeout <= 0 {
		return fmt.Errorf("%w: QUOTE_TIMEOUT_SEC must be positive", apperrors.ErrInvalidConfig)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", apperrors.ErrInvalidConfig, key, value)
	}
	return n, nil
}
