package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	APIBaseURL       string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	Symbol           string `env:"SYMBOL" envDefault:"AAPL"`
	LookbackDays     int    `env:"LOOKBACK_DAYS" envDefault:"30"`
	RequestTimeout   int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec   int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetries       int    `env:"MAX_RETRIES" envDefault:"0"`
	ListenAddr       string `env:"LISTEN_ADDR" envDefault:":8080"`
	ChartWidth       int    `env:"CHART_WIDTH" envDefault:"800"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	EnableScheduler  bool   `env:"ENABLE_SCHEDULER" envDefault:"true"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.APIBaseURL = strings.TrimRight(getEnvWithDefault("API_BASE_URL", "http://localhost:8000/api"), "/")
	cfg.Symbol = strings.ToUpper(getEnvWithDefault("SYMBOL", "AAPL"))
	cfg.LookbackDays = getEnvIntWithDefault("LOOKBACK_DAYS", 30)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = max(getEnvIntWithDefault("MAX_RETRIES", 0), 0)
	cfg.ListenAddr = getEnvWithDefault("LISTEN_ADDR", ":8080")
	cfg.ChartWidth = getEnvIntWithDefault("CHART_WIDTH", 800)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.EnableScheduler = getEnvBoolWithDefault("ENABLE_SCHEDULER", true)

	return &cfg, nil
}

// Timeout returns RequestTimeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// TelegramEnabled reports whether both the bot token and chat are configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
