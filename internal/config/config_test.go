package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"API_BASE_URL", "SYMBOL", "LOOKBACK_DAYS", "REQUEST_TIMEOUT", "REQUESTS_PER_SEC",
	"MAX_RETRIES", "LISTEN_ADDR", "CHART_WIDTH", "LOG_LEVEL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "ENABLE_SCHEDULER",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, "AAPL", cfg.Symbol)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 5, cfg.RequestsPerSec)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 800, cfg.ChartWidth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.EnableScheduler)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://anomalies.example.com/api/")
	t.Setenv("SYMBOL", "msft")
	t.Setenv("LOOKBACK_DAYS", "90")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("ENABLE_SCHEDULER", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://anomalies.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "MSFT", cfg.Symbol)
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.False(t, cfg.EnableScheduler)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOOKBACK_DAYS", "a month")
	t.Setenv("MAX_RETRIES", "-2")
	t.Setenv("TELEGRAM_CHAT_ID", "chat")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, int64(0), cfg.TelegramChatID)
}
