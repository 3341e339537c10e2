package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://billing.example.gov/api")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "/billing-items", cfg.UpstreamItemsPath)
	assert.True(t, cfg.FilterStrict)
	assert.Equal(t, 50, cfg.PageSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "billing.example.gov")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("UPSTREAM_BASE_URL", "https://billing.example.gov")
	t.Setenv("PAGE_SIZE", "0")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("FILTER_STRICT", "false")
	t.Setenv("APP_ENV", "production")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.FilterStrict)
	assert.True(t, cfg.IsProduction())
}

func TestLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("page", "billing"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"page":"billing"`)

	assert.Equal(t, slog.LevelInfo, parseLevel(&Config{LogLevel: "loud"}))
	assert.Equal(t, slog.LevelDebug, parseLevel(&Config{LogLevel: "debug"}))
}

func TestTestModeFlag(t *testing.T) {
	for value, want := range map[string]bool{"1": true, "true": true, " TRUE ": true, "0": false, "": false, "yes": false} {
		t.Setenv(TestModeEnv, value)
		RefreshTestMode()
		assert.Equal(t, want, InTestMode(), value)
	}
}
