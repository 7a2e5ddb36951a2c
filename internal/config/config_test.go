package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv blanks every key so host settings cannot leak into defaults
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GO_ENV", "HTTP_PORT", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "REDIS_URL", "REDIS_PASSWORD",
		"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "ANILIST_API_URL", "ANILIST_TIMEOUT",
		"ANILIST_RATE_PER_SEC", "ANILIST_BURST", "ENFORCE_RATING_RANGE", "LOG_LEVEL",
		"LOG_FORMAT", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "https://graphql.anilist.co", cfg.AniListAPIURL)
	assert.Equal(t, 120, cfg.RateLimitRequests)
	assert.True(t, cfg.EnforceRatingRange)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ANILIST_TIMEOUT", "3s")
	t.Setenv("ENFORCE_RATING_RANGE", "false")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.AniListTimeout)
	assert.False(t, cfg.EnforceRatingRange)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "not-a-port")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HTTPPort:          0,
		JWTSecret:         "short",
		LogLevel:          "verbose",
		LogFormat:         "xml",
		RateLimitRequests: 1,
		AniListRatePerSec: 1,
		AniListBurst:      1,
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"HTTP_PORT", "JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRedisAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", (&Config{RedisURL: "redis://localhost:6379"}).RedisAddr())
	assert.Equal(t, "cache:6380", (&Config{RedisURL: "rediss://cache:6380"}).RedisAddr())
	assert.Equal(t, "cache:6379", (&Config{RedisURL: "cache:6379"}).RedisAddr())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := (&Config{LogLevel: "warn", LogFormat: "json"}).NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"key":"value"`)
}
