package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// unsetEnv убирает переменную на время теста
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_DefaultsAndRequired(t *testing.T) {
	req := require.New(t)
	unsetEnv(t, "PORT", "ENV", "TOKEN_TTL", "GEMINI_MODEL", "ALLOWED_ORIGINS", "CHAT_BRIDGE")
	t.Setenv("DATABASE_URL", "postgres://localhost/automart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("5000", cfg.Port)
	req.Equal(24*time.Hour, cfg.TokenTTL)
	req.Equal("gemini-1.5-flash", cfg.GeminiModel)
	req.Len(cfg.AllowedOrigins, 3)
	req.False(cfg.ChatBridge)
	req.True(cfg.IsDevelopment())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/automart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	unsetEnv(t, "JWT_SECRET")

	_, err := Load()
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
