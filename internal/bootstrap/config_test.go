package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starter-squad/lms/config"
)

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { SetLogLevel(slog.LevelInfo) })
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("x", config.MinJWTSecretBytes))
	t.Setenv("AUTH_SESSION_IDLE_TIMEOUT", "48h")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, cfg.Auth.Session.AbsoluteTimeout, cfg.Auth.Session.IdleTimeout, "idle clamped to absolute")
	assert.Equal(t, slog.LevelWarn, logLevel.Level())
}

func TestLoadConfig_RejectsShortSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "too-short")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, config.ErrJWTSecretTooShort)
}

func TestInitLogger_FollowsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		SetLogLevel(slog.LevelInfo)
	})

	logger := InitLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	SetLogLevel(slog.LevelDebug)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
