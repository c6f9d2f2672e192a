package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/", cfg.HTTP.CookiePath)
	assert.Equal(t, "http://localhost:3000", cfg.HTTP.FrontendURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, "starter-squad-lms", cfg.Auth.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "session_id", cfg.Auth.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Auth.Session.IdleTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.Session.AbsoluteTimeout)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "lms", cfg.Postgres.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, slog.LevelInfo, cfg.Observability.SlogLevel())

	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretTooShort, "no secret configured")
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", strings.Repeat("s", MinJWTSecretBytes))
	t.Setenv("AUTH_JWT_ISSUER", "lms-test")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("AUTH_SESSION_COOKIE_NAME", "lms_sid")
	t.Setenv("AUTH_SESSION_IDLE_TIMEOUT", "15m")
	t.Setenv("AUTH_SESSION_ABSOLUTE_TIMEOUT", "8h")
	t.Setenv("AUTH_BCRYPT_COST", "12")
	t.Setenv("APP_COOKIE_PATH", "lms")
	t.Setenv("FRONTEND_URL", " https://app.example.com/ ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://app.example.com")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_USE_CLUSTER", "true")
	t.Setenv("REDIS_CLUSTER_NODES", "r1:6379,r2:6379")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("METRICS_ENABLED", "false")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lms-test", cfg.Auth.JWTIssuer)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "lms_sid", cfg.Auth.Session.CookieName)
	assert.Equal(t, 15*time.Minute, cfg.Auth.Session.IdleTimeout)
	assert.Equal(t, 8*time.Hour, cfg.Auth.Session.AbsoluteTimeout)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "/lms", cfg.HTTP.CookiePath)
	assert.Equal(t, "https://app.example.com", cfg.HTTP.FrontendURL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.True(t, cfg.Redis.UseCluster)
	assert.Equal(t, []string{"r1:6379", "r2:6379"}, cfg.Redis.ClusterNodes)
	assert.Equal(t, slog.LevelDebug, cfg.Observability.SlogLevel())
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestAuthConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   AuthConfig
		want AuthConfig
	}{
		{
			name: "clamps low values",
			in:   AuthConfig{TokenTTL: time.Second, BcryptCost: 1},
			want: AuthConfig{
				JWTIssuer:  "starter-squad-lms",
				TokenTTL:   time.Minute,
				BcryptCost: 4,
				Session:    SessionConfig{CookieName: "session_id", IdleTimeout: 30 * time.Minute, AbsoluteTimeout: 12 * time.Hour},
			},
		},
		{
			name: "idle capped by absolute",
			in: AuthConfig{
				JWTIssuer:  "iss",
				TokenTTL:   time.Hour,
				BcryptCost: 40,
				Session:    SessionConfig{CookieName: " sid ", IdleTimeout: 2 * time.Hour, AbsoluteTimeout: time.Hour},
			},
			want: AuthConfig{
				JWTIssuer:  "iss",
				TokenTTL:   time.Hour,
				BcryptCost: 31,
				Session:    SessionConfig{CookieName: "sid", IdleTimeout: time.Hour, AbsoluteTimeout: time.Hour},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.Sanitize()
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	valid := AuthConfig{
		JWTSecret: strings.Repeat("k", MinJWTSecretBytes),
		Session:   SessionConfig{IdleTimeout: time.Minute, AbsoluteTimeout: time.Hour},
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.JWTSecret = strings.Repeat("k", MinJWTSecretBytes-1)
	assert.ErrorIs(t, short.Validate(), ErrJWTSecretTooShort)

	inverted := valid
	inverted.Session.IdleTimeout = 2 * time.Hour
	assert.Error(t, inverted.Validate())
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		wantLevel int
	}{
		{"below range", 0, 1},
		{"in range", 6, 6},
		{"above range", 12, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HTTPConfig{CompressionLevel: tt.level, CookiePath: "/"}
			h.Sanitize()
			assert.Equal(t, tt.wantLevel, h.CompressionLevel)
		})
	}
}

func TestHTTPConfig_Validate(t *testing.T) {
	assert.NoError(t, (&HTTPConfig{}).Validate())
	assert.NoError(t, (&HTTPConfig{FrontendURL: "https://app.example.com"}).Validate())
	assert.Error(t, (&HTTPConfig{FrontendURL: "app.example.com"}).Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5432, User: "lms", Password: "p@ss word", Name: "lms", SSLMode: "require"}
	assert.Equal(t, "postgres://lms:p%40ss%20word@db:5432/lms?sslmode=require", cfg.DSN())
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)

	t.Setenv("NODE_ENV", "production")
	cfg = AppConfig{}
	cfg.Sanitize()
	assert.False(t, cfg.IsDev)
}
