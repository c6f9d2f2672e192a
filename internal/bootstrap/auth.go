package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/starter-squad/lms/config"
	"github.com/starter-squad/lms/internal/adapters/credstore"
	redisadapter "github.com/starter-squad/lms/internal/adapters/redis"
	"github.com/starter-squad/lms/internal/adapters/token"
	"github.com/starter-squad/lms/internal/core"
	"github.com/starter-squad/lms/internal/observability/metrics"
	"github.com/starter-squad/lms/internal/ports"
	"github.com/starter-squad/lms/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Users       core.UserRepository
	Hasher      ports.PasswordHasher
	Metrics     metrics.Recorder
	Logger      *slog.Logger
}

// BuildAuthService wires the token issuer, the Redis session store and the
// credential store into an AuthService.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth service requires a redis client for sessions")
	}
	if cfg.Users == nil || cfg.Hasher == nil {
		return nil, errors.New("auth service requires a user repository and password hasher")
	}

	issuer, err := token.NewIssuer(token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Deps: service.AuthDeps{
			Credentials: credstore.New(cfg.Users, cfg.Hasher),
			Tokens:      issuer,
			Sessions:    redisadapter.NewSessionStore(cfg.RedisClient),
		},
		Config: service.AuthConfig{
			IdleTimeout:     cfg.Auth.Session.IdleTimeout,
			AbsoluteTimeout: cfg.Auth.Session.AbsoluteTimeout,
		},
		Observers: service.AuthObservers{
			Logger:  cfg.Logger,
			Metrics: cfg.Metrics,
		},
	}), nil
}
