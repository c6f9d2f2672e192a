package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/starter-squad/lms/internal/bootstrap"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	"github.com/starter-squad/lms/internal/migrate"
	"github.com/starter-squad/lms/internal/service"
)

// infraNeeds selects which dependencies a command opens.
type infraNeeds struct {
	Services bool
}

// userAdmin is the account surface the CLI drives.
type userAdmin interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ChangeRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error)
	SetActive(ctx context.Context, id string, active bool) (*model.User, error)
	SetPassword(ctx context.Context, id, password string) error
}

type sessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

type migrator interface {
	Run(ctx context.Context) error
	Status(ctx context.Context) ([]migrate.Migration, error)
}

// infra is the opened set of dependencies; Close releases them.
type infra struct {
	Migrator migrator
	Users    userAdmin
	Sessions sessionRevoker
	Close    func() error
}

type sqlMigrator struct{ db *sql.DB }

func (m sqlMigrator) Run(ctx context.Context) error { return migrate.Run(ctx, m.db) }

func (m sqlMigrator) Status(ctx context.Context) ([]migrate.Migration, error) {
	return migrate.Status(ctx, m.db)
}

// connectInfra opens Postgres and, when services are wanted, Redis plus the
// service container built the same way the server builds it.
func (a *app) connectInfra(_ context.Context, want infraNeeds) (*infra, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: a.cfg.Postgres, Logger: a.logger})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	out := &infra{Migrator: sqlMigrator{db: db}, Close: db.Close}
	if !want.Services {
		return out, nil
	}

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: a.cfg.Redis, Logger: a.logger})
	if err != nil {
		return nil, closeOnError(fmt.Errorf("connect redis: %w", err), db)
	}
	out.Close = func() error { return closeInfra(db, redisClient) }

	svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &a.cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, errors.Join(err, out.Close())
	}
	out.Users = svcs.Users
	out.Sessions = svcs.Auth
	return out, nil
}

func closeOnError(err error, db *sql.DB) error {
	if closeErr := db.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close db: %w", closeErr))
	}
	return err
}

func closeInfra(db *sql.DB, redisClient redis.UniversalClient) error {
	var closeErr error
	if db != nil {
		if err := db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}

// withInfra opens dependencies, runs fn and always closes them.
func (a *app) withInfra(ctx context.Context, want infraNeeds, fn func(*infra) error) (err error) {
	deps, err := a.connect(ctx, want)
	if err != nil {
		return err
	}
	defer func() {
		if deps.Close == nil {
			return
		}
		if cerr := deps.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(deps)
}
