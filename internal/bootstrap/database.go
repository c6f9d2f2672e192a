package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/starter-squad/lms/config"
	"github.com/starter-squad/lms/internal/migrate"
)

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

const (
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 5 * time.Minute
	connectTimeout    = 5 * time.Second
)

// ConnectDB opens the Postgres pool through the pgx stdlib driver and pings it.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database %s:%d/%s: %w", cfg.DBConfig.Host, cfg.DBConfig.Port, cfg.DBConfig.Name, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected", "host", cfg.DBConfig.Host, "port", cfg.DBConfig.Port, "database", cfg.DBConfig.Name)
	}
	return db, nil
}

// ConnectRedis opens the Redis client backing the session store and pings it.
// Cluster and sentinel modes take precedence over the plain URI.
//
//nolint:ireturn // go-redis picks the concrete client from the options.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, target, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "target", target)
	}
	return client, nil
}

// redisOptions translates config into go-redis universal options plus a
// credential-free description of the target for logs and errors.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	switch {
	case cfg.UseCluster:
		addrs := normalizeAddrs(cfg.ClusterNodes)
		opts := &redis.UniversalOptions{IsClusterMode: true, Password: cfg.Password}
		if len(addrs) == 0 {
			single, err := optionsFromURI(cfg.URI, cfg.Password)
			if err != nil {
				return nil, "", err
			}
			if single == nil {
				return nil, "", errors.New("redis cluster mode needs REDIS_CLUSTER_NODES or REDIS_URI")
			}
			addrs = []string{single.Addr}
			opts.Username = single.Username
			opts.Password = single.Password
			opts.TLSConfig = single.TLSConfig
		}
		opts.Addrs = addrs
		return opts, "cluster " + strings.Join(addrs, ","), nil

	case cfg.UseSentinel:
		nodes := normalizeAddrs(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return nil, "", errors.New("redis sentinel mode needs REDIS_SENTINEL_NODES")
		}
		return &redis.UniversalOptions{
			Addrs:            nodes,
			MasterName:       cfg.SentinelMasterName,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		}, "sentinel " + cfg.SentinelMasterName, nil
	}

	single, err := optionsFromURI(cfg.URI, cfg.Password)
	if err != nil {
		return nil, "", err
	}
	if single == nil {
		return nil, "", errors.New("redis needs REDIS_URI")
	}
	return &redis.UniversalOptions{
		Addrs:     []string{single.Addr},
		Username:  single.Username,
		Password:  single.Password,
		DB:        single.DB,
		TLSConfig: single.TLSConfig,
	}, single.Addr, nil
}

// optionsFromURI accepts either a redis:// URL or a bare host:port. Passwords
// embedded in the URL win over fallbackPassword. A blank uri yields nil.
func optionsFromURI(uri, fallbackPassword string) (*redis.Options, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		return &redis.Options{Addr: uri, Password: fallbackPassword}, nil
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = fallbackPassword
	}
	return opts, nil
}

func normalizeAddrs(raw []string) []string {
	out := raw[:0:0]
	for _, addr := range raw {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// RunMigrations runs database migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}

	return nil
}
