package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/starter-squad/lms/config"
	httpx "github.com/starter-squad/lms/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    *ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildHTTPHandler builds the router with health checks and, when enabled,
// the Prometheus endpoint.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return nil, errors.New("http server config, app config and services are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	services := httpx.RouterServices{
		Auth:        cfg.Services.Auth,
		Users:       cfg.Services.Users,
		Courses:     cfg.Services.Courses,
		Enrollments: cfg.Services.Enrollments,
		Web: httpx.WebConfig{
			Cookies: httpx.CookieConfig{
				Name:   appCfg.Auth.Session.CookieName,
				Path:   appCfg.HTTP.CookiePath,
				Domain: appCfg.HTTP.CookieDomain,
			},
			FrontendURL: appCfg.HTTP.FrontendURL,
		},
		CORSAllowedOrigins: appCfg.HTTP.CORSAllowedOrigins,
		HealthChecks:       healthChecks(cfg.DB, cfg.RedisClient),
		Metrics:            cfg.Services.Metrics,
		Logger:             logger,
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel}
	}
	if appCfg.Observability.MetricsEnabled && cfg.Services.Registry != nil {
		services.MetricsHandler = promhttp.HandlerFor(cfg.Services.Registry, promhttp.HandlerOpts{})
	}

	return httpx.NewRouter(services)
}

func healthChecks(db *sql.DB, redisClient redis.UniversalClient) []httpx.HealthCheck {
	var checks []httpx.HealthCheck
	if db != nil {
		checks = append(checks, httpx.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		checks = append(checks, httpx.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	return checks
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// RunHTTPServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func RunHTTPServer(ctx context.Context, cfg *HTTPServerConfig) error {
	handler, err := BuildHTTPHandler(cfg)
	if err != nil {
		return err
	}
	server := newServer(handler, cfg.Config.HTTP.Addr)
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Serve(ctx, server, ln, cfg.Logger)
}

// Serve runs server on ln until ctx is done or the server fails, whichever is first.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
