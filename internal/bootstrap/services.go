package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/starter-squad/lms/config"
	"github.com/starter-squad/lms/internal/adapters/bcrypt"
	"github.com/starter-squad/lms/internal/core"
	"github.com/starter-squad/lms/internal/data"
	"github.com/starter-squad/lms/internal/observability/metrics"
	"github.com/starter-squad/lms/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Courses     *service.CourseService
	Enrollments *service.EnrollmentService

	// Registry carries the process and auth collectors served on /metrics.
	Registry *prometheus.Registry
	Metrics  metrics.Recorder
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users       core.UserRepository
	Courses     core.CourseRepository
	Enrollments core.EnrollmentRepository
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:       data.NewUserRepo(db),
		Courses:     data.NewCourseRepo(db),
		Enrollments: data.NewEnrollmentRepo(db),
	}
}

// buildMetrics returns a registry with Go runtime and process collectors plus
// the auth counters. Disabled metrics still get a registry so counters have
// somewhere to land; it is simply never served.
func buildMetrics(cfg config.ObservabilityConfig) (*prometheus.Registry, metrics.Recorder) {
	reg := prometheus.NewRegistry()
	if !cfg.MetricsEnabled {
		return reg, metrics.Nop{}
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewAuthMetrics(reg)
}

// NewServices builds the service container over the given database and Redis client.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps and config are required")
	}
	if deps.DB == nil {
		return nil, errors.New("service deps require a database")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps.DB)
	hasher := bcrypt.NewHasher(deps.Config.Auth.BcryptCost)
	registry, recorder := buildMetrics(deps.Config.Observability)

	authSvc, err := BuildAuthService(AuthConfig{
		Auth:        deps.Config.Auth,
		RedisClient: deps.RedisClient,
		Users:       repos.Users,
		Hasher:      hasher,
		Metrics:     recorder,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	return &ServiceContainer{
		Auth: authSvc,
		Users: service.NewUserService(service.UserServiceOptions{
			Repo:    repos.Users,
			Hasher:  hasher,
			Revoker: authSvc,
		}),
		Courses:     service.NewCourseService(service.CourseServiceOptions{Repo: repos.Courses, Logger: logger}),
		Enrollments: service.NewEnrollmentService(service.EnrollmentServiceOptions{Repo: repos.Enrollments, Logger: logger}),
		Registry:    registry,
		Metrics:     recorder,
	}, nil
}
