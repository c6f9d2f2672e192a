package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"

	"github.com/starter-squad/lms/internal/domain/access"
	"github.com/starter-squad/lms/internal/observability/metrics"
)

// UserServiceInterface is the account surface used by the API and admin pages.
type UserServiceInterface interface {
	Registrar
	UserAdminInterface
}

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth        AuthServiceInterface
	Users       UserServiceInterface
	Courses     CourseServiceInterface
	Enrollments EnrollmentServiceInterface

	Policy *access.Policy // defaults to access.DefaultPolicy()
	Web    WebConfig
	// CORSAllowedOrigins lists SPA origins allowed to call /api with credentials.
	CORSAllowedOrigins []string
	// Compression enables gzip when non-nil.
	Compression *CompressionConfig

	HealthChecks   []HealthCheck
	Metrics        metrics.Recorder
	MetricsHandler http.Handler // served at /metrics when non-nil
	Renderer       *TemplateRenderer
	Logger         *slog.Logger
}

// NewRouter wires routes and the middleware chain:
// recover, logging, compression, CORS (API only), CSRF (pages only), access control.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Users == nil || services.Courses == nil || services.Enrollments == nil {
		return nil, errors.New("NewRouter: Auth, Users, Courses and Enrollments are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := services.Renderer
	if renderer == nil {
		var err error
		if renderer, err = NewTemplateRenderer(TemplateRendererConfig{Logger: logger}); err != nil {
			return nil, fmt.Errorf("template renderer: %w", err)
		}
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Users: services.Users, Web: services.Web, Logger: logger}
	registerAuthRoutes(mux, authHandlers)
	registerCourseRoutes(mux, &CourseHandlers{Svc: services.Courses})
	registerEnrollmentRoutes(mux, &EnrollmentHandlers{Svc: services.Enrollments})
	registerAdminRoutes(mux, &AdminHandlers{Users: services.Users, Courses: services.Courses})
	registerPageRoutes(mux, &PageHandlers{
		Renderer:    renderer,
		Courses:     services.Courses,
		Users:       services.Users,
		Enrollments: services.Enrollments,
		Web:         services.Web,
		Logger:      logger,
	})

	health := healthHandler(services.HealthChecks)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.MetricsHandler != nil {
		mux.Handle("GET /metrics", services.MetricsHandler)
	}
	mux.HandleFunc("/api/", apiNotFound)

	mws := []func(http.Handler) http.Handler{Recover(logger), Logging(logger)}
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		mws = append(mws, Compression(cfg))
	}
	mws = append(mws,
		apiCORS(services.CORSAllowedOrigins),
		CSRFProtection(CSRFConfig{Cookies: services.Web.Cookies}),
		AccessControl(AccessControlOptions{
			Auth:    services.Auth,
			Policy:  services.Policy,
			Web:     services.Web,
			Logger:  logger,
			Metrics: services.Metrics,
		}),
	)
	return Chain(mux, mws...), nil
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", h.Me)
	mux.HandleFunc("GET /api/me", h.Me)
	mux.HandleFunc("GET /auth/redirect", h.Bridge)
	mux.HandleFunc("POST /logout", h.LogoutPage)
}

func registerCourseRoutes(mux *http.ServeMux, h *CourseHandlers) {
	mux.HandleFunc("GET /api/courses", h.List)
	mux.HandleFunc("GET /api/courses/{id}", h.Get)
	mux.HandleFunc("POST /api/courses", h.Create)
	mux.HandleFunc("POST /api/courses/{id}/submit", h.Submit)
	mux.HandleFunc("POST /api/courses/{id}/resubmit", h.Resubmit)
}

func registerEnrollmentRoutes(mux *http.ServeMux, h *EnrollmentHandlers) {
	mux.HandleFunc("GET /api/enrollments", h.List)
	mux.HandleFunc("POST /api/enrollments", h.Enroll)
	mux.HandleFunc("POST /api/enrollments/{courseID}/complete", h.Complete)
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers) {
	mux.HandleFunc("GET /api/admin/users", h.ListUsers)
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", h.SetRole)
	mux.HandleFunc("PATCH /api/admin/users/{id}/active", h.SetActive)
	mux.HandleFunc("GET /api/admin/courses/pending", h.PendingCourses)
	mux.HandleFunc("POST /api/admin/courses/{id}/approve", h.ApproveCourse)
	mux.HandleFunc("POST /api/admin/courses/{id}/reject", h.RejectCourse)
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /access-denied", h.AccessDenied)

	mux.HandleFunc("GET /admin/dashboard", h.AdminDashboard)
	mux.HandleFunc("POST /admin/users/{id}/role", h.AdminSetRole)
	mux.HandleFunc("POST /admin/users/{id}/active", h.AdminSetActive)
	mux.HandleFunc("POST /admin/courses/{id}/approve", h.AdminApprove)
	mux.HandleFunc("POST /admin/courses/{id}/reject", h.AdminReject)

	mux.HandleFunc("GET /instructor/dashboard", h.InstructorDashboard)
	mux.HandleFunc("POST /instructor/courses", h.InstructorCreateCourse)
	mux.HandleFunc("POST /instructor/courses/{id}/submit", h.InstructorSubmit)
	mux.HandleFunc("POST /instructor/courses/{id}/resubmit", h.InstructorResubmit)

	mux.HandleFunc("GET /student/dashboard", h.StudentDashboard)
}

func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("route not found")})
}

// apiCORS applies CORS to the API surface only. Credentials are allowed so the
// SPA can send the session cookie as a fallback to its bearer token.
func apiCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", DefaultCSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return func(next http.Handler) http.Handler {
		withCORS := c(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if access.Classify(r.URL.Path) == access.SurfaceAPI {
				withCORS.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
