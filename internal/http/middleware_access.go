package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starter-squad/lms/internal/domain/access"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/observability/metrics"
)

// Authenticator is the part of the auth service the request pipeline needs.
type Authenticator interface {
	ResolveToken(ctx context.Context, raw string) (*domainauth.Principal, error)
	ResolveSession(ctx context.Context, id string) (*domainauth.Principal, error)
}

// AccessControlOptions configures AccessControl.
type AccessControlOptions struct {
	Auth   Authenticator
	Policy *access.Policy
	Web    WebConfig
	// Logger and Metrics are optional.
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

type accessControl struct {
	auth    Authenticator
	policy  *access.Policy
	web     WebConfig
	logger  *slog.Logger
	metrics metrics.Recorder
}

// AccessControl returns the request pipeline that every route passes through:
// classify the route, resolve at most one identity, evaluate the policy, then
// either render the denial for the route's surface or invoke the handler with
// the principal in the context.
//
// The API surface tries the bearer token first and falls back to the session
// cookie. The page surface only consults the session cookie. Public routes
// still resolve, so handlers like "/" can see who is signed in.
func AccessControl(opts AccessControlOptions) func(http.Handler) http.Handler {
	if opts.Auth == nil {
		panic("AccessControl: Auth is required")
	}
	policy := opts.Policy
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ac := &accessControl{
		auth:    opts.Auth,
		policy:  policy,
		web:     opts.Web,
		logger:  logger,
		metrics: metrics.OrNop(opts.Metrics),
	}
	return ac.middleware
}

func (ac *accessControl) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		surface, rule := ac.policy.Match(r.Method, r.URL.Path)
		principal, resolveErr := ac.resolve(r, surface)

		decision := rule.Evaluate(principal)
		if decision != access.Allow {
			ac.deny(w, r, denial{surface: surface, decision: decision, principal: principal, cause: resolveErr})
			return
		}

		ctx := r.Context()
		if ctx.Err() != nil {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// resolve returns the bound principal, or nil with the error that stopped
// resolution. Resolution failures never produce a response on their own.
func (ac *accessControl) resolve(r *http.Request, surface access.Surface) (*domainauth.Principal, error) {
	ctx := r.Context()
	var firstErr error

	if surface == access.SurfaceAPI {
		if raw := bearerToken(r); raw != "" {
			p, err := ac.auth.ResolveToken(ctx, raw)
			if err == nil {
				return p, nil
			}
			ac.logResolveError(ctx, "token", err)
			firstErr = err
		}
	}

	if id := sessionIDFromRequest(r, ac.web.Cookies); id != "" {
		p, err := ac.auth.ResolveSession(ctx, id)
		if err == nil {
			return p, nil
		}
		ac.logResolveError(ctx, "session", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func (ac *accessControl) logResolveError(ctx context.Context, source string, err error) {
	switch {
	case errors.Is(err, domainauth.ErrInvalidToken),
		errors.Is(err, domainauth.ErrIdentityNotFound),
		errors.Is(err, domainauth.ErrSessionNotFound),
		errors.Is(err, domainauth.ErrSessionExpired):
		ac.logger.DebugContext(ctx, "identity not resolved", "source", source, "reason", err.Error())
	default:
		ac.logger.WarnContext(ctx, "identity resolution failed", "source", source, "error", err)
	}
}

type denial struct {
	surface   access.Surface
	decision  access.Decision
	principal *domainauth.Principal
	cause     error
}

// deny renders the single denial shape for each surface and records it.
func (ac *accessControl) deny(w http.ResponseWriter, r *http.Request, d denial) {
	ac.metrics.Denial(string(d.surface), d.decision.String())
	attrs := []any{
		"event", "access_denied",
		"method", r.Method,
		"path", r.URL.Path,
		"surface", d.surface,
		"decision", d.decision.String(),
	}
	if d.principal != nil {
		attrs = append(attrs, "user_id", d.principal.UserID, "role", d.principal.Role)
	}
	ac.logger.InfoContext(r.Context(), "access denied", attrs...)

	if d.surface == access.SurfacePage {
		if d.decision == access.DenyForbidden {
			http.Redirect(w, r, access.AccessDeniedPath, http.StatusFound)
			return
		}
		if d.cause != nil && sessionIDFromRequest(r, ac.web.Cookies) != "" {
			clearSessionCookie(w, r, ac.web.Cookies)
		}
		http.Redirect(w, r, ac.web.sessionExpiredURL(), http.StatusFound)
		return
	}

	if d.decision == access.DenyForbidden {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: access.DenyForbidden.String(),
			Err:     domainauth.ErrAuthorizationDenied,
		})
		return
	}
	if errors.Is(d.cause, domainauth.ErrIdentityNotFound) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "identity_not_found",
			Err:     domainauth.ErrIdentityNotFound,
		})
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: access.DenyUnauthenticated.String(),
		Err:     domainauth.ErrAuthenticationRequired,
	})
}
