package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	"github.com/starter-squad/lms/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers use.
type AuthServiceInterface interface {
	Authenticator
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Bridge(ctx context.Context, in service.BridgeInput) (*service.BridgeResult, error)
	Logout(ctx context.Context, sessionID string) error
	AbsoluteTimeout() time.Duration
}

// Registrar creates self-service student accounts.
type Registrar interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Users  Registrar
	Web    WebConfig
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginData is the "data" member of a successful login response.
type loginData struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      domainauth.Role `json:"role"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Login verifies credentials and returns a bearer token.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err})
		return
	}

	presented := sessionIDFromRequest(r, h.Web.Cookies)
	res, err := h.Svc.Login(r.Context(), service.LoginInput{
		Email:              req.Email,
		Password:           req.Password,
		PresentedSessionID: presented,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainauth.ErrInvalidCredentials):
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: err})
		case errors.Is(err, domainauth.ErrAccountDisabled):
			WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "account_disabled", Err: err})
		default:
			h.logger().ErrorContext(r.Context(), "login failed", "error", err)
			WriteAppError(w, err)
		}
		return
	}

	switch {
	case res.Session != nil:
		setSessionCookie(w, r, h.Web.Cookies, res.Session.ID, h.Svc.AbsoluteTimeout())
	case presented != "":
		clearSessionCookie(w, r, h.Web.Cookies)
	}
	WriteData(w, http.StatusOK, "Login successful", loginData{
		Token:     res.Token,
		Type:      "Bearer",
		ID:        res.Identity.UserID,
		Email:     res.Identity.Email,
		Name:      res.Identity.Name,
		Role:      res.Identity.Role,
		ExpiresAt: res.ExpiresAt,
	})
}

// Register creates an active student account.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	u, err := h.Users.Register(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Registration successful", u)
}

// Logout destroys the server session and clears the cookie. Bearer tokens
// stay valid until they expire.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	WriteData(w, http.StatusOK, "Logout successful", nil)
}

// LogoutPage is the form-post variant of Logout for server-rendered pages.
// POST /logout.
func (h *AuthHandlers) LogoutPage(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, h.Web.loggedOutURL(), http.StatusFound)
}

func (h *AuthHandlers) endSession(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r, h.Web.Cookies); id != "" {
		if err := h.Svc.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	clearSessionCookie(w, r, h.Web.Cookies)
}

// Me returns the principal bound to the request.
// GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	WriteData(w, http.StatusOK, "", p)
}

// Bridge upgrades a bearer token carried in the URL into a server session and
// sends the browser to its dashboard.
// GET /auth/redirect?token=<jwt>&role=<ROLE>.
func (h *AuthHandlers) Bridge(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")

	q := r.URL.Query()
	res, err := h.Svc.Bridge(r.Context(), service.BridgeInput{
		Token:              q.Get("token"),
		RoleHint:           q.Get("role"),
		PresentedSessionID: sessionIDFromRequest(r, h.Web.Cookies),
	})
	if err != nil {
		if !errors.Is(err, domainauth.ErrInvalidToken) && !errors.Is(err, domainauth.ErrIdentityNotFound) {
			h.logger().ErrorContext(r.Context(), "bridge failed", "error", err)
		}
		http.Redirect(w, r, h.Web.sessionExpiredURL(), http.StatusFound)
		return
	}

	setSessionCookie(w, r, h.Web.Cookies, res.Session.ID, h.Svc.AbsoluteTimeout())
	http.Redirect(w, r, res.Landing, http.StatusFound)
}
