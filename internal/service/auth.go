package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starter-squad/lms/internal/domain/access"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/observability/metrics"
	"github.com/starter-squad/lms/internal/ports"
)

const (
	// DefaultIdleTimeout is applied when AuthConfig.IdleTimeout is zero.
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultAbsoluteTimeout is applied when AuthConfig.AbsoluteTimeout is zero.
	DefaultAbsoluteTimeout = 12 * time.Hour

	sessionIDBytes = 32
)

// AuthDeps are the collaborators AuthService requires.
type AuthDeps struct {
	Credentials ports.CredentialStore
	Tokens      ports.TokenIssuer
	Sessions    ports.SessionStore
}

// AuthConfig tunes session lifetimes and injects the clock, id source and route policy.
type AuthConfig struct {
	IdleTimeout     time.Duration
	AbsoluteTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// NewSessionID defaults to 256 bits from crypto/rand, base64url encoded.
	NewSessionID func() (string, error)
	// Policy defaults to access.DefaultPolicy().
	Policy *access.Policy
}

// AuthObservers are optional logging and metrics sinks.
type AuthObservers struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Deps      AuthDeps
	Config    AuthConfig
	Observers AuthObservers
}

// AuthService owns both authentication protocols: bearer tokens for the API and
// server sessions for rendered pages. It is the only place sessions are created.
type AuthService struct {
	creds    ports.CredentialStore
	tokens   ports.TokenIssuer
	sessions ports.SessionStore

	idle     time.Duration
	absolute time.Duration
	now      func() time.Time
	newID    func() (string, error)
	policy   *access.Policy

	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Deps.Credentials == nil {
		panic("NewAuthService: Credentials is required")
	}
	if opts.Deps.Tokens == nil {
		panic("NewAuthService: Tokens is required")
	}
	if opts.Deps.Sessions == nil {
		panic("NewAuthService: Sessions is required")
	}

	cfg := opts.Config
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.AbsoluteTimeout <= 0 {
		cfg.AbsoluteTimeout = DefaultAbsoluteTimeout
	}
	if cfg.IdleTimeout > cfg.AbsoluteTimeout {
		cfg.IdleTimeout = cfg.AbsoluteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewSessionID == nil {
		cfg.NewSessionID = GenerateSessionID
	}
	if cfg.Policy == nil {
		cfg.Policy = access.DefaultPolicy()
	}

	logger := opts.Observers.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		creds:    opts.Deps.Credentials,
		tokens:   opts.Deps.Tokens,
		sessions: opts.Deps.Sessions,
		idle:     cfg.IdleTimeout,
		absolute: cfg.AbsoluteTimeout,
		now:      cfg.Now,
		newID:    cfg.NewSessionID,
		policy:   cfg.Policy,
		logger:   logger.With("component", "auth"),
		metrics:  metrics.OrNop(opts.Observers.Metrics),
	}
}

// AbsoluteTimeout is the maximum session lifetime, used for cookie Max-Age.
func (s *AuthService) AbsoluteTimeout() time.Duration { return s.absolute }

// LoginInput carries credentials plus the session id the client presented, if any.
type LoginInput struct {
	Email              string
	Password           string
	PresentedSessionID string
}

// LoginResult is a successful password login. Session is nil for roles that do
// not render server-side pages.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  domainauth.Identity
	Session   *domainauth.Session
}

// Login verifies credentials, issues a bearer token and, for session-eligible
// roles, establishes a fresh server session. Unknown email and wrong password
// both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := domainauth.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		s.metrics.Login("invalid_credentials")
		return nil, domainauth.ErrInvalidCredentials
	}

	identity, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainauth.ErrIdentityNotFound) {
			s.loginFailed(ctx, "invalid_credentials", "unknown_email")
			return nil, domainauth.ErrInvalidCredentials
		}
		s.metrics.Login("error")
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if !s.creds.VerifyPassword(ctx, identity, in.Password) {
		s.loginFailed(ctx, "invalid_credentials", "bad_password")
		return nil, domainauth.ErrInvalidCredentials
	}
	if !identity.Active {
		s.loginFailed(ctx, "account_disabled", "account_disabled")
		return nil, domainauth.ErrAccountDisabled
	}

	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		s.metrics.Login("error")
		return nil, fmt.Errorf("issue token: %w", err)
	}

	res := &LoginResult{Token: token, ExpiresAt: expiresAt, Identity: identity}
	if identity.Role.SessionEligible() {
		sess, sessErr := s.establishSession(ctx, identity, in.PresentedSessionID)
		if sessErr != nil {
			s.metrics.Login("error")
			return nil, sessErr
		}
		res.Session = &sess
	} else {
		// Token-only logins still end any session the client presented.
		s.dropPresented(ctx, in.PresentedSessionID)
	}

	s.metrics.Login("success")
	s.logger.InfoContext(ctx, "login succeeded",
		"event", "login_success",
		"user_id", identity.UserID,
		"role", identity.Role,
		"session", res.Session != nil,
	)
	return res, nil
}

func (s *AuthService) loginFailed(ctx context.Context, result, reason string) {
	s.metrics.Login(result)
	s.logger.InfoContext(ctx, "login failed", "event", "login_failure", "reason", reason)
}

// BridgeInput is the token-to-session upgrade request. RoleHint is untrusted.
type BridgeInput struct {
	Token              string
	RoleHint           string
	PresentedSessionID string
}

// BridgeResult is an accepted bridge: the new session and where to send the browser.
type BridgeResult struct {
	Session domainauth.Session
	Landing string
}

// Bridge converts a bearer token into a server session. The session role always
// comes from the stored identity; the hint only picks among landing pages the
// resolved role may already visit. Rejections return ErrInvalidToken or
// ErrIdentityNotFound and leave no session behind.
func (s *AuthService) Bridge(ctx context.Context, in BridgeInput) (*BridgeResult, error) {
	identity, err := s.identityForToken(ctx, in.Token)
	if err != nil {
		result := "error"
		switch {
		case errors.Is(err, domainauth.ErrInvalidToken):
			result = "rejected_token"
		case errors.Is(err, domainauth.ErrIdentityNotFound):
			result = "rejected_identity"
		}
		s.metrics.Bridge(result)
		s.logger.InfoContext(ctx, "bridge rejected", "event", "bridge_rejected", "reason", result)
		return nil, err
	}

	sess, err := s.establishSession(ctx, identity, in.PresentedSessionID)
	if err != nil {
		s.metrics.Bridge("error")
		return nil, err
	}

	landing := s.policy.LandingFor(identity.Role, in.RoleHint)
	s.metrics.Bridge("accepted")
	s.logger.InfoContext(ctx, "bridge accepted",
		"event", "bridge_accepted",
		"user_id", identity.UserID,
		"role", identity.Role,
		"hint", in.RoleHint,
	)
	return &BridgeResult{Session: sess, Landing: landing}, nil
}

// ResolveToken validates a bearer token and binds the identity it names after a
// fresh credential lookup, so role changes and deactivation apply immediately.
func (s *AuthService) ResolveToken(ctx context.Context, raw string) (*domainauth.Principal, error) {
	identity, err := s.identityForToken(ctx, raw)
	if err != nil {
		s.metrics.Resolution(string(domainauth.SourceToken), resolutionResult(err))
		return nil, err
	}
	s.metrics.Resolution(string(domainauth.SourceToken), "bound")
	p := domainauth.PrincipalFromIdentity(identity)
	return &p, nil
}

func (s *AuthService) identityForToken(ctx context.Context, raw string) (domainauth.Identity, error) {
	if raw == "" {
		return domainauth.Identity{}, domainauth.ErrInvalidToken
	}
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return domainauth.Identity{}, err
	}
	identity, err := s.creds.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domainauth.ErrIdentityNotFound) {
			return domainauth.Identity{}, domainauth.ErrIdentityNotFound
		}
		return domainauth.Identity{}, fmt.Errorf("find identity: %w", err)
	}
	if !identity.Active {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	// The email was reassigned to a different account after issuance.
	if claims.UserID != "" && claims.UserID != identity.UserID {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	return identity, nil
}

// ResolveSession loads the session behind a cookie value, enforces idle and
// absolute expiry against the service clock and records activity. Expired
// sessions are removed lazily.
func (s *AuthService) ResolveSession(ctx context.Context, id string) (*domainauth.Principal, error) {
	src := string(domainauth.SourceSession)
	if id == "" {
		s.metrics.Resolution(src, "missing")
		return nil, domainauth.ErrSessionNotFound
	}

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.metrics.Resolution(src, resolutionResult(err))
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := s.now()
	if sess.Expired(now, s.idle) {
		if delErr := s.sessions.Delete(ctx, id); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "user_id", sess.UserID, "error", delErr)
		}
		s.metrics.Resolution(src, "expired")
		return nil, domainauth.ErrSessionExpired
	}

	if err := s.sessions.Touch(ctx, id, now, s.ttlFor(sess, now)); err != nil {
		s.metrics.Resolution(src, resolutionResult(err))
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			// Deleted by a concurrent logout between Get and Touch.
			return nil, err
		}
		return nil, fmt.Errorf("touch session: %w", err)
	}

	s.metrics.Resolution(src, "bound")
	p := domainauth.PrincipalFromSession(sess)
	return &p, nil
}

// Logout destroys the session, if any. Outstanding bearer tokens stay valid
// until they expire.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "session destroyed", "event", "logout")
	return nil
}

// RevokeUser removes every session belonging to userID.
func (s *AuthService) RevokeUser(ctx context.Context, userID string) (int, error) {
	n, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	s.metrics.SessionsRevoked(n)
	if n > 0 {
		s.logger.InfoContext(ctx, "sessions revoked", "event", "sessions_revoked", "user_id", userID, "count", n)
	}
	return n, nil
}

// establishSession destroys whatever session the client presented and binds the
// identity to a freshly generated id. Nothing is written once ctx is done.
func (s *AuthService) establishSession(ctx context.Context, identity domainauth.Identity, presented string) (domainauth.Session, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Session{}, err
	}
	s.dropPresented(ctx, presented)

	id, err := s.newID()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate session id: %w", err)
	}
	if id == "" || id == presented {
		s.logger.ErrorContext(ctx, "session id regeneration failed", "user_id", identity.UserID, "error", domainauth.ErrSessionFixation)
		return domainauth.Session{}, domainauth.ErrSessionFixation
	}

	now := s.now()
	sess := domainauth.Session{
		ID:         id,
		UserID:     identity.UserID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       identity.Role,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.absolute),
	}
	if err := ctx.Err(); err != nil {
		return domainauth.Session{}, err
	}
	if err := s.sessions.Save(ctx, sess, s.ttlFor(sess, now)); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) dropPresented(ctx context.Context, presented string) {
	if presented == "" {
		return
	}
	if err := s.sessions.Delete(ctx, presented); err != nil {
		s.logger.WarnContext(ctx, "failed to delete presented session", "error", err)
	}
}

// ttlFor is the record lifetime after activity at now: the idle window, capped
// by what remains of the absolute lifetime.
func (s *AuthService) ttlFor(sess domainauth.Session, now time.Time) time.Duration {
	ttl := s.idle
	if remaining := sess.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}
	return ttl
}

func resolutionResult(err error) string {
	switch {
	case errors.Is(err, domainauth.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domainauth.ErrIdentityNotFound):
		return "identity_not_found"
	case errors.Is(err, domainauth.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, domainauth.ErrSessionExpired):
		return "expired"
	default:
		return "error"
	}
}

// GenerateSessionID returns 256 random bits encoded as unpadded base64url.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
