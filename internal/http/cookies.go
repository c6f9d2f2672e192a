package httpx

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSessionCookieName is used when CookieConfig.Name is empty.
const DefaultSessionCookieName = "session_id"

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// WebConfig groups the browser-facing settings shared by the auth middleware
// and the page handlers.
type WebConfig struct {
	Cookies CookieConfig
	// FrontendURL is the SPA origin that owns the login screen.
	FrontendURL string
}

// frontendURL joins FrontendURL with path and query. Without a configured
// frontend the path is returned relative to this host.
func (c WebConfig) frontendURL(path string, query url.Values) string {
	u := strings.TrimRight(c.FrontendURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c WebConfig) sessionExpiredURL() string {
	return c.frontendURL("/login", url.Values{"session_expired": {"true"}})
}

func (c WebConfig) loggedOutURL() string {
	return c.frontendURL("/login", url.Values{"logout": {"true"}})
}

// isSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// setSessionCookie writes the session cookie. MaxAge is the absolute session
// lifetime; the idle timeout is enforced server-side.
func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig, id string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name(),
		Value:    id,
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// clearSessionCookie expires the session cookie. It mirrors the attributes used
// when setting it so every browser drops the same cookie.
func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name(),
		Value:    "",
		Path:     cfg.path(),
		Domain:   cfg.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionIDFromRequest returns the presented session id, or "".
func sessionIDFromRequest(r *http.Request, cfg CookieConfig) string {
	c, err := r.Cookie(cfg.name())
	if err != nil {
		return ""
	}
	return c.Value
}

// bearerToken extracts the token from an "Authorization: Bearer <jwt>" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
