package config

import (
	"fmt"
	"net/url"
	"strings"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the server-rendered pages (e.g., "https://lms.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookiePath scopes the session cookie when the app is mounted below "/".
	CookiePath string `env:"APP_COOKIE_PATH" envDefault:"/"`

	// FrontendURL is the SPA origin; login and logout redirects land there.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// CORSAllowedOrigins lists origins allowed to call the API with credentials.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// CompressionEnabled enables gzip compression for text responses.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}

	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	h.FrontendURL = strings.TrimRight(strings.TrimSpace(h.FrontendURL), "/")
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	h.CookiePath = strings.TrimSpace(h.CookiePath)
	if !strings.HasPrefix(h.CookiePath, "/") {
		h.CookiePath = "/" + h.CookiePath
	}

	origins := make([]string, 0, len(h.CORSAllowedOrigins)+1)
	seen := make(map[string]bool)
	for _, o := range append([]string{h.FrontendURL}, h.CORSAllowedOrigins...) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	h.CORSAllowedOrigins = origins
}

// Validate rejects a frontend URL that cannot serve as a redirect target.
func (h *HTTPConfig) Validate() error {
	if h.FrontendURL == "" {
		return nil
	}
	u, err := url.Parse(h.FrontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("FRONTEND_URL must be an absolute URL, got %q", h.FrontendURL)
	}
	return nil
}
