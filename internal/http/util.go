package httpx

import (
	"net/http"
	"strconv"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := min(max(parseIntQuery(r, "limit", defLimit), 1), maxLimit)
	off := max(parseIntQuery(r, "offset", 0), 0)
	return lim, off
}

// requirePrincipal returns the bound principal or writes a 401. Routes behind
// the access middleware always have one; this guards handlers mounted on
// public prefixes.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*domainauth.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     domainauth.ErrAuthenticationRequired,
		})
		return nil, false
	}
	return p, true
}
