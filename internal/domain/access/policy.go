// Package access holds the route classifier and the authorization policy table.
// It is pure: no HTTP types, no I/O.
package access

import (
	"net/http"
	"path"
	"strings"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

// Surface is one of the two authority domains a request can belong to.
type Surface string

const (
	// SurfaceAPI is the stateless JSON API consumed by the single-page client.
	SurfaceAPI Surface = "api"
	// SurfacePage is the server-rendered page surface.
	SurfacePage Surface = "page"
)

const apiPrefix = "/api"

// Classify partitions a request path into exactly one surface.
func Classify(p string) Surface {
	if matchesPrefix(normalizePath(p), apiPrefix) {
		return SurfaceAPI
	}
	return SurfacePage
}

// Kind describes what a rule requires of the caller.
type Kind int

const (
	KindPublic Kind = iota
	KindAuthenticated
	KindRoles
)

// Access is the requirement attached to a rule.
type Access struct {
	Kind  Kind
	Roles domainauth.RoleSet
}

// Public allows every caller.
func Public() Access { return Access{Kind: KindPublic} }

// Authenticated allows any bound identity.
func Authenticated() Access { return Access{Kind: KindAuthenticated} }

// AnyOf allows identities whose single role is exactly one of roles.
func AnyOf(roles ...domainauth.Role) Access {
	return Access{Kind: KindRoles, Roles: domainauth.RoleSet(roles)}
}

// Decision is the outcome of evaluating a request against the policy.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "authentication_required"
	case DenyForbidden:
		return "authorization_denied"
	default:
		return "unknown"
	}
}

// Evaluate checks the requirement against the bound principal (nil when none).
func (a Access) Evaluate(p *domainauth.Principal) Decision {
	switch a.Kind {
	case KindPublic:
		return Allow
	case KindAuthenticated:
		if p == nil {
			return DenyUnauthenticated
		}
		return Allow
	case KindRoles:
		if p == nil {
			return DenyUnauthenticated
		}
		if a.Roles.Contains(p.Role) {
			return Allow
		}
		return DenyForbidden
	default:
		return DenyForbidden
	}
}

// Rule binds a path prefix (and optionally a method) to a requirement.
// Prefix matching is segment aware: "/admin" matches "/admin" and "/admin/x"
// but not "/administrator".
type Rule struct {
	Method string
	Prefix string
	Access Access
}

// SurfaceRules is the rule list for one surface plus the requirement applied to
// requests no rule matches.
type SurfaceRules struct {
	Rules    []Rule
	Fallback Access
}

// Policy evaluates requests against per-surface rule tables.
type Policy struct {
	surfaces map[Surface]SurfaceRules
}

// NewPolicy builds a policy from explicit rule tables.
func NewPolicy(api, page SurfaceRules) *Policy {
	return &Policy{surfaces: map[Surface]SurfaceRules{
		SurfaceAPI:  api,
		SurfacePage: page,
	}}
}

// Match returns the surface and the requirement that governs method+path.
// The most specific rule wins: the longest matching prefix, and at equal length a
// method-qualified rule beats a method-less one.
func (p *Policy) Match(method, rawPath string) (Surface, Access) {
	clean := normalizePath(rawPath)
	surface := Classify(clean)
	table := p.surfaces[surface]
	method = normalizeMethod(method)

	best := -1
	bestLen := -1
	bestHasMethod := false
	for i, rule := range table.Rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if !matchesPrefix(clean, rule.Prefix) {
			continue
		}
		l := len(rule.Prefix)
		hasMethod := rule.Method != ""
		if l > bestLen || (l == bestLen && hasMethod && !bestHasMethod) {
			best, bestLen, bestHasMethod = i, l, hasMethod
		}
	}
	if best < 0 {
		return surface, table.Fallback
	}
	return surface, table.Rules[best].Access
}

// Decide evaluates method+path for principal.
func (p *Policy) Decide(method, rawPath string, principal *domainauth.Principal) (Surface, Decision) {
	surface, acc := p.Match(method, rawPath)
	return surface, acc.Evaluate(principal)
}

// RoleMayVisit reports whether a caller with role may GET the given page path.
func (p *Policy) RoleMayVisit(role domainauth.Role, pagePath string) bool {
	_, d := p.Decide(http.MethodGet, pagePath, &domainauth.Principal{Role: role})
	return d == Allow
}

func normalizeMethod(m string) string {
	m = strings.ToUpper(m)
	if m == http.MethodHead {
		return http.MethodGet
	}
	return m
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func matchesPrefix(p, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
