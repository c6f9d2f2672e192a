package access

import (
	"net/http"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

// Landing pages per role.
const (
	AdminDashboardPath      = "/admin/dashboard"
	InstructorDashboardPath = "/instructor/dashboard"
	StudentDashboardPath    = "/student/dashboard"
	AccessDeniedPath        = "/access-denied"
)

var (
	adminRoles      = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleSuperAdmin}
	instructorRoles = []domainauth.Role{domainauth.RoleInstructor, domainauth.RoleAdmin, domainauth.RoleSuperAdmin}
)

// DefaultPolicy returns the LMS route table.
//
// API surface: unmatched routes require authentication.
// Page surface: unmatched routes are public.
func DefaultPolicy() *Policy {
	api := SurfaceRules{
		Fallback: Authenticated(),
		Rules: []Rule{
			{Prefix: "/api/auth/login", Access: Public()},
			{Prefix: "/api/auth/register", Access: Public()},
			{Prefix: "/api/auth/logout", Access: Public()},
			{Prefix: "/api/auth/me", Access: Authenticated()},
			{Method: http.MethodGet, Prefix: "/api/courses", Access: Public()},
			{Prefix: "/api/courses", Access: AnyOf(instructorRoles...)},
			{Prefix: "/api/enrollments", Access: AnyOf(domainauth.RoleStudent)},
			{Prefix: "/api/admin", Access: AnyOf(adminRoles...)},
			{Prefix: "/api/me", Access: Authenticated()},
		},
	}
	page := SurfaceRules{
		Fallback: Public(),
		Rules: []Rule{
			{Prefix: "/admin", Access: AnyOf(adminRoles...)},
			{Prefix: "/instructor", Access: AnyOf(instructorRoles...)},
			{Prefix: "/student", Access: AnyOf(domainauth.RoleStudent)},
		},
	}
	return NewPolicy(api, page)
}

// LandingPath returns the dashboard a role lands on after authentication.
func LandingPath(role domainauth.Role) string {
	switch role {
	case domainauth.RoleAdmin, domainauth.RoleSuperAdmin:
		return AdminDashboardPath
	case domainauth.RoleInstructor:
		return InstructorDashboardPath
	default:
		return StudentDashboardPath
	}
}

// LandingFor picks the landing page for a resolved role. The hint (a role name
// supplied by the client) only selects among dashboards the resolved role may
// already visit; it never grants access.
func (p *Policy) LandingFor(resolved domainauth.Role, hint string) string {
	if hinted, ok := domainauth.ParseRole(hint); ok {
		candidate := LandingPath(hinted)
		if p.RoleMayVisit(resolved, candidate) {
			return candidate
		}
	}
	return LandingPath(resolved)
}
