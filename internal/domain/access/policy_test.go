package access

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

func principal(role domainauth.Role) *domainauth.Principal {
	return &domainauth.Principal{UserID: "u1", Role: role}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Surface
	}{
		{"/api", SurfaceAPI},
		{"/api/", SurfaceAPI},
		{"/api/courses", SurfaceAPI},
		{"/apis", SurfacePage},
		{"/", SurfacePage},
		{"", SurfacePage},
		{"/admin/dashboard", SurfacePage},
		{"/auth/redirect", SurfacePage},
		{"/admin/../api/admin/users", SurfaceAPI},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestDefaultPolicy_API(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		method    string
		path      string
		principal *domainauth.Principal
		want      Decision
	}{
		{"login is public", http.MethodPost, "/api/auth/login", nil, Allow},
		{"register is public", http.MethodPost, "/api/auth/register", nil, Allow},
		{"catalog GET is public", http.MethodGet, "/api/courses", nil, Allow},
		{"catalog HEAD is public", http.MethodHead, "/api/courses/123", nil, Allow},
		{"course create needs identity", http.MethodPost, "/api/courses", nil, DenyUnauthenticated},
		{"student cannot create course", http.MethodPost, "/api/courses", principal(domainauth.RoleStudent), DenyForbidden},
		{"instructor creates course", http.MethodPost, "/api/courses", principal(domainauth.RoleInstructor), Allow},
		{"me requires identity", http.MethodGet, "/api/auth/me", nil, DenyUnauthenticated},
		{"unmatched api denies anonymous", http.MethodGet, "/api/unknown", nil, DenyUnauthenticated},
		{"unmatched api allows identity", http.MethodGet, "/api/unknown", principal(domainauth.RoleStudent), Allow},
		{"admin api forbids instructor", http.MethodGet, "/api/admin/users", principal(domainauth.RoleInstructor), DenyForbidden},
		{"admin api allows super admin", http.MethodGet, "/api/admin/users", principal(domainauth.RoleSuperAdmin), Allow},
		{"enrollments student only", http.MethodPost, "/api/enrollments", principal(domainauth.RoleAdmin), DenyForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, got := p.Decide(tt.method, tt.path, tt.principal)
			assert.Equal(t, SurfaceAPI, surface)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultPolicy_Pages(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name      string
		path      string
		principal *domainauth.Principal
		want      Decision
	}{
		{"root is public", "/", nil, Allow},
		{"bridge is public", "/auth/redirect", nil, Allow},
		{"access denied is public", "/access-denied", nil, Allow},
		{"admin needs identity", "/admin/dashboard", nil, DenyUnauthenticated},
		{"student forbidden from admin", "/admin/dashboard", principal(domainauth.RoleStudent), DenyForbidden},
		{"instructor forbidden from admin", "/admin", principal(domainauth.RoleInstructor), DenyForbidden},
		{"admin visits instructor pages", "/instructor/dashboard", principal(domainauth.RoleAdmin), Allow},
		{"prefix is segment aware", "/administrator", nil, Allow},
		{"dot segments are cleaned", "/public/../admin/users", principal(domainauth.RoleStudent), DenyForbidden},
		{"student dashboard", "/student/dashboard", principal(domainauth.RoleStudent), Allow},
		{"admin has no student dashboard", "/student/dashboard", principal(domainauth.RoleAdmin), DenyForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface, got := p.Decide(http.MethodGet, tt.path, tt.principal)
			assert.Equal(t, SurfacePage, surface)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_MostSpecificWins(t *testing.T) {
	p := NewPolicy(SurfaceRules{
		Fallback: Authenticated(),
		Rules: []Rule{
			{Prefix: "/api/reports", Access: AnyOf(domainauth.RoleAdmin)},
			{Prefix: "/api/reports/public", Access: Public()},
			{Method: http.MethodGet, Prefix: "/api/reports", Access: Authenticated()},
		},
	}, SurfaceRules{Fallback: Public()})

	_, d := p.Decide(http.MethodGet, "/api/reports/public/summary", nil)
	assert.Equal(t, Allow, d, "longer prefix wins")

	_, d = p.Decide(http.MethodGet, "/api/reports/x", principal(domainauth.RoleStudent))
	assert.Equal(t, Allow, d, "method-qualified rule wins at equal length")

	_, d = p.Decide(http.MethodDelete, "/api/reports/x", principal(domainauth.RoleStudent))
	assert.Equal(t, DenyForbidden, d)
}

func TestLandingFor(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, InstructorDashboardPath, p.LandingFor(domainauth.RoleInstructor, "ADMIN"),
		"hint cannot send an instructor to the admin dashboard")
	assert.Equal(t, InstructorDashboardPath, p.LandingFor(domainauth.RoleAdmin, "INSTRUCTOR"),
		"admin may choose the instructor dashboard")
	assert.Equal(t, AdminDashboardPath, p.LandingFor(domainauth.RoleSuperAdmin, ""))
	assert.Equal(t, StudentDashboardPath, p.LandingFor(domainauth.RoleStudent, "bogus"))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "authentication_required", DenyUnauthenticated.String())
	assert.Equal(t, "authorization_denied", DenyForbidden.String())
}
