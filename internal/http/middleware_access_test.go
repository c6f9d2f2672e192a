package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

const sessionExpiredLocation = testFrontendURL + "/login?session_expired=true"

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodePrincipal(t *testing.T, rec *httptest.ResponseRecorder) domainauth.Principal {
	t.Helper()
	var env struct {
		Data domainauth.Principal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestAccessControl_APIUnauthenticated(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/courses", `{"title":"Go"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_required", decodeError(t, rec).Error)
	assert.Zero(t, f.sessions.Saves, "a denial never creates a session")
	assert.Nil(t, findCookie(rec, DefaultSessionCookieName))
}

func TestAccessControl_APIForbiddenForStudentBearer(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), f.tokenFor(t, studentIdentity)))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "authorization_denied", decodeError(t, rec).Error)
}

func TestAccessControl_APIDeletedIdentity(t *testing.T) {
	f := newRouterFixture(t)
	tok := f.tokenFor(t, studentIdentity)
	f.creds.Remove(studentIdentity.Email)

	rec := f.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/enrollments", nil), tok))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "identity_not_found", decodeError(t, rec).Error)
}

func TestAccessControl_APIDeactivatedIdentity(t *testing.T) {
	f := newRouterFixture(t)
	tok := f.tokenFor(t, studentIdentity)
	disabled := studentIdentity
	disabled.Active = false
	f.creds.Put(disabled)

	rec := f.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/me", nil), tok))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "identity_not_found", decodeError(t, rec).Error)
}

func TestAccessControl_APIRoleChangeAppliesToExistingToken(t *testing.T) {
	f := newRouterFixture(t)
	tok := f.tokenFor(t, instructorIdentity)
	demoted := instructorIdentity
	demoted.Role = domainauth.RoleStudent
	f.creds.Put(demoted)

	rec := f.do(withBearer(jsonRequest(http.MethodPost, "/api/courses", `{"title":"Go"}`), tok))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccessControl_APIExpiredToken(t *testing.T) {
	f := newRouterFixture(t)
	tok := f.tokenFor(t, studentIdentity)
	f.clock.Advance(48 * time.Hour)

	rec := f.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/me", nil), tok))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication_required", decodeError(t, rec).Error)
}

func TestAccessControl_BearerTakesPrecedenceOverCookie(t *testing.T) {
	f := newRouterFixture(t)
	adminSession := f.sessionFor(t, adminIdentity)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/me", nil), adminSession)
	rec := f.do(withBearer(req, f.tokenFor(t, studentIdentity)))

	require.Equal(t, http.StatusOK, rec.Code)
	p := decodePrincipal(t, rec)
	assert.Equal(t, studentUserID, p.UserID)
	assert.Equal(t, domainauth.SourceToken, p.Source)
}

func TestAccessControl_APIFallsBackToSessionCookie(t *testing.T) {
	f := newRouterFixture(t)
	id := f.sessionFor(t, instructorIdentity)

	t.Run("no bearer", func(t *testing.T) {
		rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), id))
		require.Equal(t, http.StatusOK, rec.Code)
		p := decodePrincipal(t, rec)
		assert.Equal(t, instructorUserID, p.UserID)
		assert.Equal(t, domainauth.SourceSession, p.Source)
	})

	t.Run("invalid bearer", func(t *testing.T) {
		req := withBearer(withSession(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), id), "not-a-jwt")
		rec := f.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domainauth.SourceSession, decodePrincipal(t, rec).Source)
	})
}

func TestAccessControl_PageUnauthenticatedRedirectsToLogin(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/student/dashboard", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, sessionExpiredLocation, rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, DefaultSessionCookieName), "nothing to clear without a cookie")
}

func TestAccessControl_PageIgnoresBearer(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(withBearer(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), f.tokenFor(t, adminIdentity)))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, sessionExpiredLocation, rec.Header().Get("Location"))
}

func TestAccessControl_PageForbiddenRedirectsToAccessDenied(t *testing.T) {
	f := newRouterFixture(t)
	id := f.sessionFor(t, studentIdentity)

	t.Run("view", func(t *testing.T) {
		rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), id))
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/access-denied", rec.Header().Get("Location"))
	})

	t.Run("mutation", func(t *testing.T) {
		// No repository expectations: any call would fail the test.
		req := withSession(formRequest("/admin/users/"+adminUserID+"/role", url.Values{"role": {"STUDENT"}}), id)
		rec := f.do(req)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/access-denied", rec.Header().Get("Location"))
	})
}

func TestAccessControl_PageExpiredSessionClearsCookie(t *testing.T) {
	f := newRouterFixture(t)
	id := f.sessionFor(t, adminIdentity)
	f.clock.Advance(31 * time.Minute)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), id))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, sessionExpiredLocation, rec.Header().Get("Location"))
	c := findCookie(rec, DefaultSessionCookieName)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.Zero(t, f.sessions.Len())
}

func TestAccessControl_SessionRevokedOnRoleChange(t *testing.T) {
	f := newRouterFixture(t)
	instructorSession := f.sessionFor(t, instructorIdentity)

	f.users.EXPECT().
		UpdateRole(gomock.Any(), instructorUserID, domainauth.RoleStudent).
		Return(&model.User{ID: instructorUserID, Email: instructorIdentity.Email, Role: domainauth.RoleStudent}, nil)

	req := withBearer(jsonRequest(http.MethodPatch, "/api/admin/users/"+instructorUserID+"/role", `{"role":"STUDENT"}`), f.tokenFor(t, adminIdentity))
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(withSession(httptest.NewRequest(http.MethodGet, "/instructor/dashboard", nil), instructorSession))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, sessionExpiredLocation, rec.Header().Get("Location"))
}

func TestAccessControl_CancelledRequestNeverReachesHandler(t *testing.T) {
	f := newRouterFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := withBearer(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), f.tokenFor(t, adminIdentity)).WithContext(ctx)
	rec := f.do(req)

	assert.Empty(t, rec.Body.String())
}

func TestAccessControl_RecordsDenials(t *testing.T) {
	f := newRouterFixture(t)
	studentSession := f.sessionFor(t, studentIdentity)

	f.do(httptest.NewRequest(http.MethodGet, "/api/enrollments", nil))
	f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), studentSession))

	expected := `
# HELP lms_auth_denials_total Requests denied by the authorization policy.
# TYPE lms_auth_denials_total counter
lms_auth_denials_total{decision="authentication_required",surface="api"} 1
lms_auth_denials_total{decision="authorization_denied",surface="page"} 1
`
	require.NoError(t, promtest.GatherAndCompare(f.registry, strings.NewReader(expected), "lms_auth_denials_total"))
}

func TestAccessControl_PublicRoutes(t *testing.T) {
	f := newRouterFixture(t)
	f.courses.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*model.Course{
		{ID: courseID, Title: "Intro to Go", Status: model.CourseStatusPublished},
	}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intro to Go")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessControl_UnknownAPIRoute(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unmatched API routes require authentication")

	rec = f.do(withBearer(httptest.NewRequest(http.MethodGet, "/api/unknown", nil), f.tokenFor(t, studentIdentity)))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error)
}
