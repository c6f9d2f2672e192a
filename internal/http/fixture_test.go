package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/starter-squad/lms/internal/adapters/token"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/mocks"
	authmocks "github.com/starter-squad/lms/internal/mocks/auth"
	"github.com/starter-squad/lms/internal/observability/metrics"
	"github.com/starter-squad/lms/internal/service"
	"github.com/starter-squad/lms/internal/testutil"
)

const (
	testSecret      = "0123456789abcdef0123456789abcdef"
	testFrontendURL = "https://app.example.com"
	testCSRFToken   = "csrf-test-token"

	studentUserID    = "5f0c6a9e-1d2b-4c3d-8e4f-a1b2c3d4e5f6"
	instructorUserID = "6a1d7b0f-2e3c-4d4e-9f50-b2c3d4e5f6a7"
	adminUserID      = "7b2e8c10-3f4d-4e5f-a061-c3d4e5f6a7b8"
	courseID         = "8c3f9d21-4a5e-4f60-b172-d4e5f6a7b8c9"
)

var (
	studentIdentity = domainauth.Identity{
		UserID: studentUserID, Email: "student@example.com", Name: "Sam Student",
		PasswordHash: "student-pass", Role: domainauth.RoleStudent, Active: true,
	}
	instructorIdentity = domainauth.Identity{
		UserID: instructorUserID, Email: "instructor@example.com", Name: "Ivy Instructor",
		PasswordHash: "instructor-pass", Role: domainauth.RoleInstructor, Active: true,
	}
	adminIdentity = domainauth.Identity{
		UserID: adminUserID, Email: "admin@example.com", Name: "Ada Admin",
		PasswordHash: "admin-pass", Role: domainauth.RoleAdmin, Active: true,
	}
)

// routerFixture wires the real router and services over in-memory session and
// credential stores and gomock repositories.
type routerFixture struct {
	handler     http.Handler
	auth        *service.AuthService
	issuer      *token.Issuer
	clock       *testutil.Clock
	sessions    *authmocks.MemorySessionStore
	creds       *authmocks.StaticCredentialStore
	users       *mocks.MockUserRepository
	hasher      *mocks.MockPasswordHasher
	courses     *mocks.MockCourseRepository
	enrollments *mocks.MockEnrollmentRepository
	registry    *prometheus.Registry
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	clock := testutil.NewClock(testutil.TestTime())

	issuer, err := token.NewIssuer(token.Config{Secret: []byte(testSecret), Issuer: "lms-test", Now: clock.Now})
	require.NoError(t, err)
	sessions := authmocks.NewMemorySessionStore()
	sessions.Now = clock.Now
	creds := authmocks.NewStaticCredentialStore(studentIdentity, instructorIdentity, adminIdentity)
	reg := prometheus.NewRegistry()
	m := metrics.NewAuthMetrics(reg)

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Deps:      service.AuthDeps{Credentials: creds, Tokens: issuer, Sessions: sessions},
		Config:    service.AuthConfig{IdleTimeout: 30 * time.Minute, AbsoluteTimeout: 12 * time.Hour, Now: clock.Now},
		Observers: service.AuthObservers{Metrics: m},
	})

	f := &routerFixture{
		auth:        authSvc,
		issuer:      issuer,
		clock:       clock,
		sessions:    sessions,
		creds:       creds,
		users:       mocks.NewMockUserRepository(ctrl),
		hasher:      mocks.NewMockPasswordHasher(ctrl),
		courses:     mocks.NewMockCourseRepository(ctrl),
		enrollments: mocks.NewMockEnrollmentRepository(ctrl),
		registry:    reg,
	}

	h, err := NewRouter(RouterServices{
		Auth:        authSvc,
		Users:       service.NewUserService(service.UserServiceOptions{Repo: f.users, Hasher: f.hasher, Revoker: authSvc}),
		Courses:     service.NewCourseService(service.CourseServiceOptions{Repo: f.courses}),
		Enrollments: service.NewEnrollmentService(service.EnrollmentServiceOptions{Repo: f.enrollments}),
		Web: WebConfig{
			Cookies:     CookieConfig{Name: DefaultSessionCookieName, Path: "/"},
			FrontendURL: testFrontendURL,
		},
		CORSAllowedOrigins: []string{testFrontendURL},
		Metrics:            m,
	})
	require.NoError(t, err)
	f.handler = h
	return f
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) tokenFor(t *testing.T, id domainauth.Identity) string {
	t.Helper()
	tok, _, err := f.issuer.Issue(id)
	require.NoError(t, err)
	return tok
}

// sessionFor establishes a server session through the bridge and returns its id.
func (f *routerFixture) sessionFor(t *testing.T, id domainauth.Identity) string {
	t.Helper()
	res, err := f.auth.Bridge(context.Background(), service.BridgeInput{Token: f.tokenFor(t, id)})
	require.NoError(t, err)
	return res.Session.ID
}

func withSession(req *http.Request, id string) *http.Request {
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: id})
	return req
}

func withBearer(req *http.Request, tok string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// formRequest builds a page form post carrying a valid double-submit CSRF token.
func formRequest(target string, form url.Values) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFormField, testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
