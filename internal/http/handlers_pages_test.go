package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	"github.com/starter-squad/lms/internal/testutil"
)

func TestHome(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testFrontendURL+"/courses", rec.Header().Get("Location"))

	tests := []struct {
		identity domainauth.Identity
		want     string
	}{
		{adminIdentity, "/admin/dashboard"},
		{instructorIdentity, "/instructor/dashboard"},
		{studentIdentity, "/student/dashboard"},
	}
	for _, tt := range tests {
		t.Run(string(tt.identity.Role), func(t *testing.T) {
			rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/", nil), f.sessionFor(t, tt.identity)))
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestAccessDeniedPage(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/access-denied", nil), f.sessionFor(t, studentIdentity)))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Access denied")
	assert.Contains(t, rec.Body.String(), "Sam Student")
}

func TestAdminDashboard(t *testing.T) {
	f := newRouterFixture(t)
	reason := "needs more detail"
	f.courses.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.CourseStatusPending, *opts.Status)
			return []*model.Course{{
				ID: courseID, Title: "Distributed Systems <101>", Status: model.CourseStatusPending,
				RejectionReason: &reason, UpdatedAt: testutil.TestTime(),
			}}, nil
		})
	f.users.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*model.User{
		{ID: studentUserID, Email: studentIdentity.Email, Name: studentIdentity.Name, Role: domainauth.RoleStudent, Active: true},
	}, nil)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), f.sessionFor(t, adminIdentity)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Distributed Systems &lt;101&gt;", "titles are escaped")
	assert.Contains(t, body, studentIdentity.Email)
	assert.Contains(t, body, `action="/admin/courses/`+courseID+`/approve"`)
	assert.Contains(t, body, `name="csrf_token"`)
}

func TestAdminDashboard_ServiceErrorRendersErrorPage(t *testing.T) {
	f := newRouterFixture(t)
	f.courses.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), f.sessionFor(t, adminIdentity)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestAdminPageActions(t *testing.T) {
	f := newRouterFixture(t)
	adminSession := f.sessionFor(t, adminIdentity)
	studentSession := f.sessionFor(t, studentIdentity)

	t.Run("disable user ends their sessions", func(t *testing.T) {
		f.users.EXPECT().SetActive(gomock.Any(), studentUserID, false).
			Return(&model.User{ID: studentUserID, Active: false}, nil)

		rec := f.do(withSession(formRequest("/admin/users/"+studentUserID+"/active", url.Values{"active": {"false"}}), adminSession))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
		page := f.do(withSession(httptest.NewRequest(http.MethodGet, "/student/dashboard", nil), studentSession))
		assert.Equal(t, sessionExpiredLocation, page.Header().Get("Location"))
	})

	t.Run("invalid role renders a 400 page", func(t *testing.T) {
		rec := f.do(withSession(formRequest("/admin/users/"+studentUserID+"/role", url.Values{"role": {"ROOT"}}), adminSession))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("approve", func(t *testing.T) {
		f.courses.EXPECT().GetByID(gomock.Any(), courseID).
			Return(&model.Course{ID: courseID, Status: model.CourseStatusPending}, nil)
		f.courses.EXPECT().Transition(gomock.Any(), model.CourseTransition{
			CourseID: courseID, From: model.CourseStatusPending, To: model.CourseStatusPublished,
		}).Return(&model.Course{ID: courseID, Status: model.CourseStatusPublished}, nil)

		rec := f.do(withSession(formRequest("/admin/courses/"+courseID+"/approve", nil), adminSession))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("reject without reason", func(t *testing.T) {
		rec := f.do(withSession(formRequest("/admin/courses/"+courseID+"/reject", nil), adminSession))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInstructorPages(t *testing.T) {
	f := newRouterFixture(t)
	session := f.sessionFor(t, instructorIdentity)

	t.Run("dashboard lists own courses", func(t *testing.T) {
		f.courses.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
				require.NotNil(t, opts.InstructorID)
				assert.Equal(t, instructorUserID, *opts.InstructorID)
				return []*model.Course{
					{ID: courseID, Title: "Draft course", Status: model.CourseStatusDraft, InstructorID: instructorUserID},
				}, nil
			})

		rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/instructor/dashboard", nil), session))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Draft course")
		assert.Contains(t, rec.Body.String(), "/instructor/courses/"+courseID+"/submit")
	})

	t.Run("create draft", func(t *testing.T) {
		f.courses.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
				assert.Equal(t, instructorUserID, req.InstructorID)
				assert.Equal(t, "Go in Practice", req.Title)
				return &model.Course{ID: courseID, Title: req.Title, Status: model.CourseStatusDraft}, nil
			})

		rec := f.do(withSession(formRequest("/instructor/courses", url.Values{"title": {" Go in Practice "}}), session))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/instructor/dashboard", rec.Header().Get("Location"))
	})

	t.Run("submit someone else's course", func(t *testing.T) {
		f.courses.EXPECT().GetByID(gomock.Any(), courseID).
			Return(&model.Course{ID: courseID, Status: model.CourseStatusDraft, InstructorID: adminUserID}, nil)

		rec := f.do(withSession(formRequest("/instructor/courses/"+courseID+"/submit", nil), session))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("resubmit rejected course", func(t *testing.T) {
		f.courses.EXPECT().GetByID(gomock.Any(), courseID).
			Return(&model.Course{ID: courseID, Status: model.CourseStatusRejected, InstructorID: instructorUserID}, nil)
		f.courses.EXPECT().Transition(gomock.Any(), gomock.Any()).
			Return(&model.Course{ID: courseID, Status: model.CourseStatusPending}, nil)

		rec := f.do(withSession(formRequest("/instructor/courses/"+courseID+"/resubmit", nil), session))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestStudentDashboard(t *testing.T) {
	f := newRouterFixture(t)
	done := testutil.TestTime()
	f.enrollments.EXPECT().ListByUser(gomock.Any(), studentUserID).Return([]*model.Enrollment{
		{ID: "e-1", UserID: studentUserID, CourseID: courseID, CourseTitle: "Intro to Go", Completed: true, EnrolledAt: done, CompletionDate: &done},
	}, nil)

	rec := f.do(withSession(httptest.NewRequest(http.MethodGet, "/student/dashboard", nil), f.sessionFor(t, studentIdentity)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intro to Go")
	assert.Contains(t, rec.Body.String(), "completed")
}
