package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/starter-squad/lms/internal/core"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
	"github.com/starter-squad/lms/internal/mocks"
)

const (
	testCourseID     = "0d6f5a52-1b8e-4b7e-a3f1-6c2d9e8b7a10"
	testInstructorID = "3c9a7e21-5d44-4f0b-8e6a-1b2c3d4e5f60"
)

var testInstructor = domainauth.Principal{UserID: testInstructorID, Role: domainauth.RoleInstructor}

func newCourseServiceForTest(t *testing.T) (*CourseService, *mocks.MockCourseRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCourseRepository(ctrl)
	return NewCourseService(CourseServiceOptions{Repo: repo}), repo
}

func testCourse(status model.CourseStatus) *model.Course {
	return &model.Course{ID: testCourseID, InstructorID: testInstructorID, Title: "Go 101", Status: status}
}

func TestCourseService_Create(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)

	repo.EXPECT().Create(gomock.Any(), &model.CreateCourseRequest{
		Title:        "Go 101",
		Description:  "Basics",
		InstructorID: testInstructorID,
	}).Return(testCourse(model.CourseStatusDraft), nil)

	c, err := svc.Create(context.Background(), testInstructor, model.CreateCourseRequest{
		Title:        "  Go 101 ",
		Description:  "Basics",
		InstructorID: "someone-else",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusDraft, c.Status)

	_, err = svc.Create(context.Background(), testInstructor, model.CreateCourseRequest{Title: " "})
	require.True(t, apperrors.IsValidation(err))
}

func TestCourseService_Workflow(t *testing.T) {
	tests := []struct {
		name string
		from model.CourseStatus
		to   model.CourseStatus
		run  func(*CourseService) (*model.Course, error)
	}{
		{
			name: "submit",
			from: model.CourseStatusDraft, to: model.CourseStatusPending,
			run: func(s *CourseService) (*model.Course, error) {
				return s.Submit(context.Background(), testInstructor, testCourseID)
			},
		},
		{
			name: "resubmit",
			from: model.CourseStatusRejected, to: model.CourseStatusPending,
			run: func(s *CourseService) (*model.Course, error) {
				return s.Resubmit(context.Background(), testInstructor, testCourseID)
			},
		},
		{
			name: "approve",
			from: model.CourseStatusPending, to: model.CourseStatusPublished,
			run: func(s *CourseService) (*model.Course, error) {
				return s.Approve(context.Background(), testCourseID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newCourseServiceForTest(t)
			repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(tt.from), nil)
			repo.EXPECT().Transition(gomock.Any(), model.CourseTransition{
				CourseID: testCourseID, From: tt.from, To: tt.to,
			}).Return(testCourse(tt.to), nil)

			c, err := tt.run(svc)
			require.NoError(t, err)
			assert.Equal(t, tt.to, c.Status)
		})
	}
}

func TestCourseService_Reject(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)

	_, err := svc.Reject(context.Background(), testCourseID, "   ")
	require.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "reason", apperrors.GetField(err))

	reason := "needs more exercises"
	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(model.CourseStatusPending), nil)
	repo.EXPECT().Transition(gomock.Any(), model.CourseTransition{
		CourseID: testCourseID, From: model.CourseStatusPending, To: model.CourseStatusRejected, Reason: &reason,
	}).Return(testCourse(model.CourseStatusRejected), nil)

	c, err := svc.Reject(context.Background(), testCourseID, " needs more exercises ")
	require.NoError(t, err)
	assert.Equal(t, model.CourseStatusRejected, c.Status)
}

func TestCourseService_InvalidTransitionIsConflict(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)
	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(model.CourseStatusPublished), nil)

	_, err := svc.Approve(context.Background(), testCourseID)
	require.True(t, apperrors.IsConflict(err))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestCourseService_StaleTransitionIsConflict(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)
	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(model.CourseStatusDraft), nil)
	repo.EXPECT().Transition(gomock.Any(), gomock.Any()).Return(nil, core.ErrStaleTransition)

	_, err := svc.Submit(context.Background(), testInstructor, testCourseID)
	require.True(t, apperrors.IsConflict(err))
}

func TestCourseService_OnlyOwnerSubmits(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)
	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(model.CourseStatusDraft), nil)

	other := domainauth.Principal{UserID: "a8b7c6d5-0000-4000-8000-000000000001", Role: domainauth.RoleInstructor}
	_, err := svc.Submit(context.Background(), other, testCourseID)
	require.True(t, apperrors.IsForbidden(err))
}

func TestCourseService_NotFound(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)

	_, err := svc.Approve(context.Background(), "nope")
	require.True(t, apperrors.IsValidation(err))

	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(nil, core.ErrCourseNotFound)
	_, err = svc.Approve(context.Background(), testCourseID)
	require.True(t, apperrors.IsNotFound(err))
}

func TestCourseService_GetPublishedHidesOthers(t *testing.T) {
	for _, status := range []model.CourseStatus{model.CourseStatusDraft, model.CourseStatusPending, model.CourseStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			svc, repo := newCourseServiceForTest(t)
			repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(status), nil)
			_, err := svc.GetPublished(context.Background(), testCourseID)
			require.True(t, apperrors.IsNotFound(err))
		})
	}

	svc, repo := newCourseServiceForTest(t)
	repo.EXPECT().GetByID(gomock.Any(), testCourseID).Return(testCourse(model.CourseStatusPublished), nil)
	c, err := svc.GetPublished(context.Background(), testCourseID)
	require.NoError(t, err)
	assert.True(t, c.Published())
}

func TestCourseService_Listings(t *testing.T) {
	svc, repo := newCourseServiceForTest(t)
	published := model.CourseStatusPublished
	pending := model.CourseStatusPending
	instructor := testInstructorID

	repo.EXPECT().List(gomock.Any(), model.CoursesListOptions{Limit: 50, Status: &published}).Return([]*model.Course{testCourse(published)}, nil)
	repo.EXPECT().List(gomock.Any(), model.CoursesListOptions{Limit: 10, Offset: 20, Status: &pending}).Return(nil, nil)
	repo.EXPECT().List(gomock.Any(), model.CoursesListOptions{Limit: 50, InstructorID: &instructor}).Return([]*model.Course{testCourse(model.CourseStatusDraft)}, nil)

	list, err := svc.ListPublished(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListPending(context.Background(), 10, 20)
	require.NoError(t, err)

	mine, err := svc.ListByInstructor(context.Background(), testInstructorID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
