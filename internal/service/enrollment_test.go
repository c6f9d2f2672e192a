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

var testStudent = domainauth.Principal{UserID: testUserID, Role: domainauth.RoleStudent}

func newEnrollmentServiceForTest(t *testing.T) (*EnrollmentService, *mocks.MockEnrollmentRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEnrollmentRepository(ctrl)
	return NewEnrollmentService(EnrollmentServiceOptions{Repo: repo}), repo
}

func TestEnrollmentService_Enroll(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)
	repo.EXPECT().Enroll(gomock.Any(), testUserID, testCourseID).
		Return(&model.Enrollment{UserID: testUserID, CourseID: testCourseID}, nil)

	e, err := svc.Enroll(context.Background(), testStudent, testCourseID)
	require.NoError(t, err)
	assert.Equal(t, testCourseID, e.CourseID)
}

func TestEnrollmentService_EnrollErrors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		check   func(error) bool
	}{
		{name: "duplicate", repoErr: core.ErrAlreadyEnrolled, check: apperrors.IsConflict},
		{name: "unpublished course", repoErr: core.ErrCourseNotEnrollable, check: apperrors.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newEnrollmentServiceForTest(t)
			repo.EXPECT().Enroll(gomock.Any(), testUserID, testCourseID).Return(nil, tt.repoErr)

			_, err := svc.Enroll(context.Background(), testStudent, testCourseID)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
			assert.ErrorIs(t, err, tt.repoErr)
		})
	}

	svc, _ := newEnrollmentServiceForTest(t)
	_, err := svc.Enroll(context.Background(), testStudent, "bad-id")
	require.True(t, apperrors.IsValidation(err))
}

func TestEnrollmentService_ListAndComplete(t *testing.T) {
	svc, repo := newEnrollmentServiceForTest(t)

	repo.EXPECT().ListByUser(gomock.Any(), testUserID).Return([]*model.Enrollment{{CourseID: testCourseID}}, nil)
	list, err := svc.ListMine(context.Background(), testStudent)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	repo.EXPECT().MarkComplete(gomock.Any(), testUserID, testCourseID).
		Return(&model.Enrollment{CourseID: testCourseID, Completed: true}, nil)
	e, err := svc.Complete(context.Background(), testStudent, testCourseID)
	require.NoError(t, err)
	assert.True(t, e.Completed)

	repo.EXPECT().MarkComplete(gomock.Any(), testUserID, testCourseID).Return(nil, core.ErrEnrollmentNotFound)
	_, err = svc.Complete(context.Background(), testStudent, testCourseID)
	require.True(t, apperrors.IsNotFound(err))
}
