package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from   CourseStatus
		action CourseAction
		want   CourseStatus
	}{
		{CourseStatusDraft, CourseActionSubmit, CourseStatusPending},
		{CourseStatusRejected, CourseActionResubmit, CourseStatusPending},
		{CourseStatusPending, CourseActionApprove, CourseStatusPublished},
		{CourseStatusPending, CourseActionReject, CourseStatusRejected},
	}
	for _, tt := range tests {
		got, err := NextStatus(tt.from, tt.action)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNextStatus_Invalid(t *testing.T) {
	_, err := NextStatus(CourseStatusPublished, CourseActionApprove)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = NextStatus(CourseStatusDraft, CourseActionReject)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	_, err = NextStatus(CourseStatusDraft, CourseAction("archive"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidTransition))
}

func TestCreateCourseRequest_Validate(t *testing.T) {
	req := CreateCourseRequest{Title: "Go 101", InstructorID: "i1"}
	require.NoError(t, req.Validate())

	req.Title = "  "
	assert.Error(t, req.Validate())

	req = CreateCourseRequest{Title: "Go"}
	assert.Error(t, req.Validate())
}

func TestValidateRejectReason(t *testing.T) {
	assert.Error(t, ValidateRejectReason(" "))
	assert.NoError(t, ValidateRejectReason("needs more exercises"))
}
