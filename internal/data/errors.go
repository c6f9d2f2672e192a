package data

import "github.com/starter-squad/lms/internal/core"

// Repository sentinels, shared with the service layer through core.
var (
	ErrUserNotFound        = core.ErrUserNotFound
	ErrEmailTaken          = core.ErrEmailTaken
	ErrCourseNotFound      = core.ErrCourseNotFound
	ErrStaleTransition     = core.ErrStaleTransition
	ErrAlreadyEnrolled     = core.ErrAlreadyEnrolled
	ErrEnrollmentNotFound  = core.ErrEnrollmentNotFound
	ErrCourseNotEnrollable = core.ErrCourseNotEnrollable
)
