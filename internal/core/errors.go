package core

import "errors"

// Repository sentinel errors. Implementations return these so services can
// branch on outcomes without depending on a storage package.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	ErrCourseNotFound = errors.New("course not found")
	// ErrStaleTransition means the course changed status after it was read.
	ErrStaleTransition = errors.New("course status changed concurrently")

	ErrAlreadyEnrolled     = errors.New("already enrolled in course")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrCourseNotEnrollable = errors.New("course is not open for enrollment")
)
