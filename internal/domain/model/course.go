//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxCourseTitleLen  = 255
	maxRejectReasonLen = 2000
)

// CourseStatus is the approval state of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPending   CourseStatus = "PENDING"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusRejected  CourseStatus = "REJECTED"
)

// Valid reports whether the status is known.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusPending, CourseStatusPublished, CourseStatusRejected:
		return true
	default:
		return false
	}
}

// CourseAction names a workflow transition.
type CourseAction string

const (
	CourseActionSubmit   CourseAction = "submit"
	CourseActionResubmit CourseAction = "resubmit"
	CourseActionApprove  CourseAction = "approve"
	CourseActionReject   CourseAction = "reject"
)

// ErrInvalidTransition is returned when an action does not apply to the current status.
var ErrInvalidTransition = errors.New("invalid course status transition")

// courseTransitions maps action -> (from, to).
//
//nolint:gochecknoglobals // static read-only lookup
var courseTransitions = map[CourseAction][2]CourseStatus{
	CourseActionSubmit:   {CourseStatusDraft, CourseStatusPending},
	CourseActionResubmit: {CourseStatusRejected, CourseStatusPending},
	CourseActionApprove:  {CourseStatusPending, CourseStatusPublished},
	CourseActionReject:   {CourseStatusPending, CourseStatusRejected},
}

// NextStatus returns the status produced by applying action to from.
func NextStatus(from CourseStatus, action CourseAction) (CourseStatus, error) {
	t, ok := courseTransitions[action]
	if !ok {
		return "", fmt.Errorf("unknown course action %q", action)
	}
	if t[0] != from {
		return "", fmt.Errorf("%w: cannot %s a %s course", ErrInvalidTransition, action, strings.ToLower(string(from)))
	}
	return t[1], nil
}

// Course is an instructor-owned course.
type Course struct {
	ID              string       `json:"id"                         db:"id"`
	InstructorID    string       `json:"instructor_id"              db:"instructor_id"`
	Title           string       `json:"title"                      db:"title"`
	Description     string       `json:"description"                db:"description"`
	Status          CourseStatus `json:"status"                     db:"status"`
	RejectionReason *string      `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time    `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"                 db:"updated_at"`
}

// Published reports whether the course is visible in the public catalog.
func (c *Course) Published() bool { return c.Status == CourseStatusPublished }

// CreateCourseRequest creates a draft course.
type CreateCourseRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID string `json:"-"`
}

// Validate checks the create payload.
func (r *CreateCourseRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > maxCourseTitleLen {
		return errors.New("title is too long")
	}
	if strings.TrimSpace(r.InstructorID) == "" {
		return errors.New("instructor is required")
	}
	return nil
}

// CourseTransition is a status change applied by the repository with an
// optimistic check on the expected current status.
type CourseTransition struct {
	CourseID string
	From     CourseStatus
	To       CourseStatus
	Reason   *string
}

// ValidateRejectReason checks an admin's rejection reason.
func ValidateRejectReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.New("rejection reason is required")
	}
	if utf8.RuneCountInString(reason) > maxRejectReasonLen {
		return errors.New("rejection reason is too long")
	}
	return nil
}

// CoursesListOptions controls paging and filtering for course listings.
type CoursesListOptions struct {
	Limit        int
	Offset       int
	Status       *CourseStatus
	InstructorID *string
}

// Normalize applies default paging.
func (o CoursesListOptions) Normalize() CoursesListOptions {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
