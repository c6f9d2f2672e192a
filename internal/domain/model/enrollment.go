//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Enrollment records a student's participation in a course.
type Enrollment struct {
	ID             string     `json:"id"                       db:"id"`
	UserID         string     `json:"user_id"                  db:"user_id"`
	CourseID       string     `json:"course_id"                db:"course_id"`
	CourseTitle    string     `json:"course_title"             db:"course_title"`
	Completed      bool       `json:"completed"                db:"completed"`
	EnrolledAt     time.Time  `json:"enrolled_at"              db:"enrolled_at"`
	CompletionDate *time.Time `json:"completed_at,omitempty"   db:"completed_at"`
}

// EnrollRequest is the student payload for enrolling.
type EnrollRequest struct {
	CourseID string `json:"course_id"`
}
