package testutil

import (
	"fmt"
	"sync/atomic"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

var seq atomic.Int64

// UniqueEmail returns a distinct email per call, safe across parallel tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, seq.Add(1))
}

// UserRequestBuilder provides a fluent interface for building CreateUserRequest values.
type UserRequestBuilder struct {
	req model.CreateUserRequest
}

// NewUserRequest starts from an active student with a unique email.
func NewUserRequest() *UserRequestBuilder {
	return &UserRequestBuilder{
		req: model.CreateUserRequest{
			Email:        UniqueEmail("user"),
			Name:         "Test User",
			PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpla",
			Role:         domainauth.RoleStudent,
			Active:       true,
		},
	}
}

// WithEmail sets the email.
func (b *UserRequestBuilder) WithEmail(email string) *UserRequestBuilder {
	b.req.Email = email
	return b
}

// WithName sets the display name.
func (b *UserRequestBuilder) WithName(name string) *UserRequestBuilder {
	b.req.Name = name
	return b
}

// WithRole sets the role.
func (b *UserRequestBuilder) WithRole(role domainauth.Role) *UserRequestBuilder {
	b.req.Role = role
	return b
}

// WithPasswordHash sets the stored hash.
func (b *UserRequestBuilder) WithPasswordHash(hash string) *UserRequestBuilder {
	b.req.PasswordHash = hash
	return b
}

// Inactive marks the user as deactivated.
func (b *UserRequestBuilder) Inactive() *UserRequestBuilder {
	b.req.Active = false
	return b
}

// Build returns the request.
func (b *UserRequestBuilder) Build() *model.CreateUserRequest {
	out := b.req
	return &out
}

// CourseRequestBuilder provides a fluent interface for building CreateCourseRequest values.
type CourseRequestBuilder struct {
	req model.CreateCourseRequest
}

// NewCourseRequest starts from a titled draft owned by instructorID.
func NewCourseRequest(instructorID string) *CourseRequestBuilder {
	return &CourseRequestBuilder{
		req: model.CreateCourseRequest{
			Title:        fmt.Sprintf("Course %d", seq.Add(1)),
			Description:  "An introductory course.",
			InstructorID: instructorID,
		},
	}
}

// WithTitle sets the title.
func (b *CourseRequestBuilder) WithTitle(title string) *CourseRequestBuilder {
	b.req.Title = title
	return b
}

// Build returns the request.
func (b *CourseRequestBuilder) Build() *model.CreateCourseRequest {
	out := b.req
	return &out
}
