package core

import (
	"context"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error)
	UpdateRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error)
	SetActive(ctx context.Context, id string, active bool) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CourseRepository defines the interface for course data operations.
type CourseRepository interface {
	Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error)
	// Transition applies a status change only if the course is still in t.From.
	Transition(ctx context.Context, t model.CourseTransition) (*model.Course, error)
}

// EnrollmentRepository defines the interface for enrollment data operations.
type EnrollmentRepository interface {
	Enroll(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error)
	MarkComplete(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
}
