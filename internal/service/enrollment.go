package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starter-squad/lms/internal/core"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

// EnrollmentServiceOptions groups dependencies for EnrollmentService.
type EnrollmentServiceOptions struct {
	Repo   core.EnrollmentRepository
	Logger *slog.Logger
}

// EnrollmentService lets students join published courses and track completion.
type EnrollmentService struct {
	repo   core.EnrollmentRepository
	logger *slog.Logger
}

// NewEnrollmentService constructs a new EnrollmentService.
func NewEnrollmentService(opts EnrollmentServiceOptions) *EnrollmentService {
	if opts.Repo == nil {
		panic("NewEnrollmentService: Repo is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentService{repo: opts.Repo, logger: logger.With("component", "enrollments")}
}

// Enroll adds the actor to a published course. Enrolling twice is a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Enrollment, error) {
	if err := validateID("course", courseID); err != nil {
		return nil, err
	}
	e, err := s.repo.Enroll(ctx, actor.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrAlreadyEnrolled):
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "already enrolled in this course")
		case errors.Is(err, core.ErrCourseNotEnrollable):
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "course not found")
		default:
			return nil, fmt.Errorf("enroll: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "student enrolled", "user_id", actor.UserID, "course_id", courseID)
	return e, nil
}

// ListMine returns the actor's enrollments.
func (s *EnrollmentService) ListMine(ctx context.Context, actor domainauth.Principal) ([]*model.Enrollment, error) {
	out, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

// Complete marks the actor's enrollment in courseID as completed. Completing
// twice keeps the first completion date.
func (s *EnrollmentService) Complete(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Enrollment, error) {
	if err := validateID("course", courseID); err != nil {
		return nil, err
	}
	e, err := s.repo.MarkComplete(ctx, actor.UserID, courseID)
	if err != nil {
		if errors.Is(err, core.ErrEnrollmentNotFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "enrollment not found")
		}
		return nil, fmt.Errorf("complete enrollment: %w", err)
	}
	return e, nil
}
