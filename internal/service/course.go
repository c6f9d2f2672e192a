package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starter-squad/lms/internal/core"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

// CourseServiceOptions groups dependencies for CourseService.
type CourseServiceOptions struct {
	Repo   core.CourseRepository
	Logger *slog.Logger
}

// CourseService runs the course approval workflow. Instructors own drafts and
// submit them; admins approve or reject pending courses.
type CourseService struct {
	repo   core.CourseRepository
	logger *slog.Logger
}

// NewCourseService constructs a new CourseService.
func NewCourseService(opts CourseServiceOptions) *CourseService {
	if opts.Repo == nil {
		panic("NewCourseService: Repo is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseService{repo: opts.Repo, logger: logger.With("component", "courses")}
}

// Create stores a DRAFT course owned by the acting instructor.
func (s *CourseService) Create(ctx context.Context, actor domainauth.Principal, req model.CreateCourseRequest) (*model.Course, error) {
	req.InstructorID = actor.UserID
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	c, err := s.repo.Create(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.logger.InfoContext(ctx, "course created", "course_id", c.ID, "instructor_id", actor.UserID)
	return c, nil
}

// Submit moves the actor's DRAFT course to PENDING.
func (s *CourseService) Submit(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Course, error) {
	return s.ownerTransition(ctx, actor, courseID, model.CourseActionSubmit)
}

// Resubmit moves the actor's REJECTED course back to PENDING.
func (s *CourseService) Resubmit(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Course, error) {
	return s.ownerTransition(ctx, actor, courseID, model.CourseActionResubmit)
}

// Approve publishes a PENDING course and clears any rejection reason.
func (s *CourseService) Approve(ctx context.Context, courseID string) (*model.Course, error) {
	c, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, c, model.CourseActionApprove, nil)
}

// Reject moves a PENDING course to REJECTED. A reason is required.
func (s *CourseService) Reject(ctx context.Context, courseID, reason string) (*model.Course, error) {
	if err := model.ValidateRejectReason(reason); err != nil {
		return nil, apperrors.ValidationField("reason", err.Error())
	}
	c, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	r := strings.TrimSpace(reason)
	return s.transition(ctx, c, model.CourseActionReject, &r)
}

// ListPublished returns the public catalog.
func (s *CourseService) ListPublished(ctx context.Context, limit, offset int) ([]*model.Course, error) {
	status := model.CourseStatusPublished
	return s.list(ctx, model.CoursesListOptions{Limit: limit, Offset: offset, Status: &status})
}

// GetPublished returns a course only if it is in the public catalog.
func (s *CourseService) GetPublished(ctx context.Context, courseID string) (*model.Course, error) {
	c, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !c.Published() {
		return nil, apperrors.NotFound("course not found")
	}
	return c, nil
}

// ListPending returns courses awaiting admin review.
func (s *CourseService) ListPending(ctx context.Context, limit, offset int) ([]*model.Course, error) {
	status := model.CourseStatusPending
	return s.list(ctx, model.CoursesListOptions{Limit: limit, Offset: offset, Status: &status})
}

// ListByInstructor returns every course the instructor owns, in any status.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID string) ([]*model.Course, error) {
	return s.list(ctx, model.CoursesListOptions{InstructorID: &instructorID})
}

func (s *CourseService) list(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
	courses, err := s.repo.List(ctx, opts.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) ownerTransition(ctx context.Context, actor domainauth.Principal, courseID string, action model.CourseAction) (*model.Course, error) {
	c, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.InstructorID != actor.UserID {
		return nil, apperrors.Forbidden("only the course owner can " + string(action) + " it")
	}
	return s.transition(ctx, c, action, nil)
}

func (s *CourseService) transition(ctx context.Context, c *model.Course, action model.CourseAction, reason *string) (*model.Course, error) {
	next, err := model.NextStatus(c.Status, action)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, err.Error())
	}
	updated, err := s.repo.Transition(ctx, model.CourseTransition{
		CourseID: c.ID,
		From:     c.Status,
		To:       next,
		Reason:   reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrStaleTransition):
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "course status changed, reload and try again")
		case errors.Is(err, core.ErrCourseNotFound):
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "course not found")
		default:
			return nil, fmt.Errorf("transition course: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "course status changed",
		"course_id", c.ID,
		"action", action,
		"from", c.Status,
		"to", next,
	)
	return updated, nil
}

func (s *CourseService) load(ctx context.Context, courseID string) (*model.Course, error) {
	if err := validateID("course", courseID); err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, core.ErrCourseNotFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "course not found")
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}
