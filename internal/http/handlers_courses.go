package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

// CourseServiceInterface defines the course operations exposed over HTTP.
type CourseServiceInterface interface {
	Create(ctx context.Context, actor domainauth.Principal, req model.CreateCourseRequest) (*model.Course, error)
	Submit(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Course, error)
	Resubmit(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Course, error)
	Approve(ctx context.Context, courseID string) (*model.Course, error)
	Reject(ctx context.Context, courseID, reason string) (*model.Course, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*model.Course, error)
	GetPublished(ctx context.Context, courseID string) (*model.Course, error)
	ListPending(ctx context.Context, limit, offset int) ([]*model.Course, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]*model.Course, error)
}

// CourseHandlers serves the public catalog and the instructor course API.
type CourseHandlers struct {
	Svc CourseServiceInterface
}

// List returns the published catalog.
// GET /api/courses?limit=&offset=.
func (h *CourseHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	courses, err := h.Svc.ListPublished(r.Context(), limit, offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	WriteData(w, http.StatusOK, "", courses)
}

// Get returns one published course.
// GET /api/courses/{id}.
func (h *CourseHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.GetPublished(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "", c)
}

// Create stores a draft owned by the caller.
// POST /api/courses.
func (h *CourseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Svc.Create(r.Context(), *p, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Course created", c)
}

// Submit sends a draft for review.
// POST /api/courses/{id}/submit.
func (h *CourseHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, h.Svc.Submit)
}

// Resubmit sends a rejected course back for review.
// POST /api/courses/{id}/resubmit.
func (h *CourseHandlers) Resubmit(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, h.Svc.Resubmit)
}

type ownerActionFunc func(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Course, error)

func (h *CourseHandlers) ownerAction(w http.ResponseWriter, r *http.Request, fn ownerActionFunc) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	c, err := fn(r.Context(), *p, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Course submitted for review", c)
}
