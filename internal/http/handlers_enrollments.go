package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

// EnrollmentServiceInterface defines the student enrollment operations.
type EnrollmentServiceInterface interface {
	Enroll(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Enrollment, error)
	ListMine(ctx context.Context, actor domainauth.Principal) ([]*model.Enrollment, error)
	Complete(ctx context.Context, actor domainauth.Principal, courseID string) (*model.Enrollment, error)
}

// EnrollmentHandlers serves /api/enrollments.
type EnrollmentHandlers struct {
	Svc EnrollmentServiceInterface
}

// Enroll joins a published course.
// POST /api/enrollments {course_id}.
func (h *EnrollmentHandlers) Enroll(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req model.EnrollRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	e, err := h.Svc.Enroll(r.Context(), *p, req.CourseID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, "Enrolled", e)
}

// List returns the caller's enrollments.
// GET /api/enrollments.
func (h *EnrollmentHandlers) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	list, err := h.Svc.ListMine(r.Context(), *p)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if list == nil {
		list = []*model.Enrollment{}
	}
	WriteData(w, http.StatusOK, "", list)
}

// Complete marks the caller's enrollment as completed.
// POST /api/enrollments/{courseID}/complete.
func (h *EnrollmentHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	e, err := h.Svc.Complete(r.Context(), *p, r.PathValue("courseID"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Course completed", e)
}
