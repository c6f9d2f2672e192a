package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
)

// UserAdminInterface defines the account management operations for admins.
type UserAdminInterface interface {
	List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error)
	ChangeRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error)
	SetActive(ctx context.Context, id string, active bool) (*model.User, error)
}

// AdminHandlers serves /api/admin.
type AdminHandlers struct {
	Users   UserAdminInterface
	Courses CourseServiceInterface
}

var errInvalidRole = errors.New("role must be one of STUDENT, INSTRUCTOR, ADMIN, SUPER_ADMIN")

// ListUsers returns a page of accounts, optionally filtered by role.
// GET /api/admin/users?role=&limit=&offset=.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	opts := model.UsersListOptions{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, ok := domainauth.ParseRole(raw)
		if !ok {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: errInvalidRole})
			return
		}
		opts.Role = &role
	}
	users, err := h.Users.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	WriteData(w, http.StatusOK, "", users)
}

type roleRequest struct {
	Role string `json:"role"`
}

// SetRole changes a user's role and revokes their sessions.
// PATCH /api/admin/users/{id}/role {role}.
func (h *AdminHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	role, ok := domainauth.ParseRole(req.Role)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: errInvalidRole})
		return
	}
	u, err := h.Users.ChangeRole(r.Context(), r.PathValue("id"), role)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Role updated", u)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// SetActive enables or disables an account.
// PATCH /api/admin/users/{id}/active {active}.
func (h *AdminHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: errors.New("active is required")})
		return
	}
	u, err := h.Users.SetActive(r.Context(), r.PathValue("id"), *req.Active)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Account updated", u)
}

// PendingCourses lists courses awaiting review.
// GET /api/admin/courses/pending.
func (h *AdminHandlers) PendingCourses(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)
	courses, err := h.Courses.ListPending(r.Context(), limit, offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if courses == nil {
		courses = []*model.Course{}
	}
	WriteData(w, http.StatusOK, "", courses)
}

// ApproveCourse publishes a pending course.
// POST /api/admin/courses/{id}/approve.
func (h *AdminHandlers) ApproveCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.Courses.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Course approved", c)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectCourse returns a pending course to its instructor with a reason.
// POST /api/admin/courses/{id}/reject {reason}.
func (h *AdminHandlers) RejectCourse(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Courses.Reject(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, "Course rejected", c)
}
