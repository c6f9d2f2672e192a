package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starter-squad/lms/internal/domain/access"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

// PageHandlers serves the server-rendered dashboards. Access is enforced by
// AccessControl before any of these run.
type PageHandlers struct {
	Renderer    *TemplateRenderer
	Courses     CourseServiceInterface
	Users       UserAdminInterface
	Enrollments EnrollmentServiceInterface
	Web         WebConfig
	Logger      *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	p, _ := PrincipalFromContext(r.Context())
	data.Principal = p
	data.CSRFToken = CSRFToken(r)
	if err := h.Renderer.Render(w, status, page, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderError shows a service failure as an HTML page with the matching status.
func (h *PageHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong. Please try again."
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = statusForCode(appErr.Code)
		message = appErr.Message
	} else {
		h.logger().ErrorContext(r.Context(), "page action failed", "path", r.URL.Path, "error", err)
	}
	h.render(w, r, status, PageError, PageData{Title: http.StatusText(status), Data: message})
}

// Home sends signed-in users to their dashboard and everyone else to the
// public catalog on the frontend.
// GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		http.Redirect(w, r, access.LandingPath(p.Role), http.StatusFound)
		return
	}
	http.Redirect(w, r, h.Web.frontendURL("/courses", nil), http.StatusFound)
}

// AccessDenied renders the 403 view used by page-surface denials.
// GET /access-denied.
func (h *PageHandlers) AccessDenied(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, PageAccessDenied, PageData{Title: "Access denied"})
}

type adminDashboard struct {
	Pending []*model.Course
	Users   []*model.User
	Roles   []domainauth.Role
}

// AdminDashboard lists pending courses and accounts.
// GET /admin/dashboard.
func (h *PageHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Courses.ListPending(r.Context(), defaultPageLimit, 0)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	users, err := h.Users.List(r.Context(), model.UsersListOptions{Limit: maxPageLimit})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, PageAdminDashboard, PageData{
		Title: "Admin dashboard",
		Data:  adminDashboard{Pending: pending, Users: users, Roles: domainauth.AllRoles()},
	})
}

// AdminSetRole handles the role form.
// POST /admin/users/{id}/role.
func (h *PageHandlers) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	role, ok := domainauth.ParseRole(r.PostFormValue("role"))
	if !ok {
		h.renderError(w, r, apperrors.ValidationField("role", errInvalidRole.Error()))
		return
	}
	if _, err := h.Users.ChangeRole(r.Context(), r.PathValue("id"), role); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.AdminDashboardPath, http.StatusSeeOther)
}

// AdminSetActive handles the enable/disable form.
// POST /admin/users/{id}/active.
func (h *PageHandlers) AdminSetActive(w http.ResponseWriter, r *http.Request) {
	active, err := strconv.ParseBool(r.PostFormValue("active"))
	if err != nil {
		h.renderError(w, r, apperrors.ValidationField("active", "active must be true or false"))
		return
	}
	if _, err := h.Users.SetActive(r.Context(), r.PathValue("id"), active); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.AdminDashboardPath, http.StatusSeeOther)
}

// AdminApprove publishes a pending course.
// POST /admin/courses/{id}/approve.
func (h *PageHandlers) AdminApprove(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Courses.Approve(r.Context(), r.PathValue("id")); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.AdminDashboardPath, http.StatusSeeOther)
}

// AdminReject rejects a pending course with the submitted reason.
// POST /admin/courses/{id}/reject.
func (h *PageHandlers) AdminReject(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Courses.Reject(r.Context(), r.PathValue("id"), r.PostFormValue("reason")); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.AdminDashboardPath, http.StatusSeeOther)
}

type instructorDashboard struct {
	Courses []*model.Course
}

// InstructorDashboard lists the caller's courses in every status.
// GET /instructor/dashboard.
func (h *PageHandlers) InstructorDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.Web.sessionExpiredURL(), http.StatusFound)
		return
	}
	courses, err := h.Courses.ListByInstructor(r.Context(), p.UserID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, PageInstructorDashboard, PageData{
		Title: "Instructor dashboard",
		Data:  instructorDashboard{Courses: courses},
	})
}

// InstructorCreateCourse handles the new-course form.
// POST /instructor/courses.
func (h *PageHandlers) InstructorCreateCourse(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.Web.sessionExpiredURL(), http.StatusFound)
		return
	}
	_, err := h.Courses.Create(r.Context(), *p, model.CreateCourseRequest{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.InstructorDashboardPath, http.StatusSeeOther)
}

// InstructorSubmit sends a draft for review.
// POST /instructor/courses/{id}/submit.
func (h *PageHandlers) InstructorSubmit(w http.ResponseWriter, r *http.Request) {
	h.instructorAction(w, r, h.Courses.Submit)
}

// InstructorResubmit sends a rejected course back for review.
// POST /instructor/courses/{id}/resubmit.
func (h *PageHandlers) InstructorResubmit(w http.ResponseWriter, r *http.Request) {
	h.instructorAction(w, r, h.Courses.Resubmit)
}

func (h *PageHandlers) instructorAction(w http.ResponseWriter, r *http.Request, fn ownerActionFunc) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.Web.sessionExpiredURL(), http.StatusFound)
		return
	}
	if _, err := fn(r.Context(), *p, r.PathValue("id")); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, access.InstructorDashboardPath, http.StatusSeeOther)
}

type studentDashboard struct {
	Enrollments []*model.Enrollment
}

// StudentDashboard lists the caller's enrollments.
// GET /student/dashboard.
func (h *PageHandlers) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.Web.sessionExpiredURL(), http.StatusFound)
		return
	}
	list, err := h.Enrollments.ListMine(r.Context(), *p)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, PageStudentDashboard, PageData{
		Title: "My learning",
		Data:  studentDashboard{Enrollments: list},
	})
}
