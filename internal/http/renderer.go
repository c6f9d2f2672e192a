package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/http/templates"
)

// Page names, one per file under templates/pages.
const (
	PageAdminDashboard      = "admin-dashboard"
	PageInstructorDashboard = "instructor-dashboard"
	PageStudentDashboard    = "student-dashboard"
	PageAccessDenied        = "access-denied"
	PageError               = "error"
)

// PageData is the value every page template executes against.
type PageData struct {
	Title     string
	Principal *domainauth.Principal
	CSRFToken string
	Data      any
}

// TemplateRenderer renders HTML templates for page responses. Each page is
// parsed into its own clone of the layout so every page can define "content".
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // defaults to the embedded templates
	Logger     *slog.Logger // optional
}

// NewTemplateRenderer parses the layout and every page template.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	fsys := cfg.TemplateFS
	if fsys == nil {
		fsys = templates.FS
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("root").Funcs(templates.Funcs()).ParseFS(fsys, "layout.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "layout"))
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no page templates found")
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			logger.Error("template parsing failed", slog.Any("error", err), slog.String("page", file))
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}
	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Render writes page with the given status. Output is buffered so a template
// error never leaves a half-written response.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", slog.String("page", page), slog.Any("error", err))
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template", slog.String("page", page), slog.Any("error", err))
		return err
	}
	return nil
}
