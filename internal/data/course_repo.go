package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/starter-squad/lms/internal/core"
	"github.com/starter-squad/lms/internal/data/pgxutil"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

const courseColumns = `id, instructor_id, title, description, status, rejection_reason, created_at, updated_at`

// CourseRepo provides database operations for courses.
type CourseRepo struct {
	DB    *sql.DB
	clock Clock
}

var _ core.CourseRepository = (*CourseRepo)(nil)

// NewCourseRepo creates a new CourseRepo stamping rows with the wall clock.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db}
}

// NewCourseRepoWithClock creates a CourseRepo whose timestamps come from clock.
func NewCourseRepoWithClock(db *sql.DB, clock Clock) *CourseRepo {
	return &CourseRepo{DB: db, clock: clock}
}

// Create inserts a draft course.
func (r *CourseRepo) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	if req == nil {
		return nil, errors.New("create course request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := r.clock.now()
	return r.one(ctx, `
		INSERT INTO courses (instructor_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+courseColumns,
		req.InstructorID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		string(model.CourseStatusDraft),
		now,
	)
}

// GetByID retrieves a course by ID.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	return r.one(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
}

// List retrieves courses newest first with optional status and instructor filters.
func (r *CourseRepo) List(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
	opts = opts.Normalize()

	var status *string
	if opts.Status != nil {
		s := string(*opts.Status)
		status = &s
	}

	var out []*model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+courseColumns+`
			FROM courses
			WHERE ($1::text IS NULL OR status = $1)
			  AND ($2::uuid IS NULL OR instructor_id = $2)
			ORDER BY created_at DESC, id
			LIMIT $3 OFFSET $4`,
			status, opts.InstructorID, opts.Limit, opts.Offset,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Course])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", mapCourseErr(err))
	}
	return out, nil
}

// Transition moves a course from t.From to t.To. It fails with ErrStaleTransition
// when the stored status no longer equals t.From.
func (r *CourseRepo) Transition(ctx context.Context, t model.CourseTransition) (*model.Course, error) {
	course, err := r.one(ctx, `
		UPDATE courses
		SET status = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING `+courseColumns,
		t.CourseID, string(t.From), string(t.To), t.Reason, r.clock.now(),
	)
	if !errors.Is(err, ErrCourseNotFound) {
		return course, err
	}
	if _, getErr := r.GetByID(ctx, t.CourseID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStaleTransition
}

func (r *CourseRepo) one(ctx context.Context, q string, args ...any) (*model.Course, error) {
	var course model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		course, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	})
	if err != nil {
		return nil, mapCourseErr(err)
	}
	return &course, nil
}

func mapCourseErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCourseNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return ErrCourseNotFound
	}
	return apperrors.MapDBError(err)
}
