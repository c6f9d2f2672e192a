package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/starter-squad/lms/internal/core"
	"github.com/starter-squad/lms/internal/data/pgxutil"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

// EnrollmentRepo provides database operations for enrollments.
type EnrollmentRepo struct {
	DB    *sql.DB
	clock Clock
}

var _ core.EnrollmentRepository = (*EnrollmentRepo)(nil)

// NewEnrollmentRepo creates a new EnrollmentRepo stamping rows with the wall clock.
func NewEnrollmentRepo(db *sql.DB) *EnrollmentRepo {
	return &EnrollmentRepo{DB: db}
}

// NewEnrollmentRepoWithClock creates a EnrollmentRepo whose timestamps come from clock.
func NewEnrollmentRepoWithClock(db *sql.DB, clock Clock) *EnrollmentRepo {
	return &EnrollmentRepo{DB: db, clock: clock}
}

// Enroll adds userID to a published course.
func (r *EnrollmentRepo) Enroll(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH ins AS (
				INSERT INTO enrollments (user_id, course_id, enrolled_at)
				SELECT $1, c.id, $3 FROM courses c
				WHERE c.id = $2 AND c.status = 'PUBLISHED'
				RETURNING id, user_id, course_id, completed, enrolled_at, completed_at
			)
			SELECT ins.id, ins.user_id, ins.course_id, c.title AS course_title,
			       ins.completed, ins.enrolled_at, ins.completed_at
			FROM ins JOIN courses c ON c.id = ins.course_id`,
			userID, courseID, r.clock.now(),
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Enrollment])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotEnrollable
		}
		return nil, mapEnrollmentErr(err)
	}
	return &out, nil
}

// ListByUser returns a user's enrollments, newest first.
func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	var out []*model.Enrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT e.id, e.user_id, e.course_id, c.title AS course_title,
			       e.completed, e.enrolled_at, e.completed_at
			FROM enrollments e JOIN courses c ON c.id = e.course_id
			WHERE e.user_id = $1
			ORDER BY e.enrolled_at DESC, e.id`, userID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Enrollment])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", mapEnrollmentErr(err))
	}
	return out, nil
}

// MarkComplete records completion. Completing twice keeps the first completion time.
func (r *EnrollmentRepo) MarkComplete(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH upd AS (
				UPDATE enrollments
				SET completed = TRUE, completed_at = COALESCE(completed_at, $3)
				WHERE user_id = $1 AND course_id = $2
				RETURNING id, user_id, course_id, completed, enrolled_at, completed_at
			)
			SELECT upd.id, upd.user_id, upd.course_id, c.title AS course_title,
			       upd.completed, upd.enrolled_at, upd.completed_at
			FROM upd JOIN courses c ON c.id = upd.course_id`,
			userID, courseID, r.clock.now(),
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Enrollment])
		return err
	})
	if err != nil {
		return nil, mapEnrollmentErr(err)
	}
	return &out, nil
}

func mapEnrollmentErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEnrollmentNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyEnrolled
		case pgerrcode.InvalidTextRepresentation:
			return ErrEnrollmentNotFound
		}
	}
	return apperrors.MapDBError(err)
}
