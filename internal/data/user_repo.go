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
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
)

const userColumns = `id, email, name, mobile, password_hash, role, is_active, created_at, updated_at`

// UserRepo provides database operations for users.
type UserRepo struct {
	DB    *sql.DB
	clock Clock
}

var _ core.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new UserRepo stamping rows with the wall clock.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// NewUserRepoWithClock creates a UserRepo whose timestamps come from clock.
func NewUserRepoWithClock(db *sql.DB, clock Clock) *UserRepo {
	return &UserRepo{DB: db, clock: clock}
}

// Create inserts a new user. The email keeps its original case; uniqueness is case-insensitive.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.clock.now()
	var mobile *string
	if req.Mobile != nil && strings.TrimSpace(*req.Mobile) != "" {
		m := strings.TrimSpace(*req.Mobile)
		mobile = &m
	}

	return r.one(ctx, `
		INSERT INTO users (email, name, mobile, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+userColumns,
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Name),
		mobile,
		req.PasswordHash,
		string(req.Role),
		req.Active,
		now,
	)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
}

// List retrieves users newest first, optionally filtered by role.
func (r *UserRepo) List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	opts = opts.Normalize()

	var role *string
	if opts.Role != nil {
		s := string(*opts.Role)
		role = &s
	}

	var out []*model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE ($1::text IS NULL OR role = $1)
			ORDER BY created_at DESC, id
			LIMIT $2 OFFSET $3`,
			role, opts.Limit, opts.Offset,
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// UpdateRole changes a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	return r.one(ctx, `
		UPDATE users SET role = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, string(role), r.clock.now(),
	)
}

// SetActive enables or disables a user.
func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	return r.one(ctx, `
		UPDATE users SET is_active = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, active, r.clock.now(),
	)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if strings.TrimSpace(passwordHash) == "" {
		return errors.New("password hash is required")
	}
	_, err := r.one(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+userColumns,
		id, passwordHash, r.clock.now(),
	)
	return err
}

func (r *UserRepo) one(ctx context.Context, q string, args ...any) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		return nil, mapUserErr(err)
	}
	return &user, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrEmailTaken
		case pgerrcode.InvalidTextRepresentation:
			// A malformed UUID can never name a user.
			return ErrUserNotFound
		}
	}
	return apperrors.MapDBError(err)
}
