package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starter-squad/lms/internal/core"
	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/domain/model"
	apperrors "github.com/starter-squad/lms/internal/errors"
	"github.com/starter-squad/lms/internal/ports"
)

// ErrSessionsNotRevoked reports an account change that was saved but whose
// existing sessions could not be ended.
var ErrSessionsNotRevoked = errors.New("account updated but sessions were not revoked")

// sessionRevoker removes every session of a user. AuthService implements it.
type sessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Repo   core.UserRepository
	Hasher ports.PasswordHasher
	// Revoker is optional; without it role changes do not end existing sessions.
	Revoker sessionRevoker
}

// UserService manages accounts: self-service registration and administrative
// role and status changes.
type UserService struct {
	repo    core.UserRepository
	hasher  ports.PasswordHasher
	revoker sessionRevoker
	logger  *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	if opts.Repo == nil {
		panic("NewUserService: Repo is required")
	}
	if opts.Hasher == nil {
		panic("NewUserService: Hasher is required")
	}
	return &UserService{
		repo:    opts.Repo,
		hasher:  opts.Hasher,
		revoker: opts.Revoker,
		logger:  slog.Default().With("component", "users"),
	}
}

// Register creates an active STUDENT account.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	return s.create(ctx, createUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Mobile:   req.Mobile,
		Password: req.Password,
		Role:     domainauth.RoleStudent,
	})
}

// CreateUserInput is an administrative account creation.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domainauth.Role
}

// CreateUser creates an active account with any role. Used by the admin CLI.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.ValidationField("role", "role is invalid")
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, apperrors.ValidationField("password", err.Error())
	}
	return s.create(ctx, createUserInput{Email: in.Email, Name: in.Name, Password: in.Password, Role: in.Role})
}

type createUserInput struct {
	Email    string
	Name     string
	Mobile   *string
	Password string
	Role     domainauth.Role
}

func (s *UserService) create(ctx context.Context, in createUserInput) (*model.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	req := &model.CreateUserRequest{
		Email:        domainauth.NormalizeEmail(in.Email),
		Name:         in.Name,
		Mobile:       in.Mobile,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	u, err := s.repo.Create(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			e := apperrors.Wrap(err, apperrors.ErrCodeConflict, "email is already registered")
			e.Field = "email"
			return nil, e
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetByEmail(ctx, domainauth.NormalizeEmail(email))
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

// List returns users, optionally filtered by role.
func (s *UserService) List(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	users, err := s.repo.List(ctx, opts.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ChangeRole sets a user's role and ends their sessions so the new role takes
// effect on the page surface immediately. Bearer tokens pick it up on the next
// request through the credential lookup.
func (s *UserService) ChangeRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.ValidationField("role", "role is invalid")
	}
	u, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if err := s.revoke(ctx, id); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user role changed", "user_id", id, "role", role)
	return u, nil
}

// SetActive enables or disables an account. Disabling ends all sessions.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*model.User, error) {
	if err := validateID("user", id); err != nil {
		return nil, err
	}
	u, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if !active {
		if err := s.revoke(ctx, id); err != nil {
			return nil, err
		}
	}
	s.logger.InfoContext(ctx, "user status changed", "user_id", id, "active", active)
	return u, nil
}

// SetPassword replaces a user's password.
func (s *UserService) SetPassword(ctx context.Context, id, password string) error {
	if err := validateID("user", id); err != nil {
		return err
	}
	if err := model.ValidatePassword(password); err != nil {
		return apperrors.ValidationField("password", err.Error())
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return mapUserErr(err)
	}
	return s.revoke(ctx, id)
}

// revoke ends every session of id. The account change has already been
// committed when this fails; repeating the operation is safe and retries the
// revocation.
func (s *UserService) revoke(ctx context.Context, id string) error {
	if s.revoker == nil {
		return nil
	}
	if _, err := s.revoker.RevokeUser(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions", "user_id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrSessionsNotRevoked, err)
	}
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, core.ErrUserNotFound) {
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "user not found")
	}
	return fmt.Errorf("user repository: %w", err)
}

// validateID rejects ids that are not UUIDs before they reach the database.
func validateID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ValidationField("id", kind+" id is invalid")
	}
	return nil
}
