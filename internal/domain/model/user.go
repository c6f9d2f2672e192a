//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
)

const (
	maxUserNameLen    = 255
	minPasswordLen    = 8
	maxPasswordLen    = 72 // bcrypt ignores bytes past 72
	maxMobileLen      = 32
	defaultUserListSz = 50
)

// User is a platform account. PasswordHash never leaves the server.
type User struct {
	ID           string          `json:"id"         db:"id"`
	Email        string          `json:"email"      db:"email"`
	Name         string          `json:"name"       db:"name"`
	Mobile       *string         `json:"mobile"     db:"mobile"`
	PasswordHash string          `json:"-"          db:"password_hash"`
	Role         domainauth.Role `json:"role"       db:"role"`
	Active       bool            `json:"active"     db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Identity projects the user into the credential-store view.
func (u *User) Identity() domainauth.Identity {
	return domainauth.Identity{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Active:       u.Active,
	}
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Mobile   *string `json:"mobile,omitempty"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if r.Mobile != nil && utf8.RuneCountInString(strings.TrimSpace(*r.Mobile)) > maxMobileLen {
		return errors.New("mobile is too long")
	}
	return nil
}

// CreateUserRequest is used by repositories and administrative tooling. The
// password is already hashed by the time it reaches the repository.
type CreateUserRequest struct {
	Email        string
	Name         string
	Mobile       *string
	PasswordHash string
	Role         domainauth.Role
	Active       bool
}

// Validate checks the create payload.
func (r *CreateUserRequest) Validate() error {
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.PasswordHash) == "" {
		return errors.New("password hash is required")
	}
	if !r.Role.Valid() {
		return errors.New("role is invalid")
	}
	return nil
}

// UsersListOptions controls paging for user listings.
type UsersListOptions struct {
	Limit  int
	Offset int
	Role   *domainauth.Role
}

// Normalize applies default paging.
func (o UsersListOptions) Normalize() UsersListOptions {
	if o.Limit <= 0 {
		o.Limit = defaultUserListSz
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// LoginRequest is the credential payload for bearer token login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// ValidateEmail checks that email is a single bare address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email is invalid")
	}
	return nil
}

// ValidatePassword enforces length bounds.
func ValidatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if len(pw) > maxPasswordLen {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxUserNameLen {
		return errors.New("name is too long")
	}
	return nil
}
