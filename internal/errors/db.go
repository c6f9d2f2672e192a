package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// "Key (email)=(a@b.c) already exists."
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// "... is still referenced from table "enrollments"."
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// "... is not present in table "courses"."
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

//nolint:gochecknoglobals // static read-only lookup
var tableDomainNames = map[string]string{
	"users":       "User",
	"courses":     "Course",
	"enrollments": "Enrollment",
}

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows to NotFound
//   - unique violations to Conflict
//   - foreign key violations to ForeignKey
//   - check and NOT NULL violations to Validation
//   - context deadline and cancellation to Timeout and Canceled
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, ErrCodeConflict, "This value already exists. Please choose a different one.")
		e.Field = uniqueField(pgErr)
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, ErrCodeForeignKey, foreignKeyMessage(pgErr))
	case pgerrcode.CheckViolation:
		return fieldValidation(pgErr, "This field has an invalid value.", "Invalid data. Please check your input.")
	case pgerrcode.NotNullViolation:
		return fieldValidation(pgErr, "This field is required.", "Required field is missing. Please check your input.")
	default:
		return Wrap(pgErr, ErrCodeInternal, "A database error occurred. Please try again.")
	}
}

func fieldValidation(pgErr *pgconn.PgError, withField, withoutField string) error {
	if pgErr.ColumnName != "" {
		e := Wrap(pgErr, ErrCodeValidation, withField)
		e.Field = pgErr.ColumnName
		return e
	}
	return Wrap(pgErr, ErrCodeValidation, withoutField)
}

// uniqueField prefers column metadata, then the Detail text, then the constraint name.
func uniqueField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	return inferFieldFromConstraint(pgErr.ConstraintName)
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "Cannot delete because this item is in use by " + mapTableToDomain(m[1]) + "."
	}
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "Cannot complete operation because the referenced " + mapTableToDomain(m[1]) + " does not exist."
	}
	if pgErr.TableName != "" {
		return "Cannot complete operation because this item is in use by " + mapTableToDomain(pgErr.TableName) + "."
	}
	return inferForeignKeyMessage(pgErr.ConstraintName)
}

// inferFieldFromConstraint infers "email" from "users_email_key". Names with more
// than three segments or an expression index segment are ambiguous.
func inferFieldFromConstraint(constraintName string) string {
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 || isFunctionName(parts[1]) {
		return ""
	}
	return parts[1]
}

// mapTableToDomain maps table names to user-facing names.
func mapTableToDomain(tableName string) string {
	tableName = strings.ToLower(strings.TrimSpace(tableName))
	if name, ok := tableDomainNames[tableName]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(tableName, "_", " "))
	for i, w := range words {
		if w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-32) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func inferForeignKeyMessage(constraintName string) string {
	c := strings.ToLower(constraintName)
	switch {
	case strings.Contains(c, "enrollment"):
		return "Cannot complete operation because it is referenced by an Enrollment."
	case strings.Contains(c, "instructor"):
		return "Cannot complete operation because the instructor does not exist."
	case strings.Contains(c, "course"):
		return "Cannot complete operation because it is in use by a Course."
	case strings.Contains(c, "user"):
		return "Cannot complete operation because it is in use by a User."
	default:
		return "Cannot complete operation because this item is in use."
	}
}

func isFunctionName(s string) bool {
	switch strings.ToLower(s) {
	case "lower", "upper", "trim", "ltrim", "rtrim", "md5", "sha1", "sha256", "encode", "decode":
		return true
	default:
		return false
	}
}
