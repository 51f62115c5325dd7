package housing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadySubscribed means a (student, activity) subscription already exists.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNoRoomAssigned means the student has no room and cannot use room-scoped services.
	ErrNoRoomAssigned = errors.New("no room assigned")
	// ErrAlreadyRecorded means an attendance record already exists for the (student, date) pair.
	ErrAlreadyRecorded = errors.New("attendance already recorded")
	// ErrInvalidCredentials covers unknown accounts, wrong passwords and suspended accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ActivityFullError reports a capacity rejection with the observed counts.
type ActivityFullError struct {
	Current int
	Max     int
}

func (e *ActivityFullError) Error() string {
	return fmt.Sprintf("activity is full (%d/%d)", e.Current, e.Max)
}

// ValidationError is a client-facing input rejection; Message names the
// offending field(s) and, for enums, the permitted values.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errMissing(fields ...string) *ValidationError {
	return &ValidationError{
		Field:   fields[0],
		Message: "missing required field(s): " + strings.Join(fields, ", "),
	}
}

func errTooLong(field string, max int) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be at most %d characters", field, max),
	}
}

func errInvalidEnum(field string, allowed ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid %s, must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}

func errInvalidDate(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid %s, expected YYYY-MM-DD", field),
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505), optionally on a named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || strings.Contains(strings.ToLower(pgErr.ConstraintName), constraint)
}
