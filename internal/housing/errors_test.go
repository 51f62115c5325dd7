package housing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "activity_subscriptions_student_id_activity_id_key"}
	if !isUniqueViolation(unique, "") {
		t.Error("23505 not detected")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", unique), "activity_subscriptions") {
		t.Error("wrapped 23505 with matching constraint not detected")
	}
	if isUniqueViolation(unique, "attendance") {
		t.Error("constraint name filter ignored")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Error("foreign key violation misread as unique violation")
	}
	if isUniqueViolation(errors.New("connection refused"), "") {
		t.Error("plain error misread as unique violation")
	}
}

func TestActivityFullError(t *testing.T) {
	err := &ActivityFullError{Current: 50, Max: 50}
	if err.Error() != "activity is full (50/50)" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	var full *ActivityFullError
	if !errors.As(fmt.Errorf("subscribe: %w", err), &full) {
		t.Error("errors.As failed on wrapped ActivityFullError")
	}
}
