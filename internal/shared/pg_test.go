package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationMatchesConstraint(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_posting_batches"}
	if !IsUniqueViolation(err, "uq_posting_batches") {
		t.Fatal("expected unique violation to match its constraint")
	}
	if IsUniqueViolation(err, "uq_depreciation_runs") {
		t.Fatal("constraint name must match exactly")
	}
}

func TestIsUniqueViolationUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_depreciation_runs"})
	if !IsUniqueViolation(wrapped, "uq_depreciation_runs") {
		t.Fatal("expected wrapped pg error to match")
	}
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	if IsUniqueViolation(errors.New("boom"), "uq_posting_batches") {
		t.Fatal("plain errors are not violations")
	}
	notUnique := &pgconn.PgError{Code: "23503", ConstraintName: "uq_posting_batches"}
	if IsUniqueViolation(notUnique, "uq_posting_batches") {
		t.Fatal("only 23505 counts")
	}
}
