package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// TestIsUniqueViolation verifies SQLSTATE matching through wrapped errors.
func TestIsUniqueViolation(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	other := &pgconn.PgError{Code: "23503"}

	if !IsUniqueViolation(unique) {
		t.Error("Expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(other) {
		t.Error("Foreign key violation reported as unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
		t.Error("Plain errors must not be unique violations")
	}
}
