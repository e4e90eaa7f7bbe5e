// Package repository implements the attendance store on top of SQLite.
//
// Errors returned by the repositories let callers (the gRPC layer, the
// desktop shell) tell failure scenarios apart: ErrNotFound when a lookup
// matched no row, ErrConstraintViolation when SQLite rejected a write because
// of a UNIQUE or FOREIGN KEY constraint, and *DatabaseError for everything
// else, including rows whose timestamps cannot be decoded. Initialization
// failures are reported by the db package as *db.InitError.
//
// ErrInvalidRecord is a fifth kind on top of those four. It rejects a record
// with a missing or empty required field before any statement runs, since
// SQLite's NOT NULL accepts an empty string.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup or update-by-id matched no row.
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation is returned when a write breaks a schema constraint,
// for example a duplicate user email.
var ErrConstraintViolation = errors.New("constraint violation")

// ErrInvalidRecord is returned before any statement runs when a required
// field is missing.
var ErrInvalidRecord = errors.New("invalid record")

// DatabaseError wraps any other failure of the underlying storage, including
// decode failures when a row cannot be scanned into a model.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// classify maps a driver error onto the repository error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	}
	return &DatabaseError{Op: op, Err: err}
}

func invalid(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidRecord, field)
}
