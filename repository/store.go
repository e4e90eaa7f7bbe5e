package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chronoManager/internal/db"
	"chronoManager/models"
)

// Store is the attendance store: it owns the database handle and the
// repositories built on it. The handle is capped at one connection, so a
// Store may be shared by concurrent callers.
type Store struct {
	db         *sqlx.DB
	Users      *UserRepository
	Attendance *AttendanceRepository
}

// Open initializes the database in dataDir and returns a ready Store.
// Failures are *db.InitError.
func Open(dataDir string) (*Store, error) {
	d, err := db.Init(dataDir)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// New wraps an already opened database.
func New(d *sqlx.DB) *Store {
	return &Store{
		db:         d,
		Users:      NewUserRepository(d),
		Attendance: NewAttendanceRepository(d),
	}
}

// DB exposes the underlying handle, mainly for tests and diagnostics.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// AddUser inserts u and returns the assigned ID. A duplicate email fails
// with ErrConstraintViolation.
func (s *Store) AddUser(ctx context.Context, u *models.User) (int64, error) {
	return s.Users.Create(ctx, u)
}

// GetUserByEmail fails with ErrNotFound when no user has this email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

// AddAttendanceRecord inserts rec and returns the assigned ID. The record is
// always stored as not yet synced with Biotime.
func (s *Store) AddAttendanceRecord(ctx context.Context, rec *models.AttendanceRecord) (int64, error) {
	return s.Attendance.Create(ctx, rec)
}

// GetAttendanceRecords lists the user's records, newest check-in first.
func (s *Store) GetAttendanceRecords(ctx context.Context, userID int64) ([]models.AttendanceRecord, error) {
	return s.Attendance.ListByUser(ctx, userID)
}
