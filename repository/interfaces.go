package repository

import (
	"context"
	"time"

	"chronoManager/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
}

// AttendanceRepositoryI defines operations on AttendanceRecord entities.
type AttendanceRepositoryI interface {
	Create(ctx context.Context, rec *models.AttendanceRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]models.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, id int64, at time.Time) error
	CheckOutLatest(ctx context.Context, userID int64, at time.Time) (int64, error)
	MarkSynced(ctx context.Context, id int64) error
	ListUnsynced(ctx context.Context, limit int) ([]models.AttendanceRecord, error)
	ListRange(ctx context.Context, from, to time.Time, userID int64) ([]models.AttendanceEntry, error)
}

var (
	_ UserRepositoryI       = (*UserRepository)(nil)
	_ AttendanceRepositoryI = (*AttendanceRepository)(nil)
)
