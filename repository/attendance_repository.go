package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"chronoManager/internal/db"
	"chronoManager/models"
)

var (
	selectAttendanceSQL = `SELECT ` + db.AttendanceTable.ColumnList() + ` FROM ` + db.AttendanceTable.Name
	selectEntrySQL      = `SELECT ` + db.AttendanceTable.QualifiedColumnList("a") + `, u.name AS user_name, u.role AS user_role
FROM attendance a JOIN users u ON u.id = a.user_id`
)

// reportLimit caps the rows of one ListRange call.
const reportLimit = 200

// AttendanceRepository stores check-in/check-out sessions.
// Timestamps are written in UTC so ORDER BY check_in is chronological.
type AttendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(d *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: d}
}

// Create inserts a record and returns its generated ID.
// synced_with_biotime is not part of the statement, so every new record
// starts unsynced whatever rec.SyncedWithBiotime says.
func (r *AttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) (int64, error) {
	if rec == nil {
		return 0, invalid("record")
	}
	switch {
	case rec.UserID <= 0:
		return 0, invalid("user_id")
	case rec.CheckIn.IsZero():
		return 0, invalid("check_in")
	case strings.TrimSpace(rec.Status) == "":
		return 0, invalid("status")
	}
	var checkOut *time.Time
	if rec.CheckOut != nil {
		v := rec.CheckOut.UTC()
		checkOut = &v
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO attendance (user_id, check_in, check_out, status) VALUES (?, ?, ?, ?)`,
		rec.UserID, rec.CheckIn.UTC(), checkOut, rec.Status)
	if err != nil {
		return 0, classify("insert attendance record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("insert attendance record", err)
	}
	return id, nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rec models.AttendanceRecord
	if err := r.db.GetContext(ctx, &rec, selectAttendanceSQL+` WHERE id = ?`, id); err != nil {
		return nil, classify("get attendance record", err)
	}
	if err := checkRecord("get attendance record", &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser returns every record of the user, most recent check-in first.
// A user without records yields an empty slice.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64) ([]models.AttendanceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &out, selectAttendanceSQL+` WHERE user_id = ? ORDER BY check_in DESC, id DESC`, userID); err != nil {
		return nil, classify("list attendance records", err)
	}
	if err := checkRecords("list attendance records", out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCheckOut records the check-out time of a record by ID.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id int64, at time.Time) error {
	if at.IsZero() {
		return invalid("check_out")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE attendance SET check_out = ? WHERE id = ?`, at.UTC(), id)
	return r.expectOne("set check-out", res, err)
}

// CheckOutLatest closes the user's most recent record that has no check-out
// and returns its ID. ErrNotFound means the user has no open check-in.
func (r *AttendanceRepository) CheckOutLatest(ctx context.Context, userID int64, at time.Time) (int64, error) {
	if at.IsZero() {
		return 0, invalid("check_out")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id int64
	err := r.db.QueryRowxContext(ctx, `
UPDATE attendance SET check_out = ?
WHERE id = (
  SELECT id FROM attendance
  WHERE user_id = ? AND check_out IS NULL
  ORDER BY check_in DESC, id DESC LIMIT 1
)
RETURNING id`, at.UTC(), userID).Scan(&id)
	if err != nil {
		return 0, classify("check out latest", err)
	}
	return id, nil
}

// MarkSynced flags a record as reconciled with Biotime.
func (r *AttendanceRepository) MarkSynced(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE attendance SET synced_with_biotime = TRUE WHERE id = ?`, id)
	return r.expectOne("mark synced", res, err)
}

// ListUnsynced returns records not yet reconciled, oldest check-in first.
func (r *AttendanceRepository) ListUnsynced(ctx context.Context, limit int) ([]models.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &out, selectAttendanceSQL+` WHERE synced_with_biotime = FALSE ORDER BY check_in, id LIMIT ?`, limit); err != nil {
		return nil, classify("list unsynced records", err)
	}
	if err := checkRecords("list unsynced records", out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRange returns records of all users joined with the user's name and
// role, newest check-in first, at most 200 rows. from is inclusive and to is
// exclusive; a zero time leaves that side unbounded and userID 0 means every
// user.
func (r *AttendanceRepository) ListRange(ctx context.Context, from, to time.Time, userID int64) ([]models.AttendanceEntry, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "a.check_in >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "a.check_in < ?")
		args = append(args, to.UTC())
	}
	if userID > 0 {
		conds = append(conds, "a.user_id = ?")
		args = append(args, userID)
	}
	q := selectEntrySQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY a.check_in DESC, a.id DESC LIMIT ?"
	args = append(args, reportLimit)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := []models.AttendanceEntry{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, classify("list attendance range", err)
	}
	for i := range out {
		if err := checkRecord("list attendance range", &out[i].AttendanceRecord); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// checkRecord rejects rows whose timestamps could not be decoded. go-sqlite3
// yields the zero time instead of an error for an unparseable TIMESTAMP.
func checkRecord(op string, rec *models.AttendanceRecord) error {
	if rec.CheckIn.IsZero() {
		return &DatabaseError{Op: op, Err: fmt.Errorf("record %d: check_in: unparseable timestamp", rec.ID)}
	}
	if rec.CheckOut != nil && rec.CheckOut.IsZero() {
		return &DatabaseError{Op: op, Err: fmt.Errorf("record %d: check_out: unparseable timestamp", rec.ID)}
	}
	return nil
}

func checkRecords(op string, recs []models.AttendanceRecord) error {
	for i := range recs {
		if err := checkRecord(op, &recs[i]); err != nil {
			return err
		}
	}
	return nil
}

// expectOne turns an update that touched no row into ErrNotFound.
func (r *AttendanceRepository) expectOne(op string, res sql.Result, err error) error {
	if err != nil {
		return classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return classify(op, sql.ErrNoRows)
	}
	return nil
}
