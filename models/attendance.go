package models

import "time"

// AttendanceStatus labels an attendance record. The store does not constrain it.
type AttendanceStatus = string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

// AttendanceRecord is one check-in/check-out session of a user.
// Many records belong to one User via UserID.
type AttendanceRecord struct {
	ID      int64     `db:"id" json:"id"`
	UserID  int64     `db:"user_id" json:"user_id"`
	CheckIn time.Time `db:"check_in" json:"check_in"`
	// CheckOut is nil while the user is still checked in.
	CheckOut *time.Time       `db:"check_out" json:"check_out,omitempty"`
	Status   AttendanceStatus `db:"status" json:"status"`
	// SyncedWithBiotime is always false at insert; only MarkSynced sets it.
	SyncedWithBiotime bool `db:"synced_with_biotime" json:"synced_with_biotime"`
}

// Open reports whether the record has no check-out yet.
func (r *AttendanceRecord) Open() bool {
	return r.CheckOut == nil
}

// Duration is the time between check-in and check-out. ok is false while the
// record is still open.
func (r *AttendanceRecord) Duration() (d time.Duration, ok bool) {
	if r.CheckOut == nil {
		return 0, false
	}
	return r.CheckOut.Sub(r.CheckIn), true
}

// AttendanceEntry is a record joined with the name and role of its user,
// as listed by the attendance report.
type AttendanceEntry struct {
	AttendanceRecord
	UserName string `db:"user_name" json:"user_name"`
	UserRole string `db:"user_role" json:"user_role"`
}
