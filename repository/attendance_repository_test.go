package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"chronoManager/internal/testutil"
	"chronoManager/models"
)

// newAttendanceDeps opens an in-memory DB and seeds one user.
func newAttendanceDeps(t *testing.T, name string) (*AttendanceRepository, int64) {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	uid, err := NewUserRepository(d).Create(context.Background(), &models.User{Name: "Alice", Email: "a@x.com", Role: models.RoleEmployee})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewAttendanceRepository(d), uid
}

func TestAttendanceRepository_ListNewestFirst(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_order")
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t1, t2, t3 := base, base.Add(24*time.Hour), base.Add(48*time.Hour)
	// Insert out of order to make sure ordering comes from the query.
	for _, ts := range []time.Time{t2, t3, t1} {
		if _, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: ts, Status: models.StatusPresent}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, uid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for i, want := range []time.Time{t3, t2, t1} {
		if !list[i].CheckIn.Equal(want) {
			t.Fatalf("record %d: check_in=%v want %v", i, list[i].CheckIn, want)
		}
	}
}

func TestAttendanceRepository_ListEmpty(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_empty")

	list, err := repo.ListByUser(context.Background(), uid)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestAttendanceRepository_RoundTripAndSyncDefault(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_roundtrip")
	ctx := context.Background()

	// Non-UTC input is stored in UTC but represents the same instant.
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2024, 5, 2, 9, 15, 30, 500, loc)
	out := in.Add(8 * time.Hour)
	rec := &models.AttendanceRecord{
		UserID:            uid,
		CheckIn:           in,
		CheckOut:          &out,
		Status:            models.StatusLate,
		SyncedWithBiotime: true,
	}
	id, err := repo.Create(ctx, rec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != uid || got.Status != models.StatusLate || !got.CheckIn.Equal(in) {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.CheckOut == nil || !got.CheckOut.Equal(out) {
		t.Fatalf("check_out not round-tripped: %v", got.CheckOut)
	}
	if got.SyncedWithBiotime {
		t.Fatalf("new record must not be synced")
	}
}

func TestAttendanceRepository_CreateValidates(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_invalid")
	ctx := context.Background()
	now := time.Now()

	for _, rec := range []*models.AttendanceRecord{
		nil,
		{CheckIn: now, Status: "present"},
		{UserID: uid, Status: "present"},
		{UserID: uid, CheckIn: now},
	} {
		if _, err := repo.Create(ctx, rec); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("expected ErrInvalidRecord for %+v, got %v", rec, err)
		}
	}
}

func TestAttendanceRepository_UnknownUser(t *testing.T) {
	repo, _ := newAttendanceDeps(t, "attrepo_fk")

	_, err := repo.Create(context.Background(), &models.AttendanceRecord{UserID: 999, CheckIn: time.Now(), Status: models.StatusPresent})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for unknown user, got %v", err)
	}
}

func TestAttendanceRepository_CheckOutLatest(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_checkout")
	ctx := context.Background()

	base := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	older, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: base, Status: models.StatusPresent})
	if err != nil {
		t.Fatalf("create older: %v", err)
	}
	newer, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: base.Add(time.Hour), Status: models.StatusPresent})
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}

	at := base.Add(9 * time.Hour)
	id, err := repo.CheckOutLatest(ctx, uid, at)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if id != newer {
		t.Fatalf("closed id=%d, want newest open %d", id, newer)
	}
	got, _ := repo.GetByID(ctx, newer)
	if got.CheckOut == nil || !got.CheckOut.Equal(at) {
		t.Fatalf("check_out not set: %+v", got)
	}

	// The older record is the only open one left.
	id, err = repo.CheckOutLatest(ctx, uid, at)
	if err != nil || id != older {
		t.Fatalf("second check out: id=%d err=%v", id, err)
	}
	if _, err := repo.CheckOutLatest(ctx, uid, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no open check-in, got %v", err)
	}
}

func TestAttendanceRepository_SetCheckOut(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_setcheckout")
	ctx := context.Background()

	in := time.Date(2024, 6, 11, 8, 0, 0, 0, time.UTC)
	id, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: in, Status: models.StatusPresent})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SetCheckOut(ctx, id, in.Add(4*time.Hour)); err != nil {
		t.Fatalf("set check-out: %v", err)
	}
	got, _ := repo.GetByID(ctx, id)
	if got.Open() {
		t.Fatalf("record still open: %+v", got)
	}
	if err := repo.SetCheckOut(ctx, 12345, in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if err := repo.SetCheckOut(ctx, id, time.Time{}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord for zero time, got %v", err)
	}
}

func TestAttendanceRepository_MarkSyncedAndListUnsynced(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_sync")
	ctx := context.Background()

	base := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: base.Add(time.Duration(i) * time.Hour), Status: models.StatusPresent})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	if err := repo.MarkSynced(ctx, ids[0]); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	got, _ := repo.GetByID(ctx, ids[0])
	if !got.SyncedWithBiotime {
		t.Fatalf("record not marked synced")
	}

	pending, err := repo.ListUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != ids[1] || pending[1].ID != ids[2] {
		t.Fatalf("unexpected unsynced list: %+v", pending)
	}
	if err := repo.MarkSynced(ctx, 777); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttendanceRepository_ListRange(t *testing.T) {
	repo, alice := newAttendanceDeps(t, "attrepo_range")
	ctx := context.Background()
	bob, err := NewUserRepository(repo.db).Create(ctx, &models.User{Name: "Bob", Email: "b@x.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	day := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	out := day.Add(8 * time.Hour)
	seed := []models.AttendanceRecord{
		{UserID: alice, CheckIn: day, CheckOut: &out, Status: models.StatusPresent},
		{UserID: bob, CheckIn: day.Add(time.Hour), Status: models.StatusLate},
		{UserID: alice, CheckIn: day.Add(24 * time.Hour), Status: models.StatusPresent},
		{UserID: bob, CheckIn: day.Add(48 * time.Hour), Status: models.StatusAbsent},
	}
	for i := range seed {
		if _, err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := repo.ListRange(ctx, time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 || all[0].UserName != "Bob" || !all[0].CheckIn.Equal(day.Add(48*time.Hour)) {
		t.Fatalf("unexpected full report: %+v", all)
	}
	last := all[3]
	if last.UserName != "Alice" || last.UserRole != models.RoleEmployee {
		t.Fatalf("join columns: %+v", last)
	}
	if d, ok := last.Duration(); !ok || d != 8*time.Hour {
		t.Fatalf("duration = %v, %v", d, ok)
	}

	// [day, day+24h) holds the first two rows; the upper bound is exclusive.
	first, err := repo.ListRange(ctx, day, day.Add(24*time.Hour), 0)
	if err != nil {
		t.Fatalf("list first day: %v", err)
	}
	if len(first) != 2 || first[0].UserID != bob || first[1].UserID != alice {
		t.Fatalf("unexpected first day: %+v", first)
	}

	onlyAlice, err := repo.ListRange(ctx, day.Add(time.Minute), time.Time{}, alice)
	if err != nil {
		t.Fatalf("list alice: %v", err)
	}
	if len(onlyAlice) != 1 || !onlyAlice[0].CheckIn.Equal(day.Add(24*time.Hour)) {
		t.Fatalf("unexpected alice rows: %+v", onlyAlice)
	}

	none, err := repo.ListRange(ctx, day.Add(72*time.Hour), time.Time{}, 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %#v", err, none)
	}
}

func TestAttendanceRepository_UnparseableTimestamp(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_corrupt")
	ctx := context.Background()

	res, err := repo.db.ExecContext(ctx, `INSERT INTO attendance (user_id, check_in, status) VALUES (?, 'garbage', 'p')`, uid)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	id, _ := res.LastInsertId()

	var dbErr *DatabaseError
	if _, err := repo.GetByID(ctx, id); !errors.As(err, &dbErr) {
		t.Fatalf("get: expected *DatabaseError, got %v", err)
	}
	if _, err := repo.ListByUser(ctx, uid); !errors.As(err, &dbErr) {
		t.Fatalf("list by user: expected *DatabaseError, got %v", err)
	}
	if _, err := repo.ListUnsynced(ctx, 10); !errors.As(err, &dbErr) {
		t.Fatalf("list unsynced: expected *DatabaseError, got %v", err)
	}
	if _, err := repo.ListRange(ctx, time.Time{}, time.Time{}, 0); !errors.As(err, &dbErr) {
		t.Fatalf("list range: expected *DatabaseError, got %v", err)
	}
}

func TestAttendanceRepository_UnparseableCheckOut(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_corrupt_out")
	ctx := context.Background()

	id, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: time.Now(), Status: models.StatusPresent})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE attendance SET check_out = 'garbage' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt check_out: %v", err)
	}

	var dbErr *DatabaseError
	if _, err := repo.GetByID(ctx, id); !errors.As(err, &dbErr) {
		t.Fatalf("expected *DatabaseError, got %v", err)
	}
}

func TestAttendanceRepository_ClosedDB(t *testing.T) {
	repo, uid := newAttendanceDeps(t, "attrepo_closed")
	ctx := context.Background()
	if err := repo.db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var dbErr *DatabaseError
	if _, err := repo.Create(ctx, &models.AttendanceRecord{UserID: uid, CheckIn: time.Now(), Status: models.StatusPresent}); !errors.As(err, &dbErr) {
		t.Fatalf("create: expected *DatabaseError, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 1); !errors.As(err, &dbErr) {
		t.Fatalf("get: expected *DatabaseError, got %v", err)
	}
	if _, err := repo.ListByUser(ctx, uid); !errors.As(err, &dbErr) {
		t.Fatalf("list: expected *DatabaseError, got %v", err)
	}
}
