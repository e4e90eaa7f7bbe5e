package grpcserver

import (
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"chronoManager/models"
)

// Struct field names mirror the column names of the store.
const (
	fieldID         = "id"
	fieldName       = "name"
	fieldEmail      = "email"
	fieldRole       = "role"
	fieldBiotimeID  = "biotime_id"
	fieldCreatedAt  = "created_at"
	fieldUserID     = "user_id"
	fieldCheckIn    = "check_in"
	fieldCheckOut   = "check_out"
	fieldStatus     = "status"
	fieldSynced     = "synced_with_biotime"
	fieldUserName   = "user_name"
	fieldUserRole   = "user_role"
	fieldDuration   = "duration_seconds"
	fieldFrom       = "from"
	fieldTo         = "to"
	timestampLayout = time.RFC3339Nano
)

// maxExactInt bounds the integers a Struct number (a float64) holds exactly.
const maxExactInt = 1 << 53

func userToStruct(u *models.User) (*structpb.Struct, error) {
	m := map[string]any{
		fieldID:    u.ID,
		fieldName:  u.Name,
		fieldEmail: u.Email,
		fieldRole:  u.Role,
	}
	if u.BiotimeID != nil {
		m[fieldBiotimeID] = *u.BiotimeID
	}
	if !u.CreatedAt.IsZero() {
		m[fieldCreatedAt] = u.CreatedAt.UTC().Format(timestampLayout)
	}
	return structpb.NewStruct(m)
}

func userFromStruct(s *structpb.Struct) (*models.User, error) {
	if s == nil {
		return nil, errors.New("user is required")
	}
	f := s.GetFields()
	id, err := int64Field(f, fieldID)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:    id,
		Name:  f[fieldName].GetStringValue(),
		Email: f[fieldEmail].GetStringValue(),
		Role:  f[fieldRole].GetStringValue(),
	}
	if v, ok := optionalString(f, fieldBiotimeID); ok {
		u.BiotimeID = &v
	}
	if v, ok := optionalString(f, fieldCreatedAt); ok {
		t, err := time.Parse(timestampLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldCreatedAt, err)
		}
		u.CreatedAt = t
	}
	return u, nil
}

func recordToStruct(r *models.AttendanceRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(recordToMap(r))
}

func recordToMap(r *models.AttendanceRecord) map[string]any {
	m := map[string]any{
		fieldID:      r.ID,
		fieldUserID:  r.UserID,
		fieldCheckIn: r.CheckIn.UTC().Format(timestampLayout),
		fieldStatus:  r.Status,
		fieldSynced:  r.SyncedWithBiotime,
	}
	if r.CheckOut != nil {
		m[fieldCheckOut] = r.CheckOut.UTC().Format(timestampLayout)
	}
	return m
}

func recordsToList(recs []models.AttendanceRecord) (*structpb.ListValue, error) {
	items := make([]any, len(recs))
	for i := range recs {
		items[i] = recordToMap(&recs[i])
	}
	return structpb.NewList(items)
}

func recordFromStruct(s *structpb.Struct) (*models.AttendanceRecord, error) {
	if s == nil {
		return nil, errors.New("record is required")
	}
	f := s.GetFields()
	id, err := int64Field(f, fieldID)
	if err != nil {
		return nil, err
	}
	userID, err := int64Field(f, fieldUserID)
	if err != nil {
		return nil, err
	}
	r := &models.AttendanceRecord{
		ID:                id,
		UserID:            userID,
		Status:            f[fieldStatus].GetStringValue(),
		SyncedWithBiotime: f[fieldSynced].GetBoolValue(),
	}
	in, ok := optionalString(f, fieldCheckIn)
	if !ok {
		return nil, fmt.Errorf("%s is required", fieldCheckIn)
	}
	t, err := time.Parse(timestampLayout, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fieldCheckIn, err)
	}
	r.CheckIn = t
	if out, ok := optionalString(f, fieldCheckOut); ok {
		t, err := time.Parse(timestampLayout, out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldCheckOut, err)
		}
		r.CheckOut = &t
	}
	return r, nil
}

func usersToList(users []models.User) (*structpb.ListValue, error) {
	items := make([]any, len(users))
	for i := range users {
		s, err := userToStruct(&users[i])
		if err != nil {
			return nil, err
		}
		items[i] = s.AsMap()
	}
	return structpb.NewList(items)
}

func usersFromList(l *structpb.ListValue) ([]models.User, error) {
	out := make([]models.User, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		u, err := userFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		out = append(out, *u)
	}
	return out, nil
}

// entriesToList encodes report rows: the record fields plus user_name,
// user_role and, for closed records, duration_seconds.
func entriesToList(entries []models.AttendanceEntry) (*structpb.ListValue, error) {
	items := make([]any, len(entries))
	for i := range entries {
		e := &entries[i]
		m := recordToMap(&e.AttendanceRecord)
		m[fieldUserName] = e.UserName
		m[fieldUserRole] = e.UserRole
		if d, ok := e.Duration(); ok {
			m[fieldDuration] = d.Seconds()
		}
		items[i] = m
	}
	return structpb.NewList(items)
}

func entriesFromList(l *structpb.ListValue) ([]models.AttendanceEntry, error) {
	out := make([]models.AttendanceEntry, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		s := v.GetStructValue()
		r, err := recordFromStruct(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		f := s.GetFields()
		out = append(out, models.AttendanceEntry{
			AttendanceRecord: *r,
			UserName:         f[fieldUserName].GetStringValue(),
			UserRole:         f[fieldUserRole].GetStringValue(),
		})
	}
	return out, nil
}

// rangeFilter is the decoded ListAttendanceRange request. Zero values are
// unbounded.
type rangeFilter struct {
	From, To time.Time
	UserID   int64
}

func rangeToStruct(r rangeFilter) (*structpb.Struct, error) {
	m := map[string]any{}
	if !r.From.IsZero() {
		m[fieldFrom] = r.From.UTC().Format(timestampLayout)
	}
	if !r.To.IsZero() {
		m[fieldTo] = r.To.UTC().Format(timestampLayout)
	}
	if r.UserID != 0 {
		m[fieldUserID] = r.UserID
	}
	return structpb.NewStruct(m)
}

func rangeFromStruct(s *structpb.Struct) (rangeFilter, error) {
	var r rangeFilter
	f := s.GetFields()
	for key, dst := range map[string]*time.Time{fieldFrom: &r.From, fieldTo: &r.To} {
		v, ok := optionalString(f, key)
		if !ok {
			continue
		}
		t, err := time.Parse(timestampLayout, v)
		if err != nil {
			return r, fmt.Errorf("%s: %w", key, err)
		}
		*dst = t
	}
	id, err := int64Field(f, fieldUserID)
	if err != nil {
		return r, err
	}
	if id < 0 {
		return r, fmt.Errorf("%s: must not be negative", fieldUserID)
	}
	r.UserID = id
	if !r.From.IsZero() && !r.To.IsZero() && !r.To.After(r.From) {
		return r, fmt.Errorf("%s must be after %s", fieldTo, fieldFrom)
	}
	return r, nil
}

// int64Field reads an integer id from a Struct number. Absent and null
// fields are zero; fractions and values beyond 2^53 are rejected.
func int64Field(f map[string]*structpb.Value, key string) (int64, error) {
	v, ok := f[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > maxExactInt {
			return 0, fmt.Errorf("%s: %v is not an integer id", key, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s: not a number", key)
	}
}

func recordsFromList(l *structpb.ListValue) ([]models.AttendanceRecord, error) {
	out := make([]models.AttendanceRecord, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		r, err := recordFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, *r)
	}
	return out, nil
}

// optionalString reports a non-empty string field; absent and null fields are not set.
func optionalString(f map[string]*structpb.Value, key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return "", false
	}
	s := v.GetStringValue()
	return s, s != ""
}
