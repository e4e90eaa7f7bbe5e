package grpcserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"chronoManager/internal/auth"
	"chronoManager/models"
	"chronoManager/repository"
)

// Server bundles dependencies and implements the AttendanceService.
type Server struct {
	Users      repository.UserRepositoryI
	Attendance repository.AttendanceRepositoryI
	// Now is the clock used by CheckIn/CheckOut; time.Now when nil.
	Now func() time.Time
}

var _ AttendanceServiceServer = (*Server)(nil)

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AddUser creates a user. Only admins may call it.
func (s *Server) AddUser(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	if _, err := auth.RequireAdmin(ctx, s.Users); err != nil {
		return nil, err
	}
	u, err := userFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "user: %v", err)
	}
	id, err := s.Users.Create(ctx, u)
	if err != nil {
		return nil, toStatus(err, codes.AlreadyExists, "add user")
	}
	return wrapperspb.Int64(id), nil
}

func (s *Server) GetUserByEmail(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	// The lookup is exact; only a blank email is rejected.
	email := req.GetValue()
	if strings.TrimSpace(email) == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, toStatus(err, codes.Internal, "get user")
	}
	out, err := userToStruct(u)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode user: %v", err)
	}
	return out, nil
}

func (s *Server) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	u, err := s.Users.GetByID(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err, codes.Internal, "get user")
	}
	out, err := userToStruct(u)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode user: %v", err)
	}
	return out, nil
}

// SearchUsers matches the query against names and emails, at most 50 users.
func (s *Server) SearchUsers(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(req.GetValue())
	if q == "" {
		return nil, status.Error(codes.InvalidArgument, "query is required")
	}
	users, err := s.Users.Search(ctx, q)
	if err != nil {
		return nil, toStatus(err, codes.Internal, "search users")
	}
	out, err := usersToList(users)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode users: %v", err)
	}
	return out, nil
}

// AddAttendanceRecord stores a caller-supplied record. synced_with_biotime in
// the request is ignored.
func (s *Server) AddAttendanceRecord(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int64Value, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	rec, err := recordFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "record: %v", err)
	}
	id, err := s.Attendance.Create(ctx, rec)
	if err != nil {
		return nil, toStatus(err, codes.FailedPrecondition, "add attendance record")
	}
	return wrapperspb.Int64(id), nil
}

// ListAttendanceRecords returns the user's records, newest check-in first.
func (s *Server) ListAttendanceRecords(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	recs, err := s.Attendance.ListByUser(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err, codes.Internal, "list attendance records")
	}
	out, err := recordsToList(recs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode records: %v", err)
	}
	return out, nil
}

// ListAttendanceRange is the attendance report: records of every user (or
// of user_id) with check_in in [from, to), newest first, joined with the
// user's name and role.
func (s *Server) ListAttendanceRange(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	f, err := rangeFromStruct(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "range: %v", err)
	}
	entries, err := s.Attendance.ListRange(ctx, f.From, f.To, f.UserID)
	if err != nil {
		return nil, toStatus(err, codes.Internal, "list attendance range")
	}
	out, err := entriesToList(entries)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode entries: %v", err)
	}
	return out, nil
}

// CheckIn opens a "present" record for the user at the server clock.
func (s *Server) CheckIn(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	id, err := s.Attendance.Create(ctx, &models.AttendanceRecord{
		UserID:  req.GetValue(),
		CheckIn: s.now(),
		Status:  models.StatusPresent,
	})
	if err != nil {
		return nil, toStatus(err, codes.FailedPrecondition, "check in")
	}
	return s.recordResponse(ctx, id)
}

// CheckOut closes the user's latest open record at the server clock.
func (s *Server) CheckOut(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if _, err := auth.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	id, err := s.Attendance.CheckOutLatest(ctx, req.GetValue(), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "no active check-in found")
	}
	if err != nil {
		return nil, toStatus(err, codes.Internal, "check out")
	}
	return s.recordResponse(ctx, id)
}

func (s *Server) recordResponse(ctx context.Context, id int64) (*structpb.Struct, error) {
	rec, err := s.Attendance.GetByID(ctx, id)
	if err != nil {
		return nil, toStatus(err, codes.Internal, "get attendance record")
	}
	out, err := recordToStruct(rec)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode record: %v", err)
	}
	return out, nil
}

// toStatus maps repository error kinds onto gRPC codes. onConstraint is the
// code for ErrConstraintViolation: a duplicate email is AlreadyExists while an
// unknown user_id is FailedPrecondition.
func toStatus(err error, onConstraint codes.Code, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: not found", op)
	case errors.Is(err, repository.ErrConstraintViolation):
		return status.Errorf(onConstraint, "%s: %v", op, err)
	case errors.Is(err, repository.ErrInvalidRecord):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}
