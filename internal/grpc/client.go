package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"chronoManager/models"
)

// Client is a typed client for the AttendanceService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithToken attaches a Bearer token to outgoing calls made with the returned context.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func (c *Client) AddUser(ctx context.Context, u *models.User, opts ...grpc.CallOption) (int64, error) {
	in, err := userToStruct(u)
	if err != nil {
		return 0, err
	}
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("AddUser"), in, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string, opts ...grpc.CallOption) (*models.User, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetUserByEmail"), wrapperspb.String(email), out, opts...); err != nil {
		return nil, err
	}
	return userFromStruct(out)
}

func (c *Client) GetUser(ctx context.Context, id int64, opts ...grpc.CallOption) (*models.User, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetUser"), wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return userFromStruct(out)
}

func (c *Client) SearchUsers(ctx context.Context, query string, opts ...grpc.CallOption) ([]models.User, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("SearchUsers"), wrapperspb.String(query), out, opts...); err != nil {
		return nil, err
	}
	return usersFromList(out)
}

func (c *Client) AddAttendanceRecord(ctx context.Context, rec *models.AttendanceRecord, opts ...grpc.CallOption) (int64, error) {
	in, err := recordToStruct(rec)
	if err != nil {
		return 0, err
	}
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("AddAttendanceRecord"), in, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) ListAttendanceRecords(ctx context.Context, userID int64, opts ...grpc.CallOption) ([]models.AttendanceRecord, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("ListAttendanceRecords"), wrapperspb.Int64(userID), out, opts...); err != nil {
		return nil, err
	}
	return recordsFromList(out)
}

// ListAttendanceRange fetches the report for check-ins in [from, to). Zero
// times and a zero userID are left out of the request.
func (c *Client) ListAttendanceRange(ctx context.Context, from, to time.Time, userID int64, opts ...grpc.CallOption) ([]models.AttendanceEntry, error) {
	in, err := rangeToStruct(rangeFilter{From: from, To: to, UserID: userID})
	if err != nil {
		return nil, err
	}
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("ListAttendanceRange"), in, out, opts...); err != nil {
		return nil, err
	}
	return entriesFromList(out)
}

func (c *Client) CheckIn(ctx context.Context, userID int64, opts ...grpc.CallOption) (*models.AttendanceRecord, error) {
	return c.recordCall(ctx, "CheckIn", userID, opts...)
}

func (c *Client) CheckOut(ctx context.Context, userID int64, opts ...grpc.CallOption) (*models.AttendanceRecord, error) {
	return c.recordCall(ctx, "CheckOut", userID, opts...)
}

func (c *Client) recordCall(ctx context.Context, method string, userID int64, opts ...grpc.CallOption) (*models.AttendanceRecord, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), wrapperspb.Int64(userID), out, opts...); err != nil {
		return nil, err
	}
	return recordFromStruct(out)
}
