package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "chrono.v1.AttendanceService"

// AttendanceServiceServer is the server API for chrono.v1.AttendanceService.
// Messages are protobuf well-known types, so no generated code is involved:
// users and records travel as Struct, identifiers as Int64Value/StringValue.
type AttendanceServiceServer interface {
	AddUser(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error)
	GetUserByEmail(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	SearchUsers(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	AddAttendanceRecord(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error)
	ListAttendanceRecords(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error)
	ListAttendanceRange(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	CheckIn(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CheckOut(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// RegisterAttendanceServiceServer registers srv on s.
func RegisterAttendanceServiceServer(s grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	s.RegisterService(&attendanceServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newInt64() *wrapperspb.Int64Value   { return new(wrapperspb.Int64Value) }
func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

var attendanceServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddUser", newStruct, AttendanceServiceServer.AddUser),
		unary("GetUserByEmail", newString, AttendanceServiceServer.GetUserByEmail),
		unary("GetUser", newInt64, AttendanceServiceServer.GetUser),
		unary("SearchUsers", newString, AttendanceServiceServer.SearchUsers),
		unary("AddAttendanceRecord", newStruct, AttendanceServiceServer.AddAttendanceRecord),
		unary("ListAttendanceRecords", newInt64, AttendanceServiceServer.ListAttendanceRecords),
		unary("ListAttendanceRange", newStruct, AttendanceServiceServer.ListAttendanceRange),
		unary("CheckIn", newInt64, AttendanceServiceServer.CheckIn),
		unary("CheckOut", newInt64, AttendanceServiceServer.CheckOut),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chrono/v1/attendance.proto",
}

// unary builds the method descriptor protoc-gen-go-grpc would emit for a
// unary RPC: decode the request, then run the handler through the interceptor.
func unary[Req, Resp proto.Message](method string, newReq func() Req, call func(AttendanceServiceServer, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AttendanceServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
