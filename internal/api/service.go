// Package api declares the directory gRPC service: its messages, the server
// interface with its ServiceDesc, and a typed client stub. Messages travel
// with the "json" content subtype.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "pairroom.directory.v1.Directory"

const (
	MethodCreateUser        = "/" + ServiceName + "/CreateUser"
	MethodGetUser           = "/" + ServiceName + "/GetUser"
	MethodGetUsers          = "/" + ServiceName + "/GetUsers"
	MethodFindUserByPin     = "/" + ServiceName + "/FindUserByPin"
	MethodAddMember         = "/" + ServiceName + "/AddMember"
	MethodRemoveMember      = "/" + ServiceName + "/RemoveMember"
	MethodSetBusy           = "/" + ServiceName + "/SetBusy"
	MethodSetIncomingCall   = "/" + ServiceName + "/SetIncomingCall"
	MethodSetDeviceToken    = "/" + ServiceName + "/SetDeviceToken"
	MethodSetProfileImage   = "/" + ServiceName + "/SetProfileImage"
	MethodGetRoom           = "/" + ServiceName + "/GetRoom"
	MethodListRooms         = "/" + ServiceName + "/ListRooms"
	MethodUpsertRoom        = "/" + ServiceName + "/UpsertRoom"
	MethodSetRoomActive     = "/" + ServiceName + "/SetRoomActive"
	MethodAvatarUploadURL   = "/" + ServiceName + "/AvatarUploadURL"
	MethodAvatarDownloadURL = "/" + ServiceName + "/AvatarDownloadURL"
)

// DirectoryServer is implemented by the directory service handler.
type DirectoryServer interface {
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	GetUser(context.Context, *wrapperspb.StringValue) (*User, error)
	GetUsers(context.Context, *GetUsersRequest) (*GetUsersResponse, error)
	FindUserByPin(context.Context, *wrapperspb.StringValue) (*User, error)
	AddMember(context.Context, *MemberRequest) (*emptypb.Empty, error)
	RemoveMember(context.Context, *MemberRequest) (*emptypb.Empty, error)
	SetBusy(context.Context, *FlagRequest) (*emptypb.Empty, error)
	SetIncomingCall(context.Context, *FlagRequest) (*emptypb.Empty, error)
	SetDeviceToken(context.Context, *DeviceTokenRequest) (*emptypb.Empty, error)
	SetProfileImage(context.Context, *ProfileImageRequest) (*emptypb.Empty, error)
	GetRoom(context.Context, *wrapperspb.StringValue) (*Room, error)
	ListRooms(context.Context, *wrapperspb.StringValue) (*ListRoomsResponse, error)
	UpsertRoom(context.Context, *Room) (*Room, error)
	SetRoomActive(context.Context, *RoomActiveRequest) (*emptypb.Empty, error)
	AvatarUploadURL(context.Context, *wrapperspb.StringValue) (*AvatarURL, error)
	AvatarDownloadURL(context.Context, *wrapperspb.StringValue) (*AvatarURL, error)
}

// UnimplementedDirectoryServer answers every call with codes.Unimplemented.
// Embed it to implement only part of the service.
type UnimplementedDirectoryServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedDirectoryServer) CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error) {
	return nil, unimplemented("CreateUser")
}
func (UnimplementedDirectoryServer) GetUser(context.Context, *wrapperspb.StringValue) (*User, error) {
	return nil, unimplemented("GetUser")
}
func (UnimplementedDirectoryServer) GetUsers(context.Context, *GetUsersRequest) (*GetUsersResponse, error) {
	return nil, unimplemented("GetUsers")
}
func (UnimplementedDirectoryServer) FindUserByPin(context.Context, *wrapperspb.StringValue) (*User, error) {
	return nil, unimplemented("FindUserByPin")
}
func (UnimplementedDirectoryServer) AddMember(context.Context, *MemberRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("AddMember")
}
func (UnimplementedDirectoryServer) RemoveMember(context.Context, *MemberRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("RemoveMember")
}
func (UnimplementedDirectoryServer) SetBusy(context.Context, *FlagRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("SetBusy")
}
func (UnimplementedDirectoryServer) SetIncomingCall(context.Context, *FlagRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("SetIncomingCall")
}
func (UnimplementedDirectoryServer) SetDeviceToken(context.Context, *DeviceTokenRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("SetDeviceToken")
}
func (UnimplementedDirectoryServer) SetProfileImage(context.Context, *ProfileImageRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("SetProfileImage")
}
func (UnimplementedDirectoryServer) GetRoom(context.Context, *wrapperspb.StringValue) (*Room, error) {
	return nil, unimplemented("GetRoom")
}
func (UnimplementedDirectoryServer) ListRooms(context.Context, *wrapperspb.StringValue) (*ListRoomsResponse, error) {
	return nil, unimplemented("ListRooms")
}
func (UnimplementedDirectoryServer) UpsertRoom(context.Context, *Room) (*Room, error) {
	return nil, unimplemented("UpsertRoom")
}
func (UnimplementedDirectoryServer) SetRoomActive(context.Context, *RoomActiveRequest) (*emptypb.Empty, error) {
	return nil, unimplemented("SetRoomActive")
}
func (UnimplementedDirectoryServer) AvatarUploadURL(context.Context, *wrapperspb.StringValue) (*AvatarURL, error) {
	return nil, unimplemented("AvatarUploadURL")
}
func (UnimplementedDirectoryServer) AvatarDownloadURL(context.Context, *wrapperspb.StringValue) (*AvatarURL, error) {
	return nil, unimplemented("AvatarDownloadURL")
}

// unaryHandler adapts a DirectoryServer method expression to grpc.MethodHandler.
func unaryHandler[Req, Resp any](fullMethod string, call func(DirectoryServer, context.Context, *Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DirectoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DirectoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateUser", Handler: unaryHandler(MethodCreateUser, DirectoryServer.CreateUser)},
		{MethodName: "GetUser", Handler: unaryHandler(MethodGetUser, DirectoryServer.GetUser)},
		{MethodName: "GetUsers", Handler: unaryHandler(MethodGetUsers, DirectoryServer.GetUsers)},
		{MethodName: "FindUserByPin", Handler: unaryHandler(MethodFindUserByPin, DirectoryServer.FindUserByPin)},
		{MethodName: "AddMember", Handler: unaryHandler(MethodAddMember, DirectoryServer.AddMember)},
		{MethodName: "RemoveMember", Handler: unaryHandler(MethodRemoveMember, DirectoryServer.RemoveMember)},
		{MethodName: "SetBusy", Handler: unaryHandler(MethodSetBusy, DirectoryServer.SetBusy)},
		{MethodName: "SetIncomingCall", Handler: unaryHandler(MethodSetIncomingCall, DirectoryServer.SetIncomingCall)},
		{MethodName: "SetDeviceToken", Handler: unaryHandler(MethodSetDeviceToken, DirectoryServer.SetDeviceToken)},
		{MethodName: "SetProfileImage", Handler: unaryHandler(MethodSetProfileImage, DirectoryServer.SetProfileImage)},
		{MethodName: "GetRoom", Handler: unaryHandler(MethodGetRoom, DirectoryServer.GetRoom)},
		{MethodName: "ListRooms", Handler: unaryHandler(MethodListRooms, DirectoryServer.ListRooms)},
		{MethodName: "UpsertRoom", Handler: unaryHandler(MethodUpsertRoom, DirectoryServer.UpsertRoom)},
		{MethodName: "SetRoomActive", Handler: unaryHandler(MethodSetRoomActive, DirectoryServer.SetRoomActive)},
		{MethodName: "AvatarUploadURL", Handler: unaryHandler(MethodAvatarUploadURL, DirectoryServer.AvatarUploadURL)},
		{MethodName: "AvatarDownloadURL", Handler: unaryHandler(MethodAvatarDownloadURL, DirectoryServer.AvatarDownloadURL)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pairroom/directory/v1/directory.json",
}

func RegisterDirectoryServer(s grpc.ServiceRegistrar, srv DirectoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}
