package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DirectoryClient is the typed stub for the directory service. Every call
// is sent with the json content subtype.
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*CreateUserResponse, error) {
	return invoke[CreateUserResponse](ctx, c.cc, MethodCreateUser, in, opts)
}

func (c *DirectoryClient) GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodGetUser, in, opts)
}

func (c *DirectoryClient) GetUsers(ctx context.Context, in *GetUsersRequest, opts ...grpc.CallOption) (*GetUsersResponse, error) {
	return invoke[GetUsersResponse](ctx, c.cc, MethodGetUsers, in, opts)
}

func (c *DirectoryClient) FindUserByPin(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodFindUserByPin, in, opts)
}

func (c *DirectoryClient) AddMember(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodAddMember, in, opts)
}

func (c *DirectoryClient) RemoveMember(ctx context.Context, in *MemberRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodRemoveMember, in, opts)
}

func (c *DirectoryClient) SetBusy(ctx context.Context, in *FlagRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodSetBusy, in, opts)
}

func (c *DirectoryClient) SetIncomingCall(ctx context.Context, in *FlagRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodSetIncomingCall, in, opts)
}

func (c *DirectoryClient) SetDeviceToken(ctx context.Context, in *DeviceTokenRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodSetDeviceToken, in, opts)
}

func (c *DirectoryClient) SetProfileImage(ctx context.Context, in *ProfileImageRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodSetProfileImage, in, opts)
}

func (c *DirectoryClient) GetRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*Room, error) {
	return invoke[Room](ctx, c.cc, MethodGetRoom, in, opts)
}

func (c *DirectoryClient) ListRooms(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*ListRoomsResponse, error) {
	return invoke[ListRoomsResponse](ctx, c.cc, MethodListRooms, in, opts)
}

func (c *DirectoryClient) UpsertRoom(ctx context.Context, in *Room, opts ...grpc.CallOption) (*Room, error) {
	return invoke[Room](ctx, c.cc, MethodUpsertRoom, in, opts)
}

func (c *DirectoryClient) SetRoomActive(ctx context.Context, in *RoomActiveRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodSetRoomActive, in, opts)
}

func (c *DirectoryClient) AvatarUploadURL(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*AvatarURL, error) {
	return invoke[AvatarURL](ctx, c.cc, MethodAvatarUploadURL, in, opts)
}

func (c *DirectoryClient) AvatarDownloadURL(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*AvatarURL, error) {
	return invoke[AvatarURL](ctx, c.cc, MethodAvatarDownloadURL, in, opts)
}
