package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*************
 * Fake stub
 *************/

type fakeStub struct {
	lastMember   *api.MemberRequest
	lastFlag     *api.FlagRequest
	lastRoom     *api.Room
	lastActive   *api.RoomActiveRequest
	lastString   string
	lastIDs      []string
	lastDeadline bool

	user  *api.User
	users []*api.User
	room  *api.Room
	rooms []*api.Room
	url   *api.AvatarURL
	err   error
}

func (f *fakeStub) record(ctx context.Context) {
	_, f.lastDeadline = ctx.Deadline()
}

func (f *fakeStub) CreateUser(ctx context.Context, in *api.CreateUserRequest, _ ...grpc.CallOption) (*api.CreateUserResponse, error) {
	f.record(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &api.CreateUserResponse{User: &api.User{ID: "u1", Email: in.Email, Username: in.Username}, SessionToken: "jwt"}, nil
}

func (f *fakeStub) GetUser(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.User, error) {
	f.record(ctx)
	f.lastString = in.GetValue()
	return f.user, f.err
}

func (f *fakeStub) GetUsers(ctx context.Context, in *api.GetUsersRequest, _ ...grpc.CallOption) (*api.GetUsersResponse, error) {
	f.record(ctx)
	f.lastIDs = in.IDs
	if f.err != nil {
		return nil, f.err
	}
	return &api.GetUsersResponse{Users: f.users}, nil
}

func (f *fakeStub) FindUserByPin(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.User, error) {
	f.lastString = in.GetValue()
	return f.user, f.err
}

func (f *fakeStub) AddMember(ctx context.Context, in *api.MemberRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastMember = in
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) RemoveMember(ctx context.Context, in *api.MemberRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastMember = in
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) SetBusy(ctx context.Context, in *api.FlagRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastFlag = in
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) SetIncomingCall(ctx context.Context, in *api.FlagRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastFlag = in
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) SetDeviceToken(ctx context.Context, in *api.DeviceTokenRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastString = in.DeviceToken
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) SetProfileImage(ctx context.Context, in *api.ProfileImageRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastString = in.Key
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) GetRoom(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.Room, error) {
	f.lastString = in.GetValue()
	return f.room, f.err
}

func (f *fakeStub) ListRooms(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.ListRoomsResponse, error) {
	f.lastString = in.GetValue()
	if f.err != nil {
		return nil, f.err
	}
	return &api.ListRoomsResponse{Rooms: f.rooms}, nil
}

func (f *fakeStub) UpsertRoom(ctx context.Context, in *api.Room, _ ...grpc.CallOption) (*api.Room, error) {
	f.lastRoom = in
	if f.err != nil {
		return nil, f.err
	}
	return in, nil
}

func (f *fakeStub) SetRoomActive(ctx context.Context, in *api.RoomActiveRequest, _ ...grpc.CallOption) (*emptypb.Empty, error) {
	f.lastActive = in
	return &emptypb.Empty{}, f.err
}

func (f *fakeStub) AvatarUploadURL(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.AvatarURL, error) {
	f.lastString = in.GetValue()
	return f.url, f.err
}

func (f *fakeStub) AvatarDownloadURL(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*api.AvatarURL, error) {
	f.lastString = in.GetValue()
	return f.url, f.err
}

func newTestClient(f *fakeStub) *GRPCClient {
	return &GRPCClient{client: f, callTimeout: time.Second}
}

/*************
 * session token
 *************/

func TestInterceptor_AttachesCurrentToken(t *testing.T) {
	c := &GRPCClient{sessionToken: "first"}

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		seen = append(seen, md.Get(common.SessionTokenHeaderName)...)
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.SessionTokenHeaderName, "stale")
	require.NoError(t, c.sessionTokenInterceptor(ctx, "/m", nil, nil, nil, invoker))

	c.SetSessionToken("second")
	require.NoError(t, c.sessionTokenInterceptor(ctx, "/m", nil, nil, nil, invoker))

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Empty(t, md.Get(common.SessionTokenHeaderName))
		return nil
	}
	require.NoError(t, c.sessionTokenInterceptor(context.Background(), "/m", nil, nil, nil, invoker))
}

/*************
 * mapError
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.NoError(t, c.mapError(nil))
	require.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), common.ErrorUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.PermissionDenied, "x")), common.ErrorUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x")), common.ErrRemoteUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x")), common.ErrRemoteUnavailable)
	require.ErrorIs(t, c.mapError(status.Error(codes.NotFound, "x")), common.ErrorNotFound)
	require.ErrorIs(t, c.mapError(status.Error(codes.InvalidArgument, "x")), common.ErrorValidation)
	require.ErrorIs(t, c.mapError(status.Error(codes.AlreadyExists, "x")), common.ErrorConflict)
	require.ErrorContains(t, c.mapError(status.Error(codes.Internal, "boom")), "rpc error:")

	plain := errors.New("plain")
	err := c.mapError(plain)
	require.ErrorIs(t, err, plain)
}

/*************
 * calls
 *************/

func TestCreateUser(t *testing.T) {
	f := &fakeStub{}
	u, tok, err := newTestClient(f).CreateUser(context.Background(), "a@x", "alice", "dev")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "jwt", tok)
	assert.NotNil(t, u.Friends)
	assert.True(t, f.lastDeadline)
}

func TestGetUser_MapsRelationsAndErrors(t *testing.T) {
	f := &fakeStub{user: &api.User{ID: "u2", Friends: []string{"u1"}, Version: 7}}
	c := newTestClient(f)

	u, err := c.GetUser(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", f.lastString)
	assert.Equal(t, []string{"u1"}, u.Friends)
	assert.Equal(t, []string{}, u.SentInvitations)
	assert.Equal(t, int64(7), u.Version)

	f.err = status.Error(codes.NotFound, "no")
	_, err = c.GetUser(context.Background(), "u2")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUsers(t *testing.T) {
	f := &fakeStub{users: []*api.User{{ID: "u2"}, {ID: "u3"}}}
	c := newTestClient(f)

	got, err := c.GetUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, f.lastIDs)

	got, err = c.GetUsers(context.Background(), []string{"u2", "u3", "u4"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"u2", "u3", "u4"}, f.lastIDs)
}

func TestMembers_SendKind(t *testing.T) {
	f := &fakeStub{}
	c := newTestClient(f)

	require.NoError(t, c.AddMember(context.Background(), "u1", "u2", models.RelationSent))
	assert.Equal(t, &api.MemberRequest{UserID: "u1", MemberID: "u2", Kind: "sent"}, f.lastMember)

	require.NoError(t, c.RemoveMember(context.Background(), "u2", "u1", models.RelationReceived))
	assert.Equal(t, &api.MemberRequest{UserID: "u2", MemberID: "u1", Kind: "received"}, f.lastMember)

	f.err = status.Error(codes.Unavailable, "down")
	require.ErrorIs(t, c.AddMember(context.Background(), "u1", "u2", models.RelationFriend), common.ErrRemoteUnavailable)
}

func TestFlags(t *testing.T) {
	f := &fakeStub{}
	c := newTestClient(f)

	require.NoError(t, c.SetBusy(context.Background(), "u1", true))
	assert.Equal(t, &api.FlagRequest{UserID: "u1", Value: true}, f.lastFlag)

	require.NoError(t, c.SetIncomingCall(context.Background(), "u2", false))
	assert.Equal(t, &api.FlagRequest{UserID: "u2", Value: false}, f.lastFlag)

	require.NoError(t, c.SetDeviceToken(context.Background(), "u1", "apns"))
	assert.Equal(t, "apns", f.lastString)

	require.NoError(t, c.SetProfileImage(context.Background(), "u1", "avatars/u1/k"))
	assert.Equal(t, "avatars/u1/k", f.lastString)
}

func TestRooms(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f := &fakeStub{
		room:  &api.Room{ID: "u1_u2", UserID1: "u1", UserID2: "u2", IsActive: 1, LastInteraction: at},
		rooms: []*api.Room{{ID: "u1_u2"}, {ID: "u1_u3"}},
	}
	c := newTestClient(f)

	r, err := c.GetRoom(context.Background(), "u1_u2")
	require.NoError(t, err)
	assert.Equal(t, at, r.LastInteraction)
	assert.True(t, r.Active())

	rs, err := c.ListRooms(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, rs, 2)

	up, err := c.UpsertRoom(context.Background(), &models.Room{ID: "u1_u2", UserID1: "u1", UserID2: "u2", Nickname: "a_b", IsActive: 1})
	require.NoError(t, err)
	assert.Equal(t, "a_b", f.lastRoom.Nickname)
	assert.Equal(t, "a_b", up.Nickname)

	require.NoError(t, c.SetRoomActive(context.Background(), "u1_u2", 0))
	assert.Equal(t, &api.RoomActiveRequest{ID: "u1_u2", IsActive: 0}, f.lastActive)
}

func TestAvatarURLs(t *testing.T) {
	f := &fakeStub{url: &api.AvatarURL{Key: "avatars/u1/k", URL: "http://s3/put"}}
	c := newTestClient(f)

	key, url, err := c.AvatarUploadURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/k", key)
	assert.Equal(t, "http://s3/put", url)

	url, err = c.AvatarDownloadURL(context.Background(), "avatars/u1/k")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/put", url)

	f.err = status.Error(codes.PermissionDenied, "no")
	_, _, err = c.AvatarUploadURL(context.Background(), "u2")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestWithTimeout_KeepsCallerDeadline(t *testing.T) {
	c := &GRPCClient{callTimeout: time.Hour}
	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctx, done := c.withTimeout(parent)
	defer done()
	dl, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), dl, 5*time.Second)
}

func TestNewGRPCClient_LazyConnect(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:1", "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.token())
	require.NoError(t, c.Close())
}
