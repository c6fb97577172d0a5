package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultCallTimeout bounds a single call when the caller's context has no
// deadline of its own.
const DefaultCallTimeout = 10 * time.Second

type directoryStub interface {
	CreateUser(ctx context.Context, in *api.CreateUserRequest, opts ...grpc.CallOption) (*api.CreateUserResponse, error)
	GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.User, error)
	GetUsers(ctx context.Context, in *api.GetUsersRequest, opts ...grpc.CallOption) (*api.GetUsersResponse, error)
	FindUserByPin(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.User, error)
	AddMember(ctx context.Context, in *api.MemberRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RemoveMember(ctx context.Context, in *api.MemberRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetBusy(ctx context.Context, in *api.FlagRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetIncomingCall(ctx context.Context, in *api.FlagRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetDeviceToken(ctx context.Context, in *api.DeviceTokenRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	SetProfileImage(ctx context.Context, in *api.ProfileImageRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetRoom(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.Room, error)
	ListRooms(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.ListRoomsResponse, error)
	UpsertRoom(ctx context.Context, in *api.Room, opts ...grpc.CallOption) (*api.Room, error)
	SetRoomActive(ctx context.Context, in *api.RoomActiveRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	AvatarUploadURL(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.AvatarURL, error)
	AvatarDownloadURL(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*api.AvatarURL, error)
}

type GRPCClient struct {
	endpointURL string
	callTimeout time.Duration
	conn        *grpc.ClientConn
	client      directoryStub

	mu           sync.RWMutex
	sessionToken string
}

var _ Directory = (*GRPCClient)(nil)

func NewGRPCClient(endpointURL, sessionToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, sessionToken: sessionToken, callTimeout: DefaultCallTimeout}
	conn, err := grpc.NewClient(endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.sessionTokenInterceptor))
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewDirectoryClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// SetSessionToken replaces the token attached to subsequent calls.
func (s *GRPCClient) SetSessionToken(token string) {
	s.mu.Lock()
	s.sessionToken = token
	s.mu.Unlock()
}

// SetCallTimeout changes the per-call bound. Zero disables it.
func (s *GRPCClient) SetCallTimeout(d time.Duration) {
	s.callTimeout = d
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	if token != "" {
		md.Set(common.SessionTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withSessionToken(ctx, s.token()), method, req, reply, cc, opts...)
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", common.ErrRemoteUnavailable, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrorConflict, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) CreateUser(ctx context.Context, email, username, deviceToken string) (*models.User, string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateUser(ctx, &api.CreateUserRequest{Email: email, Username: username, DeviceToken: deviceToken})
	if err != nil {
		return nil, "", s.mapError(err)
	}
	return userFromAPI(resp.User), resp.SessionToken, nil
}

func (s *GRPCClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetUser(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return userFromAPI(resp), nil
}

func (s *GRPCClient) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetUsers(ctx, &api.GetUsersRequest{IDs: ids})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*models.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		out = append(out, userFromAPI(u))
	}
	return out, nil
}

func (s *GRPCClient) FindUserByPin(ctx context.Context, pin string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.FindUserByPin(ctx, wrapperspb.String(pin))
	if err != nil {
		return nil, s.mapError(err)
	}
	return userFromAPI(resp), nil
}

func (s *GRPCClient) AddMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.AddMember(ctx, &api.MemberRequest{UserID: userID, MemberID: memberID, Kind: string(kind)})
	return s.mapError(err)
}

func (s *GRPCClient) RemoveMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.RemoveMember(ctx, &api.MemberRequest{UserID: userID, MemberID: memberID, Kind: string(kind)})
	return s.mapError(err)
}

func (s *GRPCClient) SetBusy(ctx context.Context, userID string, busy bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SetBusy(ctx, &api.FlagRequest{UserID: userID, Value: busy})
	return s.mapError(err)
}

func (s *GRPCClient) SetIncomingCall(ctx context.Context, userID string, value bool) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SetIncomingCall(ctx, &api.FlagRequest{UserID: userID, Value: value})
	return s.mapError(err)
}

func (s *GRPCClient) SetDeviceToken(ctx context.Context, userID, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SetDeviceToken(ctx, &api.DeviceTokenRequest{UserID: userID, DeviceToken: token})
	return s.mapError(err)
}

func (s *GRPCClient) SetProfileImage(ctx context.Context, userID, key string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SetProfileImage(ctx, &api.ProfileImageRequest{UserID: userID, Key: key})
	return s.mapError(err)
}

func (s *GRPCClient) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetRoom(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, s.mapError(err)
	}
	return roomFromAPI(resp), nil
}

func (s *GRPCClient) ListRooms(ctx context.Context, userID string) ([]*models.Room, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListRooms(ctx, wrapperspb.String(userID))
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]*models.Room, 0, len(resp.Rooms))
	for _, r := range resp.Rooms {
		out = append(out, roomFromAPI(r))
	}
	return out, nil
}

func (s *GRPCClient) UpsertRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.UpsertRoom(ctx, roomToAPI(room))
	if err != nil {
		return nil, s.mapError(err)
	}
	return roomFromAPI(resp), nil
}

func (s *GRPCClient) SetRoomActive(ctx context.Context, id string, isActive int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.SetRoomActive(ctx, &api.RoomActiveRequest{ID: id, IsActive: isActive})
	return s.mapError(err)
}

func (s *GRPCClient) AvatarUploadURL(ctx context.Context, userID string) (string, string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.AvatarUploadURL(ctx, wrapperspb.String(userID))
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) AvatarDownloadURL(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.AvatarDownloadURL(ctx, wrapperspb.String(key))
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}
