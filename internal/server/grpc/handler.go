package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/identity"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var errForbidden = status.Error(codes.PermissionDenied, "not a participant")

// toStatus maps service errors onto gRPC codes. Unknown errors are logged
// and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrInvalidTarget):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func empty(s *GRPCServer, ctx context.Context, err error) (*emptypb.Empty, error) {
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *api.CreateUserRequest) (*api.CreateUserResponse, error) {
	u, token, err := s.directory.CreateUser(ctx, req.Email, req.Username, req.DeviceToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Registered", "user", u.ID)
	return &api.CreateUserResponse{User: toAPIUser(u), SessionToken: token}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *wrapperspb.StringValue) (*api.User, error) {
	u, err := s.directory.GetUser(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIUser(u), nil
}

func (s *GRPCServer) GetUsers(ctx context.Context, req *api.GetUsersRequest) (*api.GetUsersResponse, error) {
	list, err := s.directory.GetUsers(ctx, req.IDs)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &api.GetUsersResponse{Users: make([]*api.User, 0, len(list))}
	for _, u := range list {
		resp.Users = append(resp.Users, toAPIUser(u))
	}
	return resp, nil
}

func (s *GRPCServer) FindUserByPin(ctx context.Context, req *wrapperspb.StringValue) (*api.User, error) {
	u, err := s.directory.FindUserByPin(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIUser(u), nil
}

// A relation entry may be written by either side of the pair: invitation
// and acceptance flows update the counterpart's document too.
func (s *GRPCServer) AddMember(ctx context.Context, req *api.MemberRequest) (*emptypb.Empty, error) {
	caller := callerID(ctx)
	if caller != req.UserID && caller != req.MemberID {
		return nil, errForbidden
	}
	kind := models.RelationKind(req.Kind)
	if err := s.directory.AuthorizeMember(ctx, caller, req.UserID, req.MemberID, kind); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return empty(s, ctx, s.directory.AddMember(ctx, req.UserID, req.MemberID, kind))
}

func (s *GRPCServer) RemoveMember(ctx context.Context, req *api.MemberRequest) (*emptypb.Empty, error) {
	if caller := callerID(ctx); caller != req.UserID && caller != req.MemberID {
		return nil, errForbidden
	}
	return empty(s, ctx, s.directory.RemoveMember(ctx, req.UserID, req.MemberID, models.RelationKind(req.Kind)))
}

func (s *GRPCServer) SetBusy(ctx context.Context, req *api.FlagRequest) (*emptypb.Empty, error) {
	if callerID(ctx) != req.UserID {
		return nil, errForbidden
	}
	return empty(s, ctx, s.directory.SetBusy(ctx, req.UserID, req.Value))
}

// SetIncomingCall may be raised by a friend of the target and cleared by the
// target itself.
func (s *GRPCServer) SetIncomingCall(ctx context.Context, req *api.FlagRequest) (*emptypb.Empty, error) {
	caller := callerID(ctx)
	if caller != req.UserID {
		if !req.Value {
			return nil, errForbidden
		}
		ok, err := s.directory.IsFriend(ctx, req.UserID, caller)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		if !ok {
			return nil, errForbidden
		}
	}
	return empty(s, ctx, s.directory.SetIncomingCall(ctx, req.UserID, req.Value))
}

func (s *GRPCServer) SetDeviceToken(ctx context.Context, req *api.DeviceTokenRequest) (*emptypb.Empty, error) {
	if callerID(ctx) != req.UserID {
		return nil, errForbidden
	}
	return empty(s, ctx, s.directory.SetDeviceToken(ctx, req.UserID, req.DeviceToken))
}

func (s *GRPCServer) SetProfileImage(ctx context.Context, req *api.ProfileImageRequest) (*emptypb.Empty, error) {
	if callerID(ctx) != req.UserID {
		return nil, errForbidden
	}
	return empty(s, ctx, s.directory.SetProfileImage(ctx, req.UserID, req.Key))
}

func (s *GRPCServer) GetRoom(ctx context.Context, req *wrapperspb.StringValue) (*api.Room, error) {
	room, err := s.directory.GetRoom(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIRoom(room), nil
}

func (s *GRPCServer) ListRooms(ctx context.Context, req *wrapperspb.StringValue) (*api.ListRoomsResponse, error) {
	list, err := s.directory.ListRooms(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &api.ListRoomsResponse{Rooms: make([]*api.Room, 0, len(list))}
	for _, r := range list {
		resp.Rooms = append(resp.Rooms, toAPIRoom(r))
	}
	return resp, nil
}

func (s *GRPCServer) UpsertRoom(ctx context.Context, req *api.Room) (*api.Room, error) {
	if caller := callerID(ctx); caller != req.UserID1 && caller != req.UserID2 {
		return nil, errForbidden
	}
	room, err := s.directory.UpsertRoom(ctx, fromAPIRoom(req))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIRoom(room), nil
}

func (s *GRPCServer) SetRoomActive(ctx context.Context, req *api.RoomActiveRequest) (*emptypb.Empty, error) {
	room, err := s.directory.GetRoom(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if _, ok := identity.Counterpart(room, callerID(ctx)); !ok {
		return nil, errForbidden
	}
	return empty(s, ctx, s.directory.SetRoomActive(ctx, req.ID, req.IsActive))
}

func (s *GRPCServer) AvatarUploadURL(ctx context.Context, req *wrapperspb.StringValue) (*api.AvatarURL, error) {
	if callerID(ctx) != req.GetValue() {
		return nil, errForbidden
	}
	key, url, err := s.directory.AvatarUploadURL(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.AvatarURL{Key: key, URL: url}, nil
}

func (s *GRPCServer) AvatarDownloadURL(ctx context.Context, req *wrapperspb.StringValue) (*api.AvatarURL, error) {
	url, err := s.directory.AvatarDownloadURL(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.AvatarURL{Key: req.GetValue(), URL: url}, nil
}
