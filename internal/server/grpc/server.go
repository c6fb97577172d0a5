// Package grpc exposes the directory service over gRPC with the json
// content subtype declared in internal/api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
	"google.golang.org/grpc"
)

// Directory is the business surface the handlers call into.
type Directory interface {
	CreateUser(ctx context.Context, email, username, deviceToken string) (*models.User, string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) ([]*models.User, error)
	FindUserByPin(ctx context.Context, pin string) (*models.User, error)
	AddMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error
	RemoveMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error
	AuthorizeMember(ctx context.Context, callerID, userID, memberID string, kind models.RelationKind) error
	IsFriend(ctx context.Context, userID, memberID string) (bool, error)
	SetBusy(ctx context.Context, userID string, busy bool) error
	SetIncomingCall(ctx context.Context, userID string, incoming bool) error
	SetDeviceToken(ctx context.Context, userID, token string) error
	SetProfileImage(ctx context.Context, userID, key string) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context, userID string) ([]*models.Room, error)
	UpsertRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	SetRoomActive(ctx context.Context, id string, isActive int) error
	AvatarUploadURL(ctx context.Context, userID string) (string, string, error)
	AvatarDownloadURL(ctx context.Context, key string) (string, error)
}

type GRPCServer struct {
	api.UnimplementedDirectoryServer
	address   string
	directory Directory
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, d Directory, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		directory: d,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer returns a grpc.Server with the interceptors installed and the
// directory service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionInterceptor))
	srv := grpc.NewServer(opts...)
	api.RegisterDirectoryServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
