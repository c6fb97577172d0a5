package client

import (
	"context"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
)

// Directory is the remote store of user and room documents. Every mutation
// is a partial update of a single document.
type Directory interface {
	CreateUser(ctx context.Context, email, username, deviceToken string) (*models.User, string, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	// GetUsers returns the documents that exist; unknown ids are skipped.
	GetUsers(ctx context.Context, ids []string) ([]*models.User, error)
	FindUserByPin(ctx context.Context, pin string) (*models.User, error)

	AddMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error
	RemoveMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error

	SetBusy(ctx context.Context, userID string, busy bool) error
	SetIncomingCall(ctx context.Context, userID string, value bool) error
	SetDeviceToken(ctx context.Context, userID, token string) error
	SetProfileImage(ctx context.Context, userID, key string) error

	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context, userID string) ([]*models.Room, error)
	// UpsertRoom creates the room or updates the existing one with the same id.
	UpsertRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	SetRoomActive(ctx context.Context, id string, isActive int) error

	AvatarUploadURL(ctx context.Context, userID string) (key, url string, err error)
	AvatarDownloadURL(ctx context.Context, key string) (string, error)
}
