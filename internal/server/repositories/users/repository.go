// Package users persists the scalar fields of directory user documents.
// Relation sets live in the relations package.
package users

import (
	"context"

	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	FindByPin(ctx context.Context, pin string) (*models.User, error)
	// Lock takes the row lock of a user document for the surrounding
	// transaction.
	Lock(ctx context.Context, id string) error
	BumpVersion(ctx context.Context, id string) (int64, error)
	SetBusy(ctx context.Context, id string, busy bool) error
	SetIncomingCall(ctx context.Context, id string, incoming bool) error
	SetDeviceToken(ctx context.Context, id string, token string) error
	SetProfileImage(ctx context.Context, id string, key string) error
}
