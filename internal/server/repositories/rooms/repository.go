// Package rooms persists pairwise rooms. Rooms are never deleted; closing a
// room sets is_active to 0.
package rooms

import (
	"context"

	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Room, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Room, error)
	// Upsert creates the room or, when the id already exists, overwrites its
	// nickname, last interaction and active flag.
	Upsert(ctx context.Context, room *models.Room) (*models.Room, error)
	SetActive(ctx context.Context, id string, isActive int) error
}
