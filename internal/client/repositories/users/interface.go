// Package users persists the signed-in account's own document in the local
// cache together with its relation rows.
package users

import (
	"context"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
)

type Repository interface {
	// Upsert writes the remote fields of u. ImageOffset and RoomName are only
	// written on insert; SetLocalPrefs changes them afterwards.
	Upsert(ctx context.Context, u *models.LocalUser) error

	// Get returns the user with its relations, or (nil, nil) on a miss.
	Get(ctx context.Context, id string) (*models.LocalUser, error)

	UpdateBusy(ctx context.Context, id string, isBusy bool) error
	SetLocalPrefs(ctx context.Context, id string, imageOffset float64, roomName string) error

	Relations(ctx context.Context, id string) ([]models.Relation, error)
	AddRelation(ctx context.Context, id string, rel models.Relation) error
	RemoveRelation(ctx context.Context, id string, rel models.Relation) error

	// Delete removes the user and, by cascade, its relations.
	Delete(ctx context.Context, id string) error
}
