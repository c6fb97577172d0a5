package friends

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
)

type Repository interface {
	// Upsert writes the full row keyed by ID, replacing any previous one.
	Upsert(ctx context.Context, f *models.Friend) error

	// FetchAll returns the rows owned by ownerUserID in insertion order.
	FetchAll(ctx context.Context, ownerUserID string) ([]*models.Friend, error)

	FetchOne(ctx context.Context, id string) (*models.Friend, error)

	// Delete removes the row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error

	// UpdatePresence sets the busy flag together with the document version
	// it was read from. UpdatePresence and UpdateLastInteraction return
	// common.ErrorNotFound when the row does not exist.
	UpdatePresence(ctx context.Context, id string, isBusy bool, version int64) error
	UpdateLastInteraction(ctx context.Context, id string, t time.Time) error
}
