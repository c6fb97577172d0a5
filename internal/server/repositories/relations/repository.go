// Package relations stores the friend and invitation sets of user
// documents as one row per (user, member, kind).
package relations

import (
	"context"

	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]models.Relation, error)
	Has(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error)
	// Add reports whether a row was inserted; an existing row is left as is.
	Add(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error)
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, userID, memberID string, kind models.RelationKind) (bool, error)
	// RemoveInvitations drops both invitation kinds for the member and
	// reports how many rows went away.
	RemoveInvitations(ctx context.Context, userID, memberID string) (int64, error)
}
