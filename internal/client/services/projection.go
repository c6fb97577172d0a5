package services

import (
	"bytes"
	"maps"
	"slices"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/identity"
)

// SparseUpdate changes presence columns of an existing row without
// rewriting the avatar bytes. Nil fields are left alone. Version travels
// with IsBusy so the stale-document check sees the version the presence
// came from.
type SparseUpdate struct {
	ID              string
	IsBusy          *bool
	Version         int64
	LastInteraction *time.Time
}

// CachePlan is the difference between the cached rows of one owner and
// the rows projected from the remote snapshot.
type CachePlan struct {
	Upserts []*models.Friend
	Updates []SparseUpdate
	Deletes []string
}

func (p CachePlan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// ProjectToCache derives the friends rows of owner from the remote
// snapshot. Friends come first in the owner's order, then sent and
// received invitations. Avatar bytes of an existing row are reused while
// its image reference is unchanged; a document older than the cached row
// keeps the cached row. The result is a pure function of its inputs.
func ProjectToCache(owner *models.User, others map[string]*models.User, rooms []*models.Room, existing map[string]*models.Friend) []*models.Friend {
	lastSeen := make(map[string]time.Time, len(rooms))
	for _, room := range rooms {
		if other, ok := identity.Counterpart(room, owner.ID); ok {
			lastSeen[other] = room.LastInteraction
		}
	}

	var out []*models.Friend
	seen := map[string]bool{}
	for _, kind := range []models.RelationKind{models.RelationFriend, models.RelationSent, models.RelationReceived} {
		for _, id := range owner.Set(kind) {
			if seen[id] || id == owner.ID {
				continue
			}
			seen[id] = true

			row := projectRow(owner.ID, others[id], existing[id], kind == models.RelationFriend, lastSeen[id])
			if row != nil {
				row.ID = id
				out = append(out, row)
			}
		}
	}
	return out
}

func projectRow(ownerID string, doc *models.User, prev *models.Friend, accepted bool, lastInteraction time.Time) *models.Friend {
	if prev != nil && prev.UserID != ownerID {
		prev = nil
	}

	if doc == nil || (prev != nil && doc.Version < prev.Version) {
		if prev == nil {
			return nil
		}
		row := *prev
		row.IsAccepted = accepted
		row.LastInteraction = lastInteraction
		return &row
	}

	row := &models.Friend{
		ID:               doc.ID,
		UserID:           ownerID,
		Email:            doc.Email,
		Username:         doc.Username,
		Pin:              doc.Pin,
		ProfileImagePath: doc.ProfileImagePath,
		DeviceToken:      doc.DeviceToken,
		IsBusy:           doc.IsBusy,
		LastInteraction:  lastInteraction,
		IsAccepted:       accepted,
		Version:          doc.Version,
	}
	if prev != nil && prev.ProfileImagePath == doc.ProfileImagePath {
		row.ProfileImageData = prev.ProfileImageData
	}
	return row
}

// needsAvatar reports whether the row references an image it does not hold.
func needsAvatar(f *models.Friend) bool {
	return f.ProfileImagePath != "" && f.ProfileImageData == nil
}

// PlanCacheChanges compares the projected rows with the cached rows of
// the same owner. Rows that differ only in presence become sparse updates;
// cached rows absent from the projection are deleted.
func PlanCacheChanges(desired []*models.Friend, existing map[string]*models.Friend) CachePlan {
	var plan CachePlan
	keep := make(map[string]bool, len(desired))

	for _, want := range desired {
		keep[want.ID] = true
		have := existing[want.ID]
		if have == nil || !sameIdentity(have, want) {
			plan.Upserts = append(plan.Upserts, want)
			continue
		}

		upd := SparseUpdate{ID: want.ID}
		if have.IsBusy != want.IsBusy || have.Version != want.Version {
			busy := want.IsBusy
			upd.IsBusy = &busy
			upd.Version = want.Version
		}
		if !have.LastInteraction.Equal(want.LastInteraction) {
			at := want.LastInteraction
			upd.LastInteraction = &at
		}
		if upd.IsBusy != nil || upd.LastInteraction != nil {
			plan.Updates = append(plan.Updates, upd)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(existing)) {
		if !keep[id] {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	return plan
}

// sameIdentity compares every column except the presence ones. Version is
// left out as well: a presence change bumps the remote version but only
// touches presence columns here.
func sameIdentity(a, b *models.Friend) bool {
	return a.ID == b.ID &&
		a.UserID == b.UserID &&
		a.Email == b.Email &&
		a.Username == b.Username &&
		a.Pin == b.Pin &&
		a.ProfileImagePath == b.ProfileImagePath &&
		bytes.Equal(a.ProfileImageData, b.ProfileImageData) &&
		a.DeviceToken == b.DeviceToken &&
		a.IsAccepted == b.IsAccepted
}
