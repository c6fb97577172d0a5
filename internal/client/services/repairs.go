package services

import (
	"slices"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/identity"
)

// RelationRepair adds or removes MemberID in one set of UserID's document.
type RelationRepair struct {
	UserID   string
	MemberID string
	Kind     models.RelationKind
	Add      bool
}

// RepairPlan is the set of writes that converges half-applied pairs.
type RepairPlan struct {
	Relations []RelationRepair
	// Rooms to create or reactivate for mutual friends.
	Rooms []*models.Room
	// Deactivate lists active rooms whose pair is no longer friends on
	// either side.
	Deactivate []string
}

func (p RepairPlan) Empty() bool {
	return len(p.Relations) == 0 && len(p.Rooms) == 0 && len(p.Deactivate) == 0
}

// planRepairs inspects every pair (owner, X) for X in others and returns
// the writes that bring it to a consistent state. The rules are applied
// from both sides of the pair against the same snapshot:
//
//	self.sent∋X ∧ X.received∌self ∧ X.friends∌self → X.received += self
//	self.received∋X ∧ X.sent∌self ∧ X.friends∌self → self.received -= X
//	self.sent∋X ∧ X.friends∋self                   → self.friends += X
//	self.friends∋X ∧ X.friends∌self ∧ X.sent∌self  → self.friends -= X
//
// A pair that ends up mutual gets its room ensured active; an active room
// of a pair where neither side lists the other is closed. Others missing
// from the map are skipped.
func planRepairs(owner *models.User, others map[string]*models.User, rooms map[string]*models.Room) RepairPlan {
	var plan RepairPlan

	for _, id := range relatedIDs(owner) {
		other := others[id]
		if other == nil || id == owner.ID {
			continue
		}

		rels := append(pairRules(owner, other), pairRules(other, owner)...)
		plan.Relations = append(plan.Relations, rels...)

		ownerFriends := owner.Has(models.RelationFriend, id)
		otherFriends := other.Has(models.RelationFriend, owner.ID)
		for _, rel := range rels {
			if rel.Kind != models.RelationFriend {
				continue
			}
			if rel.UserID == owner.ID {
				ownerFriends = rel.Add
			} else {
				otherFriends = rel.Add
			}
		}
		roomID := identity.RoomID(owner.ID, id)
		if !ownerFriends && !otherFriends {
			if room := rooms[roomID]; room.Active() {
				plan.Deactivate = append(plan.Deactivate, roomID)
			}
			continue
		}
		if !ownerFriends || !otherFriends {
			continue
		}

		if room := rooms[roomID]; room == nil || !room.Active() {
			u1, u2 := identity.Canonical(owner.ID, id)
			fix := &models.Room{
				ID:       roomID,
				UserID1:  u1,
				UserID2:  u2,
				Nickname: identity.RoomNickname(owner.Username, other.Username),
				IsActive: 1,
			}
			if room != nil {
				fix.Nickname = room.Nickname
				fix.LastInteraction = room.LastInteraction
			}
			plan.Rooms = append(plan.Rooms, fix)
		}
	}
	return plan
}

func pairRules(self, other *models.User) []RelationRepair {
	var out []RelationRepair

	sent := self.Has(models.RelationSent, other.ID)
	received := self.Has(models.RelationReceived, other.ID)
	friend := self.Has(models.RelationFriend, other.ID)

	otherSent := other.Has(models.RelationSent, self.ID)
	otherReceived := other.Has(models.RelationReceived, self.ID)
	otherFriend := other.Has(models.RelationFriend, self.ID)

	if sent && !otherReceived && !otherFriend {
		out = append(out, RelationRepair{UserID: other.ID, MemberID: self.ID, Kind: models.RelationReceived, Add: true})
	}
	if received && !otherSent && !otherFriend {
		out = append(out, RelationRepair{UserID: self.ID, MemberID: other.ID, Kind: models.RelationReceived})
	}
	if sent && otherFriend && !friend {
		out = append(out, RelationRepair{UserID: self.ID, MemberID: other.ID, Kind: models.RelationFriend, Add: true})
	}
	if friend && !otherFriend && !otherSent {
		out = append(out, RelationRepair{UserID: self.ID, MemberID: other.ID, Kind: models.RelationFriend})
	}
	return out
}

// relatedIDs lists every id in u's relation sets once, friends first.
func relatedIDs(u *models.User) []string {
	var out []string
	for _, kind := range []models.RelationKind{models.RelationFriend, models.RelationSent, models.RelationReceived} {
		for _, id := range u.Set(kind) {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

// applyRepair mirrors a successful remote write into the in-memory view.
// Adding a friend drops both invitation entries, as the server does.
func applyRepair(docs map[string]*models.User, rel RelationRepair) {
	u := docs[rel.UserID]
	if u == nil {
		return
	}
	remove := func(s []string) []string {
		return slices.DeleteFunc(s, func(id string) bool { return id == rel.MemberID })
	}

	if !rel.Add {
		switch rel.Kind {
		case models.RelationFriend:
			u.Friends = remove(u.Friends)
		case models.RelationSent:
			u.SentInvitations = remove(u.SentInvitations)
		case models.RelationReceived:
			u.ReceivedInvitations = remove(u.ReceivedInvitations)
		}
		return
	}

	if u.Has(rel.Kind, rel.MemberID) {
		return
	}
	switch rel.Kind {
	case models.RelationFriend:
		u.SentInvitations = remove(u.SentInvitations)
		u.ReceivedInvitations = remove(u.ReceivedInvitations)
		u.Friends = append(u.Friends, rel.MemberID)
	case models.RelationSent:
		if !u.Has(models.RelationFriend, rel.MemberID) {
			u.SentInvitations = append(u.SentInvitations, rel.MemberID)
		}
	case models.RelationReceived:
		if !u.Has(models.RelationFriend, rel.MemberID) {
			u.ReceivedInvitations = append(u.ReceivedInvitations, rel.MemberID)
		}
	}
}
