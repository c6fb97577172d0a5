// Package models holds the directory server's persistent entities.
package models

import "time"

// RelationKind names the set a relation row belongs to.
type RelationKind string

const (
	RelationFriend   RelationKind = "friend"
	RelationSent     RelationKind = "sent"
	RelationReceived RelationKind = "received"
)

func (k RelationKind) Valid() bool {
	switch k {
	case RelationFriend, RelationSent, RelationReceived:
		return true
	}
	return false
}

// User is the directory document of one account. DeviceToken and
// ProfileImagePath are empty when unset.
type User struct {
	ID                     string
	Email                  string
	Username               string
	Pin                    string
	DeviceToken            string
	ProfileImagePath       string
	HasIncomingCallRequest bool
	IsBusy                 bool
	Version                int64
	CreatedAt              time.Time

	Friends             []string
	SentInvitations     []string
	ReceivedInvitations []string
}

// Relation is one (member, kind) entry of a user's relation sets.
type Relation struct {
	MemberID string
	Kind     RelationKind
}

// SetRelations distributes rels over the three relation slices of u.
func (u *User) SetRelations(rels []Relation) {
	u.Friends, u.SentInvitations, u.ReceivedInvitations = []string{}, []string{}, []string{}
	for _, r := range rels {
		switch r.Kind {
		case RelationFriend:
			u.Friends = append(u.Friends, r.MemberID)
		case RelationSent:
			u.SentInvitations = append(u.SentInvitations, r.MemberID)
		case RelationReceived:
			u.ReceivedInvitations = append(u.ReceivedInvitations, r.MemberID)
		}
	}
}
