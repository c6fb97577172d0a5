// Package models defines the client-side view of directory documents and
// the rows of the local cache.
package models

import (
	"slices"
	"time"
)

// RelationKind names one of the three relation sets of a user.
type RelationKind string

const (
	RelationFriend   RelationKind = "friend"
	RelationSent     RelationKind = "sent"
	RelationReceived RelationKind = "received"
)

// Relation is one (member, kind) entry of a user's relation sets.
type Relation struct {
	MemberID string
	Kind     RelationKind
}

// User is the remote directory document as seen by the client.
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

	Friends             []string
	SentInvitations     []string
	ReceivedInvitations []string
}

// Set returns the slice holding relations of the given kind.
func (u *User) Set(kind RelationKind) []string {
	switch kind {
	case RelationFriend:
		return u.Friends
	case RelationSent:
		return u.SentInvitations
	case RelationReceived:
		return u.ReceivedInvitations
	}
	return nil
}

// Has reports whether id is in the set of the given kind.
func (u *User) Has(kind RelationKind, id string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Set(kind), id)
}

// Relations flattens the three sets into rows.
func (u *User) Relations() []Relation {
	out := make([]Relation, 0, len(u.Friends)+len(u.SentInvitations)+len(u.ReceivedInvitations))
	for _, kind := range []RelationKind{RelationFriend, RelationSent, RelationReceived} {
		for _, id := range u.Set(kind) {
			out = append(out, Relation{MemberID: id, Kind: kind})
		}
	}
	return out
}

// SetRelations distributes rels over the three relation sets of u.
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

// Room is the persistent conversation of two users.
type Room struct {
	ID              string
	UserID1         string
	UserID2         string
	Nickname        string
	LastInteraction time.Time
	IsActive        int
}

func (r *Room) Participants() (string, string) { return r.UserID1, r.UserID2 }

func (r *Room) Active() bool { return r != nil && r.IsActive != 0 }

// LocalUser is the cached copy of the signed-in account. ImageOffset and
// RoomName exist only on the device.
type LocalUser struct {
	User
	ProfileImageData []byte
	ImageOffset      float64
	RoomName         string
}
