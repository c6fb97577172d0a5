package models

import "time"

// Room is the persistent pairwise session of UserID1 and UserID2, keyed by
// their canonical pair id. IsActive is 0 once the pair unfriends.
type Room struct {
	ID              string
	UserID1         string
	UserID2         string
	Nickname        string
	LastInteraction time.Time
	IsActive        int
}

func (r *Room) Participants() (string, string) { return r.UserID1, r.UserID2 }
