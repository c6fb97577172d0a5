package api

import "time"

// Relation kinds carried by MemberRequest.
const (
	RelationFriend   = "friend"
	RelationSent     = "sent"
	RelationReceived = "received"
)

// User is the remote user document.
type User struct {
	ID                     string   `json:"id"`
	Email                  string   `json:"email"`
	Username               string   `json:"username"`
	Pin                    string   `json:"pin"`
	DeviceToken            string   `json:"device_token,omitempty"`
	ProfileImagePath       string   `json:"profile_image_path,omitempty"`
	HasIncomingCallRequest bool     `json:"has_incoming_call_request"`
	IsBusy                 bool     `json:"is_busy"`
	Friends                []string `json:"friends"`
	SentInvitations        []string `json:"sent_invitations"`
	ReceivedInvitations    []string `json:"received_invitations"`
	Version                int64    `json:"version"`
}

// Room is the remote room document. IsActive is 0 for a closed room and
// nonzero otherwise.
type Room struct {
	ID              string    `json:"id"`
	UserID1         string    `json:"user_id_1"`
	UserID2         string    `json:"user_id_2"`
	Nickname        string    `json:"nickname"`
	LastInteraction time.Time `json:"last_interaction"`
	IsActive        int       `json:"is_active"`
}

func (r *Room) Participants() (string, string) { return r.UserID1, r.UserID2 }

type CreateUserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DeviceToken string `json:"device_token,omitempty"`
}

type CreateUserResponse struct {
	User         *User  `json:"user"`
	SessionToken string `json:"session_token"`
}

type GetUsersRequest struct {
	IDs []string `json:"ids"`
}

type GetUsersResponse struct {
	Users []*User `json:"users"`
}

// MemberRequest adds or removes MemberID from one relation set of UserID.
type MemberRequest struct {
	UserID   string `json:"user_id"`
	MemberID string `json:"member_id"`
	Kind     string `json:"kind"`
}

type FlagRequest struct {
	UserID string `json:"user_id"`
	Value  bool   `json:"value"`
}

type DeviceTokenRequest struct {
	UserID      string `json:"user_id"`
	DeviceToken string `json:"device_token"`
}

type ProfileImageRequest struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
}

type ListRoomsResponse struct {
	Rooms []*Room `json:"rooms"`
}

type RoomActiveRequest struct {
	ID       string `json:"id"`
	IsActive int    `json:"is_active"`
}

// AvatarURL is a presigned object storage URL for Key.
type AvatarURL struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
