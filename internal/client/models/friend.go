package models

import "time"

// Friend is one row of the friends table: a friend of the owning account
// (IsAccepted) or a pending invitation in either direction.
type Friend struct {
	ID               string
	UserID           string
	Email            string
	Username         string
	Pin              string
	ProfileImagePath string
	ProfileImageData []byte
	DeviceToken      string
	IsBusy           bool
	LastInteraction  time.Time
	IsAccepted       bool
	Version          int64
}

// DisplayName is the label shown for the row.
func (f *Friend) DisplayName() string {
	if f.Username != "" {
		return f.Username
	}
	return f.Email
}
