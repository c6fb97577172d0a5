package client

import (
	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
)

func userFromAPI(u *api.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:                     u.ID,
		Email:                  u.Email,
		Username:               u.Username,
		Pin:                    u.Pin,
		DeviceToken:            u.DeviceToken,
		ProfileImagePath:       u.ProfileImagePath,
		HasIncomingCallRequest: u.HasIncomingCallRequest,
		IsBusy:                 u.IsBusy,
		Version:                u.Version,
		Friends:                nonNil(u.Friends),
		SentInvitations:        nonNil(u.SentInvitations),
		ReceivedInvitations:    nonNil(u.ReceivedInvitations),
	}
}

func roomFromAPI(r *api.Room) *models.Room {
	if r == nil {
		return nil
	}
	return &models.Room{
		ID:              r.ID,
		UserID1:         r.UserID1,
		UserID2:         r.UserID2,
		Nickname:        r.Nickname,
		LastInteraction: r.LastInteraction,
		IsActive:        r.IsActive,
	}
}

func roomToAPI(r *models.Room) *api.Room {
	return &api.Room{
		ID:              r.ID,
		UserID1:         r.UserID1,
		UserID2:         r.UserID2,
		Nickname:        r.Nickname,
		LastInteraction: r.LastInteraction,
		IsActive:        r.IsActive,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
