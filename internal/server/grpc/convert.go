package grpc

import (
	"github.com/dmitrijs2005/pairroom/internal/api"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:                     u.ID,
		Email:                  u.Email,
		Username:               u.Username,
		Pin:                    u.Pin,
		DeviceToken:            u.DeviceToken,
		ProfileImagePath:       u.ProfileImagePath,
		HasIncomingCallRequest: u.HasIncomingCallRequest,
		IsBusy:                 u.IsBusy,
		Friends:                u.Friends,
		SentInvitations:        u.SentInvitations,
		ReceivedInvitations:    u.ReceivedInvitations,
		Version:                u.Version,
	}
}

func toAPIRoom(r *models.Room) *api.Room {
	return &api.Room{
		ID:              r.ID,
		UserID1:         r.UserID1,
		UserID2:         r.UserID2,
		Nickname:        r.Nickname,
		LastInteraction: r.LastInteraction,
		IsActive:        r.IsActive,
	}
}

func fromAPIRoom(r *api.Room) *models.Room {
	return &models.Room{
		ID:              r.ID,
		UserID1:         r.UserID1,
		UserID2:         r.UserID2,
		Nickname:        r.Nickname,
		LastInteraction: r.LastInteraction,
		IsActive:        r.IsActive,
	}
}
