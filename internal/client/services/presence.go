package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/identity"
)

// SetBusy updates the local copy first and the remote document second. A
// failed remote write restores the previous local value.
func (r *Reconciler) SetBusy(ctx context.Context, userID string, busy bool) error {
	local, err := r.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load local user: %w", err)
	}

	if local != nil {
		if err := r.users.UpdateBusy(ctx, userID, busy); err != nil {
			return fmt.Errorf("update local presence: %w", err)
		}
	}

	if err := r.dir.SetBusy(ctx, userID, busy); err != nil {
		if local != nil {
			if rbErr := r.users.UpdateBusy(ctx, userID, local.IsBusy); rbErr != nil {
				r.logger.Error(ctx, "presence rollback failed", "user", userID, "error", rbErr)
				return errors.Join(fmt.Errorf("set busy: %w", err), rbErr)
			}
		}
		return fmt.Errorf("set busy: %w", err)
	}
	return nil
}

// Ring raises an incoming call on to and touches the pair's room.
func (r *Reconciler) Ring(ctx context.Context, from, to string) error {
	ufrom, uto, err := r.pair(ctx, from, to)
	if err != nil {
		return err
	}
	if !ufrom.Has(models.RelationFriend, to) {
		return common.ErrNotFriends
	}

	if err := r.dir.SetIncomingCall(ctx, to, true); err != nil {
		return fmt.Errorf("ring: %w", err)
	}

	room, err := r.dir.GetRoom(ctx, identity.RoomID(from, to))
	switch {
	case errors.Is(err, common.ErrorNotFound):
		room = r.newRoom(ufrom, uto)
	case err != nil:
		return fmt.Errorf("load room: %w", err)
	}
	now := r.now().UTC()
	room.LastInteraction = now
	room.IsActive = 1
	if _, err := r.dir.UpsertRoom(ctx, room); err != nil {
		return fmt.Errorf("touch room: %w", err)
	}

	err = r.friends.UpdateLastInteraction(ctx, to, now)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		r.logger.Warn(ctx, "local last interaction not updated", "friend", to, "error", err)
	}
	return nil
}

// AnswerCall clears the incoming call flag of userID.
func (r *Reconciler) AnswerCall(ctx context.Context, userID string) error {
	if err := r.dir.SetIncomingCall(ctx, userID, false); err != nil {
		return fmt.Errorf("answer call: %w", err)
	}
	return nil
}
