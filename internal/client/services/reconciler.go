// Package services holds the client-side relationship logic: the
// invitation state machine, presence updates and the projection of remote
// documents into the local cache.
//
// Two parties never share a transaction. Every pairwise operation is a
// sequence of single-document writes whose first write is the commit
// point; Reconcile repairs pairs left half-applied by an interrupted
// sequence.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/client"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/friends"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/users"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/identity"
	"github.com/dmitrijs2005/pairroom/internal/logging"
)

const defaultAvatarConcurrency = 4

// AvatarFetcher downloads the object behind a presigned URL.
type AvatarFetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Reconciler struct {
	dir     client.Directory
	friends friends.Repository
	users   users.Repository
	meta    metadata.Repository
	avatars AvatarFetcher
	logger  logging.Logger

	now               func() time.Time
	avatarConcurrency int
	newBackOff        func() backoff.BackOff
}

func NewReconciler(dir client.Directory, store *cache.Store, avatars AvatarFetcher, logger logging.Logger) *Reconciler {
	return &Reconciler{
		dir:               dir,
		friends:           store.Friends,
		users:             store.Users,
		meta:              store.Metadata,
		avatars:           avatars,
		logger:            logger.With("module", "reconciler"),
		now:               time.Now,
		avatarConcurrency: defaultAvatarConcurrency,
	}
}

// pair loads both documents of an operation on (a, b).
func (r *Reconciler) pair(ctx context.Context, a, b string) (*models.User, *models.User, error) {
	if !identity.ValidPair(a, b) {
		return nil, nil, common.ErrInvalidTarget
	}
	ua, err := r.dir.GetUser(ctx, a)
	if err != nil {
		return nil, nil, fmt.Errorf("get user %s: %w", a, err)
	}
	ub, err := r.dir.GetUser(ctx, b)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil, fmt.Errorf("%w: unknown user %s", common.ErrInvalidTarget, b)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user %s: %w", b, err)
	}
	return ua, ub, nil
}

// SendInvitation invites b on behalf of a. A pending invitation from b to
// a is accepted instead.
func (r *Reconciler) SendInvitation(ctx context.Context, a, b string) error {
	ua, ub, err := r.pair(ctx, a, b)
	if err != nil {
		return err
	}

	aFriend, bFriend := ua.Has(models.RelationFriend, b), ub.Has(models.RelationFriend, a)
	switch {
	case aFriend && !bFriend && !ub.Has(models.RelationSent, a):
		if err := r.finishRemoval(ctx, ua, ub); err != nil {
			return err
		}
	case bFriend && !aFriend && !ua.Has(models.RelationSent, b):
		if err := r.finishRemoval(ctx, ub, ua); err != nil {
			return err
		}
	case aFriend:
		return common.ErrAlreadyFriends
	case ub.Has(models.RelationSent, a):
		r.logger.Info(ctx, "reverse invitation pending, accepting", "from", b, "to", a)
		return r.accept(ctx, ub, ua)
	}

	if !ua.Has(models.RelationSent, b) {
		if err := r.dir.AddMember(ctx, a, b, models.RelationSent); err != nil {
			return fmt.Errorf("send invitation: %w", err)
		}
	}
	if !ub.Has(models.RelationReceived, a) {
		if err := r.dir.AddMember(ctx, b, a, models.RelationReceived); err != nil {
			return fmt.Errorf("deliver invitation: %w", err)
		}
	}
	r.logger.Debug(ctx, "invitation sent", "from", a, "to", b)
	return nil
}

// finishRemoval drops the friend entry holder still keeps for gone after
// gone's side of a removal was committed, and closes the room.
func (r *Reconciler) finishRemoval(ctx context.Context, holder, gone *models.User) error {
	if err := r.dir.RemoveMember(ctx, holder.ID, gone.ID, models.RelationFriend); err != nil {
		return fmt.Errorf("complete removal: %w", err)
	}
	err := r.dir.SetRoomActive(ctx, identity.RoomID(holder.ID, gone.ID), 0)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("close room: %w", err)
	}
	r.logger.Info(ctx, "completed interrupted removal", "user", holder.ID, "friend", gone.ID)
	return nil
}

// AcceptInvitation accepts the invitation a sent to b.
func (r *Reconciler) AcceptInvitation(ctx context.Context, a, b string) error {
	ua, ub, err := r.pair(ctx, a, b)
	if err != nil {
		return err
	}
	if !ua.Has(models.RelationSent, b) {
		return common.ErrInvitationNotFound
	}
	return r.accept(ctx, ua, ub)
}

func (r *Reconciler) accept(ctx context.Context, initiator, acceptor *models.User) error {
	if err := r.dir.AddMember(ctx, acceptor.ID, initiator.ID, models.RelationFriend); err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	if err := r.dir.AddMember(ctx, initiator.ID, acceptor.ID, models.RelationFriend); err != nil {
		return fmt.Errorf("complete acceptance: %w", err)
	}
	if _, err := r.dir.UpsertRoom(ctx, r.newRoom(initiator, acceptor)); err != nil {
		return fmt.Errorf("open room: %w", err)
	}
	r.logger.Debug(ctx, "invitation accepted", "from", initiator.ID, "to", acceptor.ID)
	return nil
}

func (r *Reconciler) newRoom(a, b *models.User) *models.Room {
	u1, u2 := identity.Canonical(a.ID, b.ID)
	return &models.Room{
		ID:              identity.RoomID(a.ID, b.ID),
		UserID1:         u1,
		UserID2:         u2,
		Nickname:        identity.RoomNickname(a.Username, b.Username),
		LastInteraction: r.now().UTC(),
		IsActive:        1,
	}
}

// DeclineInvitation is called by b to refuse the invitation from a.
func (r *Reconciler) DeclineInvitation(ctx context.Context, a, b string) error {
	return r.withdraw(ctx, a, b)
}

// CancelInvitation is called by a to take back its invitation to b.
func (r *Reconciler) CancelInvitation(ctx context.Context, a, b string) error {
	return r.withdraw(ctx, a, b)
}

func (r *Reconciler) withdraw(ctx context.Context, a, b string) error {
	ua, _, err := r.pair(ctx, a, b)
	if err != nil {
		return err
	}
	if !ua.Has(models.RelationSent, b) {
		return common.ErrInvitationNotFound
	}
	if err := r.dir.RemoveMember(ctx, a, b, models.RelationSent); err != nil {
		return fmt.Errorf("withdraw invitation: %w", err)
	}
	if err := r.dir.RemoveMember(ctx, b, a, models.RelationReceived); err != nil {
		return fmt.Errorf("withdraw delivered invitation: %w", err)
	}
	return nil
}

// RemoveFriend ends the friendship of a and b. The room is deactivated,
// never deleted.
func (r *Reconciler) RemoveFriend(ctx context.Context, a, b string) error {
	ua, ub, err := r.pair(ctx, a, b)
	if err != nil {
		return err
	}
	if !ua.Has(models.RelationFriend, b) && !ub.Has(models.RelationFriend, a) {
		return common.ErrNotFriends
	}
	if err := r.dir.RemoveMember(ctx, a, b, models.RelationFriend); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if err := r.dir.RemoveMember(ctx, b, a, models.RelationFriend); err != nil {
		return fmt.Errorf("complete removal: %w", err)
	}
	err = r.dir.SetRoomActive(ctx, identity.RoomID(a, b), 0)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("close room: %w", err)
	}
	return nil
}
