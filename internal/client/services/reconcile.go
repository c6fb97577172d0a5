package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const DefaultInterval = 30 * time.Second

// Report counts what one Reconcile pass changed.
type Report struct {
	Repairs        int
	Upserts        int
	Updates        int
	Deletes        int
	AvatarsFetched int
}

// Reconcile brings the remote pairs of ownerID to a consistent state and
// projects them into the local cache. A failure to write one row does not
// stop the others; all row failures are returned together.
func (r *Reconciler) Reconcile(ctx context.Context, ownerID string) (Report, error) {
	var report Report

	owner, err := r.dir.GetUser(ctx, ownerID)
	if err != nil {
		return report, fmt.Errorf("fetch owner: %w", err)
	}
	fetched, err := r.dir.GetUsers(ctx, relatedIDs(owner))
	if err != nil {
		return report, fmt.Errorf("fetch related users: %w", err)
	}
	roomList, err := r.dir.ListRooms(ctx, ownerID)
	if err != nil {
		return report, fmt.Errorf("fetch rooms: %w", err)
	}

	docs := map[string]*models.User{owner.ID: owner}
	others := make(map[string]*models.User, len(fetched))
	for _, u := range fetched {
		if u == nil || u.ID == owner.ID {
			continue
		}
		docs[u.ID] = u
		others[u.ID] = u
	}
	rooms := make(map[string]*models.Room, len(roomList))
	for _, room := range roomList {
		rooms[room.ID] = room
	}

	var errs error

	plan := planRepairs(owner, others, rooms)
	for _, rel := range plan.Relations {
		if err := r.applyRelationRepair(ctx, rel); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		applyRepair(docs, rel)
		report.Repairs++
	}
	for _, room := range plan.Rooms {
		saved, err := r.dir.UpsertRoom(ctx, room)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair room %s: %w", room.ID, err))
			continue
		}
		rooms[saved.ID] = saved
		report.Repairs++
	}
	for _, id := range plan.Deactivate {
		if err := r.dir.SetRoomActive(ctx, id, 0); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close room %s: %w", id, err))
			continue
		}
		rooms[id].IsActive = 0
		report.Repairs++
	}
	if !plan.Empty() {
		r.logger.Info(ctx, "repaired half-applied pairs", "owner", ownerID, "repairs", report.Repairs)
	}

	cached, err := r.friends.FetchAll(ctx, ownerID)
	if err != nil {
		return report, multierr.Append(errs, fmt.Errorf("load cached friends: %w", err))
	}
	existing := make(map[string]*models.Friend, len(cached))
	for _, f := range cached {
		existing[f.ID] = f
	}

	roomList = slices.Collect(maps.Values(rooms))
	desired := ProjectToCache(owner, others, roomList, existing)
	report.AvatarsFetched = r.fetchAvatars(ctx, desired)

	changes := PlanCacheChanges(desired, existing)
	errs = multierr.Append(errs, r.applyCachePlan(ctx, changes))
	report.Upserts, report.Updates, report.Deletes = len(changes.Upserts), len(changes.Updates), len(changes.Deletes)

	errs = multierr.Append(errs, r.refreshLocalUser(ctx, owner))

	r.logger.Debug(ctx, "reconciled", "owner", ownerID,
		"upserts", report.Upserts, "updates", report.Updates, "deletes", report.Deletes)
	return report, errs
}

func (r *Reconciler) applyRelationRepair(ctx context.Context, rel RelationRepair) error {
	var err error
	if rel.Add {
		err = r.dir.AddMember(ctx, rel.UserID, rel.MemberID, rel.Kind)
	} else {
		err = r.dir.RemoveMember(ctx, rel.UserID, rel.MemberID, rel.Kind)
	}
	if err != nil {
		return fmt.Errorf("repair %s %s->%s: %w", rel.Kind, rel.UserID, rel.MemberID, err)
	}
	return nil
}

// fetchAvatars fills ProfileImageData of rows whose image changed. A
// failed download leaves the row without bytes; the next pass retries.
func (r *Reconciler) fetchAvatars(ctx context.Context, rows []*models.Friend) int {
	if r.avatars == nil {
		return 0
	}

	var (
		g       errgroup.Group
		fetched atomic.Int32
	)
	g.SetLimit(r.avatarConcurrency)

	for _, row := range rows {
		if !needsAvatar(row) {
			continue
		}
		g.Go(func() error {
			data, err := r.downloadAvatar(ctx, row.ProfileImagePath)
			if err != nil {
				r.logger.Warn(ctx, "avatar download failed", "friend", row.ID, "error", err)
				return nil
			}
			row.ProfileImageData = data
			fetched.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(fetched.Load())
}

func (r *Reconciler) downloadAvatar(ctx context.Context, key string) ([]byte, error) {
	url, err := r.dir.AvatarDownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return r.avatars.Download(ctx, url)
}

func (r *Reconciler) applyCachePlan(ctx context.Context, plan CachePlan) error {
	var errs error
	for _, row := range plan.Upserts {
		errs = multierr.Append(errs, r.friends.Upsert(ctx, row))
	}
	for _, upd := range plan.Updates {
		if upd.IsBusy != nil {
			errs = multierr.Append(errs, r.friends.UpdatePresence(ctx, upd.ID, *upd.IsBusy, upd.Version))
		}
		if upd.LastInteraction != nil {
			errs = multierr.Append(errs, r.friends.UpdateLastInteraction(ctx, upd.ID, *upd.LastInteraction))
		}
	}
	for _, id := range plan.Deletes {
		errs = multierr.Append(errs, r.friends.Delete(ctx, id))
	}
	return errs
}

// refreshLocalUser rewrites the cached copy of the owner and its relation
// rows. Device-only fields survive.
func (r *Reconciler) refreshLocalUser(ctx context.Context, owner *models.User) error {
	prev, err := r.users.Get(ctx, owner.ID)
	if err != nil {
		return fmt.Errorf("load local user: %w", err)
	}

	lu := &models.LocalUser{User: *owner}
	have := map[models.Relation]bool{}
	if prev != nil {
		lu.ImageOffset = prev.ImageOffset
		lu.RoomName = prev.RoomName
		if prev.ProfileImagePath == owner.ProfileImagePath {
			lu.ProfileImageData = prev.ProfileImageData
		}
		for _, rel := range prev.Relations() {
			have[rel] = true
		}
	}
	if lu.ProfileImagePath != "" && lu.ProfileImageData == nil && r.avatars != nil {
		data, err := r.downloadAvatar(ctx, lu.ProfileImagePath)
		if err != nil {
			r.logger.Warn(ctx, "own avatar download failed", "error", err)
		} else {
			lu.ProfileImageData = data
		}
	}

	if err := r.users.Upsert(ctx, lu); err != nil {
		return err
	}

	var errs error
	want := owner.Relations()
	for _, rel := range want {
		if !have[rel] {
			errs = multierr.Append(errs, r.users.AddRelation(ctx, owner.ID, rel))
		}
		delete(have, rel)
	}
	for rel := range have {
		errs = multierr.Append(errs, r.users.RemoveRelation(ctx, owner.ID, rel))
	}
	return errs
}

// Run reconciles the signed-in account every interval until ctx is done.
// A pass that fails because the directory is unreachable is retried with
// exponential backoff for at most one interval.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.pass(ctx, interval); err != nil && ctx.Err() == nil {
			r.logger.Error(ctx, "reconcile pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) pass(ctx context.Context, interval time.Duration) error {
	session, err := metadata.LoadSession(ctx, r.meta)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.Empty() {
		r.logger.Debug(ctx, "no session, skipping reconcile")
		return nil
	}

	op := func() error {
		_, err := r.Reconcile(ctx, session.UserID)
		if err == nil || errors.Is(err, common.ErrRemoteUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn(ctx, "directory unavailable, retrying", "in", wait, "error", err)
	}
	return backoff.RetryNotify(op, backoff.WithContext(r.backOff(interval), ctx), notify)
}

func (r *Reconciler) backOff(interval time.Duration) backoff.BackOff {
	if r.newBackOff != nil {
		return r.newBackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = interval / 2
	b.MaxElapsedTime = interval
	return b
}

// Cached returns the friends rows of ownerID as stored locally.
func (r *Reconciler) Cached(ctx context.Context, ownerID string) ([]*models.Friend, error) {
	return r.friends.FetchAll(ctx, ownerID)
}
