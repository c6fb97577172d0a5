package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pairroom/internal/common"
)

// resolve turns a username or pin into a user id. Cached rows are searched
// first; a pin unknown locally is looked up in the directory.
func (a *App) resolve(ctx context.Context, ref string) (string, string, error) {
	me := a.me()
	if me == "" {
		return "", "", errNotSignedIn
	}

	rows, err := a.rec.Cached(ctx, me)
	if err != nil {
		return "", "", err
	}
	for _, row := range rows {
		if row.ID == ref || strings.EqualFold(row.Username, ref) || strings.EqualFold(row.Pin, ref) {
			return row.ID, row.DisplayName(), nil
		}
	}

	u, err := a.account.FindByPin(ctx, ref)
	if err := a.track(err); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", fmt.Errorf("no user %q", ref)
		}
		return "", "", err
	}
	return u.ID, u.Username, nil
}

// relate resolves ref and runs op with the signed-in id and the target id.
// A successful op is followed by a reconcile so that list reflects it.
func (a *App) relate(ctx context.Context, ref, done string, op func(ctx context.Context, me, other string) error) error {
	other, name, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	me := a.me()
	if err := a.track(op(ctx, me, other)); err != nil {
		return err
	}
	if _, err := a.rec.Reconcile(ctx, me); err != nil {
		a.logger.Warn(ctx, "refresh after change failed", "error", err)
	}
	a.println(done, name)
	return nil
}

func (a *App) Invite(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Invited", func(ctx context.Context, me, other string) error {
		return a.rec.SendInvitation(ctx, me, other)
	})
}

func (a *App) Accept(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Now friends with", func(ctx context.Context, me, other string) error {
		return a.rec.AcceptInvitation(ctx, other, me)
	})
}

func (a *App) Decline(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Declined", func(ctx context.Context, me, other string) error {
		return a.rec.DeclineInvitation(ctx, other, me)
	})
}

func (a *App) Cancel(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Cancelled invitation to", func(ctx context.Context, me, other string) error {
		return a.rec.CancelInvitation(ctx, me, other)
	})
}

func (a *App) Remove(ctx context.Context, ref string) error {
	return a.relate(ctx, ref, "Removed", func(ctx context.Context, me, other string) error {
		return a.rec.RemoveFriend(ctx, me, other)
	})
}

// List prints the cached rows. It works offline.
func (a *App) List(ctx context.Context) error {
	me := a.me()
	if me == "" {
		return errNotSignedIn
	}
	rows, err := a.rec.Cached(ctx, me)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.println("No friends or invitations yet")
		return nil
	}
	for _, row := range rows {
		state := "pending"
		if row.IsAccepted {
			state = "friend"
			if row.IsBusy {
				state = "friend, busy"
			}
		}
		last := "-"
		if !row.LastInteraction.IsZero() {
			last = row.LastInteraction.Local().Format("2006-01-02 15:04")
		}
		a.println(fmt.Sprintf("%-20s %-8s %-14s %s", row.DisplayName(), row.Pin, state, last))
	}
	return nil
}

// Sync runs one reconcile pass now.
func (a *App) Sync(ctx context.Context) error {
	me := a.me()
	if me == "" {
		return errNotSignedIn
	}
	rep, err := a.rec.Reconcile(ctx, me)
	if err := a.track(err); err != nil {
		return err
	}
	a.println(fmt.Sprintf("repairs %d, upserts %d, updates %d, deletes %d, avatars %d",
		rep.Repairs, rep.Upserts, rep.Updates, rep.Deletes, rep.AvatarsFetched))
	return nil
}
