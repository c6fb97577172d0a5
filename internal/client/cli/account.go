package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// getSimpleText is an indirection used to facilitate testing.
var getSimpleText = GetSimpleText

var errNotSignedIn = errors.New("not signed in, use register first")

// Register creates an account. Missing arguments are prompted for.
func (a *App) Register(ctx context.Context, args []string) error {
	if a.isLoggedIn() {
		return errors.New("already signed in, logout first")
	}

	var email, username string
	if len(args) > 0 {
		email = args[0]
	}
	if len(args) > 1 {
		username = strings.Join(args[1:], " ")
	}

	var err error
	if email == "" {
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}
	if username == "" {
		if username, err = getSimpleText(a.reader, "Enter user name", a.out); err != nil {
			return err
		}
	}

	u, err := a.account.Register(ctx, email, username, "")
	if err := a.track(err); err != nil {
		return err
	}
	a.setUser(u.ID, u.Username)
	a.println("Registered. Your pin is", u.Pin)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	me, err := a.account.Me(ctx)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("%s <%s> pin %s busy=%t room=%q", me.Username, me.Email, me.Pin, me.IsBusy, me.RoomName))
	a.println(fmt.Sprintf("friends %d, sent %d, received %d", len(me.Friends), len(me.SentInvitations), len(me.ReceivedInvitations)))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.account.Logout(ctx); err != nil {
		return err
	}
	a.setUser("", "")
	a.println("Signed out")
	return nil
}

// Avatar uploads the file at path as the profile image.
func (a *App) Avatar(ctx context.Context, path string) error {
	if !a.isLoggedIn() {
		return errNotSignedIn
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return a.track(a.account.UploadAvatar(ctx, data, http.DetectContentType(data)))
}

// Room stores the local room preferences: room <offset> <name>.
func (a *App) Room(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: room <offset> <name>")
		return nil
	}
	offset, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	return a.account.SetRoomPrefs(ctx, offset, strings.Join(args[1:], " "))
}

// Enrich switches notification enrichment for this device.
func (a *App) Enrich(ctx context.Context, value string) error {
	on, err := parseSwitch(value)
	if err != nil {
		return err
	}
	return a.account.SetEnrichment(ctx, on)
}
