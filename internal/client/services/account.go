package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/client"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/logging"
)

var ErrNoSession = errors.New("not signed in")

// AvatarUploader stores bytes behind a presigned PUT URL.
type AvatarUploader interface {
	Upload(ctx context.Context, url, contentType string, data []byte) error
}

// tokenSetter is implemented by directory clients that carry the session
// token themselves.
type tokenSetter interface {
	SetSessionToken(token string)
}

// Account manages the signed-in account of the device.
type Account struct {
	dir      client.Directory
	store    *cache.Store
	uploader AvatarUploader
	logger   logging.Logger
}

func NewAccount(dir client.Directory, store *cache.Store, uploader AvatarUploader, logger logging.Logger) *Account {
	return &Account{dir: dir, store: store, uploader: uploader, logger: logger.With("module", "account")}
}

// Register creates the remote user and records the session in the shared
// metadata slot.
func (a *Account) Register(ctx context.Context, email, username, deviceToken string) (*models.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email: %v", common.ErrorValidation, err)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	u, token, err := a.dir.CreateUser(ctx, email, username, deviceToken)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if ts, ok := a.dir.(tokenSetter); ok {
		ts.SetSessionToken(token)
	}
	if err := metadata.SaveSession(ctx, a.store.Metadata, metadata.Session{UserID: u.ID, Token: token}); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := a.store.Users.Upsert(ctx, &models.LocalUser{User: *u}); err != nil {
		return nil, fmt.Errorf("cache account: %w", err)
	}

	a.logger.Info(ctx, "registered", "user", u.ID, "pin", u.Pin)
	return u, nil
}

// Session returns the signed-in account or ErrNoSession.
func (a *Account) Session(ctx context.Context) (metadata.Session, error) {
	s, err := metadata.LoadSession(ctx, a.store.Metadata)
	if err != nil {
		return s, err
	}
	if s.Empty() {
		return s, ErrNoSession
	}
	return s, nil
}

// Me returns the cached copy of the signed-in account.
func (a *Account) Me(ctx context.Context) (*models.LocalUser, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	u, err := a.store.Users.Get(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// Logout forgets the session and drops the account's cached rows.
func (a *Account) Logout(ctx context.Context) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}

	rows, err := a.store.Friends.FetchAll(ctx, s.UserID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := a.store.Friends.Delete(ctx, row.ID); err != nil {
			return err
		}
	}
	if err := a.store.Users.Delete(ctx, s.UserID); err != nil {
		return err
	}
	if ts, ok := a.dir.(tokenSetter); ok {
		ts.SetSessionToken("")
	}
	return metadata.ClearSession(ctx, a.store.Metadata)
}

// FindByPin resolves the shareable pin of another user.
func (a *Account) FindByPin(ctx context.Context, pin string) (*models.User, error) {
	pin = strings.ToUpper(strings.TrimSpace(pin))
	if pin == "" {
		return nil, fmt.Errorf("%w: pin is required", common.ErrorValidation)
	}
	return a.dir.FindUserByPin(ctx, pin)
}

func (a *Account) SetDeviceToken(ctx context.Context, token string) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}
	return a.dir.SetDeviceToken(ctx, s.UserID, token)
}

// UploadAvatar stores data as the account's profile image.
func (a *Account) UploadAvatar(ctx context.Context, data []byte, contentType string) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}

	key, url, err := a.dir.AvatarUploadURL(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("avatar upload url: %w", err)
	}
	if err := a.uploader.Upload(ctx, url, contentType, data); err != nil {
		return fmt.Errorf("avatar upload: %w", err)
	}
	if err := a.dir.SetProfileImage(ctx, s.UserID, key); err != nil {
		return fmt.Errorf("set profile image: %w", err)
	}

	local, err := a.store.Users.Get(ctx, s.UserID)
	if err != nil || local == nil {
		return err
	}
	local.ProfileImagePath = key
	local.ProfileImageData = data
	return a.store.Users.Upsert(ctx, local)
}

// SetRoomPrefs stores the device-only display preferences.
func (a *Account) SetRoomPrefs(ctx context.Context, imageOffset float64, roomName string) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}
	return a.store.Users.SetLocalPrefs(ctx, s.UserID, imageOffset, roomName)
}

func (a *Account) SetEnrichment(ctx context.Context, enabled bool) error {
	return metadata.SetEnrichmentEnabled(ctx, a.store.Metadata, enabled)
}
