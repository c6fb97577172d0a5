// Package services contains the directory server's business logic.
// DirectoryService owns the user and room documents: every relation change
// is a partial update of a single user document inside one transaction, and
// every change bumps that document's version.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/identity"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/dmitrijs2005/pairroom/internal/server/auth"
	"github.com/dmitrijs2005/pairroom/internal/server/config"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/users"
	"github.com/dmitrijs2005/pairroom/internal/server/storage"
)

const (
	pinLength   = 6
	pinAttempts = 5
)

// AvatarStore presigns object storage URLs for profile images.
type AvatarStore interface {
	UploadURL(ctx context.Context, key string) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type DirectoryService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	avatars         AvatarStore
	logger          logging.Logger
	jwtSecret       []byte
	sessionValidity time.Duration
	now             func() time.Time
}

func NewDirectoryService(db *sql.DB, m repomanager.RepositoryManager, avatars AvatarStore, cfg *config.Config, l logging.Logger) *DirectoryService {
	return &DirectoryService{
		db:              db,
		repomanager:     m,
		avatars:         avatars,
		logger:          l.With("module", "directory"),
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionTokenValidityDuration,
		now:             time.Now,
	}
}

// CreateUser registers an account with a fresh pin and returns it together
// with its session token.
func (s *DirectoryService) CreateUser(ctx context.Context, email, username, deviceToken string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if _, err := mail.ParseAddress(email); err != nil || username == "" {
		return nil, "", common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	var created *models.User
	for attempt := 0; attempt < pinAttempts; attempt++ {
		u, err := repo.Create(ctx, &models.User{
			Email:       email,
			Username:    username,
			Pin:         common.MakePin(pinLength),
			DeviceToken: deviceToken,
		})
		if errors.Is(err, users.ErrPinTaken) {
			s.logger.Debug(ctx, "pin collision, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("error creating user: %w", err)
		}
		created = u
		break
	}
	if created == nil {
		return nil, "", fmt.Errorf("error creating user: %w", users.ErrPinTaken)
	}
	created.SetRelations(nil)

	token, err := auth.GenerateToken(created.ID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "user created", "user", created.ID)
	return created, token, nil
}

func (s *DirectoryService) withRelations(ctx context.Context, u *models.User) (*models.User, error) {
	rels, err := s.repomanager.Relations(s.db).List(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.SetRelations(rels)
	return u, nil
}

func (s *DirectoryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, u)
}

// GetUsers returns the documents that exist among ids, in the order asked.
func (s *DirectoryService) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	result := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.GetUser(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, nil
}

func (s *DirectoryService) FindUserByPin(ctx context.Context, pin string) (*models.User, error) {
	pin = strings.ToUpper(strings.TrimSpace(pin))
	if pin == "" {
		return nil, common.ErrorValidation
	}
	u, err := s.repomanager.Users(s.db).FindByPin(ctx, pin)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, u)
}

func validMember(userID, memberID string, kind models.RelationKind) error {
	if !kind.Valid() {
		return common.ErrorValidation
	}
	if !identity.ValidPair(userID, memberID) {
		return common.ErrInvalidTarget
	}
	return nil
}

// AddMember adds memberID to one relation set of userID. Adding a friend
// drops both invitation entries for that member in the same transaction;
// adding an invitation for an existing friend changes nothing.
func (s *DirectoryService) AddMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	if err := validMember(userID, memberID, kind); err != nil {
		return err
	}
	if _, err := s.repomanager.Users(s.db).Get(ctx, memberID); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)
		relRepo := s.repomanager.Relations(tx)

		if err := usersRepo.Lock(ctx, userID); err != nil {
			return err
		}

		var changed bool
		if kind == models.RelationFriend {
			dropped, err := relRepo.RemoveInvitations(ctx, userID, memberID)
			if err != nil {
				return err
			}
			added, err := relRepo.Add(ctx, userID, memberID, kind)
			if err != nil {
				return err
			}
			changed = added || dropped > 0
		} else {
			friends, err := relRepo.Has(ctx, userID, memberID, models.RelationFriend)
			if err != nil {
				return err
			}
			if friends {
				return nil
			}
			if changed, err = relRepo.Add(ctx, userID, memberID, kind); err != nil {
				return err
			}
		}

		if !changed {
			return nil
		}
		_, err := usersRepo.BumpVersion(ctx, userID)
		return err
	})
}

// RemoveMember removes memberID from one relation set of userID. Removing
// an absent entry is a no-op.
func (s *DirectoryService) RemoveMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	if err := validMember(userID, memberID, kind); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)
		if err := usersRepo.Lock(ctx, userID); err != nil {
			return err
		}
		removed, err := s.repomanager.Relations(tx).Remove(ctx, userID, memberID, kind)
		if err != nil || !removed {
			return err
		}
		_, err = usersRepo.BumpVersion(ctx, userID)
		return err
	})
}

// AuthorizeMember reports whether callerID may add memberID to one set of
// userID's document. Nobody fills in the counterpart's sent set, and a
// friend entry on either document needs the other party to have invited
// the caller or to list it as a friend already.
func (s *DirectoryService) AuthorizeMember(ctx context.Context, callerID, userID, memberID string, kind models.RelationKind) error {
	if callerID != userID && callerID != memberID {
		return common.ErrorUnauthorized
	}

	switch kind {
	case models.RelationSent:
		if callerID != userID {
			return common.ErrorUnauthorized
		}
	case models.RelationFriend:
		other := memberID
		if callerID == memberID {
			other = userID
		}
		rel := s.repomanager.Relations(s.db)
		invited, err := rel.Has(ctx, other, callerID, models.RelationSent)
		if err != nil {
			return err
		}
		if invited {
			return nil
		}
		friends, err := rel.Has(ctx, other, callerID, models.RelationFriend)
		if err != nil {
			return err
		}
		if !friends {
			return common.ErrorUnauthorized
		}
	}
	return nil
}

func (s *DirectoryService) IsFriend(ctx context.Context, userID, memberID string) (bool, error) {
	return s.repomanager.Relations(s.db).Has(ctx, userID, memberID, models.RelationFriend)
}

func (s *DirectoryService) SetBusy(ctx context.Context, userID string, busy bool) error {
	return s.repomanager.Users(s.db).SetBusy(ctx, userID, busy)
}

func (s *DirectoryService) SetIncomingCall(ctx context.Context, userID string, incoming bool) error {
	return s.repomanager.Users(s.db).SetIncomingCall(ctx, userID, incoming)
}

func (s *DirectoryService) SetDeviceToken(ctx context.Context, userID, token string) error {
	return s.repomanager.Users(s.db).SetDeviceToken(ctx, userID, token)
}

// SetProfileImage points the user at an uploaded image. Only keys issued to
// that user are accepted; an empty key clears the image.
func (s *DirectoryService) SetProfileImage(ctx context.Context, userID, key string) error {
	if key != "" && !storage.OwnedBy(key, userID) {
		return common.ErrorValidation
	}
	return s.repomanager.Users(s.db).SetProfileImage(ctx, userID, key)
}

func (s *DirectoryService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.repomanager.Rooms(s.db).Get(ctx, id)
}

func (s *DirectoryService) ListRooms(ctx context.Context, userID string) ([]*models.Room, error) {
	return s.repomanager.Rooms(s.db).ListForUser(ctx, userID)
}

// UpsertRoom creates the room of the pair or updates the existing one. The
// id and participant order are derived from the pair, so a pair never gets
// a second room.
func (s *DirectoryService) UpsertRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if !identity.ValidPair(room.UserID1, room.UserID2) {
		return nil, common.ErrInvalidTarget
	}

	normalized := *room
	normalized.UserID1, normalized.UserID2 = identity.Canonical(room.UserID1, room.UserID2)
	normalized.ID = identity.RoomID(room.UserID1, room.UserID2)
	if normalized.LastInteraction.IsZero() {
		normalized.LastInteraction = s.now().UTC()
	}

	return s.repomanager.Rooms(s.db).Upsert(ctx, &normalized)
}

func (s *DirectoryService) SetRoomActive(ctx context.Context, id string, isActive int) error {
	return s.repomanager.Rooms(s.db).SetActive(ctx, id, isActive)
}

// AvatarUploadURL issues a new object key for userID and a presigned PUT URL.
func (s *DirectoryService) AvatarUploadURL(ctx context.Context, userID string) (string, string, error) {
	key := storage.NewKey(userID)
	url, err := s.avatars.UploadURL(ctx, key)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

func (s *DirectoryService) AvatarDownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", common.ErrorValidation
	}
	return s.avatars.DownloadURL(ctx, key)
}
