package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/dmitrijs2005/pairroom/internal/server/config"
	"github.com/dmitrijs2005/pairroom/internal/server/models"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/relations"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/rooms"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// memStore backs the fake repositories; transactions are ignored.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*models.User
	rels       map[string][]models.Relation
	rooms      map[string]*models.Room
	seq        int
	pinCollide int
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]*models.User{},
		rels:  map[string][]models.Relation{},
		rooms: map[string]*models.Room{},
	}
}

type fakeManager struct{ s *memStore }

func (m fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m fakeManager) Users(dbx.DBTX) users.Repository              { return memUsers{m.s} }
func (m fakeManager) Relations(dbx.DBTX) relations.Repository      { return memRelations{m.s} }
func (m fakeManager) Rooms(dbx.DBTX) rooms.Repository              { return memRooms{m.s} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.pinCollide > 0 {
		r.s.pinCollide--
		return nil, users.ErrPinTaken
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	r.s.seq++
	u.ID = fmt.Sprintf("u%d", r.s.seq)
	u.Version = 1
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) get(id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r memUsers) Get(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindByPin(_ context.Context, pin string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Pin == pin {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) Lock(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, err := r.get(id)
	return err
}

func (r memUsers) BumpVersion(_ context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return 0, err
	}
	u.Version++
	return u.Version, nil
}

func (r memUsers) update(id string, fn func(u *models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, err := r.get(id)
	if err != nil {
		return err
	}
	fn(u)
	u.Version++
	return nil
}

func (r memUsers) SetBusy(_ context.Context, id string, v bool) error {
	return r.update(id, func(u *models.User) { u.IsBusy = v })
}
func (r memUsers) SetIncomingCall(_ context.Context, id string, v bool) error {
	return r.update(id, func(u *models.User) { u.HasIncomingCallRequest = v })
}
func (r memUsers) SetDeviceToken(_ context.Context, id string, v string) error {
	return r.update(id, func(u *models.User) { u.DeviceToken = v })
}
func (r memUsers) SetProfileImage(_ context.Context, id string, v string) error {
	return r.update(id, func(u *models.User) { u.ProfileImagePath = v })
}

type memRelations struct{ s *memStore }

func (r memRelations) List(_ context.Context, userID string) ([]models.Relation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]models.Relation(nil), r.s.rels[userID]...), nil
}

func (r memRelations) index(userID, memberID string, kind models.RelationKind) int {
	for i, rel := range r.s.rels[userID] {
		if rel.MemberID == memberID && rel.Kind == kind {
			return i
		}
	}
	return -1
}

func (r memRelations) Has(_ context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.index(userID, memberID, kind) >= 0, nil
}

func (r memRelations) Add(_ context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.index(userID, memberID, kind) >= 0 {
		return false, nil
	}
	r.s.rels[userID] = append(r.s.rels[userID], models.Relation{MemberID: memberID, Kind: kind})
	return true, nil
}

func (r memRelations) remove(userID, memberID string, kind models.RelationKind) bool {
	i := r.index(userID, memberID, kind)
	if i < 0 {
		return false
	}
	list := r.s.rels[userID]
	r.s.rels[userID] = append(list[:i:i], list[i+1:]...)
	return true
}

func (r memRelations) Remove(_ context.Context, userID, memberID string, kind models.RelationKind) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.remove(userID, memberID, kind), nil
}

func (r memRelations) RemoveInvitations(_ context.Context, userID, memberID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	if r.remove(userID, memberID, models.RelationSent) {
		n++
	}
	if r.remove(userID, memberID, models.RelationReceived) {
		n++
	}
	return n, nil
}

type memRooms struct{ s *memStore }

func (r memRooms) Get(_ context.Context, id string) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *room
	return &cp, nil
}

func (r memRooms) ListForUser(_ context.Context, userID string) ([]*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Room
	for _, room := range r.s.rooms {
		if room.UserID1 == userID || room.UserID2 == userID {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRooms) Upsert(_ context.Context, room *models.Room) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *room
	r.s.rooms[room.ID] = &cp
	out := cp
	return &out, nil
}

func (r memRooms) SetActive(_ context.Context, id string, v int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return common.ErrorNotFound
	}
	room.IsActive = v
	return nil
}

type fakeAvatars struct {
	err error
}

func (f fakeAvatars) UploadURL(_ context.Context, key string) (string, error) {
	return "http://s3/put/" + key, f.err
}

func (f fakeAvatars) DownloadURL(_ context.Context, key string) (string, error) {
	return "http://s3/get/" + key, f.err
}

func newTestService(t *testing.T) (*DirectoryService, *memStore) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := newMemStore()
	cfg := &config.Config{SecretKey: "k", SessionTokenValidityDuration: time.Hour}
	svc := NewDirectoryService(db, fakeManager{store}, fakeAvatars{}, cfg, logging.Nop{})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	return svc, store
}
