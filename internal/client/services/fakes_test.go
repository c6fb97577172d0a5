package services

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

/*************
 * In-memory directory with the server's single-document semantics
 *************/

type memDirectory struct {
	mu      sync.Mutex
	users   map[string]*models.User
	rooms   map[string]*models.Room
	objects map[string][]byte
	calls   []string

	// fail is consulted before every call; a non-nil result is returned
	// instead of performing it.
	fail func(op string) error
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:   map[string]*models.User{},
		rooms:   map[string]*models.Room{},
		objects: map[string][]byte{},
	}
}

func (d *memDirectory) seed(id, username string) *models.User {
	u := &models.User{ID: id, Email: username + "@example.com", Username: username, Pin: strings.ToUpper(id), Version: 1}
	u.SetRelations(nil)
	d.users[id] = u
	return u
}

func (d *memDirectory) enter(op string, args ...any) error {
	d.mu.Lock()
	call := strings.TrimSpace(fmt.Sprintln(append([]any{op}, args...)...))
	d.calls = append(d.calls, call)
	fail := d.fail
	d.mu.Unlock()
	if fail != nil {
		return fail(call)
	}
	return nil
}

// failOn makes the calls matching op fail with err once.
func (d *memDirectory) failOn(op string, err error) {
	var once sync.Once
	d.fail = func(call string) error {
		if call != op {
			return nil
		}
		var out error
		once.Do(func() { out = err })
		return out
	}
}

func (d *memDirectory) callsWith(prefix string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, c := range d.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (d *memDirectory) user(id string) *models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneUser(d.users[id])
}

func (d *memDirectory) room(id string) *models.Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r := d.rooms[id]; r != nil {
		c := *r
		return &c
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Friends = slices.Clone(u.Friends)
	c.SentInvitations = slices.Clone(u.SentInvitations)
	c.ReceivedInvitations = slices.Clone(u.ReceivedInvitations)
	return &c
}

func (d *memDirectory) CreateUser(ctx context.Context, email, username, deviceToken string) (*models.User, string, error) {
	if err := d.enter("CreateUser", email); err != nil {
		return nil, "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.NewString()
	u := &models.User{ID: id, Email: email, Username: username, DeviceToken: deviceToken, Pin: "PIN" + id[:3], Version: 1}
	u.SetRelations(nil)
	d.users[id] = u
	return cloneUser(u), "token-" + id, nil
}

func (d *memDirectory) GetUser(ctx context.Context, id string) (*models.User, error) {
	if err := d.enter("GetUser", id); err != nil {
		return nil, err
	}
	u := d.user(id)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (d *memDirectory) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	if err := d.enter("GetUsers"); err != nil {
		return nil, err
	}
	var out []*models.User
	for _, id := range ids {
		if u := d.user(id); u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *memDirectory) FindUserByPin(ctx context.Context, pin string) (*models.User, error) {
	if err := d.enter("FindUserByPin", pin); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Pin == pin {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (d *memDirectory) AddMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	if err := d.enter("AddMember", userID, memberID, kind); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[userID]
	if u == nil {
		return common.ErrorNotFound
	}
	before := cloneUser(u)
	docs := map[string]*models.User{userID: u}
	applyRepair(docs, RelationRepair{UserID: userID, MemberID: memberID, Kind: kind, Add: true})
	if !slices.Equal(before.Friends, u.Friends) || !slices.Equal(before.SentInvitations, u.SentInvitations) ||
		!slices.Equal(before.ReceivedInvitations, u.ReceivedInvitations) {
		u.Version++
	}
	return nil
}

func (d *memDirectory) RemoveMember(ctx context.Context, userID, memberID string, kind models.RelationKind) error {
	if err := d.enter("RemoveMember", userID, memberID, kind); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[userID]
	if u == nil {
		return common.ErrorNotFound
	}
	if u.Has(kind, memberID) {
		applyRepair(map[string]*models.User{userID: u}, RelationRepair{UserID: userID, MemberID: memberID, Kind: kind})
		u.Version++
	}
	return nil
}

func (d *memDirectory) setField(op, userID string, set func(u *models.User)) error {
	if err := d.enter(op, userID); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[userID]
	if u == nil {
		return common.ErrorNotFound
	}
	set(u)
	u.Version++
	return nil
}

func (d *memDirectory) SetBusy(ctx context.Context, userID string, busy bool) error {
	return d.setField("SetBusy", userID, func(u *models.User) { u.IsBusy = busy })
}

func (d *memDirectory) SetIncomingCall(ctx context.Context, userID string, value bool) error {
	return d.setField("SetIncomingCall", userID, func(u *models.User) { u.HasIncomingCallRequest = value })
}

func (d *memDirectory) SetDeviceToken(ctx context.Context, userID, token string) error {
	return d.setField("SetDeviceToken", userID, func(u *models.User) { u.DeviceToken = token })
}

func (d *memDirectory) SetProfileImage(ctx context.Context, userID, key string) error {
	return d.setField("SetProfileImage", userID, func(u *models.User) { u.ProfileImagePath = key })
}

func (d *memDirectory) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	if err := d.enter("GetRoom", id); err != nil {
		return nil, err
	}
	if r := d.room(id); r != nil {
		return r, nil
	}
	return nil, common.ErrorNotFound
}

func (d *memDirectory) ListRooms(ctx context.Context, userID string) ([]*models.Room, error) {
	if err := d.enter("ListRooms", userID); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*models.Room
	for _, r := range d.rooms {
		if r.UserID1 == userID || r.UserID2 == userID {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (d *memDirectory) UpsertRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := d.enter("UpsertRoom", room.ID); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	c := *room
	if c.LastInteraction.IsZero() {
		c.LastInteraction = testNow
	}
	d.rooms[c.ID] = &c
	out := c
	return &out, nil
}

func (d *memDirectory) SetRoomActive(ctx context.Context, id string, isActive int) error {
	if err := d.enter("SetRoomActive", id, isActive); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.rooms[id]
	if r == nil {
		return common.ErrorNotFound
	}
	r.IsActive = isActive
	return nil
}

func (d *memDirectory) AvatarUploadURL(ctx context.Context, userID string) (string, string, error) {
	if err := d.enter("AvatarUploadURL", userID); err != nil {
		return "", "", err
	}
	key := "avatars/" + userID + "/" + uuid.NewString()
	return key, "mem://" + key, nil
}

func (d *memDirectory) AvatarDownloadURL(ctx context.Context, key string) (string, error) {
	if err := d.enter("AvatarDownloadURL", key); err != nil {
		return "", err
	}
	return "mem://" + key, nil
}

/*************
 * Object storage backed by the same directory
 *************/

type memObjects struct {
	dir       *memDirectory
	mu        sync.Mutex
	downloads int
	fail      map[string]error
}

func (o *memObjects) Download(ctx context.Context, url string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.downloads++
	key := strings.TrimPrefix(url, "mem://")
	if err := o.fail[key]; err != nil {
		return nil, err
	}
	o.dir.mu.Lock()
	defer o.dir.mu.Unlock()
	data, ok := o.dir.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return slices.Clone(data), nil
}

func (o *memObjects) Upload(ctx context.Context, url, contentType string, data []byte) error {
	o.dir.mu.Lock()
	defer o.dir.mu.Unlock()
	o.dir.objects[strings.TrimPrefix(url, "mem://")] = slices.Clone(data)
	return nil
}

func (o *memObjects) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.downloads
}

/*************
 * Wiring
 *************/

type testEnv struct {
	dir     *memDirectory
	objects *memObjects
	store   *cache.Store
	rec     *Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"), cache.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dir := newMemDirectory()
	dir.seed("u1", "alice")
	dir.seed("u2", "bob")
	dir.seed("u3", "carol")

	objects := &memObjects{dir: dir, fail: map[string]error{}}
	rec := NewReconciler(dir, store, objects, logging.Nop{})
	rec.now = func() time.Time { return testNow }
	rec.newBackOff = func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3) }

	return &testEnv{dir: dir, objects: objects, store: store, rec: rec}
}

// befriend drives u1 and u2 through invite and accept.
func (e *testEnv) befriend(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.rec.SendInvitation(ctx, a, b))
	require.NoError(t, e.rec.AcceptInvitation(ctx, a, b))
}
