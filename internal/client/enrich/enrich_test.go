package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/friends"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"), cache.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func signIn(t *testing.T, store *cache.Store, userID string) {
	t.Helper()
	require.NoError(t, metadata.SaveSession(context.Background(), store.Metadata, metadata.Session{UserID: userID, Token: "t"}))
}

func TestEnrich_CacheHit(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u1")
	require.NoError(t, store.Friends.Upsert(ctx, &models.Friend{
		ID: "u2", UserID: "u1", Username: "bob", ProfileImageData: []byte{0x89, 'P', 'N', 'G'}, IsAccepted: true,
	}))

	e := New(store.Friends, store.Metadata, 0, logging.Nop{})
	p := Payload{SenderID: "u2", Title: "Ring", RoomID: "u1_u2"}
	res := e.Enrich(ctx, p)

	assert.Equal(t, p, res.Payload)
	assert.Equal(t, "bob", res.DisplayName)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, res.Avatar)
	assert.True(t, res.Enriched)
	assert.False(t, res.Degraded)
}

func TestEnrich_CacheMiss(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u1")
	e := New(store.Friends, store.Metadata, 0, logging.Nop{})

	p := Payload{SenderID: "u9", SenderName: "zed", Body: "hi"}
	res := e.Enrich(ctx, p)
	assert.Equal(t, Result{Payload: p, DisplayName: "zed"}, res)

	p.SenderName = ""
	res = e.Enrich(ctx, p)
	assert.Equal(t, Placeholder, res.DisplayName)
	assert.False(t, res.Enriched)
}

func TestEnrich_IgnoresRowsOfOtherAccount(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u3")
	require.NoError(t, store.Friends.Upsert(ctx, &models.Friend{ID: "u2", UserID: "u1", Username: "bob"}))

	res := New(store.Friends, store.Metadata, 0, logging.Nop{}).Enrich(ctx, Payload{SenderID: "u2"})
	assert.False(t, res.Enriched)
	assert.Equal(t, Placeholder, res.DisplayName)
}

func TestEnrich_WithoutSessionOrWhenDisabled(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Friends.Upsert(ctx, &models.Friend{ID: "u2", UserID: "u1", Username: "bob"}))
	e := New(store.Friends, store.Metadata, 0, logging.Nop{})

	assert.False(t, e.Enrich(ctx, Payload{SenderID: "u2"}).Enriched)

	signIn(t, store, "u1")
	require.NoError(t, metadata.SetEnrichmentEnabled(ctx, store.Metadata, false))
	res := e.Enrich(ctx, Payload{SenderID: "u2"})
	assert.False(t, res.Enriched)
	assert.False(t, res.Degraded)

	require.NoError(t, metadata.SetEnrichmentEnabled(ctx, store.Metadata, true))
	assert.True(t, e.Enrich(ctx, Payload{SenderID: "u2"}).Enriched)
}

func TestEnrich_ReadOnlyCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	writer, err := cache.Open(ctx, path, cache.Options{})
	require.NoError(t, err)
	defer writer.Close()
	signIn(t, writer, "u1")
	require.NoError(t, writer.Friends.Upsert(ctx, &models.Friend{ID: "u2", UserID: "u1", Username: "bob"}))

	reader, err := cache.Open(ctx, path, cache.Options{ReadOnly: true})
	require.NoError(t, err)
	defer reader.Close()

	res := New(reader.Friends, reader.Metadata, 0, logging.Nop{}).Enrich(ctx, Payload{SenderID: "u2"})
	assert.True(t, res.Enriched)
	assert.Equal(t, "bob", res.DisplayName)
}

// stuckFriends never answers, whatever the context says.
type stuckFriends struct {
	friends.Repository
	release chan struct{}
}

func (s *stuckFriends) FetchOne(ctx context.Context, id string) (*models.Friend, error) {
	<-s.release
	return &models.Friend{ID: id, UserID: "u1", Username: "late"}, nil
}

func TestEnrich_BudgetIsHard(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u1")
	stuck := &stuckFriends{release: make(chan struct{})}
	t.Cleanup(func() { close(stuck.release) })

	e := New(stuck, store.Metadata, 50*time.Millisecond, logging.Nop{})
	p := Payload{SenderID: "u2", SenderName: "bob?"}

	start := time.Now()
	res := e.Enrich(ctx, p)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, p, res.Payload)
	assert.Equal(t, "bob?", res.DisplayName)
	assert.True(t, res.Degraded)
	assert.False(t, res.Enriched)
}

type brokenFriends struct {
	friends.Repository
}

func (brokenFriends) FetchOne(ctx context.Context, id string) (*models.Friend, error) {
	return nil, errors.New("file is not a database")
}

func TestEnrich_CacheFailureDegrades(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u1")

	res := New(brokenFriends{}, store.Metadata, 0, logging.Nop{}).Enrich(ctx, Payload{SenderID: "u2"})
	assert.True(t, res.Degraded)
	assert.Equal(t, Placeholder, res.DisplayName)
}

func TestResult_JSON(t *testing.T) {
	res := Result{
		Payload:     Payload{SenderID: "u2", Title: "Ring"},
		DisplayName: "bob",
		Avatar:      []byte("png"),
		Enriched:    true,
	}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender_id":"u2","title":"Ring","display_name":"bob","avatar":"cG5n","enriched":true,"degraded":false}`, string(b))

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"sender_id":"u2","sender_name":"bob","extra":1}`), &p))
	assert.Equal(t, Payload{SenderID: "u2", SenderName: "bob"}, p)
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	signIn(t, store, "u1")
	require.NoError(t, store.Friends.Upsert(ctx, &models.Friend{ID: "u2", UserID: "u1", Username: "bob", ProfileImageData: []byte("png")}))
	e := New(store.Friends, store.Metadata, 0, logging.Nop{})

	var out bytes.Buffer
	require.NoError(t, Process(ctx, strings.NewReader(`{"sender_id":"u2","title":"Ring"}`), &out, e))

	var res Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "bob", res.DisplayName)
	assert.Equal(t, []byte("png"), res.Avatar)
	assert.Equal(t, "Ring", res.Title)
}

func TestProcess_WithoutCache(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Process(context.Background(), strings.NewReader(`{"sender_id":"u2","sender_name":"bob"}`), &out, nil))

	var res Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "bob", res.DisplayName)
	assert.True(t, res.Degraded)
	assert.False(t, res.Enriched)
}

func TestProcess_BadPayload(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, Process(context.Background(), strings.NewReader(`not json`), &out, nil))
	assert.Empty(t, out.String())
}
