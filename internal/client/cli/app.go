package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/cache"
	"github.com/dmitrijs2005/pairroom/internal/client/client"
	"github.com/dmitrijs2005/pairroom/internal/client/config"
	"github.com/dmitrijs2005/pairroom/internal/client/models"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/client/services"
	"github.com/dmitrijs2005/pairroom/internal/common"
	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/dmitrijs2005/pairroom/internal/netx"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// accountService is the part of services.Account the REPL uses.
type accountService interface {
	Register(ctx context.Context, email, username, deviceToken string) (*models.User, error)
	Session(ctx context.Context) (metadata.Session, error)
	Me(ctx context.Context) (*models.LocalUser, error)
	Logout(ctx context.Context) error
	FindByPin(ctx context.Context, pin string) (*models.User, error)
	UploadAvatar(ctx context.Context, data []byte, contentType string) error
	SetRoomPrefs(ctx context.Context, imageOffset float64, roomName string) error
	SetEnrichment(ctx context.Context, enabled bool) error
}

// relationshipService is the part of services.Reconciler the REPL uses.
type relationshipService interface {
	SendInvitation(ctx context.Context, a, b string) error
	AcceptInvitation(ctx context.Context, a, b string) error
	DeclineInvitation(ctx context.Context, a, b string) error
	CancelInvitation(ctx context.Context, a, b string) error
	RemoveFriend(ctx context.Context, a, b string) error
	SetBusy(ctx context.Context, userID string, busy bool) error
	Ring(ctx context.Context, from, to string) error
	AnswerCall(ctx context.Context, userID string) error
	Reconcile(ctx context.Context, ownerID string) (services.Report, error)
	Cached(ctx context.Context, ownerID string) ([]*models.Friend, error)
	Run(ctx context.Context, interval time.Duration) error
}

type App struct {
	config  *config.Config
	account accountService
	rec     relationshipService
	logger  logging.Logger
	closers []io.Closer

	mu       sync.Mutex
	mode     Mode
	userID   string
	userName string

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local cache and connects to the directory with the
// stored session, if any.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := cache.Open(ctx, c.CachePath, cache.Options{})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	session, err := metadata.LoadSession(ctx, store.Metadata)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	dir, err := client.NewGRPCClient(c.ServerEndpointAddr, session.Token)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	dir.SetCallTimeout(c.RPCTimeout)

	transfer := netx.NewTransfer(c.RPCTimeout)

	app := &App{
		config:  c,
		account: services.NewAccount(dir, store, transfer, logger),
		rec:     services.NewReconciler(dir, store, transfer, logger),
		logger:  logger,
		closers: []io.Closer{dir, store},
		userID:  session.UserID,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	return app, nil
}

// Run starts background reconciliation and blocks in the REPL until the
// user leaves or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if me, err := a.account.Me(ctx); err == nil {
		a.setUser(me.ID, me.Username)
	}

	go func() {
		_ = a.rec.Run(ctx, a.config.ReconcileInterval)
	}()

	a.Root(ctx)
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn(context.Background(), "close", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID != ""
}

func (a *App) me() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID
}

func (a *App) setUser(id, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userID = id
	a.userName = name
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

// track derives the connectivity mode from the outcome of a directory call.
func (a *App) track(err error) error {
	switch {
	case err == nil:
		a.setMode(ModeOnline)
	case errors.Is(err, common.ErrRemoteUnavailable):
		a.setMode(ModeOffline)
	}
	return err
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
