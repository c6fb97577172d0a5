// Package cache opens the on-device SQLite database shared by the main
// application and the notification extension.
//
// The main application is the only writer: it opens the file read-write in
// WAL mode and applies migrations. The extension opens the same file with
// ReadOnly set and never migrates; a busy timeout lets it wait out a
// checkpoint instead of failing.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/pairroom/internal/client/migrations"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/friends"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pairroom/internal/client/repositories/users"
	"github.com/dmitrijs2005/pairroom/internal/filex"

	_ "modernc.org/sqlite"
)

const DefaultBusyTimeout = 5 * time.Second

type Options struct {
	ReadOnly    bool
	BusyTimeout time.Duration
}

// Store bundles the repositories over one database handle.
type Store struct {
	DB       *sql.DB
	Friends  friends.Repository
	Users    users.Repository
	Metadata metadata.Repository
}

// DSN builds the modernc.org/sqlite connection string for path.
func DSN(path string, opts Options) string {
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", timeout.Milliseconds()))
	if opts.ReadOnly {
		q.Set("mode", "ro")
	} else {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "foreign_keys(1)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens the cache at path. A writable open runs pending migrations.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if !opts.ReadOnly {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, fmt.Errorf("open cache %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path, opts))
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	if !opts.ReadOnly {
		if err := migrations.Up(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{
		DB:       db,
		Friends:  friends.NewSQLiteRepository(db),
		Users:    users.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
