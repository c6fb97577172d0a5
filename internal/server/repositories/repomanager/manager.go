package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pairroom/internal/dbx"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/relations"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/rooms"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a *sql.DB or a *sql.Tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Relations(db dbx.DBTX) relations.Repository
	Rooms(db dbx.DBTX) rooms.Repository
}
