// Package server wires the directory server: PostgreSQL, migrations, the
// avatar presigner and the gRPC endpoint, with graceful shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pairroom/internal/logging"
	"github.com/dmitrijs2005/pairroom/internal/server/config"
	gs "github.com/dmitrijs2005/pairroom/internal/server/grpc"
	"github.com/dmitrijs2005/pairroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pairroom/internal/server/services"
	"github.com/dmitrijs2005/pairroom/internal/server/storage"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	directory *services.DirectoryService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	avatars, err := storage.NewS3Avatars(ctx, storage.S3Config{
		User:         cfg.S3RootUser,
		Password:     cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		URLValidity:  cfg.AvatarURLValidityDuration,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		directory: services.NewDirectoryService(db, rm, avatars, cfg, logger),
	}, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until ctx is done.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer func() { _ = app.db.Close() }()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.directory, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", err)
		return err
	}
	return nil
}
