package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/collections"
	"lanshare-backend/internal/notes"
	"lanshare-backend/internal/reaper"
	"lanshare-backend/internal/shared/config"
	"lanshare-backend/internal/shared/server"
	"lanshare-backend/internal/shared/server/middleware"
	"lanshare-backend/internal/shared/storage/db"
	"lanshare-backend/internal/shared/storage/ledger"
	"lanshare-backend/internal/shared/storage/ledger/fileledger"
	"lanshare-backend/internal/shared/storage/ledger/sqlledger"
	"lanshare-backend/internal/shared/storage/object"
	localstore "lanshare-backend/internal/shared/storage/object/local"
	s3store "lanshare-backend/internal/shared/storage/object/s3"
	"lanshare-backend/internal/shares"
)

// App holds shared dependencies.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.ObjectStore
	Ledger             ledger.Ledger
	SharesService      *shares.Service
	CollectionsService *collections.Service
	NotesService       *notes.Service
	Reaper             *reaper.Reaper
}

// Build prepares storage, services and routes. Callers own Close. The config
// is validated first, so unknown store and ledger names never reach here.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	l, sqlDB, err := buildLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Ledger: l,
	}
	buildServices(app)
	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		log.Printf("bootstrap: artifact store s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		return store, nil
	default:
		dir := filepath.Join(cfg.DataDir, "blobs")
		log.Printf("bootstrap: artifact store %s", dir)
		return localstore.New(dir), nil
	}
}

func buildLedger(ctx context.Context, cfg config.Config) (ledger.Ledger, *sql.DB, error) {
	switch cfg.LedgerType {
	case "sqlite":
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		log.Printf("bootstrap: ledger sqlite %s", cfg.SQLitePath)
		return sqlledger.New(sqlDB, db.DialectSQLite), sqlDB, nil
	case "postgres":
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectPostgres); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		log.Printf("bootstrap: ledger postgres")
		return sqlledger.New(sqlDB, db.DialectPostgres), sqlDB, nil
	default:
		dir := filepath.Join(cfg.DataDir, "ledger")
		log.Printf("bootstrap: ledger %s", dir)
		return fileledger.New(dir), nil, nil
	}
}

func buildServices(app *App) {
	cfg := app.Config

	sharesSvc := shares.NewService(app.Store, shares.NewLedgerRepo(app.Ledger), cfg.Retention)
	collectionsSvc := collections.NewService(collections.NewLedgerRepo(app.Ledger), sharesSvc)
	notesSvc := notes.NewService(notes.NewLedgerRepo(app.Ledger))

	app.SharesService = sharesSvc
	app.CollectionsService = collectionsSvc
	app.NotesService = notesSvc
	app.Reaper = reaper.New(sharesSvc, collectionsSvc, reaper.Options{
		Interval:    cfg.ReapInterval,
		Retention:   cfg.Retention,
		OrphanSweep: cfg.OrphanSweep,
		OrphanGrace: cfg.OrphanGrace,
	})
	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		Shares:      shares.NewHandler(sharesSvc, cfg.PublicBaseURL, cfg.MaxUploadBytes),
		Collections: collections.NewHandler(collectionsSvc, cfg.MaxUploadBytes),
		Notes:       notes.NewHandler(notesSvc),
		Limiter:     middleware.NewRateLimiter(nil),
	})
}
