package main

// Run ledger migrations:
//   LEDGER=sqlite go run ./cmd/migrate
//   LEDGER=postgres DATABASE_URL=... go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"

	"lanshare-backend/internal/shared/config"
	"lanshare-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	if err := cfg.Validate(); err != nil {
		log.Printf("invalid config: %v", err)
		os.Exit(1)
	}

	var (
		sqlDB   *sql.DB
		dialect db.Dialect
		err     error
	)
	switch cfg.LedgerType {
	case "sqlite":
		dialect = db.DialectSQLite
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	default:
		log.Printf("LEDGER=%s has no schema to migrate", cfg.LedgerType)
		return
	}
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", dialect)
}
