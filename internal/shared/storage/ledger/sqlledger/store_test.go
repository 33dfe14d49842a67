package sqlledger

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"lanshare-backend/internal/shared/storage/db"
	"lanshare-backend/internal/shared/storage/ledger"
	"lanshare-backend/internal/shared/storage/ledger/ledgertest"
)

func TestSQLiteLedgerConformance(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ledgertest.Run(t, New(sqlDB, db.DialectSQLite))
}

func TestPostgresPutUsesNumberedPlaceholders(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	store := New(sqlDB, db.DialectPostgres)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4)`)).
		WithArgs("artifact", "a1", `{"id":"a1"}`, fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), ledger.KindArtifact, "a1", []byte(`{"id":"a1"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresGetMissingMapsToNotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	store := New(sqlDB, db.DialectPostgres)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM ledger_records WHERE kind = $1 AND id = $2`)).
		WithArgs("note", "missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.Get(context.Background(), ledger.KindNote, "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresList(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	store := New(sqlDB, db.DialectPostgres)
	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("c1", `{"id":"c1"}`).
		AddRow("c2", `{"id":"c2"}`)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM ledger_records WHERE kind = $1 ORDER BY id`)).
		WithArgs("collection").
		WillReturnRows(rows)

	entries, err := store.List(context.Background(), ledger.KindCollection)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[1].ID != "c2" || string(entries[1].Data) != `{"id":"c2"}` {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresDeleteWrapsErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	store := New(sqlDB, db.DialectPostgres)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ledger_records WHERE kind = $1 AND id = $2`)).
		WithArgs("artifact", "a1").
		WillReturnError(boom)

	if err := store.Delete(context.Background(), ledger.KindArtifact, "a1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRebindSQLiteUnchanged(t *testing.T) {
	store := New(nil, db.DialectSQLite)
	if got := store.rebind("a = ? AND b = ?"); got != "a = ? AND b = ?" {
		t.Fatalf("unexpected rebind %q", got)
	}
	pg := New(nil, db.DialectPostgres)
	if got := pg.rebind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind %q", got)
	}
}
