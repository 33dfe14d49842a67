// Package sqlledger keeps ledger records in the ledger_records table of a
// SQLite or Postgres database.
package sqlledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lanshare-backend/internal/shared/storage/db"
	"lanshare-backend/internal/shared/storage/ledger"
)

// Store implements ledger.Ledger on database/sql.
type Store struct {
	DB      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

// New wraps an open database whose schema has been migrated.
func New(database *sql.DB, dialect db.Dialect) *Store {
	return &Store{DB: database, dialect: dialect, now: time.Now}
}

func (s *Store) Put(ctx context.Context, kind ledger.Kind, id string, data []byte) error {
	query := s.rebind(`
INSERT INTO ledger_records (kind, id, data, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)

	if _, err := s.DB.ExecContext(ctx, query, string(kind), id, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("upsert ledger record %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind ledger.Kind, id string) ([]byte, error) {
	query := s.rebind(`SELECT data FROM ledger_records WHERE kind = ? AND id = ?`)

	var data string
	if err := s.DB.QueryRowContext(ctx, query, string(kind), id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("select ledger record %s/%s: %w", kind, id, err)
	}
	return []byte(data), nil
}

func (s *Store) List(ctx context.Context, kind ledger.Kind) ([]ledger.Entry, error) {
	query := s.rebind(`SELECT id, data FROM ledger_records WHERE kind = ? ORDER BY id`)

	rows, err := s.DB.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list ledger %s: %w", kind, err)
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan ledger %s: %w", kind, err)
		}
		out = append(out, ledger.Entry{ID: id, Data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger %s: %w", kind, err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, kind ledger.Kind, id string) error {
	query := s.rebind(`DELETE FROM ledger_records WHERE kind = ? AND id = ?`)

	if _, err := s.DB.ExecContext(ctx, query, string(kind), id); err != nil {
		return fmt.Errorf("delete ledger record %s/%s: %w", kind, id, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ ledger.Ledger = (*Store)(nil)
