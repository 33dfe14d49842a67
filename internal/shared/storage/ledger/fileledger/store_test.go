package fileledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lanshare-backend/internal/shared/storage/ledger"
	"lanshare-backend/internal/shared/storage/ledger/ledgertest"
)

func TestFileLedgerConformance(t *testing.T) {
	ledgertest.Run(t, New(t.TempDir()))
}

func TestListSkipsTempAndForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.KindArtifact, "real", []byte(`{}`)))
	kindDir := filepath.Join(dir, string(ledger.KindArtifact))
	require.NoError(t, os.WriteFile(filepath.Join(kindDir, ".tmp-123"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(kindDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(kindDir, "sub.json"), 0o755))

	entries, err := store.List(ctx, ledger.KindArtifact)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "real", entries[0].ID)
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ledger.KindNote, "n1", []byte(`{"content":"a"}`)))
	require.NoError(t, store.Put(ctx, ledger.KindNote, "n1", []byte(`{"content":"b"}`)))

	names, err := os.ReadDir(filepath.Join(dir, string(ledger.KindNote)))
	require.NoError(t, err)
	require.Len(t, names, 1)
	require.Equal(t, "n1.json", names[0].Name())
}

func TestInvalidIDs(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	require.Error(t, store.Put(ctx, ledger.KindNote, "../escape", []byte(`{}`)))
	_, err := store.Get(ctx, ledger.KindNote, "../escape")
	require.True(t, errors.Is(err, ledger.ErrNotFound))
	require.NoError(t, store.Delete(ctx, ledger.KindNote, "../escape"))
}

func TestListMissingKindIsEmpty(t *testing.T) {
	entries, err := New(t.TempDir()).List(context.Background(), ledger.KindCollection)
	require.NoError(t, err)
	require.Empty(t, entries)
}
