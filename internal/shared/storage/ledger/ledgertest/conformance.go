// Package ledgertest holds behavior checks shared by every Ledger backend.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lanshare-backend/internal/shared/storage/ledger"
)

// Run exercises l against the Ledger contract. l must start empty.
func Run(t *testing.T, l ledger.Ledger) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := l.Get(ctx, ledger.KindArtifact, "missing")
		require.True(t, errors.Is(err, ledger.ErrNotFound), "got %v", err)
	})

	t.Run("put get overwrite", func(t *testing.T) {
		require.NoError(t, l.Put(ctx, ledger.KindNote, "n1", []byte(`{"v":1}`)))
		got, err := l.Get(ctx, ledger.KindNote, "n1")
		require.NoError(t, err)
		require.JSONEq(t, `{"v":1}`, string(got))

		require.NoError(t, l.Put(ctx, ledger.KindNote, "n1", []byte(`{"v":2}`)))
		got, err = l.Get(ctx, ledger.KindNote, "n1")
		require.NoError(t, err)
		require.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("kinds are isolated", func(t *testing.T) {
		require.NoError(t, l.Put(ctx, ledger.KindCollection, "shared-id", []byte(`{"k":"c"}`)))
		_, err := l.Get(ctx, ledger.KindArtifact, "shared-id")
		require.True(t, errors.Is(err, ledger.ErrNotFound), "got %v", err)

		entries, err := l.List(ctx, ledger.KindCollection)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "shared-id", entries[0].ID)
	})

	t.Run("list and delete", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			id := fmt.Sprintf("a%d", i)
			require.NoError(t, l.Put(ctx, ledger.KindArtifact, id, []byte(`{"id":"`+id+`"}`)))
		}
		entries, err := l.List(ctx, ledger.KindArtifact)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		require.NoError(t, l.Delete(ctx, ledger.KindArtifact, "a1"))
		require.NoError(t, l.Delete(ctx, ledger.KindArtifact, "a1"), "delete must be idempotent")

		_, err = l.Get(ctx, ledger.KindArtifact, "a1")
		require.True(t, errors.Is(err, ledger.ErrNotFound), "got %v", err)

		entries, err = l.List(ctx, ledger.KindArtifact)
		require.NoError(t, err)
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		require.ElementsMatch(t, []string{"a0", "a2"}, ids)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- l.Put(ctx, ledger.KindNote, fmt.Sprintf("c%d", i), []byte(`{}`))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
		entries, err := l.List(ctx, ledger.KindNote)
		require.NoError(t, err)
		require.Len(t, entries, 17)
	})
}
