package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lanshare-backend/internal/shared/storage/object"
)

func TestPutOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	res, err := store.Put(ctx, "abc-123", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if res.SizeBytes != 11 {
		t.Fatalf("expected 11 bytes, got %d", res.SizeBytes)
	}
	if !strings.HasPrefix(res.ContentType, "text/plain") {
		t.Fatalf("expected sniffed text/plain, got %s", res.ContentType)
	}

	rc, err := store.Open(ctx, "abc-123")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Put(ctx, "dup", strings.NewReader("first")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "dup", strings.NewReader("second")); !errors.Is(err, object.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	rc, err := store.Open(ctx, "dup")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "first" {
		t.Fatalf("original content replaced: %q", got)
	}
}

func TestConcurrentPutSameKeyOneWins(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Put(ctx, "race", bytes.NewReader(bytes.Repeat([]byte{byte('a' + i)}, 4096)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, object.ErrExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestOpenAndDeleteMissing(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Open(ctx, "missing"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on open, got %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "gone", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "gone"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"../escape", "a/b", ".hidden", ""} {
		if _, err := store.Put(ctx, key, strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("put %q: expected ErrInvalidKey, got %v", key, err)
		}
		if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("open %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestPutCanceledLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Put(ctx, "cancelled", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}

func TestWalkSkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()
	if _, err := store.Put(ctx, "kept", strings.NewReader("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".upload-123"), []byte("partial"), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	var keys []string
	if err := store.Walk(ctx, func(info object.ObjectInfo) error {
		keys = append(keys, info.Key)
		return nil
	}); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(keys) != 1 || keys[0] != "kept" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestWalkMissingDir(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "never-created"))
	if err := store.Walk(context.Background(), func(object.ObjectInfo) error { return nil }); err != nil {
		t.Fatalf("walk on missing dir: %v", err)
	}
}
