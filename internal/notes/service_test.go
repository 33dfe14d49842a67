package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"lanshare-backend/internal/shared/storage/ledger"
)

func newTestService() (*Service, *ledger.Memory) {
	l := ledger.NewMemory()
	return NewService(NewLedgerRepo(l)), l
}

func strPtr(s string) *string { return &s }

func TestCreateGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	n, err := svc.Create(ctx, "first draft")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "first draft" {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutCreatesAndOverwrites(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	t0 := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return t0 }

	n, err := svc.Put(ctx, "shopping", strPtr("milk"))
	if err != nil {
		t.Fatalf("put create: %v", err)
	}
	if n.ID != "shopping" || n.Content != "milk" || !n.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected note %+v", n)
	}

	t1 := t0.Add(time.Minute)
	svc.Now = func() time.Time { return t1 }
	n, err = svc.Put(ctx, "shopping", strPtr("eggs"))
	if err != nil {
		t.Fatalf("put overwrite: %v", err)
	}
	if n.Content != "eggs" || !n.CreatedAt.Equal(t0) || !n.UpdatedAt.Equal(t1) {
		t.Fatalf("unexpected note %+v", n)
	}

	n, err = svc.Put(ctx, "shopping", nil)
	if err != nil {
		t.Fatalf("put nil: %v", err)
	}
	if n.Content != "eggs" {
		t.Fatalf("nil content should keep existing, got %q", n.Content)
	}

	n, err = svc.Put(ctx, "shopping", strPtr(""))
	if err != nil {
		t.Fatalf("put empty: %v", err)
	}
	if n.Content != "" {
		t.Fatalf("explicit empty content should clear, got %q", n.Content)
	}
}

func TestPutRejectsInvalidID(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Put(context.Background(), "../../x", strPtr("a")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAppendJoinsWithSeparator(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Append(ctx, "log", "one"); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := svc.Append(ctx, "log", "two")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n.Content != "one\n---\ntwo" {
		t.Fatalf("unexpected content %q", n.Content)
	}
	// The web client splits notes on the same marker to list fragments.
	parts := strings.Split(n.Content, "\n---\n")
	if len(parts) != 2 || parts[0] != "one" || parts[1] != "two" {
		t.Fatalf("fragments do not round trip: %q", parts)
	}
}

func TestConcurrentAppendsKeepEveryFragment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	const n = 40

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Append(ctx, "shared", fmt.Sprintf("frag-%02d", i)); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	parts := strings.Split(got.Content, Separator)
	if len(parts) != n {
		t.Fatalf("expected %d fragments, got %d", n, len(parts))
	}
}

func TestCorruptNoteReadsAsNotFoundAndPutRecovers(t *testing.T) {
	svc, l := newTestService()
	ctx := context.Background()
	if err := l.Put(ctx, ledger.KindNote, "broken", []byte("not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Get(ctx, "broken"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	n, err := svc.Put(ctx, "broken", strPtr("fixed"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n.Content != "fixed" {
		t.Fatalf("unexpected content %q", n.Content)
	}
}
