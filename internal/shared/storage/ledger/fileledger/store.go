// Package fileledger stores ledger records as one JSON file per record under
// <dir>/<kind>/<id>.json.
package fileledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/storage/ledger"
)

const recordExt = ".json"

// Store is a filesystem-backed ledger.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. Directories are created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Put(ctx context.Context, kind ledger.Kind, id string, data []byte) error {
	path, err := s.recordPath(kind, id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger record %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind ledger.Kind, id string) ([]byte, error) {
	path, err := s.recordPath(kind, id)
	if err != nil {
		return nil, ledger.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("read ledger record %s/%s: %w", kind, id, err)
	}
	return data, nil
}

func (s *Store) List(ctx context.Context, kind ledger.Kind) ([]ledger.Entry, error) {
	dir := filepath.Join(s.dir, string(kind))
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list ledger %s: %w", kind, err)
	}

	out := make([]ledger.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			// Removed between ReadDir and ReadFile.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read ledger record %s/%s: %w", kind, id, err)
		}
		out = append(out, ledger.Entry{ID: id, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, kind ledger.Kind, id string) error {
	path, err := s.recordPath(kind, id)
	if err != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete ledger record %s/%s: %w", kind, id, err)
	}
	return nil
}

func (s *Store) recordPath(kind ledger.Kind, id string) (string, error) {
	if !ids.Valid(id) || !ids.Valid(string(kind)) {
		return "", fmt.Errorf("invalid ledger key %q/%q", kind, id)
	}
	return filepath.Join(s.dir, string(kind), id+recordExt), nil
}

// atomicWriteFile writes data to a temp file in the target directory, syncs
// it and renames it over path, so readers never observe a partial record.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

var _ ledger.Ledger = (*Store)(nil)
