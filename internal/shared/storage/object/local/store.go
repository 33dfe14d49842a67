package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lanshare-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem, one file per key.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes r to a temp file, fsyncs it, then links it into place. The link
// fails if the key exists, so a finished object is never overwritten and a
// partial write is never visible under its key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (object.PutResult, error) {
	if err := object.CheckKey(key); err != nil {
		return object.PutResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.PutResult{}, err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return object.PutResult{}, fmt.Errorf("%w: mkdir: %w", object.ErrWrite, err)
	}

	finalPath := filepath.Join(s.baseDir, key)
	if _, err := os.Lstat(finalPath); err == nil {
		return object.PutResult{}, object.ErrExists
	}

	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return object.PutResult{}, fmt.Errorf("%w: create temp: %w", object.ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	mimeType, body, err := object.Sniff(r)
	if err != nil {
		_ = tmp.Close()
		return object.PutResult{}, err
	}
	meter := object.NewMeter(ctx, body)
	if _, err := io.Copy(tmp, meter); err != nil {
		_ = tmp.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return object.PutResult{}, ctxErr
		}
		return object.PutResult{}, fmt.Errorf("%w: write body: %w", object.ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return object.PutResult{}, fmt.Errorf("%w: sync: %w", object.ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return object.PutResult{}, fmt.Errorf("%w: close: %w", object.ErrWrite, err)
	}

	if err := os.Link(tmpName, finalPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return object.PutResult{}, object.ErrExists
		}
		return object.PutResult{}, fmt.Errorf("%w: commit: %w", object.ErrWrite, err)
	}

	return object.PutResult{
		SizeBytes:   meter.Size(),
		ContentType: mimeType,
		Checksum:    meter.Checksum(),
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := object.CheckKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := object.CheckKey(key); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.baseDir, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return object.ErrNotFound
		}
		return err
	}
	return nil
}

// Walk calls fn for every stored object. In-flight temp files are skipped.
func (s *Store) Walk(ctx context.Context, fn func(object.ObjectInfo) error) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		if err := fn(object.ObjectInfo{Key: name, SizeBytes: info.Size(), ModTime: info.ModTime()}); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ object.ObjectStore = (*Store)(nil)
	_ object.Lister      = (*Store)(nil)
)
