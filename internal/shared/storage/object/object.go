package object

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when no object is stored under the key.
	ErrNotFound = errors.New("object not found")
	// ErrExists is returned by Put when the key is already taken; objects are write-once.
	ErrExists = errors.New("object already exists")
	// ErrWrite wraps disk, permission and upstream failures during Put.
	ErrWrite = errors.New("object write failed")
	// ErrInvalidKey is returned for keys that are not safe path segments.
	ErrInvalidKey = errors.New("invalid object key")
)

// PutResult describes a freshly written object.
type PutResult struct {
	SizeBytes   int64
	ContentType string
	Checksum    string
}

// ObjectStore maps an artifact id to its raw bytes.
type ObjectStore interface {
	// Put streams r to storage under key. It never replaces an existing object.
	Put(ctx context.Context, key string, r io.Reader) (PutResult, error)
	// Open returns a reader positioned at offset 0. Callers must Close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object, returning ErrNotFound if it was already gone.
	Delete(ctx context.Context, key string) error
}

// ObjectInfo is a listing entry.
type ObjectInfo struct {
	Key       string
	SizeBytes int64
	ModTime   time.Time
}

// Lister is implemented by stores that can enumerate their keys. The reaper
// uses it to find blobs that never got a metadata record.
type Lister interface {
	Walk(ctx context.Context, fn func(ObjectInfo) error) error
}
