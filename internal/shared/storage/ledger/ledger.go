// Package ledger persists small JSON records keyed by kind and id. The
// typed repositories for artifacts, collections and notes sit on top of it.
package ledger

import (
	"context"
	"errors"
)

// Kind partitions records by what they describe.
type Kind string

const (
	KindArtifact   Kind = "artifact"
	KindCollection Kind = "collection"
	KindNote       Kind = "note"
)

// ErrNotFound is returned by Get when no record exists.
var ErrNotFound = errors.New("ledger record not found")

// Entry is one record returned by List.
type Entry struct {
	ID   string
	Data []byte
}

// Ledger is a durable key-value store for metadata records.
type Ledger interface {
	// Put creates or replaces the record. It returns only after the write is durable.
	Put(ctx context.Context, kind Kind, id string, data []byte) error
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	List(ctx context.Context, kind Kind) ([]Entry, error)
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, kind Kind, id string) error
}
